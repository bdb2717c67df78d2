// Package cdpsurface adapts a Chromium engine driven over the DevTools
// protocol into the shell core's surface abstraction. Every surface is one
// browser target; lifecycle events stream back through target listeners.
package cdpsurface

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/chromedp/chromedp"
	"pkt.systems/pslog"
	"pkt.systems/wheelhouse/core"
	"pkt.systems/wheelhouse/schema"
)

// Options configures the engine connection.
type Options struct {
	// DevToolsURL attaches to a running engine instance. Empty launches a
	// private instance through the exec allocator.
	DevToolsURL  string
	Headless     bool
	DownloadsDir string
}

// Factory creates engine-backed surfaces.
type Factory struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	opts        Options
	log         pslog.Logger
	sink        core.DownloadSink

	dlMu      sync.Mutex
	downloads map[string]schema.DownloadID
}

// NewFactory connects to (or launches) the engine.
func NewFactory(opts Options, logger pslog.Logger) (*Factory, error) {
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	var (
		allocCtx context.Context
		cancel   context.CancelFunc
	)
	if strings.TrimSpace(opts.DevToolsURL) != "" {
		allocCtx, cancel = chromedp.NewRemoteAllocator(context.Background(), opts.DevToolsURL)
	} else {
		execOpts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", opts.Headless),
			chromedp.Flag("disable-gpu", opts.Headless),
			chromedp.Flag("no-sandbox", true),
		)
		allocCtx, cancel = chromedp.NewExecAllocator(context.Background(), execOpts...)
	}
	return &Factory{
		allocCtx:    allocCtx,
		allocCancel: cancel,
		opts:        opts,
		log:         logger,
	}, nil
}

// SetDownloadSink routes engine download notifications into the shell
// core. Must be set before the first content surface is created.
func (f *Factory) SetDownloadSink(sink core.DownloadSink) {
	f.sink = sink
}

// NewContentSurface creates one isolated content target.
func (f *Factory) NewContentSurface(ctx context.Context, cfg core.SurfaceConfig) (core.Surface, error) {
	if ctx == nil {
		return nil, errors.New("missing context")
	}
	return f.newSurface(cfg.Privilege, cfg.Private)
}

// NewChromeSurface creates a fixed-role chrome target. Chrome surfaces
// render internal pages and always carry the internal script bridge.
func (f *Factory) NewChromeSurface(ctx context.Context, role core.ChromeRole) (core.Surface, error) {
	if ctx == nil {
		return nil, errors.New("missing context")
	}
	s, err := f.newSurface(core.PrivilegeInternal, false)
	if err != nil {
		return nil, err
	}
	s.role = role
	return s, nil
}

// Close shuts the allocator down, tearing down every remaining target.
func (f *Factory) Close() error {
	f.allocCancel()
	return nil
}
