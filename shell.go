// Package wheelhouse composes the browser shell: the tab/layout core, the
// engine-backed surface factory, the profile store, and session persistence.
package wheelhouse

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"pkt.systems/pslog"
	"pkt.systems/wheelhouse/core"
	"pkt.systems/wheelhouse/internal/appconfig"
	"pkt.systems/wheelhouse/internal/cdpsurface"
	"pkt.systems/wheelhouse/internal/eventbus"
	"pkt.systems/wheelhouse/internal/localstore"
	"pkt.systems/wheelhouse/internal/persist"
	"pkt.systems/wheelhouse/internal/reveal"
	"pkt.systems/wheelhouse/internal/storerpc"
)

// Shell runs the composed browser shell.
type Shell interface {
	Start(ctx context.Context) error
	// Wait blocks until Stop has completed.
	Wait() error
	Stop(ctx context.Context) error
	// Service exposes the shell core for chrome and UI layers.
	Service() core.Service
	// Events subscribes to the shell event stream.
	Events() (<-chan eventbus.Event, func())
}

// ShellDeps overrides individual components. Zero fields are built from
// the config.
type ShellDeps struct {
	Surfaces  core.SurfaceFactory
	Store     core.Store
	Session   core.SessionFile
	Revealer  core.Revealer
	EventSink core.EventSink
	Logger    pslog.Logger
}

// New wires the shell from the application config. The profile store is
// dialed over RPC when reachable and falls back to the local store
// otherwise; a missing store leaves history and bookmarks disabled.
func New(cfg appconfig.Config, deps ShellDeps) (Shell, error) {
	logger := deps.Logger
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}

	bus := eventbus.New(logger)
	var sink core.EventSink = bus
	if deps.EventSink != nil {
		sink = eventFanout{sinks: []core.EventSink{bus, deps.EventSink}}
	}

	var closers []io.Closer

	surfaces := deps.Surfaces
	var factory *cdpsurface.Factory
	if surfaces == nil {
		f, err := cdpsurface.NewFactory(cdpsurface.Options{
			DevToolsURL:  cfg.Surface.DevToolsURL,
			Headless:     cfg.Surface.Headless,
			DownloadsDir: cfg.DownloadsDir,
		}, logger)
		if err != nil {
			return nil, err
		}
		factory = f
		surfaces = f
		closers = append(closers, f)
	}

	store := deps.Store
	if store == nil {
		connected, closer := connectStore(cfg.Store, logger)
		store = connected
		if closer != nil {
			closers = append(closers, closer)
		}
	}

	session := deps.Session
	if session == nil {
		file, err := persist.NewStoreWithLogger(cfg.StateDir, logger)
		if err != nil {
			closeAll(closers, logger)
			return nil, err
		}
		session = file
	}

	revealer := deps.Revealer
	if revealer == nil {
		revealer = reveal.New()
	}

	service, err := core.NewService(cfg.ServiceConfig(), core.ServiceDeps{
		Surfaces:  surfaces,
		Store:     store,
		Session:   session,
		Revealer:  revealer,
		EventSink: sink,
		Logger:    logger,
	})
	if err != nil {
		closeAll(closers, logger)
		return nil, err
	}
	if factory != nil {
		factory.SetDownloadSink(service)
	}

	return &compositeShell{
		service: service,
		bus:     bus,
		closers: closers,
		logger:  logger,
		done:    make(chan struct{}),
	}, nil
}

// connectStore dials the remote profile store, falling back to the local
// store when the remote is unreachable. Both failing leaves the shell
// storeless, which the core tolerates.
func connectStore(cfg appconfig.StoreConfig, log pslog.Logger) (core.Store, io.Closer) {
	timeout := time.Duration(cfg.CallTimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = storerpc.DefaultCallTimeout
	}
	if cfg.Address != "" {
		dialCtx, cancel := context.WithTimeout(context.Background(), timeout)
		client, err := storerpc.Dial(dialCtx, cfg.Network, cfg.Address,
			storerpc.WithTimeout(timeout), storerpc.WithLogger(log))
		cancel()
		if err == nil {
			log.Info("profile store connected", "network", cfg.Network, "address", cfg.Address)
			return client, client
		}
		log.Warn("profile store unreachable", "address", cfg.Address, "err", err)
	}
	if cfg.LocalDir == "" {
		log.Warn("profile store disabled", "reason", "no local fallback configured")
		return nil, nil
	}
	local, err := localstore.OpenWithLogger(cfg.LocalDir, log)
	if err != nil {
		log.Warn("local profile store open failed", "dir", cfg.LocalDir, "err", err)
		return nil, nil
	}
	log.Info("profile store local", "dir", cfg.LocalDir)
	return local, local
}

func closeAll(closers []io.Closer, log pslog.Logger) {
	for _, closer := range closers {
		if err := closer.Close(); err != nil && log != nil {
			log.Warn("shell component close failed", "err", err)
		}
	}
}

type compositeShell struct {
	service core.Service
	bus     *eventbus.Bus
	closers []io.Closer
	logger  pslog.Logger

	// done closes at the end of Stop, after the final session save and
	// component teardown. Wait blocks on it so the save sits on the exit
	// path even when Stop runs from a signal goroutine.
	done     chan struct{}
	stopOnce sync.Once

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	started bool
}

func (s *compositeShell) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		s.logger.Warn("shell start rejected", "reason", "already started")
		return errors.New("shell already started")
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.started = true
	s.mu.Unlock()

	if err := s.service.Start(s.ctx); err != nil {
		s.logger.Error("shell start failed", "err", err)
		s.cancel()
		return err
	}
	s.logger.Info("shell started")
	return nil
}

func (s *compositeShell) Wait() error {
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()
	if !started {
		return errors.New("shell not started")
	}
	<-s.done
	return nil
}

func (s *compositeShell) Stop(ctx context.Context) error {
	s.mu.Lock()
	cancel := s.cancel
	started := s.started
	s.mu.Unlock()
	if !started {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	s.stopOnce.Do(func() {
		s.logger.Info("shell stop requested")
		if err := s.service.Shutdown(ctx); err != nil {
			s.logger.Warn("shell core shutdown failed", "err", err)
		}
		closeAll(s.closers, s.logger)
		if cancel != nil {
			cancel()
		}
		close(s.done)
		s.logger.Info("shell stopped")
	})
	return nil
}

func (s *compositeShell) Service() core.Service {
	return s.service
}

func (s *compositeShell) Events() (<-chan eventbus.Event, func()) {
	return s.bus.Subscribe()
}
