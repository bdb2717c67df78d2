package cdpsurface

import (
	"context"

	"github.com/chromedp/cdproto/browser"
	"github.com/chromedp/chromedp"
	"pkt.systems/wheelhouse/core"
	"pkt.systems/wheelhouse/schema"
)

// initDownloads points the engine's downloads at the configured directory
// and turns progress events on for the target.
func (f *Factory) initDownloads(tabCtx context.Context) {
	if f.sink == nil || f.opts.DownloadsDir == "" {
		return
	}
	if err := chromedp.Run(tabCtx,
		browser.SetDownloadBehavior(browser.SetDownloadBehaviorBehaviorAllowAndName).
			WithDownloadPath(f.opts.DownloadsDir).
			WithEventsEnabled(true),
	); err != nil {
		f.log.Warn("download behavior setup failed", "err", err)
	}
}

func (f *Factory) downloadWillBegin(tabCtx context.Context, ev *browser.EventDownloadWillBegin) {
	if f.sink == nil {
		return
	}
	id := f.sink.DownloadStarted(tabCtx, core.DownloadStart{
		URL:               ev.URL,
		SuggestedFilename: ev.SuggestedFilename,
	}, &transferHandle{ctx: tabCtx, guid: ev.GUID})
	f.dlMu.Lock()
	if f.downloads == nil {
		f.downloads = make(map[string]schema.DownloadID)
	}
	f.downloads[ev.GUID] = id
	f.dlMu.Unlock()
}

func (f *Factory) downloadProgress(ev *browser.EventDownloadProgress) {
	if f.sink == nil {
		return
	}
	f.dlMu.Lock()
	id, ok := f.downloads[ev.GUID]
	if ok && ev.State != browser.DownloadProgressStateInProgress {
		delete(f.downloads, ev.GUID)
	}
	f.dlMu.Unlock()
	if !ok {
		return
	}
	ctx := context.Background()
	switch ev.State {
	case browser.DownloadProgressStateInProgress:
		f.sink.DownloadProgress(ctx, id, int64(ev.ReceivedBytes), int64(ev.TotalBytes))
	case browser.DownloadProgressStateCompleted:
		f.sink.DownloadDone(ctx, id, schema.DownloadCompleted)
	case browser.DownloadProgressStateCanceled:
		f.sink.DownloadDone(ctx, id, schema.DownloadCancelled)
	}
}

// transferHandle controls one engine download. The protocol offers
// cancellation only; pause and resume are not supported.
type transferHandle struct {
	ctx  context.Context
	guid string
}

func (h *transferHandle) Pause(ctx context.Context) error {
	return schema.ErrNotResumable
}

func (h *transferHandle) Resume(ctx context.Context) error {
	return schema.ErrNotResumable
}

func (h *transferHandle) Resumable() bool {
	return false
}

func (h *transferHandle) Cancel(ctx context.Context) error {
	return chromedp.Run(h.ctx, browser.CancelDownload(h.guid))
}
