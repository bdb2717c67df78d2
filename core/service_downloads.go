package core

import (
	"context"
	"errors"
	"time"

	"pkt.systems/wheelhouse/internal/logx"
	"pkt.systems/wheelhouse/schema"
)

// DownloadStarted registers a transfer announced by the host engine and
// assigns it a collision-free save path inside the downloads directory.
func (s *service) DownloadStarted(ctx context.Context, item DownloadStart, handle TransferHandle) schema.DownloadID {
	d := &download{
		ID:         newDownloadID(),
		Filename:   item.SuggestedFilename,
		URL:        item.URL,
		SavePath:   SavePath(s.cfg.DownloadsDir, item.SuggestedFilename),
		MIMEType:   item.MIMEType,
		TotalBytes: item.TotalBytes,
		State:      schema.DownloadInProgress,
		StartedAt:  s.now(),
	}
	if d.Filename == "" {
		d.Filename = "download"
	}
	s.mu.Lock()
	s.downloads[d.ID] = d
	s.downloadOrder = append(s.downloadOrder, d.ID)
	if handle != nil {
		s.handles[d.ID] = handle
	}
	snap := d.Snapshot()
	s.mu.Unlock()

	s.emitDownloadEvent(schema.DownloadEvent{Type: schema.DownloadEventStarted, Download: snap})
	logx.WithDownload(ctx, d.ID).Info("download started",
		"url", d.URL, "file", d.Filename, "total", d.TotalBytes)
	return d.ID
}

// DownloadProgress updates byte counts for an in-flight transfer. Speed and
// ETA are resampled at most every DownloadSampleMin; between samples the
// previous values stand. Progress for unknown ids is dropped.
func (s *service) DownloadProgress(ctx context.Context, id schema.DownloadID, received, total int64) {
	s.mu.Lock()
	d := s.downloads[id]
	if d == nil || d.State.Terminal() {
		s.mu.Unlock()
		logx.WithDownload(ctx, id).Debug("progress for unknown download dropped")
		return
	}
	d.ReceivedBytes = received
	if total > 0 {
		d.TotalBytes = total
	}
	d.sample(s.now(), s.cfg.DownloadSampleMin)
	snap := d.Snapshot()
	s.mu.Unlock()

	s.emitDownloadEvent(schema.DownloadEvent{Type: schema.DownloadEventProgress, Download: snap})
}

// DownloadDone moves a transfer into a terminal state. Completed downloads
// get received pinned to total and raise a user-visible notification.
func (s *service) DownloadDone(ctx context.Context, id schema.DownloadID, state schema.DownloadState) {
	if !state.Terminal() {
		logx.WithDownload(ctx, id).Debug("non-terminal done state dropped", "state", state)
		return
	}
	s.mu.Lock()
	d := s.downloads[id]
	if d == nil {
		s.mu.Unlock()
		logx.WithDownload(ctx, id).Debug("done for unknown download dropped")
		return
	}
	d.State = state
	d.Paused = false
	d.Speed = 0
	d.ETASeconds = 0
	d.DoneAt = s.now()
	if state == schema.DownloadCompleted {
		if d.TotalBytes > 0 {
			d.ReceivedBytes = d.TotalBytes
		} else {
			d.TotalBytes = d.ReceivedBytes
		}
	}
	delete(s.handles, id)
	snap := d.Snapshot()
	s.mu.Unlock()

	s.emitDownloadEvent(schema.DownloadEvent{
		Type:     schema.DownloadEventDone,
		Download: snap,
		Notify:   state == schema.DownloadCompleted,
	})
	logx.WithDownload(ctx, id).Info("download done", "state", state, "bytes", snap.ReceivedBytes)
}

// ListDownloads reports retained downloads, newest first.
func (s *service) ListDownloads(ctx context.Context, req schema.ListDownloadsRequest) (schema.ListDownloadsResponse, error) {
	if ctx == nil {
		return schema.ListDownloadsResponse{}, errors.New("missing context")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]schema.DownloadSnapshot, 0, len(s.downloadOrder))
	for i := len(s.downloadOrder) - 1; i >= 0; i-- {
		if d := s.downloads[s.downloadOrder[i]]; d != nil {
			out = append(out, d.Snapshot())
		}
	}
	return schema.ListDownloadsResponse{Downloads: out}, nil
}

// PauseDownload pauses an in-progress transfer through its handle.
func (s *service) PauseDownload(ctx context.Context, req schema.PauseDownloadRequest) error {
	s.mu.Lock()
	d := s.downloads[req.DownloadID]
	handle := s.handles[req.DownloadID]
	if d == nil || handle == nil || d.State.Terminal() || d.Paused {
		s.mu.Unlock()
		logx.WithDownload(ctx, req.DownloadID).Debug("pause ignored")
		return nil
	}
	d.Paused = true
	snap := d.Snapshot()
	s.mu.Unlock()

	if err := handle.Pause(ctx); err != nil {
		s.logger.Warn("download pause failed", "download", req.DownloadID, "err", err)
		s.mu.Lock()
		d.Paused = false
		s.mu.Unlock()
		return err
	}
	s.emitDownloadEvent(schema.DownloadEvent{Type: schema.DownloadEventProgress, Download: snap})
	logx.WithDownload(ctx, req.DownloadID).Debug("download paused")
	return nil
}

// ResumeDownload resumes a paused transfer when the handle supports it.
func (s *service) ResumeDownload(ctx context.Context, req schema.ResumeDownloadRequest) error {
	s.mu.Lock()
	d := s.downloads[req.DownloadID]
	handle := s.handles[req.DownloadID]
	if d == nil || handle == nil || d.State.Terminal() || !d.Paused {
		s.mu.Unlock()
		logx.WithDownload(ctx, req.DownloadID).Debug("resume ignored")
		return nil
	}
	if !handle.Resumable() {
		s.mu.Unlock()
		return schema.ErrNotResumable
	}
	d.Paused = false
	snap := d.Snapshot()
	s.mu.Unlock()

	if err := handle.Resume(ctx); err != nil {
		s.logger.Warn("download resume failed", "download", req.DownloadID, "err", err)
		s.mu.Lock()
		d.Paused = true
		s.mu.Unlock()
		return err
	}
	s.emitDownloadEvent(schema.DownloadEvent{Type: schema.DownloadEventProgress, Download: snap})
	logx.WithDownload(ctx, req.DownloadID).Debug("download resumed")
	return nil
}

// CancelDownload cancels a transfer. The terminal state transition arrives
// through DownloadDone once the engine confirms.
func (s *service) CancelDownload(ctx context.Context, req schema.CancelDownloadRequest) error {
	s.mu.Lock()
	d := s.downloads[req.DownloadID]
	handle := s.handles[req.DownloadID]
	s.mu.Unlock()
	if d == nil || handle == nil {
		logx.WithDownload(ctx, req.DownloadID).Debug("cancel ignored")
		return nil
	}
	if err := handle.Cancel(ctx); err != nil {
		s.logger.Warn("download cancel failed", "download", req.DownloadID, "err", err)
		return err
	}
	logx.WithDownload(ctx, req.DownloadID).Info("download cancel requested")
	return nil
}

// RevealDownload shows the saved file in the platform file manager.
func (s *service) RevealDownload(ctx context.Context, req schema.RevealDownloadRequest) error {
	if s.revealer == nil {
		return nil
	}
	s.mu.Lock()
	d := s.downloads[req.DownloadID]
	s.mu.Unlock()
	if d == nil {
		logx.WithDownload(ctx, req.DownloadID).Debug("reveal ignored")
		return nil
	}
	if err := s.revealer.Reveal(ctx, d.SavePath); err != nil {
		s.logger.Warn("download reveal failed", "download", req.DownloadID, "err", err)
		return err
	}
	return nil
}

// sweepDownloads drops terminal downloads older than the retention window.
func (s *service) sweepDownloads(now time.Time) {
	s.mu.Lock()
	kept := s.downloadOrder[:0]
	removed := 0
	for _, id := range s.downloadOrder {
		d := s.downloads[id]
		if d == nil {
			continue
		}
		if d.State.Terminal() && !d.DoneAt.IsZero() && now.Sub(d.DoneAt) > s.cfg.DownloadRetention {
			delete(s.downloads, id)
			removed++
			continue
		}
		kept = append(kept, id)
	}
	s.downloadOrder = kept
	s.mu.Unlock()
	if removed > 0 {
		s.logger.Debug("download history swept", "removed", removed)
	}
}
