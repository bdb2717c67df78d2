package core

import (
	"context"
	"time"

	"pkt.systems/wheelhouse/schema"
)

// DownloadStart describes a transfer announced by the host engine.
type DownloadStart struct {
	URL               string
	SuggestedFilename string
	MIMEType          string
	TotalBytes        int64
}

// TransferHandle controls an in-flight transfer owned by the host engine.
// Cancellation and pause/resume are delegated here; Resumable gates resume.
type TransferHandle interface {
	Pause(ctx context.Context) error
	Resume(ctx context.Context) error
	Resumable() bool
	Cancel(ctx context.Context) error
}

// download tracks the state of a single transfer.
type download struct {
	ID            schema.DownloadID
	Filename      string
	URL           string
	SavePath      string
	MIMEType      string
	TotalBytes    int64
	ReceivedBytes int64
	State         schema.DownloadState
	Paused        bool
	Speed         float64
	ETASeconds    float64
	StartedAt     time.Time
	DoneAt        time.Time

	// sampling state for the >=0.5s speed/ETA cadence
	sampleAt       time.Time
	sampleReceived int64
}

// Snapshot returns a transport-friendly view of the download.
func (d *download) Snapshot() schema.DownloadSnapshot {
	return schema.DownloadSnapshot{
		ID:            d.ID,
		Filename:      d.Filename,
		URL:           d.URL,
		SavePath:      d.SavePath,
		MIMEType:      d.MIMEType,
		TotalBytes:    d.TotalBytes,
		ReceivedBytes: d.ReceivedBytes,
		State:         d.State,
		Paused:        d.Paused,
		Speed:         d.Speed,
		ETASeconds:    d.ETASeconds,
		StartedAt:     d.StartedAt,
	}
}

// sample recomputes speed and ETA if at least minInterval has elapsed since
// the previous sample. Between samples the previous values stand; progress
// events are still emitted on every underlying tick.
func (d *download) sample(now time.Time, minInterval time.Duration) {
	if d.sampleAt.IsZero() {
		d.sampleAt = now
		d.sampleReceived = d.ReceivedBytes
		return
	}
	elapsed := now.Sub(d.sampleAt)
	if elapsed < minInterval {
		return
	}
	d.Speed = float64(d.ReceivedBytes-d.sampleReceived) / elapsed.Seconds()
	if d.Speed > 0 && d.TotalBytes > 0 {
		d.ETASeconds = float64(d.TotalBytes-d.ReceivedBytes) / d.Speed
	}
	d.sampleAt = now
	d.sampleReceived = d.ReceivedBytes
}
