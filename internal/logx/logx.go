package logx

import (
	"context"

	"pkt.systems/pslog"
	"pkt.systems/wheelhouse/schema"
)

// Ctx returns the logger bound to the provided context.
func Ctx(ctx context.Context) pslog.Logger {
	return pslog.Ctx(ctx)
}

// WithTab annotates the context logger with a tab id when available.
func WithTab(ctx context.Context, tabID schema.TabID) pslog.Logger {
	log := pslog.Ctx(ctx)
	if tabID != "" {
		log = log.With("tab", tabID)
	}
	return log
}

// WithDownload annotates the context logger with a download id when
// available.
func WithDownload(ctx context.Context, downloadID schema.DownloadID) pslog.Logger {
	log := pslog.Ctx(ctx)
	if downloadID != "" {
		log = log.With("download", downloadID)
	}
	return log
}
