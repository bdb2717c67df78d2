package core

import (
	"context"

	"pkt.systems/wheelhouse/schema"
)

// Service is the shell core: tab registry, layout compositor, download
// tracker, session persister, and overlay router behind one lock.
type Service interface {
	// Start creates the chrome surfaces, runs the session restore chain,
	// and arms the periodic save and download sweep timers.
	Start(ctx context.Context) error
	// Shutdown stops the timers, saves the session synchronously, and tears
	// down every surface.
	Shutdown(ctx context.Context) error

	CreateTab(ctx context.Context, req schema.CreateTabRequest) (schema.CreateTabResponse, error)
	CloseTab(ctx context.Context, req schema.CloseTabRequest) (schema.CloseTabResponse, error)
	SwitchTab(ctx context.Context, req schema.SwitchTabRequest) (schema.SwitchTabResponse, error)
	ListTabs(ctx context.Context, req schema.ListTabsRequest) (schema.ListTabsResponse, error)
	ReorderTab(ctx context.Context, req schema.ReorderTabRequest) error
	StepTab(ctx context.Context, req schema.StepTabRequest) error
	ReopenTab(ctx context.Context, req schema.ReopenTabRequest) (schema.ReopenTabResponse, error)
	MuteTab(ctx context.Context, req schema.MuteTabRequest) error
	PinTab(ctx context.Context, req schema.PinTabRequest) error
	DuplicateTab(ctx context.Context, req schema.DuplicateTabRequest) (schema.DuplicateTabResponse, error)
	CloseOtherTabs(ctx context.Context, req schema.CloseOtherTabsRequest) error
	CloseTabsToRight(ctx context.Context, req schema.CloseTabsToRightRequest) error

	Navigate(ctx context.Context, req schema.NavigateRequest) (schema.NavigateResponse, error)
	HistoryNav(ctx context.Context, req schema.HistoryNavRequest) error
	Zoom(ctx context.Context, req schema.ZoomRequest) (schema.ZoomResponse, error)
	Find(ctx context.Context, req schema.FindRequest) error
	StopFind(ctx context.Context, req schema.StopFindRequest) error

	Resize(ctx context.Context, req schema.ResizeRequest) (schema.LayoutResponse, error)
	ToggleSidebar(ctx context.Context, req schema.ToggleSidebarRequest) (schema.LayoutResponse, error)
	ToggleFullscreen(ctx context.Context, req schema.ToggleFullscreenRequest) (schema.LayoutResponse, error)
	CurrentLayout(ctx context.Context) (schema.LayoutResponse, error)

	ListDownloads(ctx context.Context, req schema.ListDownloadsRequest) (schema.ListDownloadsResponse, error)
	PauseDownload(ctx context.Context, req schema.PauseDownloadRequest) error
	ResumeDownload(ctx context.Context, req schema.ResumeDownloadRequest) error
	CancelDownload(ctx context.Context, req schema.CancelDownloadRequest) error
	RevealDownload(ctx context.Context, req schema.RevealDownloadRequest) error

	AddBookmark(ctx context.Context, req schema.AddBookmarkRequest) error
	SaveSession(ctx context.Context, req schema.SaveSessionRequest) error
	RestoreSession(ctx context.Context, req schema.RestoreSessionRequest) (schema.RestoreSessionResponse, error)

	DownloadSink
}

// DownloadSink is the ingress the host engine feeds transfer lifecycle
// notifications into.
type DownloadSink interface {
	// DownloadStarted registers a transfer and returns its tracker id.
	DownloadStarted(ctx context.Context, item DownloadStart, handle TransferHandle) schema.DownloadID
	// DownloadProgress updates byte counts for an in-flight transfer.
	// Unknown ids are dropped.
	DownloadProgress(ctx context.Context, id schema.DownloadID, received, total int64)
	// DownloadDone moves a transfer into a terminal state.
	DownloadDone(ctx context.Context, id schema.DownloadID, state schema.DownloadState)
}
