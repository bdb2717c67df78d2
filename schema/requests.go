package schema

// Tab lifecycle.

// CreateTabRequest describes a request to open a tab.
type CreateTabRequest struct {
	URL      string
	Activate bool
}

// CreateTabResponse reports the created tab.
type CreateTabResponse struct {
	Tab TabSnapshot
}

// CloseTabRequest describes a request to close a tab.
type CloseTabRequest struct {
	TabID TabID
}

// CloseTabResponse reports whether a tab was actually closed.
type CloseTabResponse struct {
	Closed bool
}

// SwitchTabRequest describes a request to activate a tab.
type SwitchTabRequest struct {
	TabID TabID
}

// SwitchTabResponse reports the now-active tab.
type SwitchTabResponse struct {
	Tab TabSnapshot
}

// ListTabsRequest describes a request to list tabs in display order.
type ListTabsRequest struct{}

// ListTabsResponse reports tabs and the active pointer.
type ListTabsResponse struct {
	Tabs      []TabSnapshot
	ActiveTab TabID
}

// ReorderTabRequest moves From into To's former position.
type ReorderTabRequest struct {
	From TabID
	To   TabID
}

// StepTabRequest cycles the active tab by Delta positions.
type StepTabRequest struct {
	Delta int
}

// ReopenTabRequest pops the closed-tab stack.
type ReopenTabRequest struct{}

// ReopenTabResponse reports the recreated tab, if any.
type ReopenTabResponse struct {
	Tab      TabSnapshot
	Reopened bool
}

// MuteTabRequest toggles the audio-mute flag.
type MuteTabRequest struct {
	TabID TabID
}

// PinTabRequest sets or clears the pinned flag.
type PinTabRequest struct {
	TabID  TabID
	Pinned bool
}

// DuplicateTabRequest clones a tab next to its source. The clone stays in
// the background unless Activate is set.
type DuplicateTabRequest struct {
	TabID    TabID
	Activate bool
}

// DuplicateTabResponse reports the clone.
type DuplicateTabResponse struct {
	Tab TabSnapshot
}

// CloseOtherTabsRequest closes every tab except the given one.
type CloseOtherTabsRequest struct {
	TabID TabID
}

// CloseTabsToRightRequest closes every tab after the given one in order.
type CloseTabsToRightRequest struct {
	TabID TabID
}

// Navigation.

// NavigateRequest loads a destination in a tab. When the destination needs
// surface privileges the tab was not provisioned with, the tab is replaced.
type NavigateRequest struct {
	TabID TabID
	URL   string
}

// NavigateResponse reports the tab now showing the destination; its ID
// differs from the request when the tab had to be replaced.
type NavigateResponse struct {
	Tab TabSnapshot
}

// HistoryOp selects a surface history traversal.
type HistoryOp string

const (
	// HistoryBack navigates one entry back.
	HistoryBack HistoryOp = "back"
	// HistoryForward navigates one entry forward.
	HistoryForward HistoryOp = "forward"
	// HistoryReload reloads the current entry.
	HistoryReload HistoryOp = "reload"
)

// HistoryNavRequest applies a history traversal to a tab.
type HistoryNavRequest struct {
	TabID TabID
	Op    HistoryOp
}

// ZoomOp selects a zoom adjustment.
type ZoomOp string

const (
	// ZoomIn increases the zoom level one step.
	ZoomIn ZoomOp = "in"
	// ZoomOut decreases the zoom level one step.
	ZoomOut ZoomOp = "out"
	// ZoomReset restores the default zoom level.
	ZoomReset ZoomOp = "reset"
)

// ZoomRequest adjusts a tab's zoom level.
type ZoomRequest struct {
	TabID TabID
	Op    ZoomOp
}

// ZoomResponse reports the resulting zoom level.
type ZoomResponse struct {
	Zoom ZoomLevel
}

// FindRequest starts or updates find-in-page on a tab.
type FindRequest struct {
	TabID TabID
	Query string
}

// StopFindRequest dismisses find-in-page on a tab.
type StopFindRequest struct {
	TabID TabID
}

// Window state.

// ResizeRequest reports a new window content size.
type ResizeRequest struct {
	Width  int
	Height int
}

// ToggleSidebarRequest flips the sidebar-collapsed flag.
type ToggleSidebarRequest struct{}

// ToggleFullscreenRequest flips fullscreen for the active tab's surface.
type ToggleFullscreenRequest struct{}

// LayoutResponse reports the current rectangle assignments.
type LayoutResponse struct {
	Layout Layout
}

// Downloads.

// ListDownloadsRequest lists retained downloads, newest first.
type ListDownloadsRequest struct{}

// ListDownloadsResponse reports retained downloads.
type ListDownloadsResponse struct {
	Downloads []DownloadSnapshot
}

// PauseDownloadRequest pauses an in-progress download.
type PauseDownloadRequest struct {
	DownloadID DownloadID
}

// ResumeDownloadRequest resumes a paused download when the handle allows it.
type ResumeDownloadRequest struct {
	DownloadID DownloadID
}

// CancelDownloadRequest cancels a download.
type CancelDownloadRequest struct {
	DownloadID DownloadID
}

// RevealDownloadRequest asks the host to reveal the saved file.
type RevealDownloadRequest struct {
	DownloadID DownloadID
}

// Bookmarks and session.

// AddBookmarkRequest stores a bookmark through the remote store.
type AddBookmarkRequest struct {
	URL   string
	Title string
}

// SaveSessionRequest forces a session save outside the timer.
type SaveSessionRequest struct{}

// RestoreSessionRequest runs the restore fallback chain.
type RestoreSessionRequest struct{}

// RestoreSessionResponse reports whether any tab was restored.
type RestoreSessionResponse struct {
	Restored bool
	Tabs     int
}
