package schema

// TabEventType describes tab lifecycle or state changes.
type TabEventType string

const (
	// TabEventCreated indicates a tab was created.
	TabEventCreated TabEventType = "created"
	// TabEventClosed indicates a tab was closed.
	TabEventClosed TabEventType = "closed"
	// TabEventActivated indicates a tab became active.
	TabEventActivated TabEventType = "activated"
	// TabEventUpdated indicates tab attributes changed.
	TabEventUpdated TabEventType = "updated"
	// TabEventReordered indicates the tab order changed.
	TabEventReordered TabEventType = "reordered"
)

// TabEvent represents a change to a tab or the tab list. Tabs always carries
// the full list in display order so chrome surfaces can redraw the strip
// without issuing a follow-up query.
type TabEvent struct {
	Type      TabEventType
	Tab       TabSnapshot
	ActiveTab TabID
	Tabs      []TabSnapshot
}

// DownloadEventType describes download progress notifications.
type DownloadEventType string

const (
	// DownloadEventStarted indicates a download was registered.
	DownloadEventStarted DownloadEventType = "started"
	// DownloadEventProgress indicates received/total counts changed.
	DownloadEventProgress DownloadEventType = "progress"
	// DownloadEventDone indicates a download reached a terminal state.
	DownloadEventDone DownloadEventType = "done"
)

// DownloadEvent represents a normalized download progress notification.
type DownloadEvent struct {
	Type     DownloadEventType
	Download DownloadSnapshot
	// Notify is set on done events that warrant a user-visible completion
	// notice (successful completion only).
	Notify bool
}

// ToastEvent carries a non-blocking user-visible notice, emitted when a
// user-initiated mutation against the remote store fails.
type ToastEvent struct {
	Message string
}
