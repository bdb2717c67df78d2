package schema

import "time"

// TabSnapshot is a read-only view of tab state for transports and chrome.
type TabSnapshot struct {
	ID      TabID
	URL     string
	Title   string
	Favicon string
	Loading bool
	Muted   bool
	Pinned  bool
	Private bool
	Zoom    ZoomLevel
	Active  bool
}

// DownloadState describes the lifecycle state of a download.
type DownloadState string

const (
	// DownloadInProgress indicates bytes are still being transferred.
	DownloadInProgress DownloadState = "in_progress"
	// DownloadCompleted indicates the transfer finished successfully.
	DownloadCompleted DownloadState = "completed"
	// DownloadCancelled indicates the transfer was cancelled by the user.
	DownloadCancelled DownloadState = "cancelled"
	// DownloadInterrupted indicates the transfer failed.
	DownloadInterrupted DownloadState = "interrupted"
)

// Terminal reports whether the state is a terminal one.
func (s DownloadState) Terminal() bool {
	switch s {
	case DownloadCompleted, DownloadCancelled, DownloadInterrupted:
		return true
	}
	return false
}

// DownloadSnapshot is a read-only view of a download for transports and chrome.
type DownloadSnapshot struct {
	ID            DownloadID
	Filename      string
	URL           string
	SavePath      string
	MIMEType      string
	TotalBytes    int64
	ReceivedBytes int64
	State         DownloadState
	Paused        bool
	// Speed is the sampled transfer rate in bytes per second.
	Speed float64
	// ETASeconds is the estimated seconds remaining; it holds its previous
	// value whenever speed or total size cannot support a fresh estimate.
	ETASeconds float64
	StartedAt  time.Time
}
