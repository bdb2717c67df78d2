package schema

// TabID identifies a content tab and its rendering surface.
type TabID string

// DownloadID identifies a tracked download.
type DownloadID string

// ZoomLevel is a page zoom factor where 1.0 means 100%.
type ZoomLevel float64

// DefaultZoom is the zoom level assigned to new tabs.
const DefaultZoom ZoomLevel = 1.0

// ZoomStep is the increment applied by zoom in/out commands.
const ZoomStep ZoomLevel = 0.1

// MinZoom and MaxZoom bound the zoom range.
const (
	MinZoom ZoomLevel = 0.25
	MaxZoom ZoomLevel = 5.0
)

// ClosedTab records a closed tab for the recall stack.
type ClosedTab struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}
