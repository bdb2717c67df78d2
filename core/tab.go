package core

import (
	"time"

	"pkt.systems/wheelhouse/schema"
)

// tab tracks the state of a single content surface.
type tab struct {
	ID        schema.TabID
	URL       string
	Title     string
	Favicon   string
	Loading   bool
	Muted     bool
	Pinned    bool
	Private   bool
	Zoom      schema.ZoomLevel
	CreatedAt time.Time

	surface   Surface
	privilege SurfacePrivilege
	// events is the subscription handle; it must be closed before the
	// surface is torn down so no event fires mid-teardown.
	events   SurfaceEvents
	pumpDone chan struct{}
	findOpen bool
}

// Snapshot returns a transport-friendly view of the tab.
func (t *tab) Snapshot(active bool) schema.TabSnapshot {
	return schema.TabSnapshot{
		ID:      t.ID,
		URL:     t.URL,
		Title:   t.Title,
		Favicon: t.Favicon,
		Loading: t.Loading,
		Muted:   t.Muted,
		Pinned:  t.Pinned,
		Private: t.Private,
		Zoom:    t.Zoom,
		Active:  active,
	}
}
