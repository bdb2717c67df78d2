package core

import (
	"context"

	"pkt.systems/wheelhouse/schema"
)

// SurfacePrivilege marks the script-bridge level a surface was provisioned
// with. Privilege is fixed at creation time; a destination that needs a
// higher level forces surface replacement, never in-place elevation.
type SurfacePrivilege string

const (
	// PrivilegeStandard is the level given to ordinary web content.
	PrivilegeStandard SurfacePrivilege = "standard"
	// PrivilegeInternal grants the elevated script bridge used by internal
	// pages (new-tab, settings).
	PrivilegeInternal SurfacePrivilege = "internal"
)

// ChromeRole identifies a fixed-role chrome surface.
type ChromeRole string

const (
	// ChromeToolbar is the top navigation bar.
	ChromeToolbar ChromeRole = "toolbar"
	// ChromeSidebar is the optional left panel.
	ChromeSidebar ChromeRole = "sidebar"
)

// MenuID correlates a rendered overlay menu with its pending listener.
type MenuID int64

// SurfaceEventKind identifies a lifecycle event emitted by a surface.
type SurfaceEventKind string

const (
	// SurfaceNavigationStarted fires when a navigation begins.
	SurfaceNavigationStarted SurfaceEventKind = "navigation-started"
	// SurfaceNavigationCommitted fires when a navigation commits.
	SurfaceNavigationCommitted SurfaceEventKind = "navigation-committed"
	// SurfaceInPageNavigation fires on same-document URL changes.
	SurfaceInPageNavigation SurfaceEventKind = "in-page-navigation"
	// SurfaceLoadingStarted fires when the surface starts loading.
	SurfaceLoadingStarted SurfaceEventKind = "loading-started"
	// SurfaceLoadingStopped fires when the surface stops loading.
	SurfaceLoadingStopped SurfaceEventKind = "loading-stopped"
	// SurfaceTitleChanged fires when the page title changes.
	SurfaceTitleChanged SurfaceEventKind = "title-changed"
	// SurfaceFaviconChanged fires when the page favicon changes.
	SurfaceFaviconChanged SurfaceEventKind = "favicon-changed"
	// SurfaceMenuRequested fires when the user requests a context menu.
	SurfaceMenuRequested SurfaceEventKind = "context-menu-requested"
	// SurfaceMenuChoice reports the selection from a rendered overlay menu.
	SurfaceMenuChoice SurfaceEventKind = "context-menu-choice"
	// SurfaceFullscreenEntered fires when page content goes fullscreen.
	SurfaceFullscreenEntered SurfaceEventKind = "fullscreen-entered"
	// SurfaceFullscreenExited fires when page content leaves fullscreen.
	SurfaceFullscreenExited SurfaceEventKind = "fullscreen-exited"
	// SurfaceNewSurfaceRequested fires on window-open intercepts. The
	// request is always denied; http(s) targets open in a new tab instead.
	SurfaceNewSurfaceRequested SurfaceEventKind = "new-surface-requested"
)

// SurfaceEvent is a single lifecycle notification from a surface. Events
// from one surface arrive in emission order; no ordering holds across
// surfaces.
type SurfaceEvent struct {
	Kind    SurfaceEventKind
	URL     string
	Title   string
	Favicon string
	Menu    schema.MenuRequest
	MenuID  MenuID
	Choice  schema.MenuChoice
}

// SurfaceEvents is the subscription handle for one surface's lifecycle
// stream. Closing it is mandatory before surface teardown; events arriving
// afterwards are undeliverable by construction.
type SurfaceEvents interface {
	Next(ctx context.Context) (SurfaceEvent, error)
	Close() error
}

// SurfaceConfig describes a content surface to create.
type SurfaceConfig struct {
	URL       string
	Privilege SurfacePrivilege
	Private   bool
}

// Surface is one isolated rendering region. All calls are asynchronous
// commands against the host engine; none may block registry work beyond
// the context deadline.
type Surface interface {
	Events() SurfaceEvents
	Load(ctx context.Context, url string) error
	HistoryNav(ctx context.Context, op schema.HistoryOp) error
	SetZoom(ctx context.Context, zoom schema.ZoomLevel) error
	Find(ctx context.Context, query string) error
	StopFind(ctx context.Context) error
	SetMuted(ctx context.Context, muted bool) error
	// SetBounds attaches the surface to the composited view at the given
	// window rectangle.
	SetBounds(ctx context.Context, bounds schema.Rect) error
	// Hide detaches the surface from the composited view.
	Hide(ctx context.Context) error
	// RenderMenu draws a synthetic context menu at a point in this
	// surface's local coordinates; the choice comes back as a
	// SurfaceMenuChoice event carrying the same id.
	RenderMenu(ctx context.Context, id MenuID, req schema.MenuRequest) error
	// Perform executes a context menu action against this surface.
	Perform(ctx context.Context, action schema.MenuAction) error
	Privilege() SurfacePrivilege
	Close() error
}

// SurfaceFactory is the host capability that creates isolated surfaces.
type SurfaceFactory interface {
	NewContentSurface(ctx context.Context, cfg SurfaceConfig) (Surface, error)
	NewChromeSurface(ctx context.Context, role ChromeRole) (Surface, error)
}

// Revealer is an optional host capability that shows a saved file in the
// platform file manager.
type Revealer interface {
	Reveal(ctx context.Context, path string) error
}
