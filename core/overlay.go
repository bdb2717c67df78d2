package core

import (
	"context"
	"sync"
	"time"

	"pkt.systems/pslog"
	"pkt.systems/wheelhouse/schema"
)

// Rendered menu box dimensions, in logical pixels. One row per action.
const (
	menuWidth     = 220
	menuRowHeight = 32
)

// TranslatePoint converts a point in the origin surface's local space into
// the host surface's local space by way of window coordinates: add the
// origin's offset within the window, subtract the host's.
func TranslatePoint(p schema.Point, origin, host schema.Rect) schema.Point {
	return schema.Point{
		X: p.X + origin.X - host.X,
		Y: p.Y + origin.Y - host.Y,
	}
}

// ClampMenu keeps a menu with the given number of actions fully inside the
// host surface's local bounds.
func ClampMenu(at schema.Point, actions int, host schema.Rect) schema.Point {
	height := actions * menuRowHeight
	if at.X+menuWidth > host.Width {
		at.X = host.Width - menuWidth
	}
	if at.Y+height > host.Height {
		at.Y = host.Height - height
	}
	if at.X < 0 {
		at.X = 0
	}
	if at.Y < 0 {
		at.Y = 0
	}
	return at
}

type pendingMenu struct {
	origin Surface
	timer  *time.Timer
}

// overlayRouter renders context menus requested on small chrome surfaces
// inside the larger content surface and routes the asynchronous selection
// back to the originating surface. Each listener is torn down when the
// action fires or when the timeout expires, whichever comes first.
type overlayRouter struct {
	timeout time.Duration
	log     pslog.Logger

	mu      sync.Mutex
	pending map[MenuID]*pendingMenu
}

func newOverlayRouter(timeout time.Duration, log pslog.Logger) *overlayRouter {
	return &overlayRouter{
		timeout: timeout,
		log:     log,
		pending: make(map[MenuID]*pendingMenu),
	}
}

// Open translates and clamps the requested menu position, renders the menu
// inside host, and registers a listener bound to the originating surface.
func (r *overlayRouter) Open(ctx context.Context, origin, host Surface, originRect, hostRect schema.Rect, req schema.MenuRequest) (MenuID, error) {
	at := TranslatePoint(req.At, originRect, hostRect)
	at = ClampMenu(at, len(req.Actions), hostRect)
	id := newMenuID()
	if err := host.RenderMenu(ctx, id, schema.MenuRequest{At: at, Actions: req.Actions}); err != nil {
		return 0, err
	}
	r.mu.Lock()
	entry := &pendingMenu{origin: origin}
	entry.timer = time.AfterFunc(r.timeout, func() { r.expire(id) })
	r.pending[id] = entry
	r.mu.Unlock()
	return id, nil
}

// Resolve dispatches the user's choice against the originating surface.
// Choices for unknown or expired menus are dropped.
func (r *overlayRouter) Resolve(ctx context.Context, id MenuID, choice schema.MenuChoice) {
	r.mu.Lock()
	entry := r.pending[id]
	delete(r.pending, id)
	r.mu.Unlock()
	if entry == nil {
		if r.log != nil {
			r.log.Debug("overlay choice dropped", "menu", id)
		}
		return
	}
	entry.timer.Stop()
	if choice.Dismissed {
		return
	}
	if err := entry.origin.Perform(ctx, choice.Action); err != nil && r.log != nil {
		r.log.Warn("overlay action failed", "menu", id, "action", choice.Action, "err", err)
	}
}

func (r *overlayRouter) expire(id MenuID) {
	r.mu.Lock()
	_, ok := r.pending[id]
	delete(r.pending, id)
	r.mu.Unlock()
	if ok && r.log != nil {
		r.log.Debug("overlay menu expired", "menu", id)
	}
}

func (r *overlayRouter) pendingCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}
