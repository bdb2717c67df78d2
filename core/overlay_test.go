package core

import (
	"context"
	"testing"
	"time"

	"pkt.systems/wheelhouse/schema"
)

func TestTranslatePoint(t *testing.T) {
	origin := schema.Rect{X: 240, Y: 0, Width: 1040, Height: 88}
	host := schema.Rect{X: 240, Y: 88, Width: 1040, Height: 712}
	got := TranslatePoint(schema.Point{X: 10, Y: 40}, origin, host)
	if got != (schema.Point{X: 10, Y: -48}) {
		t.Fatalf("unexpected translation: %+v", got)
	}
}

func TestClampMenuKeepsBoxInsideHost(t *testing.T) {
	host := schema.Rect{Width: 600, Height: 400}

	// Fits as-is.
	if got := ClampMenu(schema.Point{X: 10, Y: 10}, 3, host); got != (schema.Point{X: 10, Y: 10}) {
		t.Fatalf("fitting menu must not move: %+v", got)
	}
	// Overflows right and bottom.
	got := ClampMenu(schema.Point{X: 590, Y: 390}, 4, host)
	if got.X != 600-menuWidth {
		t.Fatalf("expected right clamp at %d, got %d", 600-menuWidth, got.X)
	}
	if got.Y != 400-4*menuRowHeight {
		t.Fatalf("expected bottom clamp at %d, got %d", 400-4*menuRowHeight, got.Y)
	}
	// Negative after translation.
	if got := ClampMenu(schema.Point{X: -30, Y: -5}, 2, host); got != (schema.Point{X: 0, Y: 0}) {
		t.Fatalf("expected origin clamp, got %+v", got)
	}
}

func TestOverlayRoutesChoiceToOrigin(t *testing.T) {
	router := newOverlayRouter(time.Minute, nil)
	origin := newFakeSurface(PrivilegeInternal)
	host := newFakeSurface(PrivilegeStandard)
	originRect := schema.Rect{X: 0, Y: 0, Width: 240, Height: 800}
	hostRect := schema.Rect{X: 240, Y: 88, Width: 1040, Height: 712}

	id, err := router.Open(context.Background(), origin, host, originRect, hostRect, schema.MenuRequest{
		At:      schema.Point{X: 20, Y: 300},
		Actions: []schema.MenuAction{schema.MenuCopy, schema.MenuPaste},
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if len(host.menus) != 1 {
		t.Fatalf("menu must render on the host surface, got %d", len(host.menus))
	}
	rendered := host.menus[0]
	if rendered.At != (schema.Point{X: 0, Y: 212}) {
		t.Fatalf("unexpected rendered position: %+v", rendered.At)
	}

	router.Resolve(context.Background(), id, schema.MenuChoice{Action: schema.MenuPaste})
	if len(origin.performed) != 1 || origin.performed[0] != schema.MenuPaste {
		t.Fatalf("choice must dispatch to the origin surface, got %v", origin.performed)
	}
	if len(host.performed) != 0 {
		t.Fatalf("host must not receive the action")
	}
	if router.pendingCount() != 0 {
		t.Fatalf("resolved menu must be unregistered")
	}
}

func TestOverlayDismissalPerformsNothing(t *testing.T) {
	router := newOverlayRouter(time.Minute, nil)
	origin := newFakeSurface(PrivilegeInternal)
	host := newFakeSurface(PrivilegeStandard)

	id, err := router.Open(context.Background(), origin, host, schema.Rect{}, schema.Rect{Width: 800, Height: 600}, schema.MenuRequest{
		Actions: []schema.MenuAction{schema.MenuCopy},
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	router.Resolve(context.Background(), id, schema.MenuChoice{Dismissed: true})
	if len(origin.performed) != 0 {
		t.Fatalf("dismissal must not perform an action")
	}
}

func TestOverlayDropsUnknownChoice(t *testing.T) {
	router := newOverlayRouter(time.Minute, nil)
	origin := newFakeSurface(PrivilegeInternal)

	router.Resolve(context.Background(), MenuID(99), schema.MenuChoice{Action: schema.MenuCopy})
	if len(origin.performed) != 0 {
		t.Fatalf("unknown menu choice must be dropped")
	}
}

func TestOverlayExpiresPendingMenus(t *testing.T) {
	router := newOverlayRouter(20*time.Millisecond, nil)
	origin := newFakeSurface(PrivilegeInternal)
	host := newFakeSurface(PrivilegeStandard)

	id, err := router.Open(context.Background(), origin, host, schema.Rect{}, schema.Rect{Width: 800, Height: 600}, schema.MenuRequest{
		Actions: []schema.MenuAction{schema.MenuCopy},
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for router.pendingCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("menu never expired")
		}
		time.Sleep(5 * time.Millisecond)
	}

	// A late choice is a no-op.
	router.Resolve(context.Background(), id, schema.MenuChoice{Action: schema.MenuCopy})
	if len(origin.performed) != 0 {
		t.Fatalf("expired menu must not dispatch")
	}
}

func TestOverlayOpenFailsWhenHostCannotRender(t *testing.T) {
	router := newOverlayRouter(time.Minute, nil)
	origin := newFakeSurface(PrivilegeInternal)
	host := newFakeSurface(PrivilegeStandard)
	host.renderErr = errFakeSubClosed

	if _, err := router.Open(context.Background(), origin, host, schema.Rect{}, schema.Rect{Width: 800, Height: 600}, schema.MenuRequest{}); err == nil {
		t.Fatalf("expected render error")
	}
	if router.pendingCount() != 0 {
		t.Fatalf("failed open must not leave a pending entry")
	}
}
