package core

import (
	"context"
	"errors"
	"math"
	"testing"

	"pkt.systems/wheelhouse/schema"
)

func TestNavigateRequiresURL(t *testing.T) {
	env := newTestService(t, nil)
	tab := mustCreateTab(t, env, "https://a.example/", true)

	_, err := env.svc.Navigate(context.Background(), schema.NavigateRequest{TabID: tab.ID, URL: "   "})
	if !errors.Is(err, schema.ErrInvalidURL) {
		t.Fatalf("expected ErrInvalidURL, got %v", err)
	}
}

func TestNavigateSamePrivilegeReusesSurface(t *testing.T) {
	env := newTestService(t, nil)
	tab := mustCreateTab(t, env, "https://a.example/", true)

	resp, err := env.svc.Navigate(context.Background(), schema.NavigateRequest{TabID: tab.ID, URL: "https://b.example/page"})
	if err != nil {
		t.Fatalf("navigate: %v", err)
	}
	if resp.Tab.ID != tab.ID {
		t.Fatalf("same-privilege navigation must keep the tab id")
	}
	if !resp.Tab.Loading {
		t.Fatalf("navigation should mark the tab loading")
	}
	if env.factory.surfaceCount() != 1 {
		t.Fatalf("same-privilege navigation must not provision a surface")
	}
	surface := env.factory.surfaceAt(0)
	if len(surface.loads) != 2 || surface.loads[1] != "https://b.example/page" {
		t.Fatalf("unexpected loads: %v", surface.loads)
	}
}

func TestNavigateAcrossPrivilegeReplacesTab(t *testing.T) {
	env := newTestService(t, nil)
	tab := mustCreateTab(t, env, "https://a.example/", true)

	resp, err := env.svc.Navigate(context.Background(), schema.NavigateRequest{TabID: tab.ID, URL: "about:settings"})
	if err != nil {
		t.Fatalf("navigate: %v", err)
	}
	if resp.Tab.ID == tab.ID {
		t.Fatalf("privilege change must replace the tab")
	}
	if resp.Tab.Title != "Settings" {
		t.Fatalf("expected internal page title, got %q", resp.Tab.Title)
	}
	list, _ := env.svc.ListTabs(context.Background(), schema.ListTabsRequest{})
	if len(list.Tabs) != 1 {
		t.Fatalf("replacement must take the old slot, got %d tabs", len(list.Tabs))
	}
	if list.ActiveTab != resp.Tab.ID {
		t.Fatalf("replacement must be active")
	}
	if !env.factory.surfaceAt(0).closed {
		t.Fatalf("old surface must be torn down")
	}
	if env.factory.surfaceAt(1).Privilege() != PrivilegeInternal {
		t.Fatalf("replacement surface must carry internal privilege")
	}

	// The replacement produced no reopenable record.
	reopen, err := env.svc.ReopenTab(context.Background(), schema.ReopenTabRequest{})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if reopen.Reopened {
		t.Fatalf("privilege replacement must not feed the recall stack")
	}
}

func TestNavigateUnknownTabIsNoOp(t *testing.T) {
	env := newTestService(t, nil)
	mustCreateTab(t, env, "https://a.example/", true)

	resp, err := env.svc.Navigate(context.Background(), schema.NavigateRequest{TabID: "tab-missing", URL: "https://b.example/"})
	if err != nil {
		t.Fatalf("navigate unknown: %v", err)
	}
	if resp.Tab.ID != "" {
		t.Fatalf("unknown tab must yield an empty response")
	}
}

func TestHistoryNavDelegatesToSurface(t *testing.T) {
	env := newTestService(t, nil)
	tab := mustCreateTab(t, env, "https://a.example/", true)

	for _, op := range []schema.HistoryOp{schema.HistoryBack, schema.HistoryForward, schema.HistoryReload} {
		if err := env.svc.HistoryNav(context.Background(), schema.HistoryNavRequest{TabID: tab.ID, Op: op}); err != nil {
			t.Fatalf("history %s: %v", op, err)
		}
	}
	surface := env.factory.surfaceAt(0)
	if len(surface.history) != 3 {
		t.Fatalf("expected 3 history ops, got %v", surface.history)
	}
}

func TestZoomStepsAndClamps(t *testing.T) {
	env := newTestService(t, nil)
	tab := mustCreateTab(t, env, "https://a.example/", true)

	resp, err := env.svc.Zoom(context.Background(), schema.ZoomRequest{TabID: tab.ID, Op: schema.ZoomIn})
	if err != nil {
		t.Fatalf("zoom in: %v", err)
	}
	if math.Abs(float64(resp.Zoom)-1.1) > 1e-9 {
		t.Fatalf("expected zoom 1.1, got %v", resp.Zoom)
	}

	for i := 0; i < 100; i++ {
		resp, err = env.svc.Zoom(context.Background(), schema.ZoomRequest{TabID: tab.ID, Op: schema.ZoomOut})
		if err != nil {
			t.Fatalf("zoom out: %v", err)
		}
	}
	if resp.Zoom != schema.MinZoom {
		t.Fatalf("expected clamp at %v, got %v", schema.MinZoom, resp.Zoom)
	}

	resp, err = env.svc.Zoom(context.Background(), schema.ZoomRequest{TabID: tab.ID, Op: schema.ZoomReset})
	if err != nil {
		t.Fatalf("zoom reset: %v", err)
	}
	if resp.Zoom != schema.DefaultZoom {
		t.Fatalf("expected reset to default, got %v", resp.Zoom)
	}

	if _, err := env.svc.Zoom(context.Background(), schema.ZoomRequest{TabID: tab.ID, Op: "sideways"}); !errors.Is(err, schema.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for bad op, got %v", err)
	}
}

func TestStopFindWithoutOpenFindIsNoOp(t *testing.T) {
	env := newTestService(t, nil)
	tab := mustCreateTab(t, env, "https://a.example/", true)

	if err := env.svc.StopFind(context.Background(), schema.StopFindRequest{TabID: tab.ID}); err != nil {
		t.Fatalf("stop find: %v", err)
	}
	if env.factory.surfaceAt(0).stopFinds != 0 {
		t.Fatalf("stop without an open find must not hit the surface")
	}

	if err := env.svc.Find(context.Background(), schema.FindRequest{TabID: tab.ID, Query: "x"}); err != nil {
		t.Fatalf("find: %v", err)
	}
	if err := env.svc.StopFind(context.Background(), schema.StopFindRequest{TabID: tab.ID}); err != nil {
		t.Fatalf("stop find: %v", err)
	}
	if env.factory.surfaceAt(0).stopFinds != 1 {
		t.Fatalf("expected one surface stop, got %d", env.factory.surfaceAt(0).stopFinds)
	}
}

func TestResizeValidatesAndRecomposites(t *testing.T) {
	env := newTestService(t, nil)
	tab := mustCreateTab(t, env, "https://a.example/", true)

	if _, err := env.svc.Resize(context.Background(), schema.ResizeRequest{Width: 0, Height: 600}); !errors.Is(err, schema.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for zero width, got %v", err)
	}

	resp, err := env.svc.Resize(context.Background(), schema.ResizeRequest{Width: 1000, Height: 700})
	if err != nil {
		t.Fatalf("resize: %v", err)
	}
	want := schema.Rect{
		X:      schema.DefaultSidebarWidth,
		Y:      schema.DefaultToolbarHeight,
		Width:  1000 - schema.DefaultSidebarWidth,
		Height: 700 - schema.DefaultToolbarHeight,
	}
	if resp.Layout.Content != want {
		t.Fatalf("unexpected content rect: %+v", resp.Layout.Content)
	}
	bounds, ok := env.factory.surfaceAt(0).lastBounds()
	if !ok || bounds != want {
		t.Fatalf("active surface not placed at content rect: %+v", bounds)
	}
	_ = tab
}

func TestToggleSidebarCollapsesAndExpands(t *testing.T) {
	env := newTestService(t, nil)
	mustCreateTab(t, env, "https://a.example/", true)

	resp, err := env.svc.ToggleSidebar(context.Background(), schema.ToggleSidebarRequest{})
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if resp.Layout.Sidebar.Width != schema.DefaultSidebarCollapsedWidth {
		t.Fatalf("expected collapsed width, got %d", resp.Layout.Sidebar.Width)
	}
	resp, err = env.svc.ToggleSidebar(context.Background(), schema.ToggleSidebarRequest{})
	if err != nil {
		t.Fatalf("toggle back: %v", err)
	}
	if resp.Layout.Sidebar.Width != schema.DefaultSidebarWidth {
		t.Fatalf("expected expanded width, got %d", resp.Layout.Sidebar.Width)
	}
}

func TestToggleFullscreenGivesContentWholeWindow(t *testing.T) {
	env := newTestService(t, nil)
	mustCreateTab(t, env, "https://a.example/", true)

	resp, err := env.svc.ToggleFullscreen(context.Background(), schema.ToggleFullscreenRequest{})
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !resp.Layout.Toolbar.Empty() || !resp.Layout.Sidebar.Empty() {
		t.Fatalf("fullscreen must collapse chrome: %+v", resp.Layout)
	}
	if resp.Layout.Content.Width != 1280 || resp.Layout.Content.Height != 800 {
		t.Fatalf("fullscreen content should take the window, got %+v", resp.Layout.Content)
	}

	current, err := env.svc.CurrentLayout(context.Background())
	if err != nil {
		t.Fatalf("current layout: %v", err)
	}
	if current.Layout != resp.Layout {
		t.Fatalf("CurrentLayout should match the last toggle result")
	}
}
