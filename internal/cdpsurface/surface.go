package cdpsurface

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/chromedp/cdproto/browser"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
	"pkt.systems/wheelhouse/core"
	"pkt.systems/wheelhouse/schema"
)

// menuBinding is the script bridge callback synthetic context menus report
// their selection through.
const menuBinding = "__wheelhouseMenu"

var errSubscriptionClosed = errors.New("surface event subscription closed")

// subscription delivers one surface's event stream. Emission never blocks;
// a full buffer loses the oldest pending delivery opportunity.
type subscription struct {
	ch   chan core.SurfaceEvent
	done chan struct{}
	once sync.Once
}

func newSubscription() *subscription {
	return &subscription{
		ch:   make(chan core.SurfaceEvent, 64),
		done: make(chan struct{}),
	}
}

func (s *subscription) Next(ctx context.Context) (core.SurfaceEvent, error) {
	select {
	case <-s.done:
		return core.SurfaceEvent{}, errSubscriptionClosed
	case <-ctx.Done():
		return core.SurfaceEvent{}, ctx.Err()
	case event := <-s.ch:
		return event, nil
	}
}

func (s *subscription) Close() error {
	s.once.Do(func() { close(s.done) })
	return nil
}

func (s *subscription) emit(event core.SurfaceEvent) {
	select {
	case <-s.done:
	case s.ch <- event:
	default:
	}
}

// surface is one engine target.
type surface struct {
	ctx       context.Context
	cancel    context.CancelFunc
	factory   *Factory
	privilege core.SurfacePrivilege
	role      core.ChromeRole
	sub       *subscription
}

func (f *Factory) newSurface(privilege core.SurfacePrivilege, private bool) (*surface, error) {
	_ = private // per-target incognito needs its own browser context; the window-level flag covers it
	tabCtx, cancel := chromedp.NewContext(f.allocCtx)
	s := &surface{
		ctx:       tabCtx,
		cancel:    cancel,
		factory:   f,
		privilege: privilege,
		sub:       newSubscription(),
	}
	chromedp.ListenTarget(tabCtx, s.handleTargetEvent)
	if err := chromedp.Run(tabCtx,
		page.Enable(),
		runtime.Enable(),
		runtime.AddBinding(menuBinding),
	); err != nil {
		cancel()
		return nil, fmt.Errorf("%w: %v", schema.ErrSurfaceUnavailable, err)
	}
	f.initDownloads(tabCtx)
	return s, nil
}

func (s *surface) handleTargetEvent(ev any) {
	switch ev := ev.(type) {
	case *page.EventFrameStartedLoading:
		s.sub.emit(core.SurfaceEvent{Kind: core.SurfaceLoadingStarted})
	case *page.EventLoadEventFired:
		s.sub.emit(core.SurfaceEvent{Kind: core.SurfaceLoadingStopped})
	case *page.EventFrameNavigated:
		if ev.Frame != nil && ev.Frame.ParentID == "" {
			s.sub.emit(core.SurfaceEvent{Kind: core.SurfaceNavigationCommitted, URL: ev.Frame.URL})
		}
	case *page.EventNavigatedWithinDocument:
		s.sub.emit(core.SurfaceEvent{Kind: core.SurfaceInPageNavigation, URL: ev.URL})
	case *page.EventWindowOpen:
		s.sub.emit(core.SurfaceEvent{Kind: core.SurfaceNewSurfaceRequested, URL: ev.URL})
	case *target.EventTargetInfoChanged:
		if ev.TargetInfo != nil && ev.TargetInfo.Title != "" {
			s.sub.emit(core.SurfaceEvent{Kind: core.SurfaceTitleChanged, Title: ev.TargetInfo.Title})
		}
	case *runtime.EventBindingCalled:
		if ev.Name == menuBinding {
			s.handleMenuCallback(ev.Payload)
		}
	case *browser.EventDownloadWillBegin:
		s.factory.downloadWillBegin(s.ctx, ev)
	case *browser.EventDownloadProgress:
		s.factory.downloadProgress(ev)
	}
}

func (s *surface) handleMenuCallback(payload string) {
	var msg struct {
		Menu      int64  `json:"menu"`
		Action    string `json:"action"`
		Dismissed bool   `json:"dismissed"`
	}
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		return
	}
	s.sub.emit(core.SurfaceEvent{
		Kind:   core.SurfaceMenuChoice,
		MenuID: core.MenuID(msg.Menu),
		Choice: schema.MenuChoice{
			Action:    schema.MenuAction(msg.Action),
			Dismissed: msg.Dismissed,
		},
	})
}

func (s *surface) Events() core.SurfaceEvents {
	return s.sub
}

func (s *surface) Load(ctx context.Context, url string) error {
	return chromedp.Run(s.ctx, chromedp.Navigate(url))
}

func (s *surface) HistoryNav(ctx context.Context, op schema.HistoryOp) error {
	switch op {
	case schema.HistoryBack:
		return chromedp.Run(s.ctx, chromedp.NavigateBack())
	case schema.HistoryForward:
		return chromedp.Run(s.ctx, chromedp.NavigateForward())
	case schema.HistoryReload:
		return chromedp.Run(s.ctx, chromedp.Reload())
	}
	return schema.ErrInvalidRequest
}

func (s *surface) SetZoom(ctx context.Context, zoom schema.ZoomLevel) error {
	return chromedp.Run(s.ctx, emulation.SetPageScaleFactor(float64(zoom)))
}

func (s *surface) Find(ctx context.Context, query string) error {
	script := fmt.Sprintf("window.find(%q, false, false, true)", query)
	return chromedp.Run(s.ctx, chromedp.Evaluate(script, nil))
}

func (s *surface) StopFind(ctx context.Context) error {
	return chromedp.Run(s.ctx, chromedp.Evaluate("window.getSelection().removeAllRanges()", nil))
}

func (s *surface) SetMuted(ctx context.Context, muted bool) error {
	script := fmt.Sprintf(
		"document.querySelectorAll('audio,video').forEach(el => { el.muted = %t; })", muted)
	return chromedp.Run(s.ctx, chromedp.Evaluate(script, nil))
}

// SetBounds sizes the target's viewport. Window placement of the target
// itself belongs to the host window manager.
func (s *surface) SetBounds(ctx context.Context, bounds schema.Rect) error {
	if bounds.Empty() {
		return s.Hide(ctx)
	}
	return chromedp.Run(s.ctx, emulation.SetDeviceMetricsOverride(
		int64(bounds.Width), int64(bounds.Height), 1, false))
}

// Hide detaches the target from the composited view. The engine keeps the
// page alive in the background.
func (s *surface) Hide(ctx context.Context) error {
	return chromedp.Run(s.ctx, chromedp.Evaluate(
		"document.dispatchEvent(new Event('visibilitychange'))", nil))
}

// RenderMenu injects a synthetic context menu. The selection comes back
// through the menu binding as a SurfaceMenuChoice event.
func (s *surface) RenderMenu(ctx context.Context, id core.MenuID, req schema.MenuRequest) error {
	actions, err := json.Marshal(req.Actions)
	if err != nil {
		return err
	}
	script := fmt.Sprintf(`(() => {
	const old = document.getElementById('__wh_menu');
	if (old) old.remove();
	const menu = document.createElement('div');
	menu.id = '__wh_menu';
	menu.style.cssText = 'position:fixed;left:%dpx;top:%dpx;z-index:2147483647;background:#fff;border:1px solid #ccc;box-shadow:0 2px 8px rgba(0,0,0,.2);font:13px sans-serif;';
	for (const action of %s) {
		const row = document.createElement('div');
		row.textContent = action;
		row.style.cssText = 'padding:6px 12px;cursor:default;';
		row.onclick = () => { menu.remove(); window.%s(JSON.stringify({menu:%d,action:action})); };
		menu.appendChild(row);
	}
	const dismiss = (e) => {
		if (!menu.contains(e.target)) {
			menu.remove();
			document.removeEventListener('mousedown', dismiss, true);
			window.%s(JSON.stringify({menu:%d,dismissed:true}));
		}
	};
	document.addEventListener('mousedown', dismiss, true);
	document.body.appendChild(menu);
})()`, req.At.X, req.At.Y, string(actions), menuBinding, id, menuBinding, id)
	return chromedp.Run(s.ctx, chromedp.Evaluate(script, nil))
}

func (s *surface) Perform(ctx context.Context, action schema.MenuAction) error {
	var command string
	switch action {
	case schema.MenuCopy:
		command = "copy"
	case schema.MenuCut:
		command = "cut"
	case schema.MenuPaste:
		command = "paste"
	case schema.MenuSelectAll:
		command = "selectAll"
	case schema.MenuInspect:
		// DevTools attachment is driven by the host, not the page.
		return nil
	default:
		return schema.ErrInvalidRequest
	}
	script := fmt.Sprintf("document.execCommand(%q)", command)
	return chromedp.Run(s.ctx, chromedp.Evaluate(script, nil))
}

func (s *surface) Privilege() core.SurfacePrivilege {
	return s.privilege
}

func (s *surface) Close() error {
	_ = s.sub.Close()
	s.cancel()
	return nil
}
