package core

import (
	"context"
	"errors"
	"os"
	"sync"
	"time"

	"pkt.systems/pslog"
	"pkt.systems/wheelhouse/schema"
)

// service implements the shell core behavior.
type service struct {
	cfg        schema.ServiceConfig
	surfaces   SurfaceFactory
	store      Store
	session    SessionFile
	revealer   Revealer
	sink       EventSink
	logger     pslog.Logger
	compositor Compositor
	overlay    *overlayRouter
	now        func() time.Time

	mu     sync.Mutex
	tabs   map[schema.TabID]*tab
	order  []schema.TabID
	active schema.TabID
	closed *closedStack

	downloads     map[schema.DownloadID]*download
	downloadOrder []schema.DownloadID
	handles       map[schema.DownloadID]TransferHandle

	window  schema.LayoutInput
	toolbar *chromeSurface
	sidebar *chromeSurface

	stop    chan struct{}
	stopped sync.WaitGroup
	started bool
}

// chromeSurface pairs a fixed-role surface with its event subscription.
type chromeSurface struct {
	role     ChromeRole
	surface  Surface
	events   SurfaceEvents
	pumpDone chan struct{}
}

// NewService constructs the shell core.
func NewService(cfg schema.ServiceConfig, deps ServiceDeps) (Service, error) {
	normalized, err := schema.NormalizeServiceConfig(cfg)
	if err != nil {
		return nil, err
	}
	cfg = normalized
	if deps.Surfaces == nil {
		return nil, errors.New("missing surface factory")
	}
	if err := os.MkdirAll(cfg.StateDir, 0o755); err != nil {
		return nil, err
	}
	logger := deps.Logger
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	s := &service{
		cfg:        cfg,
		surfaces:   deps.Surfaces,
		store:      deps.Store,
		session:    deps.Session,
		revealer:   deps.Revealer,
		sink:       deps.EventSink,
		logger:     logger,
		compositor: NewCompositor(cfg, !cfg.DisableSidebar),
		overlay:    newOverlayRouter(cfg.MenuTimeout, logger),
		now:        time.Now,
		tabs:       make(map[schema.TabID]*tab),
		closed:     newClosedStack(cfg.ClosedStackMax),
		downloads:  make(map[schema.DownloadID]*download),
		handles:    make(map[schema.DownloadID]TransferHandle),
		window: schema.LayoutInput{
			Width:         cfg.WindowWidth,
			Height:        cfg.WindowHeight,
			PrivateWindow: cfg.PrivateWindow,
		},
		stop: make(chan struct{}),
	}
	return s, nil
}

// Start brings up chrome, restores the previous session (or opens the
// default tab), and arms the periodic timers.
func (s *service) Start(ctx context.Context) error {
	if ctx == nil {
		return errors.New("missing context")
	}
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return errors.New("service already started")
	}
	s.started = true
	s.mu.Unlock()

	toolbar, err := s.newChromeSurface(ctx, ChromeToolbar)
	if err != nil {
		return err
	}
	var sidebar *chromeSurface
	if !s.cfg.DisableSidebar {
		sidebar, err = s.newChromeSurface(ctx, ChromeSidebar)
		if err != nil {
			toolbar.teardown()
			return err
		}
	}
	s.mu.Lock()
	s.toolbar = toolbar
	s.sidebar = sidebar
	s.mu.Unlock()

	restored, err := s.RestoreSession(ctx, schema.RestoreSessionRequest{})
	if err != nil {
		s.logger.Warn("session restore failed", "err", err)
	}
	if !restored.Restored {
		if _, err := s.CreateTab(ctx, schema.CreateTabRequest{Activate: true}); err != nil {
			return err
		}
	}
	s.applyLayout(ctx)

	s.stopped.Add(2)
	go s.sessionSaveLoop()
	go s.downloadSweepLoop()
	s.logger.Info("shell core started",
		"tabs", restored.Tabs,
		"restored", restored.Restored,
		"sidebar", !s.cfg.DisableSidebar,
		"private", s.cfg.PrivateWindow)
	return nil
}

// Shutdown stops the timers, saves the session one last time, and tears
// down every surface. Safe to call once.
func (s *service) Shutdown(ctx context.Context) error {
	if ctx == nil {
		return errors.New("missing context")
	}
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = false
	s.mu.Unlock()
	close(s.stop)
	s.stopped.Wait()

	if err := s.saveSession(ctx); err != nil {
		s.logger.Warn("final session save failed", "err", err)
	}

	s.mu.Lock()
	tabs := make([]*tab, 0, len(s.order))
	for _, id := range s.order {
		tabs = append(tabs, s.tabs[id])
	}
	s.tabs = make(map[schema.TabID]*tab)
	s.order = nil
	s.active = ""
	toolbar, sidebar := s.toolbar, s.sidebar
	s.toolbar, s.sidebar = nil, nil
	s.mu.Unlock()

	for _, t := range tabs {
		s.teardownTab(t)
	}
	if toolbar != nil {
		toolbar.teardown()
	}
	if sidebar != nil {
		sidebar.teardown()
	}
	s.logger.Info("shell core stopped")
	return nil
}

func (s *service) sessionSaveLoop() {
	defer s.stopped.Done()
	ticker := time.NewTicker(s.cfg.SessionSaveInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			if err := s.saveSession(context.Background()); err != nil {
				s.logger.Warn("periodic session save failed", "err", err)
			}
		}
	}
}

func (s *service) downloadSweepLoop() {
	defer s.stopped.Done()
	ticker := time.NewTicker(s.cfg.DownloadSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.sweepDownloads(s.now())
		}
	}
}

func (s *service) newChromeSurface(ctx context.Context, role ChromeRole) (*chromeSurface, error) {
	surface, err := s.surfaces.NewChromeSurface(ctx, role)
	if err != nil {
		return nil, err
	}
	c := &chromeSurface{
		role:     role,
		surface:  surface,
		events:   surface.Events(),
		pumpDone: make(chan struct{}),
	}
	go s.pumpChromeEvents(c)
	return c, nil
}

// teardown unsubscribes before releasing the surface so no event fires
// mid-teardown.
func (c *chromeSurface) teardown() {
	_ = c.events.Close()
	<-c.pumpDone
	_ = c.surface.Close()
}

// newContentTab provisions a surface and wraps it in a tab. The tab is not
// registered yet; the caller owns insertion under the lock.
func (s *service) newContentTab(ctx context.Context, url string) (*tab, error) {
	if url == "" {
		url = s.cfg.DefaultTabURL
	}
	surface, err := s.surfaces.NewContentSurface(ctx, SurfaceConfig{
		URL:       url,
		Privilege: privilegeFor(url),
		Private:   s.cfg.PrivateWindow,
	})
	if err != nil {
		return nil, err
	}
	t := &tab{
		ID:        newTabID(),
		URL:       url,
		Title:     titleForURL(url, s.cfg.DefaultTabTitle),
		Private:   s.cfg.PrivateWindow,
		Zoom:      schema.DefaultZoom,
		CreatedAt: s.now(),
		surface:   surface,
		privilege: privilegeFor(url),
		events:    surface.Events(),
		pumpDone:  make(chan struct{}),
	}
	go s.pumpSurfaceEvents(t)
	if err := surface.Load(ctx, url); err != nil {
		s.logger.Warn("initial load failed", "tab", t.ID, "url", url, "err", err)
	}
	return t, nil
}

func (s *service) teardownTab(t *tab) {
	_ = t.events.Close()
	<-t.pumpDone
	_ = t.surface.Close()
}

// pumpSurfaceEvents drains one content surface's lifecycle stream until the
// subscription closes.
func (s *service) pumpSurfaceEvents(t *tab) {
	defer close(t.pumpDone)
	for {
		event, err := t.events.Next(context.Background())
		if err != nil {
			return
		}
		s.handleSurfaceEvent(t.ID, event)
	}
}

func (s *service) pumpChromeEvents(c *chromeSurface) {
	defer close(c.pumpDone)
	for {
		event, err := c.events.Next(context.Background())
		if err != nil {
			return
		}
		s.handleChromeEvent(c, event)
	}
}

func (s *service) handleSurfaceEvent(id schema.TabID, event SurfaceEvent) {
	ctx := context.Background()
	s.mu.Lock()
	t := s.tabs[id]
	if t == nil {
		s.mu.Unlock()
		s.logger.Debug("surface event for unknown tab dropped", "tab", id, "kind", event.Kind)
		return
	}
	var (
		emit     bool
		tabEvent schema.TabEvent
	)
	switch event.Kind {
	case SurfaceNavigationStarted:
		t.Loading = true
		tabEvent = s.tabEventLocked(schema.TabEventUpdated, t)
		emit = true
	case SurfaceNavigationCommitted, SurfaceInPageNavigation:
		t.URL = event.URL
		tabEvent = s.tabEventLocked(schema.TabEventUpdated, t)
		emit = true
	case SurfaceLoadingStarted:
		t.Loading = true
		tabEvent = s.tabEventLocked(schema.TabEventUpdated, t)
		emit = true
	case SurfaceLoadingStopped:
		t.Loading = false
		tabEvent = s.tabEventLocked(schema.TabEventUpdated, t)
		emit = true
	case SurfaceTitleChanged:
		if event.Title != "" {
			t.Title = event.Title
		}
		tabEvent = s.tabEventLocked(schema.TabEventUpdated, t)
		emit = true
	case SurfaceFaviconChanged:
		t.Favicon = event.Favicon
		tabEvent = s.tabEventLocked(schema.TabEventUpdated, t)
		emit = true
	case SurfaceFullscreenEntered:
		s.window.FullscreenVideo = true
	case SurfaceFullscreenExited:
		s.window.FullscreenVideo = false
	case SurfaceMenuRequested:
		layout := s.layoutLocked()
		host, hostRect := s.hostForMenuLocked(layout)
		origin := t.surface
		s.mu.Unlock()
		if host == nil {
			return
		}
		s.openMenu(ctx, origin, host, hostRect, hostRect, event.Menu)
		return
	case SurfaceMenuChoice:
		s.mu.Unlock()
		s.overlay.Resolve(ctx, event.MenuID, event.Choice)
		return
	case SurfaceNewSurfaceRequested:
		s.mu.Unlock()
		s.logger.Debug("popup denied", "tab", id, "url", event.URL)
		if isWebURL(event.URL) {
			if _, err := s.CreateTab(ctx, schema.CreateTabRequest{URL: event.URL, Activate: true}); err != nil {
				s.logger.Warn("popup reroute failed", "url", event.URL, "err", err)
			}
		}
		return
	default:
		s.mu.Unlock()
		return
	}
	fullscreenChanged := event.Kind == SurfaceFullscreenEntered || event.Kind == SurfaceFullscreenExited
	committed := event.Kind == SurfaceNavigationCommitted
	private := t.Private
	url, title := t.URL, t.Title
	s.mu.Unlock()

	if fullscreenChanged {
		s.applyLayout(ctx)
	}
	if emit {
		s.emitTabEvent(tabEvent)
	}
	if committed && !private && !requiresInternalPrivilege(url) {
		s.recordVisit(ctx, url, title)
	}
}

func (s *service) handleChromeEvent(c *chromeSurface, event SurfaceEvent) {
	ctx := context.Background()
	switch event.Kind {
	case SurfaceMenuRequested:
		s.mu.Lock()
		layout := s.layoutLocked()
		host, hostRect := s.hostForMenuLocked(layout)
		originRect := layout.Toolbar
		if c.role == ChromeSidebar {
			originRect = layout.Sidebar
		}
		s.mu.Unlock()
		if host == nil {
			s.logger.Debug("chrome menu dropped, no content surface", "role", c.role)
			return
		}
		s.openMenu(ctx, c.surface, host, originRect, hostRect, event.Menu)
	case SurfaceMenuChoice:
		s.overlay.Resolve(ctx, event.MenuID, event.Choice)
	}
}

// hostForMenuLocked picks the surface that renders overlay menus: the
// active tab's content surface, which is the largest region on screen.
func (s *service) hostForMenuLocked(layout schema.Layout) (Surface, schema.Rect) {
	t := s.tabs[s.active]
	if t == nil {
		return nil, schema.Rect{}
	}
	return t.surface, layout.Content
}

func (s *service) openMenu(ctx context.Context, origin, host Surface, originRect, hostRect schema.Rect, req schema.MenuRequest) {
	id, err := s.overlay.Open(ctx, origin, host, originRect, hostRect, req)
	if err != nil {
		s.logger.Warn("overlay menu render failed", "err", err)
		return
	}
	s.logger.Debug("overlay menu opened", "menu", id, "actions", len(req.Actions))
}

// tabEventLocked builds a tab event carrying the full ordered list.
func (s *service) tabEventLocked(kind schema.TabEventType, t *tab) schema.TabEvent {
	event := schema.TabEvent{
		Type:      kind,
		ActiveTab: s.active,
		Tabs:      s.snapshotTabsLocked(),
	}
	if t != nil {
		event.Tab = t.Snapshot(t.ID == s.active)
	}
	return event
}

func (s *service) snapshotTabsLocked() []schema.TabSnapshot {
	tabs := make([]schema.TabSnapshot, 0, len(s.order))
	for _, id := range s.order {
		if t := s.tabs[id]; t != nil {
			tabs = append(tabs, t.Snapshot(id == s.active))
		}
	}
	return tabs
}

func (s *service) emitTabEvent(event schema.TabEvent) {
	if s.sink != nil {
		s.sink.OnTabEvent(event)
	}
}

func (s *service) emitDownloadEvent(event schema.DownloadEvent) {
	if s.sink != nil {
		s.sink.OnDownloadEvent(event)
	}
}

func (s *service) emitToast(message string) {
	if s.sink != nil {
		s.sink.OnToast(schema.ToastEvent{Message: message})
	}
}

func (s *service) layoutLocked() schema.Layout {
	return s.compositor.Layout(s.window)
}

// applyLayout recomputes rectangles and pushes them to the surfaces.
// Surface calls happen outside the lock; they are asynchronous commands
// and must not serialize registry work.
func (s *service) applyLayout(ctx context.Context) schema.Layout {
	s.mu.Lock()
	layout := s.layoutLocked()
	toolbar, sidebar := s.toolbar, s.sidebar
	activeTab := s.tabs[s.active]
	s.mu.Unlock()

	if toolbar != nil {
		s.placeChrome(ctx, toolbar.surface, layout.Toolbar)
	}
	if sidebar != nil {
		s.placeChrome(ctx, sidebar.surface, layout.Sidebar)
	}
	if activeTab != nil {
		if err := activeTab.surface.SetBounds(ctx, layout.Content); err != nil {
			s.logger.Warn("content bounds failed", "tab", activeTab.ID, "err", err)
		}
	}
	return layout
}

func (s *service) placeChrome(ctx context.Context, surface Surface, bounds schema.Rect) {
	var err error
	if bounds.Empty() {
		err = surface.Hide(ctx)
	} else {
		err = surface.SetBounds(ctx, bounds)
	}
	if err != nil {
		s.logger.Warn("chrome bounds failed", "err", err)
	}
}

// recordVisit writes a history entry through the remote store, best effort.
// Failures are logged, never surfaced; history is not a user-initiated
// mutation.
func (s *service) recordVisit(ctx context.Context, url, title string) {
	if s.store == nil {
		return
	}
	cctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()
	if err := s.store.RecordVisit(cctx, url, title); err != nil {
		s.logger.Debug("history record failed", "url", url, "err", err)
	}
}
