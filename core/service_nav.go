package core

import (
	"context"
	"errors"
	"strings"

	"pkt.systems/wheelhouse/internal/logx"
	"pkt.systems/wheelhouse/schema"
)

// Navigate loads a destination in a tab. A destination whose privilege
// level differs from the one the surface was provisioned with forces
// surface replacement: privilege is fixed at creation time and is never
// raised or lowered in place.
func (s *service) Navigate(ctx context.Context, req schema.NavigateRequest) (schema.NavigateResponse, error) {
	if ctx == nil {
		return schema.NavigateResponse{}, errors.New("missing context")
	}
	url := strings.TrimSpace(req.URL)
	if url == "" {
		return schema.NavigateResponse{}, schema.ErrInvalidURL
	}
	s.mu.Lock()
	t := s.tabs[req.TabID]
	if t == nil {
		s.mu.Unlock()
		logx.WithTab(ctx, req.TabID).Debug("navigate for unknown tab ignored", "url", url)
		return schema.NavigateResponse{}, nil
	}
	if privilegeFor(url) != t.privilege {
		s.mu.Unlock()
		return s.replaceTab(ctx, req.TabID, url)
	}
	t.URL = url
	t.Title = titleForURL(url, s.cfg.DefaultTabTitle)
	t.Loading = true
	surface := t.surface
	event := s.tabEventLocked(schema.TabEventUpdated, t)
	s.mu.Unlock()

	if err := surface.Load(ctx, url); err != nil {
		s.logger.Warn("navigate load failed", "tab", req.TabID, "url", url, "err", err)
	}
	s.emitTabEvent(event)
	logx.WithTab(ctx, req.TabID).Info("tab navigate", "url", url)
	return schema.NavigateResponse{Tab: event.Tab}, nil
}

// replaceTab swaps a tab's surface for one provisioned at the right
// privilege level. The replacement takes the old tab's slot in the order
// and becomes active; the old surface is torn down. Navigation does not
// produce a reopenable record.
func (s *service) replaceTab(ctx context.Context, id schema.TabID, url string) (schema.NavigateResponse, error) {
	replacement, err := s.newContentTab(ctx, url)
	if err != nil {
		s.logger.Warn("privilege replacement failed", "tab", id, "url", url, "err", err)
		return schema.NavigateResponse{}, err
	}
	s.mu.Lock()
	old := s.tabs[id]
	if old != nil {
		idx := indexOf(s.order, id)
		delete(s.tabs, id)
		s.tabs[replacement.ID] = replacement
		s.order[idx] = replacement.ID
	} else {
		// The tab vanished while the surface was being provisioned; keep
		// the replacement at the end rather than dropping the navigation.
		s.tabs[replacement.ID] = replacement
		s.order = append(s.order, replacement.ID)
	}
	previous := s.tabs[s.active]
	s.active = replacement.ID
	stopFind := false
	if previous != nil && previous.findOpen {
		previous.findOpen = false
		stopFind = true
	}
	events := make([]schema.TabEvent, 0, 2)
	if old != nil {
		events = append(events, s.tabEventLocked(schema.TabEventClosed, old))
	}
	created := s.tabEventLocked(schema.TabEventCreated, replacement)
	events = append(events, created)
	layout := s.layoutLocked()
	s.mu.Unlock()

	if old != nil {
		s.teardownTab(old)
	}
	s.attachTab(ctx, previous, replacement, layout, stopFind)
	for _, event := range events {
		s.emitTabEvent(event)
	}
	logx.WithTab(ctx, replacement.ID).Info("tab replaced for privilege change", "previous", id, "url", url)
	return schema.NavigateResponse{Tab: created.Tab}, nil
}

// HistoryNav applies back, forward, or reload to a tab's surface. Loading
// state changes arrive through the surface event stream.
func (s *service) HistoryNav(ctx context.Context, req schema.HistoryNavRequest) error {
	if ctx == nil {
		return errors.New("missing context")
	}
	s.mu.Lock()
	t := s.tabs[req.TabID]
	if t == nil {
		s.mu.Unlock()
		logx.WithTab(ctx, req.TabID).Debug("history nav for unknown tab ignored", "op", req.Op)
		return nil
	}
	surface := t.surface
	s.mu.Unlock()

	if err := surface.HistoryNav(ctx, req.Op); err != nil {
		s.logger.Warn("history nav failed", "tab", req.TabID, "op", req.Op, "err", err)
		return err
	}
	logx.WithTab(ctx, req.TabID).Debug("history nav", "op", req.Op)
	return nil
}

// Zoom adjusts a tab's zoom level in steps, clamped to the allowed range.
func (s *service) Zoom(ctx context.Context, req schema.ZoomRequest) (schema.ZoomResponse, error) {
	if ctx == nil {
		return schema.ZoomResponse{}, errors.New("missing context")
	}
	s.mu.Lock()
	t := s.tabs[req.TabID]
	if t == nil {
		s.mu.Unlock()
		logx.WithTab(ctx, req.TabID).Debug("zoom for unknown tab ignored", "op", req.Op)
		return schema.ZoomResponse{}, nil
	}
	switch req.Op {
	case schema.ZoomIn:
		t.Zoom += schema.ZoomStep
	case schema.ZoomOut:
		t.Zoom -= schema.ZoomStep
	case schema.ZoomReset:
		t.Zoom = schema.DefaultZoom
	default:
		s.mu.Unlock()
		return schema.ZoomResponse{}, schema.ErrInvalidRequest
	}
	if t.Zoom < schema.MinZoom {
		t.Zoom = schema.MinZoom
	}
	if t.Zoom > schema.MaxZoom {
		t.Zoom = schema.MaxZoom
	}
	zoom := t.Zoom
	surface := t.surface
	event := s.tabEventLocked(schema.TabEventUpdated, t)
	s.mu.Unlock()

	if err := surface.SetZoom(ctx, zoom); err != nil {
		s.logger.Warn("zoom apply failed", "tab", req.TabID, "err", err)
	}
	s.emitTabEvent(event)
	logx.WithTab(ctx, req.TabID).Debug("tab zoom", "op", req.Op, "zoom", float64(zoom))
	return schema.ZoomResponse{Zoom: zoom}, nil
}

// Find starts or updates find-in-page on a tab.
func (s *service) Find(ctx context.Context, req schema.FindRequest) error {
	if ctx == nil {
		return errors.New("missing context")
	}
	s.mu.Lock()
	t := s.tabs[req.TabID]
	if t == nil {
		s.mu.Unlock()
		logx.WithTab(ctx, req.TabID).Debug("find for unknown tab ignored")
		return nil
	}
	t.findOpen = true
	surface := t.surface
	s.mu.Unlock()

	if err := surface.Find(ctx, req.Query); err != nil {
		s.logger.Warn("find failed", "tab", req.TabID, "err", err)
		return err
	}
	return nil
}

// StopFind dismisses find-in-page on a tab.
func (s *service) StopFind(ctx context.Context, req schema.StopFindRequest) error {
	if ctx == nil {
		return errors.New("missing context")
	}
	s.mu.Lock()
	t := s.tabs[req.TabID]
	if t == nil {
		s.mu.Unlock()
		logx.WithTab(ctx, req.TabID).Debug("find dismiss for unknown tab ignored")
		return nil
	}
	open := t.findOpen
	t.findOpen = false
	surface := t.surface
	s.mu.Unlock()

	if !open {
		return nil
	}
	if err := surface.StopFind(ctx); err != nil {
		s.logger.Warn("find dismiss failed", "tab", req.TabID, "err", err)
		return err
	}
	return nil
}

// Resize records a new window content size and recomposites.
func (s *service) Resize(ctx context.Context, req schema.ResizeRequest) (schema.LayoutResponse, error) {
	if ctx == nil {
		return schema.LayoutResponse{}, errors.New("missing context")
	}
	if req.Width <= 0 || req.Height <= 0 {
		return schema.LayoutResponse{}, schema.ErrInvalidRequest
	}
	s.mu.Lock()
	s.window.Width = req.Width
	s.window.Height = req.Height
	s.mu.Unlock()

	layout := s.applyLayout(ctx)
	s.logger.Debug("window resized", "width", req.Width, "height", req.Height)
	return schema.LayoutResponse{Layout: layout}, nil
}

// ToggleSidebar flips the sidebar between expanded and collapsed widths.
func (s *service) ToggleSidebar(ctx context.Context, req schema.ToggleSidebarRequest) (schema.LayoutResponse, error) {
	if ctx == nil {
		return schema.LayoutResponse{}, errors.New("missing context")
	}
	s.mu.Lock()
	s.window.SidebarCollapsed = !s.window.SidebarCollapsed
	collapsed := s.window.SidebarCollapsed
	s.mu.Unlock()

	layout := s.applyLayout(ctx)
	s.logger.Debug("sidebar toggled", "collapsed", collapsed)
	return schema.LayoutResponse{Layout: layout}, nil
}

// ToggleFullscreen flips fullscreen video mode. While it is on, chrome
// collapses to zero visible area and content takes the whole window.
func (s *service) ToggleFullscreen(ctx context.Context, req schema.ToggleFullscreenRequest) (schema.LayoutResponse, error) {
	if ctx == nil {
		return schema.LayoutResponse{}, errors.New("missing context")
	}
	s.mu.Lock()
	s.window.FullscreenVideo = !s.window.FullscreenVideo
	fullscreen := s.window.FullscreenVideo
	s.mu.Unlock()

	layout := s.applyLayout(ctx)
	s.logger.Debug("fullscreen toggled", "fullscreen", fullscreen)
	return schema.LayoutResponse{Layout: layout}, nil
}

// CurrentLayout reports the rectangles for the current window state
// without touching any surface.
func (s *service) CurrentLayout(ctx context.Context) (schema.LayoutResponse, error) {
	if ctx == nil {
		return schema.LayoutResponse{}, errors.New("missing context")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return schema.LayoutResponse{Layout: s.layoutLocked()}, nil
}
