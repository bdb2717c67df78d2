package core

import (
	"context"
	"errors"

	"pkt.systems/wheelhouse/internal/logx"
	"pkt.systems/wheelhouse/schema"
)

// CreateTab opens a new tab. An empty URL means the default new-tab page.
// On surface provisioning failure the registry is left unchanged.
func (s *service) CreateTab(ctx context.Context, req schema.CreateTabRequest) (schema.CreateTabResponse, error) {
	if ctx == nil {
		return schema.CreateTabResponse{}, errors.New("missing context")
	}
	t, err := s.newContentTab(ctx, req.URL)
	if err != nil {
		s.logger.Warn("tab create failed", "url", req.URL, "err", err)
		return schema.CreateTabResponse{}, err
	}
	s.mu.Lock()
	s.tabs[t.ID] = t
	s.order = append(s.order, t.ID)
	activate := req.Activate || s.active == ""
	var previous *tab
	stopFind := false
	if activate {
		previous = s.tabs[s.active]
		s.active = t.ID
		if previous != nil && previous.findOpen {
			previous.findOpen = false
			stopFind = true
		}
	}
	event := s.tabEventLocked(schema.TabEventCreated, t)
	layout := s.layoutLocked()
	s.mu.Unlock()

	if activate {
		s.attachTab(ctx, previous, t, layout, stopFind)
	}
	s.emitTabEvent(event)
	logx.WithTab(ctx, t.ID).Info("tab created", "url", t.URL, "active", activate)
	return schema.CreateTabResponse{Tab: event.Tab}, nil
}

// CloseTab closes a tab. Unknown ids are a silent no-op.
func (s *service) CloseTab(ctx context.Context, req schema.CloseTabRequest) (schema.CloseTabResponse, error) {
	if ctx == nil {
		return schema.CloseTabResponse{}, errors.New("missing context")
	}
	closed := s.closeTabs(ctx, []schema.TabID{req.TabID})
	return schema.CloseTabResponse{Closed: closed > 0}, nil
}

// SwitchTab activates a tab, dismisses the outgoing tab's find bar, and
// re-announces the target's URL and zoom through the activated event.
func (s *service) SwitchTab(ctx context.Context, req schema.SwitchTabRequest) (schema.SwitchTabResponse, error) {
	if ctx == nil {
		return schema.SwitchTabResponse{}, errors.New("missing context")
	}
	s.mu.Lock()
	t := s.tabs[req.TabID]
	if t == nil {
		s.mu.Unlock()
		logx.WithTab(ctx, req.TabID).Debug("switch to unknown tab ignored")
		return schema.SwitchTabResponse{}, nil
	}
	if s.active == req.TabID {
		snap := t.Snapshot(true)
		s.mu.Unlock()
		return schema.SwitchTabResponse{Tab: snap}, nil
	}
	previous := s.tabs[s.active]
	s.active = req.TabID
	stopFind := false
	if previous != nil && previous.findOpen {
		previous.findOpen = false
		stopFind = true
	}
	event := s.tabEventLocked(schema.TabEventActivated, t)
	layout := s.layoutLocked()
	s.mu.Unlock()

	s.attachTab(ctx, previous, t, layout, stopFind)
	s.emitTabEvent(event)
	logx.WithTab(ctx, t.ID).Debug("tab activated")
	return schema.SwitchTabResponse{Tab: event.Tab}, nil
}

// ListTabs reports tabs in display order plus the active pointer.
func (s *service) ListTabs(ctx context.Context, req schema.ListTabsRequest) (schema.ListTabsResponse, error) {
	if ctx == nil {
		return schema.ListTabsResponse{}, errors.New("missing context")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return schema.ListTabsResponse{
		Tabs:      s.snapshotTabsLocked(),
		ActiveTab: s.active,
	}, nil
}

// ReorderTab removes From from the order and reinserts it at To's former
// position. Unknown ids are a silent no-op.
func (s *service) ReorderTab(ctx context.Context, req schema.ReorderTabRequest) error {
	if ctx == nil {
		return errors.New("missing context")
	}
	if req.From == req.To {
		return nil
	}
	s.mu.Lock()
	fromIdx := indexOf(s.order, req.From)
	toIdx := indexOf(s.order, req.To)
	if fromIdx < 0 || toIdx < 0 {
		s.mu.Unlock()
		logx.WithTab(ctx, req.From).Debug("reorder with unknown tab ignored", "to", req.To)
		return nil
	}
	s.order = removeID(s.order, req.From)
	if toIdx > len(s.order) {
		toIdx = len(s.order)
	}
	s.order = append(s.order[:toIdx], append([]schema.TabID{req.From}, s.order[toIdx:]...)...)
	event := s.tabEventLocked(schema.TabEventReordered, s.tabs[req.From])
	s.mu.Unlock()

	s.emitTabEvent(event)
	logx.WithTab(ctx, req.From).Debug("tab reordered", "to", req.To)
	return nil
}

// StepTab cycles the active tab by Delta positions, wrapping at either end.
func (s *service) StepTab(ctx context.Context, req schema.StepTabRequest) error {
	if ctx == nil {
		return errors.New("missing context")
	}
	s.mu.Lock()
	n := len(s.order)
	idx := indexOf(s.order, s.active)
	if n < 2 || idx < 0 {
		s.mu.Unlock()
		return nil
	}
	target := s.order[((idx+req.Delta)%n+n)%n]
	s.mu.Unlock()

	_, err := s.SwitchTab(ctx, schema.SwitchTabRequest{TabID: target})
	return err
}

// ReopenTab pops the most recently closed tab and recreates it.
func (s *service) ReopenTab(ctx context.Context, req schema.ReopenTabRequest) (schema.ReopenTabResponse, error) {
	if ctx == nil {
		return schema.ReopenTabResponse{}, errors.New("missing context")
	}
	s.mu.Lock()
	record, ok := s.closed.Pop()
	s.mu.Unlock()
	if !ok {
		s.logger.Debug("reopen with empty closed stack ignored")
		return schema.ReopenTabResponse{}, nil
	}
	resp, err := s.CreateTab(ctx, schema.CreateTabRequest{URL: record.URL, Activate: true})
	if err != nil {
		// The record is consumed either way; a second reopen should not
		// retry a surface that just failed to provision.
		return schema.ReopenTabResponse{}, err
	}
	if record.Title != "" {
		s.mu.Lock()
		if t := s.tabs[resp.Tab.ID]; t != nil {
			t.Title = record.Title
			resp.Tab = t.Snapshot(t.ID == s.active)
		}
		s.mu.Unlock()
	}
	return schema.ReopenTabResponse{Tab: resp.Tab, Reopened: true}, nil
}

// MuteTab toggles the audio-mute flag and forwards it to the surface.
func (s *service) MuteTab(ctx context.Context, req schema.MuteTabRequest) error {
	if ctx == nil {
		return errors.New("missing context")
	}
	s.mu.Lock()
	t := s.tabs[req.TabID]
	if t == nil {
		s.mu.Unlock()
		logx.WithTab(ctx, req.TabID).Debug("mute for unknown tab ignored")
		return nil
	}
	t.Muted = !t.Muted
	muted := t.Muted
	surface := t.surface
	event := s.tabEventLocked(schema.TabEventUpdated, t)
	s.mu.Unlock()

	if err := surface.SetMuted(ctx, muted); err != nil {
		s.logger.Warn("surface mute failed", "tab", req.TabID, "err", err)
	}
	s.emitTabEvent(event)
	logx.WithTab(ctx, req.TabID).Debug("tab mute toggled", "muted", muted)
	return nil
}

// PinTab sets or clears the pinned flag.
func (s *service) PinTab(ctx context.Context, req schema.PinTabRequest) error {
	if ctx == nil {
		return errors.New("missing context")
	}
	s.mu.Lock()
	t := s.tabs[req.TabID]
	if t == nil {
		s.mu.Unlock()
		logx.WithTab(ctx, req.TabID).Debug("pin for unknown tab ignored")
		return nil
	}
	t.Pinned = req.Pinned
	event := s.tabEventLocked(schema.TabEventUpdated, t)
	s.mu.Unlock()

	s.emitTabEvent(event)
	logx.WithTab(ctx, req.TabID).Debug("tab pin changed", "pinned", req.Pinned)
	return nil
}

// DuplicateTab clones a tab's destination and zoom into a new tab placed
// directly after the source. The clone stays in the background unless
// activation is requested.
func (s *service) DuplicateTab(ctx context.Context, req schema.DuplicateTabRequest) (schema.DuplicateTabResponse, error) {
	if ctx == nil {
		return schema.DuplicateTabResponse{}, errors.New("missing context")
	}
	s.mu.Lock()
	source := s.tabs[req.TabID]
	if source == nil {
		s.mu.Unlock()
		logx.WithTab(ctx, req.TabID).Debug("duplicate of unknown tab ignored")
		return schema.DuplicateTabResponse{}, nil
	}
	url := source.URL
	zoom := source.Zoom
	s.mu.Unlock()

	clone, err := s.newContentTab(ctx, url)
	if err != nil {
		s.logger.Warn("tab duplicate failed", "tab", req.TabID, "err", err)
		return schema.DuplicateTabResponse{}, err
	}
	clone.Zoom = zoom

	s.mu.Lock()
	idx := indexOf(s.order, req.TabID)
	if idx < 0 {
		// Source vanished while the surface was being provisioned.
		idx = len(s.order) - 1
	}
	s.tabs[clone.ID] = clone
	s.order = append(s.order[:idx+1], append([]schema.TabID{clone.ID}, s.order[idx+1:]...)...)
	var previous *tab
	stopFind := false
	if req.Activate {
		previous = s.tabs[s.active]
		s.active = clone.ID
		if previous != nil && previous.findOpen {
			previous.findOpen = false
			stopFind = true
		}
	}
	event := s.tabEventLocked(schema.TabEventCreated, clone)
	layout := s.layoutLocked()
	s.mu.Unlock()

	if zoom != schema.DefaultZoom {
		if err := clone.surface.SetZoom(ctx, zoom); err != nil {
			s.logger.Warn("duplicate zoom apply failed", "tab", clone.ID, "err", err)
		}
	}
	if req.Activate {
		s.attachTab(ctx, previous, clone, layout, stopFind)
	}
	s.emitTabEvent(event)
	logx.WithTab(ctx, clone.ID).Info("tab duplicated", "source", req.TabID, "url", url, "active", req.Activate)
	return schema.DuplicateTabResponse{Tab: event.Tab}, nil
}

// CloseOtherTabs closes every tab except the given one, sparing pinned
// tabs.
func (s *service) CloseOtherTabs(ctx context.Context, req schema.CloseOtherTabsRequest) error {
	if ctx == nil {
		return errors.New("missing context")
	}
	s.mu.Lock()
	if s.tabs[req.TabID] == nil {
		s.mu.Unlock()
		logx.WithTab(ctx, req.TabID).Debug("close-others for unknown tab ignored")
		return nil
	}
	var victims []schema.TabID
	for _, id := range s.order {
		if id == req.TabID {
			continue
		}
		if t := s.tabs[id]; t != nil && t.Pinned {
			continue
		}
		victims = append(victims, id)
	}
	s.mu.Unlock()

	s.closeTabs(ctx, victims)
	return nil
}

// CloseTabsToRight closes every tab after the given one in display order.
func (s *service) CloseTabsToRight(ctx context.Context, req schema.CloseTabsToRightRequest) error {
	if ctx == nil {
		return errors.New("missing context")
	}
	s.mu.Lock()
	idx := indexOf(s.order, req.TabID)
	if idx < 0 {
		s.mu.Unlock()
		logx.WithTab(ctx, req.TabID).Debug("close-right for unknown tab ignored")
		return nil
	}
	victims := append([]schema.TabID(nil), s.order[idx+1:]...)
	s.mu.Unlock()

	s.closeTabs(ctx, victims)
	return nil
}

// closeTabs removes tabs from the registry, repairs the active pointer,
// records reopenable entries, and emits one closed event per tab. The
// registry is never left empty: closing the last tab opens a fresh default
// tab. Returns the number of tabs actually closed.
func (s *service) closeTabs(ctx context.Context, ids []schema.TabID) int {
	if len(ids) == 0 {
		return 0
	}
	s.mu.Lock()
	activeIdx := indexOf(s.order, s.active)
	var victims []*tab
	for _, id := range ids {
		t := s.tabs[id]
		if t == nil {
			continue
		}
		victims = append(victims, t)
		delete(s.tabs, id)
		s.order = removeID(s.order, id)
		if t.URL != s.cfg.DefaultTabURL {
			s.closed.Push(schema.ClosedTab{URL: t.URL, Title: t.Title})
		}
	}
	if len(victims) == 0 {
		s.mu.Unlock()
		logx.WithTab(ctx, ids[0]).Debug("close for unknown tab ignored")
		return 0
	}
	var next *tab
	activeClosed := s.tabs[s.active] == nil
	if activeClosed {
		s.active = ""
		if n := len(s.order); n > 0 {
			// Prefer the tab that slid into the closed tab's slot, falling
			// back to the last tab when the active one was rightmost.
			idx := activeIdx
			if idx < 0 || idx >= n {
				idx = n - 1
			}
			s.active = s.order[idx]
			next = s.tabs[s.active]
		}
	}
	events := make([]schema.TabEvent, 0, len(victims)+1)
	for _, t := range victims {
		events = append(events, s.tabEventLocked(schema.TabEventClosed, t))
	}
	if next != nil {
		events = append(events, s.tabEventLocked(schema.TabEventActivated, next))
	}
	layout := s.layoutLocked()
	empty := len(s.order) == 0
	s.mu.Unlock()

	for _, t := range victims {
		s.teardownTab(t)
	}
	if next != nil {
		s.attachTab(ctx, nil, next, layout, false)
	}
	for _, event := range events {
		s.emitTabEvent(event)
	}
	for _, t := range victims {
		logx.WithTab(ctx, t.ID).Info("tab closed", "url", t.URL)
	}
	if empty {
		if _, err := s.CreateTab(ctx, schema.CreateTabRequest{Activate: true}); err != nil {
			s.logger.Warn("replacement tab failed", "err", err)
		}
	}
	return len(victims)
}

// attachTab swaps the visible content surface. The outgoing tab is hidden
// after its find bar (if any) is dismissed.
func (s *service) attachTab(ctx context.Context, previous, next *tab, layout schema.Layout, stopFind bool) {
	if previous != nil && previous != next {
		if stopFind {
			if err := previous.surface.StopFind(ctx); err != nil {
				s.logger.Warn("find dismiss failed", "tab", previous.ID, "err", err)
			}
		}
		if err := previous.surface.Hide(ctx); err != nil {
			s.logger.Warn("surface hide failed", "tab", previous.ID, "err", err)
		}
	}
	if next != nil {
		if err := next.surface.SetBounds(ctx, layout.Content); err != nil {
			s.logger.Warn("content bounds failed", "tab", next.ID, "err", err)
		}
	}
}

func indexOf(order []schema.TabID, id schema.TabID) int {
	for i, candidate := range order {
		if candidate == id {
			return i
		}
	}
	return -1
}

func removeID(order []schema.TabID, id schema.TabID) []schema.TabID {
	out := order[:0]
	for _, candidate := range order {
		if candidate != id {
			out = append(out, candidate)
		}
	}
	return out
}
