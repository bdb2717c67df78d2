package core

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"pkt.systems/wheelhouse/schema"
)

// AddBookmark stores a bookmark through the remote store. Failures raise a
// toast: bookmarking is a user-initiated mutation and must not fail
// silently.
func (s *service) AddBookmark(ctx context.Context, req schema.AddBookmarkRequest) error {
	if ctx == nil {
		return errors.New("missing context")
	}
	url := strings.TrimSpace(req.URL)
	if url == "" {
		return schema.ErrInvalidRequest
	}
	if s.store == nil {
		s.emitToast("Bookmark could not be saved")
		return schema.ErrStoreUnavailable
	}
	cctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()
	if err := s.store.AddBookmark(cctx, url, req.Title); err != nil {
		s.logger.Warn("bookmark add failed", "url", url, "err", err)
		s.emitToast("Bookmark could not be saved")
		return err
	}
	s.emitToast("Bookmark added")
	s.logger.Info("bookmark added", "url", url)
	return nil
}

// SaveSession forces a session save outside the periodic timer.
func (s *service) SaveSession(ctx context.Context, req schema.SaveSessionRequest) error {
	if ctx == nil {
		return errors.New("missing context")
	}
	return s.saveSession(ctx)
}

// saveSession writes the working set remote-first, then locally. The local
// copy is encrypted through the store when possible and falls back to
// plaintext so a snapshot always lands somewhere.
func (s *service) saveSession(ctx context.Context) error {
	s.mu.Lock()
	snap := s.sessionSnapshotLocked()
	s.mu.Unlock()

	if s.store != nil {
		cctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
		if err := s.store.SetSession(cctx, snap); err != nil {
			s.logger.Warn("remote session save failed", "err", err)
		}
		cancel()
	}
	if s.session == nil {
		return nil
	}
	if s.store != nil {
		err := s.saveEncrypted(ctx, snap)
		if err == nil {
			return nil
		}
		s.logger.Debug("encrypted session save unavailable", "err", err)
	}
	if err := s.session.WritePlain(snap); err != nil {
		s.logger.Warn("plaintext session save failed", "err", err)
		return err
	}
	return nil
}

func (s *service) saveEncrypted(ctx context.Context, snap schema.SessionSnapshot) error {
	plain, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	cctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()
	ciphertext, err := s.store.Encrypt(cctx, plain)
	if err != nil {
		return err
	}
	return s.session.WriteEncrypted(ciphertext)
}

// sessionSnapshotLocked captures the restorable working set in display
// order. Private tabs never persist.
func (s *service) sessionSnapshotLocked() schema.SessionSnapshot {
	var snap schema.SessionSnapshot
	for _, id := range s.order {
		t := s.tabs[id]
		if t == nil || t.Private {
			continue
		}
		snap.Tabs = append(snap.Tabs, schema.SessionTab{URL: t.URL, Title: t.Title})
	}
	return snap
}

type restoreStrategy struct {
	name string
	fn   func(ctx context.Context) (schema.SessionSnapshot, error)
}

func (s *service) restoreStrategies() []restoreStrategy {
	return []restoreStrategy{
		{"remote", s.restoreFromRemote},
		{"local-encrypted", s.restoreFromEncryptedFile},
		{"local-plaintext", s.restoreFromPlainFile},
	}
}

// RestoreSession walks the restore chain until one source yields a
// non-empty snapshot, then recreates its tabs in order with the last one
// active. An exhausted chain is not an error; the caller opens the default
// tab instead.
func (s *service) RestoreSession(ctx context.Context, req schema.RestoreSessionRequest) (schema.RestoreSessionResponse, error) {
	if ctx == nil {
		return schema.RestoreSessionResponse{}, errors.New("missing context")
	}
	for _, strategy := range s.restoreStrategies() {
		snap, err := strategy.fn(ctx)
		if err != nil {
			s.logger.Debug("session restore source unavailable", "source", strategy.name, "err", err)
			continue
		}
		if snap.Empty() {
			continue
		}
		count := s.recreateTabs(ctx, snap)
		if count == 0 {
			continue
		}
		s.logger.Info("session restored", "source", strategy.name, "tabs", count)
		return schema.RestoreSessionResponse{Restored: true, Tabs: count}, nil
	}
	return schema.RestoreSessionResponse{}, nil
}

func (s *service) restoreFromRemote(ctx context.Context) (schema.SessionSnapshot, error) {
	if s.store == nil {
		return schema.SessionSnapshot{}, schema.ErrStoreUnavailable
	}
	cctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()
	return s.store.GetSession(cctx)
}

func (s *service) restoreFromEncryptedFile(ctx context.Context) (schema.SessionSnapshot, error) {
	if s.session == nil {
		return schema.SessionSnapshot{}, schema.ErrNoSession
	}
	ciphertext, present, err := s.session.ReadEncrypted()
	if err != nil {
		return schema.SessionSnapshot{}, err
	}
	if !present {
		return schema.SessionSnapshot{}, schema.ErrNoSession
	}
	if s.store == nil {
		return schema.SessionSnapshot{}, schema.ErrStoreUnavailable
	}
	cctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()
	plain, err := s.store.Decrypt(cctx, ciphertext)
	if err != nil {
		return schema.SessionSnapshot{}, err
	}
	var snap schema.SessionSnapshot
	if err := json.Unmarshal(plain, &snap); err != nil {
		return schema.SessionSnapshot{}, err
	}
	return snap, nil
}

func (s *service) restoreFromPlainFile(ctx context.Context) (schema.SessionSnapshot, error) {
	if s.session == nil {
		return schema.SessionSnapshot{}, schema.ErrNoSession
	}
	snap, present, err := s.session.ReadPlain()
	if err != nil {
		return schema.SessionSnapshot{}, err
	}
	if !present {
		return schema.SessionSnapshot{}, schema.ErrNoSession
	}
	return snap, nil
}

// recreateTabs opens one tab per session entry, activating only the last.
// Individual failures skip the entry rather than aborting the restore.
func (s *service) recreateTabs(ctx context.Context, snap schema.SessionSnapshot) int {
	count := 0
	for i, entry := range snap.Tabs {
		resp, err := s.CreateTab(ctx, schema.CreateTabRequest{
			URL:      entry.URL,
			Activate: i == len(snap.Tabs)-1,
		})
		if err != nil {
			s.logger.Warn("session tab restore failed", "url", entry.URL, "err", err)
			continue
		}
		if entry.Title != "" {
			s.mu.Lock()
			if t := s.tabs[resp.Tab.ID]; t != nil {
				t.Title = entry.Title
			}
			s.mu.Unlock()
		}
		count++
	}
	return count
}
