package localstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"pkt.systems/wheelhouse/schema"
)

// History.

// RecordVisit appends a history entry.
func (s *Store) RecordVisit(ctx context.Context, url, title string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO history (id, url, title, visited_at) VALUES (?, ?, ?, ?)`,
		uuid.NewString(), url, title, now())
	return err
}

// ListHistory returns recent history entries, newest first.
func (s *Store) ListHistory(ctx context.Context, limit int) ([]schema.HistoryEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, url, title, visited_at FROM history ORDER BY visited_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	return scanHistory(rows)
}

// SearchHistory returns history entries whose URL or title matches the
// query, newest first.
func (s *Store) SearchHistory(ctx context.Context, query string, limit int) ([]schema.HistoryEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	pattern := "%" + query + "%"
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, url, title, visited_at FROM history
		 WHERE url LIKE ? OR title LIKE ?
		 ORDER BY visited_at DESC, id LIMIT ?`, pattern, pattern, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	return scanHistory(rows)
}

// DeleteHistoryEntry removes a single history entry.
func (s *Store) DeleteHistoryEntry(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM history WHERE id = ?`, id)
	return err
}

// ClearHistory removes every history entry.
func (s *Store) ClearHistory(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM history`)
	return err
}

func scanHistory(rows *sql.Rows) ([]schema.HistoryEntry, error) {
	var out []schema.HistoryEntry
	for rows.Next() {
		var entry schema.HistoryEntry
		if err := rows.Scan(&entry.ID, &entry.URL, &entry.Title, &entry.VisitedAt); err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

// Bookmarks.

// AddBookmark stores a bookmark. Bookmarking the same URL twice updates
// the title instead of duplicating the entry.
func (s *Store) AddBookmark(ctx context.Context, url, title string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO bookmarks (id, url, title, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (url) DO UPDATE SET title = excluded.title`,
		uuid.NewString(), url, title, now())
	return err
}

// ListBookmarks returns every bookmark, newest first.
func (s *Store) ListBookmarks(ctx context.Context) ([]schema.Bookmark, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, url, title, created_at FROM bookmarks ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	return scanBookmarks(rows)
}

// SearchBookmarks returns bookmarks whose URL or title matches the query.
func (s *Store) SearchBookmarks(ctx context.Context, query string) ([]schema.Bookmark, error) {
	pattern := "%" + query + "%"
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, url, title, created_at FROM bookmarks
		 WHERE url LIKE ? OR title LIKE ?
		 ORDER BY created_at DESC, id`, pattern, pattern)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	return scanBookmarks(rows)
}

// DeleteBookmark removes a bookmark.
func (s *Store) DeleteBookmark(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM bookmarks WHERE id = ?`, id)
	return err
}

func scanBookmarks(rows *sql.Rows) ([]schema.Bookmark, error) {
	var out []schema.Bookmark
	for rows.Next() {
		var b schema.Bookmark
		if err := rows.Scan(&b.ID, &b.URL, &b.Title, &b.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Settings.

// GetSetting fetches one settings value by key. Missing keys come back
// empty with no error.
func (s *Store) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// SetSetting stores one settings value.
func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value`, key, value)
	return err
}

// Secrets. Values are encrypted at rest with the store's local key.

// StoreSecret saves an opaque secret under a name.
func (s *Store) StoreSecret(ctx context.Context, name string, value []byte) error {
	sealed, err := s.encrypt(value)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO secrets (name, value) VALUES (?, ?)
		 ON CONFLICT (name) DO UPDATE SET value = excluded.value`, name, sealed)
	return err
}

// GetSecret fetches and decrypts a secret by name.
func (s *Store) GetSecret(ctx context.Context, name string) ([]byte, error) {
	var sealed []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM secrets WHERE name = ?`, name).Scan(&sealed)
	if err != nil {
		return nil, err
	}
	return s.decrypt(sealed)
}

// DeleteSecret removes a secret.
func (s *Store) DeleteSecret(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM secrets WHERE name = ?`, name)
	return err
}

// Crypto.

// Encrypt seals an arbitrary payload with the store's local key.
func (s *Store) Encrypt(ctx context.Context, plaintext []byte) ([]byte, error) {
	return s.encrypt(plaintext)
}

// Decrypt opens a payload previously sealed by Encrypt.
func (s *Store) Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error) {
	return s.decrypt(ciphertext)
}

// Session.

// GetSession fetches the stored session snapshot. A missing row is an
// empty snapshot, not an error.
func (s *Store) GetSession(ctx context.Context) (schema.SessionSnapshot, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM session WHERE id = 1`).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return schema.SessionSnapshot{}, nil
	}
	if err != nil {
		return schema.SessionSnapshot{}, err
	}
	var snap schema.SessionSnapshot
	if err := json.Unmarshal([]byte(payload), &snap); err != nil {
		return schema.SessionSnapshot{}, err
	}
	return snap, nil
}

// SetSession stores the session snapshot.
func (s *Store) SetSession(ctx context.Context, snap schema.SessionSnapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO session (id, payload, saved_at) VALUES (1, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET payload = excluded.payload, saved_at = excluded.saved_at`,
		string(payload), now())
	return err
}
