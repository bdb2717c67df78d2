package storerpc

import (
	"context"
	"encoding/base64"

	"pkt.systems/wheelhouse/schema"
)

// History.

// RecordVisit appends a history entry.
func (c *Client) RecordVisit(ctx context.Context, url, title string) error {
	params := struct {
		URL   string `json:"url"`
		Title string `json:"title"`
	}{url, title}
	return c.call(ctx, "history.record", params, nil)
}

// ListHistory returns recent history entries, newest first.
func (c *Client) ListHistory(ctx context.Context, limit int) ([]schema.HistoryEntry, error) {
	params := struct {
		Limit int `json:"limit"`
	}{limit}
	var out []schema.HistoryEntry
	if err := c.call(ctx, "history.list", params, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SearchHistory returns history entries matching the query.
func (c *Client) SearchHistory(ctx context.Context, query string, limit int) ([]schema.HistoryEntry, error) {
	params := struct {
		Query string `json:"query"`
		Limit int    `json:"limit"`
	}{query, limit}
	var out []schema.HistoryEntry
	if err := c.call(ctx, "history.search", params, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteHistoryEntry removes a single history entry.
func (c *Client) DeleteHistoryEntry(ctx context.Context, id string) error {
	params := struct {
		ID string `json:"id"`
	}{id}
	return c.call(ctx, "history.delete", params, nil)
}

// ClearHistory removes every history entry.
func (c *Client) ClearHistory(ctx context.Context) error {
	return c.call(ctx, "history.clear", nil, nil)
}

// Bookmarks.

// AddBookmark stores a bookmark.
func (c *Client) AddBookmark(ctx context.Context, url, title string) error {
	params := struct {
		URL   string `json:"url"`
		Title string `json:"title"`
	}{url, title}
	return c.call(ctx, "bookmarks.add", params, nil)
}

// ListBookmarks returns every bookmark.
func (c *Client) ListBookmarks(ctx context.Context) ([]schema.Bookmark, error) {
	var out []schema.Bookmark
	if err := c.call(ctx, "bookmarks.list", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SearchBookmarks returns bookmarks matching the query.
func (c *Client) SearchBookmarks(ctx context.Context, query string) ([]schema.Bookmark, error) {
	params := struct {
		Query string `json:"query"`
	}{query}
	var out []schema.Bookmark
	if err := c.call(ctx, "bookmarks.search", params, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteBookmark removes a bookmark.
func (c *Client) DeleteBookmark(ctx context.Context, id string) error {
	params := struct {
		ID string `json:"id"`
	}{id}
	return c.call(ctx, "bookmarks.delete", params, nil)
}

// Settings.

// GetSetting fetches one settings value by key. Missing keys come back
// empty with no error; callers apply their built-in default.
func (c *Client) GetSetting(ctx context.Context, key string) (string, error) {
	params := struct {
		Key string `json:"key"`
	}{key}
	var out struct {
		Value string `json:"value"`
	}
	if err := c.call(ctx, "settings.get", params, &out); err != nil {
		return "", err
	}
	return out.Value, nil
}

// SetSetting stores one settings value.
func (c *Client) SetSetting(ctx context.Context, key, value string) error {
	params := struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	}{key, value}
	return c.call(ctx, "settings.set", params, nil)
}

// Secrets.

// StoreSecret saves an opaque secret under a name.
func (c *Client) StoreSecret(ctx context.Context, name string, value []byte) error {
	params := struct {
		Name  string `json:"name"`
		Value string `json:"value"`
	}{name, base64.StdEncoding.EncodeToString(value)}
	return c.call(ctx, "secrets.store", params, nil)
}

// GetSecret fetches a secret by name.
func (c *Client) GetSecret(ctx context.Context, name string) ([]byte, error) {
	params := struct {
		Name string `json:"name"`
	}{name}
	var out struct {
		Value string `json:"value"`
	}
	if err := c.call(ctx, "secrets.get", params, &out); err != nil {
		return nil, err
	}
	return base64.StdEncoding.DecodeString(out.Value)
}

// DeleteSecret removes a secret.
func (c *Client) DeleteSecret(ctx context.Context, name string) error {
	params := struct {
		Name string `json:"name"`
	}{name}
	return c.call(ctx, "secrets.delete", params, nil)
}

// Credentials.

// ListCredentials returns saved logins without passwords.
func (c *Client) ListCredentials(ctx context.Context) ([]schema.Credential, error) {
	var out []schema.Credential
	if err := c.call(ctx, "credentials.list", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddCredential saves a login. Fails with ErrVaultLocked until the vault
// is unlocked.
func (c *Client) AddCredential(ctx context.Context, cred schema.Credential) error {
	return c.call(ctx, "credentials.add", cred, nil)
}

// DeleteCredential removes a saved login.
func (c *Client) DeleteCredential(ctx context.Context, id string) error {
	params := struct {
		ID string `json:"id"`
	}{id}
	return c.call(ctx, "credentials.delete", params, nil)
}

// UnlockVault unlocks the credential vault with the master password.
func (c *Client) UnlockVault(ctx context.Context, password string) error {
	params := struct {
		Password string `json:"password"`
	}{password}
	return c.call(ctx, "vault.unlock", params, nil)
}

// LockVault locks the credential vault.
func (c *Client) LockVault(ctx context.Context) error {
	return c.call(ctx, "vault.lock", nil, nil)
}

// Crypto.

// Encrypt asks the store to encrypt an arbitrary payload.
func (c *Client) Encrypt(ctx context.Context, plaintext []byte) ([]byte, error) {
	params := struct {
		Payload string `json:"payload"`
	}{base64.StdEncoding.EncodeToString(plaintext)}
	var out struct {
		Payload string `json:"payload"`
	}
	if err := c.call(ctx, "crypto.encrypt", params, &out); err != nil {
		return nil, err
	}
	return base64.StdEncoding.DecodeString(out.Payload)
}

// Decrypt asks the store to decrypt a payload it previously encrypted.
func (c *Client) Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error) {
	params := struct {
		Payload string `json:"payload"`
	}{base64.StdEncoding.EncodeToString(ciphertext)}
	var out struct {
		Payload string `json:"payload"`
	}
	if err := c.call(ctx, "crypto.decrypt", params, &out); err != nil {
		return nil, err
	}
	return base64.StdEncoding.DecodeString(out.Payload)
}

// Session.

// GetSession fetches the stored session snapshot.
func (c *Client) GetSession(ctx context.Context) (schema.SessionSnapshot, error) {
	var out schema.SessionSnapshot
	if err := c.call(ctx, "session.get", nil, &out); err != nil {
		return schema.SessionSnapshot{}, err
	}
	return out, nil
}

// SetSession stores the session snapshot.
func (c *Client) SetSession(ctx context.Context, snap schema.SessionSnapshot) error {
	return c.call(ctx, "session.set", snap, nil)
}
