package localstore

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"golang.org/x/crypto/pbkdf2"
	"pkt.systems/wheelhouse/schema"
)

const (
	pbkdf2Iterations = 210_000
	pbkdf2KeyLen     = 32
	vaultSaltLen     = 16
)

// deriveVaultKey stretches the master password with the stored salt.
func deriveVaultKey(password string, salt []byte) []byte {
	return pbkdf2.Key([]byte(password), salt, pbkdf2Iterations, pbkdf2KeyLen, sha256.New)
}

// UnlockVault verifies the master password against the stored verifier and
// unlocks credential access. The first unlock ever establishes the
// password.
func (s *Store) UnlockVault(ctx context.Context, password string) error {
	if password == "" {
		return errors.New("master password is required")
	}
	var (
		salt     []byte
		verifier []byte
	)
	err := s.db.QueryRowContext(ctx, `SELECT salt, verifier FROM vault_meta WHERE id = 1`).Scan(&salt, &verifier)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		salt = make([]byte, vaultSaltLen)
		if _, err := rand.Read(salt); err != nil {
			return err
		}
		key := deriveVaultKey(password, salt)
		digest := sha256.Sum256(key)
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO vault_meta (id, salt, verifier) VALUES (1, ?, ?)`,
			salt, digest[:]); err != nil {
			return err
		}
	case err != nil:
		return err
	default:
		key := deriveVaultKey(password, salt)
		digest := sha256.Sum256(key)
		if !hmac.Equal(digest[:], verifier) {
			return errors.New("wrong master password")
		}
	}
	s.vaultMu.Lock()
	s.vaultUnlocked = true
	s.vaultMu.Unlock()
	if s.log != nil {
		s.log.Info("vault unlocked")
	}
	return nil
}

// LockVault locks credential access again.
func (s *Store) LockVault(ctx context.Context) error {
	s.vaultMu.Lock()
	s.vaultUnlocked = false
	s.vaultMu.Unlock()
	if s.log != nil {
		s.log.Info("vault locked")
	}
	return nil
}

func (s *Store) vaultOpen() bool {
	s.vaultMu.Lock()
	defer s.vaultMu.Unlock()
	return s.vaultUnlocked
}

// ListCredentials returns saved logins without passwords. Listing does not
// require an unlocked vault; fetching a password does.
func (s *Store) ListCredentials(ctx context.Context) ([]schema.Credential, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, origin, username FROM credentials ORDER BY origin, username`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []schema.Credential
	for rows.Next() {
		var cred schema.Credential
		if err := rows.Scan(&cred.ID, &cred.Origin, &cred.Username); err != nil {
			return nil, err
		}
		out = append(out, cred)
	}
	return out, rows.Err()
}

// AddCredential saves a login with the password encrypted at rest.
func (s *Store) AddCredential(ctx context.Context, cred schema.Credential) error {
	if !s.vaultOpen() {
		return schema.ErrVaultLocked
	}
	sealed, err := s.encrypt([]byte(cred.Password))
	if err != nil {
		return err
	}
	id := cred.ID
	if id == "" {
		id = uuid.NewString()
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO credentials (id, origin, username, password) VALUES (?, ?, ?, ?)`,
		id, cred.Origin, cred.Username, sealed)
	return err
}

// GetCredential fetches one login with its password decrypted.
func (s *Store) GetCredential(ctx context.Context, id string) (schema.Credential, error) {
	if !s.vaultOpen() {
		return schema.Credential{}, schema.ErrVaultLocked
	}
	var (
		cred   schema.Credential
		sealed []byte
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, origin, username, password FROM credentials WHERE id = ?`, id).
		Scan(&cred.ID, &cred.Origin, &cred.Username, &sealed)
	if err != nil {
		return schema.Credential{}, err
	}
	plain, err := s.decrypt(sealed)
	if err != nil {
		return schema.Credential{}, err
	}
	cred.Password = string(plain)
	return cred, nil
}

// DeleteCredential removes a saved login.
func (s *Store) DeleteCredential(ctx context.Context, id string) error {
	if !s.vaultOpen() {
		return schema.ErrVaultLocked
	}
	_, err := s.db.ExecContext(ctx, `DELETE FROM credentials WHERE id = ?`, id)
	return err
}
