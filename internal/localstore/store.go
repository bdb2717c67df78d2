package localstore

import (
	"bytes"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"
	"pkt.systems/kryptograf"
	"pkt.systems/kryptograf/keymgmt"
	"pkt.systems/pslog"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const (
	dbFileName       = "profile.db"
	keyStoreFileName = "keys.kgf"
	cryptoDescriptor = "wheelhouse:localstore"
)

// Store is a SQLite-backed profile store for offline operation. It serves
// the same surface as the remote store client: history, bookmarks,
// settings, secrets, credentials behind a vault, encrypt/decrypt, and the
// session value.
type Store struct {
	db  *sql.DB
	dir string
	log pslog.Logger

	vaultMu       sync.Mutex
	vaultUnlocked bool
}

// Open creates or opens the profile store under dir and applies pending
// migrations.
func Open(dir string) (*Store, error) {
	return OpenWithLogger(dir, nil)
}

// OpenWithLogger creates or opens the profile store with logging.
func OpenWithLogger(dir string, logger pslog.Logger) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("store directory is required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", filepath.Join(dir, dbFileName))
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1) // sqlite
	db.SetConnMaxLifetime(0)
	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := ensureKeyStore(filepath.Join(dir, keyStoreFileName)); err != nil {
		_ = db.Close()
		return nil, err
	}
	if logger != nil {
		logger = logger.With("store_dir", dir)
		logger.Info("local store open")
	}
	return &Store{db: db, dir: dir, log: logger}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func runMigrations(db *sql.DB) error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return err
	}
	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return err
	}
	err = m.Up()
	if err == migrate.ErrNoChange {
		return nil
	}
	return err
}

func ensureKeyStore(path string) error {
	store, err := keymgmt.LoadProto(path)
	if err != nil {
		return err
	}
	if _, err := store.EnsureRootKey(); err != nil {
		return err
	}
	return store.Commit()
}

// material loads the data encryption key for local payload crypto.
func (s *Store) material() (keymgmt.Material, keymgmt.RootKey, error) {
	store, err := keymgmt.LoadProto(filepath.Join(s.dir, keyStoreFileName))
	if err != nil {
		return keymgmt.Material{}, keymgmt.RootKey{}, err
	}
	root, err := store.EnsureRootKey()
	if err != nil {
		return keymgmt.Material{}, keymgmt.RootKey{}, err
	}
	material, err := store.EnsureDescriptor(cryptoDescriptor, root, []byte(cryptoDescriptor))
	if err != nil {
		return keymgmt.Material{}, keymgmt.RootKey{}, err
	}
	if err := store.Commit(); err != nil {
		return keymgmt.Material{}, keymgmt.RootKey{}, err
	}
	return material, root, nil
}

func (s *Store) encrypt(plaintext []byte) ([]byte, error) {
	material, root, err := s.material()
	if err != nil {
		return nil, err
	}
	kg := kryptograf.New(root)
	var buf bytes.Buffer
	writer, err := kg.EncryptWriter(&buf, material)
	if err != nil {
		return nil, err
	}
	if _, err := writer.Write(plaintext); err != nil {
		_ = writer.Close()
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *Store) decrypt(ciphertext []byte) ([]byte, error) {
	material, root, err := s.material()
	if err != nil {
		return nil, err
	}
	kg := kryptograf.New(root)
	reader, err := kg.DecryptReader(bytes.NewReader(ciphertext), material)
	if err != nil {
		return nil, err
	}
	defer func() { _ = reader.Close() }()
	return io.ReadAll(reader)
}

// now returns UTC time truncated to seconds, consistent with SQLite's
// default timestamp resolution.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}
