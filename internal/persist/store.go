package persist

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"pkt.systems/pslog"
	"pkt.systems/wheelhouse/schema"
)

// EnvelopeFormat marks a session file whose payload is ciphertext produced
// by the remote store. Files without the marker are plaintext snapshots.
const EnvelopeFormat = "wheelhouse/encrypted-v1"

const sessionFileName = "session.json"

// envelope is the on-disk shape of an encrypted snapshot.
type envelope struct {
	Format     string `json:"format"`
	Ciphertext []byte `json:"ciphertext"`
}

// Store persists the session snapshot to a single file in the state
// directory. Writes go through a temp file, fsync, and rename so a crash
// never leaves a torn snapshot behind.
type Store struct {
	path string
	log  pslog.Logger
}

// NewStore constructs a session store rooted at the given directory.
func NewStore(dir string) (*Store, error) {
	return NewStoreWithLogger(dir, nil)
}

// NewStoreWithLogger constructs a session store with logging.
func NewStoreWithLogger(dir string, logger pslog.Logger) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("state directory is required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	if logger != nil {
		logger = logger.With("state_dir", dir)
	}
	return &Store{path: filepath.Join(dir, sessionFileName), log: logger}, nil
}

// WriteEncrypted stores ciphertext wrapped in the encrypted envelope.
func (s *Store) WriteEncrypted(ciphertext []byte) error {
	data, err := json.MarshalIndent(envelope{Format: EnvelopeFormat, Ciphertext: ciphertext}, "", "  ")
	if err != nil {
		return err
	}
	return s.writeFile(data)
}

// WritePlain stores the snapshot as plaintext JSON.
func (s *Store) WritePlain(snap schema.SessionSnapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	return s.writeFile(data)
}

// ReadEncrypted returns the stored ciphertext. present is false when no
// session file exists or when the file is a plaintext snapshot.
func (s *Store) ReadEncrypted() ([]byte, bool, error) {
	data, present, err := s.readFile()
	if err != nil || !present {
		return nil, false, err
	}
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, false, err
	}
	if env.Format != EnvelopeFormat {
		return nil, false, nil
	}
	return env.Ciphertext, true, nil
}

// ReadPlain returns the stored plaintext snapshot. present is false when no
// session file exists or when the file carries the encrypted envelope.
func (s *Store) ReadPlain() (schema.SessionSnapshot, bool, error) {
	data, present, err := s.readFile()
	if err != nil || !present {
		return schema.SessionSnapshot{}, false, err
	}
	var env envelope
	if err := json.Unmarshal(data, &env); err == nil && env.Format == EnvelopeFormat {
		return schema.SessionSnapshot{}, false, nil
	}
	var snap schema.SessionSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		if s.log != nil {
			s.log.Warn("session load failed", "err", err)
		}
		return schema.SessionSnapshot{}, false, err
	}
	if s.log != nil {
		s.log.Debug("session load ok", "tabs", len(snap.Tabs))
	}
	return snap, true, nil
}

func (s *Store) readFile() ([]byte, bool, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if s.log != nil {
				s.log.Debug("session load miss")
			}
			return nil, false, nil
		}
		if s.log != nil {
			s.log.Warn("session load failed", "err", err)
		}
		return nil, false, err
	}
	return data, true, nil
}

func (s *Store) writeFile(data []byte) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return s.saveFailed(err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), "session-*.json")
	if err != nil {
		return s.saveFailed(err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return s.saveFailed(err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return s.saveFailed(err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return s.saveFailed(err)
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		_ = os.Remove(tmp.Name())
		return s.saveFailed(err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return s.saveFailed(err)
	}
	if s.log != nil {
		s.log.Trace("session save ok", "bytes", len(data))
	}
	return nil
}

func (s *Store) saveFailed(err error) error {
	if s.log != nil {
		s.log.Warn("session save failed", "err", err)
	}
	return err
}
