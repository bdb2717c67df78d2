package core

import (
	"context"

	"pkt.systems/pslog"
	"pkt.systems/wheelhouse/schema"
)

// Store is the slice of the remote profile store the shell core consumes.
// Every call can fail; the core degrades instead of blocking on it.
type Store interface {
	RecordVisit(ctx context.Context, url, title string) error
	AddBookmark(ctx context.Context, url, title string) error
	GetSession(ctx context.Context) (schema.SessionSnapshot, error)
	SetSession(ctx context.Context, snap schema.SessionSnapshot) error
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
}

// SessionFile persists the local session snapshot fallback. Reads report
// presence separately from failure so the restore chain can distinguish
// "no file" from "unreadable file".
type SessionFile interface {
	WriteEncrypted(ciphertext []byte) error
	WritePlain(snap schema.SessionSnapshot) error
	ReadEncrypted() (ciphertext []byte, present bool, err error)
	ReadPlain() (snap schema.SessionSnapshot, present bool, err error)
}

// ServiceDeps carries the collaborators a Service needs. Surfaces is
// mandatory; everything else may be nil and the matching feature degrades.
type ServiceDeps struct {
	Surfaces  SurfaceFactory
	Store     Store
	Session   SessionFile
	Revealer  Revealer
	EventSink EventSink
	Logger    pslog.Logger
}
