package schema

import "errors"

var (
	// ErrInvalidRequest indicates a malformed request payload.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrInvalidURL indicates a destination that cannot be loaded.
	ErrInvalidURL = errors.New("invalid url")
	// ErrSurfaceUnavailable indicates the host could not create a surface.
	ErrSurfaceUnavailable = errors.New("surface unavailable")
	// ErrStoreUnavailable indicates the remote store is not reachable.
	ErrStoreUnavailable = errors.New("remote store unavailable")
	// ErrStoreTimeout indicates a remote store call exceeded its deadline.
	ErrStoreTimeout = errors.New("remote store call timed out")
	// ErrVaultLocked indicates the credential vault must be unlocked first.
	ErrVaultLocked = errors.New("credential vault is locked")
	// ErrNoSession indicates no session snapshot is available to restore.
	ErrNoSession = errors.New("no session")
	// ErrNotEncrypted indicates a payload lacked the encrypted-envelope marker.
	ErrNotEncrypted = errors.New("payload is not an encrypted envelope")
	// ErrNotResumable indicates the transfer handle cannot resume.
	ErrNotResumable = errors.New("download is not resumable")
)
