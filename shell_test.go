package wheelhouse

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"pkt.systems/wheelhouse/core"
	"pkt.systems/wheelhouse/internal/appconfig"
	"pkt.systems/wheelhouse/schema"
)

var errStubSubClosed = errors.New("subscription closed")

type stubEvents struct {
	done chan struct{}
	once sync.Once
}

func newStubEvents() *stubEvents {
	return &stubEvents{done: make(chan struct{})}
}

func (e *stubEvents) Next(ctx context.Context) (core.SurfaceEvent, error) {
	select {
	case <-e.done:
		return core.SurfaceEvent{}, errStubSubClosed
	case <-ctx.Done():
		return core.SurfaceEvent{}, ctx.Err()
	}
}

func (e *stubEvents) Close() error {
	e.once.Do(func() { close(e.done) })
	return nil
}

type stubSurface struct {
	privilege core.SurfacePrivilege
	events    *stubEvents
}

func (s *stubSurface) Events() core.SurfaceEvents                         { return s.events }
func (s *stubSurface) Load(context.Context, string) error                 { return nil }
func (s *stubSurface) HistoryNav(context.Context, schema.HistoryOp) error { return nil }
func (s *stubSurface) SetZoom(context.Context, schema.ZoomLevel) error    { return nil }
func (s *stubSurface) Find(context.Context, string) error                 { return nil }
func (s *stubSurface) StopFind(context.Context) error                     { return nil }
func (s *stubSurface) SetMuted(context.Context, bool) error               { return nil }
func (s *stubSurface) SetBounds(context.Context, schema.Rect) error       { return nil }
func (s *stubSurface) Hide(context.Context) error                         { return nil }
func (s *stubSurface) Perform(context.Context, schema.MenuAction) error   { return nil }
func (s *stubSurface) Privilege() core.SurfacePrivilege                   { return s.privilege }
func (s *stubSurface) Close() error                                       { return nil }

func (s *stubSurface) RenderMenu(context.Context, core.MenuID, schema.MenuRequest) error {
	return nil
}

type stubFactory struct{}

func (f *stubFactory) NewContentSurface(ctx context.Context, cfg core.SurfaceConfig) (core.Surface, error) {
	return &stubSurface{privilege: cfg.Privilege, events: newStubEvents()}, nil
}

func (f *stubFactory) NewChromeSurface(ctx context.Context, role core.ChromeRole) (core.Surface, error) {
	return &stubSurface{privilege: core.PrivilegeInternal, events: newStubEvents()}, nil
}

type stubStore struct {
	mu      sync.Mutex
	session schema.SessionSnapshot
	saved   bool
}

func (s *stubStore) RecordVisit(context.Context, string, string) error { return nil }
func (s *stubStore) AddBookmark(context.Context, string, string) error { return nil }

func (s *stubStore) GetSession(context.Context) (schema.SessionSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session, nil
}

func (s *stubStore) SetSession(_ context.Context, snap schema.SessionSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = snap
	s.saved = true
	return nil
}

func (s *stubStore) Encrypt(_ context.Context, plaintext []byte) ([]byte, error) {
	return append([]byte("sealed:"), plaintext...), nil
}

func (s *stubStore) Decrypt(_ context.Context, ciphertext []byte) ([]byte, error) {
	return ciphertext[len("sealed:"):], nil
}

func (s *stubStore) sessionSaved() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saved
}

type stubSessionFile struct {
	mu         sync.Mutex
	ciphertext []byte
}

func (f *stubSessionFile) WriteEncrypted(ciphertext []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ciphertext = append([]byte(nil), ciphertext...)
	return nil
}

func (f *stubSessionFile) WritePlain(schema.SessionSnapshot) error { return nil }

func (f *stubSessionFile) ReadEncrypted() ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ciphertext == nil {
		return nil, false, nil
	}
	return append([]byte(nil), f.ciphertext...), true, nil
}

func (f *stubSessionFile) ReadPlain() (schema.SessionSnapshot, bool, error) {
	return schema.SessionSnapshot{}, false, nil
}

func testShellConfig(t *testing.T) appconfig.Config {
	t.Helper()
	cfg, err := appconfig.DefaultConfig()
	if err != nil {
		t.Fatalf("defaults: %v", err)
	}
	cfg.StateDir = t.TempDir()
	cfg.DownloadsDir = t.TempDir()
	return cfg
}

func newTestShell(t *testing.T) (Shell, *stubStore) {
	t.Helper()
	store := &stubStore{}
	shell, err := New(testShellConfig(t), ShellDeps{
		Surfaces: &stubFactory{},
		Store:    store,
		Session:  &stubSessionFile{},
	})
	if err != nil {
		t.Fatalf("new shell: %v", err)
	}
	return shell, store
}

func TestWaitBlocksUntilStopFinishes(t *testing.T) {
	shell, store := newTestShell(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := shell.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}

	// Mimic the signal path: the run context cancels while Stop runs in
	// its own goroutine.
	go func() {
		cancel()
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer stopCancel()
		_ = shell.Stop(stopCtx)
	}()

	waited := make(chan error, 1)
	go func() { waited <- shell.Wait() }()
	select {
	case err := <-waited:
		if err != nil {
			t.Fatalf("wait: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("wait never returned")
	}
	if !store.sessionSaved() {
		t.Fatalf("session must be saved before wait returns")
	}
}

func TestStopIsIdempotent(t *testing.T) {
	shell, _ := newTestShell(t)
	if err := shell.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := shell.Stop(context.Background()); err != nil {
		t.Fatalf("first stop: %v", err)
	}
	if err := shell.Stop(context.Background()); err != nil {
		t.Fatalf("second stop: %v", err)
	}

	// Wait after a completed stop returns without blocking.
	waited := make(chan error, 1)
	go func() { waited <- shell.Wait() }()
	select {
	case err := <-waited:
		if err != nil {
			t.Fatalf("wait: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("wait blocked after stop")
	}
}

func TestWaitBeforeStartFails(t *testing.T) {
	shell, _ := newTestShell(t)
	if err := shell.Wait(); err == nil {
		t.Fatalf("expected error for wait before start")
	}
}
