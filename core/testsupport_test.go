package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"pkt.systems/wheelhouse/schema"
)

var errFakeSubClosed = errors.New("subscription closed")

// fakeEvents is an in-memory surface event subscription.
type fakeEvents struct {
	ch   chan SurfaceEvent
	done chan struct{}
	once sync.Once
}

func newFakeEvents() *fakeEvents {
	return &fakeEvents{
		ch:   make(chan SurfaceEvent, 16),
		done: make(chan struct{}),
	}
}

func (f *fakeEvents) Next(ctx context.Context) (SurfaceEvent, error) {
	select {
	case <-f.done:
		return SurfaceEvent{}, errFakeSubClosed
	case <-ctx.Done():
		return SurfaceEvent{}, ctx.Err()
	case event := <-f.ch:
		return event, nil
	}
}

func (f *fakeEvents) Close() error {
	f.once.Do(func() { close(f.done) })
	return nil
}

func (f *fakeEvents) emit(event SurfaceEvent) {
	select {
	case f.ch <- event:
	case <-f.done:
	}
}

// fakeSurface records calls for assertions.
type fakeSurface struct {
	mu        sync.Mutex
	privilege SurfacePrivilege
	events    *fakeEvents

	loads     []string
	zooms     []schema.ZoomLevel
	finds     []string
	stopFinds int
	muted     []bool
	bounds    []schema.Rect
	hides     int
	menus     []schema.MenuRequest
	performed []schema.MenuAction
	history   []schema.HistoryOp
	closed    bool

	loadErr   error
	renderErr error
}

func newFakeSurface(privilege SurfacePrivilege) *fakeSurface {
	return &fakeSurface{privilege: privilege, events: newFakeEvents()}
}

func (f *fakeSurface) Events() SurfaceEvents { return f.events }

func (f *fakeSurface) Load(ctx context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads = append(f.loads, url)
	return f.loadErr
}

func (f *fakeSurface) HistoryNav(ctx context.Context, op schema.HistoryOp) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.history = append(f.history, op)
	return nil
}

func (f *fakeSurface) SetZoom(ctx context.Context, zoom schema.ZoomLevel) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.zooms = append(f.zooms, zoom)
	return nil
}

func (f *fakeSurface) Find(ctx context.Context, query string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.finds = append(f.finds, query)
	return nil
}

func (f *fakeSurface) StopFind(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopFinds++
	return nil
}

func (f *fakeSurface) SetMuted(ctx context.Context, muted bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.muted = append(f.muted, muted)
	return nil
}

func (f *fakeSurface) SetBounds(ctx context.Context, bounds schema.Rect) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bounds = append(f.bounds, bounds)
	return nil
}

func (f *fakeSurface) Hide(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hides++
	return nil
}

func (f *fakeSurface) RenderMenu(ctx context.Context, id MenuID, req schema.MenuRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.renderErr != nil {
		return f.renderErr
	}
	f.menus = append(f.menus, req)
	return nil
}

func (f *fakeSurface) Perform(ctx context.Context, action schema.MenuAction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.performed = append(f.performed, action)
	return nil
}

func (f *fakeSurface) Privilege() SurfacePrivilege { return f.privilege }

func (f *fakeSurface) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeSurface) lastBounds() (schema.Rect, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.bounds) == 0 {
		return schema.Rect{}, false
	}
	return f.bounds[len(f.bounds)-1], true
}

// fakeFactory hands out fake surfaces and remembers them in creation order.
type fakeFactory struct {
	mu       sync.Mutex
	content  []*fakeSurface
	chrome   map[ChromeRole]*fakeSurface
	failNext error
}

func newFakeFactory() *fakeFactory {
	return &fakeFactory{chrome: make(map[ChromeRole]*fakeSurface)}
}

func (f *fakeFactory) NewContentSurface(ctx context.Context, cfg SurfaceConfig) (Surface, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext != nil {
		err := f.failNext
		f.failNext = nil
		return nil, err
	}
	s := newFakeSurface(cfg.Privilege)
	f.content = append(f.content, s)
	return s, nil
}

func (f *fakeFactory) NewChromeSurface(ctx context.Context, role ChromeRole) (Surface, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := newFakeSurface(PrivilegeInternal)
	f.chrome[role] = s
	return s, nil
}

func (f *fakeFactory) surfaceCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.content)
}

func (f *fakeFactory) surfaceAt(i int) *fakeSurface {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.content[i]
}

// fakeSink collects emitted events.
type fakeSink struct {
	mu        sync.Mutex
	tabs      []schema.TabEvent
	downloads []schema.DownloadEvent
	toasts    []schema.ToastEvent
}

func (f *fakeSink) OnTabEvent(event schema.TabEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tabs = append(f.tabs, event)
}

func (f *fakeSink) OnDownloadEvent(event schema.DownloadEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.downloads = append(f.downloads, event)
}

func (f *fakeSink) OnToast(event schema.ToastEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.toasts = append(f.toasts, event)
}

func (f *fakeSink) tabEvents(kind schema.TabEventType) []schema.TabEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []schema.TabEvent
	for _, event := range f.tabs {
		if event.Type == kind {
			out = append(out, event)
		}
	}
	return out
}

func (f *fakeSink) toastMessages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.toasts))
	for _, toast := range f.toasts {
		out = append(out, toast.Message)
	}
	return out
}

// fakeStore is an in-memory profile store. Encrypt prefixes a marker so
// tests can tell ciphertext from plaintext.
type fakeStore struct {
	mu        sync.Mutex
	visits    []schema.HistoryEntry
	bookmarks []schema.Bookmark
	session   schema.SessionSnapshot

	visitErr    error
	bookmarkErr error
	sessionErr  error
	cryptoErr   error
}

const fakeCipherPrefix = "sealed:"

func (f *fakeStore) RecordVisit(ctx context.Context, url, title string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.visitErr != nil {
		return f.visitErr
	}
	f.visits = append(f.visits, schema.HistoryEntry{URL: url, Title: title})
	return nil
}

func (f *fakeStore) AddBookmark(ctx context.Context, url, title string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.bookmarkErr != nil {
		return f.bookmarkErr
	}
	f.bookmarks = append(f.bookmarks, schema.Bookmark{URL: url, Title: title})
	return nil
}

func (f *fakeStore) GetSession(ctx context.Context) (schema.SessionSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sessionErr != nil {
		return schema.SessionSnapshot{}, f.sessionErr
	}
	return f.session, nil
}

func (f *fakeStore) SetSession(ctx context.Context, snap schema.SessionSnapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sessionErr != nil {
		return f.sessionErr
	}
	f.session = snap
	return nil
}

func (f *fakeStore) Encrypt(ctx context.Context, plaintext []byte) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cryptoErr != nil {
		return nil, f.cryptoErr
	}
	return append([]byte(fakeCipherPrefix), plaintext...), nil
}

func (f *fakeStore) Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cryptoErr != nil {
		return nil, f.cryptoErr
	}
	if len(ciphertext) < len(fakeCipherPrefix) || string(ciphertext[:len(fakeCipherPrefix)]) != fakeCipherPrefix {
		return nil, errors.New("not sealed")
	}
	return ciphertext[len(fakeCipherPrefix):], nil
}

func (f *fakeStore) visitURLs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.visits))
	for _, visit := range f.visits {
		out = append(out, visit.URL)
	}
	return out
}

// fakeSessionFile keeps session payloads in memory.
type fakeSessionFile struct {
	mu         sync.Mutex
	ciphertext []byte
	plain      schema.SessionSnapshot
	hasCipher  bool
	hasPlain   bool
	writeErr   error
}

func (f *fakeSessionFile) WriteEncrypted(ciphertext []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.ciphertext = append([]byte(nil), ciphertext...)
	f.hasCipher = true
	f.hasPlain = false
	return nil
}

func (f *fakeSessionFile) WritePlain(snap schema.SessionSnapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.plain = snap
	f.hasPlain = true
	f.hasCipher = false
	return nil
}

func (f *fakeSessionFile) ReadEncrypted() ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.hasCipher {
		return nil, false, nil
	}
	return append([]byte(nil), f.ciphertext...), true, nil
}

func (f *fakeSessionFile) ReadPlain() (schema.SessionSnapshot, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.hasPlain {
		return schema.SessionSnapshot{}, false, nil
	}
	return f.plain, true, nil
}

// fakeHandle is a controllable transfer handle.
type fakeHandle struct {
	mu        sync.Mutex
	resumable bool
	paused    int
	resumed   int
	cancelled int
	pauseErr  error
	resumeErr error
}

func (f *fakeHandle) Pause(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pauseErr != nil {
		return f.pauseErr
	}
	f.paused++
	return nil
}

func (f *fakeHandle) Resume(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.resumeErr != nil {
		return f.resumeErr
	}
	f.resumed++
	return nil
}

func (f *fakeHandle) Resumable() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.resumable
}

func (f *fakeHandle) Cancel(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled++
	return nil
}

// fakeRevealer records reveal requests.
type fakeRevealer struct {
	mu    sync.Mutex
	paths []string
}

func (f *fakeRevealer) Reveal(ctx context.Context, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paths = append(f.paths, path)
	return nil
}

type testEnv struct {
	svc     *service
	factory *fakeFactory
	sink    *fakeSink
	store   *fakeStore
	session *fakeSessionFile
}

func newTestService(t *testing.T, mutate func(*schema.ServiceConfig)) *testEnv {
	t.Helper()
	cfg := schema.ServiceConfig{
		StateDir:     t.TempDir(),
		DownloadsDir: t.TempDir(),
	}
	if mutate != nil {
		mutate(&cfg)
	}
	factory := newFakeFactory()
	sink := &fakeSink{}
	store := &fakeStore{}
	session := &fakeSessionFile{}
	svc, err := NewService(cfg, ServiceDeps{
		Surfaces:  factory,
		Store:     store,
		Session:   session,
		EventSink: sink,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	impl := svc.(*service)
	base := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	impl.now = func() time.Time { return base }
	return &testEnv{svc: impl, factory: factory, sink: sink, store: store, session: session}
}

func (e *testEnv) advance(t *testing.T, d time.Duration) {
	t.Helper()
	current := e.svc.now()
	e.svc.now = func() time.Time { return current.Add(d) }
}

func mustCreateTab(t *testing.T, e *testEnv, url string, activate bool) schema.TabSnapshot {
	t.Helper()
	resp, err := e.svc.CreateTab(context.Background(), schema.CreateTabRequest{URL: url, Activate: activate})
	if err != nil {
		t.Fatalf("create tab %q: %v", url, err)
	}
	return resp.Tab
}

func tabIDs(tabs []schema.TabSnapshot) []schema.TabID {
	out := make([]schema.TabID, 0, len(tabs))
	for _, tab := range tabs {
		out = append(out, tab.ID)
	}
	return out
}

func sameIDs(a, b []schema.TabID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
