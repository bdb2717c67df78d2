package persist

import (
	"os"
	"path/filepath"
	"testing"

	"pkt.systems/wheelhouse/schema"
)

func TestPlainRoundtrip(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	snap := schema.SessionSnapshot{Tabs: []schema.SessionTab{
		{URL: "https://a.example/", Title: "A"},
		{URL: "https://b.example/", Title: "B"},
	}}
	if err := store.WritePlain(snap); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, present, err := store.ReadPlain()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !present {
		t.Fatalf("expected a snapshot")
	}
	if len(got.Tabs) != 2 || got.Tabs[0].URL != "https://a.example/" || got.Tabs[1].Title != "B" {
		t.Fatalf("unexpected snapshot: %+v", got)
	}
}

func TestEncryptedRoundtrip(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ciphertext := []byte{0x01, 0x02, 0xff, 0x00, 0x7f}
	if err := store.WriteEncrypted(ciphertext); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, present, err := store.ReadEncrypted()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !present {
		t.Fatalf("expected ciphertext")
	}
	if string(got) != string(ciphertext) {
		t.Fatalf("ciphertext mangled: %v", got)
	}
}

func TestMissingFileIsAbsentNotError(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if _, present, err := store.ReadPlain(); err != nil || present {
		t.Fatalf("missing file: present=%v err=%v", present, err)
	}
	if _, present, err := store.ReadEncrypted(); err != nil || present {
		t.Fatalf("missing file: present=%v err=%v", present, err)
	}
}

func TestCrossFormatReadsReportAbsent(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	if err := store.WritePlain(schema.SessionSnapshot{Tabs: []schema.SessionTab{{URL: "https://a.example/"}}}); err != nil {
		t.Fatalf("write plain: %v", err)
	}
	if _, present, err := store.ReadEncrypted(); err != nil || present {
		t.Fatalf("plaintext file must not read as ciphertext: present=%v err=%v", present, err)
	}

	if err := store.WriteEncrypted([]byte("opaque")); err != nil {
		t.Fatalf("write encrypted: %v", err)
	}
	if _, present, err := store.ReadPlain(); err != nil || present {
		t.Fatalf("encrypted file must not read as plaintext: present=%v err=%v", present, err)
	}
}

func TestWriteReplacesPreviousSnapshot(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if err := store.WritePlain(schema.SessionSnapshot{Tabs: []schema.SessionTab{{URL: "https://old.example/"}}}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := store.WritePlain(schema.SessionSnapshot{Tabs: []schema.SessionTab{{URL: "https://new.example/"}}}); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	got, _, err := store.ReadPlain()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got.Tabs) != 1 || got.Tabs[0].URL != "https://new.example/" {
		t.Fatalf("unexpected snapshot: %+v", got)
	}

	// No temp files left behind.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "session.json" {
		names := make([]string, 0, len(entries))
		for _, entry := range entries {
			names = append(names, entry.Name())
		}
		t.Fatalf("unexpected state dir contents: %v", names)
	}
}

func TestNewStoreRequiresDirectory(t *testing.T) {
	if _, err := NewStore("  "); err == nil {
		t.Fatalf("expected error for empty directory")
	}
}

func TestNewStoreCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "state")
	if _, err := NewStore(dir); err != nil {
		t.Fatalf("new store: %v", err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("directory not created: %v", err)
	}
}
