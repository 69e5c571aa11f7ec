package auth

import (
	"os"
	"testing"
)

func TestFileStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	if _, ok := store.Token(); ok {
		t.Fatalf("fresh store must be empty")
	}
	if err := store.Save("abc.def.ghi"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	tok, ok := store.Token()
	if !ok || tok != "abc.def.ghi" {
		t.Fatalf("Token = %q, %v", tok, ok)
	}

	info, err := os.Stat(store.Path())
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("unexpected permissions: %v", perm)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, ok := store.Token(); ok {
		t.Fatalf("store must be empty after Clear")
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("second Clear: %v", err)
	}
}

func TestFileStoreIgnoresCorruptFile(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if err := os.WriteFile(store.Path(), []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, ok := store.Token(); ok {
		t.Fatalf("corrupt file must read as no token")
	}
}

func TestMemoryStoreRejectsEmpty(t *testing.T) {
	store := NewMemoryStore("  ")
	if _, ok := store.Token(); ok {
		t.Fatalf("blank seed must not count as a token")
	}
	if err := store.Save(""); err == nil {
		t.Fatalf("expected error for empty token")
	}
}
