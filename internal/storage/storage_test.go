package storage

import (
	"bytes"
	"context"
	"errors"
	"testing"
)

var ctx = context.Background()

func openStores(t *testing.T) map[string]Store {
	t.Helper()

	fileStore, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	boltStore, err := NewBoltStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewBoltStore failed: %v", err)
	}
	t.Cleanup(func() { boltStore.Close() })

	return map[string]Store{
		DriverMemory: NewMemoryStore(),
		DriverFile:   fileStore,
		DriverBolt:   boltStore,
	}
}

func TestStore_GetMissing(t *testing.T) {
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := store.Get(ctx, "chat_sessions"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
		})
	}
}

func TestStore_PutOverwrites(t *testing.T) {
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			if err := store.Put(ctx, "chat_sessions", []byte(`[1]`)); err != nil {
				t.Fatalf("Put failed: %v", err)
			}
			if err := store.Put(ctx, "chat_sessions", []byte(`[2]`)); err != nil {
				t.Fatalf("Put failed: %v", err)
			}
			got, err := store.Get(ctx, "chat_sessions")
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if !bytes.Equal(got, []byte(`[2]`)) {
				t.Fatalf("expected latest value, got %s", got)
			}
		})
	}
}

func TestStore_RejectsPathKeys(t *testing.T) {
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			if err := store.Put(ctx, "../escape", []byte("x")); !errors.Is(err, ErrInvalidKey) {
				t.Fatalf("expected ErrInvalidKey, got %v", err)
			}
		})
	}
}

func TestFileStore_PersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	first, _ := NewFileStore(dir)
	if err := first.Put(ctx, "chat_sessions", []byte("[]")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	second, _ := NewFileStore(dir)
	got, err := second.Get(ctx, "chat_sessions")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != "[]" {
		t.Fatalf("unexpected value %q", got)
	}
}

func TestBoltStore_PersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	first, err := NewBoltStore(dir)
	if err != nil {
		t.Fatalf("NewBoltStore failed: %v", err)
	}
	if err := first.Put(ctx, "chat_sessions", []byte("[]")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	first.Close()

	second, err := NewBoltStore(dir)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer second.Close()
	if got, err := second.Get(ctx, "chat_sessions"); err != nil || string(got) != "[]" {
		t.Fatalf("unexpected value %q err=%v", got, err)
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	if _, err := Open("redis", t.TempDir()); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}
