package blobstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestLocalWriteReadDelete(t *testing.T) {
	store, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("new local: %v", err)
	}
	ctx := context.Background()

	if err := store.Write(ctx, "report1.json", `{"a":1}`); err != nil {
		t.Fatalf("write: %v", err)
	}

	value, found, err := store.Read(ctx, "report1.json")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !found {
		t.Fatal("expected blob to be found")
	}
	if value != `{"a":1}` {
		t.Fatalf("unexpected value: %q", value)
	}

	// Overwrite replaces the previous value.
	if err := store.Write(ctx, "report1.json", "second"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	value, _, err = store.Read(ctx, "report1.json")
	if err != nil {
		t.Fatalf("read after overwrite: %v", err)
	}
	if value != "second" {
		t.Fatalf("expected overwrite to win, got %q", value)
	}

	if err := store.Delete(ctx, "report1.json"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.Delete(ctx, "report1.json"); err != nil {
		t.Fatalf("delete missing should be noop: %v", err)
	}
	if _, found, _ := store.Read(ctx, "report1.json"); found {
		t.Fatal("expected blob gone after delete")
	}
}

func TestLocalScratchNameRoundTrips(t *testing.T) {
	store, err := NewLocal(filepath.Join(t.TempDir(), "blobs"))
	if err != nil {
		t.Fatalf("new local: %v", err)
	}
	ctx := context.Background()

	// "tmp" is a pattern-valid name and must behave like any other.
	if err := store.Write(ctx, "tmp", "scratch-colliding name"); err != nil {
		t.Fatalf("write: %v", err)
	}
	value, found, err := store.Read(ctx, "tmp")
	if err != nil || !found {
		t.Fatalf("read: found=%v err=%v", found, err)
	}
	if value != "scratch-colliding name" {
		t.Fatalf("unexpected value: %q", value)
	}

	names, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(names) != 1 || names[0] != "tmp" {
		t.Fatalf("expected exactly [tmp], got %v", names)
	}
}

func TestLocalReadMissing(t *testing.T) {
	store, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("new local: %v", err)
	}

	value, found, err := store.Read(context.Background(), "absent.txt")
	if err != nil {
		t.Fatalf("read missing: %v", err)
	}
	if found || value != "" {
		t.Fatalf("expected not-found, got found=%v value=%q", found, value)
	}
}

func TestLocalRejectsInvalidNames(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocal(root)
	if err != nil {
		t.Fatalf("new local: %v", err)
	}
	ctx := context.Background()

	for _, name := range []string{"", "../secret", "a b", "a/b"} {
		if err := store.Write(ctx, name, "x"); err == nil {
			t.Fatalf("expected write of %q to fail", name)
		}
		if _, _, err := store.Read(ctx, name); err == nil {
			t.Fatalf("expected read of %q to fail", name)
		}
	}

	// Nothing may have escaped into or above the root.
	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatalf("read root: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("unexpected entry in root: %s", entries[0].Name())
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(root), "secret")); err == nil {
		t.Fatal("path traversal escaped the store root")
	}
}

func TestLocalList(t *testing.T) {
	store, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("new local: %v", err)
	}
	ctx := context.Background()

	for _, name := range []string{"b.txt", "a.txt"} {
		if err := store.Write(ctx, name, name); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	names, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(names) != 2 || names[0] != "a.txt" || names[1] != "b.txt" {
		t.Fatalf("unexpected listing: %v", names)
	}
}

func TestDualNamespacesAreIndependent(t *testing.T) {
	dual, err := NewDual(t.TempDir())
	if err != nil {
		t.Fatalf("new dual: %v", err)
	}
	ctx := context.Background()

	if err := dual.Write(ctx, NamespaceReal, "key.json", "real value"); err != nil {
		t.Fatalf("write real: %v", err)
	}
	if err := dual.Write(ctx, NamespaceDecoy, "key.json", "decoy value"); err != nil {
		t.Fatalf("write decoy: %v", err)
	}

	value, found, err := dual.Read(ctx, NamespaceReal, "key.json")
	if err != nil || !found || value != "real value" {
		t.Fatalf("real read: value=%q found=%v err=%v", value, found, err)
	}
	value, found, err = dual.Read(ctx, NamespaceDecoy, "key.json")
	if err != nil || !found || value != "decoy value" {
		t.Fatalf("decoy read: value=%q found=%v err=%v", value, found, err)
	}

	if _, found, _ := dual.Read(ctx, NamespaceReal, "decoy-only.json"); found {
		t.Fatal("real namespace leaked into decoy")
	}

	if _, err := dual.Namespace("other"); err == nil {
		t.Fatal("expected unknown namespace error")
	}
}
