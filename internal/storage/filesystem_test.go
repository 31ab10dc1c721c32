package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestFileStoreWrite(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore error: %v", err)
	}
	key, err := store.Write(context.Background(), "w1/thumb.png", []byte("png"))
	if err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if key != "w1/thumb.png" {
		t.Fatalf("key mismatch: %q", key)
	}
	data, err := os.ReadFile(filepath.Join(store.BasePath(), "w1", "thumb.png"))
	if err != nil {
		t.Fatalf("ReadFile error: %v", err)
	}
	if string(data) != "png" {
		t.Fatalf("content mismatch: %q", data)
	}
}

func TestFileStoreRejectsTraversal(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore error: %v", err)
	}
	if _, err := store.Write(context.Background(), "../escape.png", []byte("x")); err == nil {
		t.Fatal("expected traversal key to be rejected")
	}
	if _, err := store.Write(context.Background(), "  ", []byte("x")); err == nil {
		t.Fatal("expected empty key to be rejected")
	}
}
