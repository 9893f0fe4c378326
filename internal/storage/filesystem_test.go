package storage

import (
	"context"
	"testing"
)

func TestFileStoreWriteRead(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	key, err := store.Write(context.Background(), "sites/run-1/index.html", []byte("<html></html>"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if key != "sites/run-1/index.html" {
		t.Fatalf("key = %q", key)
	}
	data, err := store.Read(context.Background(), key)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(data) != "<html></html>" {
		t.Fatalf("data = %q", data)
	}
}

func TestFileStoreRejectsTraversal(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if _, err := store.Write(context.Background(), "../escape.html", nil); err == nil {
		t.Fatalf("expected traversal key to be rejected")
	}
	if _, err := store.Read(context.Background(), "  "); err == nil {
		t.Fatalf("expected empty key to be rejected")
	}
}
