package zip

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"
)

func TestArchiveAssets(t *testing.T) {
	archive := ArchiveAssets([]Asset{
		{Filename: "index.html", MIME: "text/html", Data: []byte("<html></html>")},
		{Filename: "manifest", MIME: "application/json", Data: []byte("[]")},
	})
	if len(archive) == 0 {
		t.Fatalf("empty archive")
	}

	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	if len(zr.File) != 2 {
		t.Fatalf("entries = %d", len(zr.File))
	}
	if zr.File[0].Name != "index.html" {
		t.Fatalf("first entry = %q", zr.File[0].Name)
	}
	if zr.File[1].Name != "manifest.json" {
		t.Fatalf("second entry = %q, want MIME extension applied", zr.File[1].Name)
	}

	rc, err := zr.File[0].Open()
	if err != nil {
		t.Fatalf("open entry: %v", err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read entry: %v", err)
	}
	if string(data) != "<html></html>" {
		t.Fatalf("entry data = %q", data)
	}
}
