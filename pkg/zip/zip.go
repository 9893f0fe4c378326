package zip

import (
	"archive/zip"
	"bytes"
	"strings"
)

type Asset struct {
	Filename string
	MIME     string
	Data     []byte
}

// extensions maps MIME types to file extensions for assets whose filename
// carries none.
var extensions = map[string]string{
	"text/html":        ".html",
	"application/json": ".json",
	"image/jpeg":       ".jpg",
	"image/png":        ".png",
	"image/webp":       ".webp",
}

// ArchiveAssets packs the assets into an in-memory zip archive. Entries that
// cannot be created are skipped rather than failing the whole archive.
func ArchiveAssets(assets []Asset) []byte {
	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)
	for _, asset := range assets {
		w, err := zw.Create(entryName(asset))
		if err != nil {
			continue
		}
		if _, err := w.Write(asset.Data); err != nil {
			return nil
		}
	}
	_ = zw.Close()
	return buf.Bytes()
}

func entryName(asset Asset) string {
	name := asset.Filename
	if name == "" {
		name = "asset"
	}
	if !strings.Contains(name, ".") {
		if ext, ok := extensions[asset.MIME]; ok {
			name += ext
		}
	}
	return name
}
