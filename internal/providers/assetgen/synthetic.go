package assetgen

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path"
	"strings"
)

// SyntheticGenerator produces deterministic local references without calling
// the remote service. It backs development and test environments where no
// generation credentials are configured.
type SyntheticGenerator struct{}

// NewSyntheticGenerator returns the stateless synthetic provider.
func NewSyntheticGenerator() *SyntheticGenerator {
	return &SyntheticGenerator{}
}

// Generate derives a stable reference from the request so repeated runs over
// the same document produce identical output.
func (g *SyntheticGenerator) Generate(ctx context.Context, req GenerateRequest) (*GeneratedAsset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sum := sha256.Sum256([]byte(req.Prompt + "|" + req.OriginalReference + "|" + string(req.Kind)))
	section := strings.TrimSpace(req.Section)
	if section == "" {
		section = "general"
	}
	ext := referenceExtension(req.OriginalReference)
	width, height := req.Width, req.Height
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	reference := fmt.Sprintf("/generated/%s/%s%s", section, hex.EncodeToString(sum[:8]), ext)
	return &GeneratedAsset{Reference: reference, Width: width, Height: height}, nil
}

func referenceExtension(ref string) string {
	if i := strings.IndexAny(ref, "?#"); i >= 0 {
		ref = ref[:i]
	}
	ext := strings.ToLower(path.Ext(ref))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp", ".gif", ".avif":
		return ext
	default:
		return ".jpg"
	}
}

var _ Generator = (*SyntheticGenerator)(nil)
