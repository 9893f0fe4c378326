package assetgen

import (
	"context"

	"github.com/CodeMasters-AiFactory/Stargate-sub006/internal/domain"
)

// GenerateRequest describes one asset-generation call. Exactly one request is
// in flight per run at any time; the pipeline enforces that, not the provider.
type GenerateRequest struct {
	Prompt            string
	OriginalReference string
	Section           string
	Kind              domain.AssetKind
	Business          domain.BusinessContext
	Width             int
	Height            int
	RequestID         string
}

// GeneratedAsset is the normalized result returned by any provider.
type GeneratedAsset struct {
	Reference string
	Width     int
	Height    int
}

// Generator is the contract implemented by all asset providers.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (*GeneratedAsset, error)
}

// Default dimensions requested when detection found no size hint.
const (
	DefaultWidth  = 1024
	DefaultHeight = 768
)
