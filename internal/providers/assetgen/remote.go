package assetgen

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

type remoteClient interface {
	Generate(context.Context, GenerateRequest) (*GeneratedAsset, error)
	HasCredentials() bool
	Model() string
}

// RemoteGenerator orchestrates calls to the generation service and falls back
// to another generator (e.g. synthetic) when credentials are missing or
// rejected. Ordinary generation failures are NOT absorbed here; the pipeline
// records them on the asset.
type RemoteGenerator struct {
	client   remoteClient
	fallback Generator
}

// NewRemoteGenerator wires a service client with an optional fallback generator.
func NewRemoteGenerator(client remoteClient, fallback Generator) *RemoteGenerator {
	return &RemoteGenerator{client: client, fallback: fallback}
}

// Generate fulfils the Generator interface.
func (g *RemoteGenerator) Generate(ctx context.Context, req GenerateRequest) (*GeneratedAsset, error) {
	if g == nil {
		return nil, fmt.Errorf("assetgen: remote generator not configured")
	}
	if g.client == nil || !g.client.HasCredentials() {
		if g.fallback != nil {
			return g.fallback.Generate(ctx, req)
		}
		return nil, ErrMissingAPIKey
	}
	asset, err := g.client.Generate(ctx, req)
	if err != nil {
		if isCredentialError(err) && g.fallback != nil {
			return g.fallback.Generate(ctx, req)
		}
		return nil, err
	}
	return asset, nil
}

func (g *RemoteGenerator) String() string {
	if g == nil || g.client == nil {
		return "assetgen"
	}
	return g.client.Model()
}

func isCredentialError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrMissingAPIKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unauthorized") || strings.Contains(msg, "forbidden")
}

var _ Generator = (*RemoteGenerator)(nil)
