package assetgen

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/CodeMasters-AiFactory/Stargate-sub006/internal/domain"
)

type stubClient struct {
	asset          *GeneratedAsset
	err            error
	hasCredentials bool
	calls          int
}

func (s *stubClient) Generate(ctx context.Context, req GenerateRequest) (*GeneratedAsset, error) {
	s.calls++
	return s.asset, s.err
}

func (s *stubClient) HasCredentials() bool { return s.hasCredentials }
func (s *stubClient) Model() string        { return "stub-model" }

type stubGenerator struct {
	asset *GeneratedAsset
	err   error
	calls int
}

func (s *stubGenerator) Generate(ctx context.Context, req GenerateRequest) (*GeneratedAsset, error) {
	s.calls++
	return s.asset, s.err
}

func TestRemoteFallsBackWithoutCredentials(t *testing.T) {
	fallback := &stubGenerator{asset: &GeneratedAsset{Reference: "synthetic.jpg"}}
	client := &stubClient{hasCredentials: false}
	gen := NewRemoteGenerator(client, fallback)

	asset, err := gen.Generate(context.Background(), GenerateRequest{Prompt: "p"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if client.calls != 0 {
		t.Fatalf("client should not be invoked without credentials")
	}
	if fallback.calls != 1 || asset.Reference != "synthetic.jpg" {
		t.Fatalf("fallback not used: %#v", asset)
	}
}

func TestRemoteFallsBackOnAuthError(t *testing.T) {
	fallback := &stubGenerator{asset: &GeneratedAsset{Reference: "synthetic.jpg"}}
	client := &stubClient{hasCredentials: true, err: errors.New("assetgen: Unauthorized (401)")}
	gen := NewRemoteGenerator(client, fallback)

	asset, err := gen.Generate(context.Background(), GenerateRequest{Prompt: "p"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if asset.Reference != "synthetic.jpg" || fallback.calls != 1 {
		t.Fatalf("fallback not used: %#v", asset)
	}
}

func TestRemotePropagatesGenerationFailure(t *testing.T) {
	fallback := &stubGenerator{asset: &GeneratedAsset{Reference: "synthetic.jpg"}}
	client := &stubClient{hasCredentials: true, err: errors.New("assetgen: backend down (Unavailable)")}
	gen := NewRemoteGenerator(client, fallback)

	if _, err := gen.Generate(context.Background(), GenerateRequest{Prompt: "p"}); err == nil {
		t.Fatalf("expected failure to propagate")
	}
	if fallback.calls != 0 {
		t.Fatalf("ordinary failures must not fall back")
	}
}

func TestSyntheticDeterminism(t *testing.T) {
	gen := NewSyntheticGenerator()
	req := GenerateRequest{
		Prompt:            "prompt",
		OriginalReference: "stock.png?v=2",
		Section:           "hero",
		Kind:              domain.AssetKindImage,
	}
	first, err := gen.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	second, err := gen.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if first.Reference != second.Reference {
		t.Fatalf("references differ: %q vs %q", first.Reference, second.Reference)
	}
	if !strings.HasPrefix(first.Reference, "/generated/hero/") {
		t.Fatalf("reference = %q", first.Reference)
	}
	if !strings.HasSuffix(first.Reference, ".png") {
		t.Fatalf("reference = %q, want original extension preserved", first.Reference)
	}
}

func TestSyntheticDiffersPerAsset(t *testing.T) {
	gen := NewSyntheticGenerator()
	a, _ := gen.Generate(context.Background(), GenerateRequest{Prompt: "p", OriginalReference: "a.jpg"})
	b, _ := gen.Generate(context.Background(), GenerateRequest{Prompt: "p", OriginalReference: "b.jpg"})
	if a.Reference == b.Reference {
		t.Fatalf("distinct assets produced identical references: %q", a.Reference)
	}
}
