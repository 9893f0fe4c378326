package assetgen

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/CodeMasters-AiFactory/Stargate-sub006/internal/infra"
)

// ErrMissingAPIKey indicates that the client was configured without credentials.
var ErrMissingAPIKey = errors.New("assetgen: api key is required")

// Options configures the generation-service client.
type Options struct {
	APIKey         string
	BaseURL        string
	Model          string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client performs HTTP calls to the external asset-generation service.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *infra.Logger
}

type generationRequest struct {
	Model             string          `json:"model,omitempty"`
	Prompt            string          `json:"prompt"`
	OriginalReference string          `json:"original_reference,omitempty"`
	Section           string          `json:"section,omitempty"`
	Kind              string          `json:"kind"`
	Business          businessPayload `json:"business"`
	Width             int             `json:"requested_width"`
	Height            int             `json:"requested_height"`
	Seed              *int            `json:"seed,omitempty"`
	RequestID         string          `json:"request_id,omitempty"`
}

type businessPayload struct {
	Name     string   `json:"name"`
	Industry string   `json:"industry,omitempty"`
	Location string   `json:"location,omitempty"`
	Services []string `json:"services,omitempty"`
}

type generationResponse struct {
	GeneratedReference string `json:"generated_reference"`
	Width              int    `json:"width"`
	Height             int    `json:"height"`
	RequestID          string `json:"request_id"`
	Code               string `json:"code"`
	Message            string `json:"message"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) (*Client, error) {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 45 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "http://localhost:8090/v1"
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = "assetforge-1"
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Client{
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    baseURL,
		model:      model,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.model
}

// HasCredentials reports whether the client can perform remote calls.
func (c *Client) HasCredentials() bool {
	return c.apiKey != ""
}

// Generate invokes the service once and returns a single generated asset.
// Transport failures, non-success statuses, and malformed bodies all surface
// as errors; the caller records them as per-asset failures.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (*GeneratedAsset, error) {
	if !c.HasCredentials() {
		return nil, ErrMissingAPIKey
	}
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, errors.New("assetgen: prompt is required")
	}
	width, height := req.Width, req.Height
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	seed := deterministicSeed(req.RequestID, req.OriginalReference, prompt)
	payload := generationRequest{
		Model:             c.model,
		Prompt:            prompt,
		OriginalReference: strings.TrimSpace(req.OriginalReference),
		Section:           strings.TrimSpace(req.Section),
		Kind:              string(req.Kind),
		Business: businessPayload{
			Name:     strings.TrimSpace(req.Business.Name),
			Industry: strings.TrimSpace(req.Business.Industry),
			Location: strings.TrimSpace(req.Business.Location),
			Services: req.Business.Services,
		},
		Width:     width,
		Height:    height,
		Seed:      &seed,
		RequestID: strings.TrimSpace(req.RequestID),
	}

	endpoint := c.baseURL + "/assets/generations"
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("assetgen: encode request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("assetgen: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("assetgen: http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("assetgen: read response: %w", err)
	}

	if resp.StatusCode >= 300 {
		var detail errorResponse
		if err := json.Unmarshal(raw, &detail); err == nil && detail.Message != "" {
			return nil, fmt.Errorf("assetgen: %s (%s)", detail.Message, detail.Code)
		}
		return nil, fmt.Errorf("assetgen: status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var decoded generationResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("assetgen: decode response: %w", err)
	}
	if decoded.Code != "" {
		return nil, fmt.Errorf("assetgen: %s (%s)", decoded.Message, decoded.Code)
	}
	reference := strings.TrimSpace(decoded.GeneratedReference)
	if reference == "" {
		return nil, errors.New("assetgen: empty generated reference")
	}
	c.logger.Debug().
		Str("model", c.model).
		Str("request_id", decoded.RequestID).
		Str("reference", reference).
		Msg("assetgen: generated asset")
	return &GeneratedAsset{Reference: reference, Width: decoded.Width, Height: decoded.Height}, nil
}

func deterministicSeed(values ...any) int {
	var parts []string
	for _, v := range values {
		parts = append(parts, fmt.Sprint(v))
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	n := binary.BigEndian.Uint32(sum[:4])
	value := int(n % 2147483647)
	if value <= 0 {
		fallback := binary.BigEndian.Uint32(sum[4:8]) % 2147483647
		if fallback == 0 {
			fallback = 1
		}
		value = int(fallback)
	}
	return value
}
