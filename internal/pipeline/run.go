// Package pipeline drives the sequential asset-generation workflow for one
// document: it owns the asset list and the live document snapshot, issues
// generation requests one at a time, applies rewrites as generations
// complete, and exposes the start/advance/skip/retry operations consumed by
// the UI layer.
package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/CodeMasters-AiFactory/Stargate-sub006/internal/domain"
	"github.com/CodeMasters-AiFactory/Stargate-sub006/internal/htmlscan"
	"github.com/CodeMasters-AiFactory/Stargate-sub006/internal/infra"
	"github.com/CodeMasters-AiFactory/Stargate-sub006/internal/promptgen"
	"github.com/CodeMasters-AiFactory/Stargate-sub006/internal/providers/assetgen"
	"github.com/CodeMasters-AiFactory/Stargate-sub006/internal/rewrite"
)

// Config carries everything needed to create a run.
type Config struct {
	Document  string
	Business  domain.BusinessContext
	Keywords  []string
	Locale    string
	Generator assetgen.Generator
	Logger    infra.Logger
}

// Run is the mutable orchestration state for one pipeline invocation. All
// mutation happens under the run mutex; at most one generation request is in
// flight at any time. Runs are independent of each other and share no state.
type Run struct {
	ID        string
	CreatedAt time.Time

	mu       sync.Mutex
	business domain.BusinessContext
	keywords []string
	locale   string
	assets   []domain.DetectedAsset
	document string
	cursor   int
	started  bool
	// inflight is the index of the asset currently generating, -1 when idle.
	inflight int
	// attempt is bumped on every launch and every skip; a generation goroutine
	// whose epoch no longer matches discards its response.
	attempt uint64
	retries []int

	completed int
	errored   int
	skipped   int

	generator assetgen.Generator
	logger    infra.Logger
	ctx       context.Context

	done     chan struct{}
	doneOnce sync.Once
}

// Progress is a read-only snapshot handed to the UI collaborator.
type Progress struct {
	RunID     string                 `json:"run_id"`
	Cursor    int                    `json:"cursor"`
	Total     int                    `json:"total"`
	Completed int                    `json:"completed"`
	Errored   int                    `json:"errored"`
	Skipped   int                    `json:"skipped"`
	Terminal  bool                   `json:"terminal"`
	Assets    []domain.DetectedAsset `json:"assets"`
	Document  string                 `json:"document"`
}

// NewRun detects the document's assets and creates the orchestration state.
// An empty asset list is valid: the run is terminal from the start and
// assembles to the unchanged input document with an empty manifest.
func NewRun(cfg Config) (*Run, error) {
	if strings.TrimSpace(cfg.Document) == "" {
		return nil, domain.ErrEmptyDocument
	}
	if cfg.Generator == nil {
		return nil, errors.New("pipeline: generator is required")
	}
	cfg.Business.Normalize()
	r := &Run{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		business:  cfg.Business,
		keywords:  append([]string(nil), cfg.Keywords...),
		locale:    strings.TrimSpace(cfg.Locale),
		assets:    htmlscan.Detect(cfg.Document),
		document:  cfg.Document,
		inflight:  -1,
		generator: cfg.Generator,
		logger:    cfg.Logger,
		done:      make(chan struct{}),
	}
	if len(r.assets) == 0 {
		r.doneOnce.Do(func() { close(r.done) })
	}
	return r, nil
}

// Start begins generation at the first asset. It is valid only once, before
// any cursor movement, and requires at least one detected asset. The context
// bounds every generation request issued over the run's lifetime, so callers
// must pass one that outlives the originating HTTP request.
func (r *Run) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return domain.ErrAlreadyStarted
	}
	if len(r.assets) == 0 {
		return domain.ErrNoAssets
	}
	if ctx == nil {
		ctx = context.Background()
	}
	r.started = true
	r.ctx = ctx
	r.maybeLaunchLocked()
	return nil
}

// Skip forces the current asset to skipped and advances the cursor. An
// in-flight generation for that asset is abandoned: its response, whenever it
// arrives, is discarded and never applied to the document.
func (r *Run) Skip() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cursor >= len(r.assets) {
		return domain.ErrNotFound
	}
	a := &r.assets[r.cursor]
	switch a.Status {
	case domain.AssetStatusGenerating:
		r.attempt++
		r.inflight = -1
	case domain.AssetStatusPending:
	default:
		return domain.ErrInvalidTransition
	}
	a.Status = domain.AssetStatusSkipped
	r.skipped++
	r.logger.Info().Str("run_id", r.ID).Str("asset_id", a.ID).Msg("pipeline: asset skipped")
	r.advanceLocked()
	r.checkTerminalLocked()
	return nil
}

// Retry re-enters generation for an errored asset, reusing the prompt frozen
// at its first synthesis. A retry issued while another generation is in
// flight queues behind it; requests are never concurrent within a run.
func (r *Run) Retry(index int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if index < 0 || index >= len(r.assets) {
		return domain.ErrNotFound
	}
	if r.assets[index].Status != domain.AssetStatusError {
		return domain.ErrInvalidTransition
	}
	if r.ctx == nil {
		r.ctx = context.Background()
	}
	if r.inflight != -1 {
		r.retries = append(r.retries, index)
		return nil
	}
	r.launchLocked(index, true)
	return nil
}

// Advance resumes a stalled run, e.g. one abandoned mid-way. If the current
// asset already reached a terminal status the cursor moves past it; if it is
// still pending its generation is (re)launched. A no-op while a request is in
// flight.
func (r *Run) Advance() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.started {
		return domain.ErrInvalidTransition
	}
	if r.inflight == -1 {
		if r.cursor < len(r.assets) && r.assets[r.cursor].Status.Terminal() {
			r.advanceLocked()
		} else {
			r.maybeLaunchLocked()
		}
	}
	r.checkTerminalLocked()
	return nil
}

// Wait blocks until the run first reaches all-processed or the context ends.
func (r *Run) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-r.done:
		return nil
	}
}

// Terminal reports whether every asset has reached a non-pending,
// non-generating status.
func (r *Run) Terminal() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.terminalLocked()
}

// Progress returns a snapshot for the UI; the caller owns the copies.
func (r *Run) Progress() Progress {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Progress{
		RunID:     r.ID,
		Cursor:    r.cursor,
		Total:     len(r.assets),
		Completed: r.completed,
		Errored:   r.errored,
		Skipped:   r.skipped,
		Terminal:  r.terminalLocked(),
		Assets:    append([]domain.DetectedAsset(nil), r.assets...),
		Document:  r.document,
	}
}

// Business returns the business context the run was created with.
func (r *Run) Business() domain.BusinessContext {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.business
}

// Assemble packages the final document and the manifest of completed assets.
// Valid only once the run is all-processed; errored and skipped assets are
// omitted from the manifest but remain visible through Progress.
func (r *Run) Assemble() (*domain.LocalizationResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.terminalLocked() {
		return nil, domain.ErrRunNotFinished
	}
	manifest := make([]domain.ManifestEntry, 0, r.completed)
	for _, a := range r.assets {
		if a.Status != domain.AssetStatusCompleted {
			continue
		}
		manifest = append(manifest, domain.ManifestEntry{
			OriginalReference:  a.OriginalReference,
			GeneratedReference: a.GeneratedReference,
			DescriptiveText:    a.DescriptiveText,
			Section:            a.Section,
			Prompt:             a.Prompt,
		})
	}
	return &domain.LocalizationResult{FinalDocument: r.document, Manifest: manifest}, nil
}

func (r *Run) terminalLocked() bool {
	for _, a := range r.assets {
		if !a.Status.Terminal() {
			return false
		}
	}
	return true
}

func (r *Run) checkTerminalLocked() {
	if r.terminalLocked() {
		r.doneOnce.Do(func() { close(r.done) })
	}
}

// launchLocked transitions the asset at idx to generating and issues the
// request on a fresh goroutine. The prompt is synthesized on first launch and
// frozen afterwards so retries reuse it verbatim.
func (r *Run) launchLocked(idx int, retry bool) {
	a := &r.assets[idx]
	if a.Status == domain.AssetStatusError {
		r.errored--
	}
	a.Status = domain.AssetStatusGenerating
	a.ErrorDetail = ""
	if a.Prompt == "" {
		a.Prompt = promptgen.Build(*a, r.business, r.keywords, r.locale)
	}
	r.inflight = idx
	r.attempt++
	epoch := r.attempt
	req := assetgen.GenerateRequest{
		Prompt:            a.Prompt,
		OriginalReference: a.OriginalReference,
		Section:           a.Section,
		Kind:              a.Kind,
		Business:          r.business,
		Width:             a.Width,
		Height:            a.Height,
		RequestID:         r.ID + "/" + a.ID,
	}
	r.logger.Info().
		Str("run_id", r.ID).
		Str("asset_id", a.ID).
		Str("section", a.Section).
		Bool("retry", retry).
		Msg("pipeline: generating asset")
	go r.generate(epoch, idx, retry, req)
}

func (r *Run) generate(epoch uint64, idx int, retry bool, req assetgen.GenerateRequest) {
	asset, err := r.generator.Generate(r.ctx, req)

	r.mu.Lock()
	defer r.mu.Unlock()
	if epoch != r.attempt || r.inflight != idx {
		// The asset was skipped while this request was in flight.
		r.logger.Debug().Str("run_id", r.ID).Int("index", idx).Msg("pipeline: discarding stale generation response")
		return
	}
	a := &r.assets[idx]
	if err == nil && (asset == nil || strings.TrimSpace(asset.Reference) == "") {
		err = errors.New("empty generation response")
	}
	if err != nil {
		a.Status = domain.AssetStatusError
		a.ErrorDetail = err.Error()
		r.errored++
		r.logger.Warn().Err(err).Str("run_id", r.ID).Str("asset_id", a.ID).Msg("pipeline: asset generation failed")
	} else {
		a.GeneratedReference = strings.TrimSpace(asset.Reference)
		a.Status = domain.AssetStatusCompleted
		r.completed++
		r.document = rewrite.Apply(r.document, a.OriginalReference, a.GeneratedReference, a.Kind)
		r.logger.Info().Str("run_id", r.ID).Str("asset_id", a.ID).Str("reference", a.GeneratedReference).Msg("pipeline: asset completed")
	}
	r.inflight = -1
	if retry {
		r.maybeLaunchLocked()
	} else {
		r.advanceLocked()
	}
	r.checkTerminalLocked()
}

func (r *Run) advanceLocked() {
	r.cursor++
	r.maybeLaunchLocked()
}

// maybeLaunchLocked starts the next generation if the slot is free: queued
// retries first, then the cursor asset when it is still pending.
func (r *Run) maybeLaunchLocked() {
	if !r.started || r.inflight != -1 {
		return
	}
	for len(r.retries) > 0 {
		idx := r.retries[0]
		r.retries = r.retries[1:]
		if r.assets[idx].Status == domain.AssetStatusError {
			r.launchLocked(idx, true)
			return
		}
	}
	if r.cursor < len(r.assets) && r.assets[r.cursor].Status == domain.AssetStatusPending {
		r.launchLocked(r.cursor, false)
	}
}
