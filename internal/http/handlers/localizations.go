package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/CodeMasters-AiFactory/Stargate-sub006/internal/domain"
	"github.com/CodeMasters-AiFactory/Stargate-sub006/internal/middleware"
	"github.com/CodeMasters-AiFactory/Stargate-sub006/internal/pipeline"
	"github.com/CodeMasters-AiFactory/Stargate-sub006/internal/sqlinline"
	"github.com/CodeMasters-AiFactory/Stargate-sub006/pkg/zip"
)

type createLocalizationRequest struct {
	Document string                 `json:"document"`
	Business domain.BusinessContext `json:"business"`
	Keywords []string               `json:"keywords"`
	Locale   string                 `json:"locale"`
}

// LocalizationsCreate scans the submitted document and registers a run. The
// run starts generating only when the client calls the start endpoint.
func (a *App) LocalizationsCreate(w http.ResponseWriter, r *http.Request) {
	var req createLocalizationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	locale := req.Locale
	if locale == "" {
		locale = middleware.LocaleFromContext(r.Context())
	}
	run, err := a.Runs.Create(pipeline.Config{
		Document:  req.Document,
		Business:  req.Business,
		Keywords:  req.Keywords,
		Locale:    locale,
		Generator: a.Generator,
		Logger:    a.Logger,
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmptyDocument) {
			a.error(w, http.StatusBadRequest, "bad_request", "document is required")
			return
		}
		a.error(w, http.StatusInternalServerError, "internal", "failed to create run")
		return
	}
	a.recordRunCreated(r.Context(), run, locale, req.Document)
	a.json(w, http.StatusCreated, run.Progress())
}

func (a *App) LocalizationStart(w http.ResponseWriter, r *http.Request) {
	run, ok := a.loadRun(w, r)
	if !ok {
		return
	}
	// Generation outlives the originating request, so it gets a fresh context.
	if err := run.Start(context.Background()); err != nil {
		a.runError(w, err)
		return
	}
	a.json(w, http.StatusAccepted, run.Progress())
}

func (a *App) LocalizationProgress(w http.ResponseWriter, r *http.Request) {
	run, ok := a.loadRun(w, r)
	if !ok {
		return
	}
	a.json(w, http.StatusOK, run.Progress())
}

func (a *App) LocalizationSkip(w http.ResponseWriter, r *http.Request) {
	run, ok := a.loadRun(w, r)
	if !ok {
		return
	}
	if err := run.Skip(); err != nil {
		a.runError(w, err)
		return
	}
	a.json(w, http.StatusOK, run.Progress())
}

func (a *App) LocalizationRetry(w http.ResponseWriter, r *http.Request) {
	run, ok := a.loadRun(w, r)
	if !ok {
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "index must be an integer")
		return
	}
	if err := run.Retry(index); err != nil {
		a.runError(w, err)
		return
	}
	a.json(w, http.StatusAccepted, run.Progress())
}

func (a *App) LocalizationAdvance(w http.ResponseWriter, r *http.Request) {
	run, ok := a.loadRun(w, r)
	if !ok {
		return
	}
	if err := run.Advance(); err != nil {
		a.runError(w, err)
		return
	}
	a.json(w, http.StatusOK, run.Progress())
}

// LocalizationResult assembles the final document and manifest. The first
// successful call also persists the outcome.
func (a *App) LocalizationResult(w http.ResponseWriter, r *http.Request) {
	run, ok := a.loadRun(w, r)
	if !ok {
		return
	}
	result, err := run.Assemble()
	if err != nil {
		a.runError(w, err)
		return
	}
	a.recordRunFinished(r.Context(), run, result)
	a.json(w, http.StatusOK, result)
}

// LocalizationBundle streams a zip archive with the final document and its
// manifest.
func (a *App) LocalizationBundle(w http.ResponseWriter, r *http.Request) {
	run, ok := a.loadRun(w, r)
	if !ok {
		return
	}
	result, err := run.Assemble()
	if err != nil {
		a.runError(w, err)
		return
	}
	a.recordRunFinished(r.Context(), run, result)
	manifest, err := json.MarshalIndent(result.Manifest, "", "  ")
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to encode manifest")
		return
	}
	archive := zip.ArchiveAssets([]zip.Asset{
		{Filename: "index.html", MIME: "text/html", Data: []byte(result.FinalDocument)},
		{Filename: "manifest.json", MIME: "application/json", Data: manifest},
	})
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=site-%s.zip", run.ID))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive)
}

func (a *App) loadRun(w http.ResponseWriter, r *http.Request) (*pipeline.Run, bool) {
	id := strings.TrimSpace(chi.URLParam(r, "run_id"))
	if id == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "run_id required")
		return nil, false
	}
	run, err := a.Runs.Get(id)
	if err != nil {
		a.error(w, http.StatusNotFound, "not_found", "run not found")
		return nil, false
	}
	return run, true
}

func (a *App) runError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", "no asset at that position")
	case errors.Is(err, domain.ErrAlreadyStarted):
		a.error(w, http.StatusConflict, "already_started", "run already started")
	case errors.Is(err, domain.ErrNoAssets):
		a.error(w, http.StatusUnprocessableEntity, "no_assets", "document has no replaceable assets")
	case errors.Is(err, domain.ErrInvalidTransition):
		a.error(w, http.StatusConflict, "invalid_transition", "asset is not in a state that allows this operation")
	case errors.Is(err, domain.ErrRunNotFinished):
		a.error(w, http.StatusConflict, "run_not_finished", "run still has unprocessed assets")
	default:
		a.error(w, http.StatusInternalServerError, "internal", "operation failed")
	}
}

// recordRunCreated persists the new run and its source document. Persistence
// is best-effort: the in-memory run keeps working when the database or store
// is unavailable.
func (a *App) recordRunCreated(ctx context.Context, run *pipeline.Run, locale, document string) {
	if a.Store != nil {
		key := fmt.Sprintf("sites/%s/source.html", run.ID)
		if _, err := a.Store.Write(ctx, key, []byte(document)); err != nil {
			a.Logger.Warn().Err(err).Str("run_id", run.ID).Msg("failed to store source document")
		}
	}
	if a.SQL == nil {
		return
	}
	business := run.Business()
	progress := run.Progress()
	row := a.SQL.QueryRow(ctx, sqlinline.QInsertLocalizationRun,
		run.ID, business.Name, business.Industry, business.Location, locale, progress.Total, document)
	var id string
	if err := row.Scan(&id); err != nil {
		a.Logger.Warn().Err(err).Str("run_id", run.ID).Msg("failed to persist run")
	}
}

// recordRunFinished stores the final document and writes the run outcome and
// manifest rows exactly once per run.
func (a *App) recordRunFinished(ctx context.Context, run *pipeline.Run, result *domain.LocalizationResult) {
	if _, already := a.persisted.LoadOrStore(run.ID, struct{}{}); already {
		return
	}
	if a.Store != nil {
		key := fmt.Sprintf("sites/%s/index.html", run.ID)
		if _, err := a.Store.Write(ctx, key, []byte(result.FinalDocument)); err != nil {
			a.Logger.Warn().Err(err).Str("run_id", run.ID).Msg("failed to store final document")
		}
	}
	if a.SQL == nil {
		return
	}
	progress := run.Progress()
	status := "COMPLETED"
	if progress.Errored > 0 {
		status = "COMPLETED_WITH_ERRORS"
	}
	if _, err := a.SQL.Exec(ctx, sqlinline.QFinishLocalizationRun,
		run.ID, status, progress.Completed, progress.Errored, progress.Skipped, result.FinalDocument); err != nil {
		a.Logger.Warn().Err(err).Str("run_id", run.ID).Msg("failed to finish run record")
	}
	for i, entry := range result.Manifest {
		if _, err := a.SQL.Exec(ctx, sqlinline.QInsertManifestEntry,
			run.ID, i, entry.OriginalReference, entry.GeneratedReference, entry.DescriptiveText, entry.Section, entry.Prompt); err != nil {
			a.Logger.Warn().Err(err).Str("run_id", run.ID).Int("position", i).Msg("failed to persist manifest entry")
		}
	}
}
