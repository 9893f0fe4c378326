package handlers

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/CodeMasters-AiFactory/Stargate-sub006/internal/infra"
	"github.com/CodeMasters-AiFactory/Stargate-sub006/internal/pipeline"
	"github.com/CodeMasters-AiFactory/Stargate-sub006/internal/providers/assetgen"
	"github.com/CodeMasters-AiFactory/Stargate-sub006/internal/storage"
)

// App bundles the collaborators the HTTP handlers need. SQL and Store may be
// nil in minimal deployments; handlers degrade to in-memory behavior then.
type App struct {
	Config    *infra.Config
	Logger    infra.Logger
	SQL       infra.SQLExecutor
	Runs      *pipeline.Manager
	Store     *storage.FileStore
	Generator assetgen.Generator

	// persisted tracks run IDs whose final state was already written to the
	// database, so repeated result downloads do not duplicate manifest rows.
	persisted sync.Map
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, map[string]any{
		"error": map[string]string{"code": code, "message": message},
	})
}
