package handlers

import (
	"net/http"

	"github.com/CodeMasters-AiFactory/Stargate-sub006/internal/sqlinline"
)

func (a *App) StatsSummary(w http.ResponseWriter, r *http.Request) {
	if a.SQL == nil {
		a.error(w, http.StatusServiceUnavailable, "unavailable", "stats require a database")
		return
	}
	row := a.SQL.QueryRow(r.Context(), sqlinline.QLocalizationStats)
	var totalRuns, completedRuns, runningRuns, assetsGenerated, assetsErrored, assetsSkipped, runs24 int64
	if err := row.Scan(&totalRuns, &completedRuns, &runningRuns, &assetsGenerated, &assetsErrored, &assetsSkipped, &runs24); err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to load stats")
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"total_runs":       totalRuns,
		"completed_runs":   completedRuns,
		"running_runs":     runningRuns,
		"assets_generated": assetsGenerated,
		"assets_errored":   assetsErrored,
		"assets_skipped":   assetsSkipped,
		"runs_last_24h":    runs24,
	})
}
