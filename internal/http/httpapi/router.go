package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/CodeMasters-AiFactory/Stargate-sub006/internal/http/handlers"
	"github.com/CodeMasters-AiFactory/Stargate-sub006/internal/middleware"
)

// NewRouter assembles the v1 API. The country lookup is optional; without it
// locale detection relies on headers and the configured default.
func NewRouter(app *handlers.App, lookup middleware.CountryLookup) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(app.Logger),
		middleware.CORS(app.Config.AllowedOrigins),
		middleware.I18N(app.Config.DefaultLocale, lookup),
	)
	if app.Config.RateLimitPerMin > 0 {
		r.Use(middleware.RateLimit(app.Config.RateLimitPerMin, time.Minute))
	}

	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/stats", app.StatsSummary)

	r.Route("/v1/localizations", func(r chi.Router) {
		r.Post("/", app.LocalizationsCreate)
		r.Route("/{run_id}", func(r chi.Router) {
			r.Get("/", app.LocalizationProgress)
			r.Post("/start", app.LocalizationStart)
			r.Post("/skip", app.LocalizationSkip)
			r.Post("/advance", app.LocalizationAdvance)
			r.Post("/retry/{index}", app.LocalizationRetry)
			r.Get("/result", app.LocalizationResult)
			r.Get("/bundle", app.LocalizationBundle)
		})
	})

	return r
}
