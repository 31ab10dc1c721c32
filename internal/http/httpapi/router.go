package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"viralstudio/internal/http/handlers"
	"viralstudio/internal/infra"
	"viralstudio/internal/middleware"
)

func NewRouter(app *handlers.App, cfg *infra.Config) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimiddleware.RealIP,
		chimiddleware.Recoverer,
		middleware.Logger(app.Logger),
		middleware.CORS(cfg.AllowedOrigins),
		middleware.I18N("en"),
	)

	r.Get("/v1/healthz", app.Health)
	r.Method(http.MethodGet, "/v1/metrics", app.Metrics.Handler())

	r.Get("/v1/wallet", app.Wallet)
	r.Get("/v1/status", app.Status)
	r.Post("/v1/reset", app.Reset)

	r.Get("/v1/pricing", app.Pricing)
	r.Post("/v1/pricing/{plan_id}/purchase", app.Purchase)

	// Generation is the expensive path; throttle it per client IP.
	r.Group(func(r chi.Router) {
		r.Use(httprate.Limit(
			cfg.RateLimitPerMin,
			time.Minute,
			httprate.WithKeyFuncs(httprate.KeyByIP),
		))
		r.Post("/v1/generate", app.Generate)
	})

	return r
}
