package app

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/cepadmin/cepadmin/internal/observability"
	"github.com/cepadmin/cepadmin/internal/rbac"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	RolesHandler   *rbac.Handler
	AuthMiddleware func(http.Handler) http.Handler
	// LimitCounter shares the rate limit across replicas; nil keeps it in memory.
	LimitCounter httprate.LimitCounter
	Metrics      *observability.Metrics
}

// NewRouter constructs the chi.Router with service defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	requests, window := defaultRateRequests, defaultRateWindow
	var origins []string
	if params.Config != nil {
		if params.Config.RateLimitRequests > 0 && params.Config.RateLimitWindow > 0 {
			requests, window = params.Config.RateLimitRequests, params.Config.RateLimitWindow
		}
		origins = params.Config.CORSAllowedOrigins
	}

	r.Route("/v1", func(r chi.Router) {
		if c := CORS(origins); c != nil {
			r.Use(c)
		}
		if params.AuthMiddleware != nil {
			r.Use(params.AuthMiddleware)
		}
		r.Use(RateLimit(requests, window, params.LimitCounter))
		if params.RolesHandler != nil {
			params.RolesHandler.MountRoutes(r)
		}
	})

	return r
}

const (
	defaultRateRequests = 60
	defaultRateWindow   = time.Minute
)
