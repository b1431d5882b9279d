package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fitstack/gymgate/internal/config"
	"github.com/fitstack/gymgate/internal/http/features/session"
	"github.com/fitstack/gymgate/internal/http/middleware"
	"github.com/fitstack/gymgate/internal/httputil"
	"github.com/fitstack/gymgate/pkg/auth"
	"github.com/fitstack/gymgate/pkg/gate"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Logger          *slog.Logger
	Gate            *gate.Gate
	SessionService  *auth.SessionService
	CookieConfig    httputil.CookieConfig
	RateLimit       config.RateLimitConfig
	SecurityHeaders config.SecurityHeadersConfig
	Metrics         prometheus.Gatherer

	// Pages serves every navigation the gate allows through. The
	// application mounts its page renderer here.
	Pages http.Handler
}

// NewRouter creates the HTTP router. Operational endpoints and the
// session API sit outside the gate; everything else is a page
// navigation and goes through it.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recover(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))
	r.Use(middleware.SecurityHeaders(cfg.SecurityHeaders))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	gatherer := cfg.Metrics
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	sessionHandler := session.NewHandler(cfg.SessionService, cfg.CookieConfig)
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthRateLimit(cfg.RateLimit, cfg.Logger))
		r.Post("/api/v1/auth/refresh", sessionHandler.Refresh)
		r.Post("/api/v1/auth/logout", sessionHandler.Logout)
		r.Post("/api/v1/auth/logout/all", sessionHandler.LogoutAll)
	})

	pages := cfg.Pages
	if pages == nil {
		// Placeholder so the gate is exercisable before the page
		// renderer is mounted.
		pages = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
	}
	r.Group(func(r chi.Router) {
		r.Use(middleware.Gate(middleware.GateConfig{
			Gate:   cfg.Gate,
			Cookie: cfg.CookieConfig,
		}))
		r.Handle("/*", pages)
		r.Handle("/", pages)
	})

	return r
}
