// Package gymgate provides the access-control and tenant-routing gate
// for multi-tenant gym applications: every page navigation is resolved
// against session, tenant, and subscription state and either allowed
// through or answered with a redirect.
//
// Setup:
//
//  1. Run migrations from migrations/ folder using your preferred tool
//  2. Create a Gate instance and wrap your page routes
//
// Basic usage:
//
//	db, _ := sql.Open("postgres", "postgres://localhost/myapp?sslmode=disable")
//
//	gg, err := gymgate.New(gymgate.Config{
//	    DB:          db,
//	    JWTSecret:   "your-secret-key-at-least-32-chars",
//	    Environment: "prod",
//	})
//	if err != nil {
//	    log.Fatal(err) // Will fail if migrations haven't been run
//	}
//
//	r := chi.NewRouter()
//	r.Group(func(r chi.Router) {
//	    r.Use(gg.Middleware())
//	    r.Handle("/*", pageHandler)
//	})
//	http.ListenAndServe(":8080", r)
package gymgate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/fitstack/gymgate/internal/config"
	"github.com/fitstack/gymgate/internal/http/features/session"
	"github.com/fitstack/gymgate/internal/http/middleware"
	"github.com/fitstack/gymgate/internal/httputil"
	"github.com/fitstack/gymgate/pkg/auth"
	"github.com/fitstack/gymgate/pkg/billing"
	"github.com/fitstack/gymgate/pkg/domain"
	"github.com/fitstack/gymgate/pkg/gate"
	"github.com/fitstack/gymgate/pkg/repository"
	"github.com/fitstack/gymgate/pkg/tenant"
)

// Config holds the configuration for the gate library.
type Config struct {
	// DB is the database connection (required).
	DB *sql.DB

	// JWTSecret is the secret key for validating access tokens
	// (required, min 32 chars).
	JWTSecret string

	// JWTIssuer is the issuer claim in access tokens (default: "gymgate").
	JWTIssuer string

	// Environment namespaces the identity cookies: "dev", "staging" or
	// "prod" (default: "dev").
	Environment string

	// AccessTokenTTL is the lifetime of access tokens (default: 15 minutes).
	AccessTokenTTL time.Duration

	// RefreshTokenTTL is the lifetime of refresh tokens (default: 7 days).
	RefreshTokenTTL time.Duration

	// CookieDomain scopes the identity cookies (optional).
	CookieDomain string

	// CookieSecure sets the Secure flag on cookies (required for HTTPS).
	CookieSecure bool

	// BillingBaseURL enables the subscription check (optional). Without
	// it every gym is treated as subscribed.
	BillingBaseURL string

	// BillingTimeout bounds one billing round-trip (default: 2 seconds).
	BillingTimeout time.Duration

	// CacheTTL bounds decision staleness (default: 30 seconds).
	CacheTTL time.Duration

	// CacheCapacity bounds decision cache size (default: 4096 entries).
	CacheCapacity int

	// BackendTimeout bounds session and profile lookups (default: 3 seconds).
	BackendTimeout time.Duration

	// Metrics receives the gate's Prometheus collectors
	// (default: prometheus.DefaultRegisterer).
	Metrics prometheus.Registerer

	// Logger is the structured logger (default: JSON to stdout).
	Logger *slog.Logger
}

// Gymgate is the main gate instance.
type Gymgate struct {
	config         Config
	db             *sql.DB
	cookieConfig   httputil.CookieConfig
	usersRepo      *repository.UsersRepository
	sessionsRepo   *repository.SessionsRepository
	profilesRepo   *repository.ProfilesRepository
	sessionService *auth.SessionService
	gate           *gate.Gate
}

// New creates a gate instance with the given configuration.
// Returns an error if required database tables don't exist.
// Run migrations first - see migrations/ folder for SQL files.
func New(cfg Config) (*Gymgate, error) {
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	env, err := config.ParseEnvironment(cfg.Environment)
	if err != nil {
		return nil, fmt.Errorf("gymgate: %w", err)
	}

	if err := validateSchema(cfg.DB); err != nil {
		return nil, err
	}

	usersRepo := repository.NewUsersRepository(cfg.DB)
	sessionsRepo := repository.NewSessionsRepository(cfg.DB)
	profilesRepo := repository.NewProfilesRepository(cfg.DB)

	sessionService := auth.NewSessionService(auth.SessionConfig{
		AccessTokenTTL:  cfg.AccessTokenTTL,
		RefreshTokenTTL: cfg.RefreshTokenTTL,
		JWTSecret:       []byte(cfg.JWTSecret),
		Issuer:          cfg.JWTIssuer,
	}, sessionsRepo, usersRepo)

	cookieConfig := httputil.DefaultCookieConfig(env, cfg.CookieDomain, cfg.CookieSecure)

	resolver := auth.NewResolver(sessionService, cookieConfig, cfg.BackendTimeout, cfg.Logger)
	loader := tenant.NewLoader(profilesRepo, cfg.BackendTimeout, cfg.Logger)

	var oracle gate.SubscriptionOracle
	if cfg.BillingBaseURL != "" {
		oracle = billing.NewOracle(cfg.BillingBaseURL, cfg.BillingTimeout, cfg.Logger)
	}

	g := gate.New(gate.Config{
		Resolver: resolver,
		Loader:   loader,
		Oracle:   oracle,
		Cache:    gate.NewDecisionCache(cfg.CacheTTL, cfg.CacheCapacity),
		Codec:    cookieConfig.Codec,
		Logger:   cfg.Logger,
		Metrics:  gate.NewMetrics(cfg.Metrics),
	})

	return &Gymgate{
		config:         cfg,
		db:             cfg.DB,
		cookieConfig:   cookieConfig,
		usersRepo:      usersRepo,
		sessionsRepo:   sessionsRepo,
		profilesRepo:   profilesRepo,
		sessionService: sessionService,
		gate:           g,
	}, nil
}

// Middleware returns the gate middleware. Wrap your page routes with it:
//
//	r.Group(func(r chi.Router) {
//	    r.Use(gg.Middleware())
//	    r.Handle("/*", pageHandler)
//	})
func (g *Gymgate) Middleware() func(http.Handler) http.Handler {
	return middleware.Gate(middleware.GateConfig{
		Gate:   g.gate,
		Cookie: g.cookieConfig,
	})
}

// SessionRouter returns a chi router with the session API.
// Mount it outside the gated subtree:
//
//	r.Mount("/api/v1/auth", gg.SessionRouter())
//
// Routes:
//
//	POST /refresh     - Exchange the refresh cookie for fresh cookies
//	POST /logout      - Revoke the current session
//	POST /logout/all  - Revoke every session of the current user
func (g *Gymgate) SessionRouter() chi.Router {
	r := chi.NewRouter()

	handler := session.NewHandler(g.sessionService, g.cookieConfig)
	r.Post("/refresh", handler.Refresh)
	r.Post("/logout", handler.Logout)
	r.Post("/logout/all", handler.LogoutAll)

	return r
}

// Gate returns the underlying gate for advanced usage.
func (g *Gymgate) Gate() *gate.Gate {
	return g.gate
}

// Gym retrieves a gym record, for rendering tenant branding outside
// the gated subtree. Returns domain.ErrProfileNotFound when the gym
// does not exist or is deleted.
func (g *Gymgate) Gym(ctx context.Context, id uuid.UUID) (*domain.Gym, error) {
	return g.profilesRepo.GetGymByID(ctx, id)
}

// SessionService returns the session service for advanced usage.
func (g *Gymgate) SessionService() *auth.SessionService {
	return g.sessionService
}

// CookieConfig returns the cookie configuration shared by every reader
// and writer of identity cookies.
func (g *Gymgate) CookieConfig() httputil.CookieConfig {
	return g.cookieConfig
}

// HealthHandler returns a simple health check handler.
func (g *Gymgate) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func validateConfig(cfg *Config) error {
	if cfg.DB == nil {
		return errors.New("gymgate: DB is required")
	}
	if cfg.JWTSecret == "" {
		return errors.New("gymgate: JWTSecret is required")
	}
	if len(cfg.JWTSecret) < 32 {
		return errors.New("gymgate: JWTSecret must be at least 32 characters")
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.JWTIssuer == "" {
		cfg.JWTIssuer = "gymgate"
	}
	if cfg.Environment == "" {
		cfg.Environment = string(config.EnvDev)
	}
	if cfg.AccessTokenTTL == 0 {
		cfg.AccessTokenTTL = 15 * time.Minute
	}
	if cfg.RefreshTokenTTL == 0 {
		cfg.RefreshTokenTTL = 7 * 24 * time.Hour
	}
	if cfg.BillingTimeout == 0 {
		cfg.BillingTimeout = 2 * time.Second
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 30 * time.Second
	}
	if cfg.CacheCapacity == 0 {
		cfg.CacheCapacity = 4096
	}
	if cfg.BackendTimeout == 0 {
		cfg.BackendTimeout = 3 * time.Second
	}
	if cfg.Metrics == nil {
		cfg.Metrics = prometheus.DefaultRegisterer
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}
}

// validateSchema checks that required database tables exist.
func validateSchema(db *sql.DB) error {
	requiredTables := []string{"users", "sessions", "gym_members", "role_assignments"}

	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = 'public' AND table_name = $1
	`

	for _, table := range requiredTables {
		var name string
		err := db.QueryRow(query, table).Scan(&name)
		if err == sql.ErrNoRows {
			return fmt.Errorf("gymgate: missing table '%s' - run migrations first (see migrations/ folder)", table)
		}
		if err != nil {
			return fmt.Errorf("gymgate: failed to check schema: %w", err)
		}
	}

	return nil
}
