// Package gate implements the request-time access-control and tenant
// routing gate: it combines session state, tenant state, subscription
// state, the route category, and any pending invitation into a single
// allow-or-redirect decision for every page navigation.
package gate

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/fitstack/gymgate/internal/httputil"
	"github.com/fitstack/gymgate/pkg/auth"
	"github.com/fitstack/gymgate/pkg/domain"
)

// InviteParam is the query parameter carrying the invitation token.
const InviteParam = "invite"

// SessionResolver derives the request's session from cookies, rewriting
// rotated cookies on the response as a side effect.
type SessionResolver interface {
	Resolve(w http.ResponseWriter, r *http.Request) domain.Session
}

// TenantLoader reduces a user id to their effective tenant state.
type TenantLoader interface {
	Load(ctx context.Context, userID uuid.UUID) domain.EffectiveTenantState
}

// SubscriptionOracle answers the boolean subscription-access check.
type SubscriptionOracle interface {
	HasAccess(ctx context.Context, userID uuid.UUID) bool
}

// Gate owns the decision pipeline. One Gate serves all requests
// concurrently; the decision cache is its only shared mutable state.
type Gate struct {
	resolver SessionResolver
	loader   TenantLoader
	oracle   SubscriptionOracle // nil when billing is not configured
	cache    *DecisionCache
	codec    httputil.CookieCodec
	logger   *slog.Logger
	metrics  *Metrics
}

// Config wires a Gate's collaborators.
type Config struct {
	Resolver SessionResolver
	Loader   TenantLoader
	Oracle   SubscriptionOracle
	Cache    *DecisionCache
	Codec    httputil.CookieCodec
	Logger   *slog.Logger
	Metrics  *Metrics
}

// New creates a Gate.
func New(cfg Config) *Gate {
	return &Gate{
		resolver: cfg.Resolver,
		loader:   cfg.Loader,
		oracle:   cfg.Oracle,
		cache:    cfg.Cache,
		codec:    cfg.Codec,
		logger:   cfg.Logger,
		metrics:  cfg.Metrics,
	}
}

// Evaluate produces the decision for one page navigation. It consults
// the decision cache first; on a miss it resolves the session, loads the
// tenant state for authenticated users, and walks the rule table.
//
// A panic anywhere in the pipeline is recovered into an allow: the gate
// failing must degrade to an open site, not a dead one.
func (g *Gate) Evaluate(w http.ResponseWriter, r *http.Request) (decision Decision) {
	path := r.URL.Path
	invite := r.URL.Query().Get(InviteParam)

	key := CacheKey{
		Path:        path,
		Fingerprint: auth.Fingerprint(r, g.codec),
		Invite:      invite,
	}

	if cached, ok := g.cache.Get(key); ok {
		g.metrics.CacheHits.Inc()
		return cached
	}
	g.metrics.CacheMiss.Inc()

	defer func() {
		if rec := recover(); rec != nil {
			g.metrics.PipePanics.Inc()
			g.logger.Error("gate pipeline panic, allowing request",
				"path", path,
				"panic", rec,
			)
			decision = allow
		}
	}()

	session := g.resolver.Resolve(w, r)

	var state domain.EffectiveTenantState
	if session.Authenticated {
		state = g.loader.Load(r.Context(), session.UserID)
	}

	in := Input{
		Session:  session,
		Tenant:   state,
		Category: Classify(path),
		Path:     path,
		Invite:   invite,
	}
	if g.oracle != nil {
		in.HasSubscription = func(ctx context.Context) bool {
			return g.oracle.HasAccess(ctx, session.UserID)
		}
	}

	decision, ruleName := Decide(r.Context(), in)

	outcome := "allow"
	if !decision.Allow {
		outcome = "redirect"
		g.logger.Info("gate redirect",
			"path", path,
			"authenticated", session.Authenticated,
			"rule", ruleName,
			"location", decision.Location,
		)
	}
	g.metrics.Decisions.WithLabelValues(outcome, ruleName).Inc()

	g.cache.Set(key, decision)
	return decision
}
