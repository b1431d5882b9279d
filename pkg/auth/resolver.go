package auth

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/fitstack/gymgate/internal/httputil"
	"github.com/fitstack/gymgate/pkg/domain"
)

// SessionBackend is the identity backend the resolver exchanges cookies
// with. *SessionService satisfies it.
type SessionBackend interface {
	ValidateAccessToken(tokenString string) (*AccessTokenClaims, error)
	RefreshSession(ctx context.Context, refreshToken string) (*domain.TokenPair, error)
	AccessTokenTTL() time.Duration
	RefreshTokenTTL() time.Duration
}

// Resolver exchanges the request's identity cookies for a Session.
//
// Authentication fails closed: an expired token, a backend error, or a
// timeout all resolve to the anonymous session. The one side effect is
// cookie rotation. When the access token is gone but the refresh token
// still holds, the resolver refreshes and rewrites both cookies on the
// response through the shared cookie codec.
type Resolver struct {
	backend SessionBackend
	cookies httputil.CookieConfig
	timeout time.Duration
	logger  *slog.Logger
}

// NewResolver creates a session resolver.
func NewResolver(backend SessionBackend, cookies httputil.CookieConfig, timeout time.Duration, logger *slog.Logger) *Resolver {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Resolver{
		backend: backend,
		cookies: cookies,
		timeout: timeout,
		logger:  logger,
	}
}

// Resolve derives the request's session. It never returns an error;
// every failure mode is the anonymous session.
func (r *Resolver) Resolve(w http.ResponseWriter, req *http.Request) domain.Session {
	if token, ok := httputil.GetAccessTokenFromCookie(req, r.cookies.Codec); ok {
		if session, ok := r.sessionFromToken(token); ok {
			return session
		}
	}

	// Access token absent or stale: one backend round-trip to rotate.
	refreshToken, ok := httputil.GetRefreshTokenFromCookie(req, r.cookies.Codec)
	if !ok {
		return domain.Anonymous
	}

	ctx, cancel := context.WithTimeout(req.Context(), r.timeout)
	defer cancel()

	tokens, err := r.backend.RefreshSession(ctx, refreshToken)
	if err != nil {
		r.logger.Debug("session refresh failed, treating as unauthenticated",
			"path", req.URL.Path,
			"error", err,
		)
		return domain.Anonymous
	}

	session, ok := r.sessionFromToken(tokens.AccessToken)
	if !ok {
		return domain.Anonymous
	}

	// Rewrite of rotated cookies must go through the codec, same as
	// every other writer.
	httputil.SetAuthCookies(w,
		tokens.AccessToken, tokens.RefreshToken,
		r.backend.AccessTokenTTL(), r.backend.RefreshTokenTTL(),
		r.cookies,
	)

	return session
}

func (r *Resolver) sessionFromToken(token string) (domain.Session, bool) {
	claims, err := r.backend.ValidateAccessToken(token)
	if err != nil {
		return domain.Anonymous, false
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return domain.Anonymous, false
	}
	return domain.Session{
		UserID:        userID,
		Email:         claims.Email,
		Authenticated: true,
	}, true
}
