package session

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/fitstack/gymgate/internal/httputil"
	"github.com/fitstack/gymgate/pkg/auth"
	"github.com/fitstack/gymgate/pkg/domain"
)

// Handler handles the cookie-based session endpoints. The gate's
// resolver rotates access tokens transparently on page loads; these
// endpoints exist for explicit refreshes and for logout.
type Handler struct {
	sessionService *auth.SessionService
	cookieConfig   httputil.CookieConfig
}

// NewHandler creates a new session handler.
func NewHandler(sessionService *auth.SessionService, cookieConfig httputil.CookieConfig) *Handler {
	return &Handler{
		sessionService: sessionService,
		cookieConfig:   cookieConfig,
	}
}

// TokenResponse represents a token response.
type TokenResponse struct {
	TokenType string `json:"token_type"`
	ExpiresIn int    `json:"expires_in"`
}

// Refresh exchanges the refresh cookie for fresh auth cookies.
// POST /api/v1/auth/refresh
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	refreshToken, ok := httputil.GetRefreshTokenFromCookie(r, h.cookieConfig.Codec)
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "refresh token not found")
		return
	}

	tokens, err := h.sessionService.RefreshSession(r.Context(), refreshToken)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) ||
			errors.Is(err, domain.ErrSessionExpired) ||
			errors.Is(err, domain.ErrSessionRevoked) {
			httputil.ClearAuthCookies(w, h.cookieConfig)
			httputil.Error(w, http.StatusUnauthorized, "invalid or expired refresh token")
			return
		}
		httputil.Error(w, http.StatusInternalServerError, "failed to refresh token")
		return
	}

	httputil.SetAuthCookies(
		w,
		tokens.AccessToken,
		tokens.RefreshToken,
		h.sessionService.AccessTokenTTL(),
		h.sessionService.RefreshTokenTTL(),
		h.cookieConfig,
	)
	httputil.JSON(w, http.StatusOK, TokenResponse{
		TokenType: tokens.TokenType,
		ExpiresIn: tokens.ExpiresIn,
	})
}

// Logout revokes the current session and clears auth cookies.
// POST /api/v1/auth/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if refreshToken, ok := httputil.GetRefreshTokenFromCookie(r, h.cookieConfig.Codec); ok {
		// Ignore errors to prevent token enumeration
		_ = h.sessionService.RevokeSession(r.Context(), refreshToken)
	}

	httputil.ClearAuthCookies(w, h.cookieConfig)
	w.WriteHeader(http.StatusNoContent)
}

// LogoutAll revokes every session of the current user.
// POST /api/v1/auth/logout/all
func (h *Handler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(r)
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.sessionService.RevokeAllSessions(r.Context(), userID); err != nil {
		httputil.Error(w, http.StatusInternalServerError, "failed to logout all sessions")
		return
	}

	httputil.ClearAuthCookies(w, h.cookieConfig)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) currentUser(r *http.Request) (uuid.UUID, bool) {
	accessToken, ok := httputil.GetAccessTokenFromCookie(r, h.cookieConfig.Codec)
	if !ok {
		return uuid.Nil, false
	}
	claims, err := h.sessionService.ValidateAccessToken(accessToken)
	if err != nil {
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, false
	}
	return userID, true
}
