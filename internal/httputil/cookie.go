package httputil

import (
	"net/http"
	"strings"
	"time"

	"github.com/fitstack/gymgate/internal/config"
)

// Canonical identity cookie names. On the wire every one of them is
// namespaced by the deploy environment through CookieCodec, so sessions
// from dev, staging, and prod never collide on a shared domain.
const (
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"
	StatusFlagCookie   = "gate_status"
)

// StatusFlagTTL bounds the one-time status flag to a single navigation.
const StatusFlagTTL = 8 * time.Second

// CookieCodec translates between canonical cookie names and their
// environment-namespaced on-the-wire form. It must be the single name
// authority for every reader and writer of identity cookies; a second
// implementation that drifts silently produces "always unauthenticated".
type CookieCodec struct {
	prefix string
}

// NewCookieCodec creates a codec for the given environment.
func NewCookieCodec(env config.Environment) CookieCodec {
	return CookieCodec{prefix: env.CookiePrefix()}
}

// Name returns the on-the-wire cookie name for a canonical name.
func (c CookieCodec) Name(canonical string) string {
	return c.prefix + "-" + canonical
}

// Canonical returns the canonical name for an on-the-wire cookie name,
// and false when the name belongs to a different environment.
func (c CookieCodec) Canonical(envName string) (string, bool) {
	name, ok := strings.CutPrefix(envName, c.prefix+"-")
	if !ok {
		return "", false
	}
	return name, true
}

// CookieConfig holds cookie write configuration.
type CookieConfig struct {
	Codec    CookieCodec
	Domain   string
	Path     string
	Secure   bool
	SameSite http.SameSite
}

// DefaultCookieConfig returns cookie configuration for the environment.
func DefaultCookieConfig(env config.Environment, domain string, secure bool) CookieConfig {
	return CookieConfig{
		Codec:    NewCookieCodec(env),
		Domain:   domain,
		Path:     "/",
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// SetAuthCookies sets HttpOnly cookies for access and refresh tokens
// under their environment-namespaced names.
func SetAuthCookies(w http.ResponseWriter, accessToken, refreshToken string, accessTTL, refreshTTL time.Duration, cfg CookieConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.Codec.Name(AccessTokenCookie),
		Value:    accessToken,
		Path:     cfg.Path,
		Domain:   cfg.Domain,
		MaxAge:   int(accessTTL.Seconds()),
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: cfg.SameSite,
	})

	http.SetCookie(w, &http.Cookie{
		Name:     cfg.Codec.Name(RefreshTokenCookie),
		Value:    refreshToken,
		Path:     cfg.Path,
		Domain:   cfg.Domain,
		MaxAge:   int(refreshTTL.Seconds()),
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: cfg.SameSite,
	})
}

// ClearAuthCookies clears the environment's auth cookies.
func ClearAuthCookies(w http.ResponseWriter, cfg CookieConfig) {
	for _, name := range []string{AccessTokenCookie, RefreshTokenCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     cfg.Codec.Name(name),
			Value:    "",
			Path:     cfg.Path,
			Domain:   cfg.Domain,
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   cfg.Secure,
			SameSite: cfg.SameSite,
		})
	}
}

// GetAccessTokenFromCookie extracts the access token from its
// environment-namespaced cookie.
func GetAccessTokenFromCookie(r *http.Request, codec CookieCodec) (string, bool) {
	return cookieValue(r, codec.Name(AccessTokenCookie))
}

// GetRefreshTokenFromCookie extracts the refresh token from its
// environment-namespaced cookie.
func GetRefreshTokenFromCookie(r *http.Request, codec CookieCodec) (string, bool) {
	return cookieValue(r, codec.Name(RefreshTokenCookie))
}

// SetStatusFlag sets the short-lived, page-readable status flag cookie.
// The flag carries a one-time signal (trial_expired, no_gym,
// portal_access_denied) for the destination page to render a toast; it is
// deliberately not HttpOnly.
func SetStatusFlag(w http.ResponseWriter, flag string, cfg CookieConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.Codec.Name(StatusFlagCookie),
		Value:    flag,
		Path:     cfg.Path,
		Domain:   cfg.Domain,
		MaxAge:   int(StatusFlagTTL.Seconds()),
		HttpOnly: false,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func cookieValue(r *http.Request, name string) (string, bool) {
	cookie, err := r.Cookie(name)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}
