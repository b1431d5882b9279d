package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"

	"github.com/fitstack/gymgate/internal/httputil"
)

// Fingerprint derives a cheap proxy for the request's auth state from
// the raw identity cookie values. It is only a cache-key component, not
// an identity: two requests with the same cookies always fingerprint the
// same, and any cookie change (rotation, logout, login) changes it.
func Fingerprint(r *http.Request, codec httputil.CookieCodec) string {
	access, _ := httputil.GetAccessTokenFromCookie(r, codec)
	refresh, _ := httputil.GetRefreshTokenFromCookie(r, codec)
	if access == "" && refresh == "" {
		return "anon"
	}

	h := sha256.New()
	h.Write([]byte(access))
	h.Write([]byte{'|'})
	h.Write([]byte(refresh))
	return hex.EncodeToString(h.Sum(nil))[:16]
}
