package middleware

import (
	"net/http"

	"github.com/fitstack/gymgate/internal/httputil"
	"github.com/fitstack/gymgate/pkg/gate"
)

// GateConfig wires the access gate into the middleware chain.
type GateConfig struct {
	Gate   *gate.Gate
	Cookie httputil.CookieConfig
}

// Gate evaluates every page navigation against the access gate. API,
// asset, and operational paths bypass it; everything else is either
// passed through or answered with a 303 redirect, optionally setting a
// short-lived status-flag cookie the destination page can read.
func Gate(cfg GateConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if gate.SkipGate(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			decision := cfg.Gate.Evaluate(w, r)
			if decision.Allow {
				next.ServeHTTP(w, r)
				return
			}

			if decision.Flag != gate.FlagNone {
				httputil.SetStatusFlag(w, string(decision.Flag), cfg.Cookie)
			}
			// 303 forces the retry to be a GET even after a POST.
			http.Redirect(w, r, decision.Location, http.StatusSeeOther)
		})
	}
}
