package gate

import "strings"

// RouteCategory buckets a page navigation for the decision engine.
type RouteCategory string

const (
	RouteAuth       RouteCategory = "auth"
	RouteApp        RouteCategory = "app"
	RouteOnboarding RouteCategory = "onboarding"
	RoutePortal     RouteCategory = "portal"
	RoutePublic     RouteCategory = "public"
	RouteInvite     RouteCategory = "invite"
	RouteSpecial    RouteCategory = "special"
	RouteRoot       RouteCategory = "root"
)

// Canonical navigation targets the engine redirects to.
const (
	PathLogin      = "/login"
	PathAppHome    = "/dashboard"
	PathOnboarding = "/onboarding"
	PathPortal     = "/portal"
	PathUpgrade    = "/upgrade"
	PathInactive   = "/inactive"
)

// prefixCategories maps path prefixes to categories. First match wins;
// more specific prefixes must come first.
var prefixCategories = []struct {
	prefix   string
	category RouteCategory
}{
	{"/login", RouteAuth},
	{"/signup", RouteAuth},
	{"/forgot-password", RouteAuth},
	{"/reset-password", RouteAuth},

	{"/onboarding", RouteOnboarding},
	{"/portal", RoutePortal},
	{"/invite", RouteInvite},
	{"/inactive", RouteSpecial},

	{"/dashboard", RouteApp},
	{"/members", RouteApp},
	{"/staff", RouteApp},
	{"/classes", RouteApp},
	{"/attendance", RouteApp},
	{"/analytics", RouteApp},
	{"/billing", RouteApp},
	{"/settings", RouteApp},
	{"/upgrade", RouteApp},

	{"/about", RoutePublic},
	{"/pricing", RoutePublic},
	{"/contact", RoutePublic},
	{"/terms", RoutePublic},
	{"/privacy", RoutePublic},
}

// billingExemptPrefixes are app routes the subscription check must never
// gate, or a lapsed customer could not reach the pages that fix the
// lapse.
var billingExemptPrefixes = []string{"/upgrade", "/billing", "/settings"}

// Classify buckets a request path. Unknown paths classify as public so a
// new marketing page does not lock anyone out.
func Classify(path string) RouteCategory {
	if path == "" || path == "/" {
		return RouteRoot
	}
	for _, entry := range prefixCategories {
		if matchesPrefix(path, entry.prefix) {
			return entry.category
		}
	}
	return RoutePublic
}

// BillingExempt reports whether an app path is excluded from the
// subscription check.
func BillingExempt(path string) bool {
	for _, prefix := range billingExemptPrefixes {
		if matchesPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// SkipGate reports whether the gate must not run at all for a path.
// Static assets and API routes are handled by their own auth; the gate
// is a page-navigation concern only.
func SkipGate(path string) bool {
	for _, prefix := range []string{"/api/", "/static/", "/assets/", "/metrics", "/health", "/favicon.ico"} {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// matchesPrefix matches whole path segments: "/members" matches
// "/members" and "/members/42" but not "/membership".
func matchesPrefix(path, prefix string) bool {
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	return len(path) == len(prefix) || path[len(prefix)] == '/'
}
