package gate

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		path string
		want RouteCategory
	}{
		{"/", RouteRoot},
		{"", RouteRoot},
		{"/login", RouteAuth},
		{"/signup", RouteAuth},
		{"/forgot-password", RouteAuth},
		{"/dashboard", RouteApp},
		{"/members", RouteApp},
		{"/members/42", RouteApp},
		{"/settings", RouteApp},
		{"/upgrade", RouteApp},
		{"/billing/invoices", RouteApp},
		{"/onboarding", RouteOnboarding},
		{"/onboarding/gym", RouteOnboarding},
		{"/portal", RoutePortal},
		{"/portal/schedule", RoutePortal},
		{"/invite", RouteInvite},
		{"/invite/abc123", RouteInvite},
		{"/inactive", RouteSpecial},
		{"/pricing", RoutePublic},
		{"/about", RoutePublic},
		// prefix matching is segment-aware
		{"/membership", RoutePublic},
		{"/loginfoo", RoutePublic},
		// unknown paths default public
		{"/careers", RoutePublic},
	}

	for _, tt := range tests {
		if got := Classify(tt.path); got != tt.want {
			t.Errorf("Classify(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestBillingExempt(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/upgrade", true},
		{"/billing", true},
		{"/billing/invoices", true},
		{"/settings", true},
		{"/settings/profile", true},
		{"/dashboard", false},
		{"/members", false},
	}

	for _, tt := range tests {
		if got := BillingExempt(tt.path); got != tt.want {
			t.Errorf("BillingExempt(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestSkipGate(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/api/v1/members", true},
		{"/static/app.css", true},
		{"/assets/logo.png", true},
		{"/metrics", true},
		{"/health", true},
		{"/favicon.ico", true},
		{"/dashboard", false},
		{"/", false},
		{"/apidocs", false},
	}

	for _, tt := range tests {
		if got := SkipGate(tt.path); got != tt.want {
			t.Errorf("SkipGate(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
