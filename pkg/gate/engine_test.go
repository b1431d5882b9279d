package gate

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/fitstack/gymgate/pkg/domain"
)

func authedSession() domain.Session {
	return domain.Session{UserID: uuid.New(), Email: "user@gym.test", Authenticated: true}
}

func tenantState(hasGym bool, role domain.RoleName, inactive bool) domain.EffectiveTenantState {
	state := domain.EffectiveTenantState{HasGym: hasGym, Inactive: inactive}
	if hasGym {
		r := role
		state.ActiveRole = &r
	}
	return state
}

func subscription(hasAccess bool) func(context.Context) bool {
	return func(context.Context) bool { return hasAccess }
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name         string
		in           Input
		wantAllow    bool
		wantLocation string
		wantFlag     StatusFlag
	}{
		// Anonymous traffic
		{
			name:      "anonymous on login page",
			in:        Input{Category: RouteAuth, Path: "/login"},
			wantAllow: true,
		},
		{
			name:      "anonymous on public page",
			in:        Input{Category: RoutePublic, Path: "/pricing"},
			wantAllow: true,
		},
		{
			name:      "anonymous invitee reaches onboarding",
			in:        Input{Category: RouteOnboarding, Path: "/onboarding", Invite: "abc123"},
			wantAllow: true,
		},
		{
			name:         "anonymous on onboarding without invite",
			in:           Input{Category: RouteOnboarding, Path: "/onboarding"},
			wantLocation: "/login",
		},
		{
			name:      "anonymous on invite page",
			in:        Input{Category: RouteInvite, Path: "/invite/abc123"},
			wantAllow: true,
		},
		{
			name:         "anonymous on app page",
			in:           Input{Category: RouteApp, Path: "/dashboard"},
			wantLocation: "/login",
		},
		{
			name:         "anonymous app redirect preserves invite",
			in:           Input{Category: RouteApp, Path: "/dashboard", Invite: "tok-1"},
			wantLocation: "/login?invite=tok-1",
		},
		{
			name:         "anonymous at root",
			in:           Input{Category: RouteRoot, Path: "/"},
			wantLocation: "/login",
		},

		// Auth pages for signed-in users
		{
			name: "signed-in owner on login page",
			in: Input{
				Session: authedSession(), Category: RouteAuth, Path: "/login",
				Tenant: tenantState(true, domain.RoleOwner, false),
			},
			wantLocation: "/dashboard",
		},
		{
			name: "signed-in member on login page",
			in: Input{
				Session: authedSession(), Category: RouteAuth, Path: "/login",
				Tenant: tenantState(true, domain.RoleMember, false),
			},
			wantLocation: "/portal",
		},
		{
			name: "signed-in member on login page keeps invite",
			in: Input{
				Session: authedSession(), Category: RouteAuth, Path: "/login",
				Tenant: tenantState(true, domain.RoleMember, false), Invite: "tok-2",
			},
			wantLocation: "/portal?invite=tok-2",
		},

		// Inactive users
		{
			name: "inactive user on settings",
			in: Input{
				Session: authedSession(), Category: RouteApp, Path: "/settings",
				Tenant: tenantState(false, "", true),
			},
			wantLocation: "/inactive",
		},
		{
			name: "inactive user keeps invite on redirect",
			in: Input{
				Session: authedSession(), Category: RouteApp, Path: "/settings",
				Tenant: tenantState(false, "", true), Invite: "tok-5",
			},
			wantLocation: "/inactive?invite=tok-5",
		},
		{
			name: "inactive user on the inactive page itself",
			in: Input{
				Session: authedSession(), Category: RouteSpecial, Path: "/inactive",
				Tenant: tenantState(false, "", true),
			},
			wantAllow: true,
		},
		{
			name: "inactive user on public page",
			in: Input{
				Session: authedSession(), Category: RoutePublic, Path: "/pricing",
				Tenant: tenantState(false, "", true),
			},
			wantAllow: true,
		},
		{
			name: "inactive user may restart onboarding",
			in: Input{
				Session: authedSession(), Category: RouteOnboarding, Path: "/onboarding",
				Tenant: tenantState(false, "", true),
			},
			wantAllow: true,
		},

		// Onboarding
		{
			name: "invitee with gym still reaches onboarding",
			in: Input{
				Session: authedSession(), Category: RouteOnboarding, Path: "/onboarding",
				Tenant: tenantState(true, domain.RoleOwner, false), Invite: "abc123",
			},
			wantAllow: true,
		},
		{
			name: "onboarded user bounced off onboarding",
			in: Input{
				Session: authedSession(), Category: RouteOnboarding, Path: "/onboarding",
				Tenant: tenantState(true, domain.RoleOwner, false),
			},
			wantLocation: "/dashboard",
		},
		{
			name: "user without gym onboards",
			in: Input{
				Session: authedSession(), Category: RouteOnboarding, Path: "/onboarding",
			},
			wantAllow: true,
		},

		// App pages
		{
			name: "app page without gym",
			in: Input{
				Session: authedSession(), Category: RouteApp, Path: "/dashboard",
			},
			wantLocation: "/onboarding",
		},
		{
			name: "app page without gym preserves invite",
			in: Input{
				Session: authedSession(), Category: RouteApp, Path: "/dashboard", Invite: "tok-3",
			},
			wantLocation: "/onboarding?invite=tok-3",
		},
		{
			name: "pending invite suppresses portal redirect",
			in: Input{
				Session: authedSession(), Category: RouteApp, Path: "/dashboard",
				Tenant: tenantState(true, domain.RoleMember, false), Invite: "tok-4",
			},
			wantAllow: true,
		},
		{
			name: "member on app page goes to portal",
			in: Input{
				Session: authedSession(), Category: RouteApp, Path: "/dashboard",
				Tenant: tenantState(true, domain.RoleMember, false),
			},
			wantLocation: "/portal",
		},
		{
			name: "owner without subscription on members page",
			in: Input{
				Session: authedSession(), Category: RouteApp, Path: "/members",
				Tenant:          tenantState(true, domain.RoleOwner, false),
				HasSubscription: subscription(false),
			},
			wantLocation: "/upgrade",
			wantFlag:     FlagTrialExpired,
		},
		{
			name: "lapsed owner still reaches upgrade page",
			in: Input{
				Session: authedSession(), Category: RouteApp, Path: "/upgrade",
				Tenant:          tenantState(true, domain.RoleOwner, false),
				HasSubscription: subscription(false),
			},
			wantAllow: true,
		},
		{
			name: "lapsed owner still reaches settings",
			in: Input{
				Session: authedSession(), Category: RouteApp, Path: "/settings",
				Tenant:          tenantState(true, domain.RoleOwner, false),
				HasSubscription: subscription(false),
			},
			wantAllow: true,
		},
		{
			name: "subscribed owner on app page",
			in: Input{
				Session: authedSession(), Category: RouteApp, Path: "/members",
				Tenant:          tenantState(true, domain.RoleOwner, false),
				HasSubscription: subscription(true),
			},
			wantAllow: true,
		},
		{
			name: "nil subscription check defaults open",
			in: Input{
				Session: authedSession(), Category: RouteApp, Path: "/members",
				Tenant: tenantState(true, domain.RoleTrainer, false),
			},
			wantAllow: true,
		},

		// Portal
		{
			name: "portal without gym",
			in: Input{
				Session: authedSession(), Category: RoutePortal, Path: "/portal",
			},
			wantLocation: "/dashboard",
			wantFlag:     FlagNoGym,
		},
		{
			name: "portal without gym keeps invite on redirect",
			in: Input{
				Session: authedSession(), Category: RoutePortal, Path: "/portal",
				Invite: "tok-6",
			},
			wantLocation: "/dashboard?invite=tok-6",
			wantFlag:     FlagNoGym,
		},
		{
			name: "member on portal",
			in: Input{
				Session: authedSession(), Category: RoutePortal, Path: "/portal",
				Tenant: tenantState(true, domain.RoleMember, false),
			},
			wantAllow: true,
		},
		{
			name: "owner bounced off portal",
			in: Input{
				Session: authedSession(), Category: RoutePortal, Path: "/portal",
				Tenant: tenantState(true, domain.RoleOwner, false),
			},
			wantLocation: "/dashboard",
			wantFlag:     FlagPortalDenied,
		},

		{
			name: "staff bounced off portal keeps invite",
			in: Input{
				Session: authedSession(), Category: RoutePortal, Path: "/portal",
				Tenant: tenantState(true, domain.RoleStaff, false), Invite: "tok-7",
			},
			wantLocation: "/dashboard?invite=tok-7",
			wantFlag:     FlagPortalDenied,
		},

		// Invite and root
		{
			name: "authenticated user on invite page",
			in: Input{
				Session: authedSession(), Category: RouteInvite, Path: "/invite/abc123",
				Tenant: tenantState(true, domain.RoleOwner, false),
			},
			wantAllow: true,
		},
		{
			name: "root for owner",
			in: Input{
				Session: authedSession(), Category: RouteRoot, Path: "/",
				Tenant: tenantState(true, domain.RoleOwner, false),
			},
			wantLocation: "/dashboard",
		},
		{
			name: "root for member",
			in: Input{
				Session: authedSession(), Category: RouteRoot, Path: "/",
				Tenant: tenantState(true, domain.RoleMember, false),
			},
			wantLocation: "/portal",
		},
		{
			name: "root without gym",
			in: Input{
				Session: authedSession(), Category: RouteRoot, Path: "/",
			},
			wantLocation: "/onboarding",
		},
		{
			name: "authenticated user on public page",
			in: Input{
				Session: authedSession(), Category: RoutePublic, Path: "/pricing",
				Tenant: tenantState(true, domain.RoleOwner, false),
			},
			wantAllow: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := Decide(context.Background(), tt.in)
			if got.Allow != tt.wantAllow {
				t.Errorf("Allow = %v, want %v", got.Allow, tt.wantAllow)
			}
			if got.Location != tt.wantLocation {
				t.Errorf("Location = %q, want %q", got.Location, tt.wantLocation)
			}
			if got.Flag != tt.wantFlag {
				t.Errorf("Flag = %q, want %q", got.Flag, tt.wantFlag)
			}
		})
	}
}

// The subscription check is lazy: only the one rule that needs it may
// call it.
func TestDecide_SubscriptionCheckLazy(t *testing.T) {
	calls := 0
	counting := func(context.Context) bool {
		calls++
		return true
	}

	inputs := []Input{
		{Category: RouteApp, Path: "/dashboard"}, // anonymous
		{
			Session: authedSession(), Category: RoutePortal, Path: "/portal",
			Tenant: tenantState(true, domain.RoleMember, false),
		},
		{
			Session: authedSession(), Category: RouteApp, Path: "/upgrade",
			Tenant: tenantState(true, domain.RoleOwner, false),
		},
	}
	for _, in := range inputs {
		in.HasSubscription = counting
		Decide(context.Background(), in)
	}
	if calls != 0 {
		t.Errorf("subscription check called %d times for routes that never need it", calls)
	}

	in := Input{
		Session: authedSession(), Category: RouteApp, Path: "/members",
		Tenant:          tenantState(true, domain.RoleOwner, false),
		HasSubscription: counting,
	}
	Decide(context.Background(), in)
	if calls != 1 {
		t.Errorf("subscription check calls = %d, want 1", calls)
	}
}

// A pending invite token must survive every redirect the engine can
// issue, whatever state the user is in.
func TestDecide_RedirectsPreserveInvite(t *testing.T) {
	categories := []RouteCategory{
		RouteAuth, RouteApp, RouteOnboarding, RoutePortal,
		RoutePublic, RouteInvite, RouteSpecial, RouteRoot,
	}
	tenants := []domain.EffectiveTenantState{
		{},
		tenantState(true, domain.RoleMember, false),
		tenantState(true, domain.RoleStaff, false),
		tenantState(true, domain.RoleOwner, false),
		tenantState(false, "", true),
	}

	for _, category := range categories {
		for _, authed := range []bool{false, true} {
			for _, tenant := range tenants {
				in := Input{
					Category:        category,
					Path:            "/x",
					Invite:          "tok",
					Tenant:          tenant,
					HasSubscription: subscription(false),
				}
				if authed {
					in.Session = authedSession()
				}
				decision, rule := Decide(context.Background(), in)
				if decision.Allow {
					continue
				}
				if !strings.Contains(decision.Location, "invite=tok") {
					t.Errorf("rule %q redirect %q dropped the invite token", rule, decision.Location)
				}
			}
		}
	}
}

// Every tuple must map to exactly one outcome; spot-check that the
// table never falls through for any category/auth/tenant combination.
func TestDecide_Total(t *testing.T) {
	categories := []RouteCategory{
		RouteAuth, RouteApp, RouteOnboarding, RoutePortal,
		RoutePublic, RouteInvite, RouteSpecial, RouteRoot,
	}
	tenants := []domain.EffectiveTenantState{
		{},
		tenantState(true, domain.RoleMember, false),
		tenantState(true, domain.RoleOwner, false),
		tenantState(false, "", true),
	}

	for _, category := range categories {
		for _, authed := range []bool{false, true} {
			for _, tenant := range tenants {
				for _, invite := range []string{"", "tok"} {
					in := Input{
						Category: category,
						Path:     "/x",
						Invite:   invite,
						Tenant:   tenant,
					}
					if authed {
						in.Session = authedSession()
					}
					decision, rule := Decide(context.Background(), in)
					if rule == "" {
						t.Fatalf("no rule matched %+v", in)
					}
					if !decision.Allow && decision.Location == "" {
						t.Fatalf("redirect without location for %+v (rule %q)", in, rule)
					}
				}
			}
		}
	}
}
