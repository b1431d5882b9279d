package gate

import (
	"context"

	"github.com/fitstack/gymgate/pkg/domain"
)

// Input is the full state tuple the engine decides on. HasSubscription
// is evaluated lazily so the billing backend is only consulted by the
// one rule that needs it.
type Input struct {
	Session  domain.Session
	Tenant   domain.EffectiveTenantState
	Category RouteCategory
	Path     string
	Invite   string

	HasSubscription func(ctx context.Context) bool
}

func (in Input) authed() bool {
	return in.Session.Authenticated
}

func (in Input) invited() bool {
	return in.Invite != ""
}

// rule is one guard→outcome pair. The engine walks the table top to
// bottom and the first matching guard decides; ordering is part of the
// contract.
type rule struct {
	name    string
	guard   func(ctx context.Context, in Input) bool
	outcome func(in Input) Decision
}

// homeFor picks the landing surface for an authenticated user: members
// go to the portal, every staff-side role goes to the app home, and a
// user without a gym goes to onboarding.
func homeFor(in Input) Decision {
	switch {
	case !in.Tenant.HasGym:
		return redirect(PathOnboarding, in.Invite)
	case in.Tenant.IsMember():
		return redirect(PathPortal, in.Invite)
	default:
		return redirect(PathAppHome, in.Invite)
	}
}

// rules is the ordered decision table. Together with the trailing
// catch-all it is total: every (session, tenant, category, invite)
// tuple maps to exactly one outcome.
var rules = []rule{
	{
		name: "anonymous on auth or public page",
		guard: func(_ context.Context, in Input) bool {
			return !in.authed() && (in.Category == RouteAuth || in.Category == RoutePublic)
		},
		outcome: func(in Input) Decision { return allow },
	},
	{
		name: "anonymous invitee on onboarding",
		guard: func(_ context.Context, in Input) bool {
			return !in.authed() && in.Category == RouteOnboarding && in.invited()
		},
		outcome: func(in Input) Decision { return allow },
	},
	{
		name: "anonymous on invite page",
		guard: func(_ context.Context, in Input) bool {
			return !in.authed() && in.Category == RouteInvite
		},
		outcome: func(in Input) Decision { return allow },
	},
	{
		name: "anonymous elsewhere",
		guard: func(_ context.Context, in Input) bool {
			return !in.authed()
		},
		outcome: func(in Input) Decision { return redirect(PathLogin, in.Invite) },
	},
	{
		name: "authenticated on auth page",
		guard: func(_ context.Context, in Input) bool {
			return in.Category == RouteAuth
		},
		outcome: homeFor,
	},
	{
		name: "inactive user outside safe pages",
		guard: func(_ context.Context, in Input) bool {
			if !in.Tenant.Inactive {
				return false
			}
			switch in.Category {
			case RouteSpecial, RoutePublic, RouteOnboarding:
				return false
			}
			return true
		},
		outcome: func(in Input) Decision { return redirect(PathInactive, in.Invite) },
	},
	{
		name: "invitee on onboarding",
		guard: func(_ context.Context, in Input) bool {
			return in.Category == RouteOnboarding && in.invited()
		},
		outcome: func(in Input) Decision { return allow },
	},
	{
		name: "onboarded user revisits onboarding",
		guard: func(_ context.Context, in Input) bool {
			return in.Category == RouteOnboarding && in.Tenant.HasGym
		},
		outcome: func(in Input) Decision { return redirect(PathAppHome, "") },
	},
	{
		name: "onboarding in progress",
		guard: func(_ context.Context, in Input) bool {
			return in.Category == RouteOnboarding
		},
		outcome: func(in Input) Decision { return allow },
	},
	{
		name: "app page without a gym",
		guard: func(_ context.Context, in Input) bool {
			return in.Category == RouteApp && !in.Tenant.HasGym
		},
		outcome: func(in Input) Decision { return redirect(PathOnboarding, in.Invite) },
	},
	{
		name: "app page with pending invite",
		guard: func(_ context.Context, in Input) bool {
			return in.Category == RouteApp && in.invited()
		},
		outcome: func(in Input) Decision { return allow },
	},
	{
		name: "member on staff app page",
		guard: func(_ context.Context, in Input) bool {
			return in.Category == RouteApp && in.Tenant.IsMember()
		},
		outcome: func(in Input) Decision { return redirect(PathPortal, "") },
	},
	{
		name: "subscription lapsed",
		guard: func(ctx context.Context, in Input) bool {
			return in.Category == RouteApp && !BillingExempt(in.Path) && !in.HasSubscription(ctx)
		},
		outcome: func(in Input) Decision {
			return redirectWithFlag(PathUpgrade, "", FlagTrialExpired)
		},
	},
	{
		name: "app page",
		guard: func(_ context.Context, in Input) bool {
			return in.Category == RouteApp
		},
		outcome: func(in Input) Decision { return allow },
	},
	{
		name: "portal without a gym",
		guard: func(_ context.Context, in Input) bool {
			return in.Category == RoutePortal && !in.Tenant.HasGym
		},
		outcome: func(in Input) Decision {
			return redirectWithFlag(PathAppHome, in.Invite, FlagNoGym)
		},
	},
	{
		name: "member on portal",
		guard: func(_ context.Context, in Input) bool {
			return in.Category == RoutePortal && in.Tenant.IsMember()
		},
		outcome: func(in Input) Decision { return allow },
	},
	{
		name: "staff role on portal",
		guard: func(_ context.Context, in Input) bool {
			return in.Category == RoutePortal
		},
		outcome: func(in Input) Decision {
			return redirectWithFlag(PathAppHome, in.Invite, FlagPortalDenied)
		},
	},
	{
		name: "authenticated on invite page",
		guard: func(_ context.Context, in Input) bool {
			return in.Category == RouteInvite
		},
		outcome: func(in Input) Decision { return allow },
	},
	{
		name: "root path",
		guard: func(_ context.Context, in Input) bool {
			return in.Category == RouteRoot
		},
		outcome: homeFor,
	},
	{
		name: "default allow",
		guard: func(_ context.Context, in Input) bool {
			return true
		},
		outcome: func(in Input) Decision { return allow },
	},
}

// Decide walks the rule table and returns the first matching outcome
// along with the rule's name for logging and metrics.
func Decide(ctx context.Context, in Input) (Decision, string) {
	if in.HasSubscription == nil {
		in.HasSubscription = func(context.Context) bool { return true }
	}
	for _, r := range rules {
		if r.guard(ctx, in) {
			return r.outcome(in), r.name
		}
	}
	// Unreachable: the table ends in a catch-all.
	return allow, "default allow"
}
