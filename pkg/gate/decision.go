package gate

import "net/url"

// StatusFlag is the one-time signal a redirect carries for the
// destination page to render a toast. Values form a small closed set.
type StatusFlag string

const (
	FlagNone         StatusFlag = ""
	FlagTrialExpired StatusFlag = "trial_expired"
	FlagNoGym        StatusFlag = "no_gym"
	FlagPortalDenied StatusFlag = "portal_access_denied"
)

// Decision is the gate's verdict for one request.
type Decision struct {
	Allow    bool
	Location string
	Flag     StatusFlag
}

// allow is the pass-through decision.
var allow = Decision{Allow: true}

// redirect builds a redirect decision, carrying the invite token through
// verbatim when present. The gate never validates the token; its only
// obligation is lossless propagation until the invitation flow consumes
// it.
func redirect(target, invite string) Decision {
	return redirectWithFlag(target, invite, FlagNone)
}

func redirectWithFlag(target, invite string, flag StatusFlag) Decision {
	if invite != "" {
		target = target + "?invite=" + url.QueryEscape(invite)
	}
	return Decision{Location: target, Flag: flag}
}
