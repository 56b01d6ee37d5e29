package redirect

import "strings"

// AddAccountParam is the query parameter signalling an explicit "add another
// account" intent on the sign-in flow.
const AddAccountParam = "add_account"

// ChooserSegment is the sub-path of the account chooser inside a flow.
const ChooserSegment = "/choose"

// FlowPaths anchor a rule set to one flow.
type FlowPaths struct {
	// Base is the flow root, e.g. /sign-in.
	Base string

	// AfterDefault is the computed destination for the already-signed-in
	// rule when the caller supplies no override.
	AfterDefault string
}

// SignInRules is the ordered rule set guarding the sign-in flow. replace
// performs a history replacement without a full navigation; it backs the
// query-cleanup side effect of the add-account rule.
func SignInRules(p FlowPaths, replace func(path string)) []Rule {
	return []Rule{
		ticketRule(),
		alreadySignedInRule(p),
		addAccountRule(replace),
		accountChooserRule(p),
	}
}

// SignUpRules is the ordered rule set guarding the sign-up flow. It shares
// the sign-in shape minus the add-account rule.
func SignUpRules(p FlowPaths) []Rule {
	return []Rule{
		ticketRule(),
		alreadySignedInRule(p),
		accountChooserRule(p),
	}
}

// ticketRule stops evaluation when an organization/invitation ticket is
// present: that flow is handled by the caller directly, not by generic
// redirection.
func ticketRule() Rule {
	return func(rctx Context) Outcome {
		if rctx.Ticket != "" {
			return Stop("ticket flow handled by caller")
		}
		return Continue()
	}
}

// alreadySignedInRule sends an authenticated user in single-session mode to
// the flow's "after" destination. A caller-supplied override wins over the
// computed default.
func alreadySignedInRule(p FlowPaths) Rule {
	return func(rctx Context) Outcome {
		if !rctx.IsSignedIn || !rctx.SingleSessionMode {
			return Continue()
		}
		dest := rctx.AfterPath
		if dest == "" {
			dest = p.AfterDefault
		}
		return RedirectTo(Result{
			Destination: dest,
			Reason:      "already signed in",
		})
	}
}

// addAccountRule keeps the user on the sign-in flow when they explicitly
// asked to add another account, cleaning the marker parameter out of the
// address bar without a navigation.
func addAccountRule(replace func(path string)) Rule {
	return func(rctx Context) Outcome {
		if rctx.Query[AddAccountParam] == "" {
			return Continue()
		}
		path := rctx.CurrentPath
		return RedirectTo(Result{
			Destination:    path,
			Reason:         "add account intent",
			SkipNavigation: true,
			OnRedirect: func() {
				if replace != nil {
					replace(path)
				}
			},
		})
	}
}

// accountChooserRule redirects the very first evaluation of a multi-session
// environment with existing signed-in sessions to the account chooser. It
// fires only on the exact flow root (a trailing slash is tolerated): nested
// paths belong to a flow already in progress, and re-firing after the
// chooser navigates within the flow would loop.
func accountChooserRule(p FlowPaths) Rule {
	return func(rctx Context) Outcome {
		if rctx.HasInitialized {
			return Continue()
		}
		if rctx.SingleSessionMode || rctx.SignedInSessionCount == 0 {
			return Continue()
		}
		if !isFlowRoot(rctx.CurrentPath, p.Base) {
			return Continue()
		}
		return RedirectTo(Result{
			Destination: p.Base + ChooserSegment,
			Reason:      "existing sessions, choose account",
		})
	}
}

func isFlowRoot(current, base string) bool {
	return current == base || strings.TrimSuffix(current, "/") == base
}
