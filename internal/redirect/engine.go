// Package redirect decides, before a screen renders, whether the user should
// be sent somewhere else. It is a rule interpreter, not a state machine: pure
// and synchronous, with side effects only where the caller executes them.
package redirect

import (
	"log/slog"
)

// Context is the immutable input of one evaluation. It is reconstructed
// fresh on every call and never shared across evaluations. Extra carries
// caller-supplied values that built-in rules do not know about.
type Context struct {
	IsSignedIn           bool
	SingleSessionMode    bool
	HasInitialized       bool
	SessionCount         int
	SignedInSessionCount int
	CurrentPath          string
	Query                map[string]string

	// AfterPath is the caller-supplied destination override for the
	// "already signed in" rule; empty means use the flow default.
	AfterPath string

	// Ticket is the organization/invitation ticket, empty if absent.
	Ticket string

	Extra map[string]any
}

// Result is a redirect decision. It is data: nothing mutates it after
// construction.
type Result struct {
	Destination    string
	Reason         string
	SkipNavigation bool
	OnRedirect     func()
}

type outcomeKind int

const (
	outcomeContinue outcomeKind = iota
	outcomeStop
	outcomeRedirect
)

// Outcome is what a rule returns: keep evaluating, stop without redirecting,
// or redirect. The stop path is an ordinary return value, not a panic, so
// programmer errors inside rules surface instead of being swallowed.
type Outcome struct {
	kind       outcomeKind
	result     *Result
	stopReason string
}

// Continue lets evaluation move to the next rule.
func Continue() Outcome { return Outcome{kind: outcomeContinue} }

// Stop short-circuits evaluation without producing a redirect.
func Stop(reason string) Outcome { return Outcome{kind: outcomeStop, stopReason: reason} }

// RedirectTo short-circuits evaluation with a redirect decision.
func RedirectTo(r Result) Outcome { return Outcome{kind: outcomeRedirect, result: &r} }

// Rule is a pure function over the evaluation context.
type Rule func(Context) Outcome

// Engine evaluates rule lists. Debug logging only ever fires in dev mode;
// production builds pay nothing for it.
type Engine struct {
	logger  *slog.Logger
	devMode bool
}

func NewEngine(logger *slog.Logger, devMode bool) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{logger: logger, devMode: devMode}
}

// Evaluate runs rules in list order and returns the first redirect decision,
// or nil when no rule matched or a rule stopped evaluation. Rules after a
// match are never invoked.
func (e *Engine) Evaluate(rules []Rule, rctx Context, debug bool) *Result {
	for _, rule := range rules {
		out := rule(rctx)
		switch out.kind {
		case outcomeStop:
			if debug && e.devMode {
				e.logger.Debug("redirect evaluation stopped", "reason", out.stopReason)
			}
			return nil
		case outcomeRedirect:
			if debug && e.devMode {
				e.logger.Debug("redirect matched",
					"reason", out.result.Reason, "destination", out.result.Destination)
			}
			return out.result
		}
	}
	return nil
}
