package redirect

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var decisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "gatehouse_redirect_decisions_total",
	Help: "Redirect evaluations by flow and outcome",
}, []string{"flow", "outcome"})

// Navigator is the slice of the router the coordinator needs.
type Navigator interface {
	Navigate(path string)
}

// Coordinator implements the caller side of the engine contract: it owns the
// first-evaluation latch and the redirecting flag, re-evaluates on every
// state change the caller reports, and performs navigation exactly once per
// match. The latch is per-coordinator, never global, so concurrent flow
// instances cannot share it by accident.
type Coordinator struct {
	flow   string
	engine *Engine
	rules  []Rule
	nav    Navigator
	debug  bool

	mu             sync.Mutex
	hasInitialized bool
	redirecting    bool
}

func NewCoordinator(flow string, engine *Engine, rules []Rule, nav Navigator, debug bool) *Coordinator {
	return &Coordinator{flow: flow, engine: engine, rules: rules, nav: nav, debug: debug}
}

// Evaluate injects the latch into the context, runs the rules and executes
// the decision. It returns the result so callers can inspect the reason.
func (c *Coordinator) Evaluate(rctx Context) *Result {
	c.mu.Lock()
	rctx.HasInitialized = c.hasInitialized
	c.mu.Unlock()

	res := c.engine.Evaluate(c.rules, rctx, c.debug)

	c.mu.Lock()
	c.hasInitialized = true
	if res == nil {
		c.redirecting = false
		c.mu.Unlock()
		decisionsTotal.WithLabelValues(c.flow, "none").Inc()
		return nil
	}
	c.redirecting = true
	c.mu.Unlock()

	if res.OnRedirect != nil {
		res.OnRedirect()
	}
	if res.SkipNavigation {
		decisionsTotal.WithLabelValues(c.flow, "skip_navigation").Inc()
		return res
	}
	c.nav.Navigate(res.Destination)
	decisionsTotal.WithLabelValues(c.flow, "navigated").Inc()
	return res
}

// Redirecting reports whether the last evaluation produced a match.
func (c *Coordinator) Redirecting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.redirecting
}
