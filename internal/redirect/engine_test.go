package redirect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateEmptyRules(t *testing.T) {
	e := NewEngine(nil, false)
	assert.Nil(t, e.Evaluate(nil, Context{}, false))
	assert.Nil(t, e.Evaluate([]Rule{}, Context{}, false))
}

func TestEvaluateFirstMatchWins(t *testing.T) {
	var calls []string
	named := func(name string, out Outcome) Rule {
		return func(Context) Outcome {
			calls = append(calls, name)
			return out
		}
	}

	e := NewEngine(nil, false)
	res := e.Evaluate([]Rule{
		named("first", Continue()),
		named("second", RedirectTo(Result{Destination: "/somewhere", Reason: "matched"})),
		named("third", RedirectTo(Result{Destination: "/never"})),
	}, Context{}, false)

	require.NotNil(t, res)
	assert.Equal(t, "/somewhere", res.Destination)
	assert.Equal(t, "matched", res.Reason)
	// Rules after a match are never invoked.
	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestEvaluateStopShortCircuits(t *testing.T) {
	var reached bool
	e := NewEngine(nil, false)
	res := e.Evaluate([]Rule{
		func(Context) Outcome { return Stop("handled elsewhere") },
		func(Context) Outcome { reached = true; return RedirectTo(Result{Destination: "/never"}) },
	}, Context{}, false)

	assert.Nil(t, res)
	assert.False(t, reached)
}

func TestEvaluatePassesContextThrough(t *testing.T) {
	e := NewEngine(nil, false)
	var seen Context
	rctx := Context{
		IsSignedIn:  true,
		CurrentPath: "/sign-in",
		Query:       map[string]string{"k": "v"},
		Extra:       map[string]any{"tenant": "acme"},
	}
	e.Evaluate([]Rule{func(c Context) Outcome {
		seen = c
		return Continue()
	}}, rctx, false)

	assert.Equal(t, rctx.CurrentPath, seen.CurrentPath)
	assert.Equal(t, "v", seen.Query["k"])
	assert.Equal(t, "acme", seen.Extra["tenant"])
}
