package signup

// FlowState is the top-level state of the machine.
type FlowState string

const (
	FlowInit           FlowState = "init"
	FlowSSOCallback    FlowState = "sso_callback"
	FlowAuthRedirect   FlowState = "authenticating_with_redirect"
	FlowStart          FlowState = "start"
	FlowContinue       FlowState = "continue"
	FlowVerification   FlowState = "verification"
	FlowHavingTrouble  FlowState = "having_trouble"
	FlowNotImplemented FlowState = "not_implemented"
	FlowComplete       FlowState = "complete"
)

// Phase is the sub-state within a flow state. Keeping hierarchy as a
// (flow, phase, strategy) tuple keeps the transition table flat.
type Phase string

const (
	PhaseNone          Phase = ""
	PhaseAwaitingInput Phase = "awaiting_input"
	PhasePreparing     Phase = "preparing"
	PhaseAttempting    Phase = "attempting"
)

// State is the full machine position. Strategy is set only while inside
// Verification.
type State struct {
	Flow     FlowState
	Phase    Phase
	Strategy StrategyName
}

func (s State) String() string {
	out := string(s.Flow)
	if s.Phase != PhaseNone {
		out += "." + string(s.Phase)
	}
	if s.Strategy != "" {
		out += "[" + string(s.Strategy) + "]"
	}
	return out
}

// Tags exposes the UI-facing labels of the current state. The shell uses
// these to pick which screen to render.
func (s State) Tags() []string {
	switch s.Flow {
	case FlowSSOCallback:
		return []string{"external"}
	case FlowStart:
		return []string{"state:start"}
	case FlowContinue:
		return []string{"state:continue"}
	case FlowVerification:
		return []string{"state:verification"}
	default:
		return nil
	}
}

// Terminal reports whether the machine reached its final state.
func (s State) Terminal() bool { return s.Flow == FlowComplete }
