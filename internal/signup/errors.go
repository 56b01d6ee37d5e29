package signup

// FailureReason distinguishes fatal flow failures so the shell can message
// them differently. Reasons are part of the machine's contract with the UI.
type FailureReason string

const (
	ReasonNone                FailureReason = ""
	ReasonNoStrategy          FailureReason = "no verification strategy found"
	ReasonVerificationFailed  FailureReason = "verification failed"
	ReasonVerificationTimeout FailureReason = "verification timed out"
	ReasonHavingTrouble       FailureReason = "having trouble"
)

// FlowError is the error attached to the machine context after a FAILURE.
type FlowError struct {
	Reason  FailureReason
	Message string
}

func (e *FlowError) Error() string {
	if e.Message != "" {
		return string(e.Reason) + ": " + e.Message
	}
	return string(e.Reason)
}

// userMessage maps a failure reason to the banner text surfaced on the form.
func userMessage(reason FailureReason) string {
	switch reason {
	case ReasonVerificationTimeout:
		return "The verification link expired. Restart the verification to receive a new one."
	case ReasonNoStrategy:
		return "No verification strategy is available for this account."
	default:
		return "Having trouble? Try again from the beginning."
	}
}
