package signup

// strategyPriority is the order in which Verification's init pseudo-state
// picks a sub-flow: the first strategy whose guard matches wins. Re-entering
// Verification always re-runs this selection against the latest snapshot so a
// change in server requirements can never leave a stale strategy running.
var strategyPriority = []StrategyName{
	StrategyPhoneCode,
	StrategyEmailLink,
	StrategyEmailCode,
}

// selectStrategy picks the verification sub-flow for the current snapshot.
// Returns false when no strategy matches, which is a hard flow failure.
func selectStrategy(s *Snapshot) (StrategyName, FieldName, bool) {
	for _, strategy := range strategyPriority {
		if field, ok := strategyField(s, strategy); ok {
			return strategy, field, true
		}
	}
	return "", "", false
}

// awaitsCode reports whether a strategy collects user input before its
// attempt call. Polling strategies go straight to attempting.
func awaitsCode(strategy StrategyName) bool {
	switch strategy {
	case StrategyPhoneCode, StrategyEmailCode:
		return true
	case StrategyEmailLink:
		return false
	default:
		return false
	}
}

// pollingStrategy reports whether a strategy settles through the polling
// stream rather than a user-submitted attempt.
func pollingStrategy(strategy StrategyName) bool {
	return strategy == StrategyEmailLink
}

// knownStrategy guards against the server advertising a strategy this build
// does not implement; the machine routes those to NotImplemented.
func knownStrategy(strategy StrategyName) bool {
	switch strategy {
	case StrategyPhoneCode, StrategyEmailLink, StrategyEmailCode:
		return true
	default:
		return false
	}
}
