package signup

// Guard predicates over the current resource snapshot. These are pure
// functions shared by the transition table and by tests; none of them touch
// machine state.

// HasUnverifiedFields reports whether any required field still needs
// verification. It has strict priority over HasMissingFields at NEXT.
func HasUnverifiedFields(s *Snapshot) bool {
	return s != nil && len(s.UnverifiedFields) > 0
}

// HasMissingFields reports whether required fields are still absent.
func HasMissingFields(s *Snapshot) bool {
	return s != nil && len(s.MissingFields) > 0
}

// IsComplete reports whether the server considers registration finished.
func IsComplete(s *Snapshot) bool {
	return s != nil && s.Status == StatusComplete
}

// IsAbandoned reports whether the server gave up on this attempt.
func IsAbandoned(s *Snapshot) bool {
	return s != nil && s.Status == StatusAbandoned
}

// FieldUnverified reports whether one specific field awaits verification.
func FieldUnverified(s *Snapshot, field FieldName) bool {
	if s == nil {
		return false
	}
	for _, f := range s.UnverifiedFields {
		if f == field {
			return true
		}
	}
	return false
}

// FieldMissing reports whether one specific field is still absent.
func FieldMissing(s *Snapshot, field FieldName) bool {
	if s == nil {
		return false
	}
	for _, f := range s.MissingFields {
		if f == field {
			return true
		}
	}
	return false
}

// StrategyAvailable reports whether some unverified field supports the given
// strategy. The field a strategy applies to is resolved by strategyField.
func StrategyAvailable(s *Snapshot, strategy StrategyName) bool {
	_, ok := strategyField(s, strategy)
	return ok
}

// strategyField returns the first unverified field that supports strategy.
func strategyField(s *Snapshot, strategy StrategyName) (FieldName, bool) {
	if s == nil {
		return "", false
	}
	for _, field := range s.UnverifiedFields {
		for _, supported := range s.SupportedStrategies[field] {
			if supported == strategy {
				return field, true
			}
		}
	}
	return "", false
}

// FieldVerified reports whether the server marked a field verified.
func FieldVerified(s *Snapshot, field FieldName) bool {
	if s == nil {
		return false
	}
	return s.Verifications[field].Status == VerificationVerified
}
