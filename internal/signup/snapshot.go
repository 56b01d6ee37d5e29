// Package signup owns the client-side state of the registration protocol: the
// flow machine, its guards, the verification sub-flows and the ports to the
// remote identity service. Transport and storage concerns live elsewhere.
package signup

import (
	"gatehouse/pkg/domain"
)

// Status is the server-reported state of the registration resource.
type Status string

const (
	StatusMissingRequirements Status = "missing_requirements"
	StatusNeedsMoreInfo       Status = "needs_more_info"
	StatusComplete            Status = "complete"
	StatusAbandoned           Status = "abandoned"
)

// FieldName identifies an attribute of the registration resource.
type FieldName string

const (
	FieldEmailAddress FieldName = "email_address"
	FieldPhoneNumber  FieldName = "phone_number"
	FieldUsername     FieldName = "username"
	FieldPassword     FieldName = "password"
	FieldFirstName    FieldName = "first_name"
	FieldLastName     FieldName = "last_name"
)

// StrategyName identifies a verification strategy offered by the server.
type StrategyName string

const (
	StrategyPhoneCode StrategyName = "phone_code"
	StrategyEmailLink StrategyName = "email_link"
	StrategyEmailCode StrategyName = "email_code"
)

// VerificationStatus is the server-reported state of one field verification.
type VerificationStatus string

const (
	VerificationUnverified VerificationStatus = "unverified"
	VerificationVerified   VerificationStatus = "verified"
	VerificationExpired    VerificationStatus = "expired"
	VerificationFailed     VerificationStatus = "failed"
)

// VerificationState tracks one verifiable field. It only changes through
// server responses to prepare/attempt calls; the machine never mutates it.
type VerificationState struct {
	Status   VerificationStatus
	Strategy StrategyName // strategy currently prepared, empty if none
}

// Snapshot is a read-only view of the remote registration resource. The
// server derives Status from the other fields; the machine re-reads a fresh
// snapshot after every actor call instead of mutating this one.
type Snapshot struct {
	ID                  domain.AttemptID
	Status              Status
	MissingFields       []FieldName
	UnverifiedFields    []FieldName
	Verifications       map[FieldName]VerificationState
	SupportedStrategies map[FieldName][]StrategyName
	CreatedSessionID    domain.SessionID // zero until the server creates a session
}

// Clone returns a deep copy so callers outside the machine cannot alias the
// machine-owned snapshot.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	out := &Snapshot{
		ID:               s.ID,
		Status:           s.Status,
		CreatedSessionID: s.CreatedSessionID,
	}
	out.MissingFields = append([]FieldName(nil), s.MissingFields...)
	out.UnverifiedFields = append([]FieldName(nil), s.UnverifiedFields...)
	if s.Verifications != nil {
		out.Verifications = make(map[FieldName]VerificationState, len(s.Verifications))
		for k, v := range s.Verifications {
			out.Verifications[k] = v
		}
	}
	if s.SupportedStrategies != nil {
		out.SupportedStrategies = make(map[FieldName][]StrategyName, len(s.SupportedStrategies))
		for k, v := range s.SupportedStrategies {
			out.SupportedStrategies[k] = append([]StrategyName(nil), v...)
		}
	}
	return out
}
