package identity

import (
	"context"
	"sync"
	"time"

	"gatehouse/internal/signup"
	"gatehouse/pkg/domain"
)

// FakeClient simulates the identity service in memory: deterministic data
// plus a configurable latency to mimic real calls. It backs dev mode and
// exercises the full flow without a remote service. Email verification
// auto-verifies a few poll ticks after prepare, like a user clicking the
// link in their inbox.
type FakeClient struct {
	Latency      time.Duration
	PollInterval time.Duration
	// AutoVerifyAfter is how long after prepare a link strategy verifies.
	AutoVerifyAfter time.Duration

	attemptID domain.AttemptID

	mu         sync.Mutex
	fields     map[signup.FieldName]string
	verified   map[signup.FieldName]bool
	prepared   map[signup.FieldName]signup.StrategyName
	preparedAt map[signup.FieldName]time.Time
	sessionID  domain.SessionID
}

func NewFakeClient(attemptID domain.AttemptID) *FakeClient {
	return &FakeClient{
		Latency:         20 * time.Millisecond,
		PollInterval:    500 * time.Millisecond,
		AutoVerifyAfter: 2 * time.Second,
		attemptID:       attemptID,
		fields:          make(map[signup.FieldName]string),
		verified:        make(map[signup.FieldName]bool),
		prepared:        make(map[signup.FieldName]signup.StrategyName),
		preparedAt:      make(map[signup.FieldName]time.Time),
	}
}

// requiredFields is what the fake service demands before completion.
var requiredFields = []signup.FieldName{
	signup.FieldEmailAddress,
	signup.FieldPassword,
}

func (c *FakeClient) Create(ctx context.Context, fields map[signup.FieldName]string) (*signup.Snapshot, error) {
	return c.Update(ctx, fields)
}

func (c *FakeClient) Update(ctx context.Context, fields map[signup.FieldName]string) (*signup.Snapshot, error) {
	if err := c.sleep(ctx); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, v := range fields {
		if v == "" {
			continue
		}
		c.fields[k] = v
	}
	return c.snapshotLocked(), nil
}

func (c *FakeClient) PrepareVerification(ctx context.Context, strategy signup.StrategyName, params signup.PrepareParams) (*signup.Snapshot, error) {
	if err := c.sleep(ctx); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prepared[params.Field] = strategy
	c.preparedAt[params.Field] = time.Now()
	return c.snapshotLocked(), nil
}

func (c *FakeClient) AttemptVerification(ctx context.Context, strategy signup.StrategyName, code string) (*signup.Snapshot, error) {
	if err := c.sleep(ctx); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if code != "424242" {
		return nil, &signup.APIError{Global: []string{"incorrect verification code"}}
	}
	for field, s := range c.prepared {
		if s == strategy {
			c.verified[field] = true
		}
	}
	return c.snapshotLocked(), nil
}

func (c *FakeClient) StartPolling(ctx context.Context) (<-chan signup.PollEvent, error) {
	out := make(chan signup.PollEvent)
	go func() {
		defer close(out)
		ticker := time.NewTicker(c.PollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.mu.Lock()
				c.autoVerifyLocked()
				snap := c.snapshotLocked()
				c.mu.Unlock()
				select {
				case out <- signup.PollEvent{Snapshot: snap}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func (c *FakeClient) AuthenticateWithRedirect(ctx context.Context, params signup.RedirectParams) error {
	return c.sleep(ctx)
}

func (c *FakeClient) sleep(ctx context.Context) error {
	if c.Latency <= 0 {
		return ctx.Err()
	}
	select {
	case <-time.After(c.Latency):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// autoVerifyLocked flips prepared link verifications to verified once their
// grace period elapsed.
func (c *FakeClient) autoVerifyLocked() {
	for field, strategy := range c.prepared {
		if strategy != signup.StrategyEmailLink || c.verified[field] {
			continue
		}
		if time.Since(c.preparedAt[field]) >= c.AutoVerifyAfter {
			c.verified[field] = true
		}
	}
}

func (c *FakeClient) snapshotLocked() *signup.Snapshot {
	snap := &signup.Snapshot{
		ID:     c.attemptID,
		Status: signup.StatusMissingRequirements,
		SupportedStrategies: map[signup.FieldName][]signup.StrategyName{
			signup.FieldEmailAddress: {signup.StrategyEmailLink, signup.StrategyEmailCode},
			signup.FieldPhoneNumber:  {signup.StrategyPhoneCode},
		},
		Verifications: map[signup.FieldName]signup.VerificationState{},
	}

	for _, f := range requiredFields {
		if c.fields[f] == "" {
			snap.MissingFields = append(snap.MissingFields, f)
		}
	}
	for _, f := range []signup.FieldName{signup.FieldEmailAddress, signup.FieldPhoneNumber} {
		if c.fields[f] == "" {
			continue
		}
		state := signup.VerificationState{Status: signup.VerificationUnverified, Strategy: c.prepared[f]}
		if c.verified[f] {
			state.Status = signup.VerificationVerified
		} else {
			snap.UnverifiedFields = append(snap.UnverifiedFields, f)
		}
		snap.Verifications[f] = state
	}

	if len(snap.MissingFields) == 0 && len(snap.UnverifiedFields) == 0 {
		snap.Status = signup.StatusComplete
		if c.sessionID.IsZero() {
			c.sessionID = domain.NewSessionID()
		}
		snap.CreatedSessionID = c.sessionID
	}
	return snap
}
