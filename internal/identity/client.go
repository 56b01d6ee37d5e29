// Package identity adapts the remote identity service to the flow machine's
// client port. One Client serves one sign-up attempt.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"gatehouse/internal/signup"
	"gatehouse/pkg/domain"
)

const defaultPollInterval = 3 * time.Second

// Client talks to the identity service's sign-up resource API.
type Client struct {
	baseURL      string
	http         *http.Client
	attemptID    domain.AttemptID
	pollInterval time.Duration
	logger       *slog.Logger
}

type ClientConfig struct {
	BaseURL      string
	HTTPClient   *http.Client
	PollInterval time.Duration
	Logger       *slog.Logger
}

func NewClient(cfg ClientConfig, attemptID domain.AttemptID) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	interval := cfg.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:      cfg.BaseURL,
		http:         httpClient,
		attemptID:    attemptID,
		pollInterval: interval,
		logger:       logger,
	}
}

// --- wire types ---

type signUpWire struct {
	ID                  string                      `json:"id"`
	Status              string                      `json:"status"`
	MissingFields       []string                    `json:"missing_fields"`
	UnverifiedFields    []string                    `json:"unverified_fields"`
	Verifications       map[string]verificationWire `json:"verifications"`
	SupportedStrategies map[string][]string         `json:"supported_strategies"`
	CreatedSessionID    string                      `json:"created_session_id"`
}

type verificationWire struct {
	Status   string `json:"status"`
	Strategy string `json:"strategy"`
}

type apiErrorWire struct {
	Errors []struct {
		Field   string `json:"field"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}

func (c *Client) Create(ctx context.Context, fields map[signup.FieldName]string) (*signup.Snapshot, error) {
	body := map[string]any{"id": c.attemptID.String(), "fields": fields}
	return c.roundTrip(ctx, http.MethodPost, "/v1/sign_ups", body)
}

func (c *Client) Update(ctx context.Context, fields map[signup.FieldName]string) (*signup.Snapshot, error) {
	var body any
	if fields != nil {
		body = map[string]any{"fields": fields}
	}
	return c.roundTrip(ctx, http.MethodPatch, c.resourcePath(""), body)
}

func (c *Client) PrepareVerification(ctx context.Context, strategy signup.StrategyName, params signup.PrepareParams) (*signup.Snapshot, error) {
	body := map[string]any{
		"strategy":     string(strategy),
		"field":        string(params.Field),
		"redirect_url": params.RedirectURL,
	}
	return c.roundTrip(ctx, http.MethodPost, c.resourcePath("/prepare_verification"), body)
}

func (c *Client) AttemptVerification(ctx context.Context, strategy signup.StrategyName, code string) (*signup.Snapshot, error) {
	body := map[string]any{"strategy": string(strategy), "code": code}
	return c.roundTrip(ctx, http.MethodPost, c.resourcePath("/attempt_verification"), body)
}

// StartPolling re-reads the resource on an interval until ctx ends. The
// stream closes when polling stops; terminal detection is the machine's job.
func (c *Client) StartPolling(ctx context.Context) (<-chan signup.PollEvent, error) {
	out := make(chan signup.PollEvent)
	go func() {
		defer close(out)
		ticker := time.NewTicker(c.pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				snap, err := c.roundTrip(ctx, http.MethodGet, c.resourcePath(""), nil)
				ev := signup.PollEvent{Snapshot: snap, Err: err}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func (c *Client) AuthenticateWithRedirect(ctx context.Context, params signup.RedirectParams) error {
	body := map[string]any{
		"provider":              params.Provider,
		"redirect_url":          params.RedirectURL,
		"redirect_url_complete": params.RedirectURLComplete,
	}
	_, err := c.roundTrip(ctx, http.MethodPost, c.resourcePath("/authenticate_with_redirect"), body)
	return err
}

func (c *Client) resourcePath(suffix string) string {
	return "/v1/sign_ups/" + c.attemptID.String() + suffix
}

func (c *Client) roundTrip(ctx context.Context, method, path string, body any) (*signup.Snapshot, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return nil, decodeAPIError(resp.Body)
	}
	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("identity service returned %d", resp.StatusCode)
	}

	var wire signUpWire
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, fmt.Errorf("decode sign-up resource: %w", err)
	}
	return toSnapshot(wire)
}

// decodeAPIError turns a 4xx body into the typed error the machine surfaces
// on the form. An unreadable body still yields an *APIError.
func decodeAPIError(body io.Reader) error {
	var wire apiErrorWire
	apiErr := &signup.APIError{}
	if err := json.NewDecoder(body).Decode(&wire); err != nil {
		apiErr.Global = []string{"the identity service rejected the request"}
		return apiErr
	}
	for _, e := range wire.Errors {
		if e.Field == "" {
			apiErr.Global = append(apiErr.Global, e.Message)
			continue
		}
		apiErr.Fields = append(apiErr.Fields, signup.FieldError{
			Field:   signup.FieldName(e.Field),
			Code:    e.Code,
			Message: e.Message,
		})
	}
	return apiErr
}

func toSnapshot(wire signUpWire) (*signup.Snapshot, error) {
	id, err := domain.ParseAttemptID(wire.ID)
	if err != nil {
		return nil, fmt.Errorf("sign-up resource id: %w", err)
	}
	snap := &signup.Snapshot{
		ID:     id,
		Status: signup.Status(wire.Status),
	}
	for _, f := range wire.MissingFields {
		snap.MissingFields = append(snap.MissingFields, signup.FieldName(f))
	}
	for _, f := range wire.UnverifiedFields {
		snap.UnverifiedFields = append(snap.UnverifiedFields, signup.FieldName(f))
	}
	if len(wire.Verifications) > 0 {
		snap.Verifications = make(map[signup.FieldName]signup.VerificationState, len(wire.Verifications))
		for field, v := range wire.Verifications {
			snap.Verifications[signup.FieldName(field)] = signup.VerificationState{
				Status:   signup.VerificationStatus(v.Status),
				Strategy: signup.StrategyName(v.Strategy),
			}
		}
	}
	if len(wire.SupportedStrategies) > 0 {
		snap.SupportedStrategies = make(map[signup.FieldName][]signup.StrategyName, len(wire.SupportedStrategies))
		for field, strategies := range wire.SupportedStrategies {
			list := make([]signup.StrategyName, 0, len(strategies))
			for _, s := range strategies {
				list = append(list, signup.StrategyName(s))
			}
			snap.SupportedStrategies[signup.FieldName(field)] = list
		}
	}
	if wire.CreatedSessionID != "" {
		sessionID, err := domain.ParseSessionID(wire.CreatedSessionID)
		if err != nil {
			return nil, fmt.Errorf("created session id: %w", err)
		}
		snap.CreatedSessionID = sessionID
	}
	return snap, nil
}
