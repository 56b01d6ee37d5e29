package audit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// PostgresStore persists audit events durably. The same event id appended
// twice is a no-op, so a retrying worker cannot duplicate the trail.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const uniqueViolation = pq.ErrorCode("23505")

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	query := `
		INSERT INTO audit_events
			(id, category, ts, attempt_id, session_id, action, from_state, to_state, reason, request_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := s.db.ExecContext(ctx, query,
		event.ID, string(event.Category), event.Timestamp, event.AttemptID,
		event.SessionID, event.Action, event.FromState, event.ToState,
		event.Reason, event.RequestID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil
		}
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByAttempt(ctx context.Context, attemptID string) ([]Event, error) {
	query := `
		SELECT id, category, ts, attempt_id, session_id, action, from_state, to_state, reason, request_id
		FROM audit_events
		WHERE attempt_id = $1
		ORDER BY ts ASC`
	rows, err := s.db.QueryContext(ctx, query, attemptID)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var e Event
		var category string
		if err := rows.Scan(&e.ID, &category, &e.Timestamp, &e.AttemptID,
			&e.SessionID, &e.Action, &e.FromState, &e.ToState, &e.Reason, &e.RequestID); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Category = Category(category)
		out = append(out, e)
	}
	return out, rows.Err()
}

// EnsureSchema creates the audit table when migrations have not run yet.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS audit_events (
			id         UUID PRIMARY KEY,
			category   TEXT NOT NULL,
			ts         TIMESTAMPTZ NOT NULL,
			attempt_id TEXT NOT NULL DEFAULT '',
			session_id TEXT NOT NULL DEFAULT '',
			action     TEXT NOT NULL,
			from_state TEXT NOT NULL DEFAULT '',
			to_state   TEXT NOT NULL DEFAULT '',
			reason     TEXT NOT NULL DEFAULT '',
			request_id TEXT NOT NULL DEFAULT ''
		)`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("ensure audit schema: %w", err)
	}
	return nil
}
