package auditlog

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresStore persists audit events in PostgreSQL for durable retention.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the audit_events table when missing. Called once at
// startup.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS audit_events (
			id UUID PRIMARY KEY,
			ts TIMESTAMPTZ NOT NULL,
			request_id TEXT NOT NULL DEFAULT '',
			subject TEXT NOT NULL DEFAULT '',
			action TEXT NOT NULL,
			template_type TEXT NOT NULL,
			currency TEXT NOT NULL,
			submission_ready BOOLEAN NOT NULL,
			fields_populated INT NOT NULL,
			sources_used INT NOT NULL,
			failed_errors INT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("ensure audit_events schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_events
			(id, ts, request_id, subject, action, template_type, currency,
			 submission_ready, fields_populated, sources_used, failed_errors)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		event.ID, event.Timestamp, event.RequestID, event.Subject, event.Action,
		event.TemplateType, event.Currency, event.SubmissionReady,
		event.FieldsPopulated, event.SourcesUsed, event.FailedErrors,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListRecent(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, ts, request_id, subject, action, template_type, currency,
		       submission_ready, fields_populated, sources_used, failed_errors
		FROM audit_events
		ORDER BY ts DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(
			&e.ID, &e.Timestamp, &e.RequestID, &e.Subject, &e.Action,
			&e.TemplateType, &e.Currency, &e.SubmissionReady,
			&e.FieldsPopulated, &e.SourcesUsed, &e.FailedErrors,
		); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
