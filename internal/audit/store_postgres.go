package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	id "regula/pkg/domain"
	txcontext "regula/pkg/platform/tx"
)

// PostgresStore implements Store using a transactional outbox. Events are
// written to the outbox table and shipped to Kafka by the outbox drainer;
// the table row remains as the queryable audit trail.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a PostgreSQL-backed audit store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

// outboxPayload is the JSON structure published to Kafka. Field names match
// Event for proper deserialization by consumers.
type outboxPayload struct {
	ID        string `json:"ID"`
	Category  string `json:"Category"`
	Timestamp string `json:"Timestamp"`
	Subject   string `json:"Subject"`
	Action    string `json:"Action"`
	EntityID  string `json:"EntityID,omitempty"`
	ActorID   string `json:"ActorID,omitempty"`
	Decision  string `json:"Decision,omitempty"`
	Reason    string `json:"Reason,omitempty"`
	RequestID string `json:"RequestID,omitempty"`
}

// Append writes an audit event to the outbox table.
func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	eventID := uuid.New()

	// Category derives from action - eventCategories is the source of truth
	category := AuditEvent(event.Action).Category()

	payload := outboxPayload{
		ID:        eventID.String(),
		Category:  string(category),
		Timestamp: event.Timestamp.Format(time.RFC3339Nano),
		Subject:   event.Subject,
		Action:    event.Action,
		EntityID:  event.EntityID.String(),
		ActorID:   event.ActorID.String(),
		Decision:  event.Decision,
		Reason:    event.Reason,
		RequestID: event.RequestID,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	const q = `
		INSERT INTO audit_outbox (id, category, subject, action, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := s.execer(ctx).ExecContext(ctx, q,
		eventID, string(category), event.Subject, event.Action, body, event.Timestamp,
	); err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

// ListBySubject returns the recorded events for one subject, oldest first.
func (s *PostgresStore) ListBySubject(ctx context.Context, subject string) ([]Event, error) {
	const q = `
		SELECT payload FROM audit_outbox
		WHERE subject = $1
		ORDER BY created_at ASC`
	rows, err := s.db.QueryContext(ctx, q, subject)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		var p outboxPayload
		if err := json.Unmarshal(body, &p); err != nil {
			return nil, fmt.Errorf("unmarshal audit payload: %w", err)
		}
		events = append(events, payloadToEvent(p))
	}
	return events, rows.Err()
}

func payloadToEvent(p outboxPayload) Event {
	ts, _ := time.Parse(time.RFC3339Nano, p.Timestamp)
	return Event{
		Timestamp: ts,
		Subject:   p.Subject,
		Action:    p.Action,
		EntityID:  id.EntityID(p.EntityID),
		ActorID:   id.StaffID(p.ActorID),
		Decision:  p.Decision,
		Reason:    p.Reason,
		RequestID: p.RequestID,
	}
}

// Schema is the DDL for the audit outbox table, applied by integration tests
// and deployment migrations.
const Schema = `
CREATE TABLE IF NOT EXISTS audit_outbox (
	id UUID PRIMARY KEY,
	category TEXT NOT NULL,
	subject TEXT NOT NULL,
	action TEXT NOT NULL,
	payload JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	published_at TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS audit_outbox_subject_idx ON audit_outbox (subject, created_at);
CREATE INDEX IF NOT EXISTS audit_outbox_unpublished_idx ON audit_outbox (created_at) WHERE published_at IS NULL;
`
