package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"regula/internal/action/models"
	id "regula/pkg/domain"
	"regula/pkg/platform/sentinel"
)

// Postgres persists actions as a JSONB document with extracted columns for
// the fields queries filter on. Execute uses SELECT ... FOR UPDATE so the
// validate-then-mutate window is exclusive per row.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Create(ctx context.Context, action *models.Action) error {
	body, err := json.Marshal(action)
	if err != nil {
		return fmt.Errorf("marshal action: %w", err)
	}
	const q = `
		INSERT INTO license_actions (id, license_id, status, doc, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	if _, err := s.db.ExecContext(ctx, q,
		action.ID.String(), action.LicenseID.String(),
		string(action.Status), body, action.CreationDate,
	); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create action: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, actionID id.ActionID) (*models.Action, error) {
	const q = `SELECT doc FROM license_actions WHERE id = $1`
	return s.scanOne(s.db.QueryRowContext(ctx, q, actionID.String()))
}

func (s *Postgres) List(ctx context.Context) ([]*models.Action, error) {
	const q = `SELECT doc FROM license_actions ORDER BY created_at ASC`
	return s.scanMany(ctx, q)
}

func (s *Postgres) ListByLicense(ctx context.Context, licenseID id.LicenseID) ([]*models.Action, error) {
	const q = `SELECT doc FROM license_actions WHERE license_id = $1 ORDER BY created_at ASC`
	return s.scanMany(ctx, q, licenseID.String())
}

// Execute atomically validates and mutates an action under a row lock.
func (s *Postgres) Execute(ctx context.Context, actionID id.ActionID,
	validate func(*models.Action) error,
	mutate func(*models.Action),
) (*models.Action, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin action update: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const selectQ = `SELECT doc FROM license_actions WHERE id = $1 FOR UPDATE`
	action, err := s.scanOne(tx.QueryRowContext(ctx, selectQ, actionID.String()))
	if err != nil {
		return nil, err
	}

	if err := validate(action); err != nil {
		return nil, err
	}
	mutate(action)

	body, err := json.Marshal(action)
	if err != nil {
		return nil, fmt.Errorf("marshal action: %w", err)
	}
	const updateQ = `UPDATE license_actions SET status = $2, doc = $3 WHERE id = $1`
	if _, err := tx.ExecContext(ctx, updateQ, action.ID.String(), string(action.Status), body); err != nil {
		return nil, fmt.Errorf("update action: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit action update: %w", err)
	}
	return action, nil
}

func (s *Postgres) scanOne(row *sql.Row) (*models.Action, error) {
	var body []byte
	if err := row.Scan(&body); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan action: %w", err)
	}
	var action models.Action
	if err := json.Unmarshal(body, &action); err != nil {
		return nil, fmt.Errorf("unmarshal action: %w", err)
	}
	return &action, nil
}

func (s *Postgres) scanMany(ctx context.Context, q string, args ...any) ([]*models.Action, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list actions: %w", err)
	}
	defer rows.Close()

	actions := make([]*models.Action, 0)
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scan action: %w", err)
		}
		var action models.Action
		if err := json.Unmarshal(body, &action); err != nil {
			return nil, fmt.Errorf("unmarshal action: %w", err)
		}
		actions = append(actions, &action)
	}
	return actions, rows.Err()
}

// Schema is the DDL for the license_actions table, applied by integration
// tests and deployment migrations.
const Schema = `
CREATE TABLE IF NOT EXISTS license_actions (
	id TEXT PRIMARY KEY,
	license_id TEXT NOT NULL,
	status TEXT NOT NULL,
	doc JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS license_actions_license_idx ON license_actions (license_id);
`
