package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"regula/internal/application/models"
	id "regula/pkg/domain"
	"regula/pkg/platform/sentinel"
)

// Postgres persists applications as a JSONB document with extracted columns
// for the fields queries filter on. Execute uses SELECT ... FOR UPDATE so
// the validate-then-mutate window is exclusive per row.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Create(ctx context.Context, app *models.Application) error {
	body, err := json.Marshal(app)
	if err != nil {
		return fmt.Errorf("marshal application: %w", err)
	}
	const q = `
		INSERT INTO applications (id, entity_id, status, doc, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	if _, err := s.db.ExecContext(ctx, q,
		app.ID.String(), app.EntityID.String(), string(app.Status), body, app.SubmissionDate,
	); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create application: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, applicationID id.ApplicationID) (*models.Application, error) {
	const q = `SELECT doc FROM applications WHERE id = $1`
	return s.scanOne(s.db.QueryRowContext(ctx, q, applicationID.String()))
}

func (s *Postgres) List(ctx context.Context) ([]*models.Application, error) {
	const q = `SELECT doc FROM applications ORDER BY created_at ASC`
	return s.scanMany(ctx, q)
}

func (s *Postgres) ListByEntity(ctx context.Context, entityID id.EntityID) ([]*models.Application, error) {
	const q = `SELECT doc FROM applications WHERE entity_id = $1 ORDER BY created_at ASC`
	return s.scanMany(ctx, q, entityID.String())
}

// Execute atomically validates and mutates an application under a row lock.
func (s *Postgres) Execute(ctx context.Context, applicationID id.ApplicationID,
	validate func(*models.Application) error,
	mutate func(*models.Application),
) (*models.Application, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin application update: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const selectQ = `SELECT doc FROM applications WHERE id = $1 FOR UPDATE`
	app, err := s.scanOne(tx.QueryRowContext(ctx, selectQ, applicationID.String()))
	if err != nil {
		return nil, err
	}

	if err := validate(app); err != nil {
		return nil, err
	}
	mutate(app)

	body, err := json.Marshal(app)
	if err != nil {
		return nil, fmt.Errorf("marshal application: %w", err)
	}
	const updateQ = `UPDATE applications SET status = $2, doc = $3 WHERE id = $1`
	if _, err := tx.ExecContext(ctx, updateQ, app.ID.String(), string(app.Status), body); err != nil {
		return nil, fmt.Errorf("update application: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit application update: %w", err)
	}
	return app, nil
}

func (s *Postgres) scanOne(row *sql.Row) (*models.Application, error) {
	var body []byte
	if err := row.Scan(&body); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan application: %w", err)
	}
	var app models.Application
	if err := json.Unmarshal(body, &app); err != nil {
		return nil, fmt.Errorf("unmarshal application: %w", err)
	}
	return &app, nil
}

func (s *Postgres) scanMany(ctx context.Context, q string, args ...any) ([]*models.Application, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	apps := make([]*models.Application, 0)
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}
		var app models.Application
		if err := json.Unmarshal(body, &app); err != nil {
			return nil, fmt.Errorf("unmarshal application: %w", err)
		}
		apps = append(apps, &app)
	}
	return apps, rows.Err()
}

// Schema is the DDL for the applications table, applied by integration tests
// and deployment migrations.
const Schema = `
CREATE TABLE IF NOT EXISTS applications (
	id TEXT PRIMARY KEY,
	entity_id TEXT NOT NULL,
	status TEXT NOT NULL,
	doc JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS applications_entity_idx ON applications (entity_id);
`
