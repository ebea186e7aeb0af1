package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"regula/internal/license/models"
	id "regula/pkg/domain"
	"regula/pkg/platform/sentinel"
)

// Postgres persists licenses as a JSONB document with extracted columns for
// the fields queries filter on. Execute uses SELECT ... FOR UPDATE so the
// validate-then-mutate window is exclusive per row.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Create(ctx context.Context, license *models.License) error {
	body, err := json.Marshal(license)
	if err != nil {
		return fmt.Errorf("marshal license: %w", err)
	}
	const q = `
		INSERT INTO licenses (id, entity_id, application_id, status, doc, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := s.db.ExecContext(ctx, q,
		license.ID.String(), license.EntityID.String(), license.ApplicationGranted.String(),
		string(license.Status), body, license.StatusLastUpdated,
	); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create license: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, licenseID id.LicenseID) (*models.License, error) {
	const q = `SELECT doc FROM licenses WHERE id = $1`
	return s.scanOne(s.db.QueryRowContext(ctx, q, licenseID.String()))
}

func (s *Postgres) FindByApplication(ctx context.Context, applicationID id.ApplicationID) (*models.License, error) {
	const q = `SELECT doc FROM licenses WHERE application_id = $1 ORDER BY created_at ASC LIMIT 1`
	return s.scanOne(s.db.QueryRowContext(ctx, q, applicationID.String()))
}

func (s *Postgres) List(ctx context.Context) ([]*models.License, error) {
	const q = `SELECT doc FROM licenses ORDER BY created_at ASC`
	return s.scanMany(ctx, q)
}

func (s *Postgres) ListByEntity(ctx context.Context, entityID id.EntityID) ([]*models.License, error) {
	const q = `SELECT doc FROM licenses WHERE entity_id = $1 ORDER BY created_at ASC`
	return s.scanMany(ctx, q, entityID.String())
}

// Execute atomically validates and mutates a license under a row lock.
func (s *Postgres) Execute(ctx context.Context, licenseID id.LicenseID,
	validate func(*models.License) error,
	mutate func(*models.License),
) (*models.License, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin license update: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const selectQ = `SELECT doc FROM licenses WHERE id = $1 FOR UPDATE`
	license, err := s.scanOne(tx.QueryRowContext(ctx, selectQ, licenseID.String()))
	if err != nil {
		return nil, err
	}

	if err := validate(license); err != nil {
		return nil, err
	}
	mutate(license)

	body, err := json.Marshal(license)
	if err != nil {
		return nil, fmt.Errorf("marshal license: %w", err)
	}
	const updateQ = `UPDATE licenses SET status = $2, doc = $3 WHERE id = $1`
	if _, err := tx.ExecContext(ctx, updateQ, license.ID.String(), string(license.Status), body); err != nil {
		return nil, fmt.Errorf("update license: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit license update: %w", err)
	}
	return license, nil
}

func (s *Postgres) scanOne(row *sql.Row) (*models.License, error) {
	var body []byte
	if err := row.Scan(&body); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan license: %w", err)
	}
	var license models.License
	if err := json.Unmarshal(body, &license); err != nil {
		return nil, fmt.Errorf("unmarshal license: %w", err)
	}
	return &license, nil
}

func (s *Postgres) scanMany(ctx context.Context, q string, args ...any) ([]*models.License, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list licenses: %w", err)
	}
	defer rows.Close()

	licenses := make([]*models.License, 0)
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scan license: %w", err)
		}
		var license models.License
		if err := json.Unmarshal(body, &license); err != nil {
			return nil, fmt.Errorf("unmarshal license: %w", err)
		}
		licenses = append(licenses, &license)
	}
	return licenses, rows.Err()
}

// Schema is the DDL for the licenses table, applied by integration tests and
// deployment migrations.
const Schema = `
CREATE TABLE IF NOT EXISTS licenses (
	id TEXT PRIMARY KEY,
	entity_id TEXT NOT NULL,
	application_id TEXT NOT NULL,
	status TEXT NOT NULL,
	doc JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS licenses_entity_idx ON licenses (entity_id);
CREATE INDEX IF NOT EXISTS licenses_application_idx ON licenses (application_id);
`
