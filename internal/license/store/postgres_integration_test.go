//go:build integration

package store_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"regula/internal/license/models"
	"regula/internal/license/store"
	id "regula/pkg/domain"
	"regula/pkg/platform/sentinel"
	"regula/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.Postgres
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.Require().NoError(s.postgres.ApplySchema(context.Background(), store.Schema))
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "licenses"))
}

func makeLicense(licenseID id.LicenseID, appID id.ApplicationID) *models.License {
	issued := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	return &models.License{
		ID:                 licenseID,
		LicenseNumber:      "PAY-2026-00001",
		EntityID:           "ent_001",
		ApplicationGranted: appID,
		LicenseType:        "Payment Institution",
		IssueDate:          issued,
		ExpiryDate:         issued.AddDate(1, 0, 0),
		NextRenewalDueDate: issued.AddDate(1, 0, -60),
		Status:             models.StatusActive,
		StatusLastUpdated:  issued,
		Renewal:            models.Renewal{Status: models.RenewalNotStarted},
	}
}

func (s *PostgresStoreSuite) TestCreateAndFind() {
	ctx := context.Background()
	s.Require().NoError(s.store.Create(ctx, makeLicense("LIC-2026-0001", "APP-2603-0001")))

	found, err := s.store.FindByID(ctx, "LIC-2026-0001")
	s.Require().NoError(err)
	s.Equal("PAY-2026-00001", found.LicenseNumber)
	s.Equal(models.StatusActive, found.Status)

	s.ErrorIs(s.store.Create(ctx, makeLicense("LIC-2026-0001", "APP-2603-0001")), sentinel.ErrConflict)
}

func (s *PostgresStoreSuite) TestFindByApplication() {
	ctx := context.Background()
	s.Require().NoError(s.store.Create(ctx, makeLicense("LIC-2026-0001", "APP-2603-0001")))

	found, err := s.store.FindByApplication(ctx, "APP-2603-0001")
	s.Require().NoError(err)
	s.Equal(id.LicenseID("LIC-2026-0001"), found.ID)

	_, err = s.store.FindByApplication(ctx, "APP-2603-0099")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestExecuteValidationRollback() {
	ctx := context.Background()
	s.Require().NoError(s.store.Create(ctx, makeLicense("LIC-2026-0001", "APP-2603-0001")))

	_, err := s.store.Execute(ctx, "LIC-2026-0001",
		func(l *models.License) error { return sentinel.ErrInvalidState },
		func(l *models.License) { l.Status = models.StatusRevoked },
	)
	s.ErrorIs(err, sentinel.ErrInvalidState)

	found, err := s.store.FindByID(ctx, "LIC-2026-0001")
	s.Require().NoError(err)
	s.Equal(models.StatusActive, found.Status)
}

// TestConcurrentExecute verifies the FOR UPDATE row lock serializes
// concurrent mutations without losing writes.
func (s *PostgresStoreSuite) TestConcurrentExecute() {
	ctx := context.Background()
	license := makeLicense("LIC-2026-0001", "APP-2603-0001")
	license.Renewal.Status = models.RenewalPendingSubmission
	s.Require().NoError(s.store.Create(ctx, license))

	const goroutines = 20
	var wg sync.WaitGroup
	var successCount atomic.Int32
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.store.Execute(ctx, "LIC-2026-0001",
				func(l *models.License) error { return nil },
				func(l *models.License) { l.Renewal.Notes = append(l.Renewal.Notes, "note") },
			)
			if err == nil {
				successCount.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(goroutines), successCount.Load())
	found, err := s.store.FindByID(ctx, "LIC-2026-0001")
	s.Require().NoError(err)
	s.Len(found.Renewal.Notes, goroutines)
}
