package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"regula/internal/action/models"
	licmodels "regula/internal/license/models"
	id "regula/pkg/domain"
	"regula/pkg/platform/sentinel"
)

type InMemorySuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *InMemorySuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func TestInMemorySuite(t *testing.T) {
	suite.Run(t, new(InMemorySuite))
}

func (s *InMemorySuite) newAction(actionID id.ActionID, licenseID id.LicenseID) *models.Action {
	return &models.Action{
		ID:                    actionID,
		LicenseID:             licenseID,
		ActionType:            models.TypeSuspend,
		Status:                models.StatusDraft,
		OriginalLicenseStatus: licmodels.StatusActive,
		InitiatingStaffID:     "reg_001",
		CreationDate:          time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		Checklist:             models.NewChecklist(models.TypeSuspend),
	}
}

func (s *InMemorySuite) TestCreateAndFind() {
	s.Require().NoError(s.store.Create(s.ctx, s.newAction("LCA-001", "LIC-2026-0001")))

	found, err := s.store.FindByID(s.ctx, "LCA-001")
	s.Require().NoError(err)
	s.Equal(models.StatusDraft, found.Status)

	// Mutating the returned copy must not leak into the store.
	found.Checklist["item1"] = true
	found.InternalReviewNotes = append(found.InternalReviewNotes, models.Note{Text: "leak"})
	again, err := s.store.FindByID(s.ctx, "LCA-001")
	s.Require().NoError(err)
	s.False(again.Checklist["item1"])
	s.Empty(again.InternalReviewNotes)
}

func (s *InMemorySuite) TestCreateConflict() {
	action := s.newAction("LCA-001", "LIC-2026-0001")
	s.Require().NoError(s.store.Create(s.ctx, action))
	s.ErrorIs(s.store.Create(s.ctx, action), sentinel.ErrConflict)
}

func (s *InMemorySuite) TestListByLicense() {
	s.Require().NoError(s.store.Create(s.ctx, s.newAction("LCA-001", "LIC-2026-0001")))
	s.Require().NoError(s.store.Create(s.ctx, s.newAction("LCA-002", "LIC-2026-0002")))
	s.Require().NoError(s.store.Create(s.ctx, s.newAction("LCA-003", "LIC-2026-0001")))

	actions, err := s.store.ListByLicense(s.ctx, "LIC-2026-0001")
	s.Require().NoError(err)
	s.Require().Len(actions, 2)
	s.Equal(id.ActionID("LCA-001"), actions[0].ID)
	s.Equal(id.ActionID("LCA-003"), actions[1].ID)
}

func (s *InMemorySuite) TestExecuteRollsBackOnValidateError() {
	s.Require().NoError(s.store.Create(s.ctx, s.newAction("LCA-001", "LIC-2026-0001")))

	_, err := s.store.Execute(s.ctx, "LCA-001",
		func(*models.Action) error { return sentinel.ErrInvalidState },
		func(a *models.Action) { a.Status = models.StatusApproved },
	)
	s.ErrorIs(err, sentinel.ErrInvalidState)

	action, err := s.store.FindByID(s.ctx, "LCA-001")
	s.Require().NoError(err)
	s.Equal(models.StatusDraft, action.Status)
}

func (s *InMemorySuite) TestExecuteMissing() {
	_, err := s.store.Execute(s.ctx, "LCA-404",
		func(*models.Action) error { return nil },
		func(*models.Action) {},
	)
	s.ErrorIs(err, sentinel.ErrNotFound)
}
