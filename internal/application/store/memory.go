// Package store provides application persistence. InMemory is the default;
// Postgres backs multi-instance deployments.
package store

import (
	"context"
	"sync"

	"regula/internal/application/models"
	"regula/internal/screening"
	id "regula/pkg/domain"
	"regula/pkg/platform/sentinel"
)

// InMemory is a mutex-guarded application store. Reads return copies; writes
// go through Create or Execute so callers never share aggregate pointers.
type InMemory struct {
	mu           sync.RWMutex
	applications map[id.ApplicationID]*models.Application
	order        []id.ApplicationID
}

func NewInMemory() *InMemory {
	return &InMemory{
		applications: make(map[id.ApplicationID]*models.Application),
	}
}

func (s *InMemory) Create(_ context.Context, app *models.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.applications[app.ID]; exists {
		return sentinel.ErrConflict
	}
	s.applications[app.ID] = cloneApplication(app)
	s.order = append(s.order, app.ID)
	return nil
}

func (s *InMemory) FindByID(_ context.Context, applicationID id.ApplicationID) (*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	app, ok := s.applications[applicationID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneApplication(app), nil
}

func (s *InMemory) List(_ context.Context) ([]*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Application, 0, len(s.order))
	for _, applicationID := range s.order {
		out = append(out, cloneApplication(s.applications[applicationID]))
	}
	return out, nil
}

func (s *InMemory) ListByEntity(_ context.Context, entityID id.EntityID) ([]*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Application, 0)
	for _, applicationID := range s.order {
		if s.applications[applicationID].EntityID == entityID {
			out = append(out, cloneApplication(s.applications[applicationID]))
		}
	}
	return out, nil
}

// Execute atomically validates and mutates an application. The lock is held
// for both callbacks, so a validated state cannot drift before the mutation
// lands. Returns a copy of the mutated application.
func (s *InMemory) Execute(_ context.Context, applicationID id.ApplicationID,
	validate func(*models.Application) error,
	mutate func(*models.Application),
) (*models.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.applications[applicationID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if err := validate(app); err != nil {
		return nil, err
	}
	mutate(app)
	return cloneApplication(app), nil
}

func cloneApplication(a *models.Application) *models.Application {
	copied := *a
	copied.AdditionalReviewerIDs = append([]id.StaffID(nil), a.AdditionalReviewerIDs...)
	copied.SupportingDocumentIDs = append([]id.DocumentID(nil), a.SupportingDocumentIDs...)
	copied.CommunicationLog = append([]models.CommunicationLogEntry(nil), a.CommunicationLog...)
	copied.GeneralNotes = append([]string(nil), a.GeneralNotes...)
	copied.SanctionScreening.ScreenedParties = append([]screening.Result(nil), a.SanctionScreening.ScreenedParties...)
	if a.ReviewDeadlineSLA != nil {
		d := *a.ReviewDeadlineSLA
		copied.ReviewDeadlineSLA = &d
	}
	if a.DecisionDate != nil {
		d := *a.DecisionDate
		copied.DecisionDate = &d
	}
	return &copied
}
