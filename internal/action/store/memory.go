// Package store provides license action persistence.
package store

import (
	"context"
	"sync"

	"regula/internal/action/models"
	id "regula/pkg/domain"
	"regula/pkg/platform/sentinel"
)

// InMemory is a mutex-guarded action store. Reads return copies; writes go
// through Create or Execute so callers never share aggregate pointers.
type InMemory struct {
	mu      sync.RWMutex
	actions map[id.ActionID]*models.Action
	order   []id.ActionID
}

func NewInMemory() *InMemory {
	return &InMemory{
		actions: make(map[id.ActionID]*models.Action),
	}
}

func (s *InMemory) Create(_ context.Context, action *models.Action) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.actions[action.ID]; exists {
		return sentinel.ErrConflict
	}
	s.actions[action.ID] = cloneAction(action)
	s.order = append(s.order, action.ID)
	return nil
}

func (s *InMemory) FindByID(_ context.Context, actionID id.ActionID) (*models.Action, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	action, ok := s.actions[actionID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneAction(action), nil
}

func (s *InMemory) List(_ context.Context) ([]*models.Action, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Action, 0, len(s.order))
	for _, actionID := range s.order {
		out = append(out, cloneAction(s.actions[actionID]))
	}
	return out, nil
}

func (s *InMemory) ListByLicense(_ context.Context, licenseID id.LicenseID) ([]*models.Action, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Action, 0)
	for _, actionID := range s.order {
		if s.actions[actionID].LicenseID == licenseID {
			out = append(out, cloneAction(s.actions[actionID]))
		}
	}
	return out, nil
}

// Execute atomically validates and mutates an action. The lock is held for
// both callbacks, so a validated state cannot drift before the mutation
// lands. Returns a copy of the mutated action.
func (s *InMemory) Execute(_ context.Context, actionID id.ActionID,
	validate func(*models.Action) error,
	mutate func(*models.Action),
) (*models.Action, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	action, ok := s.actions[actionID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if err := validate(action); err != nil {
		return nil, err
	}
	mutate(action)
	return cloneAction(action), nil
}

func cloneAction(a *models.Action) *models.Action {
	copied := *a
	copied.SupportingDocumentIDs = append([]id.DocumentID(nil), a.SupportingDocumentIDs...)
	copied.InternalReviewNotes = append([]models.Note(nil), a.InternalReviewNotes...)
	if a.Checklist != nil {
		copied.Checklist = make(map[string]bool, len(a.Checklist))
		for key, checked := range a.Checklist {
			copied.Checklist[key] = checked
		}
	}
	if a.DecisionDate != nil {
		d := *a.DecisionDate
		copied.DecisionDate = &d
	}
	if a.EffectiveDate != nil {
		d := *a.EffectiveDate
		copied.EffectiveDate = &d
	}
	return &copied
}
