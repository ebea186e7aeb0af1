// Package store provides license persistence. InMemory is the default;
// Postgres backs multi-instance deployments.
package store

import (
	"context"
	"sync"

	"regula/internal/license/models"
	id "regula/pkg/domain"
	"regula/pkg/platform/sentinel"
)

// InMemory is a mutex-guarded license store. Reads return copies; writes go
// through Create or Execute so callers never share aggregate pointers.
type InMemory struct {
	mu       sync.RWMutex
	licenses map[id.LicenseID]*models.License
	order    []id.LicenseID
}

func NewInMemory() *InMemory {
	return &InMemory{
		licenses: make(map[id.LicenseID]*models.License),
	}
}

func (s *InMemory) Create(_ context.Context, license *models.License) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.licenses[license.ID]; exists {
		return sentinel.ErrConflict
	}
	copied := cloneLicense(license)
	s.licenses[license.ID] = copied
	s.order = append(s.order, license.ID)
	return nil
}

func (s *InMemory) FindByID(_ context.Context, licenseID id.LicenseID) (*models.License, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	license, ok := s.licenses[licenseID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneLicense(license), nil
}

// FindByApplication returns the license granted for an application, if any.
func (s *InMemory) FindByApplication(_ context.Context, applicationID id.ApplicationID) (*models.License, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, licenseID := range s.order {
		if s.licenses[licenseID].ApplicationGranted == applicationID {
			return cloneLicense(s.licenses[licenseID]), nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) List(_ context.Context) ([]*models.License, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.License, 0, len(s.order))
	for _, licenseID := range s.order {
		out = append(out, cloneLicense(s.licenses[licenseID]))
	}
	return out, nil
}

func (s *InMemory) ListByEntity(_ context.Context, entityID id.EntityID) ([]*models.License, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.License, 0)
	for _, licenseID := range s.order {
		if s.licenses[licenseID].EntityID == entityID {
			out = append(out, cloneLicense(s.licenses[licenseID]))
		}
	}
	return out, nil
}

// Execute atomically validates and mutates a license. The lock is held for
// both callbacks, so a validated state cannot drift before the mutation
// lands. Returns a copy of the mutated license.
func (s *InMemory) Execute(_ context.Context, licenseID id.LicenseID,
	validate func(*models.License) error,
	mutate func(*models.License),
) (*models.License, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	license, ok := s.licenses[licenseID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if err := validate(license); err != nil {
		return nil, err
	}
	mutate(license)
	return cloneLicense(license), nil
}

func cloneLicense(l *models.License) *models.License {
	copied := *l
	copied.Renewal.Notes = append([]string(nil), l.Renewal.Notes...)
	copied.Renewal.DocumentIDs = append([]id.DocumentID(nil), l.Renewal.DocumentIDs...)
	if l.LastRenewalDate != nil {
		d := *l.LastRenewalDate
		copied.LastRenewalDate = &d
	}
	if l.Renewal.SubmissionDate != nil {
		d := *l.Renewal.SubmissionDate
		copied.Renewal.SubmissionDate = &d
	}
	if l.Renewal.LastUpdated != nil {
		d := *l.Renewal.LastUpdated
		copied.Renewal.LastUpdated = &d
	}
	return &copied
}
