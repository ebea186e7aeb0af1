package registry

import (
	"context"
	"sync"

	id "regula/pkg/domain"
	"regula/pkg/platform/sentinel"
)

// InMemoryStore holds entities and document metadata behind one RWMutex.
// Reads return copies so callers can never mutate store state in place.
type InMemoryStore struct {
	mu        sync.RWMutex
	entities  map[id.EntityID]*Entity
	documents map[id.DocumentID]*Document
	// entityOrder preserves registration order for listings.
	entityOrder []id.EntityID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		entities:  make(map[id.EntityID]*Entity),
		documents: make(map[id.DocumentID]*Document),
	}
}

func (s *InMemoryStore) CreateEntity(_ context.Context, entity *Entity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.entities[entity.ID]; exists {
		return sentinel.ErrConflict
	}
	cp := *entity
	s.entities[entity.ID] = &cp
	s.entityOrder = append(s.entityOrder, entity.ID)
	return nil
}

func (s *InMemoryStore) FindEntity(_ context.Context, entityID id.EntityID) (*Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entity, ok := s.entities[entityID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *entity
	return &cp, nil
}

func (s *InMemoryStore) ListEntities(_ context.Context) ([]*Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Entity, 0, len(s.entityOrder))
	for _, entityID := range s.entityOrder {
		cp := *s.entities[entityID]
		out = append(out, &cp)
	}
	return out, nil
}

// UpdateEntityStatus is the registry's only post-intake entity mutation,
// used when an entity becomes licensed.
func (s *InMemoryStore) UpdateEntityStatus(_ context.Context, entityID id.EntityID, status EntityStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entity, ok := s.entities[entityID]
	if !ok {
		return sentinel.ErrNotFound
	}
	entity.Status = status
	return nil
}

func (s *InMemoryStore) CreateDocument(_ context.Context, doc *Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.documents[doc.ID]; exists {
		return sentinel.ErrConflict
	}
	cp := *doc
	s.documents[doc.ID] = &cp
	return nil
}

func (s *InMemoryStore) FindDocument(_ context.Context, docID id.DocumentID) (*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[docID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *doc
	return &cp, nil
}
