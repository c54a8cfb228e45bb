package generated

import (
	"context"
	"sync"

	"nestly/internal/agreement"
	id "nestly/pkg/domain"
	"nestly/pkg/platform/sentinel"
)

// InMemoryStore holds generated agreements in process memory.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[id.AgreementID]*agreement.GeneratedAgreement
}

func NewMemory() *InMemoryStore {
	return &InMemoryStore{
		records: make(map[id.AgreementID]*agreement.GeneratedAgreement),
	}
}

func (s *InMemoryStore) Create(_ context.Context, rec *agreement.GeneratedAgreement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[rec.ID]; exists {
		return sentinel.ErrConflict
	}
	cp := *rec
	s.records[rec.ID] = &cp
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, agreementID id.AgreementID) (*agreement.GeneratedAgreement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[agreementID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (s *InMemoryStore) Update(_ context.Context, rec *agreement.GeneratedAgreement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[rec.ID]; !ok {
		return sentinel.ErrNotFound
	}
	cp := *rec
	s.records[rec.ID] = &cp
	return nil
}
