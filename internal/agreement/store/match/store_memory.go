package match

import (
	"context"
	"sync"

	"nestly/internal/domain"
	id "nestly/pkg/domain"
	"nestly/pkg/platform/sentinel"
)

// InMemoryStore holds match snapshots in process memory. Matches are owned by
// the marketplace; this store exists for tests and single-node demos where no
// marketplace database is wired in.
type InMemoryStore struct {
	mu      sync.RWMutex
	matches map[id.MatchID]*domain.Match
}

func NewMemory() *InMemoryStore {
	return &InMemoryStore{matches: make(map[id.MatchID]*domain.Match)}
}

// Put inserts or replaces a match snapshot.
func (s *InMemoryStore) Put(_ context.Context, m *domain.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *m
	s.matches[m.ID] = &cp
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, matchID id.MatchID) (*domain.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.matches[matchID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *m
	return &cp, nil
}
