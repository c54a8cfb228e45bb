package template

import (
	"context"
	"sync"

	"nestly/internal/agreement"
	id "nestly/pkg/domain"
	"nestly/pkg/platform/sentinel"
)

// InMemoryStore holds templates in process memory. Used in tests and in
// single-node deployments without PostgreSQL; the seeded default template
// makes the engine usable out of the box.
type InMemoryStore struct {
	mu        sync.RWMutex
	templates map[id.TemplateID]*agreement.Template
}

func NewMemory() *InMemoryStore {
	return &InMemoryStore{
		templates: make(map[id.TemplateID]*agreement.Template),
	}
}

// Put inserts or replaces a template.
func (s *InMemoryStore) Put(_ context.Context, tpl *agreement.Template) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *tpl
	s.templates[tpl.ID] = &cp
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, templateID id.TemplateID) (*agreement.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tpl, ok := s.templates[templateID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *tpl
	return &cp, nil
}

// FindDefault returns the active system template with the highest version.
func (s *InMemoryStore) FindDefault(_ context.Context) (*agreement.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var best *agreement.Template
	for _, tpl := range s.templates {
		if !tpl.IsSystemTemplate || !tpl.IsActive {
			continue
		}
		if best == nil || tpl.Version > best.Version {
			best = tpl
		}
	}
	if best == nil {
		return nil, sentinel.ErrNotFound
	}
	cp := *best
	return &cp, nil
}
