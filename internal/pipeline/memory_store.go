package pipeline

import (
	"context"
	"sync"

	"github.com/lucianareynaud/biogpt/internal/domain"
)

// MemoryRunStore keeps run state in process memory. Suitable for a single
// instance; deployments with more than one replica should use the Redis
// store so status polling can hit any instance.
type MemoryRunStore struct {
	mu   sync.RWMutex
	runs map[string]*domain.ProcessingRun
}

func NewMemoryRunStore() *MemoryRunStore {
	return &MemoryRunStore{runs: make(map[string]*domain.ProcessingRun)}
}

func (s *MemoryRunStore) Get(_ context.Context, runID string) (*domain.ProcessingRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[runID]
	if !ok {
		return nil, domain.ErrRunNotFound
	}
	return run.Clone(), nil
}

func (s *MemoryRunStore) Put(_ context.Context, run *domain.ProcessingRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs[run.ID] = run.Clone()
	return nil
}

func (s *MemoryRunStore) Delete(_ context.Context, runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.runs, runID)
	return nil
}
