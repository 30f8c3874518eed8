package jobs

import (
	"sync"
	"time"

	"snapstudy/internal/domain"
)

// Store holds jobs for the lifetime of the process, or until the retention
// sweep evicts terminal entries. Reads return value snapshots; mutation
// happens only through Update so the orchestrator keeps a single-writer
// discipline per job.
type Store interface {
	Create(job domain.Job)
	Get(id string) (domain.Job, error)
	Update(id string, fn func(*domain.Job)) error
	// SweepTerminal removes terminal jobs that terminated before cutoff and
	// returns how many were evicted.
	SweepTerminal(cutoff time.Time) int
}

// MemoryStore is the default in-memory job store.
type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[string]*domain.Job
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{jobs: make(map[string]*domain.Job)}
}

func (s *MemoryStore) Create(job domain.Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = &job
}

func (s *MemoryStore) Get(id string) (domain.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return domain.Job{}, domain.ErrNotFound
	}
	return *job, nil
}

func (s *MemoryStore) Update(id string, fn func(*domain.Job)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return domain.ErrNotFound
	}
	fn(job)
	return nil
}

func (s *MemoryStore) SweepTerminal(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	evicted := 0
	for id, job := range s.jobs {
		if !job.State.Terminal() || job.TerminatedAt == nil {
			continue
		}
		if job.TerminatedAt.Before(cutoff) {
			delete(s.jobs, id)
			evicted++
		}
	}
	return evicted
}

var _ Store = (*MemoryStore)(nil)
