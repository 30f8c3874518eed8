// Package requestlog is the append-only record of finished generation
// attempts, consumed by the admin view.
package requestlog

import (
	"context"
	"sync"

	"snapstudy/internal/domain"
)

// Summary aggregates the log for the admin dashboard counters.
type Summary struct {
	Total     int64 `json:"total"`
	Succeeded int64 `json:"succeeded"`
	Failed    int64 `json:"failed"`
}

// Sink records terminated jobs. Record is called exactly once per job, at
// the moment it reaches a terminal state; entries are never edited or
// removed afterwards.
type Sink interface {
	Record(ctx context.Context, entry domain.LogEntry) error
	// Recent returns up to limit entries, most recent first.
	Recent(ctx context.Context, limit int) ([]domain.LogEntry, error)
	Summary(ctx context.Context) (Summary, error)
}

// Memory is the default in-process sink. Entries do not survive restarts.
type Memory struct {
	mu      sync.RWMutex
	entries []domain.LogEntry
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Record(ctx context.Context, entry domain.LogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return nil
}

func (m *Memory) Recent(ctx context.Context, limit int) ([]domain.LogEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if limit <= 0 || limit > len(m.entries) {
		limit = len(m.entries)
	}
	out := make([]domain.LogEntry, 0, limit)
	for i := len(m.entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.entries[i])
	}
	return out, nil
}

func (m *Memory) Summary(ctx context.Context) (Summary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sum := Summary{Total: int64(len(m.entries))}
	for _, e := range m.entries {
		if e.Outcome == domain.OutcomeSuccess {
			sum.Succeeded++
		} else {
			sum.Failed++
		}
	}
	return sum, nil
}

var _ Sink = (*Memory)(nil)
