// Package quota tracks per-client daily usage of the generation service.
package quota

import (
	"sync"
	"time"
)

// record tracks usage for a single client. Each record carries its own lock
// so clients never contend with each other.
type record struct {
	mu    sync.Mutex
	day   string
	count int
}

// Limiter enforces a fixed number of generations per client per UTC day.
// The quota renews at UTC midnight regardless of the caller's timezone.
type Limiter struct {
	limit int
	now   func() time.Time

	mu      sync.RWMutex
	records map[string]*record
}

// NewLimiter returns a limiter allowing limit consumptions per client per day.
func NewLimiter(limit int) *Limiter {
	return &Limiter{
		limit:   limit,
		now:     time.Now,
		records: make(map[string]*record),
	}
}

// Limit returns the configured daily limit.
func (l *Limiter) Limit() int {
	return l.limit
}

// TryConsume attempts to use one unit of the client's daily quota. It returns
// false, without mutating any state, once the client has exhausted its quota
// for the current UTC day.
func (l *Limiter) TryConsume(clientID string) bool {
	rec := l.record(clientID)
	today := l.today()

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.day != today {
		rec.day = today
		rec.count = 0
	}
	if rec.count >= l.limit {
		return false
	}
	rec.count++
	return true
}

// Remaining reports how many consumptions the client has left today.
func (l *Limiter) Remaining(clientID string) int {
	rec := l.record(clientID)
	today := l.today()

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.day != today {
		return l.limit
	}
	if rec.count >= l.limit {
		return 0
	}
	return l.limit - rec.count
}

func (l *Limiter) today() string {
	return l.now().UTC().Format("2006-01-02")
}

func (l *Limiter) record(clientID string) *record {
	l.mu.RLock()
	rec, ok := l.records[clientID]
	l.mu.RUnlock()
	if ok {
		return rec
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if rec, ok := l.records[clientID]; ok {
		return rec
	}
	rec = &record{}
	l.records[clientID] = rec
	return rec
}
