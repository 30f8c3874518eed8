package quota

import (
	"sync"
	"testing"
	"time"
)

func TestTryConsumeDeniesAtLimit(t *testing.T) {
	l := NewLimiter(3)
	for i := 0; i < 3; i++ {
		if !l.TryConsume("client-a") {
			t.Fatalf("consume %d denied, want allowed", i+1)
		}
	}
	for i := 0; i < 5; i++ {
		if l.TryConsume("client-a") {
			t.Fatalf("consume after limit allowed, want denied")
		}
	}
	if got := l.Remaining("client-a"); got != 0 {
		t.Fatalf("Remaining = %d, want 0", got)
	}
}

func TestTryConsumeResetsOnUTCDayRollover(t *testing.T) {
	l := NewLimiter(1)
	current := time.Date(2026, 3, 14, 23, 59, 0, 0, time.UTC)
	l.now = func() time.Time { return current }

	if !l.TryConsume("client-a") {
		t.Fatalf("first consume denied")
	}
	if l.TryConsume("client-a") {
		t.Fatalf("second consume allowed on same day")
	}

	current = current.Add(2 * time.Minute) // crosses UTC midnight
	if !l.TryConsume("client-a") {
		t.Fatalf("consume denied after day rollover")
	}
}

func TestRemainingDoesNotConsume(t *testing.T) {
	l := NewLimiter(3)
	for i := 0; i < 10; i++ {
		if got := l.Remaining("client-a"); got != 3 {
			t.Fatalf("Remaining = %d, want 3", got)
		}
	}
	if !l.TryConsume("client-a") {
		t.Fatalf("consume denied")
	}
	if got := l.Remaining("client-a"); got != 2 {
		t.Fatalf("Remaining = %d, want 2", got)
	}
}

func TestClientsDoNotInterfere(t *testing.T) {
	l := NewLimiter(2)
	var wg sync.WaitGroup
	clients := []string{"a", "b", "c", "d"}
	allowed := make([]int, len(clients))
	for i, id := range clients {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			for n := 0; n < 20; n++ {
				if l.TryConsume(id) {
					allowed[i]++
				}
			}
		}(i, id)
	}
	wg.Wait()
	for i, id := range clients {
		if allowed[i] != 2 {
			t.Fatalf("client %s allowed %d, want 2", id, allowed[i])
		}
	}
}

func TestConcurrentConsumeSameClient(t *testing.T) {
	l := NewLimiter(5)
	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.TryConsume("shared") {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if allowed != 5 {
		t.Fatalf("allowed = %d, want 5", allowed)
	}
}
