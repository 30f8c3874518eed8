package requestlog

import (
	"context"
	"fmt"
	"testing"
	"time"

	"snapstudy/internal/domain"
)

func TestMemoryRecentNewestFirst(t *testing.T) {
	sink := NewMemory()
	ctx := context.Background()
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		err := sink.Record(ctx, domain.LogEntry{
			Time:     base.Add(time.Duration(i) * time.Minute),
			ClientID: "203.0.113.1",
			Topic:    fmt.Sprintf("topic-%d", i),
			Outcome:  domain.OutcomeSuccess,
		})
		if err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	entries, err := sink.Recent(ctx, 3)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("len = %d, want 3", len(entries))
	}
	for i, want := range []string{"topic-4", "topic-3", "topic-2"} {
		if entries[i].Topic != want {
			t.Fatalf("entries[%d].Topic = %q, want %q", i, entries[i].Topic, want)
		}
	}
}

func TestMemoryRecentLimitLargerThanLog(t *testing.T) {
	sink := NewMemory()
	ctx := context.Background()
	_ = sink.Record(ctx, domain.LogEntry{Topic: "only", Outcome: domain.OutcomeFailure})

	entries, err := sink.Recent(ctx, 100)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("len = %d, want 1", len(entries))
	}
}

func TestMemorySummaryCounts(t *testing.T) {
	sink := NewMemory()
	ctx := context.Background()
	outcomes := []domain.Outcome{
		domain.OutcomeSuccess,
		domain.OutcomeFailure,
		domain.OutcomeSuccess,
		domain.OutcomeFailure,
		domain.OutcomeFailure,
	}
	for _, o := range outcomes {
		_ = sink.Record(ctx, domain.LogEntry{Outcome: o})
	}

	sum, err := sink.Summary(ctx)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if sum.Total != 5 || sum.Succeeded != 2 || sum.Failed != 3 {
		t.Fatalf("summary = %+v, want total 5 / succeeded 2 / failed 3", sum)
	}
}
