package requestlog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"snapstudy/internal/domain"
	"snapstudy/internal/infra"
	"snapstudy/internal/sqlinline"
)

// Postgres is the durable sink, substituted for Memory when DATABASE_URL is
// configured. Same append-only contract, backed by a single table.
type Postgres struct {
	pool   *pgxpool.Pool
	logger infra.Logger
}

// NewPostgres migrates the request_log table and returns the sink.
func NewPostgres(ctx context.Context, pool *pgxpool.Pool, logger infra.Logger) (*Postgres, error) {
	if _, err := pool.Exec(ctx, sqlinline.QCreateRequestLog); err != nil {
		return nil, fmt.Errorf("requestlog: migrate: %w", err)
	}
	return &Postgres{pool: pool, logger: logger}, nil
}

func (p *Postgres) Record(ctx context.Context, entry domain.LogEntry) error {
	_, err := p.pool.Exec(ctx, sqlinline.QInsertRequestLog,
		entry.Time, entry.ClientID, entry.Country, entry.Topic, string(entry.Outcome), entry.Detail)
	if err != nil {
		p.logger.Error().Err(err).Str("client_id", entry.ClientID).Msg("requestlog: insert failed")
		return fmt.Errorf("requestlog: insert: %w", err)
	}
	return nil
}

func (p *Postgres) Recent(ctx context.Context, limit int) ([]domain.LogEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := p.pool.Query(ctx, sqlinline.QSelectRecentRequestLog, limit)
	if err != nil {
		return nil, fmt.Errorf("requestlog: select recent: %w", err)
	}
	defer rows.Close()

	var entries []domain.LogEntry
	for rows.Next() {
		var e domain.LogEntry
		var outcome string
		if err := rows.Scan(&e.Time, &e.ClientID, &e.Country, &e.Topic, &outcome, &e.Detail); err != nil {
			return nil, fmt.Errorf("requestlog: scan: %w", err)
		}
		e.Outcome = domain.Outcome(outcome)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (p *Postgres) Summary(ctx context.Context) (Summary, error) {
	var sum Summary
	row := p.pool.QueryRow(ctx, sqlinline.QRequestLogSummary)
	if err := row.Scan(&sum.Total, &sum.Succeeded, &sum.Failed); err != nil {
		return Summary{}, fmt.Errorf("requestlog: summary: %w", err)
	}
	return sum, nil
}

var _ Sink = (*Postgres)(nil)
