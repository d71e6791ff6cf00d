package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"AperoScanner/internal/domain"
	"AperoScanner/internal/ports"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// PostgresRepository persists processed events into Postgres.
type PostgresRepository struct {
	db *sql.DB
}

var _ ports.EventRepository = (*PostgresRepository)(nil)

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// AlreadyProcessed returns a map with event URLs that already exist in
// storage.
func (r *PostgresRepository) AlreadyProcessed(ctx context.Context, urls []string) (map[string]bool, error) {
	if r.db == nil || len(urls) == 0 {
		return map[string]bool{}, nil
	}

	query, args, err := psql.
		Select("url").
		From("processed_events").
		Where(sq.Expr("url = ANY(?)", pq.StringArray(urls))).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query processed: %w", err)
	}
	defer rows.Close()

	result := make(map[string]bool)
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("scan url: %w", err)
		}
		result[url] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return result, nil
}

// SaveProcessed upserts the processed event snapshot.
func (r *PostgresRepository) SaveProcessed(ctx context.Context, event domain.ProcessedEvent) error {
	if r.db == nil {
		return nil
	}

	query, args, err := psql.
		Insert("processed_events").
		Columns("url", "title", "event_date", "start_time", "end_time", "location", "summary", "status").
		Values(
			event.Event.URL,
			event.Event.Title,
			event.Event.Date,
			event.Event.StartTime,
			event.Event.EndTime,
			event.Event.Location,
			event.Event.Refreshments.Summary,
			event.Status,
		).
		Suffix(`ON CONFLICT (url) DO UPDATE
                SET title = EXCLUDED.title,
                    summary = EXCLUDED.summary,
                    status = EXCLUDED.status,
                    updated_at = NOW()`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert processed: %w", err)
	}

	return nil
}
