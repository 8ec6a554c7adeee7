package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Lumos-Labs-HQ/dotaseed/internal/database/common"
	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

type Adapter struct {
	pool *pgxpool.Pool
	qb   squirrel.StatementBuilderType
}

func New() *Adapter {
	return &Adapter{
		qb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (p *Adapter) Connect(ctx context.Context, url string) error {
	config, err := pgxpool.ParseConfig(url)
	if err != nil {
		return fmt.Errorf("failed to parse connection URL: %w", err)
	}

	config.MaxConns = 2
	config.MinConns = 0
	config.MaxConnLifetime = 15 * time.Minute
	config.MaxConnIdleTime = 3 * time.Minute
	config.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}

	p.pool = pool
	return nil
}

func (p *Adapter) Close() error {
	if p.pool != nil {
		p.pool.Close()
	}
	return nil
}

func (p *Adapter) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Upsert queues one INSERT ... ON CONFLICT DO NOTHING per row in a single
// batch inside a transaction, and returns how many rows were written.
func (p *Adapter) Upsert(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if err := common.ValidateColumns(columns); err != nil {
		return 0, err
	}
	name, err := quoteTable(table)
	if err != nil {
		return 0, err
	}

	query, _, err := p.qb.Insert(name).
		Columns(quoteAll(columns)...).
		Values(make([]any, len(columns))...).
		Suffix("ON CONFLICT DO NOTHING").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build insert for %s: %w", table, err)
	}

	batch := &pgx.Batch{}
	for i, row := range rows {
		if len(row) != len(columns) {
			return 0, fmt.Errorf("row %d of %s has %d values, want %d", i, table, len(row), len(columns))
		}
		batch.Queue(query, row...)
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	results := tx.SendBatch(ctx, batch)
	var inserted int64
	for i := range rows {
		tag, err := results.Exec()
		if err != nil {
			results.Close()
			return 0, fmt.Errorf("row %d of %s: %w", i, table, err)
		}
		inserted += tag.RowsAffected()
	}
	if err := results.Close(); err != nil {
		return 0, fmt.Errorf("failed to flush batch for %s: %w", table, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit %s: %w", table, err)
	}
	return inserted, nil
}

func (p *Adapter) Query(ctx context.Context, q common.ReadQuery) ([]int64, error) {
	if err := common.ValidateColumns([]string{q.Column}); err != nil {
		return nil, err
	}
	name, err := quoteTable(q.Table)
	if err != nil {
		return nil, err
	}

	column := pq.QuoteIdentifier(q.Column)
	builder := p.qb.Select(column).From(name).Where(squirrel.NotEq{column: nil})
	if len(q.Filter) > 0 {
		filter := squirrel.Eq{}
		for col, v := range q.Filter {
			if err := common.ValidateColumns([]string{col}); err != nil {
				return nil, err
			}
			filter[pq.QuoteIdentifier(col)] = v
		}
		builder = builder.Where(filter)
	}
	if q.RandomOrder {
		builder = builder.OrderBy("RANDOM()")
	}
	if q.Limit > 0 {
		builder = builder.Limit(q.Limit)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s.%s: %w", q.Table, q.Column, err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s.%s: %w", q.Table, q.Column, err)
	}
	return ids, nil
}

func (p *Adapter) StatDurations(ctx context.Context) ([]common.StatDuration, error) {
	stats, err := quoteTable(common.PlayerMatchStats.Name)
	if err != nil {
		return nil, err
	}
	matches, err := quoteTable(common.Matches.Name)
	if err != nil {
		return nil, err
	}

	query, args, err := p.qb.Select("stat.stat_id", "m.duration").
		From(stats + " AS stat").
		Join(matches + " AS m ON stat.match_id = m.match_id").
		OrderBy("stat.stat_id").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query stat durations: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (common.StatDuration, error) {
		var sd common.StatDuration
		var statID int64
		var duration int32
		err := row.Scan(&statID, &duration)
		sd.StatID, sd.Duration = statID, int(duration)
		return sd, err
	})
}

func (p *Adapter) Count(ctx context.Context, table string) (int64, error) {
	name, err := quoteTable(table)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := p.pool.QueryRow(ctx, "SELECT COUNT(*) FROM "+name).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return n, nil
}

func (p *Adapter) Delete(ctx context.Context, table string) error {
	name, err := quoteTable(table)
	if err != nil {
		return err
	}
	query, args, err := p.qb.Delete(name).ToSql()
	if err != nil {
		return err
	}
	if _, err := p.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	return nil
}

func quoteAll(idents []string) []string {
	out := make([]string, len(idents))
	for i, ident := range idents {
		out[i] = pq.QuoteIdentifier(ident)
	}
	return out
}

func quoteTable(name string) (string, error) {
	schema, table, err := common.SplitName(name)
	if err != nil {
		return "", err
	}
	if schema == "" {
		return pq.QuoteIdentifier(table), nil
	}
	return pq.QuoteIdentifier(schema) + "." + pq.QuoteIdentifier(table), nil
}
