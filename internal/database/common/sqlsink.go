package common

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
)

// SQLSink implements the bulk upsert and read-back operations on top of
// database/sql. Dialect differences are injected by the provider adapters.
type SQLSink struct {
	DB *sql.DB
	QB squirrel.StatementBuilderType

	// TableName maps a namespaced table name to the engine's identifier.
	TableName func(name string) (string, error)
	// Insert decorates the INSERT so that unique-key conflicts, and only
	// those, are skipped.
	Insert func(b squirrel.InsertBuilder, columns []string) squirrel.InsertBuilder
	// RandomFunc is the ORDER BY expression for random ordering.
	RandomFunc string
	// Quote quotes column identifiers; nil leaves them bare.
	Quote func(ident string) string
}

func (s *SQLSink) quote(ident string) string {
	if s.Quote == nil {
		return ident
	}
	return s.Quote(ident)
}

func (s *SQLSink) quoteAll(idents []string) []string {
	out := make([]string, len(idents))
	for i, ident := range idents {
		out[i] = s.quote(ident)
	}
	return out
}

// Upsert inserts rows in a single transaction, skipping rows that violate a
// unique constraint, and returns the number of rows actually written.
func (s *SQLSink) Upsert(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if err := ValidateColumns(columns); err != nil {
		return 0, err
	}
	name, err := s.TableName(table)
	if err != nil {
		return 0, err
	}

	query, _, err := s.Insert(s.QB.Insert(name).Columns(s.quoteAll(columns)...).Values(make([]any, len(columns))...), columns).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build insert for %s: %w", table, err)
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert for %s: %w", table, err)
	}
	defer stmt.Close()

	var inserted int64
	args := make([]any, len(columns))
	for i, row := range rows {
		if len(row) != len(columns) {
			return 0, fmt.Errorf("row %d of %s has %d values, want %d", i, table, len(row), len(columns))
		}
		for j, v := range row {
			if args[j], err = BindValue(v); err != nil {
				return 0, fmt.Errorf("row %d of %s: column %s: %w", i, table, columns[j], err)
			}
		}
		res, err := stmt.ExecContext(ctx, args...)
		if err != nil {
			return 0, fmt.Errorf("row %d of %s: %w", i, table, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		inserted += n
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit %s: %w", table, err)
	}
	return inserted, nil
}

// Query returns the non-null values of one integer column.
func (s *SQLSink) Query(ctx context.Context, q ReadQuery) ([]int64, error) {
	if err := ValidateColumns([]string{q.Column}); err != nil {
		return nil, err
	}
	name, err := s.TableName(q.Table)
	if err != nil {
		return nil, err
	}

	column := s.quote(q.Column)
	builder := s.QB.Select(column).From(name).Where(squirrel.NotEq{column: nil})
	if len(q.Filter) > 0 {
		filter := squirrel.Eq{}
		for col, v := range q.Filter {
			if err := ValidateColumns([]string{col}); err != nil {
				return nil, err
			}
			filter[s.quote(col)] = v
		}
		builder = builder.Where(filter)
	}
	if q.RandomOrder {
		builder = builder.OrderBy(s.RandomFunc)
	}
	if q.Limit > 0 {
		builder = builder.Limit(q.Limit)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s.%s: %w", q.Table, q.Column, err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// StatDurations joins every player_match_stat row with its match duration.
func (s *SQLSink) StatDurations(ctx context.Context) ([]StatDuration, error) {
	stats, err := s.TableName(PlayerMatchStats.Name)
	if err != nil {
		return nil, err
	}
	matches, err := s.TableName(Matches.Name)
	if err != nil {
		return nil, err
	}

	query, args, err := s.QB.Select("stat.stat_id", "m.duration").
		From(stats + " AS stat").
		Join(matches + " AS m ON stat.match_id = m.match_id").
		OrderBy("stat.stat_id").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query stat durations: %w", err)
	}
	defer rows.Close()

	var out []StatDuration
	for rows.Next() {
		var sd StatDuration
		if err := rows.Scan(&sd.StatID, &sd.Duration); err != nil {
			return nil, err
		}
		out = append(out, sd)
	}
	return out, rows.Err()
}

func (s *SQLSink) Count(ctx context.Context, table string) (int64, error) {
	name, err := s.TableName(table)
	if err != nil {
		return 0, err
	}
	query, args, err := s.QB.Select("COUNT(*)").From(name).ToSql()
	if err != nil {
		return 0, err
	}
	var n int64
	if err := s.DB.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return n, nil
}

func (s *SQLSink) Delete(ctx context.Context, table string) error {
	name, err := s.TableName(table)
	if err != nil {
		return err
	}
	query, args, err := s.QB.Delete(name).ToSql()
	if err != nil {
		return err
	}
	if _, err := s.DB.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	return nil
}

// ExecScript runs every statement of script inside one transaction.
func (s *SQLSink) ExecScript(ctx context.Context, script string) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range ParseSQLStatements(script) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute statement '%s': %w", stmt, err)
		}
	}
	return tx.Commit()
}
