package postgres

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/Lumos-Labs-HQ/dotaseed/internal/database/common"
)

//go:embed schema.sql
var schemaSQL string

// ApplySchema creates the static, player_info and match_info schemas and their tables.
func (p *Adapter) ApplySchema(ctx context.Context) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, stmt := range common.ParseSQLStatements(schemaSQL) {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute statement '%s': %w", stmt, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit schema transaction: %w", err)
	}
	return nil
}
