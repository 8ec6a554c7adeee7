package sqlite

import (
	"context"
	_ "embed"
	"fmt"
)

//go:embed schema.sql
var schemaSQL string

// ApplySchema creates the dataset tables, with schema.table flattened to schema_table.
func (s *Adapter) ApplySchema(ctx context.Context) error {
	if s.SQLSink == nil {
		return fmt.Errorf("not connected")
	}
	return s.ExecScript(ctx, schemaSQL)
}
