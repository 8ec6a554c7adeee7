package mysql

import (
	"context"
	_ "embed"
	"fmt"
)

//go:embed schema.sql
var schemaSQL string

// ApplySchema creates one database per namespace (static, player_info,
// match_info) and the dataset tables inside them.
func (m *Adapter) ApplySchema(ctx context.Context) error {
	if m.SQLSink == nil {
		return fmt.Errorf("not connected")
	}
	return m.ExecScript(ctx, schemaSQL)
}
