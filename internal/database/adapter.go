package database

import (
	"context"

	"github.com/Lumos-Labs-HQ/dotaseed/internal/database/common"
)

// Sink is the storage side of the seeder: bulk upserts that skip unique-key
// conflicts plus the read-backs needed to reference already persisted rows.
type Sink interface {
	Connect(ctx context.Context, url string) error
	Close() error
	Ping(ctx context.Context) error

	// Upsert inserts rows, silently skipping rows that collide on a unique
	// key, and reports how many were written.
	Upsert(ctx context.Context, table string, columns []string, rows [][]any) (int64, error)
	Query(ctx context.Context, q common.ReadQuery) ([]int64, error)
	StatDurations(ctx context.Context) ([]common.StatDuration, error)

	Count(ctx context.Context, table string) (int64, error)
	Delete(ctx context.Context, table string) error
}

// SchemaApplier is implemented by sinks that can create the dataset tables.
type SchemaApplier interface {
	ApplySchema(ctx context.Context) error
}
