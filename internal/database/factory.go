package database

import (
	"context"
	"fmt"

	"github.com/Lumos-Labs-HQ/dotaseed/internal/database/mysql"
	"github.com/Lumos-Labs-HQ/dotaseed/internal/database/postgres"
	"github.com/Lumos-Labs-HQ/dotaseed/internal/database/sqlite"
)

func NewSink(provider string) (Sink, error) {
	switch provider {
	case "postgresql", "postgres":
		return postgres.New(), nil
	case "mysql":
		return mysql.New(), nil
	case "sqlite":
		return sqlite.New(sqlite.DriverPureGo), nil
	case "sqlite3":
		return sqlite.New(sqlite.DriverCGO), nil
	default:
		return nil, fmt.Errorf("unsupported database provider: %s", provider)
	}
}

// Open creates the sink for provider and connects it to url.
func Open(ctx context.Context, provider, url string) (Sink, error) {
	sink, err := NewSink(provider)
	if err != nil {
		return nil, err
	}
	if err := sink.Connect(ctx, url); err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", provider, err)
	}
	if err := sink.Ping(ctx); err != nil {
		sink.Close()
		return nil, fmt.Errorf("failed to ping %s: %w", provider, err)
	}
	return sink, nil
}
