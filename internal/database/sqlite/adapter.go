package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Lumos-Labs-HQ/dotaseed/internal/database/common"
	"github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

// Driver names registered by the two SQLite drivers.
const (
	DriverCGO    = "sqlite3" // github.com/mattn/go-sqlite3
	DriverPureGo = "sqlite"  // modernc.org/sqlite
)

type Adapter struct {
	*common.SQLSink
	driver string
	path   string
}

func New(driver string) *Adapter {
	if driver != DriverCGO {
		driver = DriverPureGo
	}
	return &Adapter{driver: driver}
}

func (s *Adapter) Connect(ctx context.Context, url string) error {
	dsn := strings.TrimPrefix(url, "sqlite://")
	s.path = dsn
	if idx := strings.Index(s.path, "?"); idx > 0 {
		s.path = s.path[:idx]
	}

	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	if s.driver == DriverCGO {
		dsn += sep + "_foreign_keys=on"
	} else {
		dsn += sep + "_pragma=foreign_keys(1)"
	}

	db, err := sql.Open(s.driver, dsn)
	if err != nil {
		return fmt.Errorf("failed to open SQLite connection: %w", err)
	}

	// One writer at a time.
	db.SetMaxOpenConns(1)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("failed to open %s: %w", s.path, err)
	}

	s.SQLSink = &common.SQLSink{
		DB:         db,
		QB:         squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
		TableName:  common.FlattenName,
		RandomFunc: "RANDOM()",
		Insert: func(b squirrel.InsertBuilder, columns []string) squirrel.InsertBuilder {
			return b.Suffix("ON CONFLICT DO NOTHING")
		},
	}
	return nil
}

func (s *Adapter) Close() error {
	if s.SQLSink != nil && s.DB != nil {
		return s.DB.Close()
	}
	return nil
}

func (s *Adapter) Ping(ctx context.Context) error {
	if s.SQLSink == nil {
		return fmt.Errorf("not connected")
	}
	return s.DB.PingContext(ctx)
}
