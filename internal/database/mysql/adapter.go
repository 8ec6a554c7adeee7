package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Lumos-Labs-HQ/dotaseed/internal/database/common"
	"github.com/Masterminds/squirrel"
	"github.com/go-sql-driver/mysql"
)

// Adapter writes to MySQL, where each dataset schema is a database of the
// same name. Rows colliding on a unique key are skipped.
type Adapter struct {
	*common.SQLSink
	dsn string
}

func New() *Adapter {
	return &Adapter{}
}

func (m *Adapter) Connect(ctx context.Context, url string) error {
	dsn, err := toDSN(url)
	if err != nil {
		return err
	}
	m.dsn = dsn

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return fmt.Errorf("failed to open MySQL connection: %w", err)
	}

	db.SetMaxOpenConns(2)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(3 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("failed to connect to MySQL: %w", err)
	}

	m.SQLSink = &common.SQLSink{
		DB:         db,
		QB:         squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
		TableName:  quoteTable,
		Quote:      quoteIdent,
		RandomFunc: "RAND()",
		Insert:     skipDuplicates,
	}
	return nil
}

func (m *Adapter) Close() error {
	if m.SQLSink != nil && m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

func (m *Adapter) Ping(ctx context.Context) error {
	if m.SQLSink == nil {
		return fmt.Errorf("not connected")
	}
	return m.DB.PingContext(ctx)
}

// toDSN accepts either a go-sql-driver DSN or a mysql:// URL.
func toDSN(url string) (string, error) {
	dsn := url
	if strings.HasPrefix(url, "mysql://") {
		dsn = strings.TrimPrefix(url, "mysql://")

		if atIndex := strings.Index(dsn, "@"); atIndex > 0 {
			credentials := dsn[:atIndex]
			remainder := dsn[atIndex+1:]

			if slashIndex := strings.Index(remainder, "/"); slashIndex > 0 {
				hostPort := remainder[:slashIndex]
				dbAndParams := remainder[slashIndex+1:]

				dbAndParams = strings.ReplaceAll(dbAndParams, "ssl-mode=REQUIRED", "tls=skip-verify")
				dbAndParams = strings.ReplaceAll(dbAndParams, "ssl-mode=DISABLED", "tls=false")
				dbAndParams = strings.ReplaceAll(dbAndParams, "sslmode=require", "tls=skip-verify")
				dbAndParams = strings.ReplaceAll(dbAndParams, "sslmode=disable", "tls=false")

				dsn = fmt.Sprintf("%s@tcp(%s)/%s", credentials, hostPort, dbAndParams)
			}
		}
	}

	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("failed to parse MySQL DSN: %w", err)
	}
	cfg.ParseTime = true
	return cfg.FormatDSN(), nil
}

// skipDuplicates turns a duplicate-key insert into a no-op update; foreign
// key and CHECK violations still fail. Without CLIENT_FOUND_ROWS the no-op
// affects 0 rows.
func skipDuplicates(b squirrel.InsertBuilder, columns []string) squirrel.InsertBuilder {
	first := quoteIdent(columns[0])
	return b.Suffix("ON DUPLICATE KEY UPDATE " + first + " = " + first)
}

func quoteIdent(ident string) string {
	return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
}

func quoteTable(name string) (string, error) {
	schema, table, err := common.SplitName(name)
	if err != nil {
		return "", err
	}
	if schema == "" {
		return quoteIdent(table), nil
	}
	return quoteIdent(schema) + "." + quoteIdent(table), nil
}
