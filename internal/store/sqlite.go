package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "modernc.org/sqlite"

	"github.com/JonMunkholm/csvport/internal/config"
)

// OpenSQLite opens a SQLite database at dsn (a file path or ":memory:").
// SQLite has no native bulk capability.
func OpenSQLite(ctx context.Context, dsn string) (*Store, error) {
	sqldb, err := sql.Open("sqlite", sqliteDSN(dsn))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One long-lived connection: in-memory databases are per connection and
	// SQLite serializes writers anyway.
	sqldb.SetMaxOpenConns(1)
	sqldb.SetMaxIdleConns(1)
	sqldb.SetConnMaxLifetime(0)

	if err := sqldb.PingContext(ctx); err != nil {
		sqldb.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &Store{
		DB:     bun.NewDB(sqldb, sqlitedialect.New()),
		driver: config.DriverSQLite,
	}, nil
}

// sqliteDSN adds the foreign_keys pragma to dsn. The driver applies DSN
// pragmas to every connection it opens.
func sqliteDSN(dsn string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)"
}
