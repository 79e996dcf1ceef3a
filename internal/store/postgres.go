package store

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"github.com/JonMunkholm/csvport/internal/config"
	"github.com/JonMunkholm/csvport/internal/logging"
)

// OpenPostgres creates a pgx pool from cfg and exposes it to bun through
// database/sql. The pool also backs the COPY based native capability.
func OpenPostgres(ctx context.Context, cfg config.DatabaseConfig) (*Store, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logging.FromContext(ctx).Info("database connection pool established",
		"max_conns", poolConfig.MaxConns,
		"min_conns", poolConfig.MinConns,
	)

	sqldb := stdlib.OpenDBFromPool(pool)
	return &Store{
		DB:      bun.NewDB(sqldb, pgdialect.New()),
		driver:  config.DriverPostgres,
		native:  &PostgresBulk{pool: pool},
		closeFn: pool.Close,
	}, nil
}

// PostgresBulk streams CSV through COPY on a pooled connection.
type PostgresBulk struct {
	pool *pgxpool.Pool
}

// CopyOut implements NativeBulk.
func (b *PostgresBulk) CopyOut(ctx context.Context, w io.Writer, query string) (int64, error) {
	conn, err := b.pool.Acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	stmt := "COPY (" + query + ") TO STDOUT WITH (FORMAT csv, FORCE_QUOTE *)"
	tag, err := conn.Conn().PgConn().CopyTo(ctx, w, stmt)
	if err != nil {
		return 0, fmt.Errorf("copy out: %w", err)
	}
	return tag.RowsAffected(), nil
}

// CopyIn implements NativeBulk. The load, the session time zone and the id
// sequence resync share one transaction.
func (b *PostgresBulk) CopyIn(ctx context.Context, r io.Reader, in CopyIn) (int64, error) {
	tx, err := b.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if in.TimeZone != "" {
		if _, err := tx.Exec(ctx, "SET LOCAL TIME ZONE "+quoteLiteral(in.TimeZone)); err != nil {
			return 0, fmt.Errorf("set time zone: %w", err)
		}
	}

	tag, err := tx.Conn().PgConn().CopyFrom(ctx, r, copyInStatement(in))
	if err != nil {
		return 0, fmt.Errorf("copy in: %w", err)
	}

	if _, err := tx.Exec(ctx, resyncStatement(in.Table)); err != nil {
		return 0, fmt.Errorf("resync %s id sequence: %w", in.Table, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return tag.RowsAffected(), nil
}

func copyInStatement(in CopyIn) string {
	opts := "FORMAT csv"
	if len(in.ForceNull) > 0 {
		opts += ", FORCE_NULL (" + identList(in.ForceNull) + ")"
	}
	return fmt.Sprintf("COPY %s (%s) FROM STDIN WITH (%s)",
		pgx.Identifier{in.Table}.Sanitize(), identList(in.Columns), opts)
}

func resyncStatement(table string) string {
	return fmt.Sprintf(
		"SELECT setval(pg_get_serial_sequence(%s, 'id'), COALESCE((SELECT MAX(id) FROM %s), 0) + 1, false)",
		quoteLiteral(table), pgx.Identifier{table}.Sanitize())
}

func identList(cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = pgx.Identifier{c}.Sanitize()
	}
	return strings.Join(quoted, ", ")
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// ResyncIDs moves a PostgreSQL id sequence past the largest stored id so
// later inserts do not collide with explicitly imported ids. It is a no-op
// on other engines.
func ResyncIDs(ctx context.Context, db bun.IDB, table string) error {
	if !isPostgres(db) {
		return nil
	}
	if _, err := db.ExecContext(ctx, resyncStatement(table)); err != nil {
		return fmt.Errorf("resync %s id sequence: %w", table, err)
	}
	return nil
}
