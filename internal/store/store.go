// Package store owns database access for csvport: connection setup for
// PostgreSQL and SQLite, schema creation, batched reads and bulk writes
// through bun, and the optional database-native bulk capability.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"

	"github.com/JonMunkholm/csvport/internal/config"
)

var (
	// ErrNativeUnsupported is returned when the storage engine has no
	// database-native bulk file I/O.
	ErrNativeUnsupported = errors.New("native bulk transfer is not supported by this storage engine")

	// ErrNotFound is returned by single-record lookups that match nothing.
	ErrNotFound = errors.New("record not found")
)

// NativeBulk is implemented by engines that can stream CSV in and out of
// the database themselves.
type NativeBulk interface {
	// CopyOut runs query and writes its rows to w as force-quoted CSV.
	CopyOut(ctx context.Context, w io.Writer, query string) (int64, error)

	// CopyIn loads CSV rows from r into a table. r must be positioned
	// after the header line.
	CopyIn(ctx context.Context, r io.Reader, in CopyIn) (int64, error)
}

// CopyIn describes a native load.
type CopyIn struct {
	Table   string
	Columns []string
	// ForceNull lists columns whose quoted empty values load as NULL.
	ForceNull []string
	// TimeZone is the zone used to interpret timestamps without an offset.
	TimeZone string
}

// Store wraps a bun database and the capabilities of its engine.
type Store struct {
	DB *bun.DB

	driver  string
	native  NativeBulk
	closeFn func()
}

// Open connects to the engine selected by cfg.Driver.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*Store, error) {
	switch strings.ToLower(cfg.Driver) {
	case config.DriverPostgres:
		return OpenPostgres(ctx, cfg)
	case config.DriverSQLite:
		return OpenSQLite(ctx, cfg.URL)
	default:
		return nil, fmt.Errorf("open store: unknown driver %q", cfg.Driver)
	}
}

// Driver returns the configured driver name.
func (s *Store) Driver() string {
	return s.driver
}

// Native returns the engine's bulk capability or ErrNativeUnsupported.
func (s *Store) Native() (NativeBulk, error) {
	if s.native == nil {
		return nil, ErrNativeUnsupported
	}
	return s.native, nil
}

// Close releases the database and any pool behind it.
func (s *Store) Close() error {
	err := s.DB.Close()
	if s.closeFn != nil {
		s.closeFn()
	}
	return err
}

func isPostgres(db bun.IDB) bool {
	return db.Dialect().Name() == dialect.PG
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
