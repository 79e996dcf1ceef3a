// Package storetest provides databases for tests: an in-memory SQLite store
// and a shared PostgreSQL container.
package storetest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/JonMunkholm/csvport/internal/config"
	"github.com/JonMunkholm/csvport/internal/store"
)

var (
	pgOnce sync.Once
	pgDSN  string
	pgErr  error
)

// SQLite returns a migrated in-memory store closed when the test ends.
func SQLite(t testing.TB) *store.Store {
	t.Helper()
	ctx := context.Background()

	st, err := store.OpenSQLite(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	require.NoError(t, store.Migrate(ctx, st.DB))
	return st
}

// Postgres returns a migrated, emptied store backed by a PostgreSQL
// container shared by every test in the binary. Tests using it must not
// run in parallel. It skips under -short.
//
// The container is removed by the testcontainers reaper when the test
// binary exits.
func Postgres(t testing.TB) *store.Store {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping PostgreSQL integration test in short mode")
	}
	ctx := context.Background()

	pgOnce.Do(func() {
		container, err := postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("csvport"),
			postgres.WithUsername("postgres"),
			postgres.WithPassword("postgres"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2),
			),
		)
		if err != nil {
			pgErr = err
			return
		}
		pgDSN, pgErr = container.ConnectionString(ctx, "sslmode=disable")
	})
	require.NoError(t, pgErr)

	st, err := store.OpenPostgres(ctx, config.DatabaseConfig{
		Driver:          config.DriverPostgres,
		URL:             pgDSN,
		MaxConns:        4,
		MinConns:        1,
		MaxConnLifetime: time.Hour,
		MaxConnIdleTime: time.Minute,
	})
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	require.NoError(t, store.Migrate(ctx, st.DB))
	require.NoError(t, store.Reset(ctx, st.DB))
	return st
}
