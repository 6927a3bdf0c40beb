package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupSQLite(t *testing.T) *SQL {
	s, err := NewSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.RunMigrations())
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLite(t *testing.T) {
	exerciseKV(t, setupSQLite(t))
}

func TestSQLite_UpsertKeepsOneRow(t *testing.T) {
	s := setupSQLite(t)
	ctx := context.Background()

	first := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s.now = func() time.Time { return first }
	require.NoError(t, s.Set(ctx, "k", []byte("v1")))

	s.now = func() time.Time { return first.Add(time.Hour) }
	require.NoError(t, s.Set(ctx, "k", []byte("v2")))

	var count int
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM cart_state`).Scan(&count))
	assert.Equal(t, 1, count)

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v2", string(got))
}

func TestSQLite_MigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cart.db")

	s, err := NewSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.RunMigrations())
	require.NoError(t, s.Set(context.Background(), "k", []byte("kept")))
	require.NoError(t, s.Close())

	reopened, err := NewSQLite(path)
	require.NoError(t, err)
	defer reopened.Close()
	require.NoError(t, reopened.RunMigrations())

	got, err := reopened.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, "kept", string(got))
}

func TestOpen_SQLiteAndMemory(t *testing.T) {
	ctx := context.Background()

	kv, err := Open(ctx, Options{Backend: BackendSQLite, SQLitePath: filepath.Join(t.TempDir(), "open.db")})
	require.NoError(t, err)
	_, isSQL := kv.(*SQL)
	assert.True(t, isSQL)
	require.NoError(t, kv.Close())

	kv, err = Open(ctx, Options{Backend: BackendMemory})
	require.NoError(t, err)
	_, isMemory := kv.(*Memory)
	assert.True(t, isMemory)
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), Options{Backend: "etcd"})
	assert.ErrorContains(t, err, `unknown storage backend "etcd"`)
}

func TestPostgres(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	kv, err := Open(ctx, Options{Backend: BackendPostgres, PostgresDSN: dsn})
	require.NoError(t, err)
	defer kv.Close()

	exerciseKV(t, kv)
}
