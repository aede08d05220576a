//go:build integration

package store_test

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"formstore/internal/database"
	"formstore/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupPostgresStore needs TEST_DATABASE_URL pointing at a disposable database.
func setupPostgresStore(t *testing.T) *store.PostgresStore {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	src, err := database.ParseURL(url)
	require.NoError(t, err)
	require.Equal(t, database.DriverPostgres, src.Driver)

	require.NoError(t, database.MigratePostgres(src))
	pool, err := database.Connection(context.Background(), src)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(context.Background(), `TRUNCATE forms`)
	require.NoError(t, err)

	return store.NewPostgresStore(pool, store.WithClock(steppingClock()))
}

func TestPostgresStore_Lifecycle(t *testing.T) {
	s := setupPostgresStore(t)
	ctx := context.Background()

	hello, err := s.Greet(ctx, "world")
	require.NoError(t, err)
	assert.Equal(t, "Hello world", hello)

	a, err := s.Save(ctx, "", json.RawMessage(`{"q":"x"}`))
	require.NoError(t, err)
	_, err = s.Save(ctx, "B", json.RawMessage(`[1,2]`))
	require.NoError(t, err)
	_, err = s.Save(ctx, a, json.RawMessage(`{"q":"y"}`))
	require.NoError(t, err)

	forms, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, forms, 2)
	assert.Equal(t, a, forms[0].UUID)
	assert.JSONEq(t, `{"q":"y"}`, string(forms[0].Data))

	_, err = s.DB.Exec(ctx, `INSERT INTO forms (uuid, data, updated_at) VALUES ('bad', 'not json', 'z')`)
	require.NoError(t, err)
	forms, err = s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, forms, 2)
	_, err = s.Get(ctx, "bad")
	assert.ErrorIs(t, err, store.ErrSerialization)

	require.NoError(t, s.Delete(ctx, a))
	_, err = s.Get(ctx, a)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, a), store.ErrNotFound)
}
