package stores

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/colonyops/violations/internal/core/kv"
	"github.com/colonyops/violations/internal/data/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestKVStore(t *testing.T) *KVStore {
	t.Helper()
	database, err := db.Open(t.TempDir(), db.DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return NewKVStore(database)
}

func TestKVStore_SetAndGet(t *testing.T) {
	ctx := context.Background()
	store := newTestKVStore(t)

	type payload struct {
		Name  string `json:"name"`
		Value int    `json:"value"`
	}

	require.NoError(t, store.Set(ctx, "test-key", payload{Name: "hello", Value: 42}))

	var got payload
	require.NoError(t, store.Get(ctx, "test-key", &got))
	assert.Equal(t, "hello", got.Name)
	assert.Equal(t, 42, got.Value)
}

func TestKVStore_GetNotFound(t *testing.T) {
	ctx := context.Background()
	store := newTestKVStore(t)

	var v string
	err := store.Get(ctx, "nonexistent", &v)
	require.ErrorIs(t, err, kv.ErrNotFound)
	assert.False(t, errors.Is(err, sql.ErrNoRows))

	_, err = store.GetRaw(ctx, "nonexistent")
	require.ErrorIs(t, err, kv.ErrNotFound)
}

func TestKVStore_OverwriteKeepsCreatedAt(t *testing.T) {
	ctx := context.Background()
	store := newTestKVStore(t)

	t0 := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return t0 }
	require.NoError(t, store.Set(ctx, "k", "first"))

	store.now = func() time.Time { return t0.Add(time.Minute) }
	require.NoError(t, store.Set(ctx, "k", "second"))

	entry, err := store.GetRaw(ctx, "k")
	require.NoError(t, err)
	assert.JSONEq(t, `"second"`, string(entry.Value))
	assert.True(t, entry.CreatedAt.Equal(t0))
	assert.True(t, entry.UpdatedAt.Equal(t0.Add(time.Minute)))
}

func TestKVStore_DeleteHasListKeys(t *testing.T) {
	ctx := context.Background()
	store := newTestKVStore(t)

	for _, k := range []string{"b", "a", "c"} {
		require.NoError(t, store.Set(ctx, k, 1))
	}

	keys, err := store.ListKeys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, keys)

	require.NoError(t, store.Delete(ctx, "b"))
	require.NoError(t, store.Delete(ctx, "missing"))

	has, err := store.Has(ctx, "b")
	require.NoError(t, err)
	assert.False(t, has)

	has, err = store.Has(ctx, "a")
	require.NoError(t, err)
	assert.True(t, has)
}

func TestKVStore_SetRawMalformed(t *testing.T) {
	ctx := context.Background()
	store := newTestKVStore(t)

	require.NoError(t, store.SetRaw(ctx, "bad", []byte("{not json")))

	var v map[string]any
	err := store.Get(ctx, "bad", &v)
	require.Error(t, err)
	assert.False(t, kv.IsNotFound(err))

	entry, err := store.GetRaw(ctx, "bad")
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(entry.Value))
}

func TestIsCorruptionError(t *testing.T) {
	assert.False(t, IsCorruptionError(nil))
	assert.False(t, IsCorruptionError(errors.New("boom")))
	assert.True(t, IsCorruptionError(errors.New("database disk image is malformed")))
	assert.True(t, IsCorruptionError(errors.New("file is not a database")))
}

func TestRecoverFromCorruption(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, db.FileName)
	require.NoError(t, os.WriteFile(dbPath, []byte("garbage"), 0o600))
	require.NoError(t, os.WriteFile(dbPath+"-wal", []byte("wal"), 0o600))

	backup, err := RecoverFromCorruption(dir)
	require.NoError(t, err)
	require.NotEmpty(t, backup)

	_, err = os.Stat(dbPath)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(dbPath + "-wal")
	assert.True(t, os.IsNotExist(err))

	data, err := os.ReadFile(backup)
	require.NoError(t, err)
	assert.Equal(t, "garbage", string(data))

	database, err := db.Open(dir, db.DefaultOpenOptions())
	require.NoError(t, err)
	require.NoError(t, database.Close())
}

func TestRecoverFromCorruption_NothingToMove(t *testing.T) {
	backup, err := RecoverFromCorruption(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, backup)
}
