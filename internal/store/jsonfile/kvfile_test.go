package jsonfile

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/violations/internal/core/kv"
)

func newTestStore(t *testing.T) *KVStore {
	t.Helper()
	return NewKVStore(filepath.Join(t.TempDir(), FileName), zerolog.Nop())
}

func TestKVStore_SetGet(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Set(ctx, "a", map[string]int{"n": 1}))

	var got map[string]int
	require.NoError(t, s.Get(ctx, "a", &got))
	assert.Equal(t, 1, got["n"])

	// a fresh handle on the same file sees the write
	other := NewKVStore(s.Path(), zerolog.Nop())
	has, err := other.Has(ctx, "a")
	require.NoError(t, err)
	assert.True(t, has)
}

func TestKVStore_MissingFile(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	keys, err := s.ListKeys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)

	var v string
	require.ErrorIs(t, s.Get(ctx, "nope", &v), kv.ErrNotFound)
	require.NoError(t, s.Delete(ctx, "nope"))

	_, err = os.Stat(s.Path())
	assert.True(t, os.IsNotExist(err), "delete of missing key must not create the file")
}

func TestKVStore_OverwriteKeepsCreatedAt(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	t0 := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return t0 }
	require.NoError(t, s.Set(ctx, "k", 1))
	s.now = func() time.Time { return t0.Add(time.Hour) }
	require.NoError(t, s.Set(ctx, "k", 2))

	e, err := s.GetRaw(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "2", string(e.Value))
	assert.True(t, e.CreatedAt.Equal(t0))
	assert.True(t, e.UpdatedAt.Equal(t0.Add(time.Hour)))
}

func TestKVStore_ListKeysSortedAndDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for _, k := range []string{"c", "a", "b"} {
		require.NoError(t, s.Set(ctx, k, k))
	}
	require.NoError(t, s.Delete(ctx, "b"))

	keys, err := s.ListKeys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, keys)
}

func TestKVStore_SetRawInvalidJSON(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.SetRaw(ctx, "bad", []byte("{oops")))

	e, err := s.GetRaw(ctx, "bad")
	require.NoError(t, err)
	assert.Equal(t, `"{oops"`, string(e.Value))
}

func TestKVStore_CorruptDocumentMovedAside(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, os.WriteFile(s.Path(), []byte("not json at all"), 0o600))

	keys, err := s.ListKeys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)

	matches, err := filepath.Glob(s.Path() + ".corrupt.*")
	require.NoError(t, err)
	require.Len(t, matches, 1)

	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Equal(t, "not json at all", string(data))

	recovered := s.Recovered()
	require.Len(t, recovered, 1)
	assert.Contains(t, recovered[0].Error(), matches[0])
	assert.Empty(t, s.Recovered(), "drained")

	require.NoError(t, s.Set(ctx, "k", true))
	raw, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "{\n  \"entries\""))
}
