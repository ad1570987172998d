package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/colonyops/violations/internal/core/kv"
)

var errDiskFull = errors.New("disk full")

// faultyKV wraps a KV and fails selected operations on demand.
type faultyKV struct {
	kv.KV
	failSet error
	failGet error
	sets    int
}

func (f *faultyKV) Set(ctx context.Context, key string, value any) error {
	f.sets++
	if f.failSet != nil {
		return f.failSet
	}
	return f.KV.Set(ctx, key, value)
}

func (f *faultyKV) GetRaw(ctx context.Context, key string) (kv.Entry, error) {
	if f.failGet != nil {
		return kv.Entry{}, f.failGet
	}
	return f.KV.GetRaw(ctx, key)
}

type fixture struct {
	mem   *kv.Memory
	kv    *faultyKV
	clock time.Time
}

func newFixture() *fixture {
	mem := kv.NewMemory()
	return &fixture{
		mem:   mem,
		kv:    &faultyKV{KV: mem},
		clock: time.Date(2024, 1, 1, 9, 0, 0, 0, time.Local),
	}
}

func (f *fixture) now() time.Time { return f.clock }

func (f *fixture) open(t *testing.T, opts ...Option) *Store {
	t.Helper()
	base := []Option{
		WithIDGenerator(SequenceGenerator("r")),
		WithClock(f.now),
	}
	s, err := Open(context.Background(), NewGateway(f.kv), append(base, opts...)...)
	require.NoError(t, err)
	return s
}
