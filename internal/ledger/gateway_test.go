package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/violations/internal/core/kv"
	"github.com/colonyops/violations/internal/core/violation"
)

func TestGateway_EmptyStore(t *testing.T) {
	ctx := context.Background()
	gw := NewGateway(kv.NewMemory())

	records, err := gw.LoadRecords(ctx)
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)

	_, ok, err := gw.LoadDraft(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGateway_RoundTrip(t *testing.T) {
	ctx := context.Background()
	gw := NewGateway(kv.NewMemory())

	created := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	records := []violation.Record{
		{ID: "1", Status: violation.StatusOpen, CreatedAt: created, Fields: violation.Fields{Type: "safety", StartTime: "2024-01-01T09:00"}},
		{ID: "2", Status: violation.StatusResolved, CreatedAt: created.Add(time.Hour), Fields: violation.Fields{Description: "Кириллица тоже"}},
	}

	require.NoError(t, gw.SaveRecords(ctx, records))

	got, err := gw.LoadRecords(ctx)
	require.NoError(t, err)
	require.Len(t, got, len(records))
	for i := range records {
		assert.Equal(t, records[i].ID, got[i].ID)
		assert.Equal(t, records[i].Fields, got[i].Fields)
		assert.Equal(t, records[i].Status, got[i].Status)
		assert.True(t, records[i].CreatedAt.Equal(got[i].CreatedAt))
	}

	draft := violation.Draft{Fields: violation.Fields{Priority: "high"}, EditTargetID: "2"}
	require.NoError(t, gw.SaveDraft(ctx, draft))

	gotDraft, ok, err := gw.LoadDraft(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, draft, gotDraft)
}

func TestGateway_SaveNilWritesEmptyArray(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	gw := NewGateway(mem)

	require.NoError(t, gw.SaveRecords(ctx, nil))

	entry, err := mem.GetRaw(ctx, "violations:records")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(entry.Value))
}

func TestGateway_MalformedRecordsQuarantined(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	mem.SetRaw("violations:records", []byte(`[{"id": "1",`))

	gw := NewGateway(mem)
	gw.now = func() time.Time { return time.Unix(0, 42) }

	records, err := gw.LoadRecords(ctx)
	require.ErrorIs(t, err, ErrMalformedData)
	assert.NotErrorIs(t, err, ErrPersistence)
	assert.Empty(t, records)

	var backup string
	require.NoError(t, mem.Get(ctx, "violations:records.corrupt.42", &backup))
	assert.Equal(t, `[{"id": "1",`, backup)
}

func TestGateway_MalformedDraft(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	mem.SetRaw("violations:draft", []byte(`"just a string"`))

	_, ok, err := NewGateway(mem).LoadDraft(ctx)
	require.ErrorIs(t, err, ErrMalformedData)
	assert.False(t, ok)

	keys, err := mem.ListKeys(ctx)
	require.NoError(t, err)
	require.Len(t, keys, 2)
	assert.True(t, strings.HasPrefix(keys[1], "violations:draft.corrupt."))
}

func corruptKeys(t *testing.T, mem *kv.Memory, key string) []string {
	t.Helper()
	keys, err := mem.ListKeys(context.Background())
	require.NoError(t, err)

	var out []string
	for _, k := range keys {
		if strings.HasPrefix(k, key+".corrupt.") {
			out = append(out, k)
		}
	}
	return out
}

func TestGateway_MalformedBlobBackedUpOnce(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	mem.SetRaw("violations:records", []byte(`{"broken":`))

	gw := NewGateway(mem)
	n := int64(0)
	gw.now = func() time.Time { n++; return time.Unix(0, n) }

	_, first := gw.LoadRecords(ctx)
	require.ErrorIs(t, first, ErrMalformedData)
	for range 5 {
		_, err := gw.LoadRecords(ctx)
		require.ErrorIs(t, err, ErrMalformedData)
		assert.Equal(t, first.Error(), err.Error())
	}
	assert.Len(t, corruptKeys(t, mem, "violations:records"), 1)

	mem.SetRaw("violations:records", []byte(`[{"id":`))
	_, err := gw.LoadRecords(ctx)
	require.ErrorIs(t, err, ErrMalformedData)
	assert.Len(t, corruptKeys(t, mem, "violations:records"), 2, "a different blob gets its own copy")
}

type recoveringKV struct {
	*kv.Memory
	pending []error
}

func (r *recoveringKV) Recovered() []error {
	out := r.pending
	r.pending = nil
	return out
}

func TestGateway_Recovered(t *testing.T) {
	assert.Empty(t, NewGateway(kv.NewMemory()).Recovered())

	backend := &recoveringKV{Memory: kv.NewMemory(), pending: []error{errors.New("doc moved to x.corrupt.1")}}
	got := NewGateway(backend).Recovered()
	require.Len(t, got, 1)
	require.ErrorIs(t, got[0], ErrMalformedData)
	assert.Contains(t, got[0].Error(), "x.corrupt.1")
}

func TestGateway_NullBlobIsEmpty(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	mem.SetRaw("violations:records", []byte("null"))

	records, err := NewGateway(mem).LoadRecords(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestGateway_BackendFailures(t *testing.T) {
	ctx := context.Background()
	f := &faultyKV{KV: kv.NewMemory(), failSet: errDiskFull, failGet: errDiskFull}
	gw := NewGateway(f)

	err := gw.SaveRecords(ctx, nil)
	require.ErrorIs(t, err, ErrPersistence)
	require.ErrorIs(t, err, errDiskFull)

	var pe *PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "save records", pe.Op)

	require.ErrorIs(t, gw.SaveDraft(ctx, violation.Draft{}), ErrPersistence)

	_, err = gw.LoadRecords(ctx)
	require.ErrorIs(t, err, ErrPersistence)

	_, _, err = gw.LoadDraft(ctx)
	require.ErrorIs(t, err, ErrPersistence)
}

func TestGateway_LegacyBlob(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()

	legacy := []map[string]any{{
		"id":        "1704099600000",
		"field1":    "safety",
		"field2":    "high",
		"field7":    "No helmet",
		"status":    "open",
		"createdAt": "2024-01-01T09:00:00.000Z",
	}}
	data, err := json.Marshal(legacy)
	require.NoError(t, err)
	mem.SetRaw("violations:records", data)

	records, err := NewGateway(mem).LoadRecords(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "safety", records[0].Type)
	assert.Equal(t, "No helmet", records[0].Description)
}
