// Package ledger owns the violation collection and the draft, and mirrors
// both into a durable key-value store.
package ledger

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/colonyops/violations/internal/core/kv"
	"github.com/colonyops/violations/internal/core/violation"
)

// Storage keys, relative to Namespace.
const (
	Namespace  = "violations"
	RecordsKey = "records"
	DraftKey   = "draft"
)

var (
	// ErrPersistence matches every *PersistenceError.
	ErrPersistence = errors.New("persistence failure")
	// ErrMalformedData is returned (wrapped) when a stored blob cannot be decoded.
	ErrMalformedData = errors.New("malformed stored data")
)

// PersistenceError reports a durable read or write that could not complete.
// The in-memory state is unaffected.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

// Gateway reads and writes the record collection and the draft. Besides the
// KV handle it only remembers which malformed blobs it has already backed up.
type Gateway struct {
	kv      kv.KV
	records *kv.Slot[[]violation.Record]
	draft   *kv.Slot[violation.Draft]
	now     func() time.Time

	mu          sync.Mutex
	quarantined map[string]quarantined
}

type quarantined struct {
	sum    [sha256.Size]byte
	backup string
}

// NewGateway creates a gateway over store.
func NewGateway(store kv.KV) *Gateway {
	return &Gateway{
		kv:      store,
		records: kv.NewSlot[[]violation.Record](store, Namespace, RecordsKey),
		draft:   kv.NewSlot[violation.Draft](store, Namespace, DraftKey),
		now:     time.Now,

		quarantined: map[string]quarantined{},
	}
}

// Recovered drains the errors for unreadable data the backend discarded on
// its own, each wrapping ErrMalformedData.
func (g *Gateway) Recovered() []error {
	r, ok := g.kv.(kv.Recoverer)
	if !ok {
		return nil
	}
	var out []error
	for _, err := range r.Recovered() {
		out = append(out, fmt.Errorf("%w: %w", ErrMalformedData, err))
	}
	return out
}

// LoadRecords returns the stored collection. A missing key yields an empty
// collection. A blob that fails to decode is copied to a backup key and an
// empty collection is returned together with an error wrapping
// ErrMalformedData. Statuses are returned as stored; see normalizeRecords.
func (g *Gateway) LoadRecords(ctx context.Context) ([]violation.Record, error) {
	raw, ok, err := g.loadRaw(ctx, g.records, "load records")
	if err != nil || !ok {
		return []violation.Record{}, err
	}

	var records []violation.Record
	if err := json.Unmarshal(raw, &records); err != nil {
		return []violation.Record{}, g.quarantine(ctx, g.records.Key(), raw, err)
	}
	if records == nil {
		records = []violation.Record{}
	}
	return records, nil
}

// SaveRecords overwrites the stored collection.
func (g *Gateway) SaveRecords(ctx context.Context, records []violation.Record) error {
	if records == nil {
		records = []violation.Record{}
	}
	if err := g.records.Store(ctx, records); err != nil {
		return &PersistenceError{Op: "save records", Err: err}
	}
	return nil
}

// LoadDraft returns the stored draft. ok is false when none was saved or the
// saved one could not be decoded.
func (g *Gateway) LoadDraft(ctx context.Context) (violation.Draft, bool, error) {
	raw, ok, err := g.loadRaw(ctx, g.draft, "load draft")
	if err != nil || !ok {
		return violation.Draft{}, false, err
	}

	var draft violation.Draft
	if err := json.Unmarshal(raw, &draft); err != nil {
		return violation.Draft{}, false, g.quarantine(ctx, g.draft.Key(), raw, err)
	}
	return draft, true, nil
}

// SaveDraft overwrites the stored draft.
func (g *Gateway) SaveDraft(ctx context.Context, draft violation.Draft) error {
	if err := g.draft.Store(ctx, draft); err != nil {
		return &PersistenceError{Op: "save draft", Err: err}
	}
	return nil
}

type rawSlot interface {
	Raw(ctx context.Context) (kv.Entry, error)
}

func (g *Gateway) loadRaw(ctx context.Context, slot rawSlot, op string) (json.RawMessage, bool, error) {
	entry, err := slot.Raw(ctx)
	if kv.IsNotFound(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, &PersistenceError{Op: op, Err: err}
	}

	raw := bytes.TrimSpace(entry.Value)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, false, nil
	}
	return raw, true, nil
}

// quarantine copies an undecodable blob aside so the next save cannot destroy
// it. The copy is stored as a JSON string since the blob itself may not be
// valid JSON. A blob already copied is not copied again, and the same error
// is returned for it.
func (g *Gateway) quarantine(ctx context.Context, key string, raw []byte, decodeErr error) error {
	malformed := fmt.Errorf("%w: %s: %v", ErrMalformedData, key, decodeErr)
	sum := sha256.Sum256(raw)

	g.mu.Lock()
	defer g.mu.Unlock()

	if q, ok := g.quarantined[key]; ok && q.sum == sum {
		return fmt.Errorf("%w (raw copy kept at %s)", malformed, q.backup)
	}

	backup := key + ".corrupt." + strconv.FormatInt(g.now().UnixNano(), 10)
	if err := g.kv.Set(ctx, backup, string(raw)); err != nil {
		return errors.Join(malformed, &PersistenceError{Op: "backup " + key, Err: err})
	}
	g.quarantined[key] = quarantined{sum: sum, backup: backup}
	return fmt.Errorf("%w (raw copy kept at %s)", malformed, backup)
}
