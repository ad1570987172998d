package ledger

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/violations/internal/core/eventbus"
	"github.com/colonyops/violations/internal/core/logging"
	"github.com/colonyops/violations/internal/core/violation"
)

// maxIDAttempts bounds id regeneration when a generator collides with a live id.
const maxIDAttempts = 8

// ErrIDExhausted is returned when no unused id could be generated.
var ErrIDExhausted = errors.New("could not generate a unique id")

// Persister is the durable side of the store.
type Persister interface {
	LoadRecords(ctx context.Context) ([]violation.Record, error)
	SaveRecords(ctx context.Context, records []violation.Record) error
	LoadDraft(ctx context.Context) (violation.Draft, bool, error)
	SaveDraft(ctx context.Context, draft violation.Draft) error
}

// Option configures a Store.
type Option func(*Store)

// WithIDGenerator sets the id source. Defaults to UUIDGenerator.
func WithIDGenerator(ids IDGenerator) Option {
	return func(s *Store) { s.ids = ids }
}

// WithClock sets the time source used for CreatedAt and draft defaults.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithLoadWarnings records problems found before the store was opened, such as
// a database that had to be moved aside. They are kept across reloads.
func WithLoadWarnings(errs ...error) Option {
	return func(s *Store) { s.startup = append(s.startup, errs...) }
}

// WithBus publishes a snapshot event after every state change.
func WithBus(bus *eventbus.EventBus) Option {
	return func(s *Store) { s.bus = bus }
}

// Store owns the live record collection and the draft. Every mutation is
// written through the Persister before the call returns.
//
// A Store is not safe for concurrent use; callers drive it from a single
// goroutine (the CLI command or the TUI update loop).
type Store struct {
	persist Persister
	ids     IDGenerator
	now     func() time.Time
	logger  zerolog.Logger
	bus     *eventbus.EventBus

	records []violation.Record
	draft   violation.Draft

	// set when the last write of that half failed; cleared by the next
	// successful write or Flush
	recordsDirty bool
	draftDirty   bool

	startup  []error
	warnings []error
}

// Open loads the persisted collection and draft. Malformed stored data is
// reported through Warnings and the store starts from what could be
// recovered. A backend that cannot be read at all fails Open, since
// continuing would overwrite data that was never loaded.
func Open(ctx context.Context, p Persister, opts ...Option) (*Store, error) {
	s := &Store{
		persist: p,
		ids:     UUIDGenerator(),
		now:     time.Now,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	for _, w := range s.startup {
		s.warn(w)
	}

	if err := s.load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load(ctx context.Context) error {
	records, err := s.persist.LoadRecords(ctx)
	switch {
	case errors.Is(err, ErrMalformedData):
		s.warn(err)
	case err != nil:
		return err
	}

	records, warnings := normalizeRecords(records, s.ids)
	for _, w := range warnings {
		s.warn(w)
	}

	draft, ok, err := s.persist.LoadDraft(ctx)
	switch {
	case errors.Is(err, ErrMalformedData):
		s.warn(err)
	case err != nil:
		return err
	}

	if ok {
		draft.FillWindow(s.now())
	} else {
		draft = violation.NewDraft(s.now())
	}

	s.records = records
	s.draft = draft

	if draft.Editing() && s.indexOf(draft.EditTargetID) < 0 {
		s.warn(fmt.Errorf("draft was editing %q which no longer exists; editing a new record instead", draft.EditTargetID))
		s.draft.EditTargetID = ""
	}

	s.recordsDirty = len(warnings) > 0
	s.drainRecovered()
	return nil
}

type recoverer interface {
	Recovered() []error
}

// drainRecovered collects data the backend discarded by itself. Those
// warnings survive reloads like the startup ones.
func (s *Store) drainRecovered() []error {
	r, ok := s.persist.(recoverer)
	if !ok {
		return nil
	}
	errs := r.Recovered()
	for _, err := range errs {
		s.startup = append(s.startup, err)
		s.warn(err)
	}
	return errs
}

// warnOnce records err unless an identical warning is already present. It
// returns err when it was new, nil otherwise.
func (s *Store) warnOnce(err error) error {
	for _, w := range s.warnings {
		if w.Error() == err.Error() {
			return nil
		}
	}
	s.warn(err)
	return err
}

// normalizeRecords enforces the collection invariants on loaded data: every
// status is valid (unknown values become open) and every id is present and
// unique (duplicates get a fresh id).
func normalizeRecords(records []violation.Record, ids IDGenerator) ([]violation.Record, []error) {
	var warnings []error
	seen := make(map[string]bool, len(records))

	out := make([]violation.Record, 0, len(records))
	for _, r := range records {
		if !r.Status.IsValid() {
			warnings = append(warnings, fmt.Errorf("record %q: %w %q, reset to %s", r.ID, violation.ErrInvalidStatus, r.Status, violation.StatusOpen))
			r.Status = violation.StatusOpen
		}

		if r.ID == "" || seen[r.ID] {
			old := r.ID
			id, err := freshID(ids, func(id string) bool { return seen[id] })
			if err != nil {
				warnings = append(warnings, fmt.Errorf("record %q dropped: %w", old, err))
				continue
			}
			r.ID = id
			warnings = append(warnings, fmt.Errorf("record %q: missing or duplicate id, assigned %q", old, id))
		}

		seen[r.ID] = true
		out = append(out, r)
	}
	return out, warnings
}

func freshID(ids IDGenerator, taken func(string) bool) (string, error) {
	for range maxIDAttempts {
		id, err := ids.NewID()
		if err != nil {
			return "", err
		}
		if id != "" && !taken(id) {
			return id, nil
		}
	}
	return "", ErrIDExhausted
}

// Reload discards in-memory state and re-reads it from storage. Unsaved
// changes are flushed first so they are not lost.
func (s *Store) Reload(ctx context.Context) error {
	if err := s.Flush(ctx); err != nil {
		return err
	}

	s.warnings = slices.Clone(s.startup)
	if err := s.load(ctx); err != nil {
		return err
	}

	s.bus.PublishRecordsReloaded(eventbus.RecordsReloadedPayload{Snapshot: s.Snapshot()})
	return nil
}

// Refresh reloads only when storage no longer matches memory, such as after
// another process wrote to it. It reports whether a reload happened.
//
// Malformed stored data never replaces the in-memory state here; it is
// reported once as a warning and later calls over the same data are no-ops.
func (s *Store) Refresh(ctx context.Context) (bool, error) {
	if s.Dirty() {
		return true, s.Reload(ctx)
	}

	records, err := s.persist.LoadRecords(ctx)
	if errors.Is(err, ErrMalformedData) {
		return false, s.warnOnce(err)
	}
	if err != nil {
		return false, err
	}
	draft, ok, err := s.persist.LoadDraft(ctx)
	if errors.Is(err, ErrMalformedData) {
		return false, s.warnOnce(err)
	}
	if err != nil {
		return false, err
	}
	recovered := errors.Join(s.drainRecovered()...)

	if slices.EqualFunc(records, s.records, sameRecord) && (!ok || draft == s.draft) {
		return false, recovered
	}
	return true, errors.Join(recovered, s.Reload(ctx))
}

func sameRecord(a, b violation.Record) bool {
	return a.ID == b.ID &&
		a.Fields == b.Fields &&
		a.Status == b.Status &&
		a.CreatedAt.Equal(b.CreatedAt)
}

// Warnings returns the problems found while loading.
func (s *Store) Warnings() []error {
	return slices.Clone(s.warnings)
}

func (s *Store) warn(err error) {
	s.logger.Warn().Err(err).Msg("load warning")
	s.warnings = append(s.warnings, err)
}

// Create appends a new open record built from fields, persists the
// collection and resets the draft. No field validation is performed.
func (s *Store) Create(ctx context.Context, fields violation.Fields) (violation.Record, error) {
	id, err := freshID(s.ids, func(id string) bool { return s.indexOf(id) >= 0 })
	if err != nil {
		return violation.Record{}, err
	}

	rec := violation.Record{
		ID:        id,
		Fields:    fields,
		Status:    violation.StatusOpen,
		CreatedAt: s.now(),
	}
	s.records = append(s.records, rec)

	err = errors.Join(s.saveRecords(ctx), s.resetDraft(ctx))

	s.logger.Debug().Ctx(logging.WithRecordID(ctx, id)).Msg("record created")
	s.bus.PublishRecordCreated(eventbus.RecordCreatedPayload{Record: rec, Snapshot: s.Snapshot()})
	return rec, err
}

// Update replaces every mutable field of record id, persists and resets the
// draft. ID, Status and CreatedAt are kept.
func (s *Store) Update(ctx context.Context, id string, fields violation.Fields) (violation.Record, error) {
	i := s.indexOf(id)
	if i < 0 {
		return violation.Record{}, fmt.Errorf("update %q: %w", id, violation.ErrNotFound)
	}

	s.records[i].Fields = fields
	rec := s.records[i]

	err := errors.Join(s.saveRecords(ctx), s.resetDraft(ctx))

	s.logger.Debug().Ctx(logging.WithRecordID(ctx, id)).Msg("record updated")
	s.bus.PublishRecordUpdated(eventbus.RecordUpdatedPayload{Record: rec, Snapshot: s.Snapshot()})
	return rec, err
}

// Delete removes record id. Deleting an id that is not present does nothing.
// A draft bound to the deleted record is unbound and keeps its field values.
func (s *Store) Delete(ctx context.Context, id string) error {
	i := s.indexOf(id)
	if i < 0 {
		return nil
	}

	s.records = slices.Delete(s.records, i, i+1)
	err := s.saveRecords(ctx)

	if s.draft.EditTargetID == id {
		s.draft.EditTargetID = ""
		err = errors.Join(err, s.saveDraft(ctx))
	}

	s.logger.Debug().Ctx(logging.WithRecordID(ctx, id)).Msg("record deleted")
	s.bus.PublishRecordDeleted(eventbus.RecordDeletedPayload{ID: id, Snapshot: s.Snapshot()})
	return err
}

// SetStatus changes only the status of record id.
func (s *Store) SetStatus(ctx context.Context, id string, status violation.Status) (violation.Record, error) {
	if !status.IsValid() {
		return violation.Record{}, fmt.Errorf("set status %q: %w %q", id, violation.ErrInvalidStatus, status)
	}

	i := s.indexOf(id)
	if i < 0 {
		return violation.Record{}, fmt.Errorf("set status %q: %w", id, violation.ErrNotFound)
	}

	old := s.records[i].Status
	s.records[i].Status = status
	rec := s.records[i]

	err := s.saveRecords(ctx)

	s.logger.Debug().Ctx(logging.WithRecordID(ctx, id)).
		Str("from", string(old)).
		Str("to", string(status)).
		Msg("status changed")
	s.bus.PublishRecordStatusChanged(eventbus.RecordStatusChangedPayload{
		Record:    rec,
		OldStatus: old,
		Snapshot:  s.Snapshot(),
	})
	return rec, err
}

// BeginEdit binds the draft to record id and copies its fields in.
func (s *Store) BeginEdit(ctx context.Context, id string) (violation.Draft, error) {
	i := s.indexOf(id)
	if i < 0 {
		return violation.Draft{}, fmt.Errorf("edit %q: %w", id, violation.ErrNotFound)
	}

	s.draft = violation.Draft{Fields: s.records[i].Fields, EditTargetID: id}
	err := s.saveDraft(ctx)

	s.publishDraft()
	return s.draft, err
}

// UpdateDraftField sets one draft field and persists the draft immediately.
func (s *Store) UpdateDraftField(ctx context.Context, field, value string) (violation.Draft, error) {
	if err := s.draft.Set(field, value); err != nil {
		return s.draft, err
	}

	err := s.saveDraft(ctx)

	s.publishDraft()
	return s.draft, err
}

// ClearDraft resets the draft to defaults and unbinds it from any record.
func (s *Store) ClearDraft(ctx context.Context) (violation.Draft, error) {
	err := s.resetDraft(ctx)
	s.publishDraft()
	return s.draft, err
}

// Submit commits the draft: it updates the bound record when editing and
// creates a new record otherwise.
func (s *Store) Submit(ctx context.Context) (violation.Record, error) {
	if s.draft.Editing() {
		return s.Update(ctx, s.draft.EditTargetID, s.draft.Fields)
	}
	return s.Create(ctx, s.draft.Fields)
}

// Flush rewrites whichever half of the state failed to persist last time.
func (s *Store) Flush(ctx context.Context) error {
	var errs []error
	if s.recordsDirty {
		errs = append(errs, s.saveRecords(ctx))
	}
	if s.draftDirty {
		errs = append(errs, s.saveDraft(ctx))
	}
	return errors.Join(errs...)
}

// Dirty reports whether some in-memory change has not reached storage.
func (s *Store) Dirty() bool {
	return s.recordsDirty || s.draftDirty
}

func (s *Store) resetDraft(ctx context.Context) error {
	s.draft = violation.NewDraft(s.now())
	return s.saveDraft(ctx)
}

func (s *Store) saveRecords(ctx context.Context) error {
	if err := s.persist.SaveRecords(ctx, slices.Clone(s.records)); err != nil {
		s.recordsDirty = true
		s.logger.Warn().Err(err).Msg("records not persisted")
		return asPersistenceError("save records", err)
	}
	s.recordsDirty = false
	return nil
}

func (s *Store) saveDraft(ctx context.Context) error {
	if err := s.persist.SaveDraft(ctx, s.draft); err != nil {
		s.draftDirty = true
		s.logger.Warn().Err(err).Msg("draft not persisted")
		return asPersistenceError("save draft", err)
	}
	s.draftDirty = false
	return nil
}

func asPersistenceError(op string, err error) error {
	if errors.Is(err, ErrPersistence) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}

func (s *Store) publishDraft() {
	s.bus.PublishDraftChanged(eventbus.DraftChangedPayload{Snapshot: s.Snapshot()})
}

func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.records, func(r violation.Record) bool { return r.ID == id })
}

// Records returns a copy of the collection in insertion order.
func (s *Store) Records() []violation.Record {
	return slices.Clone(s.records)
}

// Get returns record id.
func (s *Store) Get(id string) (violation.Record, error) {
	i := s.indexOf(id)
	if i < 0 {
		return violation.Record{}, fmt.Errorf("get %q: %w", id, violation.ErrNotFound)
	}
	return s.records[i], nil
}

// Draft returns the current draft.
func (s *Store) Draft() violation.Draft {
	return s.draft
}

// Stats recomputes the status counts.
func (s *Store) Stats() violation.Stats {
	return violation.ComputeStats(s.records)
}

// Filter returns the records matching query and status, in order.
func (s *Store) Filter(query string, status violation.StatusFilter) []violation.Record {
	return violation.Filter(s.records, query, status)
}

// Snapshot returns the state the presentation layer renders.
func (s *Store) Snapshot() eventbus.Snapshot {
	return eventbus.Snapshot{
		Records: s.Records(),
		Stats:   s.Stats(),
		Draft:   s.draft,
	}
}
