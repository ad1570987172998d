package eventbus_test

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/violations/internal/core/eventbus"
	"github.com/colonyops/violations/internal/core/eventbus/testbus"
	"github.com/colonyops/violations/internal/core/violation"
)

func TestEventBus_SynchronousDelivery(t *testing.T) {
	bus := eventbus.New()

	var got []string
	bus.SubscribeRecordCreated(func(p eventbus.RecordCreatedPayload) {
		got = append(got, "first:"+p.Record.ID)
	})
	bus.SubscribeRecordCreated(func(p eventbus.RecordCreatedPayload) {
		got = append(got, "second:"+p.Record.ID)
	})

	bus.PublishRecordCreated(eventbus.RecordCreatedPayload{Record: violation.Record{ID: "r1"}})

	// delivered before Publish returned, in subscription order
	assert.Equal(t, []string{"first:r1", "second:r1"}, got)
}

func TestEventBus_PanicRecovered(t *testing.T) {
	bus := eventbus.New()

	var panicked any
	bus.OnPanic(func(_ eventbus.Event, _ any, recovered any) { panicked = recovered })

	delivered := false
	bus.SubscribeRecordDeleted(func(eventbus.RecordDeletedPayload) { panic("boom") })
	bus.SubscribeRecordDeleted(func(eventbus.RecordDeletedPayload) { delivered = true })

	require.NotPanics(t, func() {
		bus.PublishRecordDeleted(eventbus.RecordDeletedPayload{ID: "x"})
	})
	assert.Equal(t, "boom", panicked)
	assert.True(t, delivered)
}

func TestEventBus_NilIsNoop(t *testing.T) {
	var bus *eventbus.EventBus
	require.NotPanics(t, func() {
		bus.PublishDraftChanged(eventbus.DraftChangedPayload{})
	})
}

func TestEventBus_Hooks(t *testing.T) {
	bus := eventbus.New()

	var published []eventbus.Event
	var subscribed []eventbus.Event
	bus.OnPublish(func(e eventbus.Event, _ any) { published = append(published, e) })
	bus.OnSubscribe(func(e eventbus.Event) { subscribed = append(subscribed, e) })

	bus.SubscribeDraftChanged(func(eventbus.DraftChangedPayload) {})
	bus.PublishDraftChanged(eventbus.DraftChangedPayload{})
	bus.PublishRecordsReloaded(eventbus.RecordsReloadedPayload{})

	assert.Equal(t, []eventbus.Event{eventbus.EventDraftChanged}, subscribed)
	assert.Equal(t, []eventbus.Event{eventbus.EventDraftChanged, eventbus.EventRecordsReloaded}, published)
}

func TestRegisterDebugLogger(t *testing.T) {
	tb := testbus.New(t)
	var buf bytes.Buffer
	eventbus.RegisterDebugLogger(tb.EventBus, zerolog.New(&buf).Level(zerolog.DebugLevel))

	tb.SubscribeRecordUpdated(func(eventbus.RecordUpdatedPayload) { panic("subscriber bug") })
	tb.PublishRecordUpdated(eventbus.RecordUpdatedPayload{Record: violation.Record{ID: "a"}})
	tb.PublishRecordsImported(eventbus.RecordsImportedPayload{Added: 1})

	tb.AssertPublished(t, eventbus.EventRecordUpdated)
	tb.AssertPublished(t, eventbus.EventRecordsImported)

	out := buf.String()
	assert.Contains(t, out, `"message":"subscriber panicked"`)
	assert.Contains(t, out, `"panic":"subscriber bug"`)
	assert.Contains(t, out, `"record_id":"a"`)
	assert.Contains(t, out, `"event":"records.imported"`)
}

func TestNotificationRouter(t *testing.T) {
	tb := testbus.New(t)
	eventbus.NewNotificationRouter(tb.EventBus).Register()

	var notes []eventbus.NotificationPublishedPayload
	tb.SubscribeNotificationPublished(func(p eventbus.NotificationPublishedPayload) {
		notes = append(notes, p)
	})

	tb.PublishRecordDeleted(eventbus.RecordDeletedPayload{ID: "0190f5a2-aaaa-bbbb-cccc-1234567890ab"})
	tb.PublishRecordStatusChanged(eventbus.RecordStatusChangedPayload{
		Record:    violation.Record{ID: "r1", Status: violation.StatusResolved},
		OldStatus: violation.StatusOpen,
	})
	tb.PublishRecordsImported(eventbus.RecordsImportedPayload{Added: 2, Skipped: 1})

	require.Len(t, notes, 3)
	assert.Equal(t, "violation 567890ab deleted", notes[0].Message)
	assert.Equal(t, "violation r1: open -> resolved", notes[1].Message)
	assert.Equal(t, eventbus.LevelWarning, notes[2].Level)
	assert.Equal(t, "imported 2 violations, skipped 1", notes[2].Message)

	var nilRouter *eventbus.NotificationRouter
	assert.NotPanics(t, nilRouter.Register)
}

func TestSnapshotOf(t *testing.T) {
	snap := eventbus.Snapshot{Stats: violation.Stats{Total: 2, Open: 2}}

	got, ok := eventbus.SnapshotOf(eventbus.RecordDeletedPayload{ID: "r1", Snapshot: snap})
	require.True(t, ok)
	assert.Equal(t, snap, got)

	_, ok = eventbus.SnapshotOf(eventbus.NotificationPublishedPayload{Message: "hi"})
	assert.False(t, ok)
}
