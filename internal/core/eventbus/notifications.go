package eventbus

import (
	"fmt"
	"strings"
)

// NotificationRouter maps domain events to user-facing notifications.
type NotificationRouter struct {
	bus *EventBus
}

// NewNotificationRouter constructs a router for event-to-notification mappings.
func NewNotificationRouter(bus *EventBus) *NotificationRouter {
	return &NotificationRouter{bus: bus}
}

// Register subscribes all supported event mappings.
func (r *NotificationRouter) Register() {
	if r == nil || r.bus == nil {
		return
	}

	r.bus.SubscribeRecordCreated(func(p RecordCreatedPayload) {
		r.notifyf(LevelInfo, "violation %s recorded", shortID(p.Record.ID))
	})

	r.bus.SubscribeRecordUpdated(func(p RecordUpdatedPayload) {
		r.notifyf(LevelInfo, "violation %s updated", shortID(p.Record.ID))
	})

	r.bus.SubscribeRecordDeleted(func(p RecordDeletedPayload) {
		r.notifyf(LevelInfo, "violation %s deleted", shortID(p.ID))
	})

	r.bus.SubscribeRecordStatusChanged(func(p RecordStatusChangedPayload) {
		r.notifyf(LevelInfo, "violation %s: %s -> %s", shortID(p.Record.ID), p.OldStatus, p.Record.Status)
	})

	r.bus.SubscribeRecordsImported(func(p RecordsImportedPayload) {
		level := LevelInfo
		if p.Skipped > 0 {
			level = LevelWarning
		}
		r.notifyf(level, "imported %d violations, skipped %d", p.Added, p.Skipped)
	})

	r.bus.SubscribeRecordsReloaded(func(p RecordsReloadedPayload) {
		r.notifyf(LevelInfo, "reloaded %d violations", len(p.Snapshot.Records))
	})
}

func (r *NotificationRouter) notifyf(level Level, format string, args ...any) {
	r.bus.PublishNotificationPublished(NotificationPublishedPayload{
		Level:   level,
		Message: fmt.Sprintf(format, args...),
	})
}

// shortID trims long generated ids for display.
func shortID(id string) string {
	id = strings.TrimSpace(id)
	if len(id) > 8 {
		return id[len(id)-8:]
	}
	return id
}
