// Package eventbus provides a typed publish/subscribe event bus for
// cross-component communication within the ledger.
package eventbus

import (
	"github.com/colonyops/violations/internal/core/violation"
)

// Event names a kind of bus message.
type Event string

const (
	// Keep list sorted A-Z
	EventDraftChanged        Event = "draft.changed"
	EventNotificationPublish Event = "notification.published"
	EventRecordCreated       Event = "record.created"
	EventRecordDeleted       Event = "record.deleted"
	EventRecordStatusChanged Event = "record.status-changed"
	EventRecordUpdated       Event = "record.updated"
	EventRecordsImported     Event = "records.imported"
	EventRecordsReloaded     Event = "records.reloaded"
)

// Snapshot is the observable ledger state after a change. Records and Draft
// are copies owned by the receiver.
type Snapshot struct {
	Records []violation.Record
	Stats   violation.Stats
	Draft   violation.Draft
}

// RecordCreatedPayload is emitted when a draft is committed as a new record.
type RecordCreatedPayload struct {
	Record   violation.Record
	Snapshot Snapshot
}

// RecordUpdatedPayload is emitted when a bound draft overwrites a record.
type RecordUpdatedPayload struct {
	Record   violation.Record
	Snapshot Snapshot
}

// RecordDeletedPayload is emitted when a record is removed.
type RecordDeletedPayload struct {
	ID       string
	Snapshot Snapshot
}

// RecordStatusChangedPayload is emitted when a record moves between statuses.
type RecordStatusChangedPayload struct {
	Record    violation.Record
	OldStatus violation.Status
	Snapshot  Snapshot
}

// RecordsImportedPayload is emitted after a bulk import.
type RecordsImportedPayload struct {
	Added    int
	Skipped  int
	Snapshot Snapshot
}

// RecordsReloadedPayload is emitted when the store re-reads persisted state.
type RecordsReloadedPayload struct {
	Snapshot Snapshot
}

// DraftChangedPayload is emitted on every draft edit, reset or bind.
type DraftChangedPayload struct {
	Snapshot Snapshot
}

// Level is the severity of a user-facing notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
)

// NotificationPublishedPayload carries a short message for the user.
type NotificationPublishedPayload struct {
	Level   Level
	Message string
}

// SnapshotOf extracts the ledger snapshot carried by a record or draft payload.
func SnapshotOf(payload any) (Snapshot, bool) {
	switch p := payload.(type) {
	case RecordCreatedPayload:
		return p.Snapshot, true
	case RecordUpdatedPayload:
		return p.Snapshot, true
	case RecordDeletedPayload:
		return p.Snapshot, true
	case RecordStatusChangedPayload:
		return p.Snapshot, true
	case RecordsImportedPayload:
		return p.Snapshot, true
	case RecordsReloadedPayload:
		return p.Snapshot, true
	case DraftChangedPayload:
		return p.Snapshot, true
	default:
		return Snapshot{}, false
	}
}
