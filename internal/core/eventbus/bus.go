package eventbus

import "sync"

// EventBus dispatches events synchronously: Publish returns after every
// subscriber has run. A panicking subscriber is recovered and reported
// through OnPanic hooks. The zero value is not usable; a nil *EventBus
// silently discards publishes.
type EventBus struct {
	mu   sync.RWMutex
	subs map[Event][]func(any)
	all  []func(Event, any)

	hooks hooks
}

// New creates an empty bus.
func New() *EventBus {
	return &EventBus{subs: make(map[Event][]func(any))}
}

// SubscribeAll registers fn for every event.
func (bus *EventBus) SubscribeAll(fn func(Event, any)) {
	bus.mu.Lock()
	bus.all = append(bus.all, fn)
	bus.mu.Unlock()
	bus.runOnSubscribe("*")
}

func (bus *EventBus) subscribe(event Event, fn func(any)) {
	bus.mu.Lock()
	bus.subs[event] = append(bus.subs[event], fn)
	bus.mu.Unlock()
	bus.runOnSubscribe(event)
}

func (bus *EventBus) dispatch(event Event, payload any) {
	bus.mu.RLock()
	subs := append([]func(any){}, bus.subs[event]...)
	all := append([]func(Event, any){}, bus.all...)
	bus.mu.RUnlock()

	for _, fn := range subs {
		bus.safeCall(event, payload, func() { fn(payload) })
	}
	for _, fn := range all {
		bus.safeCall(event, payload, func() { fn(event, payload) })
	}
}

func (bus *EventBus) safeCall(event Event, payload any, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			bus.runOnPanic(event, payload, r)
		}
	}()
	fn()
}

func (bus *EventBus) SubscribeDraftChanged(fn func(DraftChangedPayload)) {
	bus.subscribe(EventDraftChanged, func(p any) { fn(p.(DraftChangedPayload)) })
}

func (bus *EventBus) PublishDraftChanged(p DraftChangedPayload) {
	bus.send(EventDraftChanged, p)
}

func (bus *EventBus) SubscribeNotificationPublished(fn func(NotificationPublishedPayload)) {
	bus.subscribe(EventNotificationPublish, func(p any) { fn(p.(NotificationPublishedPayload)) })
}

func (bus *EventBus) PublishNotificationPublished(p NotificationPublishedPayload) {
	bus.send(EventNotificationPublish, p)
}

func (bus *EventBus) SubscribeRecordCreated(fn func(RecordCreatedPayload)) {
	bus.subscribe(EventRecordCreated, func(p any) { fn(p.(RecordCreatedPayload)) })
}

func (bus *EventBus) PublishRecordCreated(p RecordCreatedPayload) {
	bus.send(EventRecordCreated, p)
}

func (bus *EventBus) SubscribeRecordDeleted(fn func(RecordDeletedPayload)) {
	bus.subscribe(EventRecordDeleted, func(p any) { fn(p.(RecordDeletedPayload)) })
}

func (bus *EventBus) PublishRecordDeleted(p RecordDeletedPayload) {
	bus.send(EventRecordDeleted, p)
}

func (bus *EventBus) SubscribeRecordStatusChanged(fn func(RecordStatusChangedPayload)) {
	bus.subscribe(EventRecordStatusChanged, func(p any) { fn(p.(RecordStatusChangedPayload)) })
}

func (bus *EventBus) PublishRecordStatusChanged(p RecordStatusChangedPayload) {
	bus.send(EventRecordStatusChanged, p)
}

func (bus *EventBus) SubscribeRecordUpdated(fn func(RecordUpdatedPayload)) {
	bus.subscribe(EventRecordUpdated, func(p any) { fn(p.(RecordUpdatedPayload)) })
}

func (bus *EventBus) PublishRecordUpdated(p RecordUpdatedPayload) {
	bus.send(EventRecordUpdated, p)
}

func (bus *EventBus) SubscribeRecordsImported(fn func(RecordsImportedPayload)) {
	bus.subscribe(EventRecordsImported, func(p any) { fn(p.(RecordsImportedPayload)) })
}

func (bus *EventBus) PublishRecordsImported(p RecordsImportedPayload) {
	bus.send(EventRecordsImported, p)
}

func (bus *EventBus) SubscribeRecordsReloaded(fn func(RecordsReloadedPayload)) {
	bus.subscribe(EventRecordsReloaded, func(p any) { fn(p.(RecordsReloadedPayload)) })
}

func (bus *EventBus) PublishRecordsReloaded(p RecordsReloadedPayload) {
	bus.send(EventRecordsReloaded, p)
}
