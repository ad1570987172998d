package eventbus

import (
	"fmt"

	"github.com/rs/zerolog"
)

// payloadRecordID extracts the affected record id from payloads that carry one.
func payloadRecordID(payload any) string {
	switch p := payload.(type) {
	case RecordCreatedPayload:
		return p.Record.ID
	case RecordUpdatedPayload:
		return p.Record.ID
	case RecordStatusChangedPayload:
		return p.Record.ID
	case RecordDeletedPayload:
		return p.ID
	default:
		return ""
	}
}

// RegisterDebugLogger traces bus traffic to logger. Deliveries and new
// subscribers log at debug level, subscriber panics at error level.
func RegisterDebugLogger(bus *EventBus, logger zerolog.Logger) {
	bus.OnPublish(func(event Event, payload any) {
		e := logger.Debug().Str("event", string(event))
		if id := payloadRecordID(payload); id != "" {
			e = e.Str("record_id", id)
		}
		e.Msg("event delivered")
	})

	bus.OnSubscribe(func(event Event) {
		logger.Debug().Str("event", string(event)).Msg("subscriber added")
	})

	bus.OnPanic(func(event Event, payload any, recovered any) {
		logger.Error().
			Str("event", string(event)).
			Str("record_id", payloadRecordID(payload)).
			Str("panic", fmt.Sprint(recovered)).
			Msg("subscriber panicked")
	})
}
