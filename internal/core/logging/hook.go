package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// contextFields are copied from an event's context onto the event, in order.
var contextFields = []struct {
	name string
	get  func(context.Context) string
}{
	{"command", GetCommand},
	{"record_id", GetRecordID},
}

// ContextHook stamps log events with the command and record id carried by
// the event's context.
type ContextHook struct{}

// Run implements zerolog.Hook.
func (ContextHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	ctx := e.GetCtx()
	if ctx == nil {
		return
	}
	for _, f := range contextFields {
		if v := f.get(ctx); v != "" {
			e.Str(f.name, v)
		}
	}
}
