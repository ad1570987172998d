package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func logWith(t *testing.T, ctx context.Context) map[string]any {
	t.Helper()

	var buf bytes.Buffer
	logger := zerolog.New(&buf).Hook(ContextHook{})
	logger.Info().Ctx(ctx).Msg("test")

	entry := map[string]any{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestContextHook(t *testing.T) {
	bg := context.Background()

	tests := []struct {
		name string
		ctx  context.Context
		want map[string]string
	}{
		{"both", WithRecordID(WithCommand(bg, "status"), "r-1"), map[string]string{"command": "status", "record_id": "r-1"}},
		{"command only", WithCommand(bg, "ls"), map[string]string{"command": "ls"}},
		{"record only", WithRecordID(bg, "r-2"), map[string]string{"record_id": "r-2"}},
		{"empty values skipped", WithCommand(bg, ""), map[string]string{}},
		{"bare context", bg, map[string]string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := logWith(t, tt.ctx)
			for _, key := range []string{"command", "record_id"} {
				want, ok := tt.want[key]
				if !ok {
					assert.NotContains(t, entry, key)
					continue
				}
				assert.Equal(t, want, entry[key])
			}
		})
	}
}
