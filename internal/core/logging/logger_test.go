package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureGlobal(t *testing.T) *bytes.Buffer {
	t.Helper()
	orig := log.Logger
	t.Cleanup(func() { log.Logger = orig })

	var buf bytes.Buffer
	Setup(zerolog.New(&buf))
	return &buf
}

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestComponent(t *testing.T) {
	buf := captureGlobal(t)

	logger := Component("ledger")
	logger.Info().Msg("loaded")

	entry := decode(t, buf)
	assert.Equal(t, "ledger", entry["cmp"])
	assert.Equal(t, "loaded", entry["message"])
}

func TestSetup_AddsContextFields(t *testing.T) {
	buf := captureGlobal(t)

	ctx := WithRecordID(WithCommand(context.Background(), "status"), "r-7")
	logger := Component("ledger")
	logger.Info().Ctx(ctx).Msg("status changed")

	entry := decode(t, buf)
	assert.Equal(t, "status", entry["command"])
	assert.Equal(t, "r-7", entry["record_id"])
}
