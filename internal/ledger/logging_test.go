package ledger

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/violations/internal/core/logging"
	"github.com/colonyops/violations/internal/core/violation"
)

func TestStore_LogsRecordContext(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel).Hook(logging.ContextHook{})

	f := newFixture()
	s := f.open(t, WithLogger(logger))

	ctx := logging.WithCommand(context.Background(), "add")
	rec, err := s.Create(ctx, violation.Fields{Type: "safety"})
	require.NoError(t, err)

	_, err = s.SetStatus(ctx, rec.ID, violation.StatusResolved)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"record_id":"`+rec.ID+`"`)
	assert.Contains(t, out, `"command":"add"`)
	assert.Contains(t, out, `"to":"resolved"`)
}
