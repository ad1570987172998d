package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/violations/internal/core/eventbus"
	"github.com/colonyops/violations/internal/core/violation"
)

func TestMetrics_Observe(t *testing.T) {
	m := NewMetrics()
	m.Observe(violation.Stats{Total: 4, Open: 1, InProgress: 1, Resolved: 2})

	assert.InDelta(t, 1, testutil.ToFloat64(m.records.WithLabelValues("open")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.records.WithLabelValues("resolved")), 0)
	assert.InDelta(t, 4, testutil.ToFloat64(m.total), 0)
	assert.InDelta(t, 50, testutil.ToFloat64(m.resolved), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.active), 0)
}

func TestMetrics_Subscribe(t *testing.T) {
	bus := eventbus.New()
	m := NewMetrics()
	m.Subscribe(bus)

	snap := eventbus.Snapshot{Stats: violation.Stats{Total: 1, Open: 1}}
	bus.PublishRecordCreated(eventbus.RecordCreatedPayload{Snapshot: snap})
	bus.PublishRecordCreated(eventbus.RecordCreatedPayload{Snapshot: snap})
	bus.PublishNotificationPublished(eventbus.NotificationPublishedPayload{Message: "ignored"})

	assert.InDelta(t, 2, testutil.ToFloat64(m.operations.WithLabelValues(string(eventbus.EventRecordCreated))), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.total), 0)
	assert.Equal(t, 1, testutil.CollectAndCount(m.operations))
}

func TestMetrics_WriteTextfile(t *testing.T) {
	m := NewMetrics()
	m.Observe(violation.Stats{Total: 3, Open: 3})

	path := filepath.Join(t.TempDir(), "node", "violations.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `violations_records{status="open"} 3`)
	assert.Contains(t, string(data), "violations_records_total 3")

	require.ErrorContains(t, m.WriteTextfile(filepath.Join(t.TempDir(), "violations.txt")), ".prom")
}
