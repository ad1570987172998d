package doctor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/violations/internal/core/config"
	"github.com/colonyops/violations/internal/core/violation"
)

type fakeLedger struct {
	records  []violation.Record
	draft    violation.Draft
	warnings []error
	dirty    bool
}

func (f fakeLedger) Records() []violation.Record { return f.records }
func (f fakeLedger) Draft() violation.Draft       { return f.draft }
func (f fakeLedger) Warnings() []error           { return f.warnings }
func (f fakeLedger) Dirty() bool                 { return f.dirty }

func statuses(r Result) map[string]Status {
	out := map[string]Status{}
	for _, item := range r.Items {
		out[item.Label] = item.Status
	}
	return out
}

func TestConfigCheck(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()

	result := NewConfigCheck(&cfg, filepath.Join(cfg.DataDir, "missing.yaml")).Run(context.Background())
	got := statuses(result)
	assert.Equal(t, StatusWarn, got["config file"])
	assert.Equal(t, StatusPass, got["validation"])

	cfg.TUI.Theme = "no-such-theme"
	result = NewConfigCheck(&cfg, "").Run(context.Background())
	assert.False(t, Summarize([]Result{result}).Healthy())
}

func TestDataDirCheck(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	tests := []struct {
		name string
		dir  string
		want Status
	}{
		{"writable", dir, StatusPass},
		{"missing", filepath.Join(dir, "nope"), StatusWarn},
		{"not a directory", file, StatusFail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NewDataDirCheck(tt.dir).Run(context.Background())
			require.Len(t, result.Items, 1)
			assert.Equal(t, tt.want, result.Items[0].Status)
		})
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "probe file is removed")
}

func TestStorageCheck(t *testing.T) {
	l := fakeLedger{
		records:  []violation.Record{{ID: "a"}},
		draft:    violation.Draft{EditTargetID: "gone"},
		warnings: []error{errors.New("record 2: invalid status")},
		dirty:    true,
	}

	result := NewStorageCheck(l, config.DriverJSON).Run(context.Background())
	got := statuses(result)
	assert.Equal(t, StatusWarn, got["load"])
	assert.Equal(t, StatusFail, got["persistence"])
	assert.Equal(t, StatusWarn, got["draft"])

	l.dirty = false
	l.draft.EditTargetID = "a"
	l.warnings = nil
	tally := Summarize([]Result{NewStorageCheck(l, config.DriverJSON).Run(context.Background())})
	assert.Equal(t, Tally{Passed: 3}, tally)
}

func TestExportCheck(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.ExportConfig
		want Status
	}{
		{"local dir", config.ExportConfig{Format: "json", Dest: t.TempDir()}, StatusPass},
		{"s3", config.ExportConfig{Format: "xlsx", Dest: "s3://bucket/reports"}, StatusPass},
		{"bad s3", config.ExportConfig{Format: "xlsx", Dest: "s3://"}, StatusFail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NewExportCheck(tt.cfg).Run(context.Background())
			require.Len(t, result.Items, 2)
			assert.Equal(t, tt.want, result.Items[1].Status)
		})
	}
}

func TestRunAll(t *testing.T) {
	results := RunAll(context.Background(), []Check{
		NewDataDirCheck(t.TempDir()),
		NewStorageCheck(fakeLedger{}, config.DriverMemory),
	})
	require.Len(t, results, 2)
	assert.Equal(t, "Data Directory", results[0].Name)
	assert.Equal(t, "Storage", results[1].Name)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Empty(t, RunAll(ctx, []Check{NewDataDirCheck(t.TempDir())}))
}
