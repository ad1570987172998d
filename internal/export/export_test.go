package export

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/colonyops/violations/internal/core/config"
	"github.com/colonyops/violations/internal/core/violation"
)

func testRecords() []violation.Record {
	return []violation.Record{
		{
			ID:        "r1",
			Status:    violation.StatusOpen,
			CreatedAt: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
			Fields: violation.Fields{
				Type:        "safety",
				Priority:    "critical",
				Department:  "Warehouse",
				StartTime:   "2024-01-01T09:00",
				EndTime:     "2024-01-01T10:30",
				Description: "No gloves <dock 3>",
			},
		},
		{
			ID:     "r2",
			Status: violation.StatusResolved,
			Fields: violation.Fields{Type: "quality", Priority: "low"},
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatJSON, false},
		{"json", FormatJSON, false},
		{"xlsx", FormatXLSX, false},
		{"csv", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnknownFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Equal(t, "violations-export.json", FormatJSON.FileName())
	assert.Equal(t, "violations-export.xlsx", FormatXLSX.FileName())
}

func TestEncodeJSON(t *testing.T) {
	data, err := EncodeJSON(testRecords())
	require.NoError(t, err)

	assert.Contains(t, string(data), "\n  {\n    \"id\": \"r1\",")
	assert.Contains(t, string(data), "<dock 3>", "html is not escaped")

	var got []violation.Record
	require.NoError(t, json.Unmarshal(data, &got))
	require.Len(t, got, 2)
	assert.Equal(t, "Warehouse", got[0].Department)

	empty, err := EncodeJSON(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(empty))
}

func TestEncodeXLSX(t *testing.T) {
	vocab := config.DefaultVocabulary()
	data, err := EncodeXLSX(testRecords(), vocab)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, xlsxHeader, rows[0])
	assert.Equal(t, "r1", rows[1][0])
	assert.Equal(t, "Нарушение безопасности", rows[1][1])
	assert.Equal(t, "Критический", rows[1][2])
	assert.Equal(t, "1ч 30м", rows[1][7])
	assert.Equal(t, "Открыто", rows[1][10])
	assert.Equal(t, "Решено", rows[2][10])
}

func TestEncodeXLSX_RawLabels(t *testing.T) {
	data, err := Encode(FormatXLSX, testRecords(), nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	v, err := f.GetCellValue(SheetName, "B2")
	require.NoError(t, err)
	assert.Equal(t, "safety", v)
}

func TestDirSink(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")

	res, err := Run(context.Background(), DirSink{Dir: dir}, FormatJSON, testRecords(), nil)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "violations-export.json"), res.Location)
	assert.Equal(t, 2, res.Count)

	data, err := os.ReadFile(res.Location)
	require.NoError(t, err)
	assert.Len(t, data, res.Bytes)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files are cleaned up")

	// a second export replaces the first
	_, err = Run(context.Background(), DirSink{Dir: dir}, FormatJSON, testRecords()[:1], nil)
	require.NoError(t, err)
	data, err = os.ReadFile(res.Location)
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"r2"`)
}

func TestNewSink(t *testing.T) {
	sink, err := NewSink(context.Background(), config.ExportConfig{Dest: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, DirSink{}, sink)

	_, err = NewSink(context.Background(), config.ExportConfig{Dest: "s3://"})
	require.Error(t, err)
}
