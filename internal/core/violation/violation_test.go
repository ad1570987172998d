package violation

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	for _, s := range Statuses {
		got, err := ParseStatus(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}

	_, err := ParseStatus("closed")
	require.ErrorIs(t, err, ErrInvalidStatus)

	_, err = ParseStatus("")
	require.ErrorIs(t, err, ErrInvalidStatus)
}

func TestCanonicalField(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"type", FieldType, false},
		{"Priority", FieldPriority, false},
		{"actions-taken", FieldActionsTaken, false},
		{"ACTIONS_TAKEN", FieldActionsTaken, false},
		{"start_time", FieldStartTime, false},
		{"field7", FieldDescription, false},
		{"field6", FieldCategory, false},
		{"status", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := CanonicalField(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnknownField)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFields_SetGet(t *testing.T) {
	var f Fields
	for _, name := range FieldNames {
		require.NoError(t, f.Set(name, "v-"+name))
	}

	for _, name := range FieldNames {
		got, err := f.Get(name)
		require.NoError(t, err)
		assert.Equal(t, "v-"+name, got)
	}

	require.ErrorIs(t, f.Set("id", "x"), ErrUnknownField)
}

func TestNewDraft(t *testing.T) {
	now := time.Date(2024, 3, 5, 9, 15, 0, 0, time.Local)
	d := NewDraft(now)

	assert.Equal(t, "2024-03-05T09:15", d.StartTime)
	assert.Equal(t, "2024-03-05T10:15", d.EndTime)
	assert.False(t, d.Editing())
	assert.Empty(t, d.Type)
}

func TestDraft_FillWindow(t *testing.T) {
	now := time.Date(2024, 3, 5, 9, 15, 0, 0, time.Local)
	d := Draft{Fields: Fields{StartTime: "2024-01-01T08:00"}}
	d.FillWindow(now)

	assert.Equal(t, "2024-01-01T08:00", d.StartTime)
	assert.Equal(t, "2024-03-05T10:15", d.EndTime)
}

func TestRecord_JSONRoundTrip(t *testing.T) {
	created := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	rec := Record{
		ID:        "abc",
		Fields:    Fields{Type: "safety", StartTime: "2024-01-01T09:00", ActionsTaken: "briefing"},
		Status:    StatusInProgress,
		CreatedAt: created,
	}

	data, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"actionsTaken":"briefing"`)

	var got Record
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, rec.Fields, got.Fields)
	assert.Equal(t, rec.Status, got.Status)
	assert.True(t, rec.CreatedAt.Equal(got.CreatedAt))
}

func TestRecord_UnmarshalLegacy(t *testing.T) {
	data := `{
		"id": "1704099600000",
		"field1": "safety",
		"field2": "critical",
		"field3": "Warehouse",
		"field4": "2024-01-01T09:00",
		"field5": "2024-01-01T10:30",
		"field6": "",
		"field7": "No gloves",
		"field8": "Issued gloves",
		"status": "resolved",
		"createdAt": "2024-01-01T09:00:00.000Z",
		"extra": {"ignored": true}
	}`

	var rec Record
	require.NoError(t, json.Unmarshal([]byte(data), &rec))

	assert.Equal(t, "1704099600000", rec.ID)
	assert.Equal(t, "safety", rec.Type)
	assert.Equal(t, "critical", rec.Priority)
	assert.Equal(t, "Warehouse", rec.Department)
	assert.Equal(t, "No gloves", rec.Description)
	assert.Equal(t, "Issued gloves", rec.ActionsTaken)
	assert.Equal(t, StatusResolved, rec.Status)
	assert.Equal(t, "1ч 30м", rec.Duration())
	assert.True(t, rec.CreatedAt.Equal(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)))
}

func TestRecord_UnmarshalLooseValues(t *testing.T) {
	var rec Record
	require.NoError(t, json.Unmarshal([]byte(`{"id": 42, "createdAt": null, "type": null}`), &rec))
	assert.Equal(t, "42", rec.ID)
	assert.True(t, rec.CreatedAt.IsZero())
	assert.Empty(t, rec.Type)

	err := json.Unmarshal([]byte(`{"id": "x", "createdAt": "not a time"}`), &rec)
	require.Error(t, err)
}

func TestDraft_UnmarshalLegacy(t *testing.T) {
	var d Draft
	require.NoError(t, json.Unmarshal([]byte(`{"field1":"quality","field4":"","editTargetId":"r1"}`), &d))

	assert.Equal(t, "quality", d.Type)
	assert.Empty(t, d.StartTime)
	assert.Equal(t, "r1", d.EditTargetID)
	assert.True(t, d.Editing())
}

func TestRecord_CanonicalKeyBeatsLegacy(t *testing.T) {
	// map iteration order varies, so decode repeatedly
	for range 50 {
		var rec Record
		require.NoError(t, json.Unmarshal([]byte(`{"id":"1","field1":"old","type":"new","description":"d","field7":"legacy d"}`), &rec))
		assert.Equal(t, "new", rec.Type)
		assert.Equal(t, "d", rec.Description)

		var d Draft
		require.NoError(t, json.Unmarshal([]byte(`{"priority":"high","field2":"low"}`), &d))
		assert.Equal(t, "high", d.Priority)
	}
}
