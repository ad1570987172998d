package violation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"
)

// UnmarshalJSON decodes a record, accepting both the canonical keys and the
// positional field1..field8 keys written by earlier versions. Unknown keys are
// ignored. Status is decoded verbatim; callers normalize invalid values.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var rec Record
	for _, key := range decodeOrder(raw) {
		val := raw[key]
		switch key {
		case "id":
			id, err := decodeLooseString(val)
			if err != nil {
				return fmt.Errorf("decode id: %w", err)
			}
			rec.ID = id
		case "status":
			s, err := decodeLooseString(val)
			if err != nil {
				return fmt.Errorf("decode status: %w", err)
			}
			rec.Status = Status(s)
		case "createdAt":
			t, err := decodeTime(val)
			if err != nil {
				return fmt.Errorf("decode createdAt: %w", err)
			}
			rec.CreatedAt = t
		default:
			if err := decodeField(&rec.Fields, key, val); err != nil {
				return err
			}
		}
	}

	*r = rec
	return nil
}

// UnmarshalJSON decodes a draft with the same key tolerance as Record.
func (d *Draft) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var draft Draft
	for _, key := range decodeOrder(raw) {
		val := raw[key]
		if key == "editTargetId" {
			id, err := decodeLooseString(val)
			if err != nil {
				return fmt.Errorf("decode editTargetId: %w", err)
			}
			draft.EditTargetID = id
			continue
		}
		if err := decodeField(&draft.Fields, key, val); err != nil {
			return err
		}
	}

	*d = draft
	return nil
}

// decodeOrder lists legacy positional keys before every other key, so a
// canonical key present alongside its legacy twin always wins.
func decodeOrder(raw map[string]json.RawMessage) []string {
	keys := slices.Collect(maps.Keys(raw))
	slices.SortFunc(keys, func(a, b string) int {
		_, la := legacyFields[strings.ToLower(a)]
		_, lb := legacyFields[strings.ToLower(b)]
		switch {
		case la && !lb:
			return -1
		case lb && !la:
			return 1
		}
		return strings.Compare(a, b)
	})
	return keys
}

func decodeField(f *Fields, key string, val json.RawMessage) error {
	name, err := CanonicalField(key)
	if err != nil {
		return nil
	}
	s, err := decodeLooseString(val)
	if err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return f.Set(name, s)
}

// decodeLooseString accepts JSON strings, numbers and null.
func decodeLooseString(val json.RawMessage) (string, error) {
	val = bytes.TrimSpace(val)
	if len(val) == 0 || bytes.Equal(val, []byte("null")) {
		return "", nil
	}

	var s string
	if err := json.Unmarshal(val, &s); err == nil {
		return s, nil
	}

	var n json.Number
	if err := json.Unmarshal(val, &n); err != nil {
		return "", err
	}
	return n.String(), nil
}

// decodeTime accepts RFC 3339 strings (with or without fractional seconds),
// the local TimeLayout, unix milliseconds, and null.
func decodeTime(val json.RawMessage) (time.Time, error) {
	s, err := decodeLooseString(val)
	if err != nil || s == "" {
		return time.Time{}, err
	}

	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(TimeLayout, s, time.Local); err == nil {
		return t, nil
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms), nil
	}

	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
