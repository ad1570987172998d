package violation

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// StatusFilter selects records by status. StatusAll matches every record.
type StatusFilter string

// StatusAll is the wildcard status filter.
const StatusAll StatusFilter = "all"

// ParseStatusFilter accepts "all", the empty string, or a valid status.
func ParseStatusFilter(s string) (StatusFilter, error) {
	if s == "" || s == string(StatusAll) {
		return StatusAll, nil
	}
	status, err := ParseStatus(s)
	if err != nil {
		return "", err
	}
	return StatusFilter(status), nil
}

// Matches reports whether a status passes the filter.
func (f StatusFilter) Matches(s Status) bool {
	return f == "" || f == StatusAll || Status(f) == s
}

// Next cycles all -> open -> in-progress -> resolved -> all.
func (f StatusFilter) Next() StatusFilter {
	switch f {
	case StatusAll, "":
		return StatusFilter(StatusOpen)
	case StatusFilter(StatusResolved):
		return StatusAll
	default:
		return StatusFilter(Status(f).Next())
	}
}

// MatchesQuery reports whether the record's type, priority or description
// contains query, ignoring case. The empty query matches every record.
func (r Record) MatchesQuery(query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(r.Type), q) ||
		strings.Contains(strings.ToLower(r.Priority), q) ||
		strings.Contains(strings.ToLower(r.Description), q)
}

// Filter returns the records that match both the text query and the status
// filter, in their original order. The input slice is not modified.
func Filter(records []Record, query string, status StatusFilter) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if r.MatchesQuery(query) && status.Matches(r.Status) {
			out = append(out, r)
		}
	}
	return out
}

// Recent returns up to n records from the front of the collection.
func Recent(records []Record, n int) []Record {
	if n < 0 {
		n = 0
	}
	if n > len(records) {
		n = len(records)
	}
	out := make([]Record, n)
	copy(out, records[:n])
	return out
}

// ZeroDuration is returned by ComputeDuration when the window is missing or empty.
const ZeroDuration = "0м"

// DurationMinutes returns the whole minutes between start and end, rounded to
// the nearest minute. ok is false if either timestamp is missing or unparseable.
func DurationMinutes(start, end string) (minutes int, ok bool) {
	s, err := parseLocal(start)
	if err != nil {
		return 0, false
	}
	e, err := parseLocal(end)
	if err != nil {
		return 0, false
	}
	return int(math.Round(e.Sub(s).Minutes())), true
}

// ComputeDuration formats the elapsed time between start and end as
// "<hours>ч <minutes>м". Missing timestamps or a non-positive window yield
// ZeroDuration.
func ComputeDuration(start, end string) string {
	minutes, ok := DurationMinutes(start, end)
	if !ok || minutes <= 0 {
		return ZeroDuration
	}
	return fmt.Sprintf("%dч %dм", minutes/60, minutes%60)
}

func parseLocal(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	if t, err := time.ParseInLocation(TimeLayout, s, time.Local); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// Stats summarizes a collection by status.
type Stats struct {
	Total      int `json:"total"`
	Open       int `json:"open"`
	InProgress int `json:"inProgress"`
	Resolved   int `json:"resolved"`
}

// ComputeStats counts records by status.
func ComputeStats(records []Record) Stats {
	stats := Stats{Total: len(records)}
	for _, r := range records {
		switch r.Status {
		case StatusOpen:
			stats.Open++
		case StatusInProgress:
			stats.InProgress++
		case StatusResolved:
			stats.Resolved++
		}
	}
	return stats
}

// PercentResolved returns round(resolved/total*100), or 0 for an empty collection.
func (s Stats) PercentResolved() int {
	if s.Total == 0 {
		return 0
	}
	return int(math.Round(float64(s.Resolved) / float64(s.Total) * 100))
}

// Active returns the number of records that are not yet resolved.
func (s Stats) Active() int {
	return s.Open + s.InProgress
}

// Count returns the number of records in the given status.
func (s Stats) Count(status Status) int {
	switch status {
	case StatusOpen:
		return s.Open
	case StatusInProgress:
		return s.InProgress
	case StatusResolved:
		return s.Resolved
	default:
		return 0
	}
}
