// Package violation defines the violation record domain model and the pure
// query functions that derive filtered views and statistics from it.
package violation

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned when an operation references a record id that is
	// not in the live collection.
	ErrNotFound = errors.New("violation record not found")
	// ErrInvalidStatus is returned for status values outside the enumeration.
	ErrInvalidStatus = errors.New("invalid violation status")
	// ErrUnknownField is returned when a draft field name is not recognized.
	ErrUnknownField = errors.New("unknown draft field")
)

// TimeLayout is the local date-time layout used for incident start and end times.
const TimeLayout = "2006-01-02T15:04"

// Status represents the lifecycle stage of a record.
type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in-progress"
	StatusResolved   Status = "resolved"
)

// Statuses lists every valid status in lifecycle order.
var Statuses = []Status{StatusOpen, StatusInProgress, StatusResolved}

// IsValid returns true if the status is one of the enumerated values.
func (s Status) IsValid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusResolved:
		return true
	default:
		return false
	}
}

func (s Status) String() string {
	return string(s)
}

// Next returns the following status in lifecycle order, wrapping to open.
func (s Status) Next() Status {
	switch s {
	case StatusOpen:
		return StatusInProgress
	case StatusInProgress:
		return StatusResolved
	default:
		return StatusOpen
	}
}

// ParseStatus converts a string to a Status. Returns an error wrapping
// ErrInvalidStatus if the value is not in the enumeration.
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !status.IsValid() {
		return "", fmt.Errorf("%w: %q (must be one of open, in-progress, resolved)", ErrInvalidStatus, s)
	}
	return status, nil
}

// Fields holds the editable attributes of a record. Values are stored as given;
// vocabulary membership is a presentation concern.
type Fields struct {
	Type         string `json:"type"`
	Priority     string `json:"priority"`
	Department   string `json:"department"`
	Category     string `json:"category"`
	StartTime    string `json:"startTime"`
	EndTime      string `json:"endTime"`
	Description  string `json:"description"`
	ActionsTaken string `json:"actionsTaken"`
}

// Record is a single logged violation incident.
type Record struct {
	ID string `json:"id"`
	Fields
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// Duration returns the formatted incident window of the record.
func (r Record) Duration() string {
	return ComputeDuration(r.StartTime, r.EndTime)
}
