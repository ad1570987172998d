// Package export renders a read-only snapshot of the ledger to JSON or XLSX
// and delivers it to a local directory or an S3 bucket.
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/colonyops/violations/internal/core/violation"
)

// ErrUnknownFormat is returned for export formats other than json and xlsx.
var ErrUnknownFormat = errors.New("unknown export format")

// Format selects the export encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
)

// ParseFormat validates an export format name. The empty string selects json.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q (want json or xlsx)", ErrUnknownFormat, s)
	}
}

// FileName is the object name the export is written under.
func (f Format) FileName() string {
	return "violations-export." + string(f)
}

// ContentType is the MIME type of the encoded export.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "application/json"
}

// Labeler resolves stored values to display labels.
type Labeler interface {
	TypeLabel(value string) string
	PriorityLabel(value string) string
	StatusLabel(value string) string
}

// Encode renders records in the given format. JSON output keeps stored
// values; labels only apply to the spreadsheet. A nil labeler prints raw values.
func Encode(format Format, records []violation.Record, labels Labeler) ([]byte, error) {
	switch format {
	case FormatJSON:
		return EncodeJSON(records)
	case FormatXLSX:
		return EncodeXLSX(records, labels)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// EncodeJSON renders records as a two-space indented JSON array.
func EncodeJSON(records []violation.Record) ([]byte, error) {
	if records == nil {
		records = []violation.Record{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}
	return buf.Bytes(), nil
}

// Sink stores an encoded export and returns where it was written.
type Sink interface {
	Put(ctx context.Context, name string, data []byte, contentType string) (string, error)
}

// Result describes a finished export.
type Result struct {
	Format   Format `json:"format"`
	Count    int    `json:"count"`
	Bytes    int    `json:"bytes"`
	Location string `json:"location"`
}

// Run encodes records and hands them to sink.
func Run(ctx context.Context, sink Sink, format Format, records []violation.Record, labels Labeler) (Result, error) {
	data, err := Encode(format, records, labels)
	if err != nil {
		return Result{}, err
	}

	loc, err := sink.Put(ctx, format.FileName(), data, format.ContentType())
	if err != nil {
		return Result{}, fmt.Errorf("write export: %w", err)
	}

	return Result{Format: format, Count: len(records), Bytes: len(data), Location: loc}, nil
}
