// Package report derives summary reports from a ledger snapshot.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"

	"github.com/colonyops/violations/internal/core/styles"
	"github.com/colonyops/violations/internal/core/violation"
)

// Labeler resolves stored values to display labels.
type Labeler interface {
	TypeLabel(value string) string
	PriorityLabel(value string) string
	StatusLabel(value string) string
}

// Count is a single bucket in a breakdown.
type Count struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Report is the summary shown by the report command and the Reports tab.
type Report struct {
	GeneratedAt     time.Time          `json:"generatedAt"`
	Stats           violation.Stats    `json:"stats"`
	PercentResolved int                `json:"percentResolved"`
	Active          int                `json:"active"`
	ByType          []Count            `json:"byType"`
	ByPriority      []Count            `json:"byPriority"`
	Recent          []violation.Record `json:"recent"`
}

// Build summarizes records. recent caps the number of records listed from the
// front of the collection.
func Build(records []violation.Record, recent int, labels Labeler, now time.Time) Report {
	stats := violation.ComputeStats(records)
	return Report{
		GeneratedAt:     now,
		Stats:           stats,
		PercentResolved: stats.PercentResolved(),
		Active:          stats.Active(),
		ByType:          breakdown(records, func(r violation.Record) string { return r.Type }, labels.TypeLabel),
		ByPriority:      breakdown(records, func(r violation.Record) string { return r.Priority }, labels.PriorityLabel),
		Recent:          violation.Recent(records, recent),
	}
}

// breakdown counts records by key, largest bucket first, ties by value.
func breakdown(records []violation.Record, key func(violation.Record) string, label func(string) string) []Count {
	counts := map[string]int{}
	for _, r := range records {
		counts[key(r)]++
	}

	out := make([]Count, 0, len(counts))
	for v, n := range counts {
		l := label(v)
		if v == "" {
			l = "(none)"
		}
		out = append(out, Count{Value: v, Label: l, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	return out
}

// Markdown renders the report as a markdown document.
func (r Report) Markdown(labels Labeler) string {
	var b strings.Builder

	b.WriteString("# Violations report\n\n")
	fmt.Fprintf(&b, "_Generated %s_\n\n", r.GeneratedAt.Format(violation.TimeLayout))

	b.WriteString("## By status\n\n")
	b.WriteString("| Status | Count |\n|---|---:|\n")
	for _, s := range violation.Statuses {
		fmt.Fprintf(&b, "| %s | %d |\n", labels.StatusLabel(string(s)), r.Stats.Count(s))
	}

	b.WriteString("\n## Overview\n\n")
	fmt.Fprintf(&b, "- Total records: **%d**\n", r.Stats.Total)
	fmt.Fprintf(&b, "- Resolved: **%d%%**\n", r.PercentResolved)
	fmt.Fprintf(&b, "- Active: **%d**\n", r.Active)

	writeBreakdown(&b, "By type", r.ByType)
	writeBreakdown(&b, "By priority", r.ByPriority)

	b.WriteString("\n## Recent\n\n")
	if len(r.Recent) == 0 {
		b.WriteString("No violations recorded.\n")
		return b.String()
	}
	b.WriteString("| Type | Priority | Status | Duration | Description |\n|---|---|---|---|---|\n")
	for _, rec := range r.Recent {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
			cell(labels.TypeLabel(rec.Type)),
			cell(labels.PriorityLabel(rec.Priority)),
			cell(labels.StatusLabel(string(rec.Status))),
			rec.Duration(),
			cell(rec.Description),
		)
	}

	return b.String()
}

func writeBreakdown(b *strings.Builder, title string, counts []Count) {
	if len(counts) == 0 {
		return
	}
	fmt.Fprintf(b, "\n## %s\n\n", title)
	for _, c := range counts {
		fmt.Fprintf(b, "- %s: %d\n", cell(c.Label), c.Count)
	}
}

func cell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", `\|`)
}

// Render renders markdown for the terminal using the active theme.
// A width of zero or less disables wrapping.
func Render(markdown string, width int) (string, error) {
	opts := []glamour.TermRendererOption{glamour.WithStyles(styles.GlamourStyle())}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}

	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", fmt.Errorf("create renderer: %w", err)
	}

	out, err := r.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}
	return out, nil
}
