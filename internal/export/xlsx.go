package export

import (
	"bytes"
	"fmt"

	"github.com/colonyops/violations/internal/core/violation"
	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet holding exported records.
const SheetName = "Violations"

var xlsxHeader = []string{
	"ID",
	"Type",
	"Priority",
	"Department",
	"Category",
	"Start",
	"End",
	"Duration",
	"Description",
	"Actions taken",
	"Status",
	"Created",
}

var xlsxColumnWidths = []float64{38, 26, 14, 20, 16, 18, 18, 12, 40, 40, 14, 20}

type rawLabels struct{}

func (rawLabels) TypeLabel(v string) string     { return v }
func (rawLabels) PriorityLabel(v string) string { return v }
func (rawLabels) StatusLabel(v string) string   { return v }

// EncodeXLSX renders records as a single-sheet workbook with a styled header row.
func EncodeXLSX(records []violation.Record, labels Labeler) ([]byte, error) {
	if labels == nil {
		labels = rawLabels{}
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	index, err := f.NewSheet(SheetName)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("delete default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	if err := f.SetSheetRow(SheetName, "A1", &xlsxHeader); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(xlsxHeader), 1)
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(SheetName, "A1", last, headerStyle); err != nil {
		return nil, fmt.Errorf("style header: %w", err)
	}

	for i, width := range xlsxColumnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(SheetName, col, col, width); err != nil {
			return nil, fmt.Errorf("set column width: %w", err)
		}
	}

	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}

		created := ""
		if !r.CreatedAt.IsZero() {
			created = r.CreatedAt.Local().Format(violation.TimeLayout)
		}

		row := []any{
			r.ID,
			labels.TypeLabel(r.Type),
			labels.PriorityLabel(r.Priority),
			r.Department,
			r.Category,
			r.StartTime,
			r.EndTime,
			r.Duration(),
			r.Description,
			r.ActionsTaken,
			labels.StatusLabel(string(r.Status)),
			created,
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("freeze header: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
