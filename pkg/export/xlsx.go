package export

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

const (
	timetableSheet = "Timetable"
	coursesSheet   = "Courses"
)

// XLSXExporter renders a workbook with a grid sheet and a course list sheet.
type XLSXExporter struct{}

// NewXLSXExporter constructs an XLSX exporter.
func NewXLSXExporter() *XLSXExporter {
	return &XLSXExporter{}
}

// Render builds the workbook bytes.
func (e *XLSXExporter) Render(title string, grid Grid, data Dataset) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck

	if err := f.SetSheetName("Sheet1", timetableSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if err := writeGridSheet(f, title, grid); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(coursesSheet); err != nil {
		return nil, fmt.Errorf("create courses sheet: %w", err)
	}
	if err := writeDatasetSheet(f, data); err != nil {
		return nil, err
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

func writeGridSheet(f *excelize.File, title string, grid Grid) error {
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	cellStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Vertical: "top", WrapText: true},
	})
	if err != nil {
		return fmt.Errorf("create cell style: %w", err)
	}

	lastCol, _ := excelize.ColumnNumberToName(len(grid.Days) + 1)
	_ = f.SetColWidth(timetableSheet, "A", "A", 14)
	_ = f.SetColWidth(timetableSheet, "B", lastCol, 26)

	_ = f.SetCellValue(timetableSheet, "A1", title)
	_ = f.MergeCell(timetableSheet, "A1", lastCol+"1")
	_ = f.SetCellStyle(timetableSheet, "A1", lastCol+"1", headerStyle)

	for i, day := range grid.Days {
		cell, _ := excelize.CoordinatesToCellName(i+2, 2)
		_ = f.SetCellValue(timetableSheet, cell, day.String())
	}
	_ = f.SetCellStyle(timetableSheet, "A2", lastCol+"2", headerStyle)

	for r, hour := range grid.Hours {
		row := r + 3
		cell, _ := excelize.CoordinatesToCellName(1, row)
		_ = f.SetCellValue(timetableSheet, cell, HourLabel(hour))
		for i, day := range grid.Days {
			labels := grid.Cell(day, hour)
			if len(labels) == 0 {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(i+2, row)
			_ = f.SetCellValue(timetableSheet, cell, strings.Join(labels, "\n"))
		}
		first, _ := excelize.CoordinatesToCellName(2, row)
		last, _ := excelize.CoordinatesToCellName(len(grid.Days)+1, row)
		_ = f.SetCellStyle(timetableSheet, first, last, cellStyle)
	}
	return nil
}

func writeDatasetSheet(f *excelize.File, data Dataset) error {
	header := make([]interface{}, len(data.Headers))
	for i, h := range data.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(coursesSheet, "A1", &header); err != nil {
		return fmt.Errorf("write courses header: %w", err)
	}
	for r, values := range data.Rows {
		row := make([]interface{}, len(values))
		for i, v := range values {
			row[i] = v
		}
		cell, _ := excelize.CoordinatesToCellName(1, r+2)
		if err := f.SetSheetRow(coursesSheet, cell, &row); err != nil {
			return fmt.Errorf("write courses row: %w", err)
		}
	}
	return nil
}
