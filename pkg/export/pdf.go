package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

const (
	pdfLineHeight = 4.5
	pdfHourWidth  = 24.0
)

// PDFExporter renders a timetable grid followed by the course list.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates a landscape document with the weekly grid on the first page and the
// dataset as a table on the second.
func (e *PDFExporter) Render(title string, grid Grid, data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(10, 12, 10)
	pageWidth, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	usable := pageWidth - left - right

	pdf.AddPage()
	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, tr(title), "", 1, "C", false, 0, "")
		pdf.Ln(2)
	}

	dayWidth := (usable - pdfHourWidth) / float64(len(grid.Days))
	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(pdfHourWidth, 7, "", "1", 0, "C", false, 0, "")
	for _, day := range grid.Days {
		pdf.CellFormat(dayWidth, 7, day.String(), "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 7)
	for _, hour := range grid.Hours {
		texts := make([]string, len(grid.Days))
		lines := 1
		for i, day := range grid.Days {
			texts[i] = tr(strings.Join(grid.Cell(day, hour), "\n"))
			if n := len(pdf.SplitLines([]byte(texts[i]), dayWidth-2)); n > lines {
				lines = n
			}
		}
		height := float64(lines)*pdfLineHeight + 2

		_, y := pdf.GetXY()
		pdf.CellFormat(pdfHourWidth, height, HourLabel(hour), "1", 0, "C", false, 0, "")
		for i := range grid.Days {
			x := left + pdfHourWidth + float64(i)*dayWidth
			pdf.Rect(x, y, dayWidth, height, "D")
			pdf.SetXY(x+1, y+1)
			pdf.MultiCell(dayWidth-2, pdfLineHeight, texts[i], "", "L", false)
		}
		pdf.SetXY(left, y+height)
	}

	if len(grid.Unplaced) > 0 {
		pdf.Ln(3)
		pdf.SetFont("Arial", "I", 8)
		pdf.MultiCell(0, pdfLineHeight, tr("Not shown on the grid: "+strings.Join(grid.Unplaced, "; ")), "", "L", false)
	}

	pdf.AddPage()
	pdf.SetFont("Arial", "B", 9)
	colWidth := usable / float64(len(data.Headers))
	for _, header := range data.Headers {
		pdf.CellFormat(colWidth, 7, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 8)
	for _, row := range data.Rows {
		for _, value := range row {
			pdf.CellFormat(colWidth, 6, tr(value), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
