// Package importer reads catalog spreadsheets into raw rows. Rows are turned into courses by
// a Normalizer.
package importer

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/xuri/excelize/v2"
)

// Supported formats, named after the file extension.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatJSON = "json"
)

var (
	// ErrUnsupportedFormat is returned for files that are not csv, xlsx or json.
	ErrUnsupportedFormat = errors.New("unsupported catalog file format")
	// ErrNoRows is returned when the file holds a header but no course.
	ErrNoRows = errors.New("catalog file has no course rows")
	// ErrMissingColumns is returned when a required header is absent.
	ErrMissingColumns = errors.New("catalog header must contain code, name and category")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Row is one course as found in an import file. Timeslots and locations are
// still in their ';'-separated cell form.
type Row struct {
	Line       int    `csv:"-" json:"-"`
	Code       string `csv:"code" json:"code"`
	Name       string `csv:"name" json:"name"`
	Instructor string `csv:"instructor" json:"instructor"`
	Category   string `csv:"category" json:"category"`
	Timeslots  string `csv:"timeslots" json:"-"`
	Locations  string `csv:"locations" json:"-"`
	Group      string `csv:"group" json:"group"`
}

func (r Row) blank() bool {
	return strings.TrimSpace(r.Code+r.Name+r.Instructor+r.Category+r.Timeslots+r.Locations+r.Group) == ""
}

// jsonRow accepts timeslots and locations as arrays.
type jsonRow struct {
	Row
	Timeslots []string `json:"timeslots"`
	Locations []string `json:"locations"`
}

// DetectFormat maps a filename onto a supported format.
func DetectFormat(filename string) (string, error) {
	switch ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), ".")); ext {
	case FormatCSV, FormatXLSX, FormatJSON:
		return ext, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(filename))
	}
}

// Parse decodes data according to the extension of filename. Blank rows are skipped.
func Parse(filename string, data []byte) ([]Row, error) {
	format, err := DetectFormat(filename)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	var rows []Row
	switch format {
	case FormatCSV:
		rows, err = parseCSV(data)
	case FormatXLSX:
		rows, err = parseXLSX(data)
	case FormatJSON:
		rows, err = parseJSON(data)
	}
	if err != nil {
		return nil, err
	}

	out := rows[:0]
	for _, row := range rows {
		if !row.blank() {
			out = append(out, row)
		}
	}
	if len(out) == 0 {
		return nil, ErrNoRows
	}
	return out, nil
}

func parseCSV(data []byte) ([]Row, error) {
	reader := &headerReader{Reader: csv.NewReader(bytes.NewReader(data))}
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	var rows []Row
	if err := gocsv.UnmarshalCSV(reader, &rows); err != nil {
		if errors.Is(err, ErrMissingColumns) {
			return nil, ErrMissingColumns
		}
		return nil, fmt.Errorf("decode csv: %w", err)
	}
	for i := range rows {
		rows[i].Line = i + 2
	}
	return rows, nil
}

// headerReader rewrites the first record onto the canonical column names so
// localized or aliased headers still match the csv tags of Row.
type headerReader struct {
	*csv.Reader
	seenHeader bool
}

func (r *headerReader) Read() ([]string, error) {
	record, err := r.Reader.Read()
	if err != nil || r.seenHeader {
		return record, err
	}
	r.seenHeader = true
	idx := headerIndex(record)
	if !hasRequiredColumns(idx) {
		return nil, ErrMissingColumns
	}
	canonical := make([]string, len(record))
	copy(canonical, record)
	for column, i := range idx {
		canonical[i] = column
	}
	return canonical, nil
}

func (r *headerReader) ReadAll() ([][]string, error) {
	var records [][]string
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
}

func parseXLSX(data []byte) ([]Row, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	cells, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	if len(cells) < 2 {
		return nil, ErrNoRows
	}

	idx := headerIndex(cells[0])
	if !hasRequiredColumns(idx) {
		return nil, ErrMissingColumns
	}
	cell := func(row []string, column string) string {
		if i, ok := idx[column]; ok && i < len(row) {
			return row[i]
		}
		return ""
	}

	rows := make([]Row, 0, len(cells)-1)
	for i, row := range cells[1:] {
		rows = append(rows, Row{
			Line:       i + 2,
			Code:       cell(row, "code"),
			Name:       cell(row, "name"),
			Instructor: cell(row, "instructor"),
			Category:   cell(row, "category"),
			Timeslots:  cell(row, "timeslots"),
			Locations:  cell(row, "locations"),
			Group:      cell(row, "group"),
		})
	}
	return rows, nil
}

func parseJSON(data []byte) ([]Row, error) {
	var decoded []jsonRow
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	rows := make([]Row, len(decoded))
	for i, item := range decoded {
		row := item.Row
		row.Line = i + 1
		row.Timeslots = strings.Join(item.Timeslots, ";")
		row.Locations = strings.Join(item.Locations, ";")
		rows[i] = row
	}
	return rows, nil
}

var headerAliases = map[string]string{
	"code":        "code",
	"course_code": "code",
	"کد":          "code",
	"name":        "name",
	"course":      "name",
	"نام":         "name",
	"instructor":  "instructor",
	"teacher":     "instructor",
	"استاد":       "instructor",
	"category":    "category",
	"دسته":        "category",
	"timeslots":   "timeslots",
	"timeslot":    "timeslots",
	"زمان":        "timeslots",
	"locations":   "locations",
	"location":    "locations",
	"مکان":        "locations",
	"group":       "group",
	"گروه":        "group",
}

func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		if column, ok := headerAliases[key]; ok {
			if _, seen := idx[column]; !seen {
				idx[column] = i
			}
		}
	}
	return idx
}

func hasRequiredColumns(idx map[string]int) bool {
	for _, column := range []string{"code", "name", "category"} {
		if _, ok := idx[column]; !ok {
			return false
		}
	}
	return true
}
