package export

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/noah-isme/timetable-planner-api/internal/models"
)

// Dataset defines tabular export content.
type Dataset struct {
	Headers []string
	Rows    [][]string
}

// TimetableDataset lists the scheduled courses one per row.
func TimetableDataset(result models.ScheduleResult) Dataset {
	data := Dataset{Headers: []string{"Course", "Code", "Instructor", "Timeslots", "Locations", "Group"}}
	for _, item := range result.Schedule {
		data.Rows = append(data.Rows, []string{
			item.CourseName,
			item.CourseCode,
			item.Instructor,
			item.TimeslotLabel(),
			item.LocationLabel(),
			item.Group,
		})
	}
	return data
}

// CSVExporter renders datasets as CSV.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render produces CSV encoded bytes for the dataset.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("csv requires at least one header")
	}
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(data.Headers); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	for _, row := range data.Rows {
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
