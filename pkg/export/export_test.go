package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/noah-isme/timetable-planner-api/internal/models"
)

func sampleResult() models.ScheduleResult {
	return models.ScheduleResult{
		RecommendedGroup: "Group1",
		Schedule: []models.ScheduleItem{
			{
				CourseCode: "SP1",
				CourseName: "Algorithms",
				Instructor: "Dr. Karimi",
				Timeslots:  []string{"Saturday 08:00-10:00", "Monday 10:30-12:00"},
				Locations:  []string{"Room 101", "Lab 2"},
				Group:      "Group1",
			},
			{
				CourseCode: "GEN1",
				CourseName: "Physical Education",
				Instructor: "Coach Amini",
				Timeslots:  []string{"TBA"},
				Locations:  []string{"Gym"},
			},
		},
		Conflicts: []string{},
		Rationale: "Group Group1 selected because: ...",
	}
}

func TestTimetableDatasetAndCSV(t *testing.T) {
	data := TimetableDataset(sampleResult())
	require.Len(t, data.Rows, 2)
	assert.Equal(t, []string{"Algorithms", "SP1", "Dr. Karimi", "Saturday 08:00-10:00; Monday 10:30-12:00", "Room 101; Lab 2", "Group1"}, data.Rows[0])

	out, err := NewCSVExporter().Render(data)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	assert.Equal(t, "Course,Code,Instructor,Timeslots,Locations,Group", lines[0])
	assert.Len(t, lines, 3)

	_, err = NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestBuildGrid(t *testing.T) {
	grid := BuildGrid(sampleResult().Schedule)

	assert.Equal(t, models.Weekdays, grid.Days)
	assert.Equal(t, 8, grid.Hours[0])
	assert.Equal(t, 19, grid.Hours[len(grid.Hours)-1])
	assert.Equal(t, []string{"Algorithms (Room 101)"}, grid.Cell(models.Saturday, 8))
	assert.Equal(t, []string{"Algorithms (Room 101)"}, grid.Cell(models.Saturday, 9))
	assert.Empty(t, grid.Cell(models.Saturday, 10))
	assert.Equal(t, []string{"Algorithms (Lab 2)"}, grid.Cell(models.Monday, 10))
	assert.Equal(t, []string{"Algorithms (Lab 2)"}, grid.Cell(models.Monday, 11))
	assert.Equal(t, []string{"Physical Education: TBA"}, grid.Unplaced)
}

func TestPDFExporterRender(t *testing.T) {
	result := sampleResult()
	out, err := NewPDFExporter().Render("Timetable", BuildGrid(result.Schedule), TimetableDataset(result))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestXLSXExporterRender(t *testing.T) {
	result := sampleResult()
	out, err := NewXLSXExporter().Render("Timetable", BuildGrid(result.Schedule), TimetableDataset(result))
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck

	assert.Equal(t, []string{timetableSheet, coursesSheet}, f.GetSheetList())
	day, err := f.GetCellValue(timetableSheet, "B2")
	require.NoError(t, err)
	assert.Equal(t, "Saturday", day)
	cell, err := f.GetCellValue(timetableSheet, "B3")
	require.NoError(t, err)
	assert.Equal(t, "Algorithms (Room 101)", cell)
	code, err := f.GetCellValue(coursesSheet, "B2")
	require.NoError(t, err)
	assert.Equal(t, "SP1", code)
}

func TestICSExporterRender(t *testing.T) {
	termStart := time.Date(2026, time.September, 23, 0, 0, 0, 0, time.UTC) // a Wednesday
	out, err := NewICSExporter().Render(sampleResult(), CalendarOptions{
		Name:      "Fall 2026",
		TermStart: termStart,
		Weeks:     12,
		Stamp:     termStart,
	})
	require.NoError(t, err)

	body := string(out)
	assert.Equal(t, 2, strings.Count(body, "BEGIN:VEVENT"))
	assert.Contains(t, body, "DTSTART:20260926T080000Z")
	assert.Contains(t, body, "DTSTART:20260928T103000Z")
	assert.Contains(t, body, "RRULE:FREQ=WEEKLY;COUNT=12")
	assert.Contains(t, body, "SUMMARY:Algorithms")
	assert.NotContains(t, body, "Physical Education")

	_, err = NewICSExporter().Render(sampleResult(), CalendarOptions{})
	assert.Error(t, err)
}

func TestFirstOnOrAfter(t *testing.T) {
	saturday := time.Date(2026, time.September, 26, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, saturday, firstOnOrAfter(saturday, time.Saturday))
	assert.Equal(t, saturday.AddDate(0, 0, 6), firstOnOrAfter(saturday, time.Friday))
}
