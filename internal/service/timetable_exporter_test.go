package service

import (
	"context"
	"database/sql"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-planner-api/internal/models"
	"github.com/noah-isme/timetable-planner-api/pkg/export"
	"github.com/noah-isme/timetable-planner-api/pkg/storage"
)

type planReaderStub struct {
	plans map[string]*models.SchedulePlan
}

func (s planReaderStub) GetByID(ctx context.Context, id string) (*models.SchedulePlan, error) {
	plan, ok := s.plans[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return plan, nil
}

type calendarStub struct {
	opts export.CalendarOptions
}

func (c *calendarStub) Render(result models.ScheduleResult, opts export.CalendarOptions) ([]byte, error) {
	c.opts = opts
	return []byte("BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n"), nil
}

func samplePlan() *models.SchedulePlan {
	return &models.SchedulePlan{
		ID:               "plan-1",
		StudentID:        "student-1",
		Term:             "1403 Fall",
		RecommendedGroup: "Group1",
		Result: models.ScheduleResult{
			RecommendedGroup: "Group1",
			Schedule: []models.ScheduleItem{
				{CourseCode: "SP1", CourseName: "Algorithms", Instructor: "Dr. Alan", Timeslots: []string{"Saturday 08:00-10:00"}, Locations: []string{"R1"}, Group: "Group1"},
				{CourseCode: "G1", CourseName: "Persian", Instructor: "Dr. X", Timeslots: []string{"Monday 13:00-15:00"}, Locations: []string{"R2"}},
			},
			Conflicts: []string{},
			Rationale: "Group Group1 selected because: Saturday is completely free.",
		},
	}
}

func newTimetableExporterForTest(t *testing.T, renderers ExportRenderers) (*TimetableExporter, *storage.LocalStorage) {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("secret", time.Hour)
	plans := planReaderStub{plans: map[string]*models.SchedulePlan{"plan-1": samplePlan()}}
	return NewTimetableExporter(plans, store, signer, ExportConfig{APIPrefix: "/api/v1/"}, zap.NewNop(), renderers), store
}

func TestTimetableExporterGenerateCSV(t *testing.T) {
	exporter, store := newTimetableExporterForTest(t, ExportRenderers{})
	job := &models.ExportJob{ID: "0a1b2c3d-0000-4000-8000-000000000000", PlanID: "plan-1", Params: models.ExportJobParams{Format: models.ExportFormatCSV}}

	result, err := exporter.Generate(context.Background(), job)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.URL, "/api/v1/export/"))
	assert.True(t, strings.HasSuffix(result.RelativePath, "timetable_1403_Fall_0a1b2c3d.csv"))
	assert.Equal(t, models.ExportFormatCSV, result.Format)

	jobID, relPath, _, err := exporter.ParseToken(result.Token, false)
	require.NoError(t, err)
	assert.Equal(t, job.ID, jobID)
	assert.Equal(t, result.RelativePath, relPath)

	file, err := store.Open(relPath)
	require.NoError(t, err)
	defer file.Close()
	content, err := io.ReadAll(file)
	require.NoError(t, err)
	assert.Contains(t, string(content), "Algorithms")
	assert.Contains(t, string(content), "Persian")
}

func TestTimetableExporterICSOptions(t *testing.T) {
	calendar := &calendarStub{}
	exporter, _ := newTimetableExporterForTest(t, ExportRenderers{ICS: calendar})
	start := time.Date(2024, 9, 21, 0, 0, 0, 0, time.UTC)
	job := &models.ExportJob{ID: "job-ics", PlanID: "plan-1", Params: models.ExportJobParams{Format: models.ExportFormatICS, TermStart: &start, Weeks: 16}}

	result, err := exporter.Generate(context.Background(), job)
	require.NoError(t, err)
	assert.Equal(t, models.ExportFormatICS, result.Format)
	assert.Equal(t, start, calendar.opts.TermStart)
	assert.Equal(t, 16, calendar.opts.Weeks)
	assert.Equal(t, "Timetable 1403 Fall - Group1", calendar.opts.Name)
}

func TestTimetableExporterGenerateErrors(t *testing.T) {
	exporter, _ := newTimetableExporterForTest(t, ExportRenderers{})

	_, err := exporter.Generate(context.Background(), &models.ExportJob{ID: "j", PlanID: "missing", Params: models.ExportJobParams{Format: models.ExportFormatCSV}})
	assert.ErrorIs(t, err, sql.ErrNoRows)

	_, err = exporter.Generate(context.Background(), &models.ExportJob{ID: "j", PlanID: "plan-1", Params: models.ExportJobParams{Format: "docx"}})
	assert.Error(t, err)

	_, err = exporter.Generate(context.Background(), nil)
	assert.Error(t, err)
}

func TestPlanTitleFallsBackToGeneral(t *testing.T) {
	assert.Equal(t, "Timetable T1 - General", planTitle(&models.SchedulePlan{Term: "T1"}))
	assert.Equal(t, "abcd1234", shortID("abcd1234-ffff"))
	assert.Equal(t, "ab", shortID("ab"))
}
