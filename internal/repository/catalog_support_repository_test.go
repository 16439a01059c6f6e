package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-planner-api/internal/models"
)

func TestCourseGroupRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCourseGroupRepository(db)

	created := time.Now().Add(-time.Hour)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO course_groups")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("existing-id", created))

	group := &models.CourseGroup{Term: "1405-1", Name: "G1", Description: "Software track"}
	require.NoError(t, repo.Upsert(context.Background(), group))
	assert.Equal(t, "existing-id", group.ID)
	assert.True(t, created.Equal(group.CreatedAt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseGroupRepositoryEnsureNames(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCourseGroupRepository(db)

	for _, name := range []string{"G1", "G2"} {
		mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (term, name) DO NOTHING")).
			WithArgs(sqlmock.AnyArg(), "1405-1", name, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))
	}

	require.NoError(t, repo.EnsureNames(context.Background(), "1405-1", []string{"G1", "G2"}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentPreferenceRepositoryGetAndUpsert(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentPreferenceRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, student_id, term, preferences, created_at, updated_at FROM student_preferences WHERE student_id = $1 AND term = $2")).
		WithArgs("s1", "1405-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "student_id", "term", "preferences", "created_at", "updated_at"}).
			AddRow("p1", "s1", "1405-1", `{"dayOff":"Wednesday","shift":"more-morning","instructors":[{"courseCode":"GEN1","instructorId":"karimi"}]}`, now, now))

	record, err := repo.Get(context.Background(), "s1", "1405-1")
	require.NoError(t, err)
	require.NotNil(t, record.Preferences.DayOff)
	assert.Equal(t, models.Wednesday, *record.Preferences.DayOff)
	assert.Equal(t, models.ShiftMoreMorning, record.Preferences.Shift)
	assert.Len(t, record.Preferences.Instructors, 1)

	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (student_id, term) DO UPDATE")).
		WithArgs(sqlmock.AnyArg(), "s1", "1405-1", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	require.NoError(t, repo.Upsert(context.Background(), &models.StudentPreferenceRecord{StudentID: "s1", Term: "1405-1"}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentPreferenceRepositoryGetMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentPreferenceRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM student_preferences")).WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), "s1", "1405-1")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestSchedulePlanRepositoryCreateAndList(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSchedulePlanRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO schedule_plans")).
		WithArgs(sqlmock.AnyArg(), "s1", "1405-1", "G1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	plan := &models.SchedulePlan{StudentID: "s1", Term: "1405-1", RecommendedGroup: "G1"}
	require.NoError(t, repo.Create(context.Background(), plan))
	assert.NotEmpty(t, plan.ID)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, student_id, term, recommended_group, result, created_at FROM schedule_plans WHERE student_id = $1 AND term = $2 ORDER BY created_at DESC")).
		WithArgs("s1", "1405-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "student_id", "term", "recommended_group", "result", "created_at"}).
			AddRow(plan.ID, "s1", "1405-1", "G1", `{"recommendedGroup":"G1","schedule":[],"conflicts":[],"rationale":"r"}`, now))

	plans, err := repo.List(context.Background(), "s1", "1405-1")
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, "r", plans[0].Result.Rationale)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSchedulePlanRepositoryDeleteMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSchedulePlanRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM schedule_plans WHERE id = $1")).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), "missing"), sql.ErrNoRows)
}
