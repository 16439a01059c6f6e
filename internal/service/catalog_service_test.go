package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-planner-api/internal/dto"
	"github.com/noah-isme/timetable-planner-api/internal/models"
	appErrors "github.com/noah-isme/timetable-planner-api/pkg/errors"
)

type mockCatalogCourseStore struct {
	courses    map[string]models.Course
	replaced   map[string][]models.Course
	replaceErr error
}

func newMockCatalogCourseStore() *mockCatalogCourseStore {
	return &mockCatalogCourseStore{courses: make(map[string]models.Course), replaced: make(map[string][]models.Course)}
}

func (m *mockCatalogCourseStore) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, error) {
	var out []models.Course
	for _, c := range m.courses {
		if c.Term != filter.Term {
			continue
		}
		if filter.Category != "" && c.Category != filter.Category {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (m *mockCatalogCourseStore) GetByID(ctx context.Context, id string) (*models.Course, error) {
	c, ok := m.courses[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &c, nil
}

func (m *mockCatalogCourseStore) Create(ctx context.Context, course *models.Course) error {
	if _, exists := m.courses[course.ID]; exists {
		return &pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint \"courses_pkey\""}
	}
	m.courses[course.ID] = *course
	return nil
}

func (m *mockCatalogCourseStore) Update(ctx context.Context, course *models.Course) error {
	if _, ok := m.courses[course.ID]; !ok {
		return sql.ErrNoRows
	}
	m.courses[course.ID] = *course
	return nil
}

func (m *mockCatalogCourseStore) Delete(ctx context.Context, id string) error {
	if _, ok := m.courses[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.courses, id)
	return nil
}

func (m *mockCatalogCourseStore) ReplaceTerm(ctx context.Context, term string, courses []models.Course) error {
	if m.replaceErr != nil {
		return m.replaceErr
	}
	m.replaced[term] = courses
	return nil
}

type mockCatalogGroupStore struct {
	ensured  map[string][]string
	upserted []models.CourseGroup
}

func newMockCatalogGroupStore() *mockCatalogGroupStore {
	return &mockCatalogGroupStore{ensured: make(map[string][]string)}
}

func (m *mockCatalogGroupStore) ListByTerm(ctx context.Context, term string) ([]models.CourseGroup, error) {
	var out []models.CourseGroup
	for _, name := range m.ensured[term] {
		out = append(out, models.CourseGroup{Term: term, Name: name})
	}
	return out, nil
}

func (m *mockCatalogGroupStore) Upsert(ctx context.Context, group *models.CourseGroup) error {
	group.ID = "group-" + group.Name
	m.upserted = append(m.upserted, *group)
	return nil
}

func (m *mockCatalogGroupStore) EnsureNames(ctx context.Context, term string, names []string) error {
	m.ensured[term] = append(m.ensured[term], names...)
	return nil
}

type recordingInvalidator struct {
	terms []string
}

func (r *recordingInvalidator) InvalidateTerm(ctx context.Context, term string) error {
	r.terms = append(r.terms, term)
	return nil
}

func newCatalogServiceForTest(cfg CatalogConfig) (*CatalogService, *mockCatalogCourseStore, *mockCatalogGroupStore, *recordingInvalidator) {
	courses := newMockCatalogCourseStore()
	groups := newMockCatalogGroupStore()
	invalidator := &recordingInvalidator{}
	svc := NewCatalogService(courses, groups, invalidator, NewMetricsService(), nil, zap.NewNop(), cfg)
	return svc, courses, groups, invalidator
}

const catalogCSV = "code,name,instructor,category,timeslots,locations,group\n" +
	"SP1,Algorithms,Dr. Alan,specialized,Sunday 08:00-10:00,R1,Group1\n" +
	"SP2,Networks,Dr. Grace,specialized,Saturday 08:00-10:00,,Group2\n" +
	"G1,Persian,Dr. X,general,Monday 08:00-10:00;Wednesday 08:00-10:00,R3,\n"

func TestCatalogServiceImportCSV(t *testing.T) {
	svc, courses, groups, invalidator := newCatalogServiceForTest(CatalogConfig{PlaceholderLocation: "TBA"})

	resp, err := svc.Import(context.Background(), "T1", "catalog.csv", strings.NewReader(catalogCSV))
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Imported)
	assert.Equal(t, []string{"Group1", "Group2"}, resp.Groups)

	stored := courses.replaced["T1"]
	require.Len(t, stored, 3)
	assert.Equal(t, "T1", stored[0].Term)
	assert.Equal(t, []string{"TBA"}, stored[1].Locations())
	assert.Equal(t, []string{"R3", "TBA"}, stored[2].Locations())
	assert.Equal(t, []string{"Group1", "Group2"}, groups.ensured["T1"])
	assert.Equal(t, []string{"T1"}, invalidator.terms)
}

func TestCatalogServiceImportRejects(t *testing.T) {
	ctx := context.Background()
	svc, courses, _, invalidator := newCatalogServiceForTest(CatalogConfig{MaxImportBytes: 64})

	_, err := svc.Import(ctx, "T1", "catalog.csv", strings.NewReader(catalogCSV))
	assert.Equal(t, appErrors.ErrPayloadTooLarge.Code, appErrors.FromError(err).Code)

	_, err = svc.Import(ctx, "T1", "catalog.txt", strings.NewReader("x"))
	assert.Equal(t, appErrors.ErrUnsupportedFormat.Code, appErrors.FromError(err).Code)

	_, err = svc.Import(ctx, "", "catalog.csv", strings.NewReader("x"))
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	svc, courses, _, invalidator = newCatalogServiceForTest(CatalogConfig{})
	bad := "code,name,category\nA,Alpha,general\nB,Beta,elective\n"
	_, err = svc.Import(ctx, "T1", "catalog.csv", bytes.NewBufferString(bad))
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "line 3")
	assert.Empty(t, courses.replaced)
	assert.Empty(t, invalidator.terms)

	courses.replaceErr = errors.New("db down")
	_, err = svc.Import(ctx, "T1", "catalog.csv", strings.NewReader(catalogCSV))
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
}

func TestCatalogServiceCourseCRUD(t *testing.T) {
	ctx := context.Background()
	svc, courses, groups, invalidator := newCatalogServiceForTest(CatalogConfig{})

	created, err := svc.Create(ctx, dto.CourseRequest{Term: "T1", CourseInput: dto.CourseInput{
		Code: "SP1", Name: "Algorithms", Category: "specialized", Group: "Group1",
		Sessions: []dto.SessionInput{{Timeslot: "Sunday 08:00-10:00"}},
	}})
	require.NoError(t, err)
	assert.Regexp(t, `^SP1-Group1-[0-9a-f]{8}$`, created.ID)
	assert.Equal(t, []string{"TBA"}, created.Locations())
	assert.Equal(t, []string{"Group1"}, groups.ensured["T1"])
	assert.Equal(t, []string{"T1"}, invalidator.terms)

	_, err = svc.Create(ctx, dto.CourseRequest{Term: "T1", CourseInput: dto.CourseInput{
		ID: created.ID, Code: "SP1", Name: "Algorithms", Category: "specialized", Group: "Group1",
	}})
	conflict := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, conflict.Code)
	assert.Equal(t, http.StatusConflict, conflict.Status)

	updated, err := svc.Update(ctx, created.ID, dto.CourseRequest{Term: "T1", CourseInput: dto.CourseInput{
		Code: "SP1", Name: "Advanced Algorithms", Category: "specialized", Group: "Group1",
	}})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Advanced Algorithms", courses.courses[created.ID].Name)

	_, err = svc.Update(ctx, created.ID, dto.CourseRequest{Term: "T2", CourseInput: dto.CourseInput{Code: "SP1", Name: "x", Category: "specialized"}})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	listed, err := svc.List(ctx, models.CourseFilter{Term: "T1", Category: "تخصصی"})
	require.NoError(t, err)
	assert.Len(t, listed, 1)

	_, err = svc.List(ctx, models.CourseFilter{})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	require.NoError(t, svc.Delete(ctx, created.ID))
	_, err = svc.Get(ctx, created.ID)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(svc.Delete(ctx, created.ID)).Code)

	listed, err = svc.List(ctx, models.CourseFilter{Term: "T1"})
	require.NoError(t, err)
	assert.NotNil(t, listed)
	assert.Empty(t, listed)
}

func TestCatalogServiceGroups(t *testing.T) {
	ctx := context.Background()
	svc, _, groups, _ := newCatalogServiceForTest(CatalogConfig{})

	group, err := svc.UpsertGroup(ctx, dto.UpsertGroupRequest{Term: "T1", Name: " Group1 ", Description: "Networks track"})
	require.NoError(t, err)
	assert.Equal(t, "Group1", group.Name)
	require.Len(t, groups.upserted, 1)

	_, err = svc.UpsertGroup(ctx, dto.UpsertGroupRequest{Term: "T1"})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	list, err := svc.ListGroups(ctx, "T2")
	require.NoError(t, err)
	assert.NotNil(t, list)
}
