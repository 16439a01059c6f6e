package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-planner-api/internal/dto"
	"github.com/noah-isme/timetable-planner-api/internal/models"
	appErrors "github.com/noah-isme/timetable-planner-api/pkg/errors"
)

type mockPlanStore struct {
	plans map[string]*models.SchedulePlan
	seq   int
}

func newMockPlanStore() *mockPlanStore {
	return &mockPlanStore{plans: make(map[string]*models.SchedulePlan)}
}

func (m *mockPlanStore) Create(ctx context.Context, plan *models.SchedulePlan) error {
	m.seq++
	plan.ID = fmt.Sprintf("plan-%d", m.seq)
	m.plans[plan.ID] = plan
	return nil
}

func (m *mockPlanStore) GetByID(ctx context.Context, id string) (*models.SchedulePlan, error) {
	plan, ok := m.plans[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return plan, nil
}

func (m *mockPlanStore) List(ctx context.Context, studentID, term string) ([]models.SchedulePlan, error) {
	var out []models.SchedulePlan
	for _, plan := range m.plans {
		if plan.StudentID == studentID && (term == "" || plan.Term == term) {
			out = append(out, *plan)
		}
	}
	return out, nil
}

func (m *mockPlanStore) Delete(ctx context.Context, id string) error {
	delete(m.plans, id)
	return nil
}

type stubSuggester struct {
	requests []dto.SuggestScheduleRequest
	err      error
}

func (s *stubSuggester) Suggest(ctx context.Context, req dto.SuggestScheduleRequest) (*dto.SuggestScheduleResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.requests = append(s.requests, req)
	return &dto.SuggestScheduleResponse{Result: models.ScheduleResult{RecommendedGroup: "Group1", Schedule: []models.ScheduleItem{}, Conflicts: []string{}}}, nil
}

func TestPlanServiceCreateForcesStudentID(t *testing.T) {
	store := newMockPlanStore()
	planner := &stubSuggester{}
	svc := NewPlanService(store, planner, nil, nil)
	ctx := context.Background()

	plan, err := svc.Create(ctx, dto.CreatePlanRequest{StudentID: "someone-else", Term: "T1"}, "s1", models.RoleStudent)
	require.NoError(t, err)
	assert.Equal(t, "s1", plan.StudentID)
	assert.Equal(t, "Group1", plan.RecommendedGroup)
	assert.Equal(t, "s1", planner.requests[0].StudentID)

	plan, err = svc.Create(ctx, dto.CreatePlanRequest{StudentID: "s2", Term: "T1"}, "admin", models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, "s2", plan.StudentID)

	_, err = svc.Create(ctx, dto.CreatePlanRequest{Term: "T1"}, "admin", models.RoleAdmin)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Create(ctx, dto.CreatePlanRequest{}, "s1", models.RoleStudent)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	planner.err = appErrors.Clone(appErrors.ErrValidation, "catalog too large")
	_, err = svc.Create(ctx, dto.CreatePlanRequest{Term: "T1"}, "s1", models.RoleStudent)
	assert.Equal(t, "catalog too large", appErrors.FromError(err).Message)
}

func TestPlanServiceOwnership(t *testing.T) {
	store := newMockPlanStore()
	svc := NewPlanService(store, &stubSuggester{}, nil, nil)
	ctx := context.Background()

	plan, err := svc.Create(ctx, dto.CreatePlanRequest{Term: "T1"}, "s1", models.RoleStudent)
	require.NoError(t, err)

	_, err = svc.Get(ctx, plan.ID, "s2", models.RoleStudent)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	got, err := svc.Get(ctx, plan.ID, "admin", models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, plan.ID, got.ID)

	listed, err := svc.List(ctx, "s1", "", "s2", models.RoleStudent)
	require.NoError(t, err)
	assert.NotNil(t, listed)
	assert.Empty(t, listed)

	listed, err = svc.List(ctx, "s1", "T1", "admin", models.RoleAdmin)
	require.NoError(t, err)
	assert.Len(t, listed, 1)

	err = svc.Delete(ctx, plan.ID, "s2", models.RoleStudent)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	require.NoError(t, svc.Delete(ctx, plan.ID, "s1", models.RoleStudent))
	_, err = svc.Get(ctx, plan.ID, "s1", models.RoleStudent)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
