package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-planner-api/internal/dto"
	"github.com/noah-isme/timetable-planner-api/internal/models"
	appErrors "github.com/noah-isme/timetable-planner-api/pkg/errors"
)

type planStore interface {
	Create(ctx context.Context, plan *models.SchedulePlan) error
	GetByID(ctx context.Context, id string) (*models.SchedulePlan, error)
	List(ctx context.Context, studentID, term string) ([]models.SchedulePlan, error)
	Delete(ctx context.Context, id string) error
}

type scheduleSuggester interface {
	Suggest(ctx context.Context, req dto.SuggestScheduleRequest) (*dto.SuggestScheduleResponse, error)
}

// PlanService saves planner results as plans owned by students.
type PlanService struct {
	repo      planStore
	planner   scheduleSuggester
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPlanService constructs a PlanService.
func NewPlanService(repo planStore, planner scheduleSuggester, validate *validator.Validate, logger *zap.Logger) *PlanService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PlanService{repo: repo, planner: planner, validator: validate, logger: logger}
}

// Create runs the planner over the stored catalog of the term and persists the outcome.
// Students always plan for themselves; admins must name the student.
func (s *PlanService) Create(ctx context.Context, req dto.CreatePlanRequest, actorID string, role models.UserRole) (*models.SchedulePlan, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid plan payload")
	}
	studentID := req.StudentID
	if role != models.RoleAdmin {
		studentID = actorID
	}
	if studentID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "studentId is required")
	}

	suggestion, err := s.planner.Suggest(ctx, dto.SuggestScheduleRequest{
		StudentID:   studentID,
		Term:        req.Term,
		Preferences: req.Preferences,
	})
	if err != nil {
		return nil, err
	}

	plan := &models.SchedulePlan{
		StudentID:        studentID,
		Term:             req.Term,
		RecommendedGroup: suggestion.Result.RecommendedGroup,
		Result:           suggestion.Result,
	}
	if err := s.repo.Create(ctx, plan); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save plan")
	}
	s.logger.Info("plan saved", zap.String("plan_id", plan.ID), zap.String("student_id", studentID), zap.String("term", req.Term))
	return plan, nil
}

// List returns the plans of a student. Students only ever see their own.
func (s *PlanService) List(ctx context.Context, studentID, term, actorID string, role models.UserRole) ([]models.SchedulePlan, error) {
	if role != models.RoleAdmin {
		studentID = actorID
	}
	if studentID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "studentId is required")
	}
	plans, err := s.repo.List(ctx, studentID, term)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list plans")
	}
	if plans == nil {
		plans = []models.SchedulePlan{}
	}
	return plans, nil
}

// Get returns a single plan if the actor may see it.
func (s *PlanService) Get(ctx context.Context, id, actorID string, role models.UserRole) (*models.SchedulePlan, error) {
	plan, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "plan not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load plan")
	}
	if role != models.RoleAdmin && plan.StudentID != actorID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "plan belongs to another student")
	}
	return plan, nil
}

// Delete removes a plan the actor owns, or any plan for admins.
func (s *PlanService) Delete(ctx context.Context, id, actorID string, role models.UserRole) error {
	if _, err := s.Get(ctx, id, actorID, role); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "plan not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete plan")
	}
	s.logger.Info("plan deleted", zap.String("plan_id", id), zap.String("actor_id", actorID))
	return nil
}
