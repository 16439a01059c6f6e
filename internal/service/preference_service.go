package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-planner-api/internal/dto"
	"github.com/noah-isme/timetable-planner-api/internal/models"
	appErrors "github.com/noah-isme/timetable-planner-api/pkg/errors"
)

type preferenceStore interface {
	Get(ctx context.Context, studentID, term string) (*models.StudentPreferenceRecord, error)
	Upsert(ctx context.Context, record *models.StudentPreferenceRecord) error
}

// PreferenceService manages the stored planning preferences of students.
type PreferenceService struct {
	repo      preferenceStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPreferenceService constructs a PreferenceService.
func NewPreferenceService(repo preferenceStore, validate *validator.Validate, logger *zap.Logger) *PreferenceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PreferenceService{repo: repo, validator: validate, logger: logger}
}

// Get returns the preferences a student saved for a term.
func (s *PreferenceService) Get(ctx context.Context, studentID, term string) (*models.StudentPreferenceRecord, error) {
	if err := requireStudentTerm(studentID, term); err != nil {
		return nil, err
	}
	record, err := s.repo.Get(ctx, studentID, term)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "preferences not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load preferences")
	}
	return record, nil
}

// Upsert validates and stores the preferences, replacing any earlier set for the term.
func (s *PreferenceService) Upsert(ctx context.Context, studentID, term string, req dto.UpsertPreferencesRequest) (*models.StudentPreferenceRecord, error) {
	if err := requireStudentTerm(studentID, term); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid preferences payload")
	}
	prefs, err := preferencesFromInput(req.PreferencesInput)
	if err != nil {
		return nil, err
	}

	record := &models.StudentPreferenceRecord{StudentID: studentID, Term: term, Preferences: prefs}
	if err := s.repo.Upsert(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save preferences")
	}
	s.logger.Info("preferences saved", zap.String("student_id", studentID), zap.String("term", term))
	return record, nil
}

func requireStudentTerm(studentID, term string) error {
	if strings.TrimSpace(studentID) == "" {
		return appErrors.Clone(appErrors.ErrValidation, "student id is required")
	}
	if strings.TrimSpace(term) == "" {
		return appErrors.Clone(appErrors.ErrValidation, "term is required")
	}
	return nil
}
