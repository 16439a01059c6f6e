package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-planner-api/internal/dto"
	"github.com/noah-isme/timetable-planner-api/internal/models"
	appErrors "github.com/noah-isme/timetable-planner-api/pkg/errors"
	"github.com/noah-isme/timetable-planner-api/pkg/importer"
)

type catalogCourseStore interface {
	List(ctx context.Context, filter models.CourseFilter) ([]models.Course, error)
	GetByID(ctx context.Context, id string) (*models.Course, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id string) error
	ReplaceTerm(ctx context.Context, term string, courses []models.Course) error
}

type catalogGroupStore interface {
	ListByTerm(ctx context.Context, term string) ([]models.CourseGroup, error)
	Upsert(ctx context.Context, group *models.CourseGroup) error
	EnsureNames(ctx context.Context, term string, names []string) error
}

type termInvalidator interface {
	InvalidateTerm(ctx context.Context, term string) error
}

// CatalogConfig tunes catalog imports.
type CatalogConfig struct {
	MaxImportBytes      int64
	PlaceholderLocation string
}

// CatalogService manages the course catalog of each term.
type CatalogService struct {
	courses    catalogCourseStore
	groups     catalogGroupStore
	cache      termInvalidator
	metrics    *MetricsService
	normalizer *importer.Normalizer
	validator  *validator.Validate
	logger     *zap.Logger
	cfg        CatalogConfig
}

// NewCatalogService constructs a CatalogService. cache and metrics may be nil.
func NewCatalogService(courses catalogCourseStore, groups catalogGroupStore, cache termInvalidator, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg CatalogConfig) *CatalogService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxImportBytes <= 0 {
		cfg.MaxImportBytes = 5 << 20
	}
	return &CatalogService{
		courses:    courses,
		groups:     groups,
		cache:      cache,
		metrics:    metrics,
		normalizer: importer.NewNormalizer(cfg.PlaceholderLocation),
		validator:  validate,
		logger:     logger,
		cfg:        cfg,
	}
}

// List returns catalog courses in catalog order.
func (s *CatalogService) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, error) {
	if strings.TrimSpace(filter.Term) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "term is required")
	}
	if filter.Category != "" {
		category, err := models.ParseCategory(string(filter.Category))
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "unknown category")
		}
		filter.Category = category
	}
	courses, err := s.courses.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	if courses == nil {
		courses = []models.Course{}
	}
	return courses, nil
}

// Get returns a course by id.
func (s *CatalogService) Get(ctx context.Context, id string) (*models.Course, error) {
	course, err := s.courses.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return course, nil
}

// Create adds a course to the catalog of a term.
func (s *CatalogService) Create(ctx context.Context, req dto.CourseRequest) (*models.Course, error) {
	course, err := s.courseFromRequest(req)
	if err != nil {
		return nil, err
	}
	if course.ID == "" {
		course.ID = importer.NewCourseID(course.Code, course.Group)
	}
	if err := s.courses.Create(ctx, &course); err != nil {
		if isUniqueViolation(err) {
			return nil, appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "course id already exists: "+course.ID)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course")
	}
	s.afterChange(ctx, course.Term, course.Group)
	return &course, nil
}

// Update replaces a course. The term of a course cannot change.
func (s *CatalogService) Update(ctx context.Context, id string, req dto.CourseRequest) (*models.Course, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	course, err := s.courseFromRequest(req)
	if err != nil {
		return nil, err
	}
	if course.Term != existing.Term {
		return nil, appErrors.Clone(appErrors.ErrValidation, "course term cannot change")
	}
	course.ID = existing.ID
	course.CreatedAt = existing.CreatedAt
	if err := s.courses.Update(ctx, &course); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update course")
	}
	s.afterChange(ctx, course.Term, course.Group)
	return &course, nil
}

// Delete removes a course.
func (s *CatalogService) Delete(ctx context.Context, id string) error {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.courses.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete course")
	}
	s.afterChange(ctx, existing.Term, "")
	return nil
}

// ListGroups returns the group labels of a term.
func (s *CatalogService) ListGroups(ctx context.Context, term string) ([]models.CourseGroup, error) {
	if strings.TrimSpace(term) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "term is required")
	}
	groups, err := s.groups.ListByTerm(ctx, term)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list groups")
	}
	if groups == nil {
		groups = []models.CourseGroup{}
	}
	return groups, nil
}

// UpsertGroup creates a group label or refreshes its description.
func (s *CatalogService) UpsertGroup(ctx context.Context, req dto.UpsertGroupRequest) (*models.CourseGroup, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid group payload")
	}
	group := &models.CourseGroup{
		Term:        strings.TrimSpace(req.Term),
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
	}
	if err := s.groups.Upsert(ctx, group); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save group")
	}
	return group, nil
}

// Import replaces the catalog of term with the courses found in the uploaded file.
func (s *CatalogService) Import(ctx context.Context, term, filename string, r io.Reader) (*dto.ImportCatalogResponse, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "term is required")
	}
	format, err := importer.DetectFormat(filename)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnsupportedFormat.Code, appErrors.ErrUnsupportedFormat.Status, "catalog must be a csv, xlsx or json file")
	}

	resp, err := s.importFile(ctx, term, filename, r)
	s.metrics.RecordCatalogImport(format, err == nil)
	if err != nil {
		s.logger.Warn("catalog import failed", zap.String("term", term), zap.String("file", filename), zap.Error(err))
		return nil, err
	}
	s.logger.Info("catalog imported", zap.String("term", term), zap.String("format", format), zap.Int("courses", resp.Imported))
	return resp, nil
}

func (s *CatalogService) importFile(ctx context.Context, term, filename string, r io.Reader) (*dto.ImportCatalogResponse, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.cfg.MaxImportBytes+1))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload")
	}
	if int64(len(data)) > s.cfg.MaxImportBytes {
		return nil, appErrors.Clone(appErrors.ErrPayloadTooLarge, fmt.Sprintf("catalog file exceeds %d bytes", s.cfg.MaxImportBytes))
	}

	rows, err := importer.Parse(filename, data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	courses, err := s.normalizer.Courses(term, rows)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}

	if err := s.courses.ReplaceTerm(ctx, term, courses); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store catalog")
	}
	groups := groupNames(courses)
	if err := s.groups.EnsureNames(ctx, term, groups); err != nil {
		s.logger.Warn("failed to register imported groups", zap.String("term", term), zap.Error(err))
	}
	s.invalidate(ctx, term)

	return &dto.ImportCatalogResponse{Term: term, Imported: len(courses), Groups: groups}, nil
}

func (s *CatalogService) courseFromRequest(req dto.CourseRequest) (models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.Course{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}
	course, err := courseFromInput(strings.TrimSpace(req.Term), req.CourseInput)
	if err != nil {
		return models.Course{}, err
	}
	for i, session := range course.Sessions {
		if session.Location == "" {
			course.Sessions[i].Location = s.normalizer.Placeholder
		}
	}
	return course, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func (s *CatalogService) afterChange(ctx context.Context, term, group string) {
	if group != "" {
		if err := s.groups.EnsureNames(ctx, term, []string{group}); err != nil {
			s.logger.Warn("failed to register group", zap.String("term", term), zap.String("group", group), zap.Error(err))
		}
	}
	s.invalidate(ctx, term)
}

func (s *CatalogService) invalidate(ctx context.Context, term string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateTerm(ctx, term); err != nil {
		s.logger.Warn("failed to invalidate suggestions", zap.String("term", term), zap.Error(err))
	}
}

func groupNames(courses []models.Course) []string {
	seen := make(map[string]struct{})
	names := make([]string, 0)
	for _, course := range courses {
		if course.Group == "" {
			continue
		}
		if _, ok := seen[course.Group]; ok {
			continue
		}
		seen[course.Group] = struct{}{}
		names = append(names, course.Group)
	}
	return names
}
