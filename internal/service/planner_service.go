package service

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-planner-api/internal/dto"
	"github.com/noah-isme/timetable-planner-api/internal/models"
	"github.com/noah-isme/timetable-planner-api/internal/scheduler"
	"github.com/noah-isme/timetable-planner-api/pkg/cache"
	appErrors "github.com/noah-isme/timetable-planner-api/pkg/errors"
)

const inlineCatalogScope = "inline"

type plannerCourseReader interface {
	List(ctx context.Context, filter models.CourseFilter) ([]models.Course, error)
	ListByIDs(ctx context.Context, term string, ids []string) ([]models.Course, error)
}

type plannerPreferenceReader interface {
	Get(ctx context.Context, studentID, term string) (*models.StudentPreferenceRecord, error)
}

type suggestionCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// PlannerConfig governs suggestion caching and request limits.
type PlannerConfig struct {
	CacheTTL   time.Duration
	MaxCourses int
}

// PlannerService resolves catalogs and preferences and runs the scheduling engine.
type PlannerService struct {
	courses     plannerCourseReader
	preferences plannerPreferenceReader
	cache       suggestionCache
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
	cfg         PlannerConfig
}

// NewPlannerService constructs the planner service. cache and metrics may be nil.
func NewPlannerService(courses plannerCourseReader, preferences plannerPreferenceReader, suggestions suggestionCache, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg PlannerConfig) *PlannerService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PlannerService{
		courses:     courses,
		preferences: preferences,
		cache:       suggestions,
		metrics:     metrics,
		validator:   validate,
		logger:      logger,
		cfg:         cfg,
	}
}

// Suggest builds the recommended timetable for the request.
func (s *PlannerService) Suggest(ctx context.Context, req dto.SuggestScheduleRequest) (*dto.SuggestScheduleResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid suggestion request")
	}

	catalog, err := s.resolveCatalog(ctx, req.Term, req.Courses)
	if err != nil {
		return nil, err
	}
	prefs, err := s.resolvePreferences(ctx, req.StudentID, req.Term, req.Preferences)
	if err != nil {
		return nil, err
	}

	key, err := suggestionKey(req.Term, len(req.Courses) > 0, catalog, prefs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to derive cache key")
	}
	if s.cache != nil {
		var cached models.ScheduleResult
		if hit, _ := s.cache.Get(ctx, key, &cached); hit {
			return &dto.SuggestScheduleResponse{Result: cached, Cached: true}, nil
		}
	}

	if ungrouped := scheduler.PartitionCatalog(catalog).Ungrouped; len(ungrouped) > 0 {
		codes := make([]string, len(ungrouped))
		for i, course := range ungrouped {
			codes[i] = course.Code
		}
		s.logger.Warn("non-general courses without a group are ignored", zap.String("term", req.Term), zap.Strings("codes", codes))
	}

	start := time.Now()
	result := scheduler.Suggest(catalog, prefs)
	elapsed := time.Since(start)
	generalOnly := scheduler.GeneralOnly(result)
	s.metrics.ObservePlannerRun(generalOnly, len(result.Conflicts), elapsed)

	if s.cache != nil {
		_ = s.cache.Set(ctx, key, result, s.cfg.CacheTTL)
	}

	s.logger.Info("schedule suggested",
		zap.String("student_id", req.StudentID),
		zap.String("term", req.Term),
		zap.Int("courses", len(catalog)),
		zap.String("group", result.RecommendedGroup),
		zap.Int("scheduled", len(result.Schedule)),
		zap.Int("conflicts", len(result.Conflicts)),
		zap.Duration("elapsed", elapsed),
	)

	return &dto.SuggestScheduleResponse{Result: result}, nil
}

// CheckSelection reports clashes inside a hand-picked list of courses.
func (s *PlannerService) CheckSelection(ctx context.Context, req dto.CheckSelectionRequest) (*dto.CheckSelectionResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid selection payload")
	}

	var selection []models.Course
	if len(req.Courses) > 0 {
		converted, err := coursesFromInput(req.Term, req.Courses)
		if err != nil {
			return nil, err
		}
		selection = converted
	} else {
		ids := uniqueStrings(req.CourseIDs)
		found, err := s.courses.ListByIDs(ctx, req.Term, ids)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load selected courses")
		}
		if missing := missingIDs(ids, found); len(missing) > 0 {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "unknown course ids: "+strings.Join(missing, ", "))
		}
		selection = found
	}

	pairs := scheduler.ConflictingPairs(selection)
	return &dto.CheckSelectionResponse{
		Courses:     len(selection),
		HasConflict: scheduler.CourseListHasConflict(selection),
		Conflicts:   pairs,
	}, nil
}

func (s *PlannerService) resolveCatalog(ctx context.Context, term string, inline []dto.CourseInput) ([]models.Course, error) {
	var catalog []models.Course
	if len(inline) > 0 {
		converted, err := coursesFromInput(term, inline)
		if err != nil {
			return nil, err
		}
		catalog = converted
	} else {
		stored, err := s.courses.List(ctx, models.CourseFilter{Term: term})
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load catalog")
		}
		catalog = stored
	}
	if s.cfg.MaxCourses > 0 && len(catalog) > s.cfg.MaxCourses {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("catalog has %d courses, the limit is %d", len(catalog), s.cfg.MaxCourses))
	}
	return catalog, nil
}

func (s *PlannerService) resolvePreferences(ctx context.Context, studentID, term string, inline *dto.PreferencesInput) (models.StudentPreferences, error) {
	if inline != nil {
		return preferencesFromInput(*inline)
	}
	if studentID == "" || term == "" || s.preferences == nil {
		return models.StudentPreferences{}, nil
	}
	record, err := s.preferences.Get(ctx, studentID, term)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.StudentPreferences{}, nil
		}
		return models.StudentPreferences{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load preferences")
	}
	return record.Preferences, nil
}

// cacheCourse drops bookkeeping columns so equal catalogs hash equally.
type cacheCourse struct {
	ID          string             `json:"id"`
	Code        string             `json:"code"`
	Name        string             `json:"name"`
	Instructors models.Instructors `json:"instructors"`
	Category    models.Category    `json:"category"`
	Sessions    models.Sessions    `json:"sessions"`
	Group       string             `json:"group"`
}

func suggestionKey(term string, inline bool, catalog []models.Course, prefs models.StudentPreferences) (string, error) {
	courses := make([]cacheCourse, len(catalog))
	for i, c := range catalog {
		courses[i] = cacheCourse{ID: c.ID, Code: c.Code, Name: c.Name, Instructors: c.Instructors, Category: c.Category, Sessions: c.Sessions, Group: c.Group}
	}
	payload, err := json.Marshal(struct {
		Courses     []cacheCourse             `json:"courses"`
		Preferences models.StudentPreferences `json:"preferences"`
	}{courses, prefs})
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)

	scope := term
	if inline || scope == "" {
		scope = inlineCatalogScope
	}
	return cache.Key(suggestNamespace, scope, hex.EncodeToString(sum[:])), nil
}

func coursesFromInput(term string, inputs []dto.CourseInput) ([]models.Course, error) {
	courses := make([]models.Course, 0, len(inputs))
	for i, in := range inputs {
		course, err := courseFromInput(term, in)
		if err != nil {
			return nil, err
		}
		if course.ID == "" {
			course.ID = fmt.Sprintf("%s-%d", course.Code, i)
		}
		courses = append(courses, course)
	}
	return courses, nil
}

func courseFromInput(term string, in dto.CourseInput) (models.Course, error) {
	category, err := models.ParseCategory(in.Category)
	if err != nil {
		return models.Course{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fmt.Sprintf("course %s: %v", in.Code, err))
	}
	instructors := make(models.Instructors, len(in.Instructors))
	for i, instructor := range in.Instructors {
		instructors[i] = models.Instructor{ID: strings.TrimSpace(instructor.ID), Name: strings.TrimSpace(instructor.Name)}
	}
	sessions := make(models.Sessions, len(in.Sessions))
	for i, session := range in.Sessions {
		sessions[i] = models.Session{Timeslot: strings.TrimSpace(session.Timeslot), Location: strings.TrimSpace(session.Location)}
	}
	return models.Course{
		ID:          strings.TrimSpace(in.ID),
		Term:        term,
		Code:        strings.TrimSpace(in.Code),
		Name:        strings.TrimSpace(in.Name),
		Instructors: instructors,
		Category:    category,
		Sessions:    sessions,
		Group:       strings.TrimSpace(in.Group),
	}, nil
}

func preferencesFromInput(in dto.PreferencesInput) (models.StudentPreferences, error) {
	var prefs models.StudentPreferences
	if strings.TrimSpace(in.DayOff) != "" {
		day, err := models.ParseWeekday(in.DayOff)
		if err != nil {
			return prefs, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "unknown day off")
		}
		prefs.DayOff = &day
	}
	shift, err := models.ParseShiftPreference(in.Shift)
	if err != nil {
		return prefs, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "unknown shift preference")
	}
	prefs.Shift = shift
	prefs.Instructors = make([]models.InstructorPreference, len(in.Instructors))
	for i, pref := range in.Instructors {
		prefs.Instructors[i] = models.InstructorPreference{
			CourseCode:   strings.TrimSpace(pref.CourseCode),
			InstructorID: strings.TrimSpace(pref.InstructorID),
		}
	}
	return prefs, nil
}

func uniqueStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func missingIDs(requested []string, found []models.Course) []string {
	present := make(map[string]struct{}, len(found))
	for _, c := range found {
		present[c.ID] = struct{}{}
	}
	var missing []string
	for _, id := range requested {
		if _, ok := present[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}
