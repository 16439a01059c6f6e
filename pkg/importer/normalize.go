package importer

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	"github.com/noah-isme/timetable-planner-api/internal/models"
)

const (
	// DefaultPlaceholderLocation pads sessions whose location cell is missing.
	DefaultPlaceholderLocation = "TBA"
	cellSeparator              = ";"
	ungroupedMarker            = "X"
)

var whitespace = regexp.MustCompile(`\s+`)

// RowError pins a normalisation failure to its line in the source file.
type RowError struct {
	Line int
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// Normalizer turns raw rows into catalog courses.
type Normalizer struct {
	Placeholder string
	policy      *bluemonday.Policy
	newID       func() string
}

// NewNormalizer builds a normalizer padding missing locations with placeholder.
func NewNormalizer(placeholder string) *Normalizer {
	if strings.TrimSpace(placeholder) == "" {
		placeholder = DefaultPlaceholderLocation
	}
	return &Normalizer{
		Placeholder: placeholder,
		policy:      bluemonday.StrictPolicy(),
		newID:       uuid.NewString,
	}
}

// Courses normalises every row, stopping at the first invalid one.
func (n *Normalizer) Courses(term string, rows []Row) ([]models.Course, error) {
	courses := make([]models.Course, 0, len(rows))
	for _, row := range rows {
		course, err := n.Course(term, row)
		if err != nil {
			return nil, &RowError{Line: row.Line, Err: err}
		}
		courses = append(courses, course)
	}
	return courses, nil
}

// Course converts a single row.
func (n *Normalizer) Course(term string, row Row) (models.Course, error) {
	code := n.clean(row.Code)
	name := n.clean(row.Name)
	if code == "" {
		return models.Course{}, fmt.Errorf("code is required")
	}
	if name == "" {
		return models.Course{}, fmt.Errorf("name is required for %s", code)
	}
	category, err := models.ParseCategory(n.clean(row.Category))
	if err != nil {
		return models.Course{}, err
	}

	group := n.clean(row.Group)
	timeslots := n.splitCell(row.Timeslots)
	locations := n.splitPositional(row.Locations)

	sessions := make(models.Sessions, len(timeslots))
	for i, slot := range timeslots {
		location := n.Placeholder
		if i < len(locations) && locations[i] != "" {
			location = locations[i]
		}
		sessions[i] = models.Session{Timeslot: slot, Location: location}
	}

	instructors := models.Instructors{}
	if instructor := n.clean(row.Instructor); instructor != "" {
		instructors = append(instructors, models.Instructor{ID: InstructorID(instructor), Name: instructor})
	}

	return models.Course{
		ID:          n.courseID(code, group),
		Term:        term,
		Code:        code,
		Name:        name,
		Instructors: instructors,
		Category:    category,
		Sessions:    sessions,
		Group:       group,
	}, nil
}

// InstructorID derives a stable id from an instructor name: lower case, whitespace runs as dashes.
func InstructorID(name string) string {
	return strings.ToLower(whitespace.ReplaceAllString(strings.TrimSpace(name), "-"))
}

func (n *Normalizer) courseID(code, group string) string {
	return courseID(code, group, n.newID())
}

// NewCourseID builds an id of the form <code>-<group|X>-<8 hex chars>.
func NewCourseID(code, group string) string {
	return courseID(code, group, uuid.NewString())
}

func courseID(code, group, unique string) string {
	if group == "" {
		group = ungroupedMarker
	}
	suffix := strings.ReplaceAll(unique, "-", "")
	if len(suffix) > 8 {
		suffix = suffix[:8]
	}
	return fmt.Sprintf("%s-%s-%s", whitespace.ReplaceAllString(code, "_"), whitespace.ReplaceAllString(group, "_"), suffix)
}

// clean strips markup and collapses whitespace.
func (n *Normalizer) clean(raw string) string {
	text := html.UnescapeString(n.policy.Sanitize(raw))
	return strings.TrimSpace(whitespace.ReplaceAllString(text, " "))
}

func (n *Normalizer) splitCell(raw string) []string {
	parts := strings.Split(raw, cellSeparator)
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if cleaned := n.clean(part); cleaned != "" {
			out = append(out, cleaned)
		}
	}
	return out
}

// splitPositional keeps empty cells so later locations stay aligned with their timeslots.
func (n *Normalizer) splitPositional(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, cellSeparator)
	for i, part := range parts {
		parts[i] = n.clean(part)
	}
	return parts
}
