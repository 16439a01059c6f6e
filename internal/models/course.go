package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Category classifies a course. The set is closed.
type Category string

const (
	CategoryGeneral     Category = "general"
	CategorySpecialized Category = "specialized"
	CategoryPedagogical Category = "pedagogical"
	CategoryCultural    Category = "cultural"
)

var categoryAliases = map[string]Category{
	"general":     CategoryGeneral,
	"عمومی":       CategoryGeneral,
	"specialized": CategorySpecialized,
	"تخصصی":       CategorySpecialized,
	"pedagogical": CategoryPedagogical,
	"educational": CategoryPedagogical,
	"تربیتی":      CategoryPedagogical,
	"cultural":    CategoryCultural,
	"فرهنگی":      CategoryCultural,
}

// ParseCategory resolves a category label, rejecting anything outside the closed set.
func ParseCategory(raw string) (Category, error) {
	if category, ok := categoryAliases[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return category, nil
	}
	return "", fmt.Errorf("unknown course category %q", raw)
}

// IsGeneral reports whether courses of this category belong to the general pool.
func (c Category) IsGeneral() bool {
	return c == CategoryGeneral
}

// Instructor teaches one or more courses.
type Instructor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Session is one weekly meeting of a course: a timeslot string and where it takes place.
type Session struct {
	Timeslot string `json:"timeslot"`
	Location string `json:"location"`
}

// Instructors is persisted as a JSONB array.
type Instructors []Instructor

// Value marshals instructors for persistence.
func (i Instructors) Value() (driver.Value, error) {
	if i == nil {
		i = Instructors{}
	}
	data, err := json.Marshal([]Instructor(i))
	if err != nil {
		return nil, fmt.Errorf("marshal instructors: %w", err)
	}
	return data, nil
}

// Scan unmarshals a JSONB array of instructors.
func (i *Instructors) Scan(value interface{}) error {
	return scanJSON(value, i, "instructors")
}

// Sessions is persisted as a JSONB array of (timeslot, location) pairs.
type Sessions []Session

// Value marshals sessions for persistence.
func (s Sessions) Value() (driver.Value, error) {
	if s == nil {
		s = Sessions{}
	}
	data, err := json.Marshal([]Session(s))
	if err != nil {
		return nil, fmt.Errorf("marshal sessions: %w", err)
	}
	return data, nil
}

// Scan unmarshals a JSONB array of sessions.
func (s *Sessions) Scan(value interface{}) error {
	return scanJSON(value, s, "sessions")
}

// Course is a catalog entry offered in a term.
type Course struct {
	ID          string      `db:"id" json:"id"`
	Term        string      `db:"term" json:"term,omitempty"`
	Code        string      `db:"code" json:"code"`
	Name        string      `db:"name" json:"name"`
	Instructors Instructors `db:"instructors" json:"instructors"`
	Category    Category    `db:"category" json:"category"`
	Sessions    Sessions    `db:"sessions" json:"sessions"`
	Group       string      `db:"group_name" json:"group,omitempty"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at" json:"updated_at"`
}

// Timeslots projects the session timeslots in order.
func (c Course) Timeslots() []string {
	out := make([]string, len(c.Sessions))
	for i, session := range c.Sessions {
		out[i] = session.Timeslot
	}
	return out
}

// Locations projects the session locations in order.
func (c Course) Locations() []string {
	out := make([]string, len(c.Sessions))
	for i, session := range c.Sessions {
		out[i] = session.Location
	}
	return out
}

// InstructorNames joins instructor names for display.
func (c Course) InstructorNames() string {
	names := make([]string, len(c.Instructors))
	for i, instructor := range c.Instructors {
		names[i] = instructor.Name
	}
	return strings.Join(names, ", ")
}

// FindInstructor returns the instructor with the given id.
func (c Course) FindInstructor(id string) (Instructor, bool) {
	for _, instructor := range c.Instructors {
		if instructor.ID == id {
			return instructor, true
		}
	}
	return Instructor{}, false
}

// ConflictLabel is how the course is reported when it cannot be scheduled.
func (c Course) ConflictLabel() string {
	return fmt.Sprintf("%s (%s)", c.Name, c.Code)
}

// CourseGroup stores the display label of an exclusive group within a term.
type CourseGroup struct {
	ID          string    `db:"id" json:"id"`
	Term        string    `db:"term" json:"term"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// CourseFilter scopes catalog listings.
type CourseFilter struct {
	Term     string
	Category Category
	Group    string
	Search   string
}

func scanJSON(value interface{}, dest interface{}, label string) error {
	if value == nil {
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for %s", value, label)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("unmarshal %s: %w", label, err)
	}
	return nil
}
