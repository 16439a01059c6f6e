package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ShiftPreference expresses how a student wants classes spread across the day.
type ShiftPreference string

const (
	ShiftNone          ShiftPreference = ""
	ShiftMoreMorning   ShiftPreference = "more-morning"
	ShiftMoreAfternoon ShiftPreference = "more-afternoon"
	ShiftZeroMorning   ShiftPreference = "zero-morning"
	ShiftZeroAfternoon ShiftPreference = "zero-afternoon"
)

// shiftAliases also accepts the tokens older catalog tooling exported.
var shiftAliases = map[string]ShiftPreference{
	"":               ShiftNone,
	"more-morning":   ShiftMoreMorning,
	"больше-утром":   ShiftMoreMorning,
	"more-afternoon": ShiftMoreAfternoon,
	"больше-днем":    ShiftMoreAfternoon,
	"zero-morning":   ShiftZeroMorning,
	"меньше-утром":   ShiftZeroMorning,
	"zero-afternoon": ShiftZeroAfternoon,
	"меньше-днем":    ShiftZeroAfternoon,
}

// ParseShiftPreference resolves a shift preference to its canonical value. An empty value
// means no preference.
func ParseShiftPreference(raw string) (ShiftPreference, error) {
	if pref, ok := shiftAliases[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return pref, nil
	}
	return "", fmt.Errorf("unknown shift preference %q", raw)
}

// InstructorPreference names the wanted instructor for a general course.
type InstructorPreference struct {
	CourseCode   string `json:"courseCode"`
	InstructorID string `json:"instructorId"`
}

// StudentPreferences carries the soft constraints used to rank groups and general courses.
type StudentPreferences struct {
	DayOff      *Weekday               `json:"dayOff,omitempty"`
	Shift       ShiftPreference        `json:"shift,omitempty"`
	Instructors []InstructorPreference `json:"instructors"`
}

// Value marshals preferences for JSONB persistence.
func (p StudentPreferences) Value() (driver.Value, error) {
	if p.Instructors == nil {
		p.Instructors = []InstructorPreference{}
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal student preferences: %w", err)
	}
	return data, nil
}

// Scan unmarshals JSONB preferences.
func (p *StudentPreferences) Scan(value interface{}) error {
	return scanJSON(value, p, "student preferences")
}

// StudentPreferenceRecord is the stored preference set of a student for a term.
type StudentPreferenceRecord struct {
	ID          string             `db:"id" json:"id"`
	StudentID   string             `db:"student_id" json:"student_id"`
	Term        string             `db:"term" json:"term"`
	Preferences StudentPreferences `db:"preferences" json:"preferences"`
	CreatedAt   time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `db:"updated_at" json:"updated_at"`
}
