package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// GeneralOnlyGroup is recommended when the catalog has no exclusive groups.
const GeneralOnlyGroup = "General"

// ScheduleItem is one course placed in a suggested timetable.
type ScheduleItem struct {
	CourseCode string   `json:"courseCode"`
	CourseName string   `json:"courseName"`
	Instructor string   `json:"instructor"`
	Timeslots  []string `json:"timeslots"`
	Locations  []string `json:"locations"`
	Group      string   `json:"group,omitempty"`
}

// TimeslotLabel joins the item's timeslots for tabular display.
func (i ScheduleItem) TimeslotLabel() string {
	return strings.Join(i.Timeslots, "; ")
}

// LocationLabel joins the item's locations for tabular display.
func (i ScheduleItem) LocationLabel() string {
	return strings.Join(i.Locations, "; ")
}

// ScheduleResult is the outcome of a planner run.
type ScheduleResult struct {
	RecommendedGroup string         `json:"recommendedGroup,omitempty"`
	Schedule         []ScheduleItem `json:"schedule"`
	Conflicts        []string       `json:"conflicts"`
	Rationale        string         `json:"rationale"`
}

// Value marshals the result for JSONB persistence.
func (r ScheduleResult) Value() (driver.Value, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("marshal schedule result: %w", err)
	}
	return data, nil
}

// Scan unmarshals a JSONB schedule result.
func (r *ScheduleResult) Scan(value interface{}) error {
	return scanJSON(value, r, "schedule result")
}

// SchedulePlan is a saved planner result owned by a student.
type SchedulePlan struct {
	ID               string         `db:"id" json:"id"`
	StudentID        string         `db:"student_id" json:"student_id"`
	Term             string         `db:"term" json:"term"`
	RecommendedGroup string         `db:"recommended_group" json:"recommended_group"`
	Result           ScheduleResult `db:"result" json:"result"`
	CreatedAt        time.Time      `db:"created_at" json:"created_at"`
}

// ConflictPair names two courses whose sessions overlap.
type ConflictPair struct {
	First  string `json:"first"`
	Second string `json:"second"`
}
