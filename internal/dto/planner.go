package dto

import "github.com/noah-isme/timetable-planner-api/internal/models"

// InstructorInput names an instructor of an inline course.
type InstructorInput struct {
	ID   string `json:"id" validate:"required"`
	Name string `json:"name" validate:"required"`
}

// SessionInput is one weekly meeting of an inline course.
type SessionInput struct {
	Timeslot string `json:"timeslot" validate:"required"`
	Location string `json:"location"`
}

// CourseInput describes a catalog entry supplied in a request body.
type CourseInput struct {
	ID          string            `json:"id"`
	Code        string            `json:"code" validate:"required"`
	Name        string            `json:"name" validate:"required"`
	Instructors []InstructorInput `json:"instructors" validate:"dive"`
	Category    string            `json:"category" validate:"required"`
	Sessions    []SessionInput    `json:"sessions" validate:"dive"`
	Group       string            `json:"group"`
}

// InstructorPreferenceInput asks for a specific instructor of a general course.
type InstructorPreferenceInput struct {
	CourseCode   string `json:"courseCode" validate:"required"`
	InstructorID string `json:"instructorId" validate:"required"`
}

// PreferencesInput carries soft constraints as sent by clients.
type PreferencesInput struct {
	DayOff      string                      `json:"dayOff"`
	Shift       string                      `json:"shift"`
	Instructors []InstructorPreferenceInput `json:"instructors" validate:"dive"`
}

// SuggestScheduleRequest asks the planner for a timetable. Without inline courses the stored
// catalog of the term is used; without inline preferences the student's stored set is used.
type SuggestScheduleRequest struct {
	StudentID   string            `json:"studentId"`
	Term        string            `json:"term" validate:"required_without=Courses"`
	Courses     []CourseInput     `json:"courses" validate:"omitempty,dive"`
	Preferences *PreferencesInput `json:"preferences"`
}

// SuggestScheduleResponse wraps a planner result.
type SuggestScheduleResponse struct {
	Result models.ScheduleResult `json:"result"`
	Cached bool                  `json:"cached"`
}

// CheckSelectionRequest validates a hand-picked course list.
type CheckSelectionRequest struct {
	Term      string        `json:"term" validate:"required_with=CourseIDs"`
	CourseIDs []string      `json:"courseIds" validate:"required_without=Courses"`
	Courses   []CourseInput `json:"courses" validate:"omitempty,dive"`
}

// CheckSelectionResponse reports clashes inside a hand-picked list.
type CheckSelectionResponse struct {
	Courses     int                   `json:"courses"`
	HasConflict bool                  `json:"hasConflict"`
	Conflicts   []models.ConflictPair `json:"conflicts"`
}
