package dto

// CreatePlanRequest runs the planner and stores the result for a student.
type CreatePlanRequest struct {
	StudentID   string            `json:"studentId"`
	Term        string            `json:"term" validate:"required"`
	Preferences *PreferencesInput `json:"preferences"`
}
