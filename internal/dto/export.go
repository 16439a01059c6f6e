package dto

import "github.com/noah-isme/timetable-planner-api/internal/models"

// CreateExportRequest captures POST /plans/:id/exports.
type CreateExportRequest struct {
	Format    models.ExportFormat `json:"format" validate:"required,oneof=csv pdf ics xlsx"`
	TermStart string              `json:"termStart" validate:"omitempty,datetime=2006-01-02"`
	Weeks     int                 `json:"weeks" validate:"omitempty,min=1,max=52"`
}

// ExportJobResponse is returned after enqueueing an export.
type ExportJobResponse struct {
	ID       string              `json:"id"`
	Status   models.ExportStatus `json:"status"`
	Progress int                 `json:"progress"`
}

// ExportStatusResponse exposes job progress metadata.
type ExportStatusResponse struct {
	ID        string              `json:"id"`
	PlanID    string              `json:"planId"`
	Format    models.ExportFormat `json:"format"`
	Status    models.ExportStatus `json:"status"`
	Progress  int                 `json:"progress"`
	ResultURL *string             `json:"resultUrl,omitempty"`
	Error     *string             `json:"error,omitempty"`
}
