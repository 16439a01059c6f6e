package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/timetable-planner-api/internal/dto"
	"github.com/noah-isme/timetable-planner-api/internal/models"
	appErrors "github.com/noah-isme/timetable-planner-api/pkg/errors"
	"github.com/noah-isme/timetable-planner-api/pkg/response"
)

type preferenceService interface {
	Get(ctx context.Context, studentID, term string) (*models.StudentPreferenceRecord, error)
	Upsert(ctx context.Context, studentID, term string, req dto.UpsertPreferencesRequest) (*models.StudentPreferenceRecord, error)
}

// PreferenceHandler stores per-term student preferences.
type PreferenceHandler struct {
	service preferenceService
}

// NewPreferenceHandler constructs a PreferenceHandler.
func NewPreferenceHandler(svc preferenceService) *PreferenceHandler {
	return &PreferenceHandler{service: svc}
}

// Get godoc
// @Summary Get a student's preferences for a term
// @Tags Preferences
// @Produce json
// @Param studentId path string true "Student ID"
// @Param term query string true "Term"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{studentId}/preferences [get]
func (h *PreferenceHandler) Get(c *gin.Context) {
	record, err := h.service.Get(c.Request.Context(), c.Param("studentId"), c.Query("term"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// Upsert godoc
// @Summary Replace a student's preferences for a term
// @Tags Preferences
// @Accept json
// @Produce json
// @Param studentId path string true "Student ID"
// @Param term query string true "Term"
// @Param payload body dto.UpsertPreferencesRequest true "Preferences"
// @Success 200 {object} response.Envelope
// @Router /students/{studentId}/preferences [put]
func (h *PreferenceHandler) Upsert(c *gin.Context) {
	var req dto.UpsertPreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid preferences payload"))
		return
	}
	record, err := h.service.Upsert(c.Request.Context(), c.Param("studentId"), c.Query("term"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}
