package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/timetable-planner-api/internal/dto"
	"github.com/noah-isme/timetable-planner-api/internal/middleware"
	"github.com/noah-isme/timetable-planner-api/internal/models"
	"github.com/noah-isme/timetable-planner-api/internal/scheduler"
	appErrors "github.com/noah-isme/timetable-planner-api/pkg/errors"
	"github.com/noah-isme/timetable-planner-api/pkg/response"
)

type plannerService interface {
	Suggest(ctx context.Context, req dto.SuggestScheduleRequest) (*dto.SuggestScheduleResponse, error)
	CheckSelection(ctx context.Context, req dto.CheckSelectionRequest) (*dto.CheckSelectionResponse, error)
}

// PlannerHandler exposes the scheduling engine.
type PlannerHandler struct {
	service plannerService
}

// NewPlannerHandler constructs a PlannerHandler.
func NewPlannerHandler(svc plannerService) *PlannerHandler {
	return &PlannerHandler{service: svc}
}

// Suggest godoc
// @Summary Suggest a weekly timetable
// @Description Picks the best exclusive group for the student's preferences and layers general courses on top.
// @Tags Planner
// @Accept json
// @Produce json
// @Param payload body dto.SuggestScheduleRequest true "Catalog scope, inline courses and preferences"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /planner/suggest [post]
func (h *PlannerHandler) Suggest(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	var req dto.SuggestScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid suggestion payload"))
		return
	}
	if claims.Role != models.RoleAdmin {
		req.StudentID = claims.UserID
	}

	res, err := h.service.Suggest(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, res.Cached)
	middleware.SetMeta(c, "general_only", scheduler.GeneralOnly(res.Result))
	response.JSON(c, http.StatusOK, res.Result, nil, middleware.ExtractMeta(c))
}

// Check godoc
// @Summary Check a hand-picked selection for clashes
// @Tags Planner
// @Accept json
// @Produce json
// @Param payload body dto.CheckSelectionRequest true "Course ids or inline courses"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /planner/check [post]
func (h *PlannerHandler) Check(c *gin.Context) {
	var req dto.CheckSelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid selection payload"))
		return
	}
	res, err := h.service.CheckSelection(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}
