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

type planService interface {
	Create(ctx context.Context, req dto.CreatePlanRequest, actorID string, role models.UserRole) (*models.SchedulePlan, error)
	List(ctx context.Context, studentID, term, actorID string, role models.UserRole) ([]models.SchedulePlan, error)
	Get(ctx context.Context, id, actorID string, role models.UserRole) (*models.SchedulePlan, error)
	Delete(ctx context.Context, id, actorID string, role models.UserRole) error
}

// PlanHandler manages saved timetables.
type PlanHandler struct {
	service planService
}

// NewPlanHandler constructs a PlanHandler.
func NewPlanHandler(svc planService) *PlanHandler {
	return &PlanHandler{service: svc}
}

// Create godoc
// @Summary Run the planner and save the result
// @Tags Plans
// @Accept json
// @Produce json
// @Param payload body dto.CreatePlanRequest true "Plan request"
// @Success 201 {object} response.Envelope
// @Router /plans [post]
func (h *PlanHandler) Create(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	var req dto.CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid plan payload"))
		return
	}
	plan, err := h.service.Create(c.Request.Context(), req, claims.UserID, claims.Role)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, plan)
}

// List godoc
// @Summary List saved plans
// @Description Students see their own plans. Admins pass studentId.
// @Tags Plans
// @Produce json
// @Param studentId query string false "Student ID (admin only)"
// @Param term query string false "Term"
// @Success 200 {object} response.Envelope
// @Router /plans [get]
func (h *PlanHandler) List(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	studentID := studentScope(claims, c.Query("studentId"))
	plans, err := h.service.List(c.Request.Context(), studentID, c.Query("term"), claims.UserID, claims.Role)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, plans, nil)
}

// Get godoc
// @Summary Get a saved plan
// @Tags Plans
// @Produce json
// @Param id path string true "Plan ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /plans/{id} [get]
func (h *PlanHandler) Get(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	plan, err := h.service.Get(c.Request.Context(), c.Param("id"), claims.UserID, claims.Role)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, plan, nil)
}

// Delete godoc
// @Summary Delete a saved plan
// @Tags Plans
// @Param id path string true "Plan ID"
// @Success 204
// @Router /plans/{id} [delete]
func (h *PlanHandler) Delete(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), claims.UserID, claims.Role); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
