package handler

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/timetable-planner-api/internal/dto"
	"github.com/noah-isme/timetable-planner-api/internal/models"
	appErrors "github.com/noah-isme/timetable-planner-api/pkg/errors"
	"github.com/noah-isme/timetable-planner-api/pkg/response"
)

type catalogService interface {
	List(ctx context.Context, filter models.CourseFilter) ([]models.Course, error)
	Get(ctx context.Context, id string) (*models.Course, error)
	Create(ctx context.Context, req dto.CourseRequest) (*models.Course, error)
	Update(ctx context.Context, id string, req dto.CourseRequest) (*models.Course, error)
	Delete(ctx context.Context, id string) error
	ListGroups(ctx context.Context, term string) ([]models.CourseGroup, error)
	UpsertGroup(ctx context.Context, req dto.UpsertGroupRequest) (*models.CourseGroup, error)
	Import(ctx context.Context, term, filename string, r io.Reader) (*dto.ImportCatalogResponse, error)
}

// CatalogHandler manages the course catalog.
type CatalogHandler struct {
	service catalogService
}

// NewCatalogHandler constructs a CatalogHandler.
func NewCatalogHandler(svc catalogService) *CatalogHandler {
	return &CatalogHandler{service: svc}
}

// ListCourses godoc
// @Summary List catalog courses of a term
// @Tags Catalog
// @Produce json
// @Param term query string true "Term"
// @Param category query string false "Category"
// @Param group query string false "Group"
// @Param search query string false "Code or name fragment"
// @Success 200 {object} response.Envelope
// @Router /catalog/courses [get]
func (h *CatalogHandler) ListCourses(c *gin.Context) {
	filter := models.CourseFilter{
		Term:     c.Query("term"),
		Category: models.Category(c.Query("category")),
		Group:    c.Query("group"),
		Search:   strings.TrimSpace(c.Query("search")),
	}
	courses, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, nil)
}

// GetCourse godoc
// @Summary Get a catalog course
// @Tags Catalog
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /catalog/courses/{id} [get]
func (h *CatalogHandler) GetCourse(c *gin.Context) {
	course, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course, nil)
}

// CreateCourse godoc
// @Summary Add a course to a term catalog
// @Tags Catalog
// @Accept json
// @Produce json
// @Param payload body dto.CourseRequest true "Course"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /catalog/courses [post]
func (h *CatalogHandler) CreateCourse(c *gin.Context) {
	var req dto.CourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid course payload"))
		return
	}
	course, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, course)
}

// UpdateCourse godoc
// @Summary Replace a catalog course
// @Tags Catalog
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param payload body dto.CourseRequest true "Course"
// @Success 200 {object} response.Envelope
// @Router /catalog/courses/{id} [put]
func (h *CatalogHandler) UpdateCourse(c *gin.Context) {
	var req dto.CourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid course payload"))
		return
	}
	course, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course, nil)
}

// DeleteCourse godoc
// @Summary Remove a catalog course
// @Tags Catalog
// @Param id path string true "Course ID"
// @Success 204
// @Router /catalog/courses/{id} [delete]
func (h *CatalogHandler) DeleteCourse(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Import godoc
// @Summary Replace a term catalog from a CSV, XLSX or JSON file
// @Tags Catalog
// @Accept multipart/form-data
// @Produce json
// @Param term query string true "Term"
// @Param file formData file true "Catalog file"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Failure 415 {object} response.Envelope
// @Router /catalog/import [post]
func (h *CatalogHandler) Import(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "file is required"))
		return
	}
	file, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload"))
		return
	}
	defer file.Close() //nolint:errcheck

	res, err := h.service.Import(c.Request.Context(), c.Query("term"), header.Filename, file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// ListGroups godoc
// @Summary List group labels of a term
// @Tags Catalog
// @Produce json
// @Param term query string true "Term"
// @Success 200 {object} response.Envelope
// @Router /catalog/groups [get]
func (h *CatalogHandler) ListGroups(c *gin.Context) {
	groups, err := h.service.ListGroups(c.Request.Context(), c.Query("term"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, groups, nil)
}

// UpsertGroup godoc
// @Summary Create or describe a group label
// @Tags Catalog
// @Accept json
// @Produce json
// @Param payload body dto.UpsertGroupRequest true "Group"
// @Success 200 {object} response.Envelope
// @Router /catalog/groups [put]
func (h *CatalogHandler) UpsertGroup(c *gin.Context) {
	var req dto.UpsertGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid group payload"))
		return
	}
	group, err := h.service.UpsertGroup(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, group, nil)
}
