package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/simpadu-api/internal/dto"
	"github.com/noah-isme/simpadu-api/internal/middleware"
	"github.com/noah-isme/simpadu-api/internal/models"
	appErrors "github.com/noah-isme/simpadu-api/pkg/errors"
	"github.com/noah-isme/simpadu-api/pkg/response"
)

type studentService interface {
	List(ctx context.Context, filter models.MahasiswaFilter) ([]models.Mahasiswa, *models.Pagination, error)
	Get(ctx context.Context, nim string) (*models.Mahasiswa, error)
	Create(ctx context.Context, m models.Mahasiswa) (models.MutationResult, error)
	Update(ctx context.Context, nim string, m models.Mahasiswa) (models.MutationResult, error)
	Delete(ctx context.Context, nim string) (models.MutationResult, error)
	Export(ctx context.Context, query string) ([]byte, string, error)
	Dashboard(ctx context.Context) (*dto.AdminDashboardResponse, error)
}

type referenceService interface {
	All(ctx context.Context) (*models.References, bool, error)
	Invalidate(ctx context.Context)
}

// AdminHandler serves the administrator views.
type AdminHandler struct {
	students studentService
	refs     referenceService
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(students studentService, refs referenceService) *AdminHandler {
	return &AdminHandler{students: students, refs: refs}
}

// Dashboard godoc
// @Summary Admin dashboard totals
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/dashboard [get]
func (h *AdminHandler) Dashboard(c *gin.Context) {
	resp, err := h.students.Dashboard(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil)
}

// ListStudents godoc
// @Summary List students
// @Tags Admin
// @Produce json
// @Param search query string false "Filter by nama, nim or email"
// @Param page query int false "Page"
// @Success 200 {object} response.Envelope
// @Router /admin/students [get]
func (h *AdminHandler) ListStudents(c *gin.Context) {
	filter := models.MahasiswaFilter{Search: strings.TrimSpace(c.Query("search")), Page: 1}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}

	students, pagination, err := h.students.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, pagination)
}

// GetStudent godoc
// @Summary Get student detail
// @Tags Admin
// @Produce json
// @Param nim path string true "NIM"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/students/{nim} [get]
func (h *AdminHandler) GetStudent(c *gin.Context) {
	student, err := h.students.Get(c.Request.Context(), c.Param("nim"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// CreateStudent godoc
// @Summary Create student
// @Tags Admin
// @Accept json
// @Produce json
// @Param payload body models.Mahasiswa true "Student"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin/students [post]
func (h *AdminHandler) CreateStudent(c *gin.Context) {
	var req models.Mahasiswa
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid student payload"))
		return
	}
	res, err := h.students.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusCreated, res.Message, nil)
}

// UpdateStudent godoc
// @Summary Update student
// @Tags Admin
// @Accept json
// @Produce json
// @Param nim path string true "NIM"
// @Param payload body models.Mahasiswa true "Student"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin/students/{nim} [put]
func (h *AdminHandler) UpdateStudent(c *gin.Context) {
	var req models.Mahasiswa
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid student payload"))
		return
	}
	res, err := h.students.Update(c.Request.Context(), c.Param("nim"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, res.Message, nil)
}

// DeleteStudent godoc
// @Summary Delete student
// @Tags Admin
// @Produce json
// @Param nim path string true "NIM"
// @Success 200 {object} response.Envelope
// @Router /admin/students/{nim} [delete]
func (h *AdminHandler) DeleteStudent(c *gin.Context) {
	res, err := h.students.Delete(c.Request.Context(), c.Param("nim"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, res.Message, nil)
}

// ExportStudents godoc
// @Summary Export students as CSV
// @Tags Admin
// @Produce text/csv
// @Param search query string false "Filter by nama, nim or email"
// @Success 200 {file} file
// @Router /admin/students/export [get]
func (h *AdminHandler) ExportStudents(c *gin.Context) {
	content, filename, err := h.students.Export(c.Request.Context(), c.Query("search"))
	if err != nil {
		response.Error(c, err)
		return
	}
	attachment(c, filename, "text/csv; charset=utf-8", content)
}

// References godoc
// @Summary Prodi, jurusan and dosen lookup lists
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/references [get]
func (h *AdminHandler) References(c *gin.Context) {
	refs, hit, err := h.refs.All(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, refs, nil, middleware.ExtractMeta(c))
}

// RefreshReferences godoc
// @Summary Drop cached lookup lists and load them again
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /admin/references/refresh [post]
func (h *AdminHandler) RefreshReferences(c *gin.Context) {
	h.refs.Invalidate(c.Request.Context())
	refs, _, err := h.refs.All(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Data referensi diperbarui.", refs)
}
