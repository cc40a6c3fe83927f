package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/simpadu-api/internal/dto"
	"github.com/noah-isme/simpadu-api/internal/middleware"
	"github.com/noah-isme/simpadu-api/internal/models"
	appErrors "github.com/noah-isme/simpadu-api/pkg/errors"
	"github.com/noah-isme/simpadu-api/pkg/response"
)

type portalService interface {
	Dashboard(ctx context.Context, identity models.Identity) (*dto.StudentDashboardResponse, error)
	Profile(ctx context.Context, identity models.Identity) (*dto.StudentProfileResponse, error)
	Courses(ctx context.Context, search string) ([]models.MataKuliah, bool, error)
	Attendance(ctx context.Context, identity models.Identity) (*dto.AttendanceOverviewResponse, error)
	MarkAttendance(ctx context.Context, identity models.Identity, req models.MarkAttendanceRequest) (*dto.MarkAttendanceResponse, error)
	GradeReport(ctx context.Context, identity models.Identity, semester string) (*dto.GradeReportResponse, error)
	GradeReportPDF(ctx context.Context, identity models.Identity, semester string) ([]byte, string, error)
}

// PortalHandler serves the student views.
type PortalHandler struct {
	portal portalService
}

// NewPortalHandler constructs a PortalHandler.
func NewPortalHandler(portal portalService) *PortalHandler {
	return &PortalHandler{portal: portal}
}

// Dashboard godoc
// @Summary Student dashboard
// @Tags Portal
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /dashboard [get]
func (h *PortalHandler) Dashboard(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		return
	}
	resp, err := h.portal.Dashboard(c.Request.Context(), identity)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil)
}

// Profile godoc
// @Summary Student profile
// @Tags Portal
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /profile [get]
func (h *PortalHandler) Profile(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		return
	}
	resp, err := h.portal.Profile(c.Request.Context(), identity)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil)
}

// Courses godoc
// @Summary Course catalog
// @Tags Portal
// @Produce json
// @Param search query string false "Filter by course name or code"
// @Success 200 {object} response.Envelope
// @Router /matakuliah [get]
func (h *PortalHandler) Courses(c *gin.Context) {
	courses, hit, err := h.portal.Courses(c.Request.Context(), c.Query("search"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, courses, nil, middleware.ExtractMeta(c))
}

// Attendance godoc
// @Summary Attendance per enrolled course
// @Tags Portal
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /presensi [get]
func (h *PortalHandler) Attendance(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		return
	}
	resp, err := h.portal.Attendance(c.Request.Context(), identity)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil)
}

// MarkAttendance godoc
// @Summary Mark today's attendance
// @Tags Portal
// @Accept json
// @Produce json
// @Param payload body models.MarkAttendanceRequest true "Attendance"
// @Success 200 {object} response.Envelope
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /presensi [post]
func (h *PortalHandler) MarkAttendance(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		return
	}
	var req models.MarkAttendanceRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid attendance payload"))
		return
	}
	resp, err := h.portal.MarkAttendance(c.Request.Context(), identity, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	status := http.StatusOK
	if resp.Created {
		status = http.StatusCreated
	}
	response.Message(c, status, "Presensi berhasil dicatat.", resp)
}

// GradeReport godoc
// @Summary Semester grade report (KHS)
// @Tags Portal
// @Produce json
// @Param semester query string false "Semester id; defaults to the first semester"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /khs [get]
func (h *PortalHandler) GradeReport(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		return
	}
	resp, err := h.portal.GradeReport(c.Request.Context(), identity, c.Query("semester"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil)
}

// GradeReportPDF godoc
// @Summary Download the KHS as PDF
// @Tags Portal
// @Produce application/pdf
// @Param semester query string false "Semester id"
// @Success 200 {file} file
// @Failure 404 {object} response.Envelope
// @Router /khs/pdf [get]
func (h *PortalHandler) GradeReportPDF(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		return
	}
	content, filename, err := h.portal.GradeReportPDF(c.Request.Context(), identity, c.Query("semester"))
	if err != nil {
		response.Error(c, err)
		return
	}
	attachment(c, filename, "application/pdf", content)
}
