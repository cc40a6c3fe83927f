package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/simpadu-api/internal/models"
	"github.com/noah-isme/simpadu-api/internal/service"
	appErrors "github.com/noah-isme/simpadu-api/pkg/errors"
	"github.com/noah-isme/simpadu-api/pkg/response"
)

type authService interface {
	Login(ctx context.Context, store service.SessionWriter, req models.LoginRequest) (*models.LoginResponse, error)
	Logout(ctx context.Context, store service.SessionWriter) (*models.LogoutResponse, error)
}

// AuthHandler wires HTTP endpoints to the auth service.
type AuthHandler struct {
	service authService
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc authService) *AuthHandler {
	return &AuthHandler{service: svc}
}

// LoginPage godoc
// @Summary Open the login view
// @Description Visiting the login view signs out any stored session
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /login [get]
func (h *AuthHandler) LoginPage(c *gin.Context) {
	store, ok := sessionFromContext(c)
	if !ok {
		return
	}
	waitForSession(c, store)
	if _, err := h.service.Logout(c.Request.Context(), store); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, store.Snapshot(), nil)
}

// Login godoc
// @Summary Authenticate user
// @Description Authenticate by email and password against the SIMPADU user record
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.LoginRequest true "Login payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid login payload"))
		return
	}
	store, ok := sessionFromContext(c)
	if !ok {
		return
	}
	waitForSession(c, store)

	res, err := h.service.Login(c.Request.Context(), store, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Login berhasil.", res)
}

// Logout godoc
// @Summary Logout current session
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	store, ok := sessionFromContext(c)
	if !ok {
		return
	}
	waitForSession(c, store)

	res, err := h.service.Logout(c.Request.Context(), store)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// Session godoc
// @Summary Current session state
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /session [get]
func (h *AuthHandler) Session(c *gin.Context) {
	store, ok := sessionFromContext(c)
	if !ok {
		return
	}
	waitForSession(c, store)
	response.JSON(c, http.StatusOK, store.Snapshot(), nil)
}
