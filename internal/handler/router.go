package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/simpadu-api/internal/authz"
	"github.com/noah-isme/simpadu-api/internal/middleware"
	"github.com/noah-isme/simpadu-api/internal/service"
	"github.com/noah-isme/simpadu-api/internal/session"
	appErrors "github.com/noah-isme/simpadu-api/pkg/errors"
	"github.com/noah-isme/simpadu-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/simpadu-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/simpadu-api/pkg/middleware/requestid"
	"github.com/noah-isme/simpadu-api/pkg/response"
)

// RouterConfig carries everything Setup needs to build the engine.
type RouterConfig struct {
	BasePath       string
	AllowedOrigins []string
	Cookie         middleware.SessionCookie
	RestoreTimeout time.Duration

	Sessions *session.Manager
	Metrics  *service.MetricsService
	Logger   *zap.Logger
}

// Handlers groups the HTTP handlers mounted by Setup.
type Handlers struct {
	Auth    *AuthHandler
	Portal  *PortalHandler
	Admin   *AdminHandler
	Metrics *MetricsHandler
}

// Setup builds the gin engine and registers every route.
func Setup(cfg RouterConfig, h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(cfg.Logger))
	r.Use(corsmiddleware.New(cfg.AllowedOrigins))
	r.Use(middleware.Metrics(cfg.Metrics))

	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)

	cookie := cfg.Cookie
	if cookie.Path == "" {
		cookie.Path = cfg.BasePath + "/"
	}
	loginPath := cfg.BasePath + "/login"

	app := r.Group(cfg.BasePath)
	app.Use(middleware.WithResponseMeta())
	app.Use(middleware.Session(cfg.Sessions, cookie))

	app.GET("/", func(c *gin.Context) {
		response.JSON(c, http.StatusOK, gin.H{
			"name":  "SIMPADU",
			"login": loginPath,
		}, nil)
	})
	app.GET("/login", h.Auth.LoginPage)
	app.POST("/login", h.Auth.Login)
	app.POST("/logout", h.Auth.Logout)
	app.GET("/session", h.Auth.Session)

	portal := app.Group("")
	portal.Use(middleware.RequireCapability(middleware.GuardConfig{
		LoginPath:      loginPath,
		Timeout:        cfg.RestoreTimeout,
		LoadingMessage: middleware.PortalLoadingMessage,
		Metrics:        cfg.Metrics,
	}, authz.CapPortal))
	{
		portal.GET("/dashboard", h.Portal.Dashboard)
		portal.GET("/profile", h.Portal.Profile)
		portal.GET("/matakuliah", h.Portal.Courses)
		portal.GET("/presensi", h.Portal.Attendance)
		portal.POST("/presensi", middleware.Audit(cfg.Logger, "mark", "attendance"), h.Portal.MarkAttendance)
		portal.GET("/khs", h.Portal.GradeReport)
		portal.GET("/khs/pdf", h.Portal.GradeReportPDF)
	}

	admin := app.Group("/admin")
	admin.Use(middleware.RequireCapability(middleware.GuardConfig{
		LoginPath:      loginPath,
		Timeout:        cfg.RestoreTimeout,
		LoadingMessage: middleware.AdminLoadingMessage,
		Metrics:        cfg.Metrics,
	}, authz.CapManageStudents))
	{
		admin.GET("/dashboard", h.Admin.Dashboard)
		admin.GET("/references", h.Admin.References)
		admin.POST("/references/refresh", middleware.Audit(cfg.Logger, "refresh", "references"), h.Admin.RefreshReferences)

		students := admin.Group("/students")
		students.GET("", h.Admin.ListStudents)
		students.GET("/export", h.Admin.ExportStudents)
		students.GET("/:nim", h.Admin.GetStudent)
		students.POST("", middleware.Audit(cfg.Logger, "create", "mahasiswa"), h.Admin.CreateStudent)
		students.PUT("/:nim", middleware.Audit(cfg.Logger, "update", "mahasiswa"), h.Admin.UpdateStudent)
		students.DELETE("/:nim", middleware.Audit(cfg.Logger, "delete", "mahasiswa"), h.Admin.DeleteStudent)
	}

	r.NoRoute(func(c *gin.Context) {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "Halaman tidak ditemukan."))
	})

	return r
}
