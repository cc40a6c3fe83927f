package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/simpadu-api/api/swagger"
	"github.com/noah-isme/simpadu-api/internal/handler"
	"github.com/noah-isme/simpadu-api/internal/middleware"
	"github.com/noah-isme/simpadu-api/internal/repository"
	"github.com/noah-isme/simpadu-api/internal/service"
	"github.com/noah-isme/simpadu-api/internal/session"
	"github.com/noah-isme/simpadu-api/internal/upstream"
	"github.com/noah-isme/simpadu-api/pkg/cache"
	"github.com/noah-isme/simpadu-api/pkg/config"
	"github.com/noah-isme/simpadu-api/pkg/database"
	"github.com/noah-isme/simpadu-api/pkg/logger"
)

// @title SIMPADU API
// @version 1.0.0
// @description Student portal and administration gateway for SIMPADU
// @BasePath /simpadu
// @schemes http

// studentListMaxAge bounds how long the admin student list is served from
// memory before it is fetched again.
const studentListMaxAge = time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()
	checks := map[string]handler.ReadinessCheck{}

	var redisClient *redis.Client
	if cfg.Session.Store == config.StoreRedis || cfg.Cache.Enabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Fatal("failed to connect redis", zap.Error(err))
		}
		defer redisClient.Close() //nolint:errcheck
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	var db *sqlx.DB
	if cfg.Academic.Store == config.StorePostgres {
		db, err = database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			logr.Fatal("failed to connect database", zap.Error(err))
		}
		defer db.Close() //nolint:errcheck
		checks["database"] = db.PingContext
	}

	metricsSvc := service.NewMetricsService()
	validate := validator.New()

	var sessionStorage session.Storage = session.NewMemoryStorage(cfg.Session.TTL)
	if cfg.Session.Store == config.StoreRedis {
		sessionStorage = session.NewRedisStorage(redisClient, cfg.Session.TTL)
	}
	sessions := session.NewManager(sessionStorage, cfg.Session.KeyPrefix, cfg.Session.RestoreTimeout, logr)

	var cacheRepo *repository.CacheRepository
	if redisClient != nil {
		cacheRepo = repository.NewCacheRepository(redisClient, "simpadu:cache", logr)
	} else {
		cacheRepo = repository.NewCacheRepository(nil, "simpadu:cache", logr)
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.ReferenceTTL, logr, cfg.Cache.Enabled)

	var academicRepo service.AcademicRepository
	if db != nil {
		academicRepo = repository.NewAcademicRepository(db)
	} else {
		academicRepo = repository.NewAcademicMemoryRepository(repository.DefaultAcademicSeed())
	}

	client := upstream.NewClient(cfg.Upstream, metricsSvc, logr)
	refs := service.NewReferenceService(client, cacheSvc, cfg.Cache.ReferenceTTL, logr)
	authSvc := service.NewAuthService(client, validate, metricsSvc, logr, service.AuthConfig{
		Allowlist: cfg.Auth.Allowlist,
		BasePath:  cfg.BasePath,
	})
	studentSvc := service.NewStudentService(client, refs, validate, studentListMaxAge, logr)
	portalSvc := service.NewPortalService(academicRepo, client, refs, validate, logr)

	cookieMaxAge := int(cfg.Session.TTL / time.Second)
	r := handler.Setup(handler.RouterConfig{
		BasePath:       cfg.BasePath,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Cookie: middleware.SessionCookie{
			Name:   cfg.Session.CookieName,
			Secure: cfg.Session.CookieSecure,
			MaxAge: cookieMaxAge,
		},
		RestoreTimeout: sessions.RestoreTimeout(),
		Sessions:       sessions,
		Metrics:        metricsSvc,
		Logger:         logr,
	}, handler.Handlers{
		Auth:    handler.NewAuthHandler(authSvc),
		Portal:  handler.NewPortalHandler(portalSvc),
		Admin:   handler.NewAdminHandler(studentSvc, refs),
		Metrics: handler.NewMetricsHandler(metricsSvc, checks),
	})

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "base_path", cfg.BasePath)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logr.Info("shutting down", zap.String("signal", sig.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
