package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/timetable-planner-api/api/swagger"
	"github.com/noah-isme/timetable-planner-api/internal/handler"
	internalmiddleware "github.com/noah-isme/timetable-planner-api/internal/middleware"
	"github.com/noah-isme/timetable-planner-api/internal/models"
	"github.com/noah-isme/timetable-planner-api/internal/repository"
	"github.com/noah-isme/timetable-planner-api/internal/service"
	"github.com/noah-isme/timetable-planner-api/pkg/cache"
	"github.com/noah-isme/timetable-planner-api/pkg/config"
	"github.com/noah-isme/timetable-planner-api/pkg/database"
	"github.com/noah-isme/timetable-planner-api/pkg/jobs"
	"github.com/noah-isme/timetable-planner-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/timetable-planner-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/timetable-planner-api/pkg/middleware/requestid"
	"github.com/noah-isme/timetable-planner-api/pkg/storage"
)

// @title Timetable Planner API
// @version 1.0.0
// @description Weekly class timetable suggestions, catalogs, saved plans and exports
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect database", "error", err)
	}
	defer db.Close() //nolint:errcheck

	if cfg.Migrations.Enabled {
		if err := database.RunMigrations(db.DB, logr); err != nil {
			logr.Sugar().Fatalw("failed to run migrations", "error", err)
		}
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()
	checks := map[string]handler.Pinger{"postgres": handler.PingerFunc(db.PingContext)}

	var cacheRepo service.CacheRepository
	cacheEnabled := false
	if cfg.Planner.CacheEnabled {
		redisClient, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, suggestion cache disabled", "error", err)
		} else {
			defer redisClient.Close() //nolint:errcheck
			repo := repository.NewCacheRepository(redisClient, logr)
			cacheRepo = repo
			cacheEnabled = true
			checks["redis"] = repo
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Planner.CacheTTL, logr, cacheEnabled)

	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	groupRepo := repository.NewCourseGroupRepository(db)
	preferenceRepo := repository.NewStudentPreferenceRepository(db)
	planRepo := repository.NewSchedulePlanRepository(db)
	exportRepo := repository.NewExportJobRepository(db)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            "timetable-planner-api",
	})
	plannerSvc := service.NewPlannerService(courseRepo, preferenceRepo, cacheSvc, metricsSvc, validate, logr, service.PlannerConfig{
		CacheTTL:   cfg.Planner.CacheTTL,
		MaxCourses: cfg.Planner.MaxCourses,
	})
	catalogSvc := service.NewCatalogService(courseRepo, groupRepo, cacheSvc, metricsSvc, validate, logr, service.CatalogConfig{
		MaxImportBytes:      cfg.Catalog.MaxImportBytes,
		PlaceholderLocation: cfg.Catalog.PlaceholderLocation,
	})
	preferenceSvc := service.NewPreferenceService(preferenceRepo, validate, logr)
	planSvc := service.NewPlanService(planRepo, plannerSvc, validate, logr)

	var exportHandler *handler.ExportHandler
	if cfg.Exports.Enabled {
		files, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to init export storage", "error", err)
		}
		signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
		exporter := service.NewTimetableExporter(planRepo, files, signer, service.ExportConfig{APIPrefix: cfg.APIPrefix}, logr, service.ExportRenderers{})
		worker := service.NewExportWorker(exportRepo, exporter, metricsSvc, logr)

		queue := jobs.NewQueue("timetable-exports", worker.Handle, jobs.QueueConfig{
			Workers:    cfg.Exports.WorkerConcurrency,
			MaxRetries: cfg.Exports.WorkerRetries,
			OnGiveUp:   worker.GiveUp,
			Logger:     logr,
		})
		queue.Start(ctx)
		defer queue.Stop()

		exportSvc := service.NewExportService(exportRepo, planRepo, queue, exporter, validate, logr, service.ExportServiceConfig{
			ResultTTL:       cfg.Exports.SignedURLTTL,
			CleanupInterval: cfg.Exports.CleanupInterval,
		})
		exportSvc.RecoverPendingJobs(ctx)
		exportSvc.StartCleanup(ctx)
		exportHandler = handler.NewExportHandler(exportSvc)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))
	r.Use(internalmiddleware.WithResponseMeta())

	metricsHandler := handler.NewMetricsHandler(metricsSvc, checks)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	registerRoutes(r.Group(cfg.APIPrefix), routeDeps{
		logger:      logr,
		auth:        authSvc,
		authH:       handler.NewAuthHandler(authSvc),
		plannerH:    handler.NewPlannerHandler(plannerSvc),
		catalogH:    handler.NewCatalogHandler(catalogSvc),
		preferenceH: handler.NewPreferenceHandler(preferenceSvc),
		planH:       handler.NewPlanHandler(planSvc),
		exportH:     exportHandler,
		metricsH:    metricsHandler,
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}

type routeDeps struct {
	logger      *zap.Logger
	auth        internalmiddleware.TokenValidator
	authH       *handler.AuthHandler
	plannerH    *handler.PlannerHandler
	catalogH    *handler.CatalogHandler
	preferenceH *handler.PreferenceHandler
	planH       *handler.PlanHandler
	exportH     *handler.ExportHandler
	metricsH    *handler.MetricsHandler
}

func registerRoutes(api *gin.RouterGroup, d routeDeps) {
	admin := string(models.RoleAdmin)
	student := string(models.RoleStudent)

	api.POST("/auth/login", d.authH.Login)

	secured := api.Group("")
	secured.Use(internalmiddleware.JWT(d.auth))

	secured.GET("/auth/me", d.authH.Me)
	secured.GET("/metrics/summary", internalmiddleware.RBAC(admin), d.metricsH.Snapshot)

	planner := secured.Group("/planner", internalmiddleware.RBAC(admin, student))
	planner.POST("/suggest", d.plannerH.Suggest)
	planner.POST("/check", d.plannerH.Check)

	catalog := secured.Group("/catalog")
	catalog.GET("/courses", d.catalogH.ListCourses)
	catalog.GET("/courses/:id", d.catalogH.GetCourse)
	catalog.GET("/groups", d.catalogH.ListGroups)
	catalog.POST("/courses", internalmiddleware.RBAC(admin), internalmiddleware.Audit(d.logger, "course.create", "course"), d.catalogH.CreateCourse)
	catalog.PUT("/courses/:id", internalmiddleware.RBAC(admin), internalmiddleware.Audit(d.logger, "course.update", "course"), d.catalogH.UpdateCourse)
	catalog.DELETE("/courses/:id", internalmiddleware.RBAC(admin), internalmiddleware.Audit(d.logger, "course.delete", "course"), d.catalogH.DeleteCourse)
	catalog.POST("/import", internalmiddleware.RBAC(admin), internalmiddleware.Audit(d.logger, "catalog.import", "catalog"), d.catalogH.Import)
	catalog.PUT("/groups", internalmiddleware.RBAC(admin), internalmiddleware.Audit(d.logger, "group.upsert", "course_group"), d.catalogH.UpsertGroup)

	preferences := secured.Group("/students/:studentId/preferences", internalmiddleware.RBAC(admin, internalmiddleware.Self))
	preferences.GET("", d.preferenceH.Get)
	preferences.PUT("", d.preferenceH.Upsert)

	plans := secured.Group("/plans", internalmiddleware.RBAC(admin, student))
	plans.POST("", d.planH.Create)
	plans.GET("", d.planH.List)
	plans.GET("/:id", d.planH.Get)
	plans.DELETE("/:id", internalmiddleware.Audit(d.logger, "plan.delete", "plan"), d.planH.Delete)

	if d.exportH == nil {
		return
	}
	plans.POST("/:id/exports", d.exportH.Create)
	secured.GET("/exports/:id", internalmiddleware.RBAC(admin, student), d.exportH.Status)
	api.GET("/export/:token", internalmiddleware.OptionalJWT(d.auth), internalmiddleware.Audit(d.logger, "export.download", "export"), d.exportH.Download)
}
