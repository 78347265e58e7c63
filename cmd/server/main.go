package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"alcyxob/studio-calendar/internal/activity"
	"alcyxob/studio-calendar/internal/api"
	"alcyxob/studio-calendar/internal/config"
	"alcyxob/studio-calendar/internal/jobs"
	"alcyxob/studio-calendar/internal/repository/mongo"
	"alcyxob/studio-calendar/internal/schedule"
	"alcyxob/studio-calendar/internal/service"
	"alcyxob/studio-calendar/internal/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// @title Studio Calendar API
// @version 1.0
// @description Booking engine for gyms and studios: trainer calendars, recurring sessions, off-days and client self-booking.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		panic("could not load config: " + err.Error())
	}
	logger, err := cfg.Log.NewLogger()
	if err != nil {
		panic("could not build logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting studio calendar server",
		zap.String("site_id", cfg.Studio.SiteID),
		zap.String("timezone", cfg.Studio.Timezone),
	)

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		logger.Fatal("could not connect to MongoDB", zap.Error(err))
	}
	defer func() {
		logger.Info("disconnecting MongoDB")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			logger.Error("failed to disconnect MongoDB", zap.Error(err))
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)

	// --- Ensure Indexes ---
	// The unique indexes back the double-booking and off-day guards, so
	// this runs before the server accepts traffic.
	if cfg.Database.EnsureIndexes {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		failed := mongo.EnsureIndexes(ctx, appDB)
		cancel()
		for coll, err := range failed {
			logger.Error("index creation failed", zap.String("collection", coll), zap.Error(err))
		}
		if len(failed) > 0 {
			logger.Warn("continuing without some indexes; affected queries report a missing index")
		}
	}

	// --- Initialize Storage ---
	storageCtx, cancelStorage := context.WithTimeout(context.Background(), 30*time.Second)
	fileStorage, err := storage.NewS3Storage(storageCtx, cfg.S3, logger)
	cancelStorage()
	if err != nil {
		logger.Fatal("failed to initialize S3 storage", zap.Error(err))
	}

	// --- Initialize Repositories ---
	site := cfg.Studio.SiteID
	userRepo := mongo.NewMongoUserRepository(appDB, site)
	trainerRepo := mongo.NewMongoTrainerRepository(appDB, site)
	clientRepo := mongo.NewMongoClientRepository(appDB, site)
	serviceRepo := mongo.NewMongoServiceRepository(appDB, site)
	sessionRepo := mongo.NewMongoSessionRepository(appDB, site, cfg.Booking.BatchLimit)
	offDayRepo := mongo.NewMongoOffDayRepository(appDB, site)
	activityRepo := mongo.NewMongoActivityRepository(appDB, site)
	exportRepo := mongo.NewMongoExportRepository(appDB, site)

	// --- Initialize Services ---
	loc := cfg.Studio.Location()
	sink := activity.NewEmitter(activityRepo, logger)

	bookingService := service.NewBookingService(service.BookingDeps{
		Sessions: sessionRepo,
		Trainers: trainerRepo,
		Clients:  clientRepo,
		Services: serviceRepo,
		OffDays:  offDayRepo,
		Activity: activityRepo,
		Sink:     sink,
	}, service.BookingOptions{
		Location:      loc,
		Policies:      schedule.NewPolicyTable(cfg.Booking.ClientWindowDays, cfg.Booking.StaffHorizonDays),
		FirstSlotHour: cfg.Booking.FirstSlotHour,
		LastSlotHour:  cfg.Booking.LastSlotHour,
	}, logger)
	auditService := service.NewAuditService(sessionRepo, logger)

	services := api.Services{
		Auth:     service.NewAuthService(userRepo, clientRepo, cfg.JWT.Secret, cfg.JWT.Expiration, site),
		Booking:  bookingService,
		Trainers: service.NewTrainerService(trainerRepo, sessionRepo, logger),
		Clients:  service.NewClientService(clientRepo, sessionRepo, sink, loc, logger),
		Catalog:  service.NewCatalogService(serviceRepo, trainerRepo, sessionRepo, logger),
		Export:   service.NewExportService(sessionRepo, serviceRepo, exportRepo, fileStorage, site, loc, logger),
		Audit:    auditService,
	}

	// --- Scheduled Jobs ---
	scheduler, err := jobs.NewScheduler(cfg.Audit.Schedule, jobs.NewAuditJob(auditService, logger), logger)
	if err != nil {
		logger.Fatal("invalid audit schedule", zap.String("schedule", cfg.Audit.Schedule), zap.Error(err))
	}
	if scheduler != nil {
		scheduler.Start()
		logger.Info("duplicate slot audit scheduled", zap.String("schedule", cfg.Audit.Schedule))
	}

	// --- Initialize Gin Engine ---
	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), api.RequestLogger(logger))
	api.SetupRoutes(router, cfg.JWT.Secret, site, services, logger)

	// --- Start HTTP Server ---
	// No WriteTimeout: the session stream is long-lived.
	server := &http.Server{
		Addr:        cfg.Server.Address,
		Handler:     router,
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("address", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("ListenAndServe error", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	if scheduler != nil {
		<-scheduler.Stop().Done()
	}

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
	logger.Info("server exiting")
}
