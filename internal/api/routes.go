package api

import (
	"net/http"

	"alcyxob/studio-calendar/internal/domain"
	"alcyxob/studio-calendar/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Services bundles what the router needs.
type Services struct {
	Auth     service.AuthService
	Booking  service.BookingService
	Trainers service.TrainerService
	Clients  service.ClientService
	Catalog  service.CatalogService
	Export   service.ExportService
	Audit    service.AuditService
}

func SetupRoutes(router *gin.Engine, jwtSecret, siteID string, svc Services, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	authHandler := NewAuthHandler(svc.Auth, logger)
	bookingHandler := NewBookingHandler(svc.Booking, logger)
	trainerHandler := NewTrainerHandler(svc.Trainers, svc.Booking, logger)
	clientHandler := NewClientHandler(svc.Clients, logger)
	catalogHandler := NewCatalogHandler(svc.Catalog, logger)
	studioHandler := NewStudioHandler(svc.Booking, svc.Export, svc.Audit, logger)

	authMiddleware := AuthMiddleware(jwtSecret, siteID)
	staffOnly := RoleMiddleware(domain.RoleAdmin, domain.RoleManager)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", authHandler.Me)
		protected.GET("/me/sessions", RoleMiddleware(domain.RoleClient), bookingHandler.MySessions)
		protected.POST("/me/calendar-export", RoleMiddleware(domain.RoleClient), studioHandler.CalendarExport)

		// --- Calendar ---
		protected.GET("/calendar", bookingHandler.Calendar)
		protected.GET("/availability", bookingHandler.Availability)
		protected.GET("/dashboard", RoleMiddleware(domain.RoleAdmin, domain.RoleManager, domain.RoleTrainer), studioHandler.Dashboard)
		protected.GET("/activity", staffOnly, studioHandler.Activity)

		// --- Sessions ---
		// Role rules (trainers cannot book, clients only touch their own
		// sessions) are enforced by the booking service.
		sessions := protected.Group("/sessions")
		{
			sessions.GET("/stream", bookingHandler.Stream)
			sessions.POST("", bookingHandler.CreateSession)
			sessions.PUT("/:id", bookingHandler.UpdateSession)
			sessions.DELETE("/:id", bookingHandler.DeleteSession)
		}

		// --- Trainers ---
		trainers := protected.Group("/trainers")
		{
			trainers.GET("", trainerHandler.ListTrainers)
			trainers.GET("/:id", trainerHandler.GetTrainer)
			trainers.POST("", staffOnly, trainerHandler.CreateTrainer)
			trainers.PUT("/:id", staffOnly, trainerHandler.UpdateTrainer)
			trainers.DELETE("/:id", staffOnly, trainerHandler.DeleteTrainer)
			trainers.POST("/:id/off-days/:date/toggle", staffOnly, trainerHandler.ToggleOffDay)
			trainers.GET("/:id/sessions/:date", RoleMiddleware(domain.RoleAdmin, domain.RoleManager, domain.RoleTrainer), trainerHandler.SessionsOnDate)
		}

		// --- Service catalog ---
		services := protected.Group("/services")
		{
			services.GET("", catalogHandler.ListServices)
			services.GET("/:id", catalogHandler.GetService)
			services.POST("", staffOnly, catalogHandler.CreateService)
			services.PUT("/:id", staffOnly, catalogHandler.UpdateService)
			services.DELETE("/:id", staffOnly, catalogHandler.DeleteService)
		}

		// --- Clients ---
		clients := protected.Group("/clients")
		clients.Use(RoleMiddleware(domain.RoleAdmin, domain.RoleManager, domain.RoleTrainer))
		{
			clients.GET("", clientHandler.ListClients)
			clients.GET("/:id", clientHandler.GetClient)
			clients.POST("", staffOnly, clientHandler.CreateClient)
			clients.PUT("/:id", staffOnly, clientHandler.UpdateClient)
			clients.DELETE("/:id", staffOnly, clientHandler.DeleteClient)
		}

		protected.GET("/admin/duplicates", RoleMiddleware(domain.RoleAdmin), studioHandler.Duplicates)
	}
}
