package routes

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"covid-testing-server/internal/config"
	"covid-testing-server/internal/events"
	"covid-testing-server/internal/handlers"
	"covid-testing-server/internal/metrics"
	"covid-testing-server/internal/middleware"
	"covid-testing-server/internal/models"
	"covid-testing-server/internal/repository"
	"covid-testing-server/internal/service/account"
	"covid-testing-server/internal/service/testrequest"
)

// SetupRoutes builds the services and registers every route of the server.
func SetupRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config, logger *zap.Logger, publisher events.Publisher) {
	router.Use(middleware.RequestID(), middleware.RequestLogger(logger), middleware.Recovery(logger))

	accounts := account.NewService(db)
	lifecycle := testrequest.NewService(repository.NewTestRequestRepository(db), publisher, logger)

	authHandler := handlers.NewAuthHandler(db, cfg, accounts, logger)
	userHandler := handlers.NewUserHandler(authHandler)

	public := router.Group("/api")
	{
		authRoutes := public.Group("/auth")
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/login", authHandler.Login)
		authRoutes.POST("/refresh-token", authHandler.RefreshToken)
	}

	private := router.Group("/api")
	private.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	{
		authRoutes := private.Group("/auth")
		authRoutes.POST("/logout", authHandler.Logout)
		authRoutes.GET("/profile", authHandler.GetProfile)

		userRoutes := private.Group("/users")
		userRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
		userRoutes.POST("", userHandler.CreateUser)
		userRoutes.GET("", userHandler.GetUsers)
		userRoutes.GET("/:id", userHandler.GetUserByID)
	}
	RegisterLifecycleRoutes(private, lifecycle, logger)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})
	router.GET("/metrics", metrics.Handler())
}

// RegisterLifecycleRoutes registers the test request endpoints on an
// authenticated group.
func RegisterLifecycleRoutes(private *gin.RouterGroup, svc *testrequest.Service, logger *zap.Logger) {
	labHandler := handlers.NewLabRequestHandler(svc, logger)
	consultationHandler := handlers.NewConsultationHandler(svc, logger)
	requestHandler := handlers.NewTestRequestHandler(svc, logger)

	labRoutes := private.Group("/labrequests")
	labRoutes.Use(middleware.RoleAuthMiddleware(models.RoleTester))
	{
		labRoutes.GET("/to-be-tested", labHandler.GetForTests)
		labRoutes.GET("", labHandler.GetForTester)
		labRoutes.PUT("/assign/:id", labHandler.AssignForLabTest)
		labRoutes.PUT("/update/:id", labHandler.UpdateLabTest)
	}

	consultationRoutes := private.Group("/consultations")
	consultationRoutes.Use(middleware.RoleAuthMiddleware(models.RoleDoctor))
	{
		consultationRoutes.GET("/in-queue", consultationHandler.GetForConsultations)
		consultationRoutes.GET("", consultationHandler.GetForDoctor)
		consultationRoutes.PUT("/assign/:id", consultationHandler.AssignForConsultation)
		consultationRoutes.PUT("/update/:id", consultationHandler.UpdateConsultation)
	}

	requestRoutes := private.Group("/testrequests")
	{
		requestRoutes.POST("", middleware.RoleAuthMiddleware(models.RoleUser), requestHandler.CreateTestRequest)
		requestRoutes.GET("", middleware.RoleAuthMiddleware(models.RoleUser), requestHandler.GetMyTestRequests)
		// Patients pass the role check here; the service limits them to their own requests.
		requestRoutes.GET("/:id/flow",
			middleware.RoleAuthMiddleware(models.RoleTester, models.RoleDoctor, models.RoleAdmin, models.RoleUser),
			requestHandler.GetFlow)
	}
}
