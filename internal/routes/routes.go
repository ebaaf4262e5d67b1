package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"gatepass-server/internal/auth"
	"gatepass-server/internal/config"
	"gatepass-server/internal/handlers"
	"gatepass-server/internal/middleware"
)

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, db *gorm.DB, sessions *auth.Service, cfg *config.Config) {
	// Initialize handlers
	authHandler := handlers.NewAuthHandler(sessions, cfg)
	visitorHandler := handlers.NewVisitorHandler(db)

	// Public routes (no authentication required)
	public := router.Group("/api/v1")
	{
		authRoutes := public.Group("/auth")
		{
			authRoutes.POST("/login", middleware.LoginRateLimiter(), authHandler.Login)
			authRoutes.POST("/refresh-token", authHandler.RefreshToken)
			// Logout is public on purpose: a client with an expired access
			// token must still be able to kill its refresh token.
			authRoutes.POST("/logout", authHandler.Logout)
		}
	}

	// Authenticated routes
	private := router.Group("/api/v1")
	private.Use(middleware.AuthMiddleware(sessions))
	{
		authRoutesPrivate := private.Group("/auth")
		{
			authRoutesPrivate.GET("/profile", authHandler.GetProfile)
		}

		visitorRoutes := private.Group("/visitors")
		{
			visitorRoutes.POST("", visitorHandler.CreateVisitor)
			visitorRoutes.GET("", visitorHandler.GetVisitors)
			visitorRoutes.GET("/download/excel", visitorHandler.DownloadExcel)
			visitorRoutes.GET("/download/pdf", visitorHandler.DownloadPDF)
			visitorRoutes.GET("/:id", visitorHandler.GetVisitor)
			visitorRoutes.PUT("/:id", visitorHandler.UpdateVisitor)
			visitorRoutes.DELETE("/:id", visitorHandler.DeleteVisitor)
		}
	}

	// Session probe for the UI: never rejects, just reports
	router.GET("/", middleware.IsLoggedIn(sessions), authHandler.SessionStatus)

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})
}
