package routes

import (
	"school-management-api/controllers"
	"school-management-api/middleware"
	"school-management-api/models"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			public.POST("/login", controllers.Login)

			// Health check
			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "School Management API is running",
				})
			})
		}

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			// User profile
			protected.GET("/profile", controllers.GetProfile)
			protected.PUT("/change-password", controllers.ChangePassword)

			// Evaluations
			evaluations := protected.Group("/evaluations")
			{
				evaluations.GET("", controllers.GetEvaluations)
				evaluations.GET("/:id", controllers.GetEvaluation)

				// Teachers create and maintain their own evaluations; the
				// lock policy gates updates and deletes.
				evaluations.POST("", middleware.RequireRole(models.RoleTeacher, models.RoleAdministrator), controllers.CreateEvaluation)
				evaluations.PUT("/:id", controllers.UpdateEvaluation)
				evaluations.DELETE("/:id", controllers.DeleteEvaluation)

				// Unlock workflow
				evaluations.POST("/:id/unlock-requests", middleware.RequireRole(models.RoleTeacher), controllers.SubmitUnlockRequest)
				evaluations.POST("/:id/override", middleware.RequireRole(models.RoleAdministrator), controllers.GrantOverride)
				evaluations.DELETE("/:id/override", middleware.RequireRole(models.RoleAdministrator), controllers.RevokeOverride)
			}

			// Unlock request queue (admin)
			unlockRequests := protected.Group("/unlock-requests")
			unlockRequests.Use(middleware.RequireRole(models.RoleAdministrator))
			{
				unlockRequests.GET("", controllers.GetUnlockRequests)
				unlockRequests.POST("/:id/reject", controllers.RejectUnlockRequest)
			}

			// Notifications (polling channel)
			notifications := protected.Group("/notifications")
			{
				notifications.GET("", controllers.GetNotifications)
				notifications.GET("/config", controllers.GetNotificationConfig)
				notifications.PUT("/:id/read", controllers.MarkNotificationRead)
			}
		}
	}

	// 404 handler
	router.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{"error": "Route not found"})
	})
}
