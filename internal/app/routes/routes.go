package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/sakthivel/idcard-portal/internal/app/controllers"
	"github.com/sakthivel/idcard-portal/internal/app/models"
	"github.com/sakthivel/idcard-portal/internal/app/models/dto"
	"github.com/sakthivel/idcard-portal/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	studentController *controllers.StudentController,
	authMiddleware *middleware.AuthMiddleware,
) {
	// API version group
	v1 := router.Group("/api/v1")

	// --- Public Admin Auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/login", authController.AdminLogin)
		auth.POST("/register", authController.AdminRegister)
	}

	students := v1.Group("/students")
	{
		// Public routes: account creation, login and third-party verification
		students.POST("/login", authController.StudentLogin)
		students.POST("/signup", authController.StudentSignup)
		students.GET("/verify/:registerNumber", studentController.GetVerification)

		authenticated := students.Group("")
		authenticated.Use(authMiddleware.JWTAuth())
		{
			// Student-owned profile routes
			profile := authenticated.Group("/profile")
			profile.Use(authMiddleware.RoleRequired(models.RoleStudent))
			{
				profile.GET("", studentController.GetProfile)
				profile.PUT("", studentController.UpdateProfile)
			}

			// Admin-only lifecycle routes
			adminProtected := authenticated.Group("")
			adminProtected.Use(authMiddleware.RoleRequired(models.RoleAdmin))
			{
				adminProtected.GET("", studentController.GetStudents)
				adminProtected.POST("", studentController.CreateStudent)
				adminProtected.POST("/bulk", studentController.BulkCreateStudents)
				adminProtected.PUT("/:id/verify", studentController.VerifyStudent)
				adminProtected.PUT("/:id/discontinue", studentController.DiscontinueStudent)
			}
		}
	}

	// Health check endpoint (public)
	v1.GET("/health", func(c *gin.Context) {
		c.JSON(200, dto.APIResponse{
			Data: gin.H{"status": "ok"},
		})
	})

	// Swagger routes are set up in bootstrap.go already
}
