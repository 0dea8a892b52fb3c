package router

import (
	"coachbook_backend/internal/handlers"
	"coachbook_backend/internal/middleware"
	"coachbook_backend/internal/models"

	"github.com/gin-gonic/gin"
)

// SetupAuthRoutes sets up the authentication routes.
func SetupAuthRoutes(apiGroup *gin.RouterGroup, authHandler *handlers.AuthHandler, limiter *middleware.RateLimiter) {
	authRoutes := apiGroup.Group("/auth")
	{
		authRoutes.POST("/register", middleware.RateLimit(limiter), authHandler.RegisterUser)
		authRoutes.POST("/login", middleware.RateLimit(limiter), authHandler.LoginUser)

		authRequiredRoutes := authRoutes.Group("")
		authRequiredRoutes.Use(middleware.AuthMiddleware())
		{
			authRequiredRoutes.POST("/logout", authHandler.LogoutUser)
			authRequiredRoutes.GET("/me", authHandler.GetCurrentUser)
		}
	}
}

// SetupCoachRoutes sets up the coach browsing and rating routes.
// Browsing and reviews are public; submitting a rating requires the caller
// identity that keys the rating entry.
func SetupCoachRoutes(apiGroup *gin.RouterGroup, coachHandler *handlers.CoachHandler) {
	coachRoutes := apiGroup.Group("/coaches")
	{
		coachRoutes.GET("", coachHandler.GetCoaches)
		coachRoutes.GET("/:id", coachHandler.GetCoachByID)
		coachRoutes.GET("/:id/reviews", coachHandler.GetReviews)
		coachRoutes.POST("/:id/ratings", middleware.AuthMiddleware(), coachHandler.SubmitRating)
	}
}

// SetupAppointmentRoutes sets up the booking routes. They are public — a
// booking may be anonymous — but a presented identity is attached to the
// appointment.
func SetupAppointmentRoutes(apiGroup *gin.RouterGroup, apptHandler *handlers.AppointmentHandler) {
	apptRoutes := apiGroup.Group("/appointments")
	apptRoutes.Use(middleware.OptionalAuthMiddleware())
	{
		apptRoutes.GET("/slots", apptHandler.GetSlots)
		apptRoutes.POST("/check-duplicate", apptHandler.CheckDuplicate)
		apptRoutes.POST("", apptHandler.BookAppointment)
		apptRoutes.GET("/:id", apptHandler.GetAppointmentByID)
		apptRoutes.POST("/:id/confirmation", apptHandler.SendConfirmation)
	}
}

// SetupAdminRoutes sets up the admin-only appointment query engine.
func SetupAdminRoutes(apiGroup *gin.RouterGroup, adminHandler *handlers.AdminHandler) {
	adminRoutes := apiGroup.Group("/admin")
	adminRoutes.Use(middleware.AuthMiddleware())
	adminRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
	{
		adminRoutes.GET("/appointments", adminHandler.QueryAppointments)
	}
}
