package router

import (
	"database/sql"

	"coachbook_backend/internal/handlers"
	"coachbook_backend/internal/middleware"
	"coachbook_backend/internal/repositories"
	"coachbook_backend/internal/services"
	"coachbook_backend/pkg/mailer"

	"github.com/gin-gonic/gin"
)

// Setup initializes the routing for the application.
func Setup(engine *gin.Engine, db *sql.DB, mail mailer.Mailer) {
	// Initialize Repositories
	userRepo := repositories.NewUserRepository(db)
	coachRepo := repositories.NewCoachRepository(db)
	apptRepo := repositories.NewAppointmentRepository(db)

	// Initialize Services
	authService := services.NewAuthService(userRepo, db)
	ratingService := services.NewRatingService(coachRepo, repositories.NewTxStarter(db))
	apptService := services.NewAppointmentService(apptRepo, coachRepo, mail, db)

	// Initialize Handlers
	authHandler := handlers.NewAuthHandler(authService)
	coachHandler := handlers.NewCoachHandler(ratingService)
	apptHandler := handlers.NewAppointmentHandler(apptService)
	adminHandler := handlers.NewAdminHandler(apptService)

	// Credential endpoints share one per-IP limiter.
	loginLimiter := middleware.NewRateLimiter(1, 5)

	apiV1 := engine.Group("/api/v1")

	SetupAuthRoutes(apiV1, authHandler, loginLimiter)
	SetupCoachRoutes(apiV1, coachHandler)
	SetupAppointmentRoutes(apiV1, apptHandler)
	SetupAdminRoutes(apiV1, adminHandler)
}
