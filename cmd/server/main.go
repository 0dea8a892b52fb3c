package main

import (
	"log"
	"strconv"
	"time"

	"coachbook_backend/internal/database"
	"coachbook_backend/internal/router"
	"coachbook_backend/pkg/mailer"
	"coachbook_backend/pkg/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env if present; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading configuration from environment")
	}

	utils.InitLogger()
	utils.InitJWT(utils.Getenv("JWT_SECRET", "dev-secret-change-me"))

	database.InitDB(
		utils.Getenv("DB_HOST", "localhost"),
		utils.Getenv("DB_PORT", "5432"),
		utils.Getenv("DB_USER", "postgres"),
		utils.Getenv("DB_PASSWORD", "postgres"),
		utils.Getenv("DB_NAME", "coachbook"),
		utils.Getenv("DB_SSLMODE", "disable"),
		utils.Getenv("DB_SCHEMA_PATH", "migrations/db_schema.sql"),
		database.PoolConfig{
			MaxOpenConns:     atoiOr("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:     atoiOr("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime:  time.Duration(atoiOr("DB_CONN_MAX_LIFETIME_MIN", 30)) * time.Minute,
			StatementTimeout: time.Duration(atoiOr("DB_STATEMENT_TIMEOUT_MS", 5000)) * time.Millisecond,
		},
	)
	db := database.GetDB()
	defer db.Close()

	mail := mailer.NewSMTPMailer(
		utils.Getenv("SMTP_HOST", "localhost"),
		atoiOr("SMTP_PORT", 587),
		utils.Getenv("SMTP_USERNAME", ""),
		utils.Getenv("SMTP_PASSWORD", ""),
		utils.Getenv("SMTP_FROM", "no-reply@coachbook.local"),
	)

	gin.SetMode(utils.Getenv("GIN_MODE", gin.DebugMode))
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(utils.GinLogger())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	engine.Use(cors.New(corsConfig))

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	router.Setup(engine, db, mail)

	port := utils.Getenv("PORT", "8080")
	utils.LogInfo("Starting server on port " + port)
	if err := engine.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func atoiOr(key string, fallback int) int {
	v := utils.Getenv(key, "")
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("Invalid integer for %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}
