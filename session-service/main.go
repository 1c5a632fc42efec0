package main

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "cubis-academy-backend/docs"
	"cubis-academy-backend/session-service/handlers"
	"cubis-academy-backend/session-service/middleware"
	"cubis-academy-backend/shared/clients"
	"cubis-academy-backend/shared/config"
	"cubis-academy-backend/shared/database"
	"cubis-academy-backend/shared/sessions"
)

func main() {
	// Load configuration
	config.LoadConfig()
	cfg := config.GetConfig()

	// Initialize database
	if err := database.InitDatabase(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.CloseDatabase()

	// Initialize Redis client for the session cache
	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
	})
	log.Printf("✅ Redis session cache configured - %s:%s", cfg.RedisHost, cfg.RedisPort)

	// Build the session components once and share them across requests.
	store := sessions.NewGormStore(database.GetDB())
	cache := sessions.NewRedisSessionCache(redisClient, cfg.GetSessionCacheTTL())
	checkTimeout := cfg.GetSessionCheckTimeout()
	validator := sessions.NewValidator(store, cache, checkTimeout)
	checker := sessions.NewDeviceChecker(store, clients.NewAlertClient(), checkTimeout)
	revoker := sessions.NewRevocationManager(store, cache)
	enumerator := sessions.NewEnumerator(store)

	sessionHandler := handlers.NewSessionHandler(
		database.GetDB(), store, cache, validator, checker, revoker, enumerator)

	// Rate limiter for the public validate endpoint
	rateLimiter := middleware.NewRateLimiter(30 * time.Minute)
	validateConfig := middleware.RateLimitConfig{
		MaxRequests:   cfg.GetRateLimitMaxRequests(),
		TimeWindow:    time.Duration(cfg.GetRateLimitTimeWindowSeconds()) * time.Second,
		BlockDuration: time.Duration(cfg.GetRateLimitBlockDurationMinutes()) * time.Minute,
	}

	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Device-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Auth glue endpoints
	router.POST("/api/auth/login", sessionHandler.Login)
	router.POST("/api/auth/logout", middleware.AuthMiddleware(), sessionHandler.Logout)

	// Session lifecycle endpoints
	router.POST("/api/sessions/ensure", middleware.AuthMiddleware(), sessionHandler.EnsureSession)
	router.POST("/api/sessions/validate", rateLimiter.RateLimitMiddleware(validateConfig), sessionHandler.Validate)
	router.POST("/api/sessions/validate-device", middleware.AuthMiddleware(), sessionHandler.ValidateDevice)

	// Session management endpoints
	router.GET("/api/sessions", middleware.AuthMiddleware(), sessionHandler.ListSessions)
	router.DELETE("/api/sessions/:id", middleware.AuthMiddleware(), sessionHandler.RevokeSession)
	router.POST("/api/sessions/revoke-all", middleware.AuthMiddleware(), sessionHandler.RevokeAllSessions)
	router.POST("/api/sessions/revoke-others", middleware.AuthMiddleware(), sessionHandler.RevokeOtherSessions)
	router.GET("/api/sessions/security-events", middleware.AuthMiddleware(), sessionHandler.GetSecurityEvents)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "session",
		})
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	port := strings.Split(cfg.SessionServiceURL, ":")[2]
	log.Printf("Session Service starting on port %s...", port)
	router.Run(":" + port)
}
