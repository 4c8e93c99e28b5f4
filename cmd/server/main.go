package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/OM-MUDDAPUR/Stock-broker-app/internal/config"
	"github.com/OM-MUDDAPUR/Stock-broker-app/internal/database"
	"github.com/OM-MUDDAPUR/Stock-broker-app/internal/engine"
	"github.com/OM-MUDDAPUR/Stock-broker-app/internal/handlers"
	"github.com/OM-MUDDAPUR/Stock-broker-app/internal/logger"
	"github.com/OM-MUDDAPUR/Stock-broker-app/internal/middleware"
	"github.com/OM-MUDDAPUR/Stock-broker-app/internal/services"
	"github.com/OM-MUDDAPUR/Stock-broker-app/internal/store"
	"github.com/OM-MUDDAPUR/Stock-broker-app/internal/validator"
)

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(appConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.Migrate(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Register custom request validators
	validator.Register()

	// Initialize the holding store and services
	db := dbManager.DB()
	holdingStore, err := store.NewGormStore(db)
	if err != nil {
		return fmt.Errorf("failed to create holding store: %w", err)
	}
	userService := services.NewUserService(db)
	auditService := services.NewAuditService(db)

	// Session manager: one reconciliation engine per logged-in user
	sessions := engine.NewManager(holdingStore, appConfig.TickInterval)
	defer sessions.CloseAll()

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, auditService, sessions)
	catalogHandler := handlers.NewCatalogHandler(holdingStore, auditService)
	portfolioHandler := handlers.NewPortfolioHandler(sessions, auditService)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	// User profile and session teardown
	protected.GET("/profile", authHandler.Profile)
	protected.POST("/auth/logout", authHandler.Logout)

	// Instrument catalog routes
	instruments := protected.Group("/instruments")
	instruments.GET("", catalogHandler.List)
	instruments.POST("", catalogHandler.Create)

	// Portfolio routes
	portfolio := protected.Group("/portfolio")
	portfolio.GET("", portfolioHandler.Get)
	portfolio.GET("/stream", portfolioHandler.Stream)
	portfolio.POST("/buy", portfolioHandler.Buy)
	portfolio.POST("/holdings/:id/sell", portfolioHandler.Sell)
	portfolio.POST("/holdings/:id/add", portfolioHandler.AddShares)

	log.Infof("Starting StockFlow backend server on port %s", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
