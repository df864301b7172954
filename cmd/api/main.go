package main

import (
	"fmt"
	"net/http"
	"os"

	"sigmafx/internal/config"
	"sigmafx/internal/database"
	"sigmafx/internal/handlers"
	"sigmafx/internal/logger"
	"sigmafx/internal/middleware"
	"sigmafx/internal/services"
	"sigmafx/internal/validator"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           SigmaFX API
// @version         1.0
// @description     SigmaFX is a daily-return investment platform: plan-based deposits, daily profit accrual, multi-level referral commissions and rank rewards.
// @termsOfService  http://swagger.io/terms/

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

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

	// Register custom request validators
	validator.Register()

	// Initialize database configuration
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Initialize services
	db := dbManager.DB()
	userService := services.NewUserService(db)
	referralService := services.NewReferralService(db)
	positionService := services.NewPositionService(db, referralService)
	accrualService := services.NewAccrualService(db)
	rankService := services.NewRankService(db, referralService)
	withdrawalService := services.NewWithdrawalService(db)
	auditService := services.NewAuditService(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService)
	planHandler := handlers.NewPlanHandler()
	positionHandler := handlers.NewPositionHandler(positionService, auditService)
	referralHandler := handlers.NewReferralHandler(referralService)
	rankHandler := handlers.NewRankHandler(rankService, auditService)
	withdrawalHandler := handlers.NewWithdrawalHandler(withdrawalService, auditService)
	accrualHandler := handlers.NewAccrualHandler(accrualService)

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

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

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
	auth.POST("/refresh", authHandler.Refresh)

	v1.GET("/plans", planHandler.ListPlans)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	// User profile
	protected.GET("/profile", authHandler.GetProfile)

	// Position routes
	positions := protected.Group("/positions")
	positions.POST("", positionHandler.Deposit)
	positions.GET("", positionHandler.GetUserPositions)
	positions.GET("/stats", positionHandler.GetStats)
	positions.GET("/:id", positionHandler.GetPositionByID)

	// Referral routes
	referrals := protected.Group("/referrals")
	referrals.GET("", referralHandler.GetSummary)
	referrals.GET("/commissions", referralHandler.GetCommissions)
	referrals.GET("/direct", referralHandler.GetDirectReferrals)

	// Rank routes
	ranks := protected.Group("/ranks")
	ranks.GET("", rankHandler.GetRanks)
	ranks.POST("/claim", rankHandler.ClaimRewards)

	// Withdrawal routes
	withdrawals := protected.Group("/withdrawals")
	withdrawals.POST("", withdrawalHandler.RequestWithdrawal)
	withdrawals.GET("", withdrawalHandler.GetUserWithdrawals)

	// Scheduler pipeline routes, guarded by the pipeline API key
	pipeline := v1.Group("/pipeline")
	pipeline.Use(middleware.PipelineAuthMiddleware(appConfig.PipelineAPIKey))
	pipeline.POST("/accruals/run", accrualHandler.RunAccruals)
	pipeline.GET("/withdrawals", withdrawalHandler.GetPendingWithdrawals)
	pipeline.POST("/withdrawals/:id", withdrawalHandler.ProcessWithdrawal)

	log.Infof("Starting SigmaFX backend server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
