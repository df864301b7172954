package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"sigmafx/internal/handlers"
	"sigmafx/internal/logger"
	"sigmafx/internal/middleware"
	"sigmafx/internal/models"
	"sigmafx/internal/services"
	"sigmafx/internal/validator"
)

const pipelineKey = "test-pipeline-key"

// workday is a fixed Wednesday so the market calendar never gates test flows.
var workday = time.Date(2025, 6, 4, 10, 0, 0, 0, time.UTC)

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB     *gorm.DB
	Router *gin.Engine
}

// dbCounter ensures each test gets a unique in-memory database.
var dbCounter atomic.Int64

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// setupIsolatedDB creates an isolated in-memory SQLite database for a single test.
func setupIsolatedDB(t *testing.T) *gorm.DB {
	t.Helper()

	n := dbCounter.Add(1)
	dsn := fmt.Sprintf("file:integrationdb%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	allModels := []interface{}{
		&models.User{},
		&models.Position{},
		&models.CommissionEvent{},
		&models.RankAward{},
		&models.Transaction{},
		&models.Withdrawal{},
		&models.AccrualRun{},
		&models.AuditLog{},
	}
	if err := db.AutoMigrate(allModels...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// setupApp creates a full application stack backed by an isolated in-memory
// SQLite. Date-gated handlers are pinned to a fixed working day.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := setupIsolatedDB(t)

	// Services
	userService := services.NewUserService(db)
	referralService := services.NewReferralService(db)
	positionService := services.NewPositionService(db, referralService)
	accrualService := services.NewAccrualService(db)
	rankService := services.NewRankService(db, referralService)
	withdrawalService := services.NewWithdrawalService(db)
	auditService := services.NewAuditService(db)

	// Handlers
	authHandler := handlers.NewAuthHandler(userService)
	planHandler := handlers.NewPlanHandler()
	positionHandler := handlers.NewPositionHandler(positionService, auditService)
	positionHandler.Now = func() time.Time { return workday }
	referralHandler := handlers.NewReferralHandler(referralService)
	rankHandler := handlers.NewRankHandler(rankService, auditService)
	withdrawalHandler := handlers.NewWithdrawalHandler(withdrawalService, auditService)
	withdrawalHandler.Now = func() time.Time { return workday }
	accrualHandler := handlers.NewAccrualHandler(accrualService)

	// Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())

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

	protected.GET("/profile", authHandler.GetProfile)

	positions := protected.Group("/positions")
	positions.POST("", positionHandler.Deposit)
	positions.GET("", positionHandler.GetUserPositions)
	positions.GET("/stats", positionHandler.GetStats)
	positions.GET("/:id", positionHandler.GetPositionByID)

	referrals := protected.Group("/referrals")
	referrals.GET("", referralHandler.GetSummary)
	referrals.GET("/commissions", referralHandler.GetCommissions)
	referrals.GET("/direct", referralHandler.GetDirectReferrals)

	ranks := protected.Group("/ranks")
	ranks.GET("", rankHandler.GetRanks)
	ranks.POST("/claim", rankHandler.ClaimRewards)

	withdrawals := protected.Group("/withdrawals")
	withdrawals.POST("", withdrawalHandler.RequestWithdrawal)
	withdrawals.GET("", withdrawalHandler.GetUserWithdrawals)

	pipeline := v1.Group("/pipeline")
	pipeline.Use(middleware.PipelineAuthMiddleware(pipelineKey))
	pipeline.POST("/accruals/run", accrualHandler.RunAccruals)
	pipeline.GET("/withdrawals", withdrawalHandler.GetPendingWithdrawals)
	pipeline.POST("/withdrawals/:id", withdrawalHandler.ProcessWithdrawal)

	return &testApp{DB: db, Router: router}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// pipelineRequest makes a request authenticated with the pipeline API key.
func (app *testApp) pipelineRequest(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", pipelineKey)
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// registerUser registers a new user and returns the access token, refresh token, and user ID.
func (app *testApp) registerUser(t *testing.T, email, password, referralCode string) (accessToken, refreshToken string, userID float64) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q,"first_name":"Test","last_name":"User","referral_code":%q}`,
		email, password, referralCode)
	rec := app.request("POST", "/api/v1/auth/register", body, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	user := result["user"].(map[string]interface{})
	return result["access_token"].(string), result["refresh_token"].(string), user["id"].(float64)
}

// loginUser logs in and returns the access and refresh tokens.
func (app *testApp) loginUser(t *testing.T, email, password string) (accessToken, refreshToken string) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q}`, email, password)
	rec := app.request("POST", "/api/v1/auth/login", body, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	return result["access_token"].(string), result["refresh_token"].(string)
}

// deposit opens a position and returns the position payload.
func (app *testApp) deposit(t *testing.T, token string, amount int64) map[string]interface{} {
	t.Helper()
	rec := app.request("POST", "/api/v1/positions", fmt.Sprintf(`{"amount":%d}`, amount), token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("deposit failed: %d %s", rec.Code, rec.Body.String())
	}
	return parseJSON(t, rec)["position"].(map[string]interface{})
}

// referralCode fetches the user's referral code from the profile endpoint.
func (app *testApp) referralCode(t *testing.T, token string) string {
	t.Helper()
	rec := app.request("GET", "/api/v1/profile", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("profile failed: %d %s", rec.Code, rec.Body.String())
	}
	user := parseJSON(t, rec)["user"].(map[string]interface{})
	code, _ := user["referral_code"].(string)
	return code
}
