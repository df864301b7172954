package integration

import (
	"fmt"
	"net/http"
	"testing"

	"gorm.io/gorm"

	"sigmafx/internal/models"
)

// fundBalance credits the withdrawable balance directly, standing in for
// accrued profit.
func (app *testApp) fundBalance(t *testing.T, userID float64, amount int64) {
	t.Helper()
	if err := app.DB.Model(&models.User{}).Where("id = ?", uint(userID)).
		UpdateColumn("balance", gorm.Expr("balance + ?", amount)).Error; err != nil {
		t.Fatalf("failed to fund balance: %v", err)
	}
}

func TestWithdrawalFlow_RequestAndReject(t *testing.T) {
	app := setupApp(t)
	token, _, userID := app.registerUser(t, "payout@test.com", "password123", "")
	app.fundBalance(t, userID, 5_000)

	// File a withdrawal; amount plus the flat fee is debited immediately.
	rec := app.request("POST", "/api/v1/withdrawals",
		`{"amount":2000,"method":"bank_transfer"}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("withdrawal failed: %d %s", rec.Code, rec.Body.String())
	}
	withdrawal := parseJSON(t, rec)["withdrawal"].(map[string]interface{})
	if withdrawal["status"] != "pending" {
		t.Errorf("expected pending status, got %v", withdrawal["status"])
	}
	withdrawalID := withdrawal["id"].(float64)

	rec = app.request("GET", "/api/v1/profile", "", token)
	user := parseJSON(t, rec)["user"].(map[string]interface{})
	if user["balance"].(float64) != 2_900 { // 5000 - 2000 - 100 fee
		t.Errorf("expected balance 2900, got %v", user["balance"])
	}

	// The pipeline sees the pending request.
	rec = app.pipelineRequest("GET", "/api/v1/pipeline/withdrawals", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("pending list failed: %d %s", rec.Code, rec.Body.String())
	}
	pending := parseJSON(t, rec)["data"].([]interface{})
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending withdrawal, got %d", len(pending))
	}

	// Rejection refunds amount and fee.
	rec = app.pipelineRequest("POST",
		fmt.Sprintf("/api/v1/pipeline/withdrawals/%.0f", withdrawalID),
		`{"decision":"reject"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("process failed: %d %s", rec.Code, rec.Body.String())
	}

	rec = app.request("GET", "/api/v1/profile", "", token)
	user = parseJSON(t, rec)["user"].(map[string]interface{})
	if user["balance"].(float64) != 5_000 {
		t.Errorf("expected full refund to 5000, got %v", user["balance"])
	}

	// Processing the same request twice is rejected.
	rec = app.pipelineRequest("POST",
		fmt.Sprintf("/api/v1/pipeline/withdrawals/%.0f", withdrawalID),
		`{"decision":"approve"}`)
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409 for double process, got %d", rec.Code)
	}
}

func TestWithdrawalFlow_Approve(t *testing.T) {
	app := setupApp(t)
	token, _, userID := app.registerUser(t, "approve@test.com", "password123", "")
	app.fundBalance(t, userID, 3_000)

	rec := app.request("POST", "/api/v1/withdrawals", `{"amount":1000,"method":"usdt"}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("withdrawal failed: %d %s", rec.Code, rec.Body.String())
	}
	withdrawalID := parseJSON(t, rec)["withdrawal"].(map[string]interface{})["id"].(float64)

	rec = app.pipelineRequest("POST",
		fmt.Sprintf("/api/v1/pipeline/withdrawals/%.0f", withdrawalID),
		`{"decision":"approve"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("approve failed: %d %s", rec.Code, rec.Body.String())
	}
	processed := parseJSON(t, rec)["withdrawal"].(map[string]interface{})
	if processed["status"] != "approved" {
		t.Errorf("expected approved status, got %v", processed["status"])
	}

	// The debit stands after approval.
	rec = app.request("GET", "/api/v1/profile", "", token)
	user := parseJSON(t, rec)["user"].(map[string]interface{})
	if user["balance"].(float64) != 1_900 { // 3000 - 1000 - 100 fee
		t.Errorf("expected balance 1900, got %v", user["balance"])
	}

	// The user's history shows the processed request.
	rec = app.request("GET", "/api/v1/withdrawals", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("history failed: %d %s", rec.Code, rec.Body.String())
	}
	history := parseJSON(t, rec)["data"].([]interface{})
	if len(history) != 1 {
		t.Fatalf("expected 1 withdrawal, got %d", len(history))
	}
}

func TestWithdrawalFlow_InsufficientBalance(t *testing.T) {
	app := setupApp(t)
	token, _, userID := app.registerUser(t, "broke@test.com", "password123", "")
	app.fundBalance(t, userID, 1_000)

	// 1000 covers the amount but not the fee.
	rec := app.request("POST", "/api/v1/withdrawals", `{"amount":1000,"method":"bitcoin"}`, token)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	errObj := result["error"].(map[string]interface{})
	if errObj["code"] != "INSUFFICIENT_BALANCE" {
		t.Errorf("expected INSUFFICIENT_BALANCE, got %v", errObj["code"])
	}
}
