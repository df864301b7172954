package testutil

import (
	"fmt"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"sigmafx/internal/models"
	"sigmafx/internal/plans"
	"sigmafx/internal/uuid"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// Workday is a fixed Wednesday used wherever a test needs a working day.
var Workday = time.Date(2025, 6, 4, 10, 0, 0, 0, time.UTC)

// Weekend is a fixed Saturday.
var Weekend = time.Date(2025, 6, 7, 10, 0, 0, 0, time.UTC)

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestReferredUser creates a user whose referrer is referrerID.
func CreateTestReferredUser(t *testing.T, db *gorm.DB, referrerID uint) *models.User {
	t.Helper()

	user := CreateTestUser(t, db)
	if err := db.Model(user).Update("referred_by_id", referrerID).Error; err != nil {
		t.Fatalf("failed to set referrer: %v", err)
	}
	user.ReferredByID = &referrerID
	return user
}

// CreateTestReferralChain creates a chain of n users where each user was
// referred by the previous one. Returns the users root-first; the last
// element is the deepest member of the downline.
func CreateTestReferralChain(t *testing.T, db *gorm.DB, n int) []*models.User {
	t.Helper()

	users := make([]*models.User, n)
	for i := range users {
		if i == 0 {
			users[i] = CreateTestUser(t, db)
		} else {
			users[i] = CreateTestReferredUser(t, db, users[i-1].ID)
		}
	}
	return users
}

// CreateTestPosition creates an active position on the plan matching principal.
func CreateTestPosition(t *testing.T, db *gorm.DB, userID uint, principal int64) *models.Position {
	t.Helper()

	plan, ok := plans.Resolve(principal)
	if !ok {
		t.Fatalf("no plan covers principal %d", principal)
	}

	position := &models.Position{
		UserID:       userID,
		OrderID:      uuid.New(),
		Principal:    principal,
		PlanName:     plan.Name,
		DailyRateMin: plan.DailyRateMin,
		DailyRateMax: plan.DailyRateMax,
		DailyProfit:  int64(math.Round(float64(principal) * plan.MidpointRate() / 100)),
		IsActive:     true,
		OpenedAt:     Workday,
	}
	if err := db.Create(position).Error; err != nil {
		t.Fatalf("failed to create test position: %v", err)
	}
	return position
}

// CreateTestPositionNearCap creates a position whose next accrual is
// guaranteed to hit the 3x payout cap.
func CreateTestPositionNearCap(t *testing.T, db *gorm.DB, userID uint, principal int64) *models.Position {
	t.Helper()

	position := CreateTestPosition(t, db, userID, principal)
	earned := principal*3 - 1
	if err := db.Model(position).Update("total_earned", earned).Error; err != nil {
		t.Fatalf("failed to update test position: %v", err)
	}
	position.TotalEarned = earned
	return position
}

// FundBalance credits the user's withdrawable balance directly.
func FundBalance(t *testing.T, db *gorm.DB, userID uint, amount int64) {
	t.Helper()

	if err := db.Model(&models.User{}).Where("id = ?", userID).
		UpdateColumn("balance", gorm.Expr("balance + ?", amount)).Error; err != nil {
		t.Fatalf("failed to fund balance: %v", err)
	}
}
