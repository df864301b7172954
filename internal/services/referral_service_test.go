package services

import (
	"strings"
	"testing"

	"sigmafx/internal/models"
	"sigmafx/internal/pagination"
	"sigmafx/internal/testutil"
)

func TestEnsureReferralCode(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewReferralService(db)
	user := testutil.CreateTestUser(t, db)

	err := svc.EnsureReferralCode(db, user)
	testutil.AssertNoError(t, err)

	if user.ReferralCode == nil {
		t.Fatal("expected referral code to be assigned")
	}
	if !strings.HasPrefix(*user.ReferralCode, "SIGMA") {
		t.Errorf("unexpected referral code format: %s", *user.ReferralCode)
	}

	// Idempotent: a second call keeps the code.
	code := *user.ReferralCode
	err = svc.EnsureReferralCode(db, user)
	testutil.AssertNoError(t, err)
	if *user.ReferralCode != code {
		t.Errorf("referral code changed from %s to %s", code, *user.ReferralCode)
	}
}

func TestUplineChain(t *testing.T) {
	t.Run("no_referrer", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewReferralService(db)
		user := testutil.CreateTestUser(t, db)

		chain, err := svc.UplineChain(user.ID)
		testutil.AssertNoError(t, err)
		if len(chain) != 0 {
			t.Errorf("expected empty chain, got %v", chain)
		}
	})

	t.Run("nearest_ancestor_first", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewReferralService(db)
		users := testutil.CreateTestReferralChain(t, db, 3)

		chain, err := svc.UplineChain(users[2].ID)
		testutil.AssertNoError(t, err)
		if len(chain) != 2 {
			t.Fatalf("expected chain of 2, got %v", chain)
		}
		if chain[0] != users[1].ID || chain[1] != users[0].ID {
			t.Errorf("expected chain [%d %d], got %v", users[1].ID, users[0].ID, chain)
		}
	})

	t.Run("truncated_at_max_depth", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewReferralService(db)
		users := testutil.CreateTestReferralChain(t, db, 6)

		chain, err := svc.UplineChain(users[5].ID)
		testutil.AssertNoError(t, err)
		if len(chain) != MaxUplineDepth {
			t.Errorf("expected chain capped at %d, got %d", MaxUplineDepth, len(chain))
		}
	})
}

func TestOnDeposit(t *testing.T) {
	t.Run("full_chain_commissions", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewReferralService(db)
		users := testutil.CreateTestReferralChain(t, db, 5)
		depositor := users[4]
		position := testutil.CreateTestPosition(t, db, depositor.ID, 10_000)

		events, err := svc.OnDeposit(db, depositor, position.ID, 10_000)
		testutil.AssertNoError(t, err)

		if len(events) != 4 {
			t.Fatalf("expected 4 commission events, got %d", len(events))
		}

		// 8/4/2/1 percent of 10000, nearest ancestor first.
		want := []int64{800, 400, 200, 100}
		for i, ev := range events {
			if ev.Level != i+1 {
				t.Errorf("event %d: expected level %d, got %d", i, i+1, ev.Level)
			}
			if ev.Amount != want[i] {
				t.Errorf("level %d: expected commission %d, got %d", i+1, want[i], ev.Amount)
			}
			if ev.BeneficiaryID != users[3-i].ID {
				t.Errorf("level %d: expected beneficiary %d, got %d", i+1, users[3-i].ID, ev.BeneficiaryID)
			}
			if ev.SourceAmount != 10_000 {
				t.Errorf("level %d: expected source amount 10000, got %d", i+1, ev.SourceAmount)
			}
		}

		// Each beneficiary's earnings, balance and ledger entry line up.
		for i, amount := range want {
			var beneficiary models.User
			db.First(&beneficiary, users[3-i].ID)
			if beneficiary.ReferralEarnings != amount {
				t.Errorf("level %d: expected earnings %d, got %d", i+1, amount, beneficiary.ReferralEarnings)
			}
			if beneficiary.Balance != amount {
				t.Errorf("level %d: expected balance %d, got %d", i+1, amount, beneficiary.Balance)
			}
			var count int64
			db.Model(&models.Transaction{}).
				Where("user_id = ? AND type = ?", beneficiary.ID, models.TransactionCommission).
				Count(&count)
			if count != 1 {
				t.Errorf("level %d: expected 1 commission entry, got %d", i+1, count)
			}
		}
	})

	t.Run("short_chain", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewReferralService(db)
		users := testutil.CreateTestReferralChain(t, db, 2)
		position := testutil.CreateTestPosition(t, db, users[1].ID, 20_000)

		events, err := svc.OnDeposit(db, users[1], position.ID, 20_000)
		testutil.AssertNoError(t, err)

		if len(events) != 1 {
			t.Fatalf("expected 1 commission event, got %d", len(events))
		}
		if events[0].Amount != 1_600 { // 8% of 20000
			t.Errorf("expected commission 1600, got %d", events[0].Amount)
		}
	})

	t.Run("rounds_to_nearest_cent", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewReferralService(db)
		users := testutil.CreateTestReferralChain(t, db, 2)
		position := testutil.CreateTestPosition(t, db, users[1].ID, 2_019)

		events, err := svc.OnDeposit(db, users[1], position.ID, 2_019)
		testutil.AssertNoError(t, err)

		// 8% of 2019 is 161.52; rounds up like daily profit, not truncated.
		if len(events) != 1 || events[0].Amount != 162 {
			t.Errorf("expected commission 162, got %v", events)
		}
	})

	t.Run("no_upline_no_events", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewReferralService(db)
		user := testutil.CreateTestUser(t, db)
		position := testutil.CreateTestPosition(t, db, user.ID, 10_000)

		events, err := svc.OnDeposit(db, user, position.ID, 10_000)
		testutil.AssertNoError(t, err)
		if len(events) != 0 {
			t.Errorf("expected no events, got %d", len(events))
		}

		var count int64
		db.Model(&models.CommissionEvent{}).Count(&count)
		if count != 0 {
			t.Errorf("expected no commission rows, got %d", count)
		}
	})
}

func TestTeamDeposit(t *testing.T) {
	t.Run("empty_downline", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewReferralService(db)
		user := testutil.CreateTestUser(t, db)

		total, err := svc.TeamDeposit(user.ID)
		testutil.AssertNoError(t, err)
		if total != 0 {
			t.Errorf("expected 0, got %d", total)
		}
	})

	t.Run("multi_level_downline", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewReferralService(db)

		root := testutil.CreateTestUser(t, db)
		childA := testutil.CreateTestReferredUser(t, db, root.ID)
		childB := testutil.CreateTestReferredUser(t, db, root.ID)
		grandchild := testutil.CreateTestReferredUser(t, db, childA.ID)

		testutil.CreateTestPosition(t, db, childA.ID, 10_000)
		testutil.CreateTestPosition(t, db, childB.ID, 5_000)
		testutil.CreateTestPosition(t, db, grandchild.ID, 3_000)
		// The root's own deposits never count toward the team total.
		testutil.CreateTestPosition(t, db, root.ID, 100_000)

		total, err := svc.TeamDeposit(root.ID)
		testutil.AssertNoError(t, err)
		if total != 18_000 {
			t.Errorf("expected team deposit 18000, got %d", total)
		}
	})
}

func TestSummary(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewReferralService(db)

	root := testutil.CreateTestUser(t, db)
	testutil.AssertNoError(t, svc.EnsureReferralCode(db, root))

	child := testutil.CreateTestReferredUser(t, db, root.ID)
	testutil.CreateTestReferredUser(t, db, root.ID)
	testutil.CreateTestPosition(t, db, child.ID, 10_000)

	summary, err := svc.Summary(root.ID)
	testutil.AssertNoError(t, err)

	if summary.ReferralCode == "" {
		t.Error("expected referral code in summary")
	}
	if !strings.Contains(summary.ReferralLink, "?ref="+summary.ReferralCode) {
		t.Errorf("unexpected referral link: %s", summary.ReferralLink)
	}
	if summary.DirectReferrals != 2 {
		t.Errorf("expected 2 direct referrals, got %d", summary.DirectReferrals)
	}
	if summary.TeamDeposit != 10_000 {
		t.Errorf("expected team deposit 10000, got %d", summary.TeamDeposit)
	}
}

func TestGetUserCommissions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewReferralService(db)
	users := testutil.CreateTestReferralChain(t, db, 2)

	for i := 0; i < 3; i++ {
		position := testutil.CreateTestPosition(t, db, users[1].ID, 10_000)
		_, err := svc.OnDeposit(db, users[1], position.ID, 10_000)
		testutil.AssertNoError(t, err)
	}

	page, err := svc.GetUserCommissions(users[0].ID, pagination.PageRequest{Page: 1, PageSize: 2})
	testutil.AssertNoError(t, err)

	if page.TotalItems != 3 {
		t.Errorf("expected 3 total commissions, got %d", page.TotalItems)
	}
	if len(page.Data) != 2 {
		t.Errorf("expected 2 items on page, got %d", len(page.Data))
	}
}
