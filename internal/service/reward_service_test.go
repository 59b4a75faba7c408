package service

import (
	"testing"

	"routinestar/internal/apperr"
	"routinestar/internal/models"
)

func TestRedeemReward(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.rewards.Adjust(env.family.ID, env.child.ID, 100, "Weekly allowance"); err != nil {
		t.Fatalf("Adjust() failed: %v", err)
	}

	reward, err := env.rewards.CreateReward(env.family.ID, "Movie night", 60)
	if err != nil {
		t.Fatalf("CreateReward() failed: %v", err)
	}

	redemption, tx, err := env.rewards.Redeem(env.child.ID, env.family.ID, reward.ID)
	if err != nil {
		t.Fatalf("Redeem() failed: %v", err)
	}
	if redemption.RewardID != reward.ID || redemption.ChildProfileID != env.child.ID {
		t.Errorf("redemption links wrong reward or child: %+v", redemption)
	}
	if redemption.TransactionID != tx.ID {
		t.Errorf("redemption.TransactionID = %d, want %d", redemption.TransactionID, tx.ID)
	}
	if tx.PointsDelta != -60 {
		t.Errorf("pointsDelta = %d, want -60", tx.PointsDelta)
	}
	if tx.BalanceAfter != 40 {
		t.Errorf("balanceAfter = %d, want 40", tx.BalanceAfter)
	}
	if tx.TransactionType != models.TransactionRewardRedeem {
		t.Errorf("transactionType = %s, want reward_redeem", tx.TransactionType)
	}

	t.Run("insufficient points", func(t *testing.T) {
		// 40 left against a 60-point reward
		_, _, err := env.rewards.Redeem(env.child.ID, env.family.ID, reward.ID)
		if !apperr.IsConflict(err) {
			t.Fatalf("expected conflict, got %v", err)
		}

		balance, err := env.ledger.Balance(env.child.ID, env.family.ID)
		if err != nil {
			t.Fatalf("Balance() failed: %v", err)
		}
		if balance != 40 {
			t.Errorf("balance = %d, want 40 after failed redemption", balance)
		}
	})

	t.Run("deactivated reward", func(t *testing.T) {
		if err := env.rewards.DeactivateReward(env.family.ID, reward.ID); err != nil {
			t.Fatalf("DeactivateReward() failed: %v", err)
		}
		_, _, err := env.rewards.Redeem(env.child.ID, env.family.ID, reward.ID)
		if !apperr.IsNotFound(err) {
			t.Fatalf("expected not found, got %v", err)
		}
	})

	t.Run("unknown reward", func(t *testing.T) {
		_, _, err := env.rewards.Redeem(env.child.ID, env.family.ID, 9999)
		if !apperr.IsNotFound(err) {
			t.Fatalf("expected not found, got %v", err)
		}
	})
}

func TestAdjustPoints(t *testing.T) {
	env := newTestEnv(t)

	tx, err := env.rewards.Adjust(env.family.ID, env.child.ID, -10, "Broke the lamp")
	if err != nil {
		t.Fatalf("Adjust() failed: %v", err)
	}
	if tx.TransactionType != models.TransactionManualAdjustment {
		t.Errorf("transactionType = %s, want manual_adjustment", tx.TransactionType)
	}
	if tx.BalanceAfter != -10 {
		t.Errorf("balanceAfter = %d, want -10", tx.BalanceAfter)
	}

	tests := []struct {
		name   string
		child  int64
		delta  int
		reason string
		check  func(error) bool
	}{
		{"zero delta", 0, 0, "reason", apperr.IsValidation},
		{"empty reason", 0, 5, "", apperr.IsValidation},
		{"unknown child", 9999, 5, "reason", apperr.IsNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			childID := tt.child
			if childID == 0 {
				childID = env.child.ID
			}
			_, err := env.rewards.Adjust(env.family.ID, childID, tt.delta, tt.reason)
			if !tt.check(err) {
				t.Errorf("Adjust() error = %v", err)
			}
		})
	}
}

func TestCreateRewardValidation(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.rewards.CreateReward(env.family.ID, "Freebie", 0); !apperr.IsValidation(err) {
		t.Errorf("expected validation error for zero cost, got %v", err)
	}
	if _, err := env.rewards.CreateReward(env.family.ID, "", 10); !apperr.IsValidation(err) {
		t.Errorf("expected validation error for empty name, got %v", err)
	}
}
