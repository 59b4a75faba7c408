package models

import "time"

// Transaction types for the points ledger
const (
	TransactionTaskCompletion   = "task_completion"
	TransactionRoutineBonus     = "routine_bonus"
	TransactionManualAdjustment = "manual_adjustment"
	TransactionRewardRedeem     = "reward_redeem"
)

// PointTransaction is an immutable ledger entry. BalanceAfter is the running
// balance for the profile at insert time; rows are never updated or deleted.
type PointTransaction struct {
	ID              int64
	FamilyID        int64
	ProfileID       int64
	TransactionType string
	PointsDelta     int
	BalanceAfter    int
	Reason          string
	ReferenceID     *int64
	ReferenceTable  *string
	CreatedAt       time.Time
}
