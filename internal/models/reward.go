package models

import "time"

// Reward is something a child can redeem points for
type Reward struct {
	ID         int64
	FamilyID   int64
	Name       string
	PointsCost int
	Active     bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// RewardRedemption links a redeemed reward to the ledger entry that paid for it
type RewardRedemption struct {
	ID             int64
	RewardID       int64
	ChildProfileID int64
	TransactionID  int64
	RedeemedAt     time.Time
}
