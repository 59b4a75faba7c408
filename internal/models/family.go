package models

import "time"

// Family represents a household account
type Family struct {
	ID            int64
	Name          string
	ParentEmail   string
	ParentKeyHash string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ChildProfile represents a child within a family
type ChildProfile struct {
	ID          int64
	FamilyID    int64
	Name        string
	AvatarColor string
	Username    string
	PINHash     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
