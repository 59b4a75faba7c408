package repository

import (
	"fmt"
	"time"

	"routinestar/internal/database"
	"routinestar/internal/models"
)

// LedgerRepository handles the append-only point transaction table.
// Rows are never updated or deleted.
type LedgerRepository struct {
	db *database.DB
}

// NewLedgerRepository creates a new ledger repository
func NewLedgerRepository(db *database.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// SumDeltas computes a profile's balance from the full transaction history
func (r *LedgerRepository) SumDeltas(profileID, familyID int64) (int, error) {
	query := `
		SELECT COALESCE(SUM(points_delta), 0)
		FROM point_transactions
		WHERE profile_id = ? AND family_id = ?
	`

	var balance int
	err := r.db.QueryRow(query, profileID, familyID).Scan(&balance)
	if err != nil {
		return 0, fmt.Errorf("failed to sum point transactions: %w", err)
	}
	return balance, nil
}

// Insert appends a new transaction row
func (r *LedgerRepository) Insert(tx *models.PointTransaction) (*models.PointTransaction, error) {
	query := `
		INSERT INTO point_transactions
			(family_id, profile_id, transaction_type, points_delta, balance_after,
			 reason, reference_id, reference_table)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	id, err := r.db.ExecReturningID(query,
		tx.FamilyID, tx.ProfileID, tx.TransactionType, tx.PointsDelta,
		tx.BalanceAfter, tx.Reason, tx.ReferenceID, tx.ReferenceTable)
	if err != nil {
		return nil, fmt.Errorf("failed to insert point transaction: %w", err)
	}

	inserted := *tx
	inserted.ID = id
	inserted.CreatedAt = time.Now()
	return &inserted, nil
}

// ListByProfile retrieves recent transactions for a profile, newest first
func (r *LedgerRepository) ListByProfile(profileID, familyID int64, limit int) ([]models.PointTransaction, error) {
	query := `
		SELECT id, family_id, profile_id, transaction_type, points_delta,
		       balance_after, reason, reference_id, reference_table, created_at
		FROM point_transactions
		WHERE profile_id = ? AND family_id = ?
		ORDER BY id DESC
		LIMIT ?
	`

	rows, err := r.db.Query(query, profileID, familyID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query point transactions: %w", err)
	}
	defer rows.Close()

	var transactions []models.PointTransaction
	for rows.Next() {
		var tx models.PointTransaction
		if err := rows.Scan(
			&tx.ID, &tx.FamilyID, &tx.ProfileID, &tx.TransactionType,
			&tx.PointsDelta, &tx.BalanceAfter, &tx.Reason,
			&tx.ReferenceID, &tx.ReferenceTable, &tx.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan point transaction: %w", err)
		}
		transactions = append(transactions, tx)
	}

	return transactions, rows.Err()
}
