package service

import (
	"sync"

	"routinestar/internal/apperr"
	"routinestar/internal/models"
	"routinestar/internal/repository"
)

// LedgerService posts to and reads the append-only points ledger. Postings
// for the same profile are serialized in-process so the read-balance-then-
// write-balanceAfter sequence cannot interleave.
type LedgerService struct {
	ledgerRepo *repository.LedgerRepository

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// NewLedgerService creates a new ledger service
func NewLedgerService(ledgerRepo *repository.LedgerRepository) *LedgerService {
	return &LedgerService{
		ledgerRepo: ledgerRepo,
		locks:      make(map[int64]*sync.Mutex),
	}
}

// profileLock returns the posting lock for a profile
func (s *LedgerService) profileLock(profileID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[profileID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[profileID] = lock
	}
	return lock
}

// Balance returns the profile's balance, recomputed from the full history
func (s *LedgerService) Balance(profileID, familyID int64) (int, error) {
	return s.ledgerRepo.SumDeltas(profileID, familyID)
}

// Post appends a transaction. balanceAfter is the prior balance plus delta,
// read immediately before the insert under the profile's posting lock.
func (s *LedgerService) Post(profileID, familyID int64, delta int, transactionType, reason string, referenceID *int64, referenceTable *string) (*models.PointTransaction, error) {
	lock := s.profileLock(profileID)
	lock.Lock()
	defer lock.Unlock()

	balance, err := s.ledgerRepo.SumDeltas(profileID, familyID)
	if err != nil {
		return nil, err
	}

	return s.ledgerRepo.Insert(&models.PointTransaction{
		FamilyID:        familyID,
		ProfileID:       profileID,
		TransactionType: transactionType,
		PointsDelta:     delta,
		BalanceAfter:    balance + delta,
		Reason:          reason,
		ReferenceID:     referenceID,
		ReferenceTable:  referenceTable,
	})
}

// Spend posts a debit only if the profile can afford it. The balance check
// and the insert happen under the same posting lock.
func (s *LedgerService) Spend(profileID, familyID int64, cost int, transactionType, reason string, referenceID *int64, referenceTable *string) (*models.PointTransaction, error) {
	lock := s.profileLock(profileID)
	lock.Lock()
	defer lock.Unlock()

	balance, err := s.ledgerRepo.SumDeltas(profileID, familyID)
	if err != nil {
		return nil, err
	}
	if balance < cost {
		return nil, apperr.Conflict("insufficient points")
	}

	return s.ledgerRepo.Insert(&models.PointTransaction{
		FamilyID:        familyID,
		ProfileID:       profileID,
		TransactionType: transactionType,
		PointsDelta:     -cost,
		BalanceAfter:    balance - cost,
		Reason:          reason,
		ReferenceID:     referenceID,
		ReferenceTable:  referenceTable,
	})
}

// History returns recent transactions for a profile, newest first
func (s *LedgerService) History(profileID, familyID int64, limit int) ([]models.PointTransaction, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.ledgerRepo.ListByProfile(profileID, familyID, limit)
}
