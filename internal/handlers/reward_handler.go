package handlers

import (
	"net/http"

	"routinestar/internal/service"
)

// RewardHandler handles the reward catalog, redemptions and manual
// point adjustments
type RewardHandler struct {
	rewardService *service.RewardService
	ledgerService *service.LedgerService
}

// NewRewardHandler creates a new reward handler
func NewRewardHandler(rewardService *service.RewardService, ledgerService *service.LedgerService) *RewardHandler {
	return &RewardHandler{
		rewardService: rewardService,
		ledgerService: ledgerService,
	}
}

// CreateReward adds a reward to the family catalog (parent)
func (h *RewardHandler) CreateReward(w http.ResponseWriter, r *http.Request) {
	claims := GetClaimsFromContext(r.Context())

	var req struct {
		Name       string `json:"name"`
		PointsCost int    `json:"pointsCost"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondServiceError(w, err)
		return
	}

	reward, err := h.rewardService.CreateReward(claims.FamilyID, req.Name, req.PointsCost)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, newRewardView(reward))
}

// ListRewards returns the family's active rewards (parent or child)
func (h *RewardHandler) ListRewards(w http.ResponseWriter, r *http.Request) {
	claims := GetClaimsFromContext(r.Context())

	rewards, err := h.rewardService.ListRewards(claims.FamilyID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, newRewardViews(rewards))
}

// DeactivateReward hides a reward from the catalog (parent)
func (h *RewardHandler) DeactivateReward(w http.ResponseWriter, r *http.Request) {
	claims := GetClaimsFromContext(r.Context())

	rewardID, err := pathID(r, "id")
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if err := h.rewardService.DeactivateReward(claims.FamilyID, rewardID); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

// RedeemReward spends the child's points on a reward (child)
func (h *RewardHandler) RedeemReward(w http.ResponseWriter, r *http.Request) {
	claims := GetClaimsFromContext(r.Context())

	rewardID, err := pathID(r, "id")
	if err != nil {
		respondServiceError(w, err)
		return
	}

	redemption, tx, err := h.rewardService.Redeem(claims.ProfileID, claims.FamilyID, rewardID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"redemptionId": redemption.ID,
		"redeemedAt":   redemption.RedeemedAt,
		"transaction":  newTransactionView(tx),
	})
}

// AdjustPoints posts a manual adjustment to a child's wallet (parent)
func (h *RewardHandler) AdjustPoints(w http.ResponseWriter, r *http.Request) {
	claims := GetClaimsFromContext(r.Context())

	childID, err := pathID(r, "id")
	if err != nil {
		respondServiceError(w, err)
		return
	}

	var req struct {
		Delta  int    `json:"delta"`
		Reason string `json:"reason"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondServiceError(w, err)
		return
	}

	tx, err := h.rewardService.Adjust(claims.FamilyID, childID, req.Delta, req.Reason)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, newTransactionView(tx))
}
