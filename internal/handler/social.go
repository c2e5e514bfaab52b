package handler

import (
	"net/http"

	"github.com/tapline-games/tapline/internal/domain"
	"github.com/tapline-games/tapline/internal/player"
)

// OwnedItemsResponse lists held consumables for the outbound social collaborator
type OwnedItemsResponse struct {
	UserID string        `json:"user_id"`
	Items  []domain.Item `json:"items"`
}

// HandleOwnedAttacks lists a player's held attack items
// @Summary Owned attacks
// @Description Attack items the player currently holds and can send at peers
// @Tags social
// @Produce json
// @Param user_id query string true "User ID"
// @Success 200 {object} OwnedItemsResponse
// @Failure 400 {object} ErrorResponse
// @Router /social/attacks [get]
func HandleOwnedAttacks(svc player.Service) http.HandlerFunc {
	return ownedConsumables(svc, domain.CategoryAttack)
}

// HandleOwnedGifts lists a player's held gift items
// @Summary Owned gifts
// @Description Gift items the player currently holds and can send to peers
// @Tags social
// @Produce json
// @Param user_id query string true "User ID"
// @Success 200 {object} OwnedItemsResponse
// @Failure 400 {object} ErrorResponse
// @Router /social/gifts [get]
func HandleOwnedGifts(svc player.Service) http.HandlerFunc {
	return ownedConsumables(svc, domain.CategoryGift)
}

func ownedConsumables(svc player.Service, category domain.Category) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := GetQueryParam(r, w, "user_id")
		if !ok {
			return
		}

		items, err := svc.OwnedConsumables(r.Context(), userID, category)
		if err != nil {
			respondServiceError(w, r, "Owned consumables", err)
			return
		}
		if items == nil {
			items = []domain.Item{}
		}

		respondJSON(w, http.StatusOK, OwnedItemsResponse{UserID: userID, Items: items})
	}
}

// ScoreResponse carries the lifetime-earned score used for rank comparisons
type ScoreResponse struct {
	UserID string `json:"user_id"`
	Score  int64  `json:"score"`
}

// HandleGetScore returns a player's lifetime-earned score
// @Summary Player score
// @Description Lifetime primary currency earned, never reduced by spending
// @Tags social
// @Produce json
// @Param user_id query string true "User ID"
// @Success 200 {object} ScoreResponse
// @Failure 400 {object} ErrorResponse
// @Router /social/score [get]
func HandleGetScore(svc player.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := GetQueryParam(r, w, "user_id")
		if !ok {
			return
		}

		view, err := svc.View(r.Context(), userID)
		if err != nil {
			respondServiceError(w, r, "Get score", err)
			return
		}

		respondJSON(w, http.StatusOK, ScoreResponse{UserID: userID, Score: view.Score})
	}
}
