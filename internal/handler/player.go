package handler

import (
	"fmt"
	"net/http"

	"github.com/tapline-games/tapline/internal/economy"
	"github.com/tapline-games/tapline/internal/logger"
	"github.com/tapline-games/tapline/internal/player"
	"github.com/tapline-games/tapline/internal/signal"
)

// ClickRequest is the request body for a manual click
type ClickRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

type ClickResponse struct {
	Gained int64 `json:"gained"`
}

// HandleClick credits one manual click
// @Summary Click
// @Description Apply one manual click and credit its value
// @Tags player
// @Accept json
// @Produce json
// @Param request body ClickRequest true "Click details"
// @Success 200 {object} ClickResponse
// @Failure 400 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse "Maintenance"
// @Router /player/click [post]
func HandleClick(svc player.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var req ClickRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Click"); err != nil {
			return
		}

		gained, err := svc.Click(r.Context(), req.UserID)
		if err != nil {
			respondServiceError(w, r, "Click", err)
			return
		}

		log.Debug("Click applied", "user_id", req.UserID, "gained", gained)
		respondJSON(w, http.StatusOK, ClickResponse{Gained: gained})
	}
}

// PurchaseRequest is the request body for buying a catalog item
type PurchaseRequest struct {
	UserID string `json:"user_id" validate:"required"`
	Item   string `json:"item" validate:"required"`
}

type PurchaseResponse struct {
	Message string                 `json:"message"`
	Result  economy.PurchaseResult `json:"result"`
}

// HandlePurchase buys one level of a catalog item
// @Summary Purchase item
// @Description Buy one level of a catalog item at its current price
// @Tags player
// @Accept json
// @Produce json
// @Param request body PurchaseRequest true "Purchase details"
// @Success 200 {object} PurchaseResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /player/purchase [post]
func HandlePurchase(svc player.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var req PurchaseRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Purchase"); err != nil {
			return
		}

		result, err := svc.Purchase(r.Context(), req.UserID, req.Item)
		if err != nil {
			respondServiceError(w, r, "Purchase", err)
			return
		}

		message := fmt.Sprintf("Purchase of %s failed: %s", req.Item, result.Reason)
		if result.Success {
			message = fmt.Sprintf("Bought %s (level %d) for %d", req.Item, result.NewLevel, result.Cost)
			log.Info("Purchase completed", "user_id", req.UserID, "item", req.Item, "cost", result.Cost, "level", result.NewLevel)
		} else {
			log.Debug("Purchase rejected", "user_id", req.UserID, "item", req.Item, "reason", result.Reason)
		}

		respondJSON(w, http.StatusOK, PurchaseResponse{Message: message, Result: result})
	}
}

// DefendRequest is the request body for consuming a defense item
type DefendRequest struct {
	UserID string `json:"user_id" validate:"required"`
	Item   string `json:"item" validate:"required"`
}

// HandleDefend consumes a defense item against the most pressing attack
// @Summary Defend
// @Description Consume one defense item; it neutralizes the earliest-expiring attack it counters
// @Tags player
// @Accept json
// @Produce json
// @Param request body DefendRequest true "Defend details"
// @Success 200 {object} combat.DefendResult
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "No stock"
// @Router /player/defend [post]
func HandleDefend(svc player.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var req DefendRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Defend"); err != nil {
			return
		}

		result, err := svc.Defend(r.Context(), req.UserID, req.Item)
		if err != nil {
			respondServiceError(w, r, "Defend", err)
			return
		}

		log.Info("Defense used", "user_id", req.UserID, "item", req.Item, "outcome", result.Outcome)
		respondJSON(w, http.StatusOK, result)
	}
}

// SessionRequest identifies the player for session lifecycle calls
type SessionRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

// HandleResume settles the absence window and starts the live tick
// @Summary Resume session
// @Description Credit offline production once and begin live ticking
// @Tags player
// @Accept json
// @Produce json
// @Param request body SessionRequest true "Session details"
// @Success 200 {object} settlement.Result
// @Failure 400 {object} ErrorResponse
// @Router /player/resume [post]
func HandleResume(svc player.Service, dispatcher *signal.Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var req SessionRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Resume"); err != nil {
			return
		}

		result, err := svc.Resume(r.Context(), req.UserID)
		if err != nil {
			respondServiceError(w, r, "Resume", err)
			return
		}
		dispatcher.EnsureSession(req.UserID)

		if result.Applied {
			log.Info("Offline settlement credited",
				"user_id", req.UserID,
				"credited", result.Credited,
				"elapsed", result.Elapsed)
		}
		respondJSON(w, http.StatusOK, result)
	}
}

// HandleDepart stamps the departure time and stops the live tick
// @Summary Depart
// @Description Stop live ticking and record the departure stamp for later settlement
// @Tags player
// @Accept json
// @Produce json
// @Param request body SessionRequest true "Session details"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Router /player/depart [post]
func HandleDepart(svc player.Service, dispatcher *signal.Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var req SessionRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Depart"); err != nil {
			return
		}

		dispatcher.EndSession(req.UserID)
		if err := svc.Depart(r.Context(), req.UserID); err != nil {
			respondServiceError(w, r, "Depart", err)
			return
		}

		log.Info("Player departed", "user_id", req.UserID)
		respondJSON(w, http.StatusOK, SuccessResponse{Message: "departed"})
	}
}

// HandleGetState returns the derived read model for a player
// @Summary Player state
// @Description Current currencies, derived rates, levels, and active effects
// @Tags player
// @Produce json
// @Param user_id query string true "User ID"
// @Success 200 {object} player.StateView
// @Failure 400 {object} ErrorResponse
// @Router /player/state [get]
func HandleGetState(svc player.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := GetQueryParam(r, w, "user_id")
		if !ok {
			return
		}

		view, err := svc.View(r.Context(), userID)
		if err != nil {
			respondServiceError(w, r, "Get state", err)
			return
		}

		respondJSON(w, http.StatusOK, view)
	}
}

// MuteRequest toggles the social penalty on a player
type MuteRequest struct {
	UserID string `json:"user_id" validate:"required"`
	Muted  *bool  `json:"muted" validate:"required"`
}

// HandleSetMuted applies or lifts the mute penalty
// @Summary Set muted
// @Description Toggle the mute production penalty for a player
// @Tags player
// @Accept json
// @Produce json
// @Param request body MuteRequest true "Mute details"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Router /player/mute [post]
func HandleSetMuted(svc player.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var req MuteRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Set muted"); err != nil {
			return
		}

		if err := svc.SetMuted(r.Context(), req.UserID, *req.Muted); err != nil {
			respondServiceError(w, r, "Set muted", err)
			return
		}

		log.Info("Mute state changed", "user_id", req.UserID, "muted", *req.Muted)
		respondJSON(w, http.StatusOK, SuccessResponse{Message: "mute state updated"})
	}
}

// HandleHardReset wipes a player back to the all-zero aggregate
// @Summary Hard reset
// @Description Reset a player to the initial state, clearing notification history
// @Tags player
// @Accept json
// @Produce json
// @Param request body SessionRequest true "Player to reset"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Router /player/reset [post]
func HandleHardReset(svc player.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var req SessionRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Hard reset"); err != nil {
			return
		}

		if err := svc.HardReset(r.Context(), req.UserID); err != nil {
			respondServiceError(w, r, "Hard reset", err)
			return
		}

		log.Warn("Player hard reset", "user_id", req.UserID)
		respondJSON(w, http.StatusOK, SuccessResponse{Message: "player reset"})
	}
}
