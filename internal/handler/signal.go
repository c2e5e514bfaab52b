package handler

import (
	"net/http"

	"github.com/tapline-games/tapline/internal/domain"
	"github.com/tapline-games/tapline/internal/logger"
	"github.com/tapline-games/tapline/internal/signal"
)

// AttackSignalRequest is the inbound webhook body for an attack aimed at a player
type AttackSignalRequest struct {
	UserID      string `json:"user_id" validate:"required"`
	EffectID    string `json:"effect_id" validate:"required"`
	DurationMin int    `json:"duration_minutes" validate:"omitempty,min=1,max=1440"`
	SenderLabel string `json:"sender_label" validate:"required"`
	WeaponLabel string `json:"weapon_label"`
}

// HandleInboundAttack enqueues an attack signal for durable delivery
// @Summary Inbound attack
// @Description Queue an attack effect for the targeted player; applied at least once
// @Tags signals
// @Accept json
// @Produce json
// @Param request body AttackSignalRequest true "Attack details"
// @Success 202 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Router /signal/attack [post]
func HandleInboundAttack(dispatcher *signal.Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var req AttackSignalRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Inbound attack"); err != nil {
			return
		}

		sig := domain.InboundSignal{
			UserID:      req.UserID,
			Kind:        domain.SignalAttack,
			EffectID:    req.EffectID,
			DurationMin: req.DurationMin,
			SenderLabel: req.SenderLabel,
			WeaponLabel: req.WeaponLabel,
		}
		if err := dispatcher.Submit(r.Context(), sig); err != nil {
			log.Error("Failed to enqueue attack signal", "error", err, "user_id", req.UserID, "effect_id", req.EffectID)
			respondError(w, http.StatusInternalServerError, ErrMsgGenericServerError)
			return
		}

		log.Info("Attack signal queued", "user_id", req.UserID, "effect_id", req.EffectID, "sender", req.SenderLabel)
		respondJSON(w, http.StatusAccepted, SuccessResponse{Message: "attack queued"})
	}
}

// GiftSignalRequest is the inbound webhook body for a gifted item
type GiftSignalRequest struct {
	UserID      string `json:"user_id" validate:"required"`
	EffectID    string `json:"effect_id" validate:"required"`
	SenderLabel string `json:"sender_label" validate:"required"`
}

// HandleInboundGift enqueues a gift signal for durable delivery
// @Summary Inbound gift
// @Description Queue a gift grant for the targeted player; applied at least once
// @Tags signals
// @Accept json
// @Produce json
// @Param request body GiftSignalRequest true "Gift details"
// @Success 202 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Router /signal/gift [post]
func HandleInboundGift(dispatcher *signal.Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var req GiftSignalRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Inbound gift"); err != nil {
			return
		}

		sig := domain.InboundSignal{
			UserID:      req.UserID,
			Kind:        domain.SignalGift,
			EffectID:    req.EffectID,
			SenderLabel: req.SenderLabel,
		}
		if err := dispatcher.Submit(r.Context(), sig); err != nil {
			log.Error("Failed to enqueue gift signal", "error", err, "user_id", req.UserID, "effect_id", req.EffectID)
			respondError(w, http.StatusInternalServerError, ErrMsgGenericServerError)
			return
		}

		log.Info("Gift signal queued", "user_id", req.UserID, "effect_id", req.EffectID, "sender", req.SenderLabel)
		respondJSON(w, http.StatusAccepted, SuccessResponse{Message: "gift queued"})
	}
}
