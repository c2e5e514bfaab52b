package handler

import (
	"net/http"

	"github.com/tapline-games/tapline/internal/logger"
	"github.com/tapline-games/tapline/internal/player"
	"github.com/tapline-games/tapline/internal/presence"
)

// CreateGroupRequest is the request body for founding a cooperative group
type CreateGroupRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=64"`
	UserID      string `json:"user_id" validate:"required"`
	DisplayName string `json:"display_name" validate:"required"`
}

// HandleCreateGroup founds a group with the caller as its leader
// @Summary Create group
// @Description Create a cooperative group and bind the founder to it
// @Tags groups
// @Accept json
// @Produce json
// @Param request body CreateGroupRequest true "Group details"
// @Success 201 {object} domain.GroupState
// @Failure 400 {object} ErrorResponse
// @Router /group [post]
func HandleCreateGroup(svc presence.Service, players player.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var req CreateGroupRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Create group"); err != nil {
			return
		}

		group, err := svc.CreateGroup(r.Context(), req.Name, req.UserID, req.DisplayName)
		if err != nil {
			respondServiceError(w, r, "Create group", err)
			return
		}

		if err := players.SetGroup(r.Context(), req.UserID, group.ID); err != nil {
			respondServiceError(w, r, "Create group", err)
			return
		}

		log.Info("Group created", "group_id", group.ID, "name", group.Name, "leader", req.UserID)
		respondJSON(w, http.StatusCreated, group)
	}
}

// GroupMemberRequest identifies a member acting on a group
type GroupMemberRequest struct {
	GroupID     string `json:"group_id" validate:"required"`
	UserID      string `json:"user_id" validate:"required"`
	DisplayName string `json:"display_name"`
}

// HandleJoinGroup adds the caller to an existing group
// @Summary Join group
// @Description Join an existing cooperative group
// @Tags groups
// @Accept json
// @Produce json
// @Param request body GroupMemberRequest true "Membership details"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse "Group not found"
// @Failure 409 {object} ErrorResponse "Already a member"
// @Router /group/join [post]
func HandleJoinGroup(svc presence.Service, players player.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var req GroupMemberRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Join group"); err != nil {
			return
		}

		if err := svc.JoinGroup(r.Context(), req.GroupID, req.UserID, req.DisplayName); err != nil {
			respondServiceError(w, r, "Join group", err)
			return
		}

		if err := players.SetGroup(r.Context(), req.UserID, req.GroupID); err != nil {
			respondServiceError(w, r, "Join group", err)
			return
		}

		log.Info("Member joined group", "group_id", req.GroupID, "user_id", req.UserID)
		respondJSON(w, http.StatusOK, SuccessResponse{Message: "joined group"})
	}
}

// HandleLeaveGroup removes the caller from a group
// @Summary Leave group
// @Description Leave a cooperative group
// @Tags groups
// @Accept json
// @Produce json
// @Param request body GroupMemberRequest true "Membership details"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /group/leave [post]
func HandleLeaveGroup(svc presence.Service, players player.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var req GroupMemberRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Leave group"); err != nil {
			return
		}

		if err := svc.LeaveGroup(r.Context(), req.GroupID, req.UserID); err != nil {
			respondServiceError(w, r, "Leave group", err)
			return
		}

		if err := players.SetGroup(r.Context(), req.UserID, ""); err != nil {
			respondServiceError(w, r, "Leave group", err)
			return
		}

		log.Info("Member left group", "group_id", req.GroupID, "user_id", req.UserID)
		respondJSON(w, http.StatusOK, SuccessResponse{Message: "left group"})
	}
}

// HeartbeatRequest marks a member as present in a live session
type HeartbeatRequest struct {
	GroupID string `json:"group_id" validate:"required"`
	UserID  string `json:"user_id" validate:"required"`
}

// HandleHeartbeat records a presence heartbeat for a group member
// @Summary Presence heartbeat
// @Description Mark the member's session as live; feeds the full-group-online bonus
// @Tags groups
// @Accept json
// @Produce json
// @Param request body HeartbeatRequest true "Heartbeat details"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /group/heartbeat [post]
func HandleHeartbeat(svc presence.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req HeartbeatRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Heartbeat"); err != nil {
			return
		}

		if err := svc.Heartbeat(r.Context(), req.GroupID, req.UserID); err != nil {
			respondServiceError(w, r, "Heartbeat", err)
			return
		}

		respondJSON(w, http.StatusOK, SuccessResponse{Message: "heartbeat recorded"})
	}
}

// HandleGroupStatus reports members and online presence for a group
// @Summary Group status
// @Description List members with online state and the full-group-online flag
// @Tags groups
// @Produce json
// @Param group_id query string true "Group ID"
// @Success 200 {object} presence.GroupStatus
// @Failure 404 {object} ErrorResponse
// @Router /group/status [get]
func HandleGroupStatus(svc presence.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groupID, ok := GetQueryParam(r, w, "group_id")
		if !ok {
			return
		}

		status, err := svc.Status(r.Context(), groupID)
		if err != nil {
			respondServiceError(w, r, "Group status", err)
			return
		}

		respondJSON(w, http.StatusOK, status)
	}
}
