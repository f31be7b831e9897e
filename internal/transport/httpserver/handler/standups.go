package handler

import (
	"errors"
	"net/http"

	"async-standup/internal/domain/standups"
	"async-standup/internal/transport/httpserver/middleware"
)

type createStandupRequest struct {
	Description   *string `json:"description"`
	TeamMemberIDs []int64 `json:"teamMemberIds"`
}

type assignRequest struct {
	TeamMemberIDs []int64 `json:"teamMemberIds"`
}

type standupResponse struct {
	standups.Standup
	Assignments []standups.Assignment `json:"assignments,omitempty"`
}

func (h *Handlers) CreateStandup(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthenticated", "authentication required")
		return
	}

	var req createStandupRequest
	if err := decodeJSON(r, &req); err != nil {
		invalidRequest(w, "invalid json")
		return
	}

	standup, assignments, err := h.Standups.CreateStandup(r.Context(), standups.CreateStandupInput{
		CreatorID:     user.ID,
		Description:   req.Description,
		TeamMemberIDs: req.TeamMemberIDs,
	})
	if err != nil {
		if errors.Is(err, standups.ErrUnknownTeamMember) {
			h.log.BusinessError("standups.create: unknown team member", err, "user_id", user.ID)
			invalidRequest(w, err.Error())
			return
		}
		h.internalError(w, r, "standups.create: create standup failed", err, "user_id", user.ID)
		return
	}

	writeJSON(w, http.StatusCreated, standupResponse{Standup: *standup, Assignments: assignments})
}

func (h *Handlers) ListStandups(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthenticated", "authentication required")
		return
	}

	page, err := parseIntParam(r.URL.Query().Get("page"), 1)
	if err != nil {
		invalidRequest(w, "invalid page")
		return
	}

	result, err := h.Standups.ListStandupsForUser(r.Context(), user, page)
	if err != nil {
		h.internalError(w, r, "standups.list: list standups failed", err, "user_id", user.ID)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *Handlers) GetStandup(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		invalidRequest(w, "invalid id")
		return
	}

	standup, err := h.Standups.GetStandup(r.Context(), id)
	if err != nil {
		h.standupError(w, r, "standups.get", err, id)
		return
	}

	writeJSON(w, http.StatusOK, standup)
}

func (h *Handlers) AssignTeamMembers(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		invalidRequest(w, "invalid id")
		return
	}

	var req assignRequest
	if err := decodeJSON(r, &req); err != nil {
		invalidRequest(w, "invalid json")
		return
	}
	if req.TeamMemberIDs == nil {
		invalidRequest(w, "teamMemberIds must be an array")
		return
	}

	assignments, err := h.Standups.AssignTeamMembers(r.Context(), id, req.TeamMemberIDs)
	if err != nil {
		h.standupError(w, r, "standups.assign", err, id)
		return
	}

	writeJSON(w, http.StatusOK, assignments)
}

func (h *Handlers) ListAssignments(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		invalidRequest(w, "invalid id")
		return
	}

	assignments, err := h.Standups.ListAssignments(r.Context(), id)
	if err != nil {
		h.standupError(w, r, "standups.list_assignments", err, id)
		return
	}

	writeJSON(w, http.StatusOK, assignments)
}

func (h *Handlers) standupError(w http.ResponseWriter, r *http.Request, op string, err error, standupID int64) {
	switch {
	case errors.Is(err, standups.ErrStandupNotFound):
		h.log.BusinessError(op+": standup not found", err, "standup_id", standupID)
		writeError(w, http.StatusNotFound, "not_found", "standup not found")
	case errors.Is(err, standups.ErrUnknownTeamMember):
		h.log.BusinessError(op+": unknown team member", err, "standup_id", standupID)
		invalidRequest(w, err.Error())
	default:
		h.internalError(w, r, op+": failed", err, "standup_id", standupID)
	}
}
