package handler

import (
	"errors"
	"net/http"

	"async-standup/internal/domain/team"
)

type createTeamMemberRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (h *Handlers) CreateTeamMember(w http.ResponseWriter, r *http.Request) {
	var req createTeamMemberRequest
	if err := decodeJSON(r, &req); err != nil {
		invalidRequest(w, "invalid json")
		return
	}

	member, err := h.Team.CreateTeamMember(r.Context(), req.Name, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, team.ErrInvalidMember):
			h.log.BusinessError("team.create: invalid member", err)
			invalidRequest(w, err.Error())
		case errors.Is(err, team.ErrDuplicateEmail):
			h.log.BusinessError("team.create: duplicate email", err, "email", req.Email)
			writeError(w, http.StatusBadRequest, "duplicate_email", "a user with this email already exists")
		default:
			h.internalError(w, r, "team.create: create team member failed", err, "email", req.Email)
		}
		return
	}

	writeJSON(w, http.StatusCreated, member)
}

func (h *Handlers) ListTeamMembers(w http.ResponseWriter, r *http.Request) {
	standupID, err := parseOptionalID(r.URL.Query().Get("standupId"))
	if err != nil {
		invalidRequest(w, "invalid standupId")
		return
	}

	members, err := h.Team.ListTeamMembers(r.Context(), team.ListFilter{ExcludeStandupID: standupID})
	if err != nil {
		h.internalError(w, r, "team.list: list team members failed", err)
		return
	}
	if members == nil {
		members = []team.TeamMember{}
	}

	writeJSON(w, http.StatusOK, members)
}

func (h *Handlers) DeleteTeamMember(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		invalidRequest(w, "invalid id")
		return
	}

	if err := h.Team.DeleteTeamMember(r.Context(), id); err != nil {
		if errors.Is(err, team.ErrTeamMemberNotFound) {
			h.log.BusinessError("team.delete: team member not found", err, "team_member_id", id)
			writeError(w, http.StatusNotFound, "not_found", "team member not found")
			return
		}
		h.internalError(w, r, "team.delete: delete team member failed", err, "team_member_id", id)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
