package handler

import (
	"errors"
	"net/http"

	"async-standup/internal/domain/social"
	"async-standup/internal/transport/httpserver/middleware"
)

// The web client repeats the assignment id in the body; the path value wins.
type reactionRequest struct {
	AssignmentID *int64 `json:"assignmentId"`
	Emoji        string `json:"emoji"`
}

type commentRequest struct {
	AssignmentID *int64 `json:"assignmentId"`
	Content      string `json:"content"`
}

func (h *Handlers) ToggleReaction(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthenticated", "authentication required")
		return
	}
	assignmentID, err := parseIDParam(r, "id")
	if err != nil {
		invalidRequest(w, "invalid id")
		return
	}

	var req reactionRequest
	if err := decodeJSON(r, &req); err != nil {
		invalidRequest(w, "invalid json")
		return
	}

	result, err := h.Social.ToggleReaction(r.Context(), assignmentID, user.ID, req.Emoji)
	if err != nil {
		h.socialError(w, r, "social.toggle_reaction", err, assignmentID)
		return
	}

	if !result.Added {
		writeJSON(w, http.StatusOK, map[string]bool{"removed": true})
		return
	}
	writeJSON(w, http.StatusCreated, result.Reaction)
}

func (h *Handlers) ListReactions(w http.ResponseWriter, r *http.Request) {
	assignmentID, err := parseIDParam(r, "id")
	if err != nil {
		invalidRequest(w, "invalid id")
		return
	}

	groups, err := h.Social.ListReactions(r.Context(), assignmentID)
	if err != nil {
		h.socialError(w, r, "social.list_reactions", err, assignmentID)
		return
	}

	writeJSON(w, http.StatusOK, groups)
}

func (h *Handlers) AddComment(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthenticated", "authentication required")
		return
	}
	assignmentID, err := parseIDParam(r, "id")
	if err != nil {
		invalidRequest(w, "invalid id")
		return
	}

	var req commentRequest
	if err := decodeJSON(r, &req); err != nil {
		invalidRequest(w, "invalid json")
		return
	}

	comment, err := h.Social.AddComment(r.Context(), assignmentID, user.ID, req.Content)
	if err != nil {
		h.socialError(w, r, "social.add_comment", err, assignmentID)
		return
	}

	writeJSON(w, http.StatusCreated, comment)
}

func (h *Handlers) ListComments(w http.ResponseWriter, r *http.Request) {
	assignmentID, err := parseIDParam(r, "id")
	if err != nil {
		invalidRequest(w, "invalid id")
		return
	}

	comments, err := h.Social.ListComments(r.Context(), assignmentID)
	if err != nil {
		h.socialError(w, r, "social.list_comments", err, assignmentID)
		return
	}

	writeJSON(w, http.StatusOK, comments)
}

func (h *Handlers) socialError(w http.ResponseWriter, r *http.Request, op string, err error, assignmentID int64) {
	switch {
	case errors.Is(err, social.ErrAssignmentNotFound):
		h.log.BusinessError(op+": assignment not found", err, "assignment_id", assignmentID)
		writeError(w, http.StatusNotFound, "not_found", "assignment not found")
	case errors.Is(err, social.ErrEmptyEmoji):
		h.log.BusinessError(op+": empty emoji", err, "assignment_id", assignmentID)
		invalidRequest(w, "emoji is required")
	case errors.Is(err, social.ErrEmptyContent):
		h.log.BusinessError(op+": empty content", err, "assignment_id", assignmentID)
		invalidRequest(w, "comment content is required")
	default:
		h.internalError(w, r, op+": failed", err, "assignment_id", assignmentID)
	}
}
