package handler

import (
	"context"
	"errors"
	"net/http"

	"async-standup/internal/domain/standups"
	"async-standup/internal/transport/httpserver/middleware"
)

type responseRequest struct {
	Response string `json:"response"`
}

type storeResponseFunc func(ctx context.Context, token string, payload standups.ResponsePayload) (*standups.Assignment, error)

func (h *Handlers) SubmitResponse(w http.ResponseWriter, r *http.Request) {
	h.storeResponse(w, r, "responses.submit", h.Standups.SubmitResponse)
}

func (h *Handlers) EditResponse(w http.ResponseWriter, r *http.Request) {
	h.storeResponse(w, r, "responses.edit", h.Standups.EditResponse)
}

func (h *Handlers) storeResponse(w http.ResponseWriter, r *http.Request, op string, store storeResponseFunc) {
	assignment, ok := middleware.AssignmentFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "response url not found")
		return
	}

	var req responseRequest
	if err := decodeJSON(r, &req); err != nil {
		invalidRequest(w, "invalid json")
		return
	}

	updated, err := store(r.Context(), assignment.ResponseURL, standups.ResponsePayload{Response: req.Response})
	if err != nil {
		switch {
		case errors.Is(err, standups.ErrInvalidResponse):
			h.log.BusinessError(op+": invalid response", err, "assignment_id", assignment.ID)
			invalidRequest(w, "response is required")
		case errors.Is(err, standups.ErrAssignmentNotFound):
			h.log.BusinessError(op+": assignment not found", err, "assignment_id", assignment.ID)
			writeError(w, http.StatusNotFound, "not_found", "response url not found")
		default:
			h.internalError(w, r, op+": store response failed", err, "assignment_id", assignment.ID)
		}
		return
	}

	writeJSON(w, http.StatusOK, updated)
}
