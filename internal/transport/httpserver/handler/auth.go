package handler

import (
	"errors"
	"net/http"

	"async-standup/internal/domain/identity"
	"async-standup/internal/domain/team"
	"async-standup/internal/transport/httpserver/middleware"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type activateRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		invalidRequest(w, "invalid json")
		return
	}

	user, token, err := h.Identity.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			h.log.BusinessError("auth.login: invalid credentials", err, "username", req.Username)
			writeError(w, http.StatusUnauthorized, "invalid_credentials", "invalid username or password")
			return
		}
		h.internalError(w, r, "auth.login: login failed", err, "username", req.Username)
		return
	}

	h.setSessionCookie(w, token, h.Identity.SessionTTL())
	writeJSON(w, http.StatusOK, user)
}

// Logout always clears the cookie, so repeating it is harmless.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(h.session.CookieName); err == nil {
		if err := h.Identity.Logout(r.Context(), cookie.Value); err != nil {
			h.internalError(w, r, "auth.logout: delete session failed", err)
			return
		}
	}

	h.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handlers) CurrentUser(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthenticated", "authentication required")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handlers) Activate(w http.ResponseWriter, r *http.Request) {
	var req activateRequest
	if err := decodeJSON(r, &req); err != nil {
		invalidRequest(w, "invalid json")
		return
	}

	if err := h.Team.ActivateAccount(r.Context(), req.Token, req.Password); err != nil {
		switch {
		case errors.Is(err, team.ErrInvalidOrExpiredToken):
			h.log.BusinessError("auth.activate: invalid token", err)
			writeError(w, http.StatusBadRequest, "invalid_token", "invalid or expired activation token")
		case errors.Is(err, team.ErrPasswordTooShort):
			h.log.BusinessError("auth.activate: password too short", err)
			invalidRequest(w, "password must be at least 6 characters")
		default:
			h.internalError(w, r, "auth.activate: activate account failed", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "account activated"})
}
