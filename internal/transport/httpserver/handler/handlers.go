package handler

import (
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"

	"async-standup/internal/config"
	"async-standup/internal/domain/identity"
	"async-standup/internal/domain/social"
	"async-standup/internal/domain/standups"
	"async-standup/internal/domain/team"
	"async-standup/pkg/logger"
)

type Handlers struct {
	Identity *identity.Service
	Team     *team.Service
	Standups *standups.Service
	Social   *social.Service
	session  config.SessionConfig
	log      logger.Logger
}

func New(identities *identity.Service, members *team.Service, standupsService *standups.Service, socialService *social.Service, session config.SessionConfig, log logger.Logger) *Handlers {
	return &Handlers{
		Identity: identities,
		Team:     members,
		Standups: standupsService,
		Social:   socialService,
		session:  session,
		log:      log,
	}
}

// internalError logs err, reports it to the request's Sentry hub and writes a
// generic 500.
func (h *Handlers) internalError(w http.ResponseWriter, r *http.Request, message string, err error, args ...any) {
	h.log.InternalError(message, err, args...)
	if hub := sentry.GetHubFromContext(r.Context()); hub != nil {
		hub.CaptureException(err)
	}
	writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
}

func (h *Handlers) setSessionCookie(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.session.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(ttl),
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   h.session.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handlers) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.session.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.session.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
