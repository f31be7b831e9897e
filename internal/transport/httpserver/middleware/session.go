package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/getsentry/sentry-go"

	"async-standup/internal/domain/identity"
	"async-standup/pkg/logger"
)

type SessionResolver interface {
	CurrentUser(ctx context.Context, token string) (*identity.User, error)
}

// SessionAuth resolves the session cookie to the logged-in user.
type SessionAuth struct {
	sessions   SessionResolver
	cookieName string
	log        logger.Logger
}

func NewSessionAuth(sessions SessionResolver, cookieName string, log logger.Logger) *SessionAuth {
	return &SessionAuth{
		sessions:   sessions,
		cookieName: cookieName,
		log:        log,
	}
}

func (a *SessionAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(a.cookieName)
		if err != nil || cookie.Value == "" {
			unauthenticated(w)
			return
		}

		user, err := a.sessions.CurrentUser(r.Context(), cookie.Value)
		if err != nil {
			if errors.Is(err, identity.ErrUnauthenticated) {
				unauthenticated(w)
				return
			}
			a.log.InternalError("auth.session: resolve session failed", err, "path", r.URL.Path)
			if hub := sentry.GetHubFromContext(r.Context()); hub != nil {
				hub.CaptureException(err)
			}
			writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

func unauthenticated(w http.ResponseWriter) {
	writeError(w, http.StatusUnauthorized, "unauthenticated", "authentication required")
}
