package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/go-chi/chi/v5"

	"async-standup/internal/domain/standups"
	"async-standup/pkg/logger"
)

const ResponseURLParam = "responseUrl"

type AssignmentResolver interface {
	GetAssignmentByToken(ctx context.Context, token string) (*standups.Assignment, error)
}

// ResponseCapability authorizes a request by the response token in the path.
// No session is consulted: holding the token is the whole credential.
type ResponseCapability struct {
	assignments AssignmentResolver
	log         logger.Logger
}

func NewResponseCapability(assignments AssignmentResolver, log logger.Logger) *ResponseCapability {
	return &ResponseCapability{assignments: assignments, log: log}
}

func (c *ResponseCapability) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := chi.URLParam(r, ResponseURLParam)

		assignment, err := c.assignments.GetAssignmentByToken(r.Context(), token)
		if err != nil {
			if errors.Is(err, standups.ErrAssignmentNotFound) {
				c.log.BusinessError("auth.capability: unknown response url", err)
				writeError(w, http.StatusNotFound, "not_found", "response url not found")
				return
			}
			c.log.InternalError("auth.capability: resolve response url failed", err)
			if hub := sentry.GetHubFromContext(r.Context()); hub != nil {
				hub.CaptureException(err)
			}
			writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithAssignment(r.Context(), assignment)))
	})
}
