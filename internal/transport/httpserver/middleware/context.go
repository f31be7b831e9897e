package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"async-standup/internal/domain/identity"
	"async-standup/internal/domain/standups"
)

type contextKey int

const (
	userKey contextKey = iota
	assignmentKey
)

func WithUser(ctx context.Context, user *identity.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

func UserFromContext(ctx context.Context) (*identity.User, bool) {
	user, ok := ctx.Value(userKey).(*identity.User)
	if !ok || user == nil {
		return nil, false
	}
	return user, true
}

func WithAssignment(ctx context.Context, assignment *standups.Assignment) context.Context {
	return context.WithValue(ctx, assignmentKey, assignment)
}

func AssignmentFromContext(ctx context.Context) (*standups.Assignment, bool) {
	assignment, ok := ctx.Value(assignmentKey).(*standups.Assignment)
	if !ok || assignment == nil {
		return nil, false
	}
	return assignment, true
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
