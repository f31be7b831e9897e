package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"async-standup/internal/domain/identity"
	"async-standup/internal/domain/standups"
	"async-standup/pkg/logger"
)

type stubSessions map[string]*identity.User

func (s stubSessions) CurrentUser(ctx context.Context, token string) (*identity.User, error) {
	user, ok := s[token]
	if !ok {
		return nil, identity.ErrUnauthenticated
	}
	return user, nil
}

type stubAssignments map[string]*standups.Assignment

func (s stubAssignments) GetAssignmentByToken(ctx context.Context, token string) (*standups.Assignment, error) {
	assignment, ok := s[token]
	if !ok {
		return nil, standups.ErrAssignmentNotFound
	}
	return assignment, nil
}

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestSessionAuthAndRole(t *testing.T) {
	sessions := stubSessions{
		"admin-token":  {ID: 1, Role: identity.RoleAdmin},
		"member-token": {ID: 2, Role: identity.RoleTeamMember},
	}
	auth := NewSessionAuth(sessions, "standup_session", logger.Discard())
	handler := auth.Middleware(RequireRole(identity.RoleAdmin)(http.HandlerFunc(okHandler)))

	cases := []struct {
		name   string
		cookie string
		want   int
	}{
		{"no cookie", "", http.StatusUnauthorized},
		{"unknown session", "nope", http.StatusUnauthorized},
		{"team member", "member-token", http.StatusForbidden},
		{"admin", "admin-token", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/standups", nil)
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "standup_session", Value: tc.cookie})
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, rec.Code)
			}
		})
	}
}

func TestRequireRoleWithoutSession(t *testing.T) {
	rec := httptest.NewRecorder()
	RequireRole(identity.RoleAdmin)(http.HandlerFunc(okHandler)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestResponseCapability(t *testing.T) {
	capability := NewResponseCapability(stubAssignments{"tok": {ID: 5, ResponseURL: "tok"}}, logger.Discard())

	var seen *standups.Assignment
	r := chi.NewRouter()
	r.With(capability.Middleware).Post("/responses/{responseUrl}", func(w http.ResponseWriter, r *http.Request) {
		seen, _ = AssignmentFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/responses/tok", nil))
	if rec.Code != http.StatusOK || seen == nil || seen.ID != 5 {
		t.Fatalf("expected assignment 5 in context, got %d %+v", rec.Code, seen)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/responses/does-not-exist", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestCORSAllowsCredentialsForKnownOrigin(t *testing.T) {
	handler := NewCORS([]string{"http://localhost:5173"})(http.HandlerFunc(okHandler))

	req := httptest.NewRequest(http.MethodOptions, "/api/login", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Credentials") != "true" {
		t.Fatalf("expected credentials allowed")
	}

	req = httptest.NewRequest(http.MethodGet, "/api/user", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatalf("expected unknown origin to be ignored")
	}
}
