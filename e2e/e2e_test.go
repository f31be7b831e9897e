//go:build e2e
// +build e2e

package e2e_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"os"
	"strconv"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	"async-standup/internal/config"
	"async-standup/internal/db"
	"async-standup/internal/domain/identity"
	"async-standup/internal/domain/social"
	"async-standup/internal/domain/standups"
	"async-standup/internal/domain/team"
	identityrepo "async-standup/internal/repository/postgres/identity"
	socialrepo "async-standup/internal/repository/postgres/social"
	standupsrepo "async-standup/internal/repository/postgres/standups"
	teamrepo "async-standup/internal/repository/postgres/team"
	"async-standup/internal/transport/httpserver"
	"async-standup/internal/transport/httpserver/handler"
	"async-standup/pkg/logger"
)

type testEnv struct {
	server *httptest.Server
	db     *gorm.DB
	mail   *mailbox
}

type mailbox struct {
	mu     sync.Mutex
	tokens map[string]string
}

func (m *mailbox) SendActivation(ctx context.Context, email, name, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[email] = token
	return nil
}

func (m *mailbox) token(email string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokens[email]
}

func setupE2E(t *testing.T) *testEnv {
	t.Helper()

	dsn := os.Getenv("E2E_DB_DSN")
	if dsn == "" {
		t.Skip("E2E_DB_DSN not set; skipping e2e tests")
	}

	log := logger.Discard()
	cfg := config.Config{
		StorageDriver: config.StorageDriverPostgres,
		DB:            config.DBConfig{DSN: dsn},
		Session: config.SessionConfig{
			Secret:     "e2e-secret",
			TTL:        time.Hour,
			CookieName: "standup_session",
		},
	}

	dbConn, err := db.Open(cfg.StorageDriver, cfg.DB, log)
	if err != nil {
		t.Fatalf("db connect: %v", err)
	}

	if err := db.Migrate(dbConn, cfg.StorageDriver, log); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	if err := cleanDB(dbConn); err != nil {
		t.Fatalf("clean db: %v", err)
	}

	mail := &mailbox{tokens: make(map[string]string)}
	identities := identity.NewService(identityrepo.NewPostgres(dbConn), []byte(cfg.Session.Secret), cfg.Session.TTL)
	if _, err := identities.EnsureAdmin(context.Background(), "alice", "alice-password"); err != nil {
		t.Fatalf("ensure admin: %v", err)
	}
	members := team.NewService(teamrepo.NewPostgres(dbConn), mail, log)
	standupsService := standups.NewService(standupsrepo.NewPostgres(dbConn))
	socialService := social.NewService(socialrepo.NewPostgres(dbConn))
	handlers := handler.New(identities, members, standupsService, socialService, cfg.Session, log)

	router := httpserver.NewRouter(cfg, handlers, log)
	server := httptest.NewServer(router)

	return &testEnv{server: server, db: dbConn, mail: mail}
}

func (e *testEnv) Close() {
	e.server.Close()
	sqlDB, err := e.db.DB()
	if err == nil {
		_ = sqlDB.Close()
	}
}

func cleanDB(dbConn *gorm.DB) error {
	return dbConn.WithContext(context.Background()).Exec(
		"TRUNCATE TABLE standup_comments, standup_reactions, standup_assignments, standups, team_members, sessions, users RESTART IDENTITY CASCADE",
	).Error
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	return &http.Client{Jar: jar, Timeout: 5 * time.Second}
}

func requestJSON(t *testing.T, client *http.Client, method, url string, payload interface{}) (*http.Response, []byte) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}

	return resp, respBody
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type userResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type memberResponse struct {
	ID     int64  `json:"id"`
	Email  string `json:"email"`
	UserID int64  `json:"userId"`
}

type assignmentResponse struct {
	ID          int64           `json:"id"`
	StandupID   int64           `json:"standupId"`
	ResponseURL string          `json:"responseUrl"`
	Status      string          `json:"status"`
	Response    json.RawMessage `json:"response"`
}

type standupResponse struct {
	ID          int64                `json:"id"`
	Identifier  string               `json:"identifier"`
	Description *string              `json:"description"`
	Status      string               `json:"status"`
	Assignments []assignmentResponse `json:"assignments"`
}

type standupPage struct {
	Items      []standupResponse `json:"items"`
	Pagination struct {
		Total int64 `json:"total"`
	} `json:"pagination"`
}

func TestE2EHealthAndAuth(t *testing.T) {
	env := setupE2E(t)
	defer env.Close()

	client := newClient(t)

	resp, body := requestJSON(t, client, http.MethodGet, env.server.URL+"/api/health", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, string(body))
	}

	resp, body = requestJSON(t, client, http.MethodGet, env.server.URL+"/api/user", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d: %s", resp.StatusCode, string(body))
	}
	var errResp errorEnvelope
	if err := json.Unmarshal(body, &errResp); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if errResp.Error.Code != "unauthenticated" {
		t.Fatalf("expected unauthenticated, got %q", errResp.Error.Code)
	}

	resp, body = requestJSON(t, client, http.MethodPost, env.server.URL+"/api/login", map[string]string{
		"username": "alice",
		"password": "alice-password",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, string(body))
	}

	resp, body = requestJSON(t, client, http.MethodGet, env.server.URL+"/api/user", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, string(body))
	}
	var me userResponse
	if err := json.Unmarshal(body, &me); err != nil {
		t.Fatalf("decode me: %v", err)
	}
	if me.Username != "alice" || me.Role != identity.RoleAdmin {
		t.Fatalf("unexpected user %+v", me)
	}
}

func TestE2EStandupFlow(t *testing.T) {
	env := setupE2E(t)
	defer env.Close()

	alice := newClient(t)
	resp, body := requestJSON(t, alice, http.MethodPost, env.server.URL+"/api/login", map[string]string{
		"username": "alice",
		"password": "alice-password",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, string(body))
	}

	resp, body = requestJSON(t, alice, http.MethodPost, env.server.URL+"/api/team-members", map[string]string{
		"name":  "Bob",
		"email": "bob@example.com",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, string(body))
	}
	var bob memberResponse
	if err := json.Unmarshal(body, &bob); err != nil {
		t.Fatalf("decode member: %v", err)
	}

	token := env.mail.token("bob@example.com")
	if token == "" {
		t.Fatalf("expected activation token for bob")
	}
	resp, body = requestJSON(t, newClient(t), http.MethodPost, env.server.URL+"/api/activate", map[string]string{
		"token":    token,
		"password": "bob-password",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, string(body))
	}

	resp, body = requestJSON(t, alice, http.MethodPost, env.server.URL+"/api/standups", map[string]string{
		"description": "sprint 1",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, string(body))
	}
	var standup standupResponse
	if err := json.Unmarshal(body, &standup); err != nil {
		t.Fatalf("decode standup: %v", err)
	}
	if standup.Status != standups.StatusDraft || standup.Identifier == "" {
		t.Fatalf("unexpected standup %+v", standup)
	}

	standupURL := env.server.URL + "/api/standups/" + strconv.FormatInt(standup.ID, 10)
	resp, body = requestJSON(t, alice, http.MethodPost, standupURL+"/assign", map[string][]int64{
		"teamMemberIds": {bob.ID},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, string(body))
	}
	var assignments []assignmentResponse
	if err := json.Unmarshal(body, &assignments); err != nil {
		t.Fatalf("decode assignments: %v", err)
	}
	if len(assignments) != 1 || assignments[0].Status != standups.AssignmentPending {
		t.Fatalf("unexpected assignments %+v", assignments)
	}

	resp, body = requestJSON(t, newClient(t), http.MethodPost, env.server.URL+"/api/responses/"+assignments[0].ResponseURL, map[string]string{
		"response": "finished the migration",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, string(body))
	}
	var submitted assignmentResponse
	if err := json.Unmarshal(body, &submitted); err != nil {
		t.Fatalf("decode submitted: %v", err)
	}
	if submitted.Status != standups.AssignmentCompleted {
		t.Fatalf("expected completed, got %q", submitted.Status)
	}

	resp, body = requestJSON(t, newClient(t), http.MethodPost, env.server.URL+"/api/responses/does-not-exist", map[string]string{
		"response": "hello",
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", resp.StatusCode, string(body))
	}

	bobClient := newClient(t)
	var bobUser struct {
		Username string
	}
	if err := env.db.Raw("SELECT username FROM users WHERE id = ?", bob.UserID).Scan(&bobUser).Error; err != nil {
		t.Fatalf("load bob: %v", err)
	}
	resp, body = requestJSON(t, bobClient, http.MethodPost, env.server.URL+"/api/login", map[string]string{
		"username": bobUser.Username,
		"password": "bob-password",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, string(body))
	}

	resp, body = requestJSON(t, bobClient, http.MethodGet, env.server.URL+"/api/standups", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, string(body))
	}
	var page standupPage
	if err := json.Unmarshal(body, &page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	if page.Pagination.Total != 1 || len(page.Items) != 1 {
		t.Fatalf("expected one visible standup, got %+v", page)
	}

	reactionsURL := env.server.URL + "/api/responses/" + strconv.FormatInt(assignments[0].ID, 10) + "/reactions"
	resp, body = requestJSON(t, alice, http.MethodPost, reactionsURL, map[string]string{"emoji": "🚀"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, string(body))
	}
	resp, body = requestJSON(t, alice, http.MethodPost, reactionsURL, map[string]string{"emoji": "🚀"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, string(body))
	}

	commentsURL := env.server.URL + "/api/responses/" + strconv.FormatInt(assignments[0].ID, 10) + "/comments"
	resp, body = requestJSON(t, bobClient, http.MethodPost, commentsURL, map[string]string{"content": "thanks!"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, string(body))
	}

	resp, body = requestJSON(t, alice, http.MethodDelete, env.server.URL+"/api/team-members/"+strconv.FormatInt(bob.ID, 10), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, string(body))
	}

	var remaining int64
	if err := env.db.Table("standup_comments").Count(&remaining).Error; err != nil {
		t.Fatalf("count comments: %v", err)
	}
	if remaining != 0 {
		t.Fatalf("expected bob's comments removed, got %d", remaining)
	}
}
