package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	sessionTokenBytes = 32
	defaultSessionTTL = 24 * time.Hour
)

type Service struct {
	repo   Repository
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewService(repo Repository, secret []byte, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &Service{
		repo:   repo,
		secret: secret,
		ttl:    ttl,
		now:    time.Now,
	}
}

func (s *Service) SessionTTL() time.Duration {
	return s.ttl
}

// Login checks the credentials and opens a session. The returned token is the
// only copy of the raw session secret.
func (s *Service) Login(ctx context.Context, username, password string) (*User, string, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, "", ErrInvalidCredentials
	}

	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if user.Password == nil || *user.Password == "" || user.Status != StatusActive {
		return nil, "", ErrInvalidCredentials
	}

	ok, err := ComparePassword(password, *user.Password)
	if err != nil {
		return nil, "", fmt.Errorf("compare password: %w", err)
	}
	if !ok {
		return nil, "", ErrInvalidCredentials
	}

	token, err := GenerateToken(sessionTokenBytes)
	if err != nil {
		return nil, "", err
	}

	now := s.now().UTC()
	session := Session{
		ID:        uuid.New(),
		TokenHash: hashSessionToken(s.secret, token),
		UserID:    user.ID,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}
	if err := s.repo.CreateSession(ctx, &session); err != nil {
		return nil, "", fmt.Errorf("create session: %w", err)
	}

	return user, token, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.repo.DeleteSessionByTokenHash(ctx, hashSessionToken(s.secret, token))
}

func (s *Service) CurrentUser(ctx context.Context, token string) (*User, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}

	tokenHash := hashSessionToken(s.secret, token)
	session, err := s.repo.GetSessionByTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}

	if !session.ExpiresAt.After(s.now()) {
		if err := s.repo.DeleteSessionByTokenHash(ctx, tokenHash); err != nil {
			return nil, err
		}
		return nil, ErrUnauthenticated
	}

	user, err := s.repo.GetUserByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}
	return user, nil
}

// PurgeExpiredSessions removes sessions that expired before now.
func (s *Service) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpiredSessions(ctx, s.now())
}

// EnsureAdmin creates the bootstrap admin account unless it already exists.
// It reports whether a new account was created.
func (s *Service) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return false, nil
	}

	_, err := s.repo.GetUserByUsername(ctx, username)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return false, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return false, err
	}

	user := User{
		Username: username,
		Password: &hash,
		Role:     RoleAdmin,
		Status:   StatusActive,
		Email:    username + "@example.com",
	}
	if err := s.repo.CreateUser(ctx, &user); err != nil {
		return false, fmt.Errorf("create admin: %w", err)
	}
	return true, nil
}
