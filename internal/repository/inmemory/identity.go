package inmemory

import (
	"context"
	"strings"
	"time"

	"async-standup/internal/domain/identity"
)

type IdentityRepository struct {
	conn
}

func (r *IdentityRepository) GetUserByID(ctx context.Context, id int64) (*identity.User, error) {
	var found *identity.User
	err := r.view(func(t *tables) error {
		user, ok := t.users[id]
		if !ok {
			return identity.ErrUserNotFound
		}
		found = &user
		return nil
	})
	return found, err
}

func (r *IdentityRepository) GetUserByUsername(ctx context.Context, username string) (*identity.User, error) {
	var found *identity.User
	err := r.view(func(t *tables) error {
		for _, user := range t.users {
			if user.Username == username {
				found = &user
				return nil
			}
		}
		return identity.ErrUserNotFound
	})
	return found, err
}

func (r *IdentityRepository) CreateUser(ctx context.Context, user *identity.User) error {
	return r.update(func(t *tables) error {
		return insertUser(t, user, r.now())
	})
}

func insertUser(t *tables, user *identity.User, now time.Time) error {
	for _, existing := range t.users {
		if existing.Username == user.Username || strings.EqualFold(existing.Email, user.Email) {
			return ErrUniqueViolation
		}
		if user.ActivationToken != nil && existing.ActivationToken != nil && *existing.ActivationToken == *user.ActivationToken {
			return ErrUniqueViolation
		}
	}
	user.ID = t.nextID()
	if user.Role == "" {
		user.Role = identity.RoleTeamMember
	}
	if user.Status == "" {
		user.Status = identity.StatusInactive
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	t.users[user.ID] = *user
	return nil
}

func (r *IdentityRepository) CreateSession(ctx context.Context, session *identity.Session) error {
	return r.update(func(t *tables) error {
		if _, ok := t.sessions[session.TokenHash]; ok {
			return ErrUniqueViolation
		}
		if session.CreatedAt.IsZero() {
			session.CreatedAt = r.now()
		}
		t.sessions[session.TokenHash] = *session
		return nil
	})
}

func (r *IdentityRepository) GetSessionByTokenHash(ctx context.Context, tokenHash string) (*identity.Session, error) {
	var found *identity.Session
	err := r.view(func(t *tables) error {
		session, ok := t.sessions[tokenHash]
		if !ok {
			return identity.ErrSessionNotFound
		}
		found = &session
		return nil
	})
	return found, err
}

func (r *IdentityRepository) DeleteSessionByTokenHash(ctx context.Context, tokenHash string) error {
	return r.update(func(t *tables) error {
		delete(t.sessions, tokenHash)
		return nil
	})
}

func (r *IdentityRepository) DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error) {
	var removed int64
	err := r.update(func(t *tables) error {
		for hash, session := range t.sessions {
			if !session.ExpiresAt.After(before) {
				delete(t.sessions, hash)
				removed++
			}
		}
		return nil
	})
	return removed, err
}
