package team

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"async-standup/internal/domain/identity"
	"async-standup/pkg/logger"
)

const (
	activationTokenBytes = 32
	usernameSuffixBytes  = 2
	usernameAttempts     = 10
	minPasswordLength    = 6
)

type Service struct {
	repo     Repository
	notifier Notifier
	log      logger.Logger
}

func NewService(repo Repository, notifier Notifier, log logger.Logger) *Service {
	return &Service{repo: repo, notifier: notifier, log: log}
}

// CreateTeamMember invites a new member: an inactive user plus a dormant team
// member row, followed by the activation mail. A failed send is logged and the
// member is still returned.
func (s *Service) CreateTeamMember(ctx context.Context, name, email string) (*TeamMember, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidMember)
	}
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}

	token, err := identity.GenerateToken(activationTokenBytes)
	if err != nil {
		return nil, err
	}

	var result TeamMember
	err = s.repo.Transaction(ctx, func(tx Repository) error {
		taken, err := tx.IsEmailTaken(ctx, email)
		if err != nil {
			return err
		}
		if taken {
			return ErrDuplicateEmail
		}

		username, err := generateUniqueUsername(ctx, tx, name)
		if err != nil {
			return err
		}

		user := identity.User{
			Username:        username,
			Role:            identity.RoleTeamMember,
			Status:          identity.StatusInactive,
			ActivationToken: &token,
			Email:           email,
		}
		if err := tx.CreateUser(ctx, &user); err != nil {
			return err
		}

		member := TeamMember{
			Name:   name,
			Email:  email,
			Active: false,
			UserID: user.ID,
		}
		if err := tx.CreateTeamMember(ctx, &member); err != nil {
			return err
		}

		result = member
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		if err := s.notifier.SendActivation(ctx, result.Email, result.Name, token); err != nil {
			s.log.InternalError("team.create: activation email failed", err, "team_member_id", result.ID, "email", result.Email)
		}
	}

	return &result, nil
}

// ActivateAccount consumes a one-time activation token and sets the password.
func (s *Service) ActivateAccount(ctx context.Context, token, password string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrInvalidOrExpiredToken
	}
	if len(password) < minPasswordLength {
		return ErrPasswordTooShort
	}

	hash, err := identity.HashPassword(password)
	if err != nil {
		return err
	}

	return s.repo.Transaction(ctx, func(tx Repository) error {
		user, err := tx.GetUserByActivationToken(ctx, token)
		if err != nil {
			return err
		}
		if err := tx.ActivateUser(ctx, user.ID, hash); err != nil {
			return err
		}
		return tx.ActivateTeamMemberByUser(ctx, user.ID)
	})
}

func (s *Service) ListTeamMembers(ctx context.Context, filter ListFilter) ([]TeamMember, error) {
	return s.repo.ListTeamMembers(ctx, filter)
}

// DeleteTeamMember removes the member, everything hanging off its assignments
// and the backing user as one unit.
func (s *Service) DeleteTeamMember(ctx context.Context, id int64) error {
	return s.repo.Transaction(ctx, func(tx Repository) error {
		member, err := tx.GetTeamMember(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.DeleteAssignmentsByTeamMember(ctx, member.ID); err != nil {
			return err
		}
		if err := tx.DeleteUserActivity(ctx, member.UserID); err != nil {
			return err
		}
		if err := tx.DeleteTeamMember(ctx, member.ID); err != nil {
			return err
		}
		return tx.DeleteUser(ctx, member.UserID)
	})
}

func normalizeEmail(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("%w: email is required", ErrInvalidMember)
	}
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value {
		return "", fmt.Errorf("%w: invalid email", ErrInvalidMember)
	}
	return strings.ToLower(addr.Address), nil
}

func generateUniqueUsername(ctx context.Context, repo Repository, name string) (string, error) {
	base := slugify(name)
	for i := 0; i < usernameAttempts; i++ {
		suffix, err := identity.GenerateToken(usernameSuffixBytes)
		if err != nil {
			return "", err
		}
		candidate := base + "-" + suffix
		taken, err := repo.IsUsernameTaken(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", ErrUsernameExhausted
}

func slugify(name string) string {
	var builder strings.Builder
	builder.Grow(len(name))

	dash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			builder.WriteRune(r)
			dash = false
		default:
			if builder.Len() > 0 && !dash {
				builder.WriteByte('-')
				dash = true
			}
		}
	}

	slug := strings.TrimSuffix(builder.String(), "-")
	if slug == "" {
		return "member"
	}
	return slug
}

// IsValidation reports whether err is a caller input problem.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidMember) || errors.Is(err, ErrPasswordTooShort)
}
