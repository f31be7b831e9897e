package team

import (
	"context"

	"async-standup/internal/domain/identity"
)

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	IsEmailTaken(ctx context.Context, email string) (bool, error)
	IsUsernameTaken(ctx context.Context, username string) (bool, error)
	CreateUser(ctx context.Context, user *identity.User) error
	CreateTeamMember(ctx context.Context, member *TeamMember) error
	GetUserByActivationToken(ctx context.Context, token string) (*identity.User, error)
	ActivateUser(ctx context.Context, userID int64, passwordHash string) error
	ActivateTeamMemberByUser(ctx context.Context, userID int64) error
	ListTeamMembers(ctx context.Context, filter ListFilter) ([]TeamMember, error)
	GetTeamMember(ctx context.Context, id int64) (*TeamMember, error)
	DeleteAssignmentsByTeamMember(ctx context.Context, teamMemberID int64) error
	DeleteUserActivity(ctx context.Context, userID int64) error
	DeleteTeamMember(ctx context.Context, id int64) error
	DeleteUser(ctx context.Context, userID int64) error
}

// Notifier delivers the activation invite for a freshly created account.
type Notifier interface {
	SendActivation(ctx context.Context, email, name, token string) error
}
