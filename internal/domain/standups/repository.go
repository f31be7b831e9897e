package standups

import (
	"context"

	"gorm.io/datatypes"
)

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	CountStandupsByCreator(ctx context.Context, userID int64) (int64, error)
	CreateStandup(ctx context.Context, standup *Standup) error
	GetStandup(ctx context.Context, id int64) (*Standup, error)
	ListStandupsByCreator(ctx context.Context, userID int64, limit, offset int) ([]Standup, int64, error)
	ListStandupsByAssignee(ctx context.Context, userID int64, limit, offset int) ([]Standup, int64, error)
	ExistingTeamMemberIDs(ctx context.Context, ids []int64) ([]int64, error)
	CreateAssignments(ctx context.Context, assignments []Assignment) error
	GetAssignmentByToken(ctx context.Context, token string) (*Assignment, error)
	UpdateAssignmentResponse(ctx context.Context, id int64, response datatypes.JSON, status string) error
	ListAssignments(ctx context.Context, standupID int64) ([]AssignmentWithMember, error)
}
