package social

import "context"

type Repository interface {
	AssignmentExists(ctx context.Context, assignmentID int64) (bool, error)
	FindReaction(ctx context.Context, assignmentID, userID int64, emoji string) (*Reaction, error)
	CreateReaction(ctx context.Context, reaction *Reaction) error
	DeleteReaction(ctx context.Context, id int64) error
	ListReactions(ctx context.Context, assignmentID int64) ([]ReactionWithAuthor, error)
	CreateComment(ctx context.Context, comment *Comment) error
	GetAuthor(ctx context.Context, userID int64) (*Author, error)
	ListComments(ctx context.Context, assignmentID int64) ([]CommentWithAuthor, error)
}
