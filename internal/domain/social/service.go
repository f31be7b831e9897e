package social

import (
	"context"
	"errors"
	"strings"
	"time"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// ToggleReaction removes the user's emoji on the assignment if present and adds
// it otherwise.
func (s *Service) ToggleReaction(ctx context.Context, assignmentID, userID int64, emoji string) (*ToggleResult, error) {
	emoji = strings.TrimSpace(emoji)
	if emoji == "" {
		return nil, ErrEmptyEmoji
	}
	if err := s.ensureAssignment(ctx, assignmentID); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindReaction(ctx, assignmentID, userID, emoji)
	switch {
	case err == nil:
		if err := s.repo.DeleteReaction(ctx, existing.ID); err != nil {
			return nil, err
		}
		return &ToggleResult{Added: false, Reaction: existing}, nil
	case !errors.Is(err, ErrReactionNotFound):
		return nil, err
	}

	reaction := Reaction{
		AssignmentID: assignmentID,
		UserID:       userID,
		Emoji:        emoji,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.repo.CreateReaction(ctx, &reaction); err != nil {
		return nil, err
	}
	return &ToggleResult{Added: true, Reaction: &reaction}, nil
}

func (s *Service) ListReactions(ctx context.Context, assignmentID int64) (ReactionGroups, error) {
	if err := s.ensureAssignment(ctx, assignmentID); err != nil {
		return nil, err
	}

	reactions, err := s.repo.ListReactions(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	groups := ReactionGroups{}
	for _, reaction := range reactions {
		groups[reaction.Emoji] = append(groups[reaction.Emoji], Author{
			ID:       reaction.UserID,
			Username: reaction.Username,
		})
	}
	return groups, nil
}

func (s *Service) AddComment(ctx context.Context, assignmentID, userID int64, content string) (*CommentWithAuthor, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}
	if err := s.ensureAssignment(ctx, assignmentID); err != nil {
		return nil, err
	}

	author, err := s.repo.GetAuthor(ctx, userID)
	if err != nil {
		return nil, err
	}

	comment := Comment{
		AssignmentID: assignmentID,
		UserID:       userID,
		Content:      content,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.repo.CreateComment(ctx, &comment); err != nil {
		return nil, err
	}
	return &CommentWithAuthor{Comment: comment, User: *author}, nil
}

func (s *Service) ListComments(ctx context.Context, assignmentID int64) ([]CommentWithAuthor, error) {
	if err := s.ensureAssignment(ctx, assignmentID); err != nil {
		return nil, err
	}
	comments, err := s.repo.ListComments(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []CommentWithAuthor{}
	}
	return comments, nil
}

func (s *Service) ensureAssignment(ctx context.Context, assignmentID int64) error {
	ok, err := s.repo.AssignmentExists(ctx, assignmentID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrAssignmentNotFound
	}
	return nil
}
