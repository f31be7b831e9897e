package inmemory

import (
	"context"
	"sort"

	"async-standup/internal/domain/identity"
	"async-standup/internal/domain/social"
)

type SocialRepository struct {
	conn
}

func (r *SocialRepository) AssignmentExists(ctx context.Context, assignmentID int64) (bool, error) {
	var ok bool
	err := r.view(func(t *tables) error {
		_, ok = t.assignments[assignmentID]
		return nil
	})
	return ok, err
}

func (r *SocialRepository) FindReaction(ctx context.Context, assignmentID, userID int64, emoji string) (*social.Reaction, error) {
	var found *social.Reaction
	err := r.view(func(t *tables) error {
		for _, reaction := range t.reactions {
			if reaction.AssignmentID == assignmentID && reaction.UserID == userID && reaction.Emoji == emoji {
				found = &reaction
				return nil
			}
		}
		return social.ErrReactionNotFound
	})
	return found, err
}

func (r *SocialRepository) CreateReaction(ctx context.Context, reaction *social.Reaction) error {
	return r.update(func(t *tables) error {
		for _, existing := range t.reactions {
			if existing.AssignmentID == reaction.AssignmentID && existing.UserID == reaction.UserID && existing.Emoji == reaction.Emoji {
				return ErrUniqueViolation
			}
		}
		reaction.ID = t.nextID()
		if reaction.CreatedAt.IsZero() {
			reaction.CreatedAt = r.now()
		}
		t.reactions[reaction.ID] = *reaction
		return nil
	})
}

func (r *SocialRepository) DeleteReaction(ctx context.Context, id int64) error {
	return r.update(func(t *tables) error {
		delete(t.reactions, id)
		return nil
	})
}

func (r *SocialRepository) ListReactions(ctx context.Context, assignmentID int64) ([]social.ReactionWithAuthor, error) {
	var out []social.ReactionWithAuthor
	err := r.view(func(t *tables) error {
		for _, reaction := range t.reactions {
			if reaction.AssignmentID != assignmentID {
				continue
			}
			user, ok := t.users[reaction.UserID]
			if !ok {
				continue
			}
			out = append(out, social.ReactionWithAuthor{Reaction: reaction, Username: user.Username})
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

func (r *SocialRepository) CreateComment(ctx context.Context, comment *social.Comment) error {
	return r.update(func(t *tables) error {
		comment.ID = t.nextID()
		if comment.CreatedAt.IsZero() {
			comment.CreatedAt = r.now()
		}
		t.comments[comment.ID] = *comment
		return nil
	})
}

func (r *SocialRepository) GetAuthor(ctx context.Context, userID int64) (*social.Author, error) {
	var found *social.Author
	err := r.view(func(t *tables) error {
		user, ok := t.users[userID]
		if !ok {
			return identity.ErrUserNotFound
		}
		found = &social.Author{ID: user.ID, Username: user.Username}
		return nil
	})
	return found, err
}

func (r *SocialRepository) ListComments(ctx context.Context, assignmentID int64) ([]social.CommentWithAuthor, error) {
	var out []social.CommentWithAuthor
	err := r.view(func(t *tables) error {
		for _, comment := range t.comments {
			if comment.AssignmentID != assignmentID {
				continue
			}
			user, ok := t.users[comment.UserID]
			if !ok {
				continue
			}
			out = append(out, social.CommentWithAuthor{
				Comment: comment,
				User:    social.Author{ID: user.ID, Username: user.Username},
			})
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, err
}
