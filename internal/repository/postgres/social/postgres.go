package social

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"async-standup/internal/domain/identity"
	socialdomain "async-standup/internal/domain/social"
	"async-standup/internal/domain/standups"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) AssignmentExists(ctx context.Context, assignmentID int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&standups.Assignment{}).Where("id = ?", assignmentID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresRepository) FindReaction(ctx context.Context, assignmentID, userID int64, emoji string) (*socialdomain.Reaction, error) {
	var reaction socialdomain.Reaction
	if err := r.db.WithContext(ctx).
		Where("assignment_id = ? AND user_id = ? AND emoji = ?", assignmentID, userID, emoji).
		First(&reaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, socialdomain.ErrReactionNotFound
		}
		return nil, err
	}
	return &reaction, nil
}

func (r *PostgresRepository) CreateReaction(ctx context.Context, reaction *socialdomain.Reaction) error {
	return r.db.WithContext(ctx).Create(reaction).Error
}

func (r *PostgresRepository) DeleteReaction(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&socialdomain.Reaction{}).Error
}

func (r *PostgresRepository) ListReactions(ctx context.Context, assignmentID int64) ([]socialdomain.ReactionWithAuthor, error) {
	var rows []socialdomain.ReactionWithAuthor
	if err := r.db.WithContext(ctx).
		Table("standup_reactions").
		Select("standup_reactions.*, users.username").
		Joins("join users on users.id = standup_reactions.user_id").
		Where("standup_reactions.assignment_id = ?", assignmentID).
		Order("standup_reactions.id asc").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *PostgresRepository) CreateComment(ctx context.Context, comment *socialdomain.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *PostgresRepository) GetAuthor(ctx context.Context, userID int64) (*socialdomain.Author, error) {
	var user identity.User
	if err := r.db.WithContext(ctx).Select("id", "username").Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, identity.ErrUserNotFound
		}
		return nil, err
	}
	return &socialdomain.Author{ID: user.ID, Username: user.Username}, nil
}

func (r *PostgresRepository) ListComments(ctx context.Context, assignmentID int64) ([]socialdomain.CommentWithAuthor, error) {
	type commentRow struct {
		socialdomain.Comment
		Username string `gorm:"column:username"`
	}

	var rows []commentRow
	if err := r.db.WithContext(ctx).
		Table("standup_comments").
		Select("standup_comments.*, users.username").
		Joins("join users on users.id = standup_comments.user_id").
		Where("standup_comments.assignment_id = ?", assignmentID).
		Order("standup_comments.created_at desc").
		Order("standup_comments.id desc").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	comments := make([]socialdomain.CommentWithAuthor, 0, len(rows))
	for _, row := range rows {
		comments = append(comments, socialdomain.CommentWithAuthor{
			Comment: row.Comment,
			User:    socialdomain.Author{ID: row.UserID, Username: row.Username},
		})
	}
	return comments, nil
}
