package team

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"async-standup/internal/domain/identity"
	"async-standup/internal/domain/social"
	"async-standup/internal/domain/standups"
	teamdomain "async-standup/internal/domain/team"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(teamdomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) IsEmailTaken(ctx context.Context, email string) (bool, error) {
	email = strings.ToLower(email)

	var users int64
	if err := r.db.WithContext(ctx).Model(&identity.User{}).Where("LOWER(email) = ?", email).Count(&users).Error; err != nil {
		return false, err
	}
	if users > 0 {
		return true, nil
	}

	var members int64
	if err := r.db.WithContext(ctx).Model(&teamdomain.TeamMember{}).Where("LOWER(email) = ?", email).Count(&members).Error; err != nil {
		return false, err
	}
	return members > 0, nil
}

func (r *PostgresRepository) IsUsernameTaken(ctx context.Context, username string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&identity.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresRepository) CreateUser(ctx context.Context, user *identity.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *PostgresRepository) CreateTeamMember(ctx context.Context, member *teamdomain.TeamMember) error {
	return r.db.WithContext(ctx).Create(member).Error
}

func (r *PostgresRepository) GetUserByActivationToken(ctx context.Context, token string) (*identity.User, error) {
	var user identity.User
	if err := r.db.WithContext(ctx).Where("activation_token = ?", token).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, teamdomain.ErrInvalidOrExpiredToken
		}
		return nil, err
	}
	return &user, nil
}

func (r *PostgresRepository) ActivateUser(ctx context.Context, userID int64, passwordHash string) error {
	return r.db.WithContext(ctx).Model(&identity.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"password":         passwordHash,
			"status":           identity.StatusActive,
			"activation_token": nil,
		}).Error
}

func (r *PostgresRepository) ActivateTeamMemberByUser(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).Model(&teamdomain.TeamMember{}).
		Where("user_id = ?", userID).
		Update("active", true).Error
}

func (r *PostgresRepository) ListTeamMembers(ctx context.Context, filter teamdomain.ListFilter) ([]teamdomain.TeamMember, error) {
	query := r.db.WithContext(ctx).Model(&teamdomain.TeamMember{})
	if filter.ExcludeStandupID != nil {
		assigned := r.db.Model(&standups.Assignment{}).
			Select("team_member_id").
			Where("standup_id = ?", *filter.ExcludeStandupID)
		query = query.Where("id NOT IN (?)", assigned)
	}

	var members []teamdomain.TeamMember
	if err := query.Order("name asc").Order("id asc").Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

func (r *PostgresRepository) GetTeamMember(ctx context.Context, id int64) (*teamdomain.TeamMember, error) {
	var member teamdomain.TeamMember
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, teamdomain.ErrTeamMemberNotFound
		}
		return nil, err
	}
	return &member, nil
}

func (r *PostgresRepository) DeleteAssignmentsByTeamMember(ctx context.Context, teamMemberID int64) error {
	db := r.db.WithContext(ctx)
	assignmentIDs := r.db.Model(&standups.Assignment{}).
		Select("id").
		Where("team_member_id = ?", teamMemberID)

	if err := db.Where("assignment_id IN (?)", assignmentIDs).Delete(&social.Reaction{}).Error; err != nil {
		return err
	}
	if err := db.Where("assignment_id IN (?)", assignmentIDs).Delete(&social.Comment{}).Error; err != nil {
		return err
	}
	return db.Where("team_member_id = ?", teamMemberID).Delete(&standups.Assignment{}).Error
}

func (r *PostgresRepository) DeleteUserActivity(ctx context.Context, userID int64) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("user_id = ?", userID).Delete(&identity.Session{}).Error; err != nil {
		return err
	}
	if err := db.Where("user_id = ?", userID).Delete(&social.Reaction{}).Error; err != nil {
		return err
	}
	return db.Where("user_id = ?", userID).Delete(&social.Comment{}).Error
}

func (r *PostgresRepository) DeleteTeamMember(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&teamdomain.TeamMember{}).Error
}

func (r *PostgresRepository) DeleteUser(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).Where("id = ?", userID).Delete(&identity.User{}).Error
}
