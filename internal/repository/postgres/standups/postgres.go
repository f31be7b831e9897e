package standups

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	standupsdomain "async-standup/internal/domain/standups"
	"async-standup/internal/domain/team"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(standupsdomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) CountStandupsByCreator(ctx context.Context, userID int64) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&standupsdomain.Standup{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PostgresRepository) CreateStandup(ctx context.Context, standup *standupsdomain.Standup) error {
	return r.db.WithContext(ctx).Create(standup).Error
}

func (r *PostgresRepository) GetStandup(ctx context.Context, id int64) (*standupsdomain.Standup, error) {
	var standup standupsdomain.Standup
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&standup).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, standupsdomain.ErrStandupNotFound
		}
		return nil, err
	}
	return &standup, nil
}

func (r *PostgresRepository) ListStandupsByCreator(ctx context.Context, userID int64, limit, offset int) ([]standupsdomain.Standup, int64, error) {
	query := r.db.WithContext(ctx).Model(&standupsdomain.Standup{}).Where("user_id = ?", userID)
	return r.page(query, limit, offset)
}

func (r *PostgresRepository) ListStandupsByAssignee(ctx context.Context, userID int64, limit, offset int) ([]standupsdomain.Standup, int64, error) {
	assigned := r.db.Table("standup_assignments").
		Select("standup_assignments.standup_id").
		Joins("join team_members on team_members.id = standup_assignments.team_member_id").
		Where("team_members.user_id = ?", userID)

	query := r.db.WithContext(ctx).Model(&standupsdomain.Standup{}).Where("id IN (?)", assigned)
	return r.page(query, limit, offset)
}

func (r *PostgresRepository) page(query *gorm.DB, limit, offset int) ([]standupsdomain.Standup, int64, error) {
	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []standupsdomain.Standup
	if err := query.
		Order("created_at desc").
		Order("id desc").
		Limit(limit).
		Offset(offset).
		Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *PostgresRepository) ExistingTeamMemberIDs(ctx context.Context, ids []int64) ([]int64, error) {
	var found []int64
	if err := r.db.WithContext(ctx).Model(&team.TeamMember{}).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return nil, err
	}
	return found, nil
}

func (r *PostgresRepository) CreateAssignments(ctx context.Context, assignments []standupsdomain.Assignment) error {
	if len(assignments) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&assignments).Error
}

func (r *PostgresRepository) GetAssignmentByToken(ctx context.Context, token string) (*standupsdomain.Assignment, error) {
	var assignment standupsdomain.Assignment
	if err := r.db.WithContext(ctx).Where("response_url = ?", token).First(&assignment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, standupsdomain.ErrAssignmentNotFound
		}
		return nil, err
	}
	return &assignment, nil
}

func (r *PostgresRepository) UpdateAssignmentResponse(ctx context.Context, id int64, response datatypes.JSON, status string) error {
	result := r.db.WithContext(ctx).Model(&standupsdomain.Assignment{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"response":   response,
			"status":     status,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return standupsdomain.ErrAssignmentNotFound
	}
	return nil
}

func (r *PostgresRepository) ListAssignments(ctx context.Context, standupID int64) ([]standupsdomain.AssignmentWithMember, error) {
	type assignmentRow struct {
		standupsdomain.Assignment
		MemberName  string `gorm:"column:member_name"`
		MemberEmail string `gorm:"column:member_email"`
	}

	var rows []assignmentRow
	if err := r.db.WithContext(ctx).
		Table("standup_assignments").
		Select("standup_assignments.*, team_members.name AS member_name, team_members.email AS member_email").
		Joins("join team_members on team_members.id = standup_assignments.team_member_id").
		Where("standup_assignments.standup_id = ?", standupID).
		Order("standup_assignments.id asc").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	assignments := make([]standupsdomain.AssignmentWithMember, 0, len(rows))
	for _, row := range rows {
		assignments = append(assignments, standupsdomain.AssignmentWithMember{
			Assignment: row.Assignment,
			TeamMember: standupsdomain.MemberSummary{
				ID:    row.TeamMemberID,
				Name:  row.MemberName,
				Email: row.MemberEmail,
			},
		})
	}
	return assignments, nil
}
