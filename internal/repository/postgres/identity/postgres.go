package identity

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	identitydomain "async-standup/internal/domain/identity"
)

// PostgresRepository stores users and sessions. Queries stay within the SQL
// shared by the postgres and mysql gorm drivers.
type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetUserByID(ctx context.Context, id int64) (*identitydomain.User, error) {
	var user identitydomain.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, identitydomain.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *PostgresRepository) GetUserByUsername(ctx context.Context, username string) (*identitydomain.User, error) {
	var user identitydomain.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, identitydomain.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *PostgresRepository) CreateUser(ctx context.Context, user *identitydomain.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *PostgresRepository) CreateSession(ctx context.Context, session *identitydomain.Session) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *PostgresRepository) GetSessionByTokenHash(ctx context.Context, tokenHash string) (*identitydomain.Session, error) {
	var session identitydomain.Session
	if err := r.db.WithContext(ctx).Where("token_hash = ?", tokenHash).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, identitydomain.ErrSessionNotFound
		}
		return nil, err
	}
	return &session, nil
}

func (r *PostgresRepository) DeleteSessionByTokenHash(ctx context.Context, tokenHash string) error {
	return r.db.WithContext(ctx).Where("token_hash = ?", tokenHash).Delete(&identitydomain.Session{}).Error
}

func (r *PostgresRepository) DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("expires_at <= ?", before).Delete(&identitydomain.Session{})
	return result.RowsAffected, result.Error
}
