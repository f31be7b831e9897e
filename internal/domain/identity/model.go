package identity

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleAdmin      = "admin"
	RoleTeamMember = "team_member"
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

type User struct {
	ID              int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Username        string    `gorm:"size:255;not null;uniqueIndex" json:"username"`
	Password        *string   `json:"-"`
	Role            string    `gorm:"type:varchar(32);not null;default:'team_member'" json:"role"`
	Status          string    `gorm:"type:varchar(16);not null;default:'inactive'" json:"status"`
	ActivationToken *string   `gorm:"size:64;uniqueIndex" json:"-"`
	Email           string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Session is the server-side half of a login. The cookie only carries the raw
// token; TokenHash is its keyed hash.
type Session struct {
	ID        uuid.UUID `gorm:"size:36;primaryKey"`
	TokenHash string    `gorm:"size:64;not null;uniqueIndex"`
	UserID    int64     `gorm:"not null;index"`
	ExpiresAt time.Time `gorm:"not null;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}
