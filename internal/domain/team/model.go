package team

import "time"

type TeamMember struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Email     string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Active    bool      `gorm:"not null;default:false" json:"active"`
	UserID    int64     `gorm:"not null;uniqueIndex" json:"userId"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

type ListFilter struct {
	// ExcludeStandupID drops members that already hold an assignment for the standup.
	ExcludeStandupID *int64
}
