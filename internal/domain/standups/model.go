package standups

import (
	"time"

	"gorm.io/datatypes"
)

const (
	StatusDraft = "draft"

	AssignmentPending   = "pending"
	AssignmentCompleted = "completed"

	DefaultPageSize = 10
)

type Standup struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Identifier  string    `gorm:"size:32;not null;uniqueIndex" json:"identifier"`
	Description *string   `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UserID      int64     `gorm:"not null;index" json:"userId"`
	Status      string    `gorm:"type:varchar(16);not null;default:'draft'" json:"status"`
}

// Assignment pairs one team member with one standup. ResponseURL is the
// capability token used to submit and edit the response.
type Assignment struct {
	ID           int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	StandupID    int64          `gorm:"not null;index" json:"standupId"`
	TeamMemberID int64          `gorm:"not null;index" json:"teamMemberId"`
	ResponseURL  string         `gorm:"column:response_url;size:64;not null;uniqueIndex" json:"responseUrl"`
	Status       string         `gorm:"type:varchar(16);not null;default:'pending'" json:"status"`
	Response     datatypes.JSON `json:"response"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Assignment) TableName() string {
	return "standup_assignments"
}

type MemberSummary struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type AssignmentWithMember struct {
	Assignment
	TeamMember MemberSummary `json:"teamMember"`
}

type ResponsePayload struct {
	Response string `json:"response"`
}

type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

type StandupPage struct {
	Items      []Standup  `json:"items"`
	Pagination Pagination `json:"pagination"`
}
