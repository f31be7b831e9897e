package social

import "time"

type Reaction struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	AssignmentID int64     `gorm:"not null;uniqueIndex:idx_standup_reactions_unique,priority:1" json:"assignmentId"`
	UserID       int64     `gorm:"not null;uniqueIndex:idx_standup_reactions_unique,priority:2;index" json:"userId"`
	Emoji        string    `gorm:"size:64;not null;uniqueIndex:idx_standup_reactions_unique,priority:3" json:"emoji"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (Reaction) TableName() string {
	return "standup_reactions"
}

type Comment struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	AssignmentID int64     `gorm:"not null;index" json:"assignmentId"`
	UserID       int64     `gorm:"not null;index" json:"userId"`
	Content      string    `gorm:"type:text;not null" json:"content"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (Comment) TableName() string {
	return "standup_comments"
}

type Author struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type CommentWithAuthor struct {
	Comment
	User Author `json:"user"`
}

type ReactionWithAuthor struct {
	Reaction
	Username string
}

// ReactionGroups maps an emoji to the users that reacted with it.
type ReactionGroups map[string][]Author

type ToggleResult struct {
	Added    bool
	Reaction *Reaction
}
