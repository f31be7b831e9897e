package social

import "errors"

var (
	ErrAssignmentNotFound = errors.New("assignment not found")
	ErrReactionNotFound   = errors.New("reaction not found")
	ErrEmptyEmoji         = errors.New("emoji is required")
	ErrEmptyContent       = errors.New("comment content is required")
)
