package team

import "errors"

var (
	ErrInvalidMember         = errors.New("invalid team member")
	ErrDuplicateEmail        = errors.New("email already registered")
	ErrTeamMemberNotFound    = errors.New("team member not found")
	ErrInvalidOrExpiredToken = errors.New("invalid or expired activation token")
	ErrPasswordTooShort      = errors.New("password too short")
	ErrUsernameExhausted     = errors.New("username generation failed")
)
