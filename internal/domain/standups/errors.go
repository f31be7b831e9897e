package standups

import "errors"

var (
	ErrStandupNotFound    = errors.New("standup not found")
	ErrAssignmentNotFound = errors.New("assignment not found")
	ErrUnknownTeamMember  = errors.New("unknown team member")
	ErrInvalidResponse    = errors.New("response is required")
)
