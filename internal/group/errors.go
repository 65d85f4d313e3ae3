package group

import "errors"

var (
	ErrInvalidGroupID = errors.New("invalid group id")

	ErrNotMember = errors.New("user is not a member of the group")
)
