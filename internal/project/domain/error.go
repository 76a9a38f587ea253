package domain

import "errors"

var (
	ErrInvalidName     = errors.New("invalid_project_name")
	ErrInvalidKey      = errors.New("invalid_project_key")
	ErrInvalidRole     = errors.New("invalid_project_role")
	ErrProjectNotFound = errors.New("project_not_found")
	ErrKeyTaken        = errors.New("project_key_taken")
	ErrMemberNotFound  = errors.New("project_member_not_found")
	ErrMemberExists    = errors.New("project_member_already_exists")
	ErrMemberNotInOrg  = errors.New("user_not_in_organization")
)
