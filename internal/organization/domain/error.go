package domain

import "errors"

var (
	ErrInvalidName        = errors.New("invalid_organization_name")
	ErrInvalidType        = errors.New("invalid_organization_type")
	ErrInvalidRole        = errors.New("invalid_role")
	ErrInvalidUser        = errors.New("invalid_user")
	ErrOrgNotFound        = errors.New("organization_not_found")
	ErrOrgInactive        = errors.New("organization_inactive")
	ErrMembershipNotFound = errors.New("membership_not_found")
	ErrMembershipExists   = errors.New("membership_already_exists")
	ErrUserHasMembership  = errors.New("user_already_in_organization")
	ErrSlugTaken          = errors.New("organization_slug_taken")
)
