package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	// Create provisions a new tenant. Platform superusers only.
	Create(ctx context.Context, req CreateOrganizationRequest) (*Organization, error)
	Get(ctx context.Context, id snowflake.ID) (*Organization, error)
	Update(ctx context.Context, id snowflake.ID, req UpdateOrganizationRequest) (*Organization, error)
	List(ctx context.Context) ([]Organization, error)
	// SetActive toggles the tenant's active flag. Deactivation also
	// deactivates every membership in the organization.
	SetActive(ctx context.Context, id snowflake.ID, active bool) error

	AddMember(ctx context.Context, orgID snowflake.ID, req AddMemberRequest) (*OrganizationUser, error)
	ListMembers(ctx context.Context, orgID snowflake.ID) ([]OrganizationUser, error)
	UpdateMemberRole(ctx context.Context, orgID, userID snowflake.ID, role Role) (*OrganizationUser, error)
	RemoveMember(ctx context.Context, orgID, userID snowflake.ID) error

	// ResolveActor attaches the user's active membership, if any, to the
	// given base identity.
	ResolveActor(ctx context.Context, base Actor) (Actor, error)
}

type CreateOrganizationRequest struct {
	Name     string
	Type     OrganizationType
	Settings map[string]any
}

type UpdateOrganizationRequest struct {
	Name     *string
	Settings map[string]any
}

type AddMemberRequest struct {
	UserID snowflake.ID
	Role   Role
}
