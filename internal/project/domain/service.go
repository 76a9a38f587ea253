package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	Create(ctx context.Context, orgID snowflake.ID, req CreateProjectRequest) (*Project, error)
	Get(ctx context.Context, orgID, id snowflake.ID) (*Project, error)
	List(ctx context.Context, orgID snowflake.ID) ([]Project, error)
	Update(ctx context.Context, orgID, id snowflake.ID, req UpdateProjectRequest) (*Project, error)

	AddMember(ctx context.Context, orgID, projectID snowflake.ID, req AddMemberRequest) (*ProjectMember, error)
	ListMembers(ctx context.Context, orgID, projectID snowflake.ID) ([]ProjectMember, error)
	RemoveMember(ctx context.Context, orgID, projectID, userID snowflake.ID) error
	// IsProjectAdmin reports whether the user is a project member with the
	// ADMIN role.
	IsProjectAdmin(ctx context.Context, projectID, userID snowflake.ID) (bool, error)
}

type CreateProjectRequest struct {
	Name        string
	Key         string
	Description string
}

type UpdateProjectRequest struct {
	Name        *string
	Description *string
	IsActive    *bool
}

type AddMemberRequest struct {
	UserID snowflake.ID
	Role   ProjectRole
}
