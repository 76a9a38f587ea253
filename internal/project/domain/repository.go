package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, project *Project) error
	FindByID(ctx context.Context, orgID, id snowflake.ID) (*Project, error)
	// FindByIDUnscoped looks a project up without tenant scoping. Callers
	// must apply their own organization check on the result.
	FindByIDUnscoped(ctx context.Context, id snowflake.ID) (*Project, error)
	List(ctx context.Context, orgID snowflake.ID) ([]Project, error)
	UpdateFields(ctx context.Context, orgID, id snowflake.ID, fields map[string]any) error

	AddMember(ctx context.Context, member *ProjectMember) error
	FindMember(ctx context.Context, projectID, userID snowflake.ID) (*ProjectMember, error)
	FindMemberAny(ctx context.Context, projectID, userID snowflake.ID) (*ProjectMember, error)
	ListMembers(ctx context.Context, projectID snowflake.ID) ([]ProjectMember, error)
	UpdateMemberFields(ctx context.Context, id snowflake.ID, fields map[string]any) error
	RemoveMember(ctx context.Context, projectID, userID snowflake.ID) error
}
