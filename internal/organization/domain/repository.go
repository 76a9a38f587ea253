package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateOrganization(ctx context.Context, org *Organization) error
	FindByID(ctx context.Context, id snowflake.ID) (*Organization, error)
	FindBySlug(ctx context.Context, slug string) (*Organization, error)
	List(ctx context.Context) ([]Organization, error)
	UpdateFields(ctx context.Context, id snowflake.ID, fields map[string]any) error

	AddMember(ctx context.Context, member *OrganizationUser) error
	FindActiveMembership(ctx context.Context, userID snowflake.ID) (*OrganizationUser, error)
	FindMembership(ctx context.Context, orgID, userID snowflake.ID) (*OrganizationUser, error)
	ListMembers(ctx context.Context, orgID snowflake.ID) ([]OrganizationUser, error)
	UpdateMemberFields(ctx context.Context, id snowflake.ID, fields map[string]any) error
	DeactivateMembers(ctx context.Context, orgID snowflake.ID) error
}
