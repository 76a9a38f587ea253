// Package domain contains persistence models for the organization service.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// OrganizationType classifies a tenant.
type OrganizationType string

const (
	OrgTypeCompany   OrganizationType = "COMPANY"
	OrgTypeInstitute OrganizationType = "INSTITUTE"
)

// Valid reports whether t is a known organization type.
func (t OrganizationType) Valid() bool {
	switch t {
	case OrgTypeCompany, OrgTypeInstitute:
		return true
	default:
		return false
	}
}

// Organization represents a tenant.
type Organization struct {
	ID        snowflake.ID      `gorm:"primaryKey" json:"id"`
	Name      string            `gorm:"type:text;not null" json:"name"`
	Slug      string            `gorm:"type:text;not null;uniqueIndex:ux_organizations_slug" json:"slug"`
	Type      OrganizationType  `gorm:"type:text;not null;default:'COMPANY'" json:"type"`
	Settings  datatypes.JSONMap `gorm:"column:settings" json:"settings"`
	IsActive  bool              `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Organization) TableName() string { return "organizations" }

// OrganizationUser binds a user to an organization with a role.
type OrganizationUser struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID     snowflake.ID `gorm:"column:org_id;not null;index:ix_organization_users_org" json:"org_id"`
	UserID    snowflake.ID `gorm:"column:user_id;not null;index:ix_organization_users_user" json:"user_id"`
	Role      Role         `gorm:"type:text;not null;default:'MEMBER'" json:"role"`
	IsActive  bool         `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (OrganizationUser) TableName() string { return "organization_users" }
