// Package domain contains persistence models for the project service.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Project belongs to exactly one organization.
type Project struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID       snowflake.ID `gorm:"column:org_id;not null;index:ix_projects_org;uniqueIndex:ux_projects_org_key" json:"org_id"`
	Name        string       `gorm:"type:text;not null" json:"name"`
	Key         string       `gorm:"type:text;not null;uniqueIndex:ux_projects_org_key" json:"key"`
	Description string       `gorm:"type:text" json:"description"`
	IsActive    bool         `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Project) TableName() string { return "projects" }

// ProjectRole is the closed set of per-project membership roles.
type ProjectRole string

const (
	ProjectRoleAdmin  ProjectRole = "ADMIN"
	ProjectRoleMember ProjectRole = "MEMBER"
)

// Valid reports whether r is a known project role.
func (r ProjectRole) Valid() bool {
	return r == ProjectRoleAdmin || r == ProjectRoleMember
}

// ProjectMember binds a user to a project.
type ProjectMember struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	ProjectID snowflake.ID `gorm:"column:project_id;not null;uniqueIndex:ux_project_members_project_user" json:"project_id"`
	UserID    snowflake.ID `gorm:"column:user_id;not null;uniqueIndex:ux_project_members_project_user" json:"user_id"`
	Role      ProjectRole  `gorm:"type:text;not null;default:'MEMBER'" json:"role"`
	IsActive  bool         `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (ProjectMember) TableName() string { return "project_members" }
