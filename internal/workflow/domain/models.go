// Package domain contains the workflow definition model: workflows, their
// statuses and the directed transition graph between statuses.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Workflow belongs to exactly one organization and owns an ordered set of
// statuses plus a set of transition edges. At most one workflow per
// organization carries is_default, enforced by a partial unique index and
// a transactional clear-then-set.
type Workflow struct {
	ID        snowflake.ID  `gorm:"primaryKey" json:"id"`
	OrgID     snowflake.ID  `gorm:"column:org_id;not null;index:ix_workflows_org" json:"org_id"`
	ProjectID *snowflake.ID `gorm:"column:project_id;uniqueIndex:ux_workflows_project" json:"project_id,omitempty"`
	Name      string        `gorm:"type:text;not null" json:"name"`
	IsDefault bool          `gorm:"column:is_default;not null;default:false" json:"is_default"`
	IsActive  bool          `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedAt time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	Statuses    []WorkflowStatus     `gorm:"foreignKey:WorkflowID;constraint:OnDelete:CASCADE" json:"statuses,omitempty"`
	Transitions []WorkflowTransition `gorm:"foreignKey:WorkflowID;constraint:OnDelete:CASCADE" json:"transitions,omitempty"`
}

// TableName sets the database table name.
func (Workflow) TableName() string { return "workflows" }

// WorkflowStatus is one kanban column. Slug and sort order are unique
// within the owning workflow; at most one status per workflow carries
// is_start and at most one carries is_terminal.
type WorkflowStatus struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	WorkflowID snowflake.ID `gorm:"column:workflow_id;not null;uniqueIndex:ux_workflow_statuses_slug;uniqueIndex:ux_workflow_statuses_order" json:"workflow_id"`
	Name       string       `gorm:"type:text;not null" json:"name"`
	Slug       string       `gorm:"type:text;not null;uniqueIndex:ux_workflow_statuses_slug" json:"slug"`
	SortOrder  int          `gorm:"column:sort_order;not null;uniqueIndex:ux_workflow_statuses_order" json:"order"`
	IsStart    bool         `gorm:"column:is_start;not null;default:false" json:"is_start"`
	IsTerminal bool         `gorm:"column:is_terminal;not null;default:false" json:"is_terminal"`
	Color      string       `gorm:"type:text" json:"color"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (WorkflowStatus) TableName() string { return "workflow_statuses" }

// WorkflowTransition is a directed edge between two statuses of the same
// workflow. Unique per (workflow, from, to); self loops are rejected at
// the service layer.
type WorkflowTransition struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	WorkflowID   snowflake.ID `gorm:"column:workflow_id;not null;uniqueIndex:ux_workflow_transitions_edge" json:"workflow_id"`
	FromStatusID snowflake.ID `gorm:"column:from_status_id;not null;uniqueIndex:ux_workflow_transitions_edge" json:"from_status_id"`
	ToStatusID   snowflake.ID `gorm:"column:to_status_id;not null;uniqueIndex:ux_workflow_transitions_edge" json:"to_status_id"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`

	FromStatus *WorkflowStatus `gorm:"foreignKey:FromStatusID;constraint:OnDelete:CASCADE" json:"from_status,omitempty"`
	ToStatus   *WorkflowStatus `gorm:"foreignKey:ToStatusID;constraint:OnDelete:CASCADE" json:"to_status,omitempty"`
}

// TableName sets the database table name.
func (WorkflowTransition) TableName() string { return "workflow_transitions" }
