// Package domain contains persistence models for the issue service.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/lib/pq"
)

// IssueType classifies an issue.
type IssueType string

const (
	TypeTask  IssueType = "TASK"
	TypeBug   IssueType = "BUG"
	TypeStory IssueType = "STORY"
	TypeEpic  IssueType = "EPIC"
)

// Valid reports whether t is a known issue type.
func (t IssueType) Valid() bool {
	switch t {
	case TypeTask, TypeBug, TypeStory, TypeEpic:
		return true
	default:
		return false
	}
}

// Priority ranks an issue.
type Priority string

const (
	PriorityLow      Priority = "LOW"
	PriorityMedium   Priority = "MEDIUM"
	PriorityHigh     Priority = "HIGH"
	PriorityCritical Priority = "CRITICAL"
)

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	default:
		return false
	}
}

// Issue is a unit of work inside a project. WorkflowStatusID is the sole
// source of truth for where the issue sits in the workflow state machine.
type Issue struct {
	ID               snowflake.ID   `gorm:"primaryKey" json:"id"`
	ProjectID        snowflake.ID   `gorm:"column:project_id;not null;index:ix_issues_project;uniqueIndex:ux_issues_project_key" json:"project_id"`
	SprintID         *snowflake.ID  `gorm:"column:sprint_id;index:ix_issues_sprint" json:"sprint_id,omitempty"`
	WorkflowStatusID *snowflake.ID  `gorm:"column:workflow_status_id;index:ix_issues_status" json:"workflow_status_id,omitempty"`
	Key              string         `gorm:"type:text;not null;uniqueIndex:ux_issues_project_key" json:"key"`
	Title            string         `gorm:"type:text;not null" json:"title"`
	Description      string         `gorm:"type:text" json:"description"`
	Type             IssueType      `gorm:"type:text;not null;default:'TASK'" json:"type"`
	Priority         Priority       `gorm:"type:text;not null;default:'MEDIUM'" json:"priority"`
	AssigneeID       *snowflake.ID  `gorm:"column:assignee_id;index:ix_issues_assignee" json:"assignee_id,omitempty"`
	ReporterID       snowflake.ID   `gorm:"column:reporter_id;not null" json:"reporter_id"`
	Labels           pq.StringArray `gorm:"column:labels;type:text[]" json:"labels"`
	StoryPoints      *int           `gorm:"column:story_points" json:"story_points,omitempty"`
	DueDate          *time.Time     `gorm:"column:due_date" json:"due_date,omitempty"`
	CreatedAt        time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Issue) TableName() string { return "issues" }
