package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListFilter struct {
	ProjectID  snowflake.ID
	SprintID   *snowflake.ID
	AssigneeID *snowflake.ID
	Type       *IssueType
	Priority   *Priority
	Limit      int
	AfterID    snowflake.ID
}

type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, issue *Issue) error
	FindByID(ctx context.Context, id snowflake.ID) (*Issue, error)
	// FindByIDForUpdate loads the issue with a row lock. Must run inside
	// a transaction.
	FindByIDForUpdate(ctx context.Context, id snowflake.ID) (*Issue, error)
	List(ctx context.Context, filter ListFilter) ([]*Issue, error)
	ListByProject(ctx context.Context, projectID snowflake.ID) ([]*Issue, error)
	CountByProject(ctx context.Context, projectID snowflake.ID) (int64, error)
	UpdateFields(ctx context.Context, id snowflake.ID, fields map[string]any) error
	// SetWorkflowStatus persists only the workflow status reference.
	SetWorkflowStatus(ctx context.Context, id snowflake.ID, statusID snowflake.ID) error
	Delete(ctx context.Context, id snowflake.ID) error
}
