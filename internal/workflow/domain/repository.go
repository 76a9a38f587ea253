package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateWorkflow(ctx context.Context, workflow *Workflow) error
	FindWorkflowByID(ctx context.Context, orgID, id snowflake.ID) (*Workflow, error)
	FindWorkflowByProject(ctx context.Context, orgID, projectID snowflake.ID) (*Workflow, error)
	FindDefaultWorkflow(ctx context.Context, orgID snowflake.ID) (*Workflow, error)
	ListWorkflows(ctx context.Context, orgID snowflake.ID) ([]Workflow, error)
	UpdateWorkflowFields(ctx context.Context, orgID, id snowflake.ID, fields map[string]any) error
	DeleteWorkflow(ctx context.Context, orgID, id snowflake.ID) error
	CountIssuesByWorkflow(ctx context.Context, workflowID snowflake.ID) (int64, error)
	// ClearDefaultExcept sets is_default=false on every other workflow in
	// the organization.
	ClearDefaultExcept(ctx context.Context, orgID, keepID snowflake.ID) error
	// DetachProjectExcept unbinds any other workflow currently bound to
	// the project.
	DetachProjectExcept(ctx context.Context, projectID, keepID snowflake.ID) error

	CreateStatus(ctx context.Context, status *WorkflowStatus) error
	FindStatusByID(ctx context.Context, id snowflake.ID) (*WorkflowStatus, error)
	FindStatusBySlug(ctx context.Context, workflowID snowflake.ID, slug string) (*WorkflowStatus, error)
	ListStatuses(ctx context.Context, workflowID snowflake.ID) ([]WorkflowStatus, error)
	ListStatusSlugs(ctx context.Context, workflowID snowflake.ID) ([]string, error)
	UpdateStatusFields(ctx context.Context, id snowflake.ID, fields map[string]any) error
	DeleteStatus(ctx context.Context, id snowflake.ID) error
	// ClearFlagExcept sets the named boolean flag column to false on every
	// other status in the workflow. flag must be "is_start" or
	// "is_terminal".
	ClearFlagExcept(ctx context.Context, workflowID, keepID snowflake.ID, flag string) error
	// ShiftOrders moves the given statuses into a temporary order band by
	// adding offset to their current sort order.
	ShiftOrders(ctx context.Context, workflowID snowflake.ID, ids []snowflake.ID, offset int) error
	SetOrder(ctx context.Context, id snowflake.ID, order int) error
	MaxOrder(ctx context.Context, workflowID snowflake.ID) (int, error)
	CountIssuesByStatus(ctx context.Context, statusID snowflake.ID) (int64, error)

	CreateTransition(ctx context.Context, transition *WorkflowTransition) error
	FindTransition(ctx context.Context, workflowID, fromID, toID snowflake.ID) (*WorkflowTransition, error)
	FindTransitionByID(ctx context.Context, workflowID, id snowflake.ID) (*WorkflowTransition, error)
	ListTransitions(ctx context.Context, workflowID snowflake.ID) ([]WorkflowTransition, error)
	ListOutgoing(ctx context.Context, workflowID, fromID snowflake.ID) ([]WorkflowTransition, error)
	DeleteTransition(ctx context.Context, id snowflake.ID) error
	DeleteTransitionsByStatus(ctx context.Context, statusID snowflake.ID) error
}
