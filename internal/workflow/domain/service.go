package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	// Create provisions a new workflow together with its default statuses
	// and a fully connected transition graph, in one transaction.
	Create(ctx context.Context, orgID snowflake.ID, req CreateWorkflowRequest) (*ResolvedWorkflow, error)
	Get(ctx context.Context, orgID, id snowflake.ID) (*ResolvedWorkflow, error)
	List(ctx context.Context, orgID snowflake.ID) ([]Workflow, error)
	Update(ctx context.Context, orgID, id snowflake.ID, req UpdateWorkflowRequest) (*Workflow, error)
	// Delete removes a workflow with its statuses and transitions. The
	// organization default and workflows whose statuses are referenced by
	// issues cannot be deleted.
	Delete(ctx context.Context, orgID, id snowflake.ID) error

	AddStatus(ctx context.Context, orgID, workflowID snowflake.ID, req AddStatusRequest) (*WorkflowStatus, error)
	UpdateStatus(ctx context.Context, orgID, workflowID, statusID snowflake.ID, req UpdateStatusRequest) (*WorkflowStatus, error)
	DeleteStatus(ctx context.Context, orgID, workflowID, statusID snowflake.ID) error
	// Reorder assigns 1-based sort order following the given permutation
	// of the workflow's status ids.
	Reorder(ctx context.Context, orgID, workflowID snowflake.ID, statusIDs []snowflake.ID) ([]WorkflowStatus, error)

	AddTransition(ctx context.Context, orgID, workflowID, fromID, toID snowflake.ID) (*WorkflowTransition, error)
	DeleteTransition(ctx context.Context, orgID, workflowID, transitionID snowflake.ID) error
	// AutoCreateTransitions fully connects the status graph and returns
	// how many edges were newly created.
	AutoCreateTransitions(ctx context.Context, orgID, workflowID snowflake.ID) (int, error)

	SetDefault(ctx context.Context, orgID, workflowID snowflake.ID) error
	AssignToProject(ctx context.Context, orgID, workflowID, projectID snowflake.ID) error

	// Resolve determines the workflow applicable to a project: the
	// project-bound workflow if active, else the organization default,
	// else ErrWorkflowNotConfigured.
	Resolve(ctx context.Context, orgID, projectID snowflake.ID) (*ResolvedWorkflow, error)
}

type CreateWorkflowRequest struct {
	Name         string
	ProjectID    *snowflake.ID
	SetAsDefault bool
}

type UpdateWorkflowRequest struct {
	Name     *string
	IsActive *bool
}

type AddStatusRequest struct {
	Name       string
	Order      *int
	IsStart    *bool
	IsTerminal *bool
	Color      string
}

type UpdateStatusRequest struct {
	Name       *string
	IsStart    *bool
	IsTerminal *bool
	Color      *string
}

// ResolvedWorkflow is a workflow with its ordered statuses and transition
// edges loaded.
type ResolvedWorkflow struct {
	Workflow    Workflow             `json:"workflow"`
	Statuses    []WorkflowStatus     `json:"statuses"`
	Transitions []WorkflowTransition `json:"transitions"`
}
