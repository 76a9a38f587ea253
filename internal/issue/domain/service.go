package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"

	orgdomain "github.com/CCxPL/task-management-system/internal/organization/domain"
)

type Service interface {
	Create(ctx context.Context, actor orgdomain.Actor, req CreateIssueRequest) (*Issue, error)
	Get(ctx context.Context, actor orgdomain.Actor, id snowflake.ID) (*Issue, error)
	List(ctx context.Context, actor orgdomain.Actor, filter ListFilter) ([]*Issue, error)
	Update(ctx context.Context, actor orgdomain.Actor, id snowflake.ID, req UpdateIssueRequest) (*Issue, error)
	Delete(ctx context.Context, actor orgdomain.Actor, id snowflake.ID) error

	// UpdateStatus validates and applies a status change against the
	// issue's workflow transition graph.
	UpdateStatus(ctx context.Context, actor orgdomain.Actor, issueID snowflake.ID, requestedToken string) (*StatusChangeResult, error)

	// Board groups a project's issues into kanban columns following the
	// resolved workflow's status order.
	Board(ctx context.Context, actor orgdomain.Actor, projectID snowflake.ID) (*BoardView, error)
}

type CreateIssueRequest struct {
	ProjectID   snowflake.ID
	Title       string
	Description string
	Type        IssueType
	Priority    Priority
	AssigneeID  *snowflake.ID
	SprintID    *snowflake.ID
	Labels      []string
	StoryPoints *int
	DueDate     *time.Time
}

type UpdateIssueRequest struct {
	Title       *string
	Description *string
	Type        *IssueType
	Priority    *Priority
	AssigneeID  *snowflake.ID
	SprintID    *snowflake.ID
	Labels      *[]string
	StoryPoints *int
	DueDate     *time.Time
}

// StatusChangeResult reports a completed (or idempotent no-op) status
// change.
type StatusChangeResult struct {
	IssueID    snowflake.ID `json:"issue_id"`
	IssueKey   string       `json:"issue_key"`
	FromStatus string       `json:"from_status"`
	ToStatus   string       `json:"to_status"`
	Status     string       `json:"status"`
	Message    string       `json:"message"`
}

// BoardColumn is one kanban column with its issues.
type BoardColumn struct {
	StatusID snowflake.ID `json:"status_id"`
	Name     string       `json:"name"`
	Slug     string       `json:"slug"`
	Token    string       `json:"status"`
	Color    string       `json:"color"`
	Order    int          `json:"order"`
	Issues   []*Issue     `json:"issues"`
}

// BoardView is the kanban representation of a project.
type BoardView struct {
	ProjectID  snowflake.ID  `json:"project_id"`
	WorkflowID snowflake.ID  `json:"workflow_id"`
	Columns    []BoardColumn `json:"columns"`
}
