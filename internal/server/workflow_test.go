package server

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	orgdomain "github.com/CCxPL/task-management-system/internal/organization/domain"
	workflowdomain "github.com/CCxPL/task-management-system/internal/workflow/domain"
)

type fakeWorkflowService struct {
	reorderCalls int
	lastOrgID    snowflake.ID
	lastID       snowflake.ID
	lastOrder    []snowflake.ID
}

func (f *fakeWorkflowService) Create(ctx context.Context, orgID snowflake.ID, req workflowdomain.CreateWorkflowRequest) (*workflowdomain.ResolvedWorkflow, error) {
	panic("unimplemented")
}

func (f *fakeWorkflowService) Get(ctx context.Context, orgID, id snowflake.ID) (*workflowdomain.ResolvedWorkflow, error) {
	panic("unimplemented")
}

func (f *fakeWorkflowService) List(ctx context.Context, orgID snowflake.ID) ([]workflowdomain.Workflow, error) {
	panic("unimplemented")
}

func (f *fakeWorkflowService) Update(ctx context.Context, orgID, id snowflake.ID, req workflowdomain.UpdateWorkflowRequest) (*workflowdomain.Workflow, error) {
	panic("unimplemented")
}

func (f *fakeWorkflowService) Delete(ctx context.Context, orgID, id snowflake.ID) error {
	panic("unimplemented")
}

func (f *fakeWorkflowService) AddStatus(ctx context.Context, orgID, workflowID snowflake.ID, req workflowdomain.AddStatusRequest) (*workflowdomain.WorkflowStatus, error) {
	panic("unimplemented")
}

func (f *fakeWorkflowService) UpdateStatus(ctx context.Context, orgID, workflowID, statusID snowflake.ID, req workflowdomain.UpdateStatusRequest) (*workflowdomain.WorkflowStatus, error) {
	panic("unimplemented")
}

func (f *fakeWorkflowService) DeleteStatus(ctx context.Context, orgID, workflowID, statusID snowflake.ID) error {
	panic("unimplemented")
}

func (f *fakeWorkflowService) Reorder(ctx context.Context, orgID, workflowID snowflake.ID, statusIDs []snowflake.ID) ([]workflowdomain.WorkflowStatus, error) {
	f.reorderCalls++
	f.lastOrgID = orgID
	f.lastID = workflowID
	f.lastOrder = statusIDs
	_ = ctx
	return []workflowdomain.WorkflowStatus{}, nil
}

func (f *fakeWorkflowService) AddTransition(ctx context.Context, orgID, workflowID, fromID, toID snowflake.ID) (*workflowdomain.WorkflowTransition, error) {
	panic("unimplemented")
}

func (f *fakeWorkflowService) DeleteTransition(ctx context.Context, orgID, workflowID, transitionID snowflake.ID) error {
	panic("unimplemented")
}

func (f *fakeWorkflowService) AutoCreateTransitions(ctx context.Context, orgID, workflowID snowflake.ID) (int, error) {
	panic("unimplemented")
}

func (f *fakeWorkflowService) SetDefault(ctx context.Context, orgID, workflowID snowflake.ID) error {
	panic("unimplemented")
}

func (f *fakeWorkflowService) AssignToProject(ctx context.Context, orgID, workflowID, projectID snowflake.ID) error {
	panic("unimplemented")
}

func (f *fakeWorkflowService) Resolve(ctx context.Context, orgID, projectID snowflake.ID) (*workflowdomain.ResolvedWorkflow, error) {
	panic("unimplemented")
}

func newReorderRouter(svc workflowdomain.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	srv := &Server{workflowSvc: svc}

	router := gin.New()
	router.Use(ErrorHandlingMiddleware())
	router.Use(func(c *gin.Context) {
		actor := orgdomain.Actor{
			UserID: snowflake.ID(7),
			OrgID:  snowflake.ID(42),
			Role:   orgdomain.RoleAdmin,
		}
		c.Request = c.Request.WithContext(orgdomain.WithActor(c.Request.Context(), actor))
		c.Next()
	})
	router.PATCH("/workflows/:id/reorder", srv.ReorderWorkflowStatuses)
	return router
}

func TestReorderHandlerReadsOrderField(t *testing.T) {
	svc := &fakeWorkflowService{}
	router := newReorderRouter(svc)

	body := bytes.NewBufferString(`{"order":["3","1","2"]}`)
	req := httptest.NewRequest(http.MethodPatch, "/workflows/10/reorder", body)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.reorderCalls != 1 {
		t.Fatalf("expected one reorder call, got %d", svc.reorderCalls)
	}
	if svc.lastOrgID != snowflake.ID(42) || svc.lastID != snowflake.ID(10) {
		t.Fatalf("unexpected scope: org=%d workflow=%d", svc.lastOrgID, svc.lastID)
	}
	want := []snowflake.ID{3, 1, 2}
	if len(svc.lastOrder) != len(want) {
		t.Fatalf("expected %d ids, got %d", len(want), len(svc.lastOrder))
	}
	for i, id := range want {
		if svc.lastOrder[i] != id {
			t.Fatalf("expected id %d at position %d, got %d", id, i, svc.lastOrder[i])
		}
	}
}

func TestReorderHandlerAcceptsStatusIDsAlias(t *testing.T) {
	svc := &fakeWorkflowService{}
	router := newReorderRouter(svc)

	body := bytes.NewBufferString(`{"status_ids":["2","1"]}`)
	req := httptest.NewRequest(http.MethodPatch, "/workflows/10/reorder", body)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if len(svc.lastOrder) != 2 || svc.lastOrder[0] != snowflake.ID(2) || svc.lastOrder[1] != snowflake.ID(1) {
		t.Fatalf("unexpected order: %v", svc.lastOrder)
	}
}
