package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"

	"github.com/CCxPL/task-management-system/internal/config"
	issuedomain "github.com/CCxPL/task-management-system/internal/issue/domain"
	projectdomain "github.com/CCxPL/task-management-system/internal/project/domain"
	projectrepository "github.com/CCxPL/task-management-system/internal/project/repository"
	"github.com/CCxPL/task-management-system/internal/workflow/domain"
	"github.com/CCxPL/task-management-system/internal/workflow/repository"
	dbpkg "github.com/CCxPL/task-management-system/pkg/db"
)

type testEnv struct {
	db    *gorm.DB
	svc   domain.Service
	node  *snowflake.Node
	orgID snowflake.ID
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := dbpkg.NewTest()
	require.NoError(t, err)

	err = db.AutoMigrate(
		&projectdomain.Project{},
		&domain.Workflow{},
		&domain.WorkflowStatus{},
		&domain.WorkflowTransition{},
		&issuedomain.Issue{},
	)
	require.NoError(t, err)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := NewService(
		db,
		repository.NewRepository(db),
		projectrepository.NewRepository(db),
		config.NewStaticBoardConfigHolder(config.DefaultBoardConfig()),
		node,
		nil,
		zaptest.NewLogger(t),
	)

	return &testEnv{db: db, svc: svc, node: node, orgID: node.Generate()}
}

func (e *testEnv) createProject(t *testing.T, key string) *projectdomain.Project {
	t.Helper()
	project := &projectdomain.Project{
		ID:       e.node.Generate(),
		OrgID:    e.orgID,
		Name:     "Project " + key,
		Key:      key,
		IsActive: true,
	}
	require.NoError(t, e.db.Create(project).Error)
	return project
}

func statusBySlug(t *testing.T, resolved *domain.ResolvedWorkflow, slug string) domain.WorkflowStatus {
	t.Helper()
	for _, st := range resolved.Statuses {
		if st.Slug == slug {
			return st
		}
	}
	t.Fatalf("status %q not found", slug)
	return domain.WorkflowStatus{}
}

func TestCreateProvisionsDefaultBoard(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	resolved, err := env.svc.Create(ctx, env.orgID, domain.CreateWorkflowRequest{Name: "Default Workflow"})
	require.NoError(t, err)

	require.Len(t, resolved.Statuses, 5)
	slugs := make([]string, 0, len(resolved.Statuses))
	for _, st := range resolved.Statuses {
		slugs = append(slugs, st.Slug)
	}
	assert.Equal(t, []string{"backlog", "to-do", "in-progress", "review", "done"}, slugs)

	for i, st := range resolved.Statuses {
		assert.Equal(t, i+1, st.SortOrder)
	}

	backlog := statusBySlug(t, resolved, "backlog")
	done := statusBySlug(t, resolved, "done")
	assert.True(t, backlog.IsStart)
	assert.False(t, backlog.IsTerminal)
	assert.True(t, done.IsTerminal)
	assert.Equal(t, "#6B7280", backlog.Color)
	assert.Equal(t, "#10B981", done.Color)

	// Every ordered pair of distinct statuses is an edge.
	assert.Len(t, resolved.Transitions, 20)
}

func TestCreateRejectsBlankName(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Create(context.Background(), env.orgID, domain.CreateWorkflowRequest{Name: "   "})
	assert.ErrorIs(t, err, domain.ErrInvalidName)
}

func TestCreateSetAsDefaultClearsPreviousDefault(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.svc.Create(ctx, env.orgID, domain.CreateWorkflowRequest{Name: "First", SetAsDefault: true})
	require.NoError(t, err)
	assert.True(t, first.Workflow.IsDefault)

	second, err := env.svc.Create(ctx, env.orgID, domain.CreateWorkflowRequest{Name: "Second", SetAsDefault: true})
	require.NoError(t, err)
	assert.True(t, second.Workflow.IsDefault)

	reloaded, err := env.svc.Get(ctx, env.orgID, first.Workflow.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.Workflow.IsDefault)
}

func TestAddStatusDisambiguatesSlug(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	wf, err := env.svc.Create(ctx, env.orgID, domain.CreateWorkflowRequest{Name: "Board"})
	require.NoError(t, err)

	// "Review" already exists in the provisioned board.
	status, err := env.svc.AddStatus(ctx, env.orgID, wf.Workflow.ID, domain.AddStatusRequest{Name: "Review"})
	require.NoError(t, err)
	assert.Equal(t, "review-1", status.Slug)

	again, err := env.svc.AddStatus(ctx, env.orgID, wf.Workflow.ID, domain.AddStatusRequest{Name: "Review"})
	require.NoError(t, err)
	assert.Equal(t, "review-2", again.Slug)
}

func TestAddStatusAppendsToEndOfOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	wf, err := env.svc.Create(ctx, env.orgID, domain.CreateWorkflowRequest{Name: "Board"})
	require.NoError(t, err)

	status, err := env.svc.AddStatus(ctx, env.orgID, wf.Workflow.ID, domain.AddStatusRequest{Name: "Blocked"})
	require.NoError(t, err)
	assert.Equal(t, 6, status.SortOrder)
}

func TestAddStatusRejectsTakenOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	wf, err := env.svc.Create(ctx, env.orgID, domain.CreateWorkflowRequest{Name: "Board"})
	require.NoError(t, err)

	taken := 2
	_, err = env.svc.AddStatus(ctx, env.orgID, wf.Workflow.ID, domain.AddStatusRequest{
		Name:  "Blocked",
		Order: &taken,
	})
	require.ErrorIs(t, err, domain.ErrOrderTaken)

	resolved, err := env.svc.Get(ctx, env.orgID, wf.Workflow.ID)
	require.NoError(t, err)
	assert.Len(t, resolved.Statuses, 5)
}

func TestStartFlagStaysExclusive(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	wf, err := env.svc.Create(ctx, env.orgID, domain.CreateWorkflowRequest{Name: "Board"})
	require.NoError(t, err)

	isStart := true
	_, err = env.svc.AddStatus(ctx, env.orgID, wf.Workflow.ID, domain.AddStatusRequest{
		Name:    "Triage",
		IsStart: &isStart,
	})
	require.NoError(t, err)

	reloaded, err := env.svc.Get(ctx, env.orgID, wf.Workflow.ID)
	require.NoError(t, err)

	starts := 0
	for _, st := range reloaded.Statuses {
		if st.IsStart {
			starts++
			assert.Equal(t, "triage", st.Slug)
		}
	}
	assert.Equal(t, 1, starts)
}

func TestUpdateStatusMovesTerminalFlag(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	wf, err := env.svc.Create(ctx, env.orgID, domain.CreateWorkflowRequest{Name: "Board"})
	require.NoError(t, err)

	review := statusBySlug(t, wf, "review")
	isTerminal := true
	updated, err := env.svc.UpdateStatus(ctx, env.orgID, wf.Workflow.ID, review.ID, domain.UpdateStatusRequest{
		IsTerminal: &isTerminal,
	})
	require.NoError(t, err)
	assert.True(t, updated.IsTerminal)

	reloaded, err := env.svc.Get(ctx, env.orgID, wf.Workflow.ID)
	require.NoError(t, err)
	assert.False(t, statusBySlug(t, reloaded, "done").IsTerminal)
}

func TestUpdateStatusRejectsForeignStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.svc.Create(ctx, env.orgID, domain.CreateWorkflowRequest{Name: "First"})
	require.NoError(t, err)
	second, err := env.svc.Create(ctx, env.orgID, domain.CreateWorkflowRequest{Name: "Second"})
	require.NoError(t, err)

	name := "Renamed"
	foreign := statusBySlug(t, second, "backlog")
	_, err = env.svc.UpdateStatus(ctx, env.orgID, first.Workflow.ID, foreign.ID, domain.UpdateStatusRequest{Name: &name})
	assert.ErrorIs(t, err, domain.ErrStatusNotInWorkflow)
}

func TestReorderSettlesContiguousOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	wf, err := env.svc.Create(ctx, env.orgID, domain.CreateWorkflowRequest{Name: "Board"})
	require.NoError(t, err)

	// Reverse the provisioned order.
	ids := make([]snowflake.ID, 0, len(wf.Statuses))
	for i := len(wf.Statuses) - 1; i >= 0; i-- {
		ids = append(ids, wf.Statuses[i].ID)
	}

	reordered, err := env.svc.Reorder(ctx, env.orgID, wf.Workflow.ID, ids)
	require.NoError(t, err)

	require.Len(t, reordered, 5)
	assert.Equal(t, "done", reordered[0].Slug)
	assert.Equal(t, "backlog", reordered[4].Slug)
	for i, st := range reordered {
		assert.Equal(t, i+1, st.SortOrder)
		assert.Equal(t, ids[i], st.ID)
	}
}

func TestReorderRejectsBadSets(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	wf, err := env.svc.Create(ctx, env.orgID, domain.CreateWorkflowRequest{Name: "Board"})
	require.NoError(t, err)

	ids := make([]snowflake.ID, 0, len(wf.Statuses))
	for _, st := range wf.Statuses {
		ids = append(ids, st.ID)
	}

	t.Run("missing status", func(t *testing.T) {
		_, err := env.svc.Reorder(ctx, env.orgID, wf.Workflow.ID, ids[:4])
		assert.ErrorIs(t, err, domain.ErrInvalidOrderSet)
	})

	t.Run("unknown id", func(t *testing.T) {
		bad := append(append([]snowflake.ID{}, ids[:4]...), env.node.Generate())
		_, err := env.svc.Reorder(ctx, env.orgID, wf.Workflow.ID, bad)
		assert.ErrorIs(t, err, domain.ErrInvalidOrderSet)
	})

	t.Run("duplicate id", func(t *testing.T) {
		dup := append(append([]snowflake.ID{}, ids[:4]...), ids[0])
		_, err := env.svc.Reorder(ctx, env.orgID, wf.Workflow.ID, dup)
		assert.ErrorIs(t, err, domain.ErrInvalidOrderSet)
	})

	// Nothing moved.
	reloaded, err := env.svc.Get(ctx, env.orgID, wf.Workflow.ID)
	require.NoError(t, err)
	for i, st := range reloaded.Statuses {
		assert.Equal(t, ids[i], st.ID)
	}
}

func TestAddTransitionIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	wf, err := env.svc.Create(ctx, env.orgID, domain.CreateWorkflowRequest{Name: "Board"})
	require.NoError(t, err)

	from := statusBySlug(t, wf, "backlog")
	to := statusBySlug(t, wf, "done")

	first, err := env.svc.AddTransition(ctx, env.orgID, wf.Workflow.ID, from.ID, to.ID)
	require.NoError(t, err)

	second, err := env.svc.AddTransition(ctx, env.orgID, wf.Workflow.ID, from.ID, to.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestAddTransitionRejectsSelfLoop(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	wf, err := env.svc.Create(ctx, env.orgID, domain.CreateWorkflowRequest{Name: "Board"})
	require.NoError(t, err)

	backlog := statusBySlug(t, wf, "backlog")
	_, err = env.svc.AddTransition(ctx, env.orgID, wf.Workflow.ID, backlog.ID, backlog.ID)
	assert.ErrorIs(t, err, domain.ErrSelfTransition)
}

func TestAutoCreateTransitionsFillsMissingEdges(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	wf, err := env.svc.Create(ctx, env.orgID, domain.CreateWorkflowRequest{Name: "Board"})
	require.NoError(t, err)

	// Provisioning already created the full mesh.
	created, err := env.svc.AutoCreateTransitions(ctx, env.orgID, wf.Workflow.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, created)

	require.NoError(t, env.svc.DeleteTransition(ctx, env.orgID, wf.Workflow.ID, wf.Transitions[0].ID))
	require.NoError(t, env.svc.DeleteTransition(ctx, env.orgID, wf.Workflow.ID, wf.Transitions[1].ID))

	created, err = env.svc.AutoCreateTransitions(ctx, env.orgID, wf.Workflow.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, created)
}

func TestSetDefaultIsExclusive(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.svc.Create(ctx, env.orgID, domain.CreateWorkflowRequest{Name: "First", SetAsDefault: true})
	require.NoError(t, err)
	second, err := env.svc.Create(ctx, env.orgID, domain.CreateWorkflowRequest{Name: "Second"})
	require.NoError(t, err)

	require.NoError(t, env.svc.SetDefault(ctx, env.orgID, second.Workflow.ID))

	workflows, err := env.svc.List(ctx, env.orgID)
	require.NoError(t, err)

	defaults := 0
	for _, wf := range workflows {
		if wf.IsDefault {
			defaults++
			assert.Equal(t, second.Workflow.ID, wf.ID)
		}
		if wf.ID == first.Workflow.ID {
			assert.False(t, wf.IsDefault)
		}
	}
	assert.Equal(t, 1, defaults)
}

func TestDeleteStatusInUseIsRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	project := env.createProject(t, "OPS")
	wf, err := env.svc.Create(ctx, env.orgID, domain.CreateWorkflowRequest{Name: "Board"})
	require.NoError(t, err)

	backlog := statusBySlug(t, wf, "backlog")
	statusID := backlog.ID
	issue := &issuedomain.Issue{
		ID:               env.node.Generate(),
		ProjectID:        project.ID,
		WorkflowStatusID: &statusID,
		Key:              "OPS-1",
		Title:            "Pinned issue",
		Type:             issuedomain.TypeTask,
		Priority:         issuedomain.PriorityMedium,
		ReporterID:       env.node.Generate(),
	}
	require.NoError(t, env.db.Create(issue).Error)

	err = env.svc.DeleteStatus(ctx, env.orgID, wf.Workflow.ID, backlog.ID)
	assert.ErrorIs(t, err, domain.ErrStatusInUse)

	reloaded, err := env.svc.Get(ctx, env.orgID, wf.Workflow.ID)
	require.NoError(t, err)
	assert.Len(t, reloaded.Statuses, 5)
	assert.Len(t, reloaded.Transitions, 20)
}

func TestDeleteStatusRemovesItsTransitions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	wf, err := env.svc.Create(ctx, env.orgID, domain.CreateWorkflowRequest{Name: "Board"})
	require.NoError(t, err)

	review := statusBySlug(t, wf, "review")
	require.NoError(t, env.svc.DeleteStatus(ctx, env.orgID, wf.Workflow.ID, review.ID))

	reloaded, err := env.svc.Get(ctx, env.orgID, wf.Workflow.ID)
	require.NoError(t, err)
	assert.Len(t, reloaded.Statuses, 4)
	// 4 remaining statuses keep their full mesh of 12 edges.
	assert.Len(t, reloaded.Transitions, 12)
	for _, tr := range reloaded.Transitions {
		assert.NotEqual(t, review.ID, tr.FromStatusID)
		assert.NotEqual(t, review.ID, tr.ToStatusID)
	}
}

func TestResolvePrefersProjectBoundWorkflow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	project := env.createProject(t, "WEB")

	_, err := env.svc.Create(ctx, env.orgID, domain.CreateWorkflowRequest{Name: "Org Default", SetAsDefault: true})
	require.NoError(t, err)

	bound, err := env.svc.Create(ctx, env.orgID, domain.CreateWorkflowRequest{
		Name:      "Web Flow",
		ProjectID: &project.ID,
	})
	require.NoError(t, err)

	resolved, err := env.svc.Resolve(ctx, env.orgID, project.ID)
	require.NoError(t, err)
	assert.Equal(t, bound.Workflow.ID, resolved.Workflow.ID)
}

func TestResolveFallsBackToDefaultWhenBoundInactive(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	project := env.createProject(t, "WEB")

	def, err := env.svc.Create(ctx, env.orgID, domain.CreateWorkflowRequest{Name: "Org Default", SetAsDefault: true})
	require.NoError(t, err)

	bound, err := env.svc.Create(ctx, env.orgID, domain.CreateWorkflowRequest{
		Name:      "Web Flow",
		ProjectID: &project.ID,
	})
	require.NoError(t, err)

	inactive := false
	_, err = env.svc.Update(ctx, env.orgID, bound.Workflow.ID, domain.UpdateWorkflowRequest{IsActive: &inactive})
	require.NoError(t, err)

	resolved, err := env.svc.Resolve(ctx, env.orgID, project.ID)
	require.NoError(t, err)
	assert.Equal(t, def.Workflow.ID, resolved.Workflow.ID)
}

func TestResolveWithoutAnyWorkflow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	project := env.createProject(t, "WEB")

	_, err := env.svc.Resolve(ctx, env.orgID, project.ID)
	assert.ErrorIs(t, err, domain.ErrWorkflowNotConfigured)
}

func TestResolveUnknownProject(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Resolve(context.Background(), env.orgID, env.node.Generate())
	assert.ErrorIs(t, err, projectdomain.ErrProjectNotFound)
}

func TestAssignToProjectDetachesPreviousWorkflow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	project := env.createProject(t, "WEB")

	first, err := env.svc.Create(ctx, env.orgID, domain.CreateWorkflowRequest{
		Name:      "First",
		ProjectID: &project.ID,
	})
	require.NoError(t, err)

	second, err := env.svc.Create(ctx, env.orgID, domain.CreateWorkflowRequest{Name: "Second"})
	require.NoError(t, err)

	require.NoError(t, env.svc.AssignToProject(ctx, env.orgID, second.Workflow.ID, project.ID))

	resolved, err := env.svc.Resolve(ctx, env.orgID, project.ID)
	require.NoError(t, err)
	assert.Equal(t, second.Workflow.ID, resolved.Workflow.ID)

	detached, err := env.svc.Get(ctx, env.orgID, first.Workflow.ID)
	require.NoError(t, err)
	assert.Nil(t, detached.Workflow.ProjectID)
}

func TestDeleteWorkflowGuards(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	def, err := env.svc.Create(ctx, env.orgID, domain.CreateWorkflowRequest{Name: "Default", SetAsDefault: true})
	require.NoError(t, err)

	t.Run("default workflow", func(t *testing.T) {
		err := env.svc.Delete(ctx, env.orgID, def.Workflow.ID)
		assert.ErrorIs(t, err, domain.ErrWorkflowIsDefault)
	})

	t.Run("workflow with issues", func(t *testing.T) {
		project := env.createProject(t, "OPS")
		wf, err := env.svc.Create(ctx, env.orgID, domain.CreateWorkflowRequest{Name: "Busy"})
		require.NoError(t, err)

		statusID := statusBySlug(t, wf, "to-do").ID
		require.NoError(t, env.db.Create(&issuedomain.Issue{
			ID:               env.node.Generate(),
			ProjectID:        project.ID,
			WorkflowStatusID: &statusID,
			Key:              "OPS-1",
			Title:            "Pinned",
			Type:             issuedomain.TypeTask,
			Priority:         issuedomain.PriorityMedium,
			ReporterID:       env.node.Generate(),
		}).Error)

		err = env.svc.Delete(ctx, env.orgID, wf.Workflow.ID)
		assert.ErrorIs(t, err, domain.ErrWorkflowInUse)
	})

	t.Run("unused workflow", func(t *testing.T) {
		wf, err := env.svc.Create(ctx, env.orgID, domain.CreateWorkflowRequest{Name: "Scrap"})
		require.NoError(t, err)

		require.NoError(t, env.svc.Delete(ctx, env.orgID, wf.Workflow.ID))

		_, err = env.svc.Get(ctx, env.orgID, wf.Workflow.ID)
		assert.ErrorIs(t, err, domain.ErrWorkflowNotFound)
	})
}
