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
	"github.com/CCxPL/task-management-system/internal/issue/domain"
	"github.com/CCxPL/task-management-system/internal/issue/repository"
	orgdomain "github.com/CCxPL/task-management-system/internal/organization/domain"
	projectdomain "github.com/CCxPL/task-management-system/internal/project/domain"
	projectrepository "github.com/CCxPL/task-management-system/internal/project/repository"
	workflowdomain "github.com/CCxPL/task-management-system/internal/workflow/domain"
	workflowrepository "github.com/CCxPL/task-management-system/internal/workflow/repository"
	workflowservice "github.com/CCxPL/task-management-system/internal/workflow/service"
	dbpkg "github.com/CCxPL/task-management-system/pkg/db"
)

type testEnv struct {
	db          *gorm.DB
	svc         domain.Service
	workflowSvc workflowdomain.Service
	node        *snowflake.Node
	orgID       snowflake.ID
	project     *projectdomain.Project
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := dbpkg.NewTest()
	require.NoError(t, err)

	err = db.AutoMigrate(
		&projectdomain.Project{},
		&projectdomain.ProjectMember{},
		&workflowdomain.Workflow{},
		&workflowdomain.WorkflowStatus{},
		&workflowdomain.WorkflowTransition{},
		&domain.Issue{},
	)
	require.NoError(t, err)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	log := zaptest.NewLogger(t)
	projectRepo := projectrepository.NewRepository(db)
	workflowRepo := workflowrepository.NewRepository(db)
	workflowSvc := workflowservice.NewService(
		db,
		workflowRepo,
		projectRepo,
		config.NewStaticBoardConfigHolder(config.DefaultBoardConfig()),
		node,
		nil,
		log,
	)
	svc := NewService(db, repository.NewRepository(db), projectRepo, workflowRepo, workflowSvc, node, nil, log)

	env := &testEnv{db: db, svc: svc, workflowSvc: workflowSvc, node: node, orgID: node.Generate()}
	env.project = &projectdomain.Project{
		ID:       node.Generate(),
		OrgID:    env.orgID,
		Name:     "Web App",
		Key:      "WEB",
		IsActive: true,
	}
	require.NoError(t, db.Create(env.project).Error)
	return env
}

func (e *testEnv) provisionWorkflow(t *testing.T) *workflowdomain.ResolvedWorkflow {
	t.Helper()
	resolved, err := e.workflowSvc.Create(context.Background(), e.orgID, workflowdomain.CreateWorkflowRequest{
		Name:         "Default Workflow",
		SetAsDefault: true,
	})
	require.NoError(t, err)
	return resolved
}

func (e *testEnv) actor(role orgdomain.Role) orgdomain.Actor {
	return orgdomain.Actor{
		UserID:       e.node.Generate(),
		Email:        "user@example.com",
		OrgID:        e.orgID,
		Role:         role,
		MembershipID: e.node.Generate(),
	}
}

func (e *testEnv) createIssue(t *testing.T, actor orgdomain.Actor, assignee *snowflake.ID) *domain.Issue {
	t.Helper()
	issue, err := e.svc.Create(context.Background(), actor, domain.CreateIssueRequest{
		ProjectID:  e.project.ID,
		Title:      "Fix login flow",
		AssigneeID: assignee,
	})
	require.NoError(t, err)
	return issue
}

func TestCreateAssignsKeyAndStartStatus(t *testing.T) {
	env := newTestEnv(t)
	wf := env.provisionWorkflow(t)
	actor := env.actor(orgdomain.RoleMember)

	first := env.createIssue(t, actor, nil)
	assert.Equal(t, "WEB-1", first.Key)
	require.NotNil(t, first.WorkflowStatusID)

	var start workflowdomain.WorkflowStatus
	for _, st := range wf.Statuses {
		if st.IsStart {
			start = st
		}
	}
	assert.Equal(t, start.ID, *first.WorkflowStatusID)
	assert.Equal(t, actor.UserID, first.ReporterID)

	second := env.createIssue(t, actor, nil)
	assert.Equal(t, "WEB-2", second.Key)
}

func TestCreateWithoutWorkflowLeavesStatusUnset(t *testing.T) {
	env := newTestEnv(t)
	actor := env.actor(orgdomain.RoleMember)

	issue := env.createIssue(t, actor, nil)
	assert.Nil(t, issue.WorkflowStatusID)
}

func TestCreateRejectsBadInput(t *testing.T) {
	env := newTestEnv(t)
	actor := env.actor(orgdomain.RoleMember)
	ctx := context.Background()

	_, err := env.svc.Create(ctx, actor, domain.CreateIssueRequest{ProjectID: env.project.ID, Title: "  "})
	assert.ErrorIs(t, err, domain.ErrInvalidTitle)

	_, err = env.svc.Create(ctx, actor, domain.CreateIssueRequest{
		ProjectID: env.project.ID,
		Title:     "Bad type",
		Type:      domain.IssueType("CHORE"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidType)

	_, err = env.svc.Create(ctx, actor, domain.CreateIssueRequest{
		ProjectID: env.node.Generate(),
		Title:     "Unknown project",
	})
	assert.ErrorIs(t, err, projectdomain.ErrProjectNotFound)
}

func TestUpdateStatusAsAssignee(t *testing.T) {
	env := newTestEnv(t)
	env.provisionWorkflow(t)
	actor := env.actor(orgdomain.RoleMember)

	issue := env.createIssue(t, actor, &actor.UserID)

	result, err := env.svc.UpdateStatus(context.Background(), actor, issue.ID, "TO_DO")
	require.NoError(t, err)

	assert.Equal(t, issue.Key, result.IssueKey)
	assert.Equal(t, "backlog", result.FromStatus)
	assert.Equal(t, "to-do", result.ToStatus)
	assert.Equal(t, "TO_DO", result.Status)
	assert.Equal(t, "Issue status updated", result.Message)

	reloaded, err := env.svc.Get(context.Background(), actor, issue.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.WorkflowStatusID)
}

func TestUpdateStatusAcceptsLegacyToken(t *testing.T) {
	env := newTestEnv(t)
	env.provisionWorkflow(t)
	actor := env.actor(orgdomain.RoleAdmin)

	issue := env.createIssue(t, actor, nil)

	result, err := env.svc.UpdateStatus(context.Background(), actor, issue.ID, "TODO")
	require.NoError(t, err)
	assert.Equal(t, "to-do", result.ToStatus)
	assert.Equal(t, "TO_DO", result.Status)
}

func TestUpdateStatusDeniedForUnrelatedMember(t *testing.T) {
	env := newTestEnv(t)
	env.provisionWorkflow(t)
	reporter := env.actor(orgdomain.RoleAdmin)
	assignee := env.node.Generate()

	issue := env.createIssue(t, reporter, &assignee)
	before := *issue.WorkflowStatusID

	member := env.actor(orgdomain.RoleMember)
	_, err := env.svc.UpdateStatus(context.Background(), member, issue.ID, "TO_DO")
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)

	reloaded, err := env.svc.Get(context.Background(), reporter, issue.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.WorkflowStatusID)
	assert.Equal(t, before, *reloaded.WorkflowStatusID)
}

func TestUpdateStatusAllowedForProjectAdmin(t *testing.T) {
	env := newTestEnv(t)
	env.provisionWorkflow(t)
	reporter := env.actor(orgdomain.RoleAdmin)

	issue := env.createIssue(t, reporter, nil)

	member := env.actor(orgdomain.RoleMember)
	require.NoError(t, env.db.Create(&projectdomain.ProjectMember{
		ID:        env.node.Generate(),
		ProjectID: env.project.ID,
		UserID:    member.UserID,
		Role:      projectdomain.ProjectRoleAdmin,
		IsActive:  true,
	}).Error)

	result, err := env.svc.UpdateStatus(context.Background(), member, issue.ID, "IN_PROGRESS")
	require.NoError(t, err)
	assert.Equal(t, "in-progress", result.ToStatus)
}

func TestUpdateStatusDeniedForRemovedProjectAdmin(t *testing.T) {
	env := newTestEnv(t)
	env.provisionWorkflow(t)
	reporter := env.actor(orgdomain.RoleAdmin)

	issue := env.createIssue(t, reporter, nil)
	before := *issue.WorkflowStatusID

	member := env.actor(orgdomain.RoleMember)
	require.NoError(t, env.db.Create(&projectdomain.ProjectMember{
		ID:        env.node.Generate(),
		ProjectID: env.project.ID,
		UserID:    member.UserID,
		Role:      projectdomain.ProjectRoleAdmin,
		IsActive:  true,
	}).Error)
	require.NoError(t, env.db.Model(&projectdomain.ProjectMember{}).
		Where("project_id = ? AND user_id = ?", env.project.ID, member.UserID).
		Update("is_active", false).Error)

	_, err := env.svc.UpdateStatus(context.Background(), member, issue.ID, "IN_PROGRESS")
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)

	reloaded, err := env.svc.Get(context.Background(), reporter, issue.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.WorkflowStatusID)
	assert.Equal(t, before, *reloaded.WorkflowStatusID)
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	env := newTestEnv(t)
	env.provisionWorkflow(t)
	actor := env.actor(orgdomain.RoleAdmin)

	issue := env.createIssue(t, actor, nil)

	_, err := env.svc.UpdateStatus(context.Background(), actor, issue.ID, "SHIPPED")
	var invalidStatus *workflowdomain.InvalidStatusError
	require.ErrorAs(t, err, &invalidStatus)
	assert.Equal(t, "shipped", invalidStatus.Requested)
	assert.ElementsMatch(t, []string{"backlog", "to-do", "in-progress", "review", "done"}, invalidStatus.Available)
}

func TestUpdateStatusRejectsMissingTransition(t *testing.T) {
	env := newTestEnv(t)
	wf := env.provisionWorkflow(t)
	actor := env.actor(orgdomain.RoleAdmin)
	ctx := context.Background()

	// Keep only backlog -> to-do so every other move is invalid.
	var backlogID, todoID snowflake.ID
	for _, st := range wf.Statuses {
		switch st.Slug {
		case "backlog":
			backlogID = st.ID
		case "to-do":
			todoID = st.ID
		}
	}
	for _, tr := range wf.Transitions {
		if tr.FromStatusID == backlogID && tr.ToStatusID == todoID {
			continue
		}
		require.NoError(t, env.workflowSvc.DeleteTransition(ctx, env.orgID, wf.Workflow.ID, tr.ID))
	}

	issue := env.createIssue(t, actor, nil)

	_, err := env.svc.UpdateStatus(ctx, actor, issue.ID, "DONE")
	var invalidTransition *workflowdomain.InvalidTransitionError
	require.ErrorAs(t, err, &invalidTransition)
	assert.Equal(t, "backlog", invalidTransition.From)
	assert.Equal(t, "done", invalidTransition.To)
	assert.Equal(t, []string{"to-do"}, invalidTransition.Available)
}

func TestUpdateStatusNoOpWhenAlreadyThere(t *testing.T) {
	env := newTestEnv(t)
	env.provisionWorkflow(t)
	actor := env.actor(orgdomain.RoleAdmin)

	issue := env.createIssue(t, actor, nil)

	result, err := env.svc.UpdateStatus(context.Background(), actor, issue.ID, "BACKLOG")
	require.NoError(t, err)
	assert.Equal(t, "backlog", result.FromStatus)
	assert.Equal(t, "backlog", result.ToStatus)
	assert.Equal(t, "Issue already in this status", result.Message)
}

func TestUpdateStatusWithoutWorkflowStatus(t *testing.T) {
	env := newTestEnv(t)
	actor := env.actor(orgdomain.RoleAdmin)

	// No workflow configured, so the issue has no status to move from.
	issue := env.createIssue(t, actor, nil)

	_, err := env.svc.UpdateStatus(context.Background(), actor, issue.ID, "TO_DO")
	assert.ErrorIs(t, err, domain.ErrNoWorkflowStatus)
}

func TestUpdateStatusAcrossOrganizations(t *testing.T) {
	env := newTestEnv(t)
	env.provisionWorkflow(t)
	actor := env.actor(orgdomain.RoleAdmin)

	issue := env.createIssue(t, actor, nil)

	outsider := orgdomain.Actor{
		UserID:       env.node.Generate(),
		OrgID:        env.node.Generate(),
		Role:         orgdomain.RoleAdmin,
		MembershipID: env.node.Generate(),
	}
	_, err := env.svc.UpdateStatus(context.Background(), outsider, issue.ID, "TO_DO")
	assert.ErrorIs(t, err, domain.ErrCrossOrganization)
}

func TestUpdateStatusRejectsBlankToken(t *testing.T) {
	env := newTestEnv(t)
	actor := env.actor(orgdomain.RoleAdmin)

	_, err := env.svc.UpdateStatus(context.Background(), actor, env.node.Generate(), "   ")
	assert.ErrorIs(t, err, domain.ErrMissingStatus)
}

func TestGetHidesForeignIssues(t *testing.T) {
	env := newTestEnv(t)
	env.provisionWorkflow(t)
	actor := env.actor(orgdomain.RoleMember)

	issue := env.createIssue(t, actor, nil)

	outsider := orgdomain.Actor{
		UserID:       env.node.Generate(),
		OrgID:        env.node.Generate(),
		Role:         orgdomain.RoleMember,
		MembershipID: env.node.Generate(),
	}
	_, err := env.svc.Get(context.Background(), outsider, issue.ID)
	assert.ErrorIs(t, err, domain.ErrIssueNotFound)
}

func TestBoardGroupsIssuesByStatus(t *testing.T) {
	env := newTestEnv(t)
	env.provisionWorkflow(t)
	actor := env.actor(orgdomain.RoleAdmin)
	ctx := context.Background()

	first := env.createIssue(t, actor, nil)
	second := env.createIssue(t, actor, nil)

	_, err := env.svc.UpdateStatus(ctx, actor, second.ID, "IN_PROGRESS")
	require.NoError(t, err)

	board, err := env.svc.Board(ctx, actor, env.project.ID)
	require.NoError(t, err)

	require.Len(t, board.Columns, 5)
	assert.Equal(t, []string{"BACKLOG", "TO_DO", "IN_PROGRESS", "REVIEW", "DONE"}, []string{
		board.Columns[0].Token,
		board.Columns[1].Token,
		board.Columns[2].Token,
		board.Columns[3].Token,
		board.Columns[4].Token,
	})

	require.Len(t, board.Columns[0].Issues, 1)
	assert.Equal(t, first.ID, board.Columns[0].Issues[0].ID)
	require.Len(t, board.Columns[2].Issues, 1)
	assert.Equal(t, second.ID, board.Columns[2].Issues[0].ID)
	assert.Empty(t, board.Columns[1].Issues)
}

func TestBoardPutsStatuslessIssuesInBacklogColumn(t *testing.T) {
	env := newTestEnv(t)
	actor := env.actor(orgdomain.RoleAdmin)
	ctx := context.Background()

	// Issue created before any workflow existed.
	orphan := env.createIssue(t, actor, nil)
	require.Nil(t, orphan.WorkflowStatusID)

	env.provisionWorkflow(t)
	placed := env.createIssue(t, actor, nil)

	board, err := env.svc.Board(ctx, actor, env.project.ID)
	require.NoError(t, err)

	require.Len(t, board.Columns, 5)
	backlog := board.Columns[0]
	assert.Equal(t, "BACKLOG", backlog.Token)
	require.Len(t, backlog.Issues, 2)
	assert.Equal(t, placed.ID, backlog.Issues[0].ID)
	assert.Equal(t, orphan.ID, backlog.Issues[1].ID)
}

func TestTransitionRejectReasonLabels(t *testing.T) {
	reason, rejected := transitionRejectReason(&workflowdomain.InvalidStatusError{Requested: "shipped"})
	assert.True(t, rejected)
	assert.Equal(t, "invalid_status", reason)

	reason, rejected = transitionRejectReason(&workflowdomain.InvalidTransitionError{From: "backlog", To: "done"})
	assert.True(t, rejected)
	assert.Equal(t, "invalid_transition", reason)

	reason, rejected = transitionRejectReason(domain.ErrNoWorkflowStatus)
	assert.True(t, rejected)
	assert.Equal(t, "no_status", reason)

	_, rejected = transitionRejectReason(gorm.ErrInvalidTransaction)
	assert.False(t, rejected)
}
