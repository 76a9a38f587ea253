package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"

	projectdomain "github.com/CCxPL/task-management-system/internal/project/domain"
	projectrepository "github.com/CCxPL/task-management-system/internal/project/repository"
	"github.com/CCxPL/task-management-system/internal/sprint/domain"
	"github.com/CCxPL/task-management-system/internal/sprint/repository"
	dbpkg "github.com/CCxPL/task-management-system/pkg/db"
)

func newTestService(t *testing.T) (domain.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	db, err := dbpkg.NewTest()
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&projectdomain.Project{}, &domain.Sprint{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := NewService(repository.NewRepository(db), projectrepository.NewRepository(db), node, zaptest.NewLogger(t))
	return svc, db, node
}

func createProject(t *testing.T, db *gorm.DB, node *snowflake.Node, orgID snowflake.ID) *projectdomain.Project {
	t.Helper()
	project := &projectdomain.Project{
		ID:       node.Generate(),
		OrgID:    orgID,
		Name:     "Web App",
		Key:      "WEB",
		IsActive: true,
	}
	require.NoError(t, db.Create(project).Error)
	return project
}

func TestCreateSprint(t *testing.T) {
	svc, db, node := newTestService(t)
	orgID := node.Generate()
	project := createProject(t, db, node, orgID)
	ctx := context.Background()

	sprint, err := svc.Create(ctx, orgID, domain.CreateSprintRequest{
		ProjectID: project.ID,
		Name:      "Sprint 1",
		Goal:      "Ship login",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatePlanned, sprint.State)

	start := time.Now().UTC()
	end := start.Add(-24 * time.Hour)
	_, err = svc.Create(ctx, orgID, domain.CreateSprintRequest{
		ProjectID: project.ID,
		Name:      "Backwards",
		StartDate: &start,
		EndDate:   &end,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidDates)
}

func TestAdvanceWalksTheLifecycle(t *testing.T) {
	svc, db, node := newTestService(t)
	orgID := node.Generate()
	project := createProject(t, db, node, orgID)
	ctx := context.Background()

	sprint, err := svc.Create(ctx, orgID, domain.CreateSprintRequest{ProjectID: project.ID, Name: "Sprint 1"})
	require.NoError(t, err)

	advanced, err := svc.Advance(ctx, orgID, sprint.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StateActive, advanced.State)

	advanced, err = svc.Advance(ctx, orgID, sprint.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StateCompleted, advanced.State)

	_, err = svc.Advance(ctx, orgID, sprint.ID)
	assert.ErrorIs(t, err, domain.ErrSprintCompleted)
}

func TestCompletedSprintIsImmutable(t *testing.T) {
	svc, db, node := newTestService(t)
	orgID := node.Generate()
	project := createProject(t, db, node, orgID)
	ctx := context.Background()

	sprint, err := svc.Create(ctx, orgID, domain.CreateSprintRequest{ProjectID: project.ID, Name: "Sprint 1"})
	require.NoError(t, err)

	_, err = svc.Advance(ctx, orgID, sprint.ID)
	require.NoError(t, err)
	_, err = svc.Advance(ctx, orgID, sprint.ID)
	require.NoError(t, err)

	name := "Renamed"
	_, err = svc.Update(ctx, orgID, sprint.ID, domain.UpdateSprintRequest{Name: &name})
	assert.ErrorIs(t, err, domain.ErrSprintCompleted)
}

func TestSprintScopedToOrganization(t *testing.T) {
	svc, db, node := newTestService(t)
	orgID := node.Generate()
	project := createProject(t, db, node, orgID)
	ctx := context.Background()

	sprint, err := svc.Create(ctx, orgID, domain.CreateSprintRequest{ProjectID: project.ID, Name: "Sprint 1"})
	require.NoError(t, err)

	_, err = svc.Get(ctx, node.Generate(), sprint.ID)
	assert.ErrorIs(t, err, domain.ErrSprintNotFound)
}
