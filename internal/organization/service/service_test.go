package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/CCxPL/task-management-system/internal/organization/domain"
	"github.com/CCxPL/task-management-system/internal/organization/repository"
	dbpkg "github.com/CCxPL/task-management-system/pkg/db"
)

func newTestService(t *testing.T) (domain.Service, *snowflake.Node) {
	t.Helper()

	db, err := dbpkg.NewTest()
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Organization{}, &domain.OrganizationUser{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return NewService(db, repository.NewRepository(db), node, zaptest.NewLogger(t)), node
}

func TestCreateSlugifiesName(t *testing.T) {
	svc, _ := newTestService(t)

	org, err := svc.Create(context.Background(), domain.CreateOrganizationRequest{Name: "Acme Rockets Inc"})
	require.NoError(t, err)

	assert.Equal(t, "acme-rockets-inc", org.Slug)
	assert.Equal(t, domain.OrgTypeCompany, org.Type)
	assert.True(t, org.IsActive)
}

func TestCreateStoresSettings(t *testing.T) {
	svc, _ := newTestService(t)

	org, err := svc.Create(context.Background(), domain.CreateOrganizationRequest{
		Name:     "Acme",
		Settings: map[string]any{"timezone": "UTC"},
	})
	require.NoError(t, err)
	assert.Equal(t, "UTC", org.Settings["timezone"])
}

func TestCreateRejectsDuplicateSlug(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateOrganizationRequest{Name: "Acme"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, domain.CreateOrganizationRequest{Name: "Acme"})
	assert.ErrorIs(t, err, domain.ErrSlugTaken)
}

func TestAddMemberDefaultsToMemberRole(t *testing.T) {
	svc, node := newTestService(t)
	ctx := context.Background()

	org, err := svc.Create(ctx, domain.CreateOrganizationRequest{Name: "Acme"})
	require.NoError(t, err)

	member, err := svc.AddMember(ctx, org.ID, domain.AddMemberRequest{UserID: node.Generate()})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleMember, member.Role)
	assert.True(t, member.IsActive)
}

func TestAddMemberSingleMembershipRule(t *testing.T) {
	svc, node := newTestService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, domain.CreateOrganizationRequest{Name: "First"})
	require.NoError(t, err)
	second, err := svc.Create(ctx, domain.CreateOrganizationRequest{Name: "Second"})
	require.NoError(t, err)

	userID := node.Generate()
	_, err = svc.AddMember(ctx, first.ID, domain.AddMemberRequest{UserID: userID})
	require.NoError(t, err)

	_, err = svc.AddMember(ctx, first.ID, domain.AddMemberRequest{UserID: userID})
	assert.ErrorIs(t, err, domain.ErrMembershipExists)

	_, err = svc.AddMember(ctx, second.ID, domain.AddMemberRequest{UserID: userID})
	assert.ErrorIs(t, err, domain.ErrUserHasMembership)

	// Removing the membership frees the user to join elsewhere.
	require.NoError(t, svc.RemoveMember(ctx, first.ID, userID))

	_, err = svc.AddMember(ctx, second.ID, domain.AddMemberRequest{UserID: userID})
	require.NoError(t, err)
}

func TestAddMemberToInactiveOrganization(t *testing.T) {
	svc, node := newTestService(t)
	ctx := context.Background()

	org, err := svc.Create(ctx, domain.CreateOrganizationRequest{Name: "Acme"})
	require.NoError(t, err)
	require.NoError(t, svc.SetActive(ctx, org.ID, false))

	_, err = svc.AddMember(ctx, org.ID, domain.AddMemberRequest{UserID: node.Generate()})
	assert.ErrorIs(t, err, domain.ErrOrgInactive)
}

func TestDeactivationCascadesToMemberships(t *testing.T) {
	svc, node := newTestService(t)
	ctx := context.Background()

	org, err := svc.Create(ctx, domain.CreateOrganizationRequest{Name: "Acme"})
	require.NoError(t, err)

	userID := node.Generate()
	_, err = svc.AddMember(ctx, org.ID, domain.AddMemberRequest{UserID: userID, Role: domain.RoleAdmin})
	require.NoError(t, err)

	require.NoError(t, svc.SetActive(ctx, org.ID, false))

	resolved, err := svc.ResolveActor(ctx, domain.Actor{UserID: userID})
	require.NoError(t, err)
	assert.False(t, resolved.HasMembership())
}

func TestUpdateMemberRole(t *testing.T) {
	svc, node := newTestService(t)
	ctx := context.Background()

	org, err := svc.Create(ctx, domain.CreateOrganizationRequest{Name: "Acme"})
	require.NoError(t, err)

	userID := node.Generate()
	_, err = svc.AddMember(ctx, org.ID, domain.AddMemberRequest{UserID: userID})
	require.NoError(t, err)

	member, err := svc.UpdateMemberRole(ctx, org.ID, userID, domain.RoleManager)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleManager, member.Role)

	_, err = svc.UpdateMemberRole(ctx, org.ID, userID, domain.Role("OWNER"))
	assert.ErrorIs(t, err, domain.ErrInvalidRole)
}

func TestResolveActor(t *testing.T) {
	svc, node := newTestService(t)
	ctx := context.Background()

	org, err := svc.Create(ctx, domain.CreateOrganizationRequest{Name: "Acme"})
	require.NoError(t, err)

	userID := node.Generate()
	membership, err := svc.AddMember(ctx, org.ID, domain.AddMemberRequest{UserID: userID, Role: domain.RoleManager})
	require.NoError(t, err)

	t.Run("with membership", func(t *testing.T) {
		resolved, err := svc.ResolveActor(ctx, domain.Actor{UserID: userID})
		require.NoError(t, err)
		assert.Equal(t, org.ID, resolved.OrgID)
		assert.Equal(t, domain.RoleManager, resolved.Role)
		assert.Equal(t, membership.ID, resolved.MembershipID)
	})

	t.Run("without membership", func(t *testing.T) {
		resolved, err := svc.ResolveActor(ctx, domain.Actor{UserID: node.Generate()})
		require.NoError(t, err)
		assert.False(t, resolved.HasMembership())
	})

	t.Run("superuser skips membership lookup", func(t *testing.T) {
		resolved, err := svc.ResolveActor(ctx, domain.Actor{UserID: userID, IsSuperuser: true})
		require.NoError(t, err)
		assert.True(t, resolved.IsSuperuser)
		assert.False(t, resolved.HasMembership())
	})
}

func TestRoleCapabilities(t *testing.T) {
	admin := domain.Actor{UserID: 1, OrgID: 2, Role: domain.RoleAdmin}
	manager := domain.Actor{UserID: 1, OrgID: 2, Role: domain.RoleManager}
	member := domain.Actor{UserID: 1, OrgID: 2, Role: domain.RoleMember}

	assert.True(t, admin.Can(domain.CapManageMembers))
	assert.False(t, manager.Can(domain.CapManageMembers))

	assert.True(t, manager.Can(domain.CapManageWorkflows))
	assert.False(t, member.Can(domain.CapManageWorkflows))

	assert.True(t, manager.Can(domain.CapViewReports))
	assert.False(t, member.Can(domain.CapViewReports))

	// Capabilities never apply without a resolved membership.
	detached := domain.Actor{UserID: 1, Role: domain.RoleAdmin}
	assert.False(t, detached.Can(domain.CapManageMembers))
}
