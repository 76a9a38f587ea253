package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/CCxPL/task-management-system/pkg/db"

	"github.com/CCxPL/task-management-system/internal/organization/domain"
)

type service struct {
	db    *gorm.DB
	repo  domain.Repository
	genID *snowflake.Node
	log   *zap.Logger
}

func NewService(database *gorm.DB, repo domain.Repository, genID *snowflake.Node, log *zap.Logger) domain.Service {
	return &service{
		db:    database,
		repo:  repo,
		genID: genID,
		log:   log.Named("organization.service"),
	}
}

func (s *service) Create(ctx context.Context, req domain.CreateOrganizationRequest) (*domain.Organization, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	orgType := req.Type
	if orgType == "" {
		orgType = domain.OrgTypeCompany
	}
	if !orgType.Valid() {
		return nil, domain.ErrInvalidType
	}

	org := &domain.Organization{
		ID:       s.genID.Generate(),
		Name:     name,
		Slug:     slug.Make(name),
		Type:     orgType,
		Settings: normalizeSettings(req.Settings),
		IsActive: true,
	}

	if err := s.repo.CreateOrganization(ctx, org); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrSlugTaken
		}
		return nil, err
	}

	s.log.Info("organization created",
		zap.String("org_id", org.ID.String()),
		zap.String("slug", org.Slug),
	)
	return org, nil
}

func normalizeSettings(input map[string]any) datatypes.JSONMap {
	if len(input) == 0 {
		return datatypes.JSONMap{}
	}
	output := datatypes.JSONMap{}
	for key, value := range input {
		output[key] = value
	}
	return output
}

func (s *service) Get(ctx context.Context, id snowflake.ID) (*domain.Organization, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) Update(ctx context.Context, id snowflake.ID, req domain.UpdateOrganizationRequest) (*domain.Organization, error) {
	fields := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		// The slug is a stable external identifier and does not follow
		// renames.
		fields["name"] = name
	}
	if req.Settings != nil {
		fields["settings"] = normalizeSettings(req.Settings)
	}
	if len(fields) > 0 {
		fields["updated_at"] = time.Now().UTC()
		if err := s.repo.UpdateFields(ctx, id, fields); err != nil {
			return nil, err
		}
	}
	return s.repo.FindByID(ctx, id)
}

func (s *service) List(ctx context.Context) ([]domain.Organization, error) {
	return s.repo.List(ctx)
}

func (s *service) SetActive(ctx context.Context, id snowflake.ID, active bool) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if err := repo.UpdateFields(ctx, id, map[string]any{
			"is_active":  active,
			"updated_at": time.Now().UTC(),
		}); err != nil {
			return err
		}

		if !active {
			return repo.DeactivateMembers(ctx, id)
		}
		return nil
	})
}

func (s *service) AddMember(ctx context.Context, orgID snowflake.ID, req domain.AddMemberRequest) (*domain.OrganizationUser, error) {
	if req.UserID == 0 {
		return nil, domain.ErrInvalidUser
	}

	role := req.Role
	if role == "" {
		role = domain.RoleMember
	}
	if _, err := domain.ParseRole(string(role)); err != nil {
		return nil, err
	}

	org, err := s.repo.FindByID(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if !org.IsActive {
		return nil, domain.ErrOrgInactive
	}

	// A user belongs to at most one organization at a time. Checked here
	// rather than by a database constraint so deactivated memberships do
	// not block re-adding.
	if existing, err := s.repo.FindActiveMembership(ctx, req.UserID); err == nil {
		if existing.OrgID == orgID {
			return nil, domain.ErrMembershipExists
		}
		return nil, domain.ErrUserHasMembership
	} else if !errors.Is(err, domain.ErrMembershipNotFound) {
		return nil, err
	}

	member := &domain.OrganizationUser{
		ID:       s.genID.Generate(),
		OrgID:    orgID,
		UserID:   req.UserID,
		Role:     role,
		IsActive: true,
	}
	if err := s.repo.AddMember(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

func (s *service) ListMembers(ctx context.Context, orgID snowflake.ID) ([]domain.OrganizationUser, error) {
	return s.repo.ListMembers(ctx, orgID)
}

func (s *service) UpdateMemberRole(ctx context.Context, orgID, userID snowflake.ID, role domain.Role) (*domain.OrganizationUser, error) {
	if _, err := domain.ParseRole(string(role)); err != nil {
		return nil, err
	}

	member, err := s.repo.FindMembership(ctx, orgID, userID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateMemberFields(ctx, member.ID, map[string]any{
		"role":       role,
		"updated_at": time.Now().UTC(),
	}); err != nil {
		return nil, err
	}

	member.Role = role
	return member, nil
}

func (s *service) RemoveMember(ctx context.Context, orgID, userID snowflake.ID) error {
	member, err := s.repo.FindMembership(ctx, orgID, userID)
	if err != nil {
		return err
	}
	return s.repo.UpdateMemberFields(ctx, member.ID, map[string]any{
		"is_active":  false,
		"updated_at": time.Now().UTC(),
	})
}

func (s *service) ResolveActor(ctx context.Context, base domain.Actor) (domain.Actor, error) {
	if base.IsSuperuser {
		return base, nil
	}

	member, err := s.repo.FindActiveMembership(ctx, base.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrMembershipNotFound) {
			return base, nil
		}
		return base, err
	}

	base.OrgID = member.OrgID
	base.Role = member.Role
	base.MembershipID = member.ID
	return base, nil
}
