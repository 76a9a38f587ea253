package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"

	"github.com/CCxPL/task-management-system/pkg/db"

	orgdomain "github.com/CCxPL/task-management-system/internal/organization/domain"
	"github.com/CCxPL/task-management-system/internal/project/domain"
)

var keyPattern = regexp.MustCompile(`^[A-Z][A-Z0-9]{1,9}$`)

type service struct {
	repo    domain.Repository
	orgRepo orgdomain.Repository
	genID   *snowflake.Node
	log     *zap.Logger
}

func NewService(repo domain.Repository, orgRepo orgdomain.Repository, genID *snowflake.Node, log *zap.Logger) domain.Service {
	return &service{
		repo:    repo,
		orgRepo: orgRepo,
		genID:   genID,
		log:     log.Named("project.service"),
	}
}

func (s *service) Create(ctx context.Context, orgID snowflake.ID, req domain.CreateProjectRequest) (*domain.Project, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	key := strings.ToUpper(strings.TrimSpace(req.Key))
	if !keyPattern.MatchString(key) {
		return nil, domain.ErrInvalidKey
	}

	project := &domain.Project{
		ID:          s.genID.Generate(),
		OrgID:       orgID,
		Name:        name,
		Key:         key,
		Description: strings.TrimSpace(req.Description),
		IsActive:    true,
	}

	if err := s.repo.Create(ctx, project); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrKeyTaken
		}
		return nil, err
	}

	s.log.Info("project created",
		zap.String("org_id", orgID.String()),
		zap.String("project_id", project.ID.String()),
		zap.String("key", project.Key),
	)
	return project, nil
}

func (s *service) Get(ctx context.Context, orgID, id snowflake.ID) (*domain.Project, error) {
	return s.repo.FindByID(ctx, orgID, id)
}

func (s *service) List(ctx context.Context, orgID snowflake.ID) ([]domain.Project, error) {
	return s.repo.List(ctx, orgID)
}

func (s *service) Update(ctx context.Context, orgID, id snowflake.ID, req domain.UpdateProjectRequest) (*domain.Project, error) {
	fields := map[string]any{"updated_at": time.Now().UTC()}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		fields["name"] = name
	}
	if req.Description != nil {
		fields["description"] = strings.TrimSpace(*req.Description)
	}
	if req.IsActive != nil {
		fields["is_active"] = *req.IsActive
	}

	if err := s.repo.UpdateFields(ctx, orgID, id, fields); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, orgID, id)
}

func (s *service) AddMember(ctx context.Context, orgID, projectID snowflake.ID, req domain.AddMemberRequest) (*domain.ProjectMember, error) {
	role := req.Role
	if role == "" {
		role = domain.ProjectRoleMember
	}
	if !role.Valid() {
		return nil, domain.ErrInvalidRole
	}

	if _, err := s.repo.FindByID(ctx, orgID, projectID); err != nil {
		return nil, err
	}

	// Project membership requires an active organization membership.
	if _, err := s.orgRepo.FindMembership(ctx, orgID, req.UserID); err != nil {
		if errors.Is(err, orgdomain.ErrMembershipNotFound) {
			return nil, domain.ErrMemberNotInOrg
		}
		return nil, err
	}

	// Removed members keep their row deactivated; re-adding reactivates
	// it instead of violating the project/user unique index.
	if existing, err := s.repo.FindMemberAny(ctx, projectID, req.UserID); err == nil {
		if existing.IsActive {
			return nil, domain.ErrMemberExists
		}
		if err := s.repo.UpdateMemberFields(ctx, existing.ID, map[string]any{
			"role":       role,
			"is_active":  true,
			"updated_at": time.Now().UTC(),
		}); err != nil {
			return nil, err
		}
		existing.Role = role
		existing.IsActive = true
		return existing, nil
	} else if !errors.Is(err, domain.ErrMemberNotFound) {
		return nil, err
	}

	member := &domain.ProjectMember{
		ID:        s.genID.Generate(),
		ProjectID: projectID,
		UserID:    req.UserID,
		Role:      role,
		IsActive:  true,
	}
	if err := s.repo.AddMember(ctx, member); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrMemberExists
		}
		return nil, err
	}
	return member, nil
}

func (s *service) ListMembers(ctx context.Context, orgID, projectID snowflake.ID) ([]domain.ProjectMember, error) {
	if _, err := s.repo.FindByID(ctx, orgID, projectID); err != nil {
		return nil, err
	}
	return s.repo.ListMembers(ctx, projectID)
}

func (s *service) RemoveMember(ctx context.Context, orgID, projectID, userID snowflake.ID) error {
	if _, err := s.repo.FindByID(ctx, orgID, projectID); err != nil {
		return err
	}
	return s.repo.RemoveMember(ctx, projectID, userID)
}

func (s *service) IsProjectAdmin(ctx context.Context, projectID, userID snowflake.ID) (bool, error) {
	member, err := s.repo.FindMember(ctx, projectID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrMemberNotFound) {
			return false, nil
		}
		return false, err
	}
	return member.Role == domain.ProjectRoleAdmin, nil
}
