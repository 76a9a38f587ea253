package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"

	projectdomain "github.com/CCxPL/task-management-system/internal/project/domain"
	"github.com/CCxPL/task-management-system/internal/sprint/domain"
)

type service struct {
	repo        domain.Repository
	projectRepo projectdomain.Repository
	genID       *snowflake.Node
	log         *zap.Logger
}

func NewService(repo domain.Repository, projectRepo projectdomain.Repository, genID *snowflake.Node, log *zap.Logger) domain.Service {
	return &service{
		repo:        repo,
		projectRepo: projectRepo,
		genID:       genID,
		log:         log.Named("sprint.service"),
	}
}

func (s *service) Create(ctx context.Context, orgID snowflake.ID, req domain.CreateSprintRequest) (*domain.Sprint, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	if req.StartDate != nil && req.EndDate != nil && req.EndDate.Before(*req.StartDate) {
		return nil, domain.ErrInvalidDates
	}

	if _, err := s.projectRepo.FindByID(ctx, orgID, req.ProjectID); err != nil {
		return nil, err
	}

	sprint := &domain.Sprint{
		ID:        s.genID.Generate(),
		ProjectID: req.ProjectID,
		Name:      name,
		Goal:      strings.TrimSpace(req.Goal),
		State:     domain.StatePlanned,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	}
	if err := s.repo.Create(ctx, sprint); err != nil {
		return nil, err
	}
	return sprint, nil
}

func (s *service) Get(ctx context.Context, orgID, id snowflake.ID) (*domain.Sprint, error) {
	return s.scoped(ctx, orgID, id)
}

func (s *service) List(ctx context.Context, orgID, projectID snowflake.ID) ([]domain.Sprint, error) {
	if _, err := s.projectRepo.FindByID(ctx, orgID, projectID); err != nil {
		return nil, err
	}
	return s.repo.ListByProject(ctx, projectID)
}

func (s *service) Update(ctx context.Context, orgID, id snowflake.ID, req domain.UpdateSprintRequest) (*domain.Sprint, error) {
	sprint, err := s.scoped(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if sprint.State == domain.StateCompleted {
		return nil, domain.ErrSprintCompleted
	}

	fields := map[string]any{"updated_at": time.Now().UTC()}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		fields["name"] = name
	}
	if req.Goal != nil {
		fields["goal"] = strings.TrimSpace(*req.Goal)
	}
	if req.StartDate != nil {
		fields["start_date"] = *req.StartDate
	}
	if req.EndDate != nil {
		fields["end_date"] = *req.EndDate
	}

	if err := s.repo.UpdateFields(ctx, id, fields); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}

func (s *service) Advance(ctx context.Context, orgID, id snowflake.ID) (*domain.Sprint, error) {
	sprint, err := s.scoped(ctx, orgID, id)
	if err != nil {
		return nil, err
	}

	var next domain.SprintState
	switch sprint.State {
	case domain.StatePlanned:
		next = domain.StateActive
	case domain.StateActive:
		next = domain.StateCompleted
	default:
		return nil, domain.ErrSprintCompleted
	}

	if err := s.repo.UpdateFields(ctx, id, map[string]any{
		"state":      next,
		"updated_at": time.Now().UTC(),
	}); err != nil {
		return nil, err
	}
	sprint.State = next
	return sprint, nil
}

func (s *service) Delete(ctx context.Context, orgID, id snowflake.ID) error {
	if _, err := s.scoped(ctx, orgID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *service) scoped(ctx context.Context, orgID, id snowflake.ID) (*domain.Sprint, error) {
	sprint, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.projectRepo.FindByID(ctx, orgID, sprint.ProjectID); err != nil {
		return nil, domain.ErrSprintNotFound
	}
	return sprint, nil
}
