package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/CCxPL/task-management-system/internal/config"
	"github.com/CCxPL/task-management-system/internal/observability/metrics"
	projectdomain "github.com/CCxPL/task-management-system/internal/project/domain"
	"github.com/CCxPL/task-management-system/internal/workflow/domain"
	"github.com/CCxPL/task-management-system/pkg/db"
)

// reorderOffset moves statuses into a temporary order band during reorders
// so the (workflow, sort_order) unique constraint never trips transiently.
// It must exceed any legitimate order value.
const reorderOffset = 1_000_000

type service struct {
	db          *gorm.DB
	repo        domain.Repository
	projectRepo projectdomain.Repository
	board       *config.BoardConfigHolder
	genID       *snowflake.Node
	metrics     *metrics.Metrics
	log         *zap.Logger
}

func NewService(
	database *gorm.DB,
	repo domain.Repository,
	projectRepo projectdomain.Repository,
	board *config.BoardConfigHolder,
	genID *snowflake.Node,
	m *metrics.Metrics,
	log *zap.Logger,
) domain.Service {
	return &service{
		db:          database,
		repo:        repo,
		projectRepo: projectRepo,
		board:       board,
		genID:       genID,
		metrics:     m,
		log:         log.Named("workflow.service"),
	}
}

func (s *service) Create(ctx context.Context, orgID snowflake.ID, req domain.CreateWorkflowRequest) (*domain.ResolvedWorkflow, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	if req.ProjectID != nil {
		if _, err := s.projectRepo.FindByID(ctx, orgID, *req.ProjectID); err != nil {
			return nil, err
		}
	}

	workflow := &domain.Workflow{
		ID:        s.genID.Generate(),
		OrgID:     orgID,
		ProjectID: req.ProjectID,
		Name:      name,
		IsActive:  true,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if req.ProjectID != nil {
			if err := repo.DetachProjectExcept(ctx, *req.ProjectID, workflow.ID); err != nil {
				return err
			}
		}
		if err := repo.CreateWorkflow(ctx, workflow); err != nil {
			return err
		}
		if req.SetAsDefault {
			if err := repo.ClearDefaultExcept(ctx, orgID, workflow.ID); err != nil {
				return err
			}
			if err := repo.UpdateWorkflowFields(ctx, orgID, workflow.ID, map[string]any{"is_default": true}); err != nil {
				return err
			}
			workflow.IsDefault = true
		}

		return s.provisionDefaults(ctx, repo, workflow)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordWorkflowProvisioned(ctx, orgID.String())
	s.log.Info("workflow created",
		zap.String("org_id", orgID.String()),
		zap.String("workflow_id", workflow.ID.String()),
		zap.String("name", workflow.Name),
	)
	return s.resolved(ctx, workflow)
}

func (s *service) Get(ctx context.Context, orgID, id snowflake.ID) (*domain.ResolvedWorkflow, error) {
	workflow, err := s.repo.FindWorkflowByID(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	return s.resolved(ctx, workflow)
}

func (s *service) List(ctx context.Context, orgID snowflake.ID) ([]domain.Workflow, error) {
	return s.repo.ListWorkflows(ctx, orgID)
}

func (s *service) Update(ctx context.Context, orgID, id snowflake.ID, req domain.UpdateWorkflowRequest) (*domain.Workflow, error) {
	fields := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		fields["name"] = name
	}
	if req.IsActive != nil {
		fields["is_active"] = *req.IsActive
	}
	if len(fields) > 0 {
		fields["updated_at"] = time.Now().UTC()
		if err := s.repo.UpdateWorkflowFields(ctx, orgID, id, fields); err != nil {
			return nil, err
		}
	}
	return s.repo.FindWorkflowByID(ctx, orgID, id)
}

func (s *service) Delete(ctx context.Context, orgID, id snowflake.ID) error {
	workflow, err := s.repo.FindWorkflowByID(ctx, orgID, id)
	if err != nil {
		return err
	}
	if workflow.IsDefault {
		return domain.ErrWorkflowIsDefault
	}

	count, err := s.repo.CountIssuesByWorkflow(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return domain.ErrWorkflowInUse
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		statuses, err := repo.ListStatuses(ctx, id)
		if err != nil {
			return err
		}
		for _, status := range statuses {
			if err := repo.DeleteTransitionsByStatus(ctx, status.ID); err != nil {
				return err
			}
			if err := repo.DeleteStatus(ctx, status.ID); err != nil {
				return err
			}
		}
		return repo.DeleteWorkflow(ctx, orgID, id)
	})
}

func (s *service) AddStatus(ctx context.Context, orgID, workflowID snowflake.ID, req domain.AddStatusRequest) (*domain.WorkflowStatus, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidStatusName
	}

	if _, err := s.repo.FindWorkflowByID(ctx, orgID, workflowID); err != nil {
		return nil, err
	}

	status := &domain.WorkflowStatus{
		ID:         s.genID.Generate(),
		WorkflowID: workflowID,
		Name:       name,
		Color:      strings.TrimSpace(req.Color),
	}
	if req.IsStart != nil {
		status.IsStart = *req.IsStart
	}
	if req.IsTerminal != nil {
		status.IsTerminal = *req.IsTerminal
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		uniqueSlug, err := s.uniqueSlug(ctx, repo, workflowID, name)
		if err != nil {
			return err
		}
		status.Slug = uniqueSlug

		if req.Order != nil && *req.Order > 0 {
			status.SortOrder = *req.Order
		} else {
			highest, err := repo.MaxOrder(ctx, workflowID)
			if err != nil {
				return err
			}
			status.SortOrder = highest + 1
		}

		if err := repo.CreateStatus(ctx, status); err != nil {
			// The slug is uniquified above, so a duplicate here is the
			// (workflow_id, sort_order) index.
			if db.IsDuplicateKeyErr(err) {
				return domain.ErrOrderTaken
			}
			return err
		}
		if status.IsStart {
			if err := repo.ClearFlagExcept(ctx, workflowID, status.ID, "is_start"); err != nil {
				return err
			}
		}
		if status.IsTerminal {
			if err := repo.ClearFlagExcept(ctx, workflowID, status.ID, "is_terminal"); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return status, nil
}

func (s *service) UpdateStatus(ctx context.Context, orgID, workflowID, statusID snowflake.ID, req domain.UpdateStatusRequest) (*domain.WorkflowStatus, error) {
	if _, err := s.repo.FindWorkflowByID(ctx, orgID, workflowID); err != nil {
		return nil, err
	}

	if _, err := s.statusInWorkflow(ctx, workflowID, statusID); err != nil {
		return nil, err
	}

	fields := map[string]any{"updated_at": time.Now().UTC()}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidStatusName
		}
		fields["name"] = name
	}
	if req.Color != nil {
		fields["color"] = strings.TrimSpace(*req.Color)
	}
	if req.IsStart != nil {
		fields["is_start"] = *req.IsStart
	}
	if req.IsTerminal != nil {
		fields["is_terminal"] = *req.IsTerminal
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if err := repo.UpdateStatusFields(ctx, statusID, fields); err != nil {
			return err
		}
		if req.IsStart != nil && *req.IsStart {
			if err := repo.ClearFlagExcept(ctx, workflowID, statusID, "is_start"); err != nil {
				return err
			}
		}
		if req.IsTerminal != nil && *req.IsTerminal {
			if err := repo.ClearFlagExcept(ctx, workflowID, statusID, "is_terminal"); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.repo.FindStatusByID(ctx, statusID)
}

func (s *service) DeleteStatus(ctx context.Context, orgID, workflowID, statusID snowflake.ID) error {
	if _, err := s.repo.FindWorkflowByID(ctx, orgID, workflowID); err != nil {
		return err
	}
	if _, err := s.statusInWorkflow(ctx, workflowID, statusID); err != nil {
		return err
	}

	inUse, err := s.repo.CountIssuesByStatus(ctx, statusID)
	if err != nil {
		return err
	}
	if inUse > 0 {
		return domain.ErrStatusInUse
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if err := repo.DeleteTransitionsByStatus(ctx, statusID); err != nil {
			return err
		}
		return repo.DeleteStatus(ctx, statusID)
	})
}

func (s *service) Reorder(ctx context.Context, orgID, workflowID snowflake.ID, statusIDs []snowflake.ID) ([]domain.WorkflowStatus, error) {
	if _, err := s.repo.FindWorkflowByID(ctx, orgID, workflowID); err != nil {
		return nil, err
	}

	current, err := s.repo.ListStatuses(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	if len(statusIDs) != len(current) {
		return nil, domain.ErrInvalidOrderSet
	}
	existing := make(map[snowflake.ID]struct{}, len(current))
	for _, st := range current {
		existing[st.ID] = struct{}{}
	}
	seen := make(map[snowflake.ID]struct{}, len(statusIDs))
	for _, id := range statusIDs {
		if _, ok := existing[id]; !ok {
			return nil, domain.ErrInvalidOrderSet
		}
		if _, dup := seen[id]; dup {
			return nil, domain.ErrInvalidOrderSet
		}
		seen[id] = struct{}{}
	}

	// Two phases: park every status in a high order band, then settle
	// each into its final 1-based position. Assigning final values
	// directly would collide with still-unmoved rows on the unique
	// (workflow, sort_order) index.
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if err := repo.ShiftOrders(ctx, workflowID, statusIDs, reorderOffset); err != nil {
			return err
		}
		for position, id := range statusIDs {
			if err := repo.SetOrder(ctx, id, position+1); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.repo.ListStatuses(ctx, workflowID)
}

func (s *service) AddTransition(ctx context.Context, orgID, workflowID, fromID, toID snowflake.ID) (*domain.WorkflowTransition, error) {
	if fromID == toID {
		return nil, domain.ErrSelfTransition
	}
	if _, err := s.repo.FindWorkflowByID(ctx, orgID, workflowID); err != nil {
		return nil, err
	}
	if _, err := s.statusInWorkflow(ctx, workflowID, fromID); err != nil {
		return nil, err
	}
	if _, err := s.statusInWorkflow(ctx, workflowID, toID); err != nil {
		return nil, err
	}

	// Get-or-create keeps the operation idempotent on the unique triple.
	if existing, err := s.repo.FindTransition(ctx, workflowID, fromID, toID); err == nil {
		return existing, nil
	} else if !errors.Is(err, domain.ErrTransitionNotFound) {
		return nil, err
	}

	transition := &domain.WorkflowTransition{
		ID:           s.genID.Generate(),
		WorkflowID:   workflowID,
		FromStatusID: fromID,
		ToStatusID:   toID,
	}
	if err := s.repo.CreateTransition(ctx, transition); err != nil {
		return nil, err
	}
	return transition, nil
}

func (s *service) DeleteTransition(ctx context.Context, orgID, workflowID, transitionID snowflake.ID) error {
	if _, err := s.repo.FindWorkflowByID(ctx, orgID, workflowID); err != nil {
		return err
	}
	transition, err := s.repo.FindTransitionByID(ctx, workflowID, transitionID)
	if err != nil {
		return err
	}
	return s.repo.DeleteTransition(ctx, transition.ID)
}

func (s *service) AutoCreateTransitions(ctx context.Context, orgID, workflowID snowflake.ID) (int, error) {
	if _, err := s.repo.FindWorkflowByID(ctx, orgID, workflowID); err != nil {
		return 0, err
	}

	statuses, err := s.repo.ListStatuses(ctx, workflowID)
	if err != nil {
		return 0, err
	}
	transitions, err := s.repo.ListTransitions(ctx, workflowID)
	if err != nil {
		return 0, err
	}

	type edge struct{ from, to snowflake.ID }
	existing := make(map[edge]struct{}, len(transitions))
	for _, t := range transitions {
		existing[edge{t.FromStatusID, t.ToStatusID}] = struct{}{}
	}

	created := 0
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		for _, from := range statuses {
			for _, to := range statuses {
				if from.ID == to.ID {
					continue
				}
				if _, ok := existing[edge{from.ID, to.ID}]; ok {
					continue
				}
				if err := repo.CreateTransition(ctx, &domain.WorkflowTransition{
					ID:           s.genID.Generate(),
					WorkflowID:   workflowID,
					FromStatusID: from.ID,
					ToStatusID:   to.ID,
				}); err != nil {
					return err
				}
				created++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}

func (s *service) SetDefault(ctx context.Context, orgID, workflowID snowflake.ID) error {
	if _, err := s.repo.FindWorkflowByID(ctx, orgID, workflowID); err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if err := repo.ClearDefaultExcept(ctx, orgID, workflowID); err != nil {
			return err
		}
		return repo.UpdateWorkflowFields(ctx, orgID, workflowID, map[string]any{
			"is_default": true,
			"updated_at": time.Now().UTC(),
		})
	})
}

func (s *service) AssignToProject(ctx context.Context, orgID, workflowID, projectID snowflake.ID) error {
	if _, err := s.repo.FindWorkflowByID(ctx, orgID, workflowID); err != nil {
		return err
	}
	if _, err := s.projectRepo.FindByID(ctx, orgID, projectID); err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if err := repo.DetachProjectExcept(ctx, projectID, workflowID); err != nil {
			return err
		}
		return repo.UpdateWorkflowFields(ctx, orgID, workflowID, map[string]any{
			"project_id": projectID,
			"updated_at": time.Now().UTC(),
		})
	})
}

func (s *service) Resolve(ctx context.Context, orgID, projectID snowflake.ID) (*domain.ResolvedWorkflow, error) {
	if _, err := s.projectRepo.FindByID(ctx, orgID, projectID); err != nil {
		return nil, err
	}

	workflow, err := s.repo.FindWorkflowByProject(ctx, orgID, projectID)
	if err == nil && workflow.IsActive {
		return s.resolved(ctx, workflow)
	}
	if err != nil && !errors.Is(err, domain.ErrWorkflowNotFound) {
		return nil, err
	}

	workflow, err = s.repo.FindDefaultWorkflow(ctx, orgID)
	if err != nil {
		if errors.Is(err, domain.ErrWorkflowNotFound) {
			return nil, domain.ErrWorkflowNotConfigured
		}
		return nil, err
	}
	return s.resolved(ctx, workflow)
}

func (s *service) resolved(ctx context.Context, workflow *domain.Workflow) (*domain.ResolvedWorkflow, error) {
	statuses, err := s.repo.ListStatuses(ctx, workflow.ID)
	if err != nil {
		return nil, err
	}
	transitions, err := s.repo.ListTransitions(ctx, workflow.ID)
	if err != nil {
		return nil, err
	}
	return &domain.ResolvedWorkflow{
		Workflow:    *workflow,
		Statuses:    statuses,
		Transitions: transitions,
	}, nil
}

func (s *service) statusInWorkflow(ctx context.Context, workflowID, statusID snowflake.ID) (*domain.WorkflowStatus, error) {
	status, err := s.repo.FindStatusByID(ctx, statusID)
	if err != nil {
		return nil, err
	}
	if status.WorkflowID != workflowID {
		return nil, domain.ErrStatusNotInWorkflow
	}
	return status, nil
}

// uniqueSlug lower-kebab-cases the name and appends -1, -2, ... until the
// slug is free within the workflow.
func (s *service) uniqueSlug(ctx context.Context, repo domain.Repository, workflowID snowflake.ID, name string) (string, error) {
	base := slug.Make(name)
	candidate := base
	for i := 1; ; i++ {
		_, err := repo.FindStatusBySlug(ctx, workflowID, candidate)
		if errors.Is(err, domain.ErrStatusNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}
