package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/CCxPL/task-management-system/pkg/db"

	"github.com/CCxPL/task-management-system/internal/issue/domain"
	"github.com/CCxPL/task-management-system/internal/observability/metrics"
	orgdomain "github.com/CCxPL/task-management-system/internal/organization/domain"
	projectdomain "github.com/CCxPL/task-management-system/internal/project/domain"
	workflowdomain "github.com/CCxPL/task-management-system/internal/workflow/domain"
)

const keyGenAttempts = 3

type service struct {
	db           *gorm.DB
	repo         domain.Repository
	projectRepo  projectdomain.Repository
	workflowRepo workflowdomain.Repository
	workflowSvc  workflowdomain.Service
	genID        *snowflake.Node
	metrics      *metrics.Metrics
	log          *zap.Logger
}

func NewService(
	database *gorm.DB,
	repo domain.Repository,
	projectRepo projectdomain.Repository,
	workflowRepo workflowdomain.Repository,
	workflowSvc workflowdomain.Service,
	genID *snowflake.Node,
	m *metrics.Metrics,
	log *zap.Logger,
) domain.Service {
	return &service{
		db:           database,
		repo:         repo,
		projectRepo:  projectRepo,
		workflowRepo: workflowRepo,
		workflowSvc:  workflowSvc,
		genID:        genID,
		metrics:      m,
		log:          log.Named("issue.service"),
	}
}

func (s *service) Create(ctx context.Context, actor orgdomain.Actor, req domain.CreateIssueRequest) (*domain.Issue, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, domain.ErrInvalidTitle
	}

	issueType := req.Type
	if issueType == "" {
		issueType = domain.TypeTask
	}
	if !issueType.Valid() {
		return nil, domain.ErrInvalidType
	}

	priority := req.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}
	if !priority.Valid() {
		return nil, domain.ErrInvalidPriority
	}

	project, err := s.projectRepo.FindByID(ctx, actor.OrgID, req.ProjectID)
	if err != nil {
		return nil, err
	}

	issue := &domain.Issue{
		ID:          s.genID.Generate(),
		ProjectID:   project.ID,
		SprintID:    req.SprintID,
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		Type:        issueType,
		Priority:    priority,
		AssigneeID:  req.AssigneeID,
		ReporterID:  actor.UserID,
		Labels:      pq.StringArray(req.Labels),
		StoryPoints: req.StoryPoints,
		DueDate:     req.DueDate,
	}

	// New issues land on the resolved workflow's start status. Projects
	// without a configured workflow get issues with no status; those
	// display as BACKLOG and cannot transition until backfilled.
	if resolved, err := s.workflowSvc.Resolve(ctx, actor.OrgID, project.ID); err == nil {
		if start := startStatus(resolved.Statuses); start != nil {
			issue.WorkflowStatusID = &start.ID
		}
	} else if !errors.Is(err, workflowdomain.ErrWorkflowNotConfigured) {
		return nil, err
	}

	if err := s.createWithKey(ctx, project, issue); err != nil {
		return nil, err
	}

	s.metrics.RecordIssueCreated(ctx, actor.OrgID.String())
	s.log.Info("issue created",
		zap.String("org_id", actor.OrgID.String()),
		zap.String("project_id", project.ID.String()),
		zap.String("issue_key", issue.Key),
	)
	return issue, nil
}

// createWithKey assigns the next sequential key within the project and
// retries on the rare duplicate when two creations race.
func (s *service) createWithKey(ctx context.Context, project *projectdomain.Project, issue *domain.Issue) error {
	var lastErr error
	for attempt := 0; attempt < keyGenAttempts; attempt++ {
		count, err := s.repo.CountByProject(ctx, project.ID)
		if err != nil {
			return err
		}
		issue.Key = fmt.Sprintf("%s-%d", project.Key, count+int64(attempt)+1)

		if err := s.repo.Create(ctx, issue); err != nil {
			if db.IsDuplicateKeyErr(err) {
				lastErr = err
				continue
			}
			return err
		}
		return nil
	}
	return lastErr
}

func (s *service) Get(ctx context.Context, actor orgdomain.Actor, id snowflake.ID) (*domain.Issue, error) {
	issue, _, err := s.scopedIssue(ctx, actor, id)
	return issue, err
}

func (s *service) List(ctx context.Context, actor orgdomain.Actor, filter domain.ListFilter) ([]*domain.Issue, error) {
	if _, err := s.projectRepo.FindByID(ctx, actor.OrgID, filter.ProjectID); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, filter)
}

func (s *service) Update(ctx context.Context, actor orgdomain.Actor, id snowflake.ID, req domain.UpdateIssueRequest) (*domain.Issue, error) {
	if _, _, err := s.scopedIssue(ctx, actor, id); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, domain.ErrInvalidTitle
		}
		fields["title"] = title
	}
	if req.Description != nil {
		fields["description"] = strings.TrimSpace(*req.Description)
	}
	if req.Type != nil {
		if !req.Type.Valid() {
			return nil, domain.ErrInvalidType
		}
		fields["type"] = *req.Type
	}
	if req.Priority != nil {
		if !req.Priority.Valid() {
			return nil, domain.ErrInvalidPriority
		}
		fields["priority"] = *req.Priority
	}
	if req.AssigneeID != nil {
		fields["assignee_id"] = *req.AssigneeID
	}
	if req.SprintID != nil {
		fields["sprint_id"] = *req.SprintID
	}
	if req.Labels != nil {
		fields["labels"] = pq.StringArray(*req.Labels)
	}
	if req.StoryPoints != nil {
		fields["story_points"] = *req.StoryPoints
	}
	if req.DueDate != nil {
		fields["due_date"] = *req.DueDate
	}

	if len(fields) > 0 {
		if err := s.repo.UpdateFields(ctx, id, fields); err != nil {
			return nil, err
		}
	}
	return s.repo.FindByID(ctx, id)
}

func (s *service) Delete(ctx context.Context, actor orgdomain.Actor, id snowflake.ID) error {
	issue, _, err := s.scopedIssue(ctx, actor, id)
	if err != nil {
		return err
	}
	if !actor.Can(orgdomain.CapManageProjects) && issue.ReporterID != actor.UserID {
		return domain.ErrPermissionDenied
	}
	return s.repo.Delete(ctx, id)
}

func (s *service) UpdateStatus(ctx context.Context, actor orgdomain.Actor, issueID snowflake.ID, requestedToken string) (*domain.StatusChangeResult, error) {
	token := strings.TrimSpace(requestedToken)
	if token == "" {
		return nil, domain.ErrMissingStatus
	}

	issue, err := s.repo.FindByID(ctx, issueID)
	if err != nil {
		return nil, err
	}
	project, err := s.projectRepo.FindByIDUnscoped(ctx, issue.ProjectID)
	if err != nil {
		return nil, err
	}

	allowed := actor.Role == orgdomain.RoleAdmin || actor.Role == orgdomain.RoleManager
	if !allowed {
		member, err := s.projectRepo.FindMember(ctx, project.ID, actor.UserID)
		if err == nil && member.Role == projectdomain.ProjectRoleAdmin {
			allowed = true
		} else if err != nil && !errors.Is(err, projectdomain.ErrMemberNotFound) {
			return nil, err
		}
	}
	if !allowed && issue.AssigneeID != nil && *issue.AssigneeID == actor.UserID {
		allowed = true
	}
	if !allowed {
		s.metrics.RecordTransitionRejected(ctx, actor.OrgID.String(), "permission")
		return nil, domain.ErrPermissionDenied
	}

	if !actor.HasMembership() || project.OrgID != actor.OrgID {
		s.metrics.RecordTransitionRejected(ctx, actor.OrgID.String(), "cross_org")
		return nil, domain.ErrCrossOrganization
	}

	if issue.WorkflowStatusID == nil {
		s.metrics.RecordTransitionRejected(ctx, actor.OrgID.String(), "no_status")
		return nil, domain.ErrNoWorkflowStatus
	}

	targetSlug := workflowdomain.SlugForToken(token)

	// The transition check and the write run under one transaction with
	// the issue row locked, so concurrent moves of the same issue cannot
	// interleave between check and apply.
	var result *domain.StatusChangeResult
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		wfRepo := s.workflowRepo.WithTx(tx)

		locked, err := repo.FindByIDForUpdate(ctx, issueID)
		if err != nil {
			return err
		}
		if locked.WorkflowStatusID == nil {
			return domain.ErrNoWorkflowStatus
		}

		current, err := wfRepo.FindStatusByID(ctx, *locked.WorkflowStatusID)
		if err != nil {
			return err
		}

		target, err := wfRepo.FindStatusBySlug(ctx, current.WorkflowID, targetSlug)
		if err != nil {
			if errors.Is(err, workflowdomain.ErrStatusNotFound) {
				slugs, slugErr := wfRepo.ListStatusSlugs(ctx, current.WorkflowID)
				if slugErr != nil {
					return slugErr
				}
				return &workflowdomain.InvalidStatusError{Requested: targetSlug, Available: slugs}
			}
			return err
		}

		if current.ID == target.ID {
			result = &domain.StatusChangeResult{
				IssueID:    locked.ID,
				IssueKey:   locked.Key,
				FromStatus: current.Slug,
				ToStatus:   current.Slug,
				Status:     workflowdomain.TokenForSlug(current.Slug),
				Message:    "Issue already in this status",
			}
			return nil
		}

		if _, err := wfRepo.FindTransition(ctx, current.WorkflowID, current.ID, target.ID); err != nil {
			if errors.Is(err, workflowdomain.ErrTransitionNotFound) {
				available, availErr := s.outgoingSlugs(ctx, wfRepo, current)
				if availErr != nil {
					return availErr
				}
				return &workflowdomain.InvalidTransitionError{
					From:      current.Slug,
					To:        target.Slug,
					Available: available,
				}
			}
			return err
		}

		if err := repo.SetWorkflowStatus(ctx, locked.ID, target.ID); err != nil {
			return err
		}

		result = &domain.StatusChangeResult{
			IssueID:    locked.ID,
			IssueKey:   locked.Key,
			FromStatus: current.Slug,
			ToStatus:   target.Slug,
			Status:     workflowdomain.TokenForSlug(target.Slug),
			Message:    "Issue status updated",
		}
		return nil
	})
	if err != nil {
		// Infrastructure failures are not rejections and stay out of the
		// rejected-transitions counter.
		if reason, rejected := transitionRejectReason(err); rejected {
			s.metrics.RecordTransitionRejected(ctx, actor.OrgID.String(), reason)
		}
		return nil, err
	}

	s.metrics.RecordTransitionApplied(ctx, actor.OrgID.String())
	s.log.Info("issue status changed",
		zap.String("issue_key", result.IssueKey),
		zap.String("from", result.FromStatus),
		zap.String("to", result.ToStatus),
	)
	return result, nil
}

// transitionRejectReason maps a status-change failure to its metric label.
// The second return is false for errors that are not workflow rejections.
func transitionRejectReason(err error) (string, bool) {
	var invalidStatus *workflowdomain.InvalidStatusError
	var invalidTransition *workflowdomain.InvalidTransitionError
	switch {
	case errors.As(err, &invalidStatus):
		return "invalid_status", true
	case errors.As(err, &invalidTransition):
		return "invalid_transition", true
	case errors.Is(err, domain.ErrNoWorkflowStatus):
		return "no_status", true
	default:
		return "", false
	}
}

func (s *service) Board(ctx context.Context, actor orgdomain.Actor, projectID snowflake.ID) (*domain.BoardView, error) {
	if _, err := s.projectRepo.FindByID(ctx, actor.OrgID, projectID); err != nil {
		return nil, err
	}

	resolved, err := s.workflowSvc.Resolve(ctx, actor.OrgID, projectID)
	if err != nil {
		return nil, err
	}

	issues, err := s.repo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	byStatus := make(map[snowflake.ID][]*domain.Issue)
	var unassigned []*domain.Issue
	for _, issue := range issues {
		if issue.WorkflowStatusID == nil {
			unassigned = append(unassigned, issue)
			continue
		}
		byStatus[*issue.WorkflowStatusID] = append(byStatus[*issue.WorkflowStatusID], issue)
	}

	view := &domain.BoardView{
		ProjectID:  projectID,
		WorkflowID: resolved.Workflow.ID,
		Columns:    make([]domain.BoardColumn, 0, len(resolved.Statuses)),
	}
	for _, status := range resolved.Statuses {
		column := domain.BoardColumn{
			StatusID: status.ID,
			Name:     status.Name,
			Slug:     status.Slug,
			Token:    workflowdomain.TokenForSlug(status.Slug),
			Color:    status.Color,
			Order:    status.SortOrder,
			Issues:   byStatus[status.ID],
		}
		if column.Issues == nil {
			column.Issues = []*domain.Issue{}
		}
		// Issues without a status display in the backlog column.
		if column.Token == workflowdomain.DefaultToken && len(unassigned) > 0 {
			column.Issues = append(column.Issues, unassigned...)
			unassigned = nil
		}
		view.Columns = append(view.Columns, column)
	}
	return view, nil
}

func (s *service) scopedIssue(ctx context.Context, actor orgdomain.Actor, id snowflake.ID) (*domain.Issue, *projectdomain.Project, error) {
	issue, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	project, err := s.projectRepo.FindByID(ctx, actor.OrgID, issue.ProjectID)
	if err != nil {
		// Cross-tenant lookups read the same as missing records.
		return nil, nil, domain.ErrIssueNotFound
	}
	return issue, project, nil
}

func (s *service) outgoingSlugs(ctx context.Context, wfRepo workflowdomain.Repository, current *workflowdomain.WorkflowStatus) ([]string, error) {
	outgoing, err := wfRepo.ListOutgoing(ctx, current.WorkflowID, current.ID)
	if err != nil {
		return nil, err
	}
	statuses, err := wfRepo.ListStatuses(ctx, current.WorkflowID)
	if err != nil {
		return nil, err
	}
	slugByID := make(map[snowflake.ID]string, len(statuses))
	for _, st := range statuses {
		slugByID[st.ID] = st.Slug
	}

	slugs := make([]string, 0, len(outgoing))
	for _, t := range outgoing {
		if slug, ok := slugByID[t.ToStatusID]; ok {
			slugs = append(slugs, slug)
		}
	}
	return slugs, nil
}

func startStatus(statuses []workflowdomain.WorkflowStatus) *workflowdomain.WorkflowStatus {
	for i := range statuses {
		if statuses[i].IsStart {
			return &statuses[i]
		}
	}
	if len(statuses) > 0 {
		return &statuses[0]
	}
	return nil
}
