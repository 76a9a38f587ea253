// Package report assembles project summaries for JSON and PDF export.
package report

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/bwmarrin/snowflake"

	issuedomain "github.com/CCxPL/task-management-system/internal/issue/domain"
	orgdomain "github.com/CCxPL/task-management-system/internal/organization/domain"
	"github.com/CCxPL/task-management-system/internal/providers/pdf"
	projectdomain "github.com/CCxPL/task-management-system/internal/project/domain"
	sprintdomain "github.com/CCxPL/task-management-system/internal/sprint/domain"
	timelogdomain "github.com/CCxPL/task-management-system/internal/timelog/domain"
	workflowdomain "github.com/CCxPL/task-management-system/internal/workflow/domain"
)

// ProjectSummary is the JSON shape of a project report.
type ProjectSummary struct {
	ProjectID     snowflake.ID       `json:"project_id"`
	ProjectName   string             `json:"project_name"`
	ProjectKey    string             `json:"project_key"`
	TotalIssues   int                `json:"total_issues"`
	TotalMinutes  int64              `json:"total_minutes"`
	ActiveSprints int                `json:"active_sprints"`
	Columns       []pdf.ReportColumn `json:"columns"`
	GeneratedAt   time.Time          `json:"generated_at"`
}

type Service interface {
	ProjectSummary(ctx context.Context, actor orgdomain.Actor, projectID snowflake.ID) (*ProjectSummary, error)
	ProjectSummaryPDF(ctx context.Context, actor orgdomain.Actor, projectID snowflake.ID) (io.Reader, error)
}

type service struct {
	orgRepo     orgdomain.Repository
	projectRepo projectdomain.Repository
	issueRepo   issuedomain.Repository
	sprintRepo  sprintdomain.Repository
	timelogRepo timelogdomain.Repository
	workflowSvc workflowdomain.Service
	pdfProvider pdf.Provider
}

func NewService(
	orgRepo orgdomain.Repository,
	projectRepo projectdomain.Repository,
	issueRepo issuedomain.Repository,
	sprintRepo sprintdomain.Repository,
	timelogRepo timelogdomain.Repository,
	workflowSvc workflowdomain.Service,
	pdfProvider pdf.Provider,
) Service {
	return &service{
		orgRepo:     orgRepo,
		projectRepo: projectRepo,
		issueRepo:   issueRepo,
		sprintRepo:  sprintRepo,
		timelogRepo: timelogRepo,
		workflowSvc: workflowSvc,
		pdfProvider: pdfProvider,
	}
}

func (s *service) ProjectSummary(ctx context.Context, actor orgdomain.Actor, projectID snowflake.ID) (*ProjectSummary, error) {
	project, err := s.projectRepo.FindByID(ctx, actor.OrgID, projectID)
	if err != nil {
		return nil, err
	}

	issues, err := s.issueRepo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	sprints, err := s.sprintRepo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	activeSprints := 0
	for _, sp := range sprints {
		if sp.State == sprintdomain.StateActive {
			activeSprints++
		}
	}

	var totalMinutes int64
	for _, issue := range issues {
		minutes, err := s.timelogRepo.SumMinutesByIssue(ctx, issue.ID)
		if err != nil {
			return nil, err
		}
		totalMinutes += minutes
	}

	summary := &ProjectSummary{
		ProjectID:     project.ID,
		ProjectName:   project.Name,
		ProjectKey:    project.Key,
		TotalIssues:   len(issues),
		TotalMinutes:  totalMinutes,
		ActiveSprints: activeSprints,
		GeneratedAt:   time.Now().UTC(),
	}

	// Column breakdown follows the resolved workflow when one exists.
	resolved, err := s.workflowSvc.Resolve(ctx, actor.OrgID, projectID)
	if err == nil {
		byStatus := make(map[snowflake.ID]int)
		for _, issue := range issues {
			if issue.WorkflowStatusID != nil {
				byStatus[*issue.WorkflowStatusID]++
			}
		}
		for _, status := range resolved.Statuses {
			summary.Columns = append(summary.Columns, pdf.ReportColumn{
				Name:   status.Name,
				Slug:   status.Slug,
				Issues: byStatus[status.ID],
			})
		}
	} else if !errors.Is(err, workflowdomain.ErrWorkflowNotConfigured) {
		return nil, err
	}

	return summary, nil
}

func (s *service) ProjectSummaryPDF(ctx context.Context, actor orgdomain.Actor, projectID snowflake.ID) (io.Reader, error) {
	summary, err := s.ProjectSummary(ctx, actor, projectID)
	if err != nil {
		return nil, err
	}

	org, err := s.orgRepo.FindByID(ctx, actor.OrgID)
	if err != nil {
		return nil, err
	}

	return s.pdfProvider.GenerateProjectReport(ctx, pdf.ProjectReportData{
		OrgName:       org.Name,
		ProjectName:   summary.ProjectName,
		ProjectKey:    summary.ProjectKey,
		GeneratedAt:   summary.GeneratedAt.Format(time.RFC3339),
		TotalIssues:   summary.TotalIssues,
		TotalMinutes:  summary.TotalMinutes,
		ActiveSprints: summary.ActiveSprints,
		Columns:       summary.Columns,
	})
}
