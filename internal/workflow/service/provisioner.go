package service

import (
	"context"

	"github.com/CCxPL/task-management-system/internal/workflow/domain"
)

// provisionDefaults seeds a freshly created workflow with the configured
// board columns and a transition edge for every ordered pair of distinct
// statuses. Runs inside the workflow creation transaction.
func (s *service) provisionDefaults(ctx context.Context, repo domain.Repository, workflow *domain.Workflow) error {
	board := s.board.Get()

	statuses := make([]*domain.WorkflowStatus, 0, len(board.Statuses))
	for i, col := range board.Statuses {
		status := &domain.WorkflowStatus{
			ID:         s.genID.Generate(),
			WorkflowID: workflow.ID,
			Name:       col.Name,
			Slug:       col.Slug,
			SortOrder:  i + 1,
			IsStart:    col.IsStart,
			IsTerminal: col.IsTerminal,
			Color:      col.Color,
		}
		if err := repo.CreateStatus(ctx, status); err != nil {
			return err
		}
		statuses = append(statuses, status)
	}

	for _, from := range statuses {
		for _, to := range statuses {
			if from.ID == to.ID {
				continue
			}
			if err := repo.CreateTransition(ctx, &domain.WorkflowTransition{
				ID:           s.genID.Generate(),
				WorkflowID:   workflow.ID,
				FromStatusID: from.ID,
				ToStatusID:   to.ID,
			}); err != nil {
				return err
			}
		}
	}
	return nil
}
