package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/CCxPL/task-management-system/internal/workflow/domain"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) domain.Repository {
	return &repository{db: tx}
}

func (r *repository) CreateWorkflow(ctx context.Context, workflow *domain.Workflow) error {
	return r.db.WithContext(ctx).Create(workflow).Error
}

func (r *repository) FindWorkflowByID(ctx context.Context, orgID, id snowflake.ID) (*domain.Workflow, error) {
	var workflow domain.Workflow
	err := r.db.WithContext(ctx).Where("org_id = ? AND id = ?", orgID, id).First(&workflow).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrWorkflowNotFound
	}
	if err != nil {
		return nil, err
	}
	return &workflow, nil
}

func (r *repository) FindWorkflowByProject(ctx context.Context, orgID, projectID snowflake.ID) (*domain.Workflow, error) {
	var workflow domain.Workflow
	err := r.db.WithContext(ctx).
		Where("org_id = ? AND project_id = ?", orgID, projectID).
		First(&workflow).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrWorkflowNotFound
	}
	if err != nil {
		return nil, err
	}
	return &workflow, nil
}

func (r *repository) FindDefaultWorkflow(ctx context.Context, orgID snowflake.ID) (*domain.Workflow, error) {
	var workflow domain.Workflow
	err := r.db.WithContext(ctx).
		Where("org_id = ? AND is_default = ? AND is_active = ?", orgID, true, true).
		First(&workflow).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrWorkflowNotFound
	}
	if err != nil {
		return nil, err
	}
	return &workflow, nil
}

func (r *repository) ListWorkflows(ctx context.Context, orgID snowflake.ID) ([]domain.Workflow, error) {
	var workflows []domain.Workflow
	err := r.db.WithContext(ctx).Where("org_id = ?", orgID).Order("created_at ASC").Find(&workflows).Error
	return workflows, err
}

func (r *repository) UpdateWorkflowFields(ctx context.Context, orgID, id snowflake.ID, fields map[string]any) error {
	tx := r.db.WithContext(ctx).
		Model(&domain.Workflow{}).
		Where("org_id = ? AND id = ?", orgID, id).
		Updates(fields)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrWorkflowNotFound
	}
	return nil
}

func (r *repository) DeleteWorkflow(ctx context.Context, orgID, id snowflake.ID) error {
	tx := r.db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		Delete(&domain.Workflow{})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrWorkflowNotFound
	}
	return nil
}

func (r *repository) CountIssuesByWorkflow(ctx context.Context, workflowID snowflake.ID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("issues").
		Where("workflow_status_id IN (?)",
			r.db.Model(&domain.WorkflowStatus{}).Select("id").Where("workflow_id = ?", workflowID)).
		Count(&count).Error
	return count, err
}

func (r *repository) ClearDefaultExcept(ctx context.Context, orgID, keepID snowflake.ID) error {
	return r.db.WithContext(ctx).
		Model(&domain.Workflow{}).
		Where("org_id = ? AND id <> ? AND is_default = ?", orgID, keepID, true).
		Update("is_default", false).Error
}

func (r *repository) DetachProjectExcept(ctx context.Context, projectID, keepID snowflake.ID) error {
	return r.db.WithContext(ctx).
		Model(&domain.Workflow{}).
		Where("project_id = ? AND id <> ?", projectID, keepID).
		Update("project_id", nil).Error
}

func (r *repository) CreateStatus(ctx context.Context, status *domain.WorkflowStatus) error {
	return r.db.WithContext(ctx).Create(status).Error
}

func (r *repository) FindStatusByID(ctx context.Context, id snowflake.ID) (*domain.WorkflowStatus, error) {
	var status domain.WorkflowStatus
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&status).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrStatusNotFound
	}
	if err != nil {
		return nil, err
	}
	return &status, nil
}

func (r *repository) FindStatusBySlug(ctx context.Context, workflowID snowflake.ID, slug string) (*domain.WorkflowStatus, error) {
	var status domain.WorkflowStatus
	err := r.db.WithContext(ctx).
		Where("workflow_id = ? AND slug = ?", workflowID, slug).
		First(&status).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrStatusNotFound
	}
	if err != nil {
		return nil, err
	}
	return &status, nil
}

func (r *repository) ListStatuses(ctx context.Context, workflowID snowflake.ID) ([]domain.WorkflowStatus, error) {
	var statuses []domain.WorkflowStatus
	err := r.db.WithContext(ctx).
		Where("workflow_id = ?", workflowID).
		Order("sort_order ASC").
		Find(&statuses).Error
	return statuses, err
}

func (r *repository) ListStatusSlugs(ctx context.Context, workflowID snowflake.ID) ([]string, error) {
	var slugs []string
	err := r.db.WithContext(ctx).
		Model(&domain.WorkflowStatus{}).
		Where("workflow_id = ?", workflowID).
		Order("sort_order ASC").
		Pluck("slug", &slugs).Error
	return slugs, err
}

func (r *repository) UpdateStatusFields(ctx context.Context, id snowflake.ID, fields map[string]any) error {
	tx := r.db.WithContext(ctx).Model(&domain.WorkflowStatus{}).Where("id = ?", id).Updates(fields)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrStatusNotFound
	}
	return nil
}

func (r *repository) DeleteStatus(ctx context.Context, id snowflake.ID) error {
	tx := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.WorkflowStatus{})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrStatusNotFound
	}
	return nil
}

func (r *repository) ClearFlagExcept(ctx context.Context, workflowID, keepID snowflake.ID, flag string) error {
	if flag != "is_start" && flag != "is_terminal" {
		return domain.ErrStatusNotInWorkflow
	}
	return r.db.WithContext(ctx).
		Model(&domain.WorkflowStatus{}).
		Where("workflow_id = ? AND id <> ?", workflowID, keepID).
		Update(flag, false).Error
}

func (r *repository) ShiftOrders(ctx context.Context, workflowID snowflake.ID, ids []snowflake.ID, offset int) error {
	return r.db.WithContext(ctx).
		Model(&domain.WorkflowStatus{}).
		Where("workflow_id = ? AND id IN ?", workflowID, ids).
		Update("sort_order", gorm.Expr("sort_order + ?", offset)).Error
}

func (r *repository) SetOrder(ctx context.Context, id snowflake.ID, order int) error {
	return r.db.WithContext(ctx).
		Model(&domain.WorkflowStatus{}).
		Where("id = ?", id).
		Update("sort_order", order).Error
}

func (r *repository) MaxOrder(ctx context.Context, workflowID snowflake.ID) (int, error) {
	var highest *int
	err := r.db.WithContext(ctx).
		Model(&domain.WorkflowStatus{}).
		Where("workflow_id = ?", workflowID).
		Select("MAX(sort_order)").
		Scan(&highest).Error
	if err != nil {
		return 0, err
	}
	if highest == nil {
		return 0, nil
	}
	return *highest, nil
}

func (r *repository) CountIssuesByStatus(ctx context.Context, statusID snowflake.ID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("issues").
		Where("workflow_status_id = ?", statusID).
		Count(&count).Error
	return count, err
}

func (r *repository) CreateTransition(ctx context.Context, transition *domain.WorkflowTransition) error {
	return r.db.WithContext(ctx).Create(transition).Error
}

func (r *repository) FindTransition(ctx context.Context, workflowID, fromID, toID snowflake.ID) (*domain.WorkflowTransition, error) {
	var transition domain.WorkflowTransition
	err := r.db.WithContext(ctx).
		Where("workflow_id = ? AND from_status_id = ? AND to_status_id = ?", workflowID, fromID, toID).
		First(&transition).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrTransitionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &transition, nil
}

func (r *repository) FindTransitionByID(ctx context.Context, workflowID, id snowflake.ID) (*domain.WorkflowTransition, error) {
	var transition domain.WorkflowTransition
	err := r.db.WithContext(ctx).
		Where("workflow_id = ? AND id = ?", workflowID, id).
		First(&transition).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrTransitionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &transition, nil
}

func (r *repository) ListTransitions(ctx context.Context, workflowID snowflake.ID) ([]domain.WorkflowTransition, error) {
	var transitions []domain.WorkflowTransition
	err := r.db.WithContext(ctx).
		Where("workflow_id = ?", workflowID).
		Order("created_at ASC").
		Find(&transitions).Error
	return transitions, err
}

func (r *repository) ListOutgoing(ctx context.Context, workflowID, fromID snowflake.ID) ([]domain.WorkflowTransition, error) {
	var transitions []domain.WorkflowTransition
	err := r.db.WithContext(ctx).
		Where("workflow_id = ? AND from_status_id = ?", workflowID, fromID).
		Find(&transitions).Error
	return transitions, err
}

func (r *repository) DeleteTransition(ctx context.Context, id snowflake.ID) error {
	tx := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.WorkflowTransition{})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrTransitionNotFound
	}
	return nil
}

func (r *repository) DeleteTransitionsByStatus(ctx context.Context, statusID snowflake.ID) error {
	return r.db.WithContext(ctx).
		Where("from_status_id = ? OR to_status_id = ?", statusID, statusID).
		Delete(&domain.WorkflowTransition{}).Error
}
