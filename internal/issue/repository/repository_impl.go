package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/CCxPL/task-management-system/internal/issue/domain"
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

func (r *repository) Create(ctx context.Context, issue *domain.Issue) error {
	return r.db.WithContext(ctx).Create(issue).Error
}

func (r *repository) FindByID(ctx context.Context, id snowflake.ID) (*domain.Issue, error) {
	var issue domain.Issue
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&issue).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrIssueNotFound
	}
	if err != nil {
		return nil, err
	}
	return &issue, nil
}

func (r *repository) FindByIDForUpdate(ctx context.Context, id snowflake.ID) (*domain.Issue, error) {
	q := r.db.WithContext(ctx)
	// sqlite has no row locks; writes there serialize on the database lock.
	if q.Dialector.Name() != "sqlite" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var issue domain.Issue
	err := q.Where("id = ?", id).First(&issue).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrIssueNotFound
	}
	if err != nil {
		return nil, err
	}
	return &issue, nil
}

func (r *repository) List(ctx context.Context, filter domain.ListFilter) ([]*domain.Issue, error) {
	q := r.db.WithContext(ctx).Where("project_id = ?", filter.ProjectID)
	if filter.SprintID != nil {
		q = q.Where("sprint_id = ?", *filter.SprintID)
	}
	if filter.AssigneeID != nil {
		q = q.Where("assignee_id = ?", *filter.AssigneeID)
	}
	if filter.Type != nil {
		q = q.Where("type = ?", *filter.Type)
	}
	if filter.Priority != nil {
		q = q.Where("priority = ?", *filter.Priority)
	}
	if filter.AfterID != 0 {
		q = q.Where("id > ?", filter.AfterID)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	var issues []*domain.Issue
	err := q.Order("id ASC").Limit(limit + 1).Find(&issues).Error
	return issues, err
}

func (r *repository) ListByProject(ctx context.Context, projectID snowflake.ID) ([]*domain.Issue, error) {
	var issues []*domain.Issue
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at ASC").
		Find(&issues).Error
	return issues, err
}

func (r *repository) CountByProject(ctx context.Context, projectID snowflake.ID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Issue{}).
		Where("project_id = ?", projectID).
		Count(&count).Error
	return count, err
}

func (r *repository) UpdateFields(ctx context.Context, id snowflake.ID, fields map[string]any) error {
	tx := r.db.WithContext(ctx).Model(&domain.Issue{}).Where("id = ?", id).Updates(fields)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrIssueNotFound
	}
	return nil
}

func (r *repository) SetWorkflowStatus(ctx context.Context, id snowflake.ID, statusID snowflake.ID) error {
	tx := r.db.WithContext(ctx).
		Model(&domain.Issue{}).
		Where("id = ?", id).
		Update("workflow_status_id", statusID)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrIssueNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id snowflake.ID) error {
	tx := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Issue{})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrIssueNotFound
	}
	return nil
}
