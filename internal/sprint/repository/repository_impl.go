package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/CCxPL/task-management-system/internal/sprint/domain"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, sprint *domain.Sprint) error {
	return r.db.WithContext(ctx).Create(sprint).Error
}

func (r *repository) FindByID(ctx context.Context, id snowflake.ID) (*domain.Sprint, error) {
	var sprint domain.Sprint
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&sprint).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrSprintNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sprint, nil
}

func (r *repository) ListByProject(ctx context.Context, projectID snowflake.ID) ([]domain.Sprint, error) {
	var sprints []domain.Sprint
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at ASC").
		Find(&sprints).Error
	return sprints, err
}

func (r *repository) UpdateFields(ctx context.Context, id snowflake.ID, fields map[string]any) error {
	tx := r.db.WithContext(ctx).Model(&domain.Sprint{}).Where("id = ?", id).Updates(fields)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrSprintNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id snowflake.ID) error {
	tx := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Sprint{})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrSprintNotFound
	}
	return nil
}
