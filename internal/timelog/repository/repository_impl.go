package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/CCxPL/task-management-system/internal/timelog/domain"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, log *domain.TimeLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *repository) FindByID(ctx context.Context, id snowflake.ID) (*domain.TimeLog, error) {
	var log domain.TimeLog
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&log).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrTimeLogNotFound
	}
	if err != nil {
		return nil, err
	}
	return &log, nil
}

func (r *repository) ListByIssue(ctx context.Context, issueID snowflake.ID) ([]domain.TimeLog, error) {
	var logs []domain.TimeLog
	err := r.db.WithContext(ctx).
		Where("issue_id = ?", issueID).
		Order("logged_at ASC").
		Find(&logs).Error
	return logs, err
}

func (r *repository) SumMinutesByIssue(ctx context.Context, issueID snowflake.ID) (int64, error) {
	var total *int64
	err := r.db.WithContext(ctx).
		Model(&domain.TimeLog{}).
		Where("issue_id = ?", issueID).
		Select("SUM(minutes)").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}

func (r *repository) Delete(ctx context.Context, id snowflake.ID) error {
	tx := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.TimeLog{})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrTimeLogNotFound
	}
	return nil
}
