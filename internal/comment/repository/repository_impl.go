package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/CCxPL/task-management-system/internal/comment/domain"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, comment *domain.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *repository) FindByID(ctx context.Context, id snowflake.ID) (*domain.Comment, error) {
	var comment domain.Comment
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&comment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrCommentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *repository) ListByIssue(ctx context.Context, issueID snowflake.ID) ([]domain.Comment, error) {
	var comments []domain.Comment
	err := r.db.WithContext(ctx).
		Where("issue_id = ?", issueID).
		Order("created_at ASC").
		Find(&comments).Error
	return comments, err
}

func (r *repository) UpdateBody(ctx context.Context, id snowflake.ID, body string) error {
	tx := r.db.WithContext(ctx).
		Model(&domain.Comment{}).
		Where("id = ?", id).
		Updates(map[string]any{"body": body, "updated_at": time.Now().UTC()})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrCommentNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id snowflake.ID) error {
	tx := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Comment{})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrCommentNotFound
	}
	return nil
}
