package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/CCxPL/task-management-system/internal/project/domain"
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

func (r *repository) Create(ctx context.Context, project *domain.Project) error {
	return r.db.WithContext(ctx).Create(project).Error
}

func (r *repository) FindByID(ctx context.Context, orgID, id snowflake.ID) (*domain.Project, error) {
	var project domain.Project
	err := r.db.WithContext(ctx).Where("org_id = ? AND id = ?", orgID, id).First(&project).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrProjectNotFound
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *repository) FindByIDUnscoped(ctx context.Context, id snowflake.ID) (*domain.Project, error) {
	var project domain.Project
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&project).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrProjectNotFound
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *repository) List(ctx context.Context, orgID snowflake.ID) ([]domain.Project, error) {
	var projects []domain.Project
	err := r.db.WithContext(ctx).Where("org_id = ?", orgID).Order("created_at ASC").Find(&projects).Error
	return projects, err
}

func (r *repository) UpdateFields(ctx context.Context, orgID, id snowflake.ID, fields map[string]any) error {
	tx := r.db.WithContext(ctx).
		Model(&domain.Project{}).
		Where("org_id = ? AND id = ?", orgID, id).
		Updates(fields)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrProjectNotFound
	}
	return nil
}

func (r *repository) AddMember(ctx context.Context, member *domain.ProjectMember) error {
	return r.db.WithContext(ctx).Create(member).Error
}

func (r *repository) FindMember(ctx context.Context, projectID, userID snowflake.ID) (*domain.ProjectMember, error) {
	var member domain.ProjectMember
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND user_id = ? AND is_active = ?", projectID, userID, true).
		First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrMemberNotFound
	}
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// FindMemberAny returns the membership row regardless of its active flag.
func (r *repository) FindMemberAny(ctx context.Context, projectID, userID snowflake.ID) (*domain.ProjectMember, error) {
	var member domain.ProjectMember
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrMemberNotFound
	}
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *repository) ListMembers(ctx context.Context, projectID snowflake.ID) ([]domain.ProjectMember, error) {
	var members []domain.ProjectMember
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND is_active = ?", projectID, true).
		Order("created_at ASC").
		Find(&members).Error
	return members, err
}

func (r *repository) UpdateMemberFields(ctx context.Context, id snowflake.ID, fields map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&domain.ProjectMember{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *repository) RemoveMember(ctx context.Context, projectID, userID snowflake.ID) error {
	tx := r.db.WithContext(ctx).
		Model(&domain.ProjectMember{}).
		Where("project_id = ? AND user_id = ? AND is_active = ?", projectID, userID, true).
		Update("is_active", false)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrMemberNotFound
	}
	return nil
}
