package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/CCxPL/task-management-system/internal/organization/domain"
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

func (r *repository) CreateOrganization(ctx context.Context, org *domain.Organization) error {
	return r.db.WithContext(ctx).Create(org).Error
}

func (r *repository) FindByID(ctx context.Context, id snowflake.ID) (*domain.Organization, error) {
	var org domain.Organization
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&org).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrOrgNotFound
	}
	if err != nil {
		return nil, err
	}
	return &org, nil
}

func (r *repository) FindBySlug(ctx context.Context, slug string) (*domain.Organization, error) {
	var org domain.Organization
	err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&org).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrOrgNotFound
	}
	if err != nil {
		return nil, err
	}
	return &org, nil
}

func (r *repository) List(ctx context.Context) ([]domain.Organization, error) {
	var orgs []domain.Organization
	err := r.db.WithContext(ctx).Order("created_at ASC").Find(&orgs).Error
	return orgs, err
}

func (r *repository) UpdateFields(ctx context.Context, id snowflake.ID, fields map[string]any) error {
	tx := r.db.WithContext(ctx).Model(&domain.Organization{}).Where("id = ?", id).Updates(fields)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrOrgNotFound
	}
	return nil
}

func (r *repository) AddMember(ctx context.Context, member *domain.OrganizationUser) error {
	return r.db.WithContext(ctx).Create(member).Error
}

func (r *repository) FindActiveMembership(ctx context.Context, userID snowflake.ID) (*domain.OrganizationUser, error) {
	var member domain.OrganizationUser
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("created_at ASC").
		First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrMembershipNotFound
	}
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *repository) FindMembership(ctx context.Context, orgID, userID snowflake.ID) (*domain.OrganizationUser, error) {
	var member domain.OrganizationUser
	err := r.db.WithContext(ctx).
		Where("org_id = ? AND user_id = ? AND is_active = ?", orgID, userID, true).
		First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrMembershipNotFound
	}
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *repository) ListMembers(ctx context.Context, orgID snowflake.ID) ([]domain.OrganizationUser, error) {
	var members []domain.OrganizationUser
	err := r.db.WithContext(ctx).
		Where("org_id = ? AND is_active = ?", orgID, true).
		Order("created_at ASC").
		Find(&members).Error
	return members, err
}

func (r *repository) UpdateMemberFields(ctx context.Context, id snowflake.ID, fields map[string]any) error {
	tx := r.db.WithContext(ctx).Model(&domain.OrganizationUser{}).Where("id = ?", id).Updates(fields)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrMembershipNotFound
	}
	return nil
}

func (r *repository) DeactivateMembers(ctx context.Context, orgID snowflake.ID) error {
	return r.db.WithContext(ctx).
		Model(&domain.OrganizationUser{}).
		Where("org_id = ?", orgID).
		Update("is_active", false).Error
}
