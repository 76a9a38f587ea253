// Package seed bootstraps a fresh installation with a default
// organization, an admin user and the organization default workflow.
package seed

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/CCxPL/task-management-system/internal/auth/domain"
	"github.com/CCxPL/task-management-system/internal/auth/password"
	"github.com/CCxPL/task-management-system/internal/config"
	organizationdomain "github.com/CCxPL/task-management-system/internal/organization/domain"
	workflowdomain "github.com/CCxPL/task-management-system/internal/workflow/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	defaultOrgName      = "Main"
	defaultOrgSlug      = "main"
	defaultAdminEmail   = "admin@example.com"
	defaultAdminPass    = "admin"
	defaultWorkflowName = "Default Workflow"
)

// EnsureDefaultOrgAndAdmin seeds the default organization, an admin user
// belonging to it and the organization default workflow. Every step is
// idempotent, so startup can run it unconditionally.
func EnsureDefaultOrgAndAdmin(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		org, err := ensureDefaultOrgTx(ctx, tx, node)
		if err != nil {
			return err
		}

		user, err := ensureAdminUserTx(ctx, tx, node)
		if err != nil {
			return err
		}

		if err := ensureMembershipTx(ctx, tx, node, org.ID, user.ID); err != nil {
			return err
		}

		return ensureDefaultWorkflowTx(ctx, tx, node, org.ID)
	})
}

func ensureDefaultOrgTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node) (organizationdomain.Organization, error) {
	var org organizationdomain.Organization
	err := tx.WithContext(ctx).Where("slug = ?", defaultOrgSlug).First(&org).Error
	if err == nil {
		return org, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return org, err
	}
	now := time.Now().UTC()
	org = organizationdomain.Organization{
		ID:        node.Generate(),
		Name:      defaultOrgName,
		Slug:      defaultOrgSlug,
		Type:      organizationdomain.OrgTypeCompany,
		Settings:  datatypes.JSONMap{},
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.WithContext(ctx).Create(&org).Error; err != nil {
		return org, err
	}
	return org, nil
}

func ensureAdminUserTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node) (authdomain.User, error) {
	var user authdomain.User
	err := tx.WithContext(ctx).Where("email = ?", defaultAdminEmail).First(&user).Error
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return user, err
	}
	hashed, err := password.Hash(defaultAdminPass)
	if err != nil {
		return user, err
	}
	now := time.Now().UTC()
	user = authdomain.User{
		ID:           node.Generate(),
		Email:        strings.ToLower(defaultAdminEmail),
		PasswordHash: hashed,
		FirstName:    "Admin",
		IsSuperuser:  false,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := tx.WithContext(ctx).Create(&user).Error; err != nil {
		return user, err
	}
	return user, nil
}

func ensureMembershipTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, orgID, userID snowflake.ID) error {
	var member organizationdomain.OrganizationUser
	err := tx.WithContext(ctx).
		Where("org_id = ? AND user_id = ?", orgID, userID).
		First(&member).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	now := time.Now().UTC()
	member = organizationdomain.OrganizationUser{
		ID:        node.Generate(),
		OrgID:     orgID,
		UserID:    userID,
		Role:      organizationdomain.RoleAdmin,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return tx.WithContext(ctx).Create(&member).Error
}

func ensureDefaultWorkflowTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, orgID snowflake.ID) error {
	var workflow workflowdomain.Workflow
	err := tx.WithContext(ctx).
		Where("org_id = ? AND is_default", orgID).
		First(&workflow).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	now := time.Now().UTC()
	workflow = workflowdomain.Workflow{
		ID:        node.Generate(),
		OrgID:     orgID,
		Name:      defaultWorkflowName,
		IsDefault: true,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.WithContext(ctx).Create(&workflow).Error; err != nil {
		return err
	}

	board := config.DefaultBoardConfig()
	statuses := make([]workflowdomain.WorkflowStatus, 0, len(board.Statuses))
	for i, col := range board.Statuses {
		status := workflowdomain.WorkflowStatus{
			ID:         node.Generate(),
			WorkflowID: workflow.ID,
			Name:       col.Name,
			Slug:       col.Slug,
			SortOrder:  i + 1,
			IsStart:    col.IsStart,
			IsTerminal: col.IsTerminal,
			Color:      col.Color,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := tx.WithContext(ctx).Create(&status).Error; err != nil {
			return err
		}
		statuses = append(statuses, status)
	}

	for _, from := range statuses {
		for _, to := range statuses {
			if from.ID == to.ID {
				continue
			}
			transition := workflowdomain.WorkflowTransition{
				ID:           node.Generate(),
				WorkflowID:   workflow.ID,
				FromStatusID: from.ID,
				ToStatusID:   to.ID,
				CreatedAt:    now,
			}
			if err := tx.WithContext(ctx).Create(&transition).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
