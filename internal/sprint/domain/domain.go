// Package domain contains persistence models for the sprint service.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

// SprintState tracks a sprint through its lifecycle.
type SprintState string

const (
	StatePlanned   SprintState = "PLANNED"
	StateActive    SprintState = "ACTIVE"
	StateCompleted SprintState = "COMPLETED"
)

// Sprint is a timeboxed iteration within a project.
type Sprint struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	ProjectID snowflake.ID `gorm:"column:project_id;not null;index:ix_sprints_project" json:"project_id"`
	Name      string       `gorm:"type:text;not null" json:"name"`
	Goal      string       `gorm:"type:text" json:"goal"`
	State     SprintState  `gorm:"type:text;not null;default:'PLANNED'" json:"state"`
	StartDate *time.Time   `gorm:"column:start_date" json:"start_date,omitempty"`
	EndDate   *time.Time   `gorm:"column:end_date" json:"end_date,omitempty"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Sprint) TableName() string { return "sprints" }

var (
	ErrInvalidName     = errors.New("invalid_sprint_name")
	ErrSprintNotFound  = errors.New("sprint_not_found")
	ErrInvalidState    = errors.New("invalid_sprint_state")
	ErrInvalidDates    = errors.New("invalid_sprint_dates")
	ErrSprintCompleted = errors.New("sprint_already_completed")
)

type Repository interface {
	Create(ctx context.Context, sprint *Sprint) error
	FindByID(ctx context.Context, id snowflake.ID) (*Sprint, error)
	ListByProject(ctx context.Context, projectID snowflake.ID) ([]Sprint, error)
	UpdateFields(ctx context.Context, id snowflake.ID, fields map[string]any) error
	Delete(ctx context.Context, id snowflake.ID) error
}

type Service interface {
	Create(ctx context.Context, orgID snowflake.ID, req CreateSprintRequest) (*Sprint, error)
	Get(ctx context.Context, orgID, id snowflake.ID) (*Sprint, error)
	List(ctx context.Context, orgID, projectID snowflake.ID) ([]Sprint, error)
	Update(ctx context.Context, orgID, id snowflake.ID, req UpdateSprintRequest) (*Sprint, error)
	// Advance moves the sprint through PLANNED -> ACTIVE -> COMPLETED.
	Advance(ctx context.Context, orgID, id snowflake.ID) (*Sprint, error)
	Delete(ctx context.Context, orgID, id snowflake.ID) error
}

type CreateSprintRequest struct {
	ProjectID snowflake.ID
	Name      string
	Goal      string
	StartDate *time.Time
	EndDate   *time.Time
}

type UpdateSprintRequest struct {
	Name      *string
	Goal      *string
	StartDate *time.Time
	EndDate   *time.Time
}
