// Package domain contains persistence models for the time log service.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

// TimeLog records minutes spent on an issue. RefCode is a sortable
// reference shown on reports and exports.
type TimeLog struct {
	ID       snowflake.ID `gorm:"primaryKey" json:"id"`
	RefCode  string       `gorm:"column:ref_code;type:text;not null;uniqueIndex:ux_time_logs_ref" json:"ref_code"`
	IssueID  snowflake.ID `gorm:"column:issue_id;not null;index:ix_time_logs_issue" json:"issue_id"`
	UserID   snowflake.ID `gorm:"column:user_id;not null;index:ix_time_logs_user" json:"user_id"`
	Minutes  int          `gorm:"column:minutes;not null" json:"minutes"`
	Note     string       `gorm:"type:text" json:"note"`
	LoggedAt time.Time    `gorm:"column:logged_at;not null" json:"logged_at"`
}

// TableName sets the database table name.
func (TimeLog) TableName() string { return "time_logs" }

var (
	ErrInvalidMinutes  = errors.New("invalid_minutes")
	ErrTimeLogNotFound = errors.New("time_log_not_found")
	ErrNotTimeLogOwner = errors.New("not_time_log_owner")
)

type Repository interface {
	Create(ctx context.Context, log *TimeLog) error
	FindByID(ctx context.Context, id snowflake.ID) (*TimeLog, error)
	ListByIssue(ctx context.Context, issueID snowflake.ID) ([]TimeLog, error)
	SumMinutesByIssue(ctx context.Context, issueID snowflake.ID) (int64, error)
	Delete(ctx context.Context, id snowflake.ID) error
}

type Service interface {
	Log(ctx context.Context, userID, issueID snowflake.ID, minutes int, note string, loggedAt *time.Time) (*TimeLog, error)
	ListByIssue(ctx context.Context, issueID snowflake.ID) ([]TimeLog, error)
	TotalMinutes(ctx context.Context, issueID snowflake.ID) (int64, error)
	// Delete removes a time log entry. Only its owner may delete.
	Delete(ctx context.Context, userID, id snowflake.ID) error
}
