// Package domain contains persistence models for the comment service.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Comment is a user remark on an issue.
type Comment struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	IssueID   snowflake.ID `gorm:"column:issue_id;not null;index:ix_comments_issue" json:"issue_id"`
	AuthorID  snowflake.ID `gorm:"column:author_id;not null" json:"author_id"`
	Body      string       `gorm:"type:text;not null" json:"body"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Comment) TableName() string { return "comments" }

var (
	ErrEmptyBody        = errors.New("empty_comment_body")
	ErrCommentNotFound  = errors.New("comment_not_found")
	ErrNotCommentAuthor = errors.New("not_comment_author")
)

type Repository interface {
	Create(ctx context.Context, comment *Comment) error
	FindByID(ctx context.Context, id snowflake.ID) (*Comment, error)
	ListByIssue(ctx context.Context, issueID snowflake.ID) ([]Comment, error)
	UpdateBody(ctx context.Context, id snowflake.ID, body string) error
	Delete(ctx context.Context, id snowflake.ID) error
}

type Service interface {
	Create(ctx context.Context, authorID, issueID snowflake.ID, body string) (*Comment, error)
	ListByIssue(ctx context.Context, issueID snowflake.ID) ([]Comment, error)
	// Update edits a comment body. Only the author may edit.
	Update(ctx context.Context, authorID, id snowflake.ID, body string) (*Comment, error)
	// Delete removes a comment. The author or a moderator (isModerator
	// true) may delete.
	Delete(ctx context.Context, actorID snowflake.ID, isModerator bool, id snowflake.ID) error
}
