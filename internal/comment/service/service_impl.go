package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"

	"github.com/CCxPL/task-management-system/internal/comment/domain"
)

type service struct {
	repo  domain.Repository
	genID *snowflake.Node
}

func NewService(repo domain.Repository, genID *snowflake.Node) domain.Service {
	return &service{repo: repo, genID: genID}
}

func (s *service) Create(ctx context.Context, authorID, issueID snowflake.ID, body string) (*domain.Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, domain.ErrEmptyBody
	}

	comment := &domain.Comment{
		ID:       s.genID.Generate(),
		IssueID:  issueID,
		AuthorID: authorID,
		Body:     body,
	}
	if err := s.repo.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *service) ListByIssue(ctx context.Context, issueID snowflake.ID) ([]domain.Comment, error) {
	return s.repo.ListByIssue(ctx, issueID)
}

func (s *service) Update(ctx context.Context, authorID, id snowflake.ID, body string) (*domain.Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, domain.ErrEmptyBody
	}

	comment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if comment.AuthorID != authorID {
		return nil, domain.ErrNotCommentAuthor
	}

	if err := s.repo.UpdateBody(ctx, id, body); err != nil {
		return nil, err
	}
	comment.Body = body
	return comment, nil
}

func (s *service) Delete(ctx context.Context, actorID snowflake.ID, isModerator bool, id snowflake.ID) error {
	comment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if comment.AuthorID != actorID && !isModerator {
		return domain.ErrNotCommentAuthor
	}
	return s.repo.Delete(ctx, id)
}
