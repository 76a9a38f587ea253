package service

import (
	"context"
	"crypto/rand"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/oklog/ulid/v2"

	"github.com/CCxPL/task-management-system/internal/timelog/domain"
)

type service struct {
	repo  domain.Repository
	genID *snowflake.Node
}

func NewService(repo domain.Repository, genID *snowflake.Node) domain.Service {
	return &service{repo: repo, genID: genID}
}

func (s *service) Log(ctx context.Context, userID, issueID snowflake.ID, minutes int, note string, loggedAt *time.Time) (*domain.TimeLog, error) {
	if minutes <= 0 {
		return nil, domain.ErrInvalidMinutes
	}

	when := time.Now().UTC()
	if loggedAt != nil {
		when = loggedAt.UTC()
	}

	ref, err := ulid.New(ulid.Timestamp(when), rand.Reader)
	if err != nil {
		return nil, err
	}

	log := &domain.TimeLog{
		ID:       s.genID.Generate(),
		RefCode:  "TL-" + ref.String(),
		IssueID:  issueID,
		UserID:   userID,
		Minutes:  minutes,
		Note:     strings.TrimSpace(note),
		LoggedAt: when,
	}
	if err := s.repo.Create(ctx, log); err != nil {
		return nil, err
	}
	return log, nil
}

func (s *service) ListByIssue(ctx context.Context, issueID snowflake.ID) ([]domain.TimeLog, error) {
	return s.repo.ListByIssue(ctx, issueID)
}

func (s *service) TotalMinutes(ctx context.Context, issueID snowflake.ID) (int64, error) {
	return s.repo.SumMinutesByIssue(ctx, issueID)
}

func (s *service) Delete(ctx context.Context, userID, id snowflake.ID) error {
	log, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if log.UserID != userID {
		return domain.ErrNotTimeLogOwner
	}
	return s.repo.Delete(ctx, id)
}
