package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"karwan-auliya/internal/domains/review/model"
	"karwan-auliya/internal/domains/review/repository"
	"karwan-auliya/internal/realtime"
	"karwan-auliya/internal/shared/auth"
	"karwan-auliya/pkg/query"
)

const table = "reviews"

// a review changes the book's rating aggregate, which books and search both show
var invalidatedBy = []string{model.Entity, "books", "search"}

type Service struct {
	repo    repository.Repository
	queries *query.Client
	events  realtime.Broadcaster
}

func NewService(repo repository.Repository, queries *query.Client, events realtime.Broadcaster) *Service {
	return &Service{repo: repo, queries: queries, events: events}
}

// ListByBook returns every review of a book, newest first.
func (s *Service) ListByBook(ctx context.Context, bookID string) query.Result[[]model.Review] {
	bookID = strings.TrimSpace(bookID)
	return query.Run(ctx, s.queries, query.Query[[]model.Review]{
		Key:     query.NewKey(model.Entity, "book", bookID),
		Enabled: bookID != "",
		Fetch: func(ctx context.Context) ([]model.Review, error) {
			id, err := uuid.Parse(bookID)
			if err != nil {
				return []model.Review{}, nil
			}
			return s.repo.ListByBook(ctx, id)
		},
	})
}

// Mine returns the caller's review of a book, nil when there is none.
func (s *Service) Mine(ctx context.Context, bookID string) query.Result[*model.Review] {
	sess, err := auth.RequireUser(ctx)
	if err != nil {
		return query.Fail[*model.Review](err)
	}
	bookID = strings.TrimSpace(bookID)
	return query.Run(ctx, s.queries, query.Query[*model.Review]{
		Key:     query.NewKey(model.Entity, "mine", sess.UserID, bookID),
		Enabled: bookID != "",
		Fetch: func(ctx context.Context) (*model.Review, error) {
			id, err := uuid.Parse(bookID)
			if err != nil {
				return nil, nil
			}
			return s.repo.GetByUserAndBook(ctx, sess.UserID, id)
		},
	})
}

// Submit creates or replaces the caller's review of a book.
func (s *Service) Submit(ctx context.Context, bookID uuid.UUID, req model.SubmitRequest) (*model.Review, error) {
	sess, err := auth.RequireUser(ctx)
	if err != nil {
		return nil, err
	}
	req = req.Normalized()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	saved, inserted, err := s.repo.Upsert(ctx, &model.Review{
		UserID:  sess.UserID,
		BookID:  bookID,
		Rating:  req.Rating,
		Content: req.Content,
	})
	if err != nil {
		return nil, err
	}

	s.queries.InvalidateQuietly(ctx, invalidatedBy...)
	event := realtime.EventUpdate
	if inserted {
		event = realtime.EventInsert
	}
	realtime.Notify(ctx, s.events, event, table, saved, nil)
	return saved, nil
}

// Delete removes the caller's review of a book.
func (s *Service) Delete(ctx context.Context, bookID uuid.UUID) error {
	sess, err := auth.RequireUser(ctx)
	if err != nil {
		return err
	}
	deleted, err := s.repo.Delete(ctx, sess.UserID, bookID)
	if err != nil {
		return err
	}

	s.queries.InvalidateQuietly(ctx, invalidatedBy...)
	realtime.Notify(ctx, s.events, realtime.EventDelete, table, nil, deleted)
	return nil
}
