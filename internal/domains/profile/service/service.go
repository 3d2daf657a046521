package service

import (
	"context"

	"karwan-auliya/internal/domains/profile/model"
	"karwan-auliya/internal/domains/profile/repository"
	"karwan-auliya/internal/realtime"
	"karwan-auliya/internal/shared/auth"
	"karwan-auliya/pkg/query"
)

const table = "profiles"

type Service struct {
	repo    repository.Repository
	queries *query.Client
	events  realtime.Broadcaster
}

func NewService(repo repository.Repository, queries *query.Client, events realtime.Broadcaster) *Service {
	return &Service{repo: repo, queries: queries, events: events}
}

// Me returns the caller's profile, nil when none was saved yet.
func (s *Service) Me(ctx context.Context) query.Result[*model.Profile] {
	sess, err := auth.RequireUser(ctx)
	if err != nil {
		return query.Fail[*model.Profile](err)
	}
	return query.Run(ctx, s.queries, query.Query[*model.Profile]{
		Key:     query.NewKey(model.Entity, sess.UserID),
		Enabled: true,
		Fetch: func(ctx context.Context) (*model.Profile, error) {
			return s.repo.Get(ctx, sess.UserID)
		},
	})
}

// UpdateMe creates the caller's profile or changes the given fields.
// Reviews embed the display name and avatar, so they are refreshed too.
func (s *Service) UpdateMe(ctx context.Context, req model.UpdateRequest) (*model.Profile, error) {
	sess, err := auth.RequireUser(ctx)
	if err != nil {
		return nil, err
	}
	if req.IsEmpty() {
		return nil, model.ErrNothingToUpdate
	}
	req = req.Normalized()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	p, err := s.repo.Upsert(ctx, sess.UserID, req)
	if err != nil {
		return nil, err
	}
	s.queries.InvalidateQuietly(ctx, model.Entity, "reviews")
	realtime.Notify(ctx, s.events, realtime.EventUpdate, table, p, nil)
	return p, nil
}
