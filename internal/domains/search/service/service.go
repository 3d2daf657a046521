package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"karwan-auliya/internal/domains/search/model"
	"karwan-auliya/internal/domains/search/repository"
	"karwan-auliya/pkg/query"
)

type Service struct {
	repo    repository.Repository
	queries *query.Client
}

func NewService(repo repository.Repository, queries *query.Client) *Service {
	return &Service{repo: repo, queries: queries}
}

func searchable(q string) bool {
	return utf8.RuneCountInString(q) >= model.MinQueryLength
}

// Search runs the full-text search once per distinct query and filter set;
// filtering and sorting happen over the fetched rows.
func (s *Service) Search(ctx context.Context, q string, f model.Filters) query.Result[[]model.Result] {
	q = strings.TrimSpace(q)
	if err := f.Validate(); err != nil {
		return query.Fail[[]model.Result](err)
	}

	return query.Run(ctx, s.queries, query.Query[[]model.Result]{
		Key:       query.NewKey(model.Entity, q, f),
		Enabled:   searchable(q),
		StaleTime: model.SearchStaleTime,
		Fetch: func(ctx context.Context) ([]model.Result, error) {
			rows, err := s.repo.Search(ctx, q)
			if err != nil {
				return nil, err
			}
			return model.Apply(rows, f), nil
		},
	})
}

func (s *Service) Suggestions(ctx context.Context, q string) query.Result[[]model.Suggestion] {
	q = strings.TrimSpace(q)
	return query.Run(ctx, s.queries, query.Query[[]model.Suggestion]{
		Key:       query.NewKey(model.EntitySuggestions, q),
		Enabled:   searchable(q),
		StaleTime: model.SuggestionsStaleTime,
		Fetch: func(ctx context.Context) ([]model.Suggestion, error) {
			return s.repo.Suggestions(ctx, q, model.SuggestionLimit)
		},
	})
}

// PopularSearches suggests search terms from the most downloaded books.
func (s *Service) PopularSearches(ctx context.Context) query.Result[[]string] {
	return query.Run(ctx, s.queries, query.Query[[]string]{
		Key:       query.NewKey(model.EntityPopular),
		Enabled:   true,
		StaleTime: model.PopularStaleTime,
		Fetch: func(ctx context.Context) ([]string, error) {
			authors, err := s.repo.TopAuthors(ctx, model.PopularLimit)
			if err != nil {
				return nil, err
			}
			return model.PopularTerms(authors, model.PopularLimit), nil
		},
	})
}
