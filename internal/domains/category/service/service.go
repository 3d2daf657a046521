package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	bookModel "karwan-auliya/internal/domains/book/model"
	"karwan-auliya/internal/domains/category/model"
	"karwan-auliya/internal/domains/category/repository"
	"karwan-auliya/internal/realtime"
	"karwan-auliya/internal/shared/auth"
	"karwan-auliya/internal/shared/utils"
	"karwan-auliya/pkg/query"
)

const table = "categories"

type Service struct {
	repo    repository.Repository
	queries *query.Client
	events  realtime.Broadcaster
}

func NewService(repo repository.Repository, queries *query.Client, events realtime.Broadcaster) *Service {
	return &Service{repo: repo, queries: queries, events: events}
}

// List returns every category ordered by name.
func (s *Service) List(ctx context.Context) query.Result[[]model.Category] {
	return query.Run(ctx, s.queries, query.Query[[]model.Category]{
		Key:     query.NewKey(model.Entity),
		Enabled: true,
		Fetch:   s.repo.List,
	})
}

// ListParents returns the top-level categories.
func (s *Service) ListParents(ctx context.Context) query.Result[[]model.Category] {
	return query.Run(ctx, s.queries, query.Query[[]model.Category]{
		Key:     query.NewKey(model.Entity, "parents"),
		Enabled: true,
		Fetch:   s.repo.ListParents,
	})
}

// ListSubcategories returns the children of the category with parentSlug.
// An unknown parent yields an empty list.
func (s *Service) ListSubcategories(ctx context.Context, parentSlug string) query.Result[[]model.Category] {
	parentSlug = strings.TrimSpace(parentSlug)
	return query.Run(ctx, s.queries, query.Query[[]model.Category]{
		Key:     query.NewKey(model.Entity, "subcategories", parentSlug),
		Enabled: parentSlug != "",
		Fetch: func(ctx context.Context) ([]model.Category, error) {
			parent, err := s.repo.GetBySlug(ctx, parentSlug)
			if err != nil {
				return nil, err
			}
			if parent == nil {
				return []model.Category{}, nil
			}
			return s.repo.ListByParent(ctx, parent.ID)
		},
	})
}

// GetBySlug returns nil data, not an error, when the slug is unknown.
func (s *Service) GetBySlug(ctx context.Context, slug string) query.Result[*model.Category] {
	slug = strings.TrimSpace(slug)
	return query.Run(ctx, s.queries, query.Query[*model.Category]{
		Key:     query.NewKey(model.Entity, "slug", slug),
		Enabled: slug != "",
		Fetch: func(ctx context.Context) (*model.Category, error) {
			return s.repo.GetBySlug(ctx, slug)
		},
	})
}

func (s *Service) Create(ctx context.Context, req model.CreateCategoryRequest) (*model.Category, error) {
	if _, err := auth.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	slug := utils.GenerateSlug(req.Slug)
	if slug == "" {
		slug = utils.GenerateSlug(req.Name)
	}
	if slug == "" {
		return nil, validation.Errors{"slug": errors.New("cannot be derived from name")}
	}

	if req.ParentID != nil {
		parent, err := s.repo.GetByID(ctx, *req.ParentID)
		if errors.Is(err, model.ErrCategoryNotFound) {
			return nil, model.ErrInvalidParent
		}
		if err != nil {
			return nil, err
		}
		if !parent.IsTopLevel() {
			return nil, model.ErrInvalidParent
		}
	}

	c := &model.Category{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(req.Name),
		Slug:        slug,
		Description: req.Description,
		ParentID:    req.ParentID,
		Icon:        req.Icon,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}

	s.queries.InvalidateQuietly(ctx, model.Entity, bookModel.Entity)
	realtime.Notify(ctx, s.events, realtime.EventInsert, table, c, nil)
	return c, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := auth.RequireAdmin(ctx); err != nil {
		return err
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}

	s.queries.InvalidateQuietly(ctx, model.Entity, bookModel.Entity)
	realtime.Notify(ctx, s.events, realtime.EventDelete, table, nil, deleted)
	return nil
}

// RecountBooks refreshes the denormalized book_count column.
func (s *Service) RecountBooks(ctx context.Context) error {
	changed, err := s.repo.RecountBooks(ctx)
	if err != nil {
		return fmt.Errorf("recount: %w", err)
	}
	log.Info().Int64("changed", changed).Msg("category book counts refreshed")
	if changed > 0 {
		s.queries.InvalidateQuietly(ctx, model.Entity)
	}
	return nil
}
