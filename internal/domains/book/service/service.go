package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"karwan-auliya/internal/domains/book/model"
	"karwan-auliya/internal/domains/book/repository"
	"karwan-auliya/internal/realtime"
	"karwan-auliya/internal/shared/auth"
	"karwan-auliya/internal/transfer"
	"karwan-auliya/pkg/query"
)

const (
	table = "books"

	searchEntity = "search"
	defaultShelf = 10
)

// entities whose cached reads embed books and go stale when one is deleted
var dependentEntities = []string{
	model.Entity, searchEntity, "reviews", "bookmarks", "user-library", "reading-progress", "user-stats",
}

// PublishNotifier announces newly published books to subscribed devices.
type PublishNotifier interface {
	NotifyBookPublished(ctx context.Context, bookID uuid.UUID, title, author string) error
}

// AssetRemover deletes stored covers and files; failures are not fatal.
type AssetRemover interface {
	Delete(ctx context.Context, area transfer.Area, path string) bool
	CoverPath(publicURL string) string
}

type Service struct {
	repo     repository.Repository
	queries  *query.Client
	events   realtime.Broadcaster
	notifier PublishNotifier
	assets   AssetRemover
}

func NewService(
	repo repository.Repository,
	queries *query.Client,
	events realtime.Broadcaster,
	notifier PublishNotifier,
	assets AssetRemover,
) *Service {
	return &Service{
		repo:     repo,
		queries:  queries,
		events:   events,
		notifier: notifier,
		assets:   assets,
	}
}

// List returns books matching f. Drafts are only listed for admins: any
// other caller gets the status forced to published.
func (s *Service) List(ctx context.Context, f model.Filter) query.Result[[]model.Book] {
	f = f.Normalize()
	if !auth.FromContext(ctx).IsAdmin() {
		f.Status = model.StatusPublished
	}
	if err := f.Validate(); err != nil {
		return query.Fail[[]model.Book](err)
	}

	return query.Run(ctx, s.queries, query.Query[[]model.Book]{
		Key:     query.NewKey(model.Entity, f),
		Enabled: true,
		Fetch: func(ctx context.Context) ([]model.Book, error) {
			return s.repo.List(ctx, f)
		},
	})
}

// Get looks a book up by id. Unknown ids and drafts seen by non-admins both
// report ErrBookNotFound.
func (s *Service) Get(ctx context.Context, id string) query.Result[*model.Book] {
	id = strings.TrimSpace(id)
	res := query.Run(ctx, s.queries, query.Query[*model.Book]{
		Key:     query.NewKey(model.Entity, id),
		Enabled: id != "",
		Fetch: func(ctx context.Context) (*model.Book, error) {
			bookID, err := uuid.Parse(id)
			if err != nil {
				return nil, model.ErrBookNotFound
			}
			return s.repo.GetByID(ctx, bookID)
		},
	})

	if res.Data != nil && !res.Data.IsPublished() && !auth.FromContext(ctx).IsAdmin() {
		return query.Fail[*model.Book](model.ErrBookNotFound)
	}
	return res
}

// Featured returns the newest published books.
func (s *Service) Featured(ctx context.Context, limit int) query.Result[[]model.Book] {
	return s.shelf(ctx, "featured", limit, "created_at")
}

// Popular returns the most downloaded published books.
func (s *Service) Popular(ctx context.Context, limit int) query.Result[[]model.Book] {
	return s.shelf(ctx, "popular", limit, "download_count")
}

func (s *Service) shelf(ctx context.Context, name string, limit int, sortBy string) query.Result[[]model.Book] {
	if limit <= 0 || limit > model.MaxLimit {
		limit = defaultShelf
	}
	f := model.Filter{Status: model.StatusPublished, SortBy: sortBy, SortOrder: "desc", Limit: limit}
	return query.Run(ctx, s.queries, query.Query[[]model.Book]{
		Key:     query.NewKey(model.Entity, name, limit),
		Enabled: true,
		Fetch: func(ctx context.Context) ([]model.Book, error) {
			return s.repo.List(ctx, f)
		},
	})
}

// QuickSearch is the lightweight title/author/description lookup used by the
// header search box.
func (s *Service) QuickSearch(ctx context.Context, term string) query.Result[[]model.Book] {
	term = strings.TrimSpace(term)
	return query.Run(ctx, s.queries, query.Query[[]model.Book]{
		Key:     query.NewKey(model.Entity, "search", term),
		Enabled: term != "",
		Fetch: func(ctx context.Context) ([]model.Book, error) {
			return s.repo.QuickSearch(ctx, term, model.QuickSearchLimit)
		},
	})
}

func (s *Service) Create(ctx context.Context, req model.CreateBookRequest) (*model.Book, error) {
	if _, err := auth.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	b := req.ToBook()
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}

	s.queries.InvalidateQuietly(ctx, model.Entity, searchEntity)
	realtime.Notify(ctx, s.events, realtime.EventInsert, table, b, nil)
	if b.IsPublished() {
		s.announce(ctx, b)
	}
	return b, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req model.UpdateBookRequest) (*model.Book, error) {
	if _, err := auth.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	if req.IsEmpty() {
		return nil, model.ErrNothingToUpdate
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	before, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	after, err := s.repo.Update(ctx, id, req)
	if err != nil {
		return nil, err
	}

	s.queries.InvalidateQuietly(ctx, model.Entity, searchEntity)
	realtime.Notify(ctx, s.events, realtime.EventUpdate, table, after, before)
	if !before.IsPublished() && after.IsPublished() {
		s.announce(ctx, after)
	}
	return after, nil
}

// Delete removes the book and then, best effort, its stored cover and file.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := auth.RequireAdmin(ctx); err != nil {
		return err
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}

	if s.assets != nil {
		if deleted.CoverURL != nil {
			if p := s.assets.CoverPath(*deleted.CoverURL); p != "" {
				s.assets.Delete(ctx, transfer.AreaCovers, p)
			}
		}
		if deleted.HasFile() {
			s.assets.Delete(ctx, transfer.AreaBooks, *deleted.FileURL)
		}
	}

	s.queries.InvalidateQuietly(ctx, dependentEntities...)
	realtime.Notify(ctx, s.events, realtime.EventDelete, table, nil, deleted)
	return nil
}

// AttachCover records the public URL of an uploaded cover.
func (s *Service) AttachCover(ctx context.Context, id uuid.UUID, publicURL string) (*model.Book, error) {
	return s.Update(ctx, id, model.UpdateBookRequest{CoverURL: &publicURL})
}

// AttachFile records the storage path of an uploaded book file and, when it
// could be read, its page count.
func (s *Service) AttachFile(ctx context.Context, id uuid.UUID, path string, pages int) (*model.Book, error) {
	req := model.UpdateBookRequest{FileURL: &path}
	if pages > 0 {
		req.Pages = &pages
	}
	return s.Update(ctx, id, req)
}

func (s *Service) announce(ctx context.Context, b *model.Book) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyBookPublished(ctx, b.ID, b.Title, b.Author); err != nil {
		log.Warn().Err(err).Str("book_id", b.ID.String()).Msg("could not enqueue publish notification")
	}
}
