package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"

	bookModel "karwan-auliya/internal/domains/book/model"
	"karwan-auliya/internal/domains/library/model"
	"karwan-auliya/internal/domains/library/repository"
	"karwan-auliya/internal/realtime"
	"karwan-auliya/internal/shared/auth"
	"karwan-auliya/pkg/query"
)

const (
	tableLibrary   = "user_books"
	tableBookmarks = "bookmarks"
	tableProgress  = "reading_progress"

	// bulk fan-out bound; every id still gets its own call
	maxParallel = 8
)

// BookReader is the part of the book store a download needs.
type BookReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*bookModel.Book, error)
	IncrementDownloads(ctx context.Context, id uuid.UUID) error
}

// URLSigner mints time-limited links to private book files.
type URLSigner interface {
	DownloadURL(ctx context.Context, path string) (string, error)
	SignedURLTTL() time.Duration
}

type Service struct {
	repo    repository.Repository
	books   BookReader
	signer  URLSigner
	queries *query.Client
	events  realtime.Broadcaster
}

func NewService(
	repo repository.Repository,
	books BookReader,
	signer URLSigner,
	queries *query.Client,
	events realtime.Broadcaster,
) *Service {
	return &Service{
		repo:    repo,
		books:   books,
		signer:  signer,
		queries: queries,
		events:  events,
	}
}

// userQuery runs a read scoped to the signed-in user. Anonymous callers get
// ErrNotAuthenticated without a fetch.
func userQuery[T any](
	ctx context.Context,
	s *Service,
	entity string,
	enabled bool,
	fetch func(ctx context.Context, userID uuid.UUID) (T, error),
	params ...interface{},
) query.Result[T] {
	sess, err := auth.RequireUser(ctx)
	if err != nil {
		return query.Fail[T](err)
	}
	return query.Run(ctx, s.queries, query.Query[T]{
		Key:     query.NewKey(entity, append([]interface{}{sess.UserID}, params...)...),
		Enabled: enabled,
		Fetch: func(ctx context.Context) (T, error) {
			return fetch(ctx, sess.UserID)
		},
	})
}

func parseBookID(raw string) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	return id, err == nil
}

// ---------------------------------------------------------------------------
// Library entries
// ---------------------------------------------------------------------------

// Library lists the caller's downloaded books, most recent first.
func (s *Service) Library(ctx context.Context) query.Result[[]model.UserBook] {
	return userQuery(ctx, s, model.EntityLibrary, true, s.repo.ListLibrary)
}

func (s *Service) AddToLibrary(ctx context.Context, bookID uuid.UUID) (*model.UserBook, error) {
	sess, err := auth.RequireUser(ctx)
	if err != nil {
		return nil, err
	}
	entry, err := s.repo.AddToLibrary(ctx, sess.UserID, bookID)
	if err != nil {
		return nil, err
	}
	s.queries.InvalidateQuietly(ctx, model.EntityLibrary, model.EntityStats)
	realtime.Notify(ctx, s.events, realtime.EventInsert, tableLibrary, entry, nil)
	return entry, nil
}

func (s *Service) RemoveFromLibrary(ctx context.Context, bookID uuid.UUID) error {
	sess, err := auth.RequireUser(ctx)
	if err != nil {
		return err
	}
	if err := s.repo.RemoveFromLibrary(ctx, sess.UserID, bookID); err != nil {
		return err
	}
	s.queries.InvalidateQuietly(ctx, model.EntityLibrary, model.EntityStats)
	realtime.Notify(ctx, s.events, realtime.EventDelete, tableLibrary, nil,
		model.UserBook{UserID: sess.UserID, BookID: bookID})
	return nil
}

// InLibrary reports whether the caller has the book; disabled for an empty id.
func (s *Service) InLibrary(ctx context.Context, bookID string) query.Result[bool] {
	id, ok := parseBookID(bookID)
	return userQuery(ctx, s, model.EntityLibrary, strings.TrimSpace(bookID) != "",
		func(ctx context.Context, userID uuid.UUID) (bool, error) {
			if !ok {
				return false, nil
			}
			return s.repo.InLibrary(ctx, userID, id)
		}, "check", bookID)
}

// Touch records that the caller opened a book from their library.
func (s *Service) Touch(ctx context.Context, bookID uuid.UUID) (*model.UserBook, error) {
	sess, err := auth.RequireUser(ctx)
	if err != nil {
		return nil, err
	}
	entry, err := s.repo.TouchLibrary(ctx, sess.UserID, bookID)
	if err != nil {
		return nil, err
	}
	s.queries.InvalidateQuietly(ctx, model.EntityLibrary)
	realtime.Notify(ctx, s.events, realtime.EventUpdate, tableLibrary, entry, nil)
	return entry, nil
}

// ---------------------------------------------------------------------------
// Bookmarks
// ---------------------------------------------------------------------------

func (s *Service) Bookmarks(ctx context.Context) query.Result[[]model.Bookmark] {
	return userQuery(ctx, s, model.EntityBookmarks, true, s.repo.ListBookmarks)
}

func (s *Service) AddBookmark(ctx context.Context, bookID uuid.UUID) (*model.Bookmark, error) {
	sess, err := auth.RequireUser(ctx)
	if err != nil {
		return nil, err
	}
	bm, err := s.repo.AddBookmark(ctx, sess.UserID, bookID)
	if err != nil {
		return nil, err
	}
	s.queries.InvalidateQuietly(ctx, model.EntityBookmarks, model.EntityStats)
	realtime.Notify(ctx, s.events, realtime.EventInsert, tableBookmarks, bm, nil)
	return bm, nil
}

func (s *Service) RemoveBookmark(ctx context.Context, bookID uuid.UUID) error {
	sess, err := auth.RequireUser(ctx)
	if err != nil {
		return err
	}
	if err := s.repo.RemoveBookmark(ctx, sess.UserID, bookID); err != nil {
		return err
	}
	s.queries.InvalidateQuietly(ctx, model.EntityBookmarks, model.EntityStats)
	realtime.Notify(ctx, s.events, realtime.EventDelete, tableBookmarks, nil,
		model.Bookmark{UserID: sess.UserID, BookID: bookID})
	return nil
}

func (s *Service) IsBookmarked(ctx context.Context, bookID string) query.Result[bool] {
	id, ok := parseBookID(bookID)
	return userQuery(ctx, s, model.EntityBookmarks, strings.TrimSpace(bookID) != "",
		func(ctx context.Context, userID uuid.UUID) (bool, error) {
			if !ok {
				return false, nil
			}
			return s.repo.IsBookmarked(ctx, userID, id)
		}, "check", bookID)
}

// RemoveBookmarks removes every given bookmark with one call per id. It
// returns once all calls have settled; failures are listed per id in the
// result and joined into the returned error.
func (s *Service) RemoveBookmarks(ctx context.Context, bookIDs []uuid.UUID) (model.BulkResult, error) {
	if _, err := auth.RequireUser(ctx); err != nil {
		return model.BulkResult{}, err
	}
	if len(bookIDs) == 0 {
		return model.BulkResult{}, model.ErrEmptyBatch
	}

	var (
		mu     sync.Mutex
		result = model.BulkResult{Succeeded: []uuid.UUID{}, Failed: []model.BulkFailure{}}
	)
	p := pool.New().WithMaxGoroutines(maxParallel)
	for _, id := range bookIDs {
		p.Go(func() {
			err := s.RemoveBookmark(ctx, id)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed = append(result.Failed, model.NewBulkFailure(id, err))
				return
			}
			result.Succeeded = append(result.Succeeded, id)
		})
	}
	p.Wait()

	return result, result.Err()
}

// ---------------------------------------------------------------------------
// Reading progress
// ---------------------------------------------------------------------------

// Progress returns the caller's position in a book, nil when not started.
func (s *Service) Progress(ctx context.Context, bookID string) query.Result[*model.ReadingProgress] {
	id, ok := parseBookID(bookID)
	return userQuery(ctx, s, model.EntityProgress, strings.TrimSpace(bookID) != "",
		func(ctx context.Context, userID uuid.UUID) (*model.ReadingProgress, error) {
			if !ok {
				return nil, nil
			}
			return s.repo.GetProgress(ctx, userID, id)
		}, bookID)
}

func (s *Service) AllProgress(ctx context.Context) query.Result[[]model.ReadingProgress] {
	return userQuery(ctx, s, model.EntityProgress, true, s.repo.ListProgress)
}

func (s *Service) UpdateProgress(ctx context.Context, bookID uuid.UUID, req model.UpdateProgressRequest) (*model.ReadingProgress, error) {
	sess, err := auth.RequireUser(ctx)
	if err != nil {
		return nil, err
	}
	derived, err := model.ComputeProgress(req.CurrentPage, req.TotalPages)
	if err != nil {
		return nil, err
	}

	saved, err := s.repo.UpsertProgress(ctx, &model.ReadingProgress{
		UserID:          sess.UserID,
		BookID:          bookID,
		CurrentPage:     req.CurrentPage,
		TotalPages:      req.TotalPages,
		ProgressPercent: derived.Percent,
		Status:          derived.Status,
	})
	if err != nil {
		return nil, err
	}
	s.queries.InvalidateQuietly(ctx, model.EntityProgress, model.EntityStats)
	realtime.Notify(ctx, s.events, realtime.EventUpdate, tableProgress, saved, nil)
	return saved, nil
}

// ---------------------------------------------------------------------------
// Stats and downloads
// ---------------------------------------------------------------------------

// Stats counts library entries, bookmarks and books being read. The three
// counts run concurrently.
func (s *Service) Stats(ctx context.Context) query.Result[model.Stats] {
	return userQuery(ctx, s, model.EntityStats, true, func(ctx context.Context, userID uuid.UUID) (model.Stats, error) {
		var stats model.Stats
		p := pool.New().WithContext(ctx).WithCancelOnError()
		p.Go(func(ctx context.Context) (err error) {
			stats.Downloaded, err = s.repo.CountLibrary(ctx, userID)
			return err
		})
		p.Go(func(ctx context.Context) (err error) {
			stats.Bookmarks, err = s.repo.CountBookmarks(ctx, userID)
			return err
		})
		p.Go(func(ctx context.Context) (err error) {
			stats.Reading, err = s.repo.CountReading(ctx, userID)
			return err
		})
		if err := p.Wait(); err != nil {
			return model.Stats{}, err
		}
		return stats, nil
	})
}

// Download mints a fresh signed link to a published book's file, records
// the book in the caller's library and counts the download.
func (s *Service) Download(ctx context.Context, bookID uuid.UUID) (*model.Download, error) {
	sess, err := auth.RequireUser(ctx)
	if err != nil {
		return nil, err
	}
	book, err := s.books.GetByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, bookModel.ErrBookNotFound) {
			return nil, model.ErrBookNotFound
		}
		return nil, err
	}
	if !book.IsPublished() && !sess.IsAdmin() {
		return nil, model.ErrBookNotFound
	}
	if !book.HasFile() {
		return nil, model.ErrBookUnavailable
	}

	url, err := s.signer.DownloadURL(ctx, *book.FileURL)
	if err != nil {
		return nil, err
	}
	expiresAt := time.Now().Add(s.signer.SignedURLTTL())

	entry, err := s.repo.AddToLibrary(ctx, sess.UserID, bookID)
	if err != nil && !errors.Is(err, model.ErrAlreadyInLibrary) {
		return nil, err
	}
	added := err == nil
	if err := s.books.IncrementDownloads(ctx, bookID); err != nil {
		return nil, err
	}

	s.queries.InvalidateQuietly(ctx, bookModel.Entity, model.EntityLibrary, model.EntityStats)
	if added {
		realtime.Notify(ctx, s.events, realtime.EventInsert, tableLibrary, entry, nil)
	}
	return &model.Download{URL: url, ExpiresAt: expiresAt, BookID: bookID}, nil
}
