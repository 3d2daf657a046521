package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	bookModel "karwan-auliya/internal/domains/book/model"
	bookRepo "karwan-auliya/internal/domains/book/repository"
	"karwan-auliya/internal/domains/library/model"
	"karwan-auliya/internal/infrastructure/database"
)

const progressColumns = `id, user_id, book_id, current_page, total_pages, progress_percent,
	status, started_at, completed_at, updated_at`

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

// withBook appends the expanded book and its category to dest and returns
// the finalizer that attaches them.
func withBook(dest []any) ([]any, *bookModel.Book, func()) {
	b := &bookModel.Book{}
	targets, attach := bookRepo.ScanTargets(b)
	return append(dest, targets...), b, attach
}

// ---------------------------------------------------------------------------
// Library entries
// ---------------------------------------------------------------------------

func (r *postgresRepository) ListLibrary(ctx context.Context, userID uuid.UUID) ([]model.UserBook, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT ub.id, ub.user_id, ub.book_id, ub.downloaded_at, ub.last_opened_at,
		       `+bookRepo.BookColumns+`, `+bookRepo.CategoryColumns+`
		FROM user_books ub
		JOIN books b ON b.id = ub.book_id
		LEFT JOIN categories c ON c.id = b.category_id
		WHERE ub.user_id = $1
		ORDER BY ub.downloaded_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query library: %w", err)
	}
	defer rows.Close()

	entries := make([]model.UserBook, 0)
	for rows.Next() {
		var e model.UserBook
		dest, book, attach := withBook([]any{&e.ID, &e.UserID, &e.BookID, &e.DownloadedAt, &e.LastOpenedAt})
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan library entry: %w", err)
		}
		attach()
		e.Book = book
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *postgresRepository) AddToLibrary(ctx context.Context, userID, bookID uuid.UUID) (*model.UserBook, error) {
	var e model.UserBook
	err := r.pool.QueryRow(ctx, `
		INSERT INTO user_books (user_id, book_id) VALUES ($1, $2)
		RETURNING id, user_id, book_id, downloaded_at, last_opened_at`, userID, bookID).
		Scan(&e.ID, &e.UserID, &e.BookID, &e.DownloadedAt, &e.LastOpenedAt)
	switch {
	case database.IsUniqueViolation(err):
		return nil, model.ErrAlreadyInLibrary
	case database.IsForeignKeyViolation(err):
		return nil, model.ErrBookNotFound
	case err != nil:
		return nil, fmt.Errorf("add to library: %w", err)
	}
	return &e, nil
}

func (r *postgresRepository) RemoveFromLibrary(ctx context.Context, userID, bookID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM user_books WHERE user_id = $1 AND book_id = $2`, userID, bookID)
	if err != nil {
		return fmt.Errorf("remove from library: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotInLibrary
	}
	return nil
}

func (r *postgresRepository) InLibrary(ctx context.Context, userID, bookID uuid.UUID) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM user_books WHERE user_id = $1 AND book_id = $2)`, userID, bookID)
}

func (r *postgresRepository) TouchLibrary(ctx context.Context, userID, bookID uuid.UUID) (*model.UserBook, error) {
	var e model.UserBook
	err := r.pool.QueryRow(ctx, `
		UPDATE user_books SET last_opened_at = now()
		WHERE user_id = $1 AND book_id = $2
		RETURNING id, user_id, book_id, downloaded_at, last_opened_at`, userID, bookID).
		Scan(&e.ID, &e.UserID, &e.BookID, &e.DownloadedAt, &e.LastOpenedAt)
	if database.IsNoRows(err) {
		return nil, model.ErrNotInLibrary
	}
	if err != nil {
		return nil, fmt.Errorf("touch library entry: %w", err)
	}
	return &e, nil
}

// ---------------------------------------------------------------------------
// Bookmarks
// ---------------------------------------------------------------------------

func (r *postgresRepository) ListBookmarks(ctx context.Context, userID uuid.UUID) ([]model.Bookmark, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT bm.id, bm.user_id, bm.book_id, bm.created_at,
		       `+bookRepo.BookColumns+`, `+bookRepo.CategoryColumns+`
		FROM bookmarks bm
		JOIN books b ON b.id = bm.book_id
		LEFT JOIN categories c ON c.id = b.category_id
		WHERE bm.user_id = $1
		ORDER BY bm.created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query bookmarks: %w", err)
	}
	defer rows.Close()

	bookmarks := make([]model.Bookmark, 0)
	for rows.Next() {
		var bm model.Bookmark
		dest, book, attach := withBook([]any{&bm.ID, &bm.UserID, &bm.BookID, &bm.CreatedAt})
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan bookmark: %w", err)
		}
		attach()
		bm.Book = book
		bookmarks = append(bookmarks, bm)
	}
	return bookmarks, rows.Err()
}

func (r *postgresRepository) AddBookmark(ctx context.Context, userID, bookID uuid.UUID) (*model.Bookmark, error) {
	var bm model.Bookmark
	err := r.pool.QueryRow(ctx, `
		INSERT INTO bookmarks (user_id, book_id) VALUES ($1, $2)
		RETURNING id, user_id, book_id, created_at`, userID, bookID).
		Scan(&bm.ID, &bm.UserID, &bm.BookID, &bm.CreatedAt)
	switch {
	case database.IsUniqueViolation(err):
		return nil, model.ErrAlreadyBookmarked
	case database.IsForeignKeyViolation(err):
		return nil, model.ErrBookNotFound
	case err != nil:
		return nil, fmt.Errorf("add bookmark: %w", err)
	}
	return &bm, nil
}

func (r *postgresRepository) RemoveBookmark(ctx context.Context, userID, bookID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM bookmarks WHERE user_id = $1 AND book_id = $2`, userID, bookID)
	if err != nil {
		return fmt.Errorf("remove bookmark: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrBookmarkNotFound
	}
	return nil
}

func (r *postgresRepository) IsBookmarked(ctx context.Context, userID, bookID uuid.UUID) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM bookmarks WHERE user_id = $1 AND book_id = $2)`, userID, bookID)
}

// ---------------------------------------------------------------------------
// Reading progress
// ---------------------------------------------------------------------------

func scanProgress(row pgx.Row) (*model.ReadingProgress, error) {
	var p model.ReadingProgress
	err := row.Scan(&p.ID, &p.UserID, &p.BookID, &p.CurrentPage, &p.TotalPages, &p.ProgressPercent,
		&p.Status, &p.StartedAt, &p.CompletedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *postgresRepository) GetProgress(ctx context.Context, userID, bookID uuid.UUID) (*model.ReadingProgress, error) {
	p, err := scanProgress(r.pool.QueryRow(ctx,
		`SELECT `+progressColumns+` FROM reading_progress WHERE user_id = $1 AND book_id = $2`, userID, bookID))
	if database.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get reading progress: %w", err)
	}
	return p, nil
}

func (r *postgresRepository) ListProgress(ctx context.Context, userID uuid.UUID) ([]model.ReadingProgress, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+progressColumns+` FROM reading_progress WHERE user_id = $1 ORDER BY updated_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query reading progress: %w", err)
	}
	defer rows.Close()

	list := make([]model.ReadingProgress, 0)
	for rows.Next() {
		p, err := scanProgress(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reading progress: %w", err)
		}
		list = append(list, *p)
	}
	return list, rows.Err()
}

func (r *postgresRepository) UpsertProgress(ctx context.Context, p *model.ReadingProgress) (*model.ReadingProgress, error) {
	saved, err := scanProgress(r.pool.QueryRow(ctx, `
		INSERT INTO reading_progress (
			user_id, book_id, current_page, total_pages, progress_percent, status, started_at, completed_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			CASE WHEN $3 > 0 THEN now() END,
			CASE WHEN $6 = 'completed' THEN now() END
		)
		ON CONFLICT (user_id, book_id) DO UPDATE SET
			current_page     = EXCLUDED.current_page,
			total_pages      = EXCLUDED.total_pages,
			progress_percent = EXCLUDED.progress_percent,
			status           = EXCLUDED.status,
			started_at       = COALESCE(reading_progress.started_at, EXCLUDED.started_at),
			completed_at     = COALESCE(reading_progress.completed_at, EXCLUDED.completed_at),
			updated_at       = now()
		RETURNING `+progressColumns,
		p.UserID, p.BookID, p.CurrentPage, p.TotalPages, p.ProgressPercent, p.Status))
	if database.IsForeignKeyViolation(err) {
		return nil, model.ErrBookNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("upsert reading progress: %w", err)
	}
	return saved, nil
}

// ---------------------------------------------------------------------------
// Counts
// ---------------------------------------------------------------------------

func (r *postgresRepository) CountLibrary(ctx context.Context, userID uuid.UUID) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM user_books WHERE user_id = $1`, userID)
}

func (r *postgresRepository) CountBookmarks(ctx context.Context, userID uuid.UUID) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM bookmarks WHERE user_id = $1`, userID)
}

func (r *postgresRepository) CountReading(ctx context.Context, userID uuid.UUID) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM reading_progress WHERE user_id = $1 AND status = $2`, userID, model.StatusReading)
}

func (r *postgresRepository) count(ctx context.Context, sql string, args ...any) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

func (r *postgresRepository) exists(ctx context.Context, sql string, args ...any) (bool, error) {
	var ok bool
	if err := r.pool.QueryRow(ctx, sql, args...).Scan(&ok); err != nil {
		return false, fmt.Errorf("exists: %w", err)
	}
	return ok, nil
}
