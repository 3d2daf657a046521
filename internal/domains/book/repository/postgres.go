package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"karwan-auliya/internal/domains/book/model"
	categoryModel "karwan-auliya/internal/domains/category/model"
	"karwan-auliya/internal/infrastructure/database"
	"karwan-auliya/internal/shared/utils"
)

// BookColumns lists the book columns in scan order. Other domains that
// expand a book relation select the same set.
const BookColumns = `b.id, b.title, b.author, b.description, b.cover_url, b.file_url, b.category_id,
	b.isbn, b.publisher, b.publication_year, b.pages, b.language, b.status,
	b.download_count, b.average_rating, b.review_count, b.created_at, b.updated_at`

// CategoryColumns are the nullable columns of the expanded category.
const CategoryColumns = `c.id, c.name, c.slug, c.description, c.parent_id, c.icon, c.book_count, c.created_at, c.updated_at`

const selectBooks = `SELECT ` + BookColumns + `, ` + CategoryColumns + `
	FROM books b
	LEFT JOIN categories c ON c.id = b.category_id`

var sortColumns = map[string]string{
	"created_at":     "b.created_at",
	"title":          "b.title",
	"download_count": "b.download_count",
	"average_rating": "b.average_rating",
}

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

// categoryScan holds the LEFT JOINed category, every column nullable.
type categoryScan struct {
	id          *uuid.UUID
	name        *string
	slug        *string
	description *string
	parentID    *uuid.UUID
	icon        *string
	bookCount   *int
	createdAt   *time.Time
	updatedAt   *time.Time
}

// ScanTargets returns the destinations for BookColumns followed by
// CategoryColumns, and a finalizer that attaches the category.
func ScanTargets(b *model.Book) ([]any, func()) {
	var cs categoryScan
	targets := []any{
		&b.ID, &b.Title, &b.Author, &b.Description, &b.CoverURL, &b.FileURL, &b.CategoryID,
		&b.ISBN, &b.Publisher, &b.PublicationYear, &b.Pages, &b.Language, &b.Status,
		&b.DownloadCount, &b.AverageRating, &b.ReviewCount, &b.CreatedAt, &b.UpdatedAt,
		&cs.id, &cs.name, &cs.slug, &cs.description, &cs.parentID, &cs.icon, &cs.bookCount, &cs.createdAt, &cs.updatedAt,
	}
	return targets, func() {
		if cs.id == nil {
			b.Category = nil
			return
		}
		b.Category = &categoryModel.Category{
			ID:          *cs.id,
			Name:        deref(cs.name),
			Slug:        deref(cs.slug),
			Description: cs.description,
			ParentID:    cs.parentID,
			Icon:        cs.icon,
			BookCount:   derefInt(cs.bookCount),
			CreatedAt:   derefTime(cs.createdAt),
			UpdatedAt:   derefTime(cs.updatedAt),
		}
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefInt(n *int) int {
	if n == nil {
		return 0
	}
	return *n
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

func scanBook(row pgx.Row) (*model.Book, error) {
	var b model.Book
	targets, attach := ScanTargets(&b)
	if err := row.Scan(targets...); err != nil {
		return nil, err
	}
	attach()
	return &b, nil
}

func (r *postgresRepository) collect(ctx context.Context, sql string, args ...any) ([]model.Book, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query books: %w", err)
	}
	defer rows.Close()

	books := make([]model.Book, 0)
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, *b)
	}
	return books, rows.Err()
}

func (r *postgresRepository) List(ctx context.Context, f model.Filter) ([]model.Book, error) {
	w := &utils.Where{}
	if id, err := uuid.Parse(f.CategoryID); err == nil {
		w.And("b.category_id = " + w.Arg(id))
	}
	if f.Status != "" {
		w.And("b.status = " + w.Arg(f.Status))
	}
	if f.Search != "" {
		p := w.Arg(utils.LikePattern(f.Search))
		w.AnyOf("b.title ILIKE "+p, "b.author ILIKE "+p)
	}

	column, ok := sortColumns[f.SortBy]
	if !ok {
		column = sortColumns[model.DefaultSortBy]
	}
	direction := "DESC"
	if f.SortOrder == "asc" {
		direction = "ASC"
	}

	var sb strings.Builder
	sb.WriteString(selectBooks)
	sb.WriteString(w.SQL())
	fmt.Fprintf(&sb, " ORDER BY %s %s, b.id", column, direction)
	if f.Limit > 0 || f.Offset > 0 {
		sb.WriteString(" LIMIT " + w.Arg(f.PageSize()))
	}
	if f.Offset > 0 {
		sb.WriteString(" OFFSET " + w.Arg(f.Offset))
	}

	return r.collect(ctx, sb.String(), w.Args()...)
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	b, err := scanBook(r.pool.QueryRow(ctx, selectBooks+` WHERE b.id = $1`, id))
	if database.IsNoRows(err) {
		return nil, model.ErrBookNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get book: %w", err)
	}
	return b, nil
}

func (r *postgresRepository) QuickSearch(ctx context.Context, term string, limit int) ([]model.Book, error) {
	w := &utils.Where{}
	w.And("b.status = " + w.Arg(model.StatusPublished))
	p := w.Arg(utils.LikePattern(term))
	w.AnyOf("b.title ILIKE "+p, "b.author ILIKE "+p, "b.description ILIKE "+p)

	sql := selectBooks + w.SQL() + " ORDER BY b.download_count DESC LIMIT " + w.Arg(limit)
	return r.collect(ctx, sql, w.Args()...)
}

func (r *postgresRepository) Create(ctx context.Context, b *model.Book) error {
	const sql = `
		INSERT INTO books (
			id, title, author, description, cover_url, file_url, category_id,
			isbn, publisher, publication_year, pages, language, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING download_count, average_rating, review_count, created_at, updated_at
	`
	err := r.pool.QueryRow(ctx, sql,
		b.ID, b.Title, b.Author, b.Description, b.CoverURL, b.FileURL, b.CategoryID,
		b.ISBN, b.Publisher, b.PublicationYear, b.Pages, b.Language, b.Status,
	).Scan(&b.DownloadCount, &b.AverageRating, &b.ReviewCount, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return model.ErrCategoryNotFound
		}
		return fmt.Errorf("create book: %w", err)
	}
	return nil
}

func (r *postgresRepository) Update(ctx context.Context, id uuid.UUID, req model.UpdateBookRequest) (*model.Book, error) {
	var sets []string
	var args []any
	set := func(column string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if req.Title != nil {
		set("title", strings.TrimSpace(*req.Title))
	}
	if req.Author != nil {
		set("author", strings.TrimSpace(*req.Author))
	}
	if req.Description != nil {
		set("description", *req.Description)
	}
	if req.CoverURL != nil {
		set("cover_url", *req.CoverURL)
	}
	if req.FileURL != nil {
		set("file_url", *req.FileURL)
	}
	if req.CategoryID != nil {
		set("category_id", *req.CategoryID)
	}
	if req.ISBN != nil {
		set("isbn", *req.ISBN)
	}
	if req.Publisher != nil {
		set("publisher", *req.Publisher)
	}
	if req.PublicationYear != nil {
		set("publication_year", *req.PublicationYear)
	}
	if req.Pages != nil {
		set("pages", *req.Pages)
	}
	if req.Language != nil {
		set("language", *req.Language)
	}
	if req.Status != nil {
		set("status", *req.Status)
	}
	if len(sets) == 0 {
		return nil, model.ErrNothingToUpdate
	}

	args = append(args, id)
	sql := fmt.Sprintf(`UPDATE books SET %s, updated_at = now() WHERE id = $%d`, strings.Join(sets, ", "), len(args))

	tag, err := r.pool.Exec(ctx, sql, args...)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return nil, model.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("update book: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, model.ErrBookNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	b, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("delete book: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, model.ErrBookNotFound
	}
	return b, nil
}

func (r *postgresRepository) IncrementDownloads(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `UPDATE books SET download_count = download_count + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("increment downloads: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrBookNotFound
	}
	return nil
}
