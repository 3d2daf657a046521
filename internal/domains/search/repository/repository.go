package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"karwan-auliya/internal/domains/search/model"
	"karwan-auliya/internal/shared/utils"
)

type Repository interface {
	// Search calls the search_books function; rows come back by rank.
	Search(ctx context.Context, term string) ([]model.Result, error)
	Suggestions(ctx context.Context, term string, limit int) ([]model.Suggestion, error)
	// TopAuthors returns the authors of the most downloaded published books.
	TopAuthors(ctx context.Context, limit int) ([]string, error)
}

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) Search(ctx context.Context, term string) ([]model.Result, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, title, author, description, cover_url, category_id,
		       COALESCE(average_rating, 0), COALESCE(review_count, 0), COALESCE(download_count, 0),
		       publication_year, pages, status, rank
		FROM search_books($1)`, term)
	if err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}
	defer rows.Close()

	results := make([]model.Result, 0)
	for rows.Next() {
		var res model.Result
		if err := rows.Scan(&res.ID, &res.Title, &res.Author, &res.Description, &res.CoverURL, &res.CategoryID,
			&res.AverageRating, &res.ReviewCount, &res.DownloadCount,
			&res.PublicationYear, &res.Pages, &res.Status, &res.Rank); err != nil {
			return nil, fmt.Errorf("scan search result: %w", err)
		}
		results = append(results, res)
	}
	return results, rows.Err()
}

func (r *postgresRepository) Suggestions(ctx context.Context, term string, limit int) ([]model.Suggestion, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, title, author FROM books
		WHERE status = 'published' AND (title ILIKE $1 OR author ILIKE $1)
		LIMIT $2`, utils.LikePattern(term), limit)
	if err != nil {
		return nil, fmt.Errorf("query suggestions: %w", err)
	}
	defer rows.Close()

	suggestions := make([]model.Suggestion, 0, limit)
	for rows.Next() {
		var s model.Suggestion
		if err := rows.Scan(&s.ID, &s.Title, &s.Author); err != nil {
			return nil, fmt.Errorf("scan suggestion: %w", err)
		}
		suggestions = append(suggestions, s)
	}
	return suggestions, rows.Err()
}

func (r *postgresRepository) TopAuthors(ctx context.Context, limit int) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT author FROM books
		WHERE status = 'published'
		ORDER BY download_count DESC NULLS LAST
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query top authors: %w", err)
	}
	defer rows.Close()

	authors := make([]string, 0, limit)
	for rows.Next() {
		var a string
		if err := rows.Scan(&a); err != nil {
			return nil, fmt.Errorf("scan author: %w", err)
		}
		authors = append(authors, a)
	}
	return authors, rows.Err()
}
