package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"karwan-auliya/internal/domains/review/model"
	"karwan-auliya/internal/infrastructure/database"
	pkgdb "karwan-auliya/pkg/database"
)

const reviewColumns = `id, user_id, book_id, rating, content, created_at, updated_at`

const recomputeAggregate = `
	UPDATE books SET
		average_rating = COALESCE((SELECT ROUND(AVG(rating)::numeric, 2) FROM reviews WHERE book_id = $1), 0),
		review_count   = (SELECT COUNT(*) FROM reviews WHERE book_id = $1),
		updated_at     = now()
	WHERE id = $1`

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

func scanReview(row pgx.Row, extra ...any) (*model.Review, error) {
	var r model.Review
	dest := append([]any{&r.ID, &r.UserID, &r.BookID, &r.Rating, &r.Content, &r.CreatedAt, &r.UpdatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &r, nil
}

func (r *postgresRepository) ListByBook(ctx context.Context, bookID uuid.UUID) ([]model.Review, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT r.id, r.user_id, r.book_id, r.rating, r.content, r.created_at, r.updated_at,
		       p.id, p.display_name, p.avatar_url
		FROM reviews r
		LEFT JOIN profiles p ON p.id = r.user_id
		WHERE r.book_id = $1
		ORDER BY r.created_at DESC, r.id`, bookID)
	if err != nil {
		return nil, fmt.Errorf("query reviews: %w", err)
	}
	defer rows.Close()

	reviews := make([]model.Review, 0)
	for rows.Next() {
		var (
			profileID *uuid.UUID
			reviewer  model.Reviewer
		)
		rev, err := scanReview(rows, &profileID, &reviewer.DisplayName, &reviewer.AvatarURL)
		if err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		if profileID != nil {
			rev.Profile = &reviewer
		}
		reviews = append(reviews, *rev)
	}
	return reviews, rows.Err()
}

func (r *postgresRepository) GetByUserAndBook(ctx context.Context, userID, bookID uuid.UUID) (*model.Review, error) {
	rev, err := scanReview(r.pool.QueryRow(ctx,
		`SELECT `+reviewColumns+` FROM reviews WHERE user_id = $1 AND book_id = $2`, userID, bookID))
	if database.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get review: %w", err)
	}
	return rev, nil
}

type upsertResult struct {
	review   *model.Review
	inserted bool
}

func (r *postgresRepository) Upsert(ctx context.Context, in *model.Review) (*model.Review, bool, error) {
	res, err := pkgdb.WithTransactionResult(ctx, r.pool, func(tx pgx.Tx) (upsertResult, error) {
		var inserted bool
		// xmax is 0 only for freshly inserted tuples
		saved, err := scanReview(tx.QueryRow(ctx, `
			INSERT INTO reviews (user_id, book_id, rating, content)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (user_id, book_id) DO UPDATE SET
				rating = EXCLUDED.rating,
				content = EXCLUDED.content,
				updated_at = now()
			RETURNING `+reviewColumns+`, (xmax = 0)`,
			in.UserID, in.BookID, in.Rating, in.Content), &inserted)
		if err != nil {
			if database.IsForeignKeyViolation(err) {
				return upsertResult{}, model.ErrBookNotFound
			}
			return upsertResult{}, fmt.Errorf("upsert review: %w", err)
		}
		if _, err := tx.Exec(ctx, recomputeAggregate, in.BookID); err != nil {
			return upsertResult{}, fmt.Errorf("recompute rating: %w", err)
		}
		return upsertResult{review: saved, inserted: inserted}, nil
	})
	if err != nil {
		return nil, false, err
	}
	return res.review, res.inserted, nil
}

func (r *postgresRepository) Delete(ctx context.Context, userID, bookID uuid.UUID) (*model.Review, error) {
	return pkgdb.WithTransactionResult(ctx, r.pool, func(tx pgx.Tx) (*model.Review, error) {
		deleted, err := scanReview(tx.QueryRow(ctx,
			`DELETE FROM reviews WHERE user_id = $1 AND book_id = $2 RETURNING `+reviewColumns, userID, bookID))
		if database.IsNoRows(err) {
			return nil, model.ErrReviewNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("delete review: %w", err)
		}
		if _, err := tx.Exec(ctx, recomputeAggregate, bookID); err != nil {
			return nil, fmt.Errorf("recompute rating: %w", err)
		}
		return deleted, nil
	})
}
