package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"karwan-auliya/internal/domains/category/model"
	"karwan-auliya/internal/infrastructure/database"
)

const categoryColumns = `id, name, slug, description, parent_id, icon, book_count, created_at, updated_at`

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

func scanCategory(row pgx.Row) (*model.Category, error) {
	var c model.Category
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.ParentID, &c.Icon, &c.BookCount, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *postgresRepository) query(ctx context.Context, sql string, args ...any) ([]model.Category, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	categories := make([]model.Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, *c)
	}
	return categories, rows.Err()
}

func (r *postgresRepository) List(ctx context.Context) ([]model.Category, error) {
	return r.query(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY name`)
}

func (r *postgresRepository) ListParents(ctx context.Context) ([]model.Category, error) {
	return r.query(ctx, `SELECT `+categoryColumns+` FROM categories WHERE parent_id IS NULL ORDER BY name`)
}

func (r *postgresRepository) ListByParent(ctx context.Context, parentID uuid.UUID) ([]model.Category, error) {
	return r.query(ctx, `SELECT `+categoryColumns+` FROM categories WHERE parent_id = $1 ORDER BY name`, parentID)
}

func (r *postgresRepository) GetBySlug(ctx context.Context, slug string) (*model.Category, error) {
	c, err := scanCategory(r.pool.QueryRow(ctx, `SELECT `+categoryColumns+` FROM categories WHERE slug = $1`, slug))
	if database.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get category by slug: %w", err)
	}
	return c, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	c, err := scanCategory(r.pool.QueryRow(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id))
	if database.IsNoRows(err) {
		return nil, model.ErrCategoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

func (r *postgresRepository) Create(ctx context.Context, c *model.Category) error {
	const sql = `
		INSERT INTO categories (id, name, slug, description, parent_id, icon)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING book_count, created_at, updated_at
	`
	err := r.pool.QueryRow(ctx, sql, c.ID, c.Name, c.Slug, c.Description, c.ParentID, c.Icon).
		Scan(&c.BookCount, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return model.ErrDuplicateSlug
		}
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	c, err := scanCategory(r.pool.QueryRow(ctx, `DELETE FROM categories WHERE id = $1 RETURNING `+categoryColumns, id))
	if database.IsNoRows(err) {
		return nil, model.ErrCategoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("delete category: %w", err)
	}
	return c, nil
}

func (r *postgresRepository) RecountBooks(ctx context.Context) (int64, error) {
	const sql = `
		UPDATE categories c
		SET book_count = counts.n, updated_at = now()
		FROM (
			SELECT c2.id, COUNT(b.id)::int AS n
			FROM categories c2
			LEFT JOIN books b ON b.category_id = c2.id AND b.status = 'published'
			GROUP BY c2.id
		) counts
		WHERE c.id = counts.id AND c.book_count <> counts.n
	`
	tag, err := r.pool.Exec(ctx, sql)
	if err != nil {
		return 0, fmt.Errorf("recount category books: %w", err)
	}
	return tag.RowsAffected(), nil
}
