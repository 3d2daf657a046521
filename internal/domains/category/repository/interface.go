package repository

import (
	"context"

	"github.com/google/uuid"

	"karwan-auliya/internal/domains/category/model"
)

type Repository interface {
	List(ctx context.Context) ([]model.Category, error)
	ListParents(ctx context.Context) ([]model.Category, error)
	ListByParent(ctx context.Context, parentID uuid.UUID) ([]model.Category, error)
	// GetBySlug returns nil, nil when no category has slug.
	GetBySlug(ctx context.Context, slug string) (*model.Category, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Category, error)
	Create(ctx context.Context, c *model.Category) error
	Delete(ctx context.Context, id uuid.UUID) (*model.Category, error)
	// RecountBooks refreshes book_count from published books and returns the
	// number of categories whose count changed.
	RecountBooks(ctx context.Context) (int64, error)
}
