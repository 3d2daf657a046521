package repository

import (
	"context"

	"github.com/google/uuid"

	"karwan-auliya/internal/domains/book/model"
)

type Repository interface {
	// List applies f, which must already be normalized.
	List(ctx context.Context, f model.Filter) ([]model.Book, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Book, error)
	// QuickSearch matches title, author or description of published books.
	QuickSearch(ctx context.Context, term string, limit int) ([]model.Book, error)
	Create(ctx context.Context, b *model.Book) error
	Update(ctx context.Context, id uuid.UUID, req model.UpdateBookRequest) (*model.Book, error)
	Delete(ctx context.Context, id uuid.UUID) (*model.Book, error)
	IncrementDownloads(ctx context.Context, id uuid.UUID) error
}
