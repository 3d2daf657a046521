package repository

import (
	"context"

	"github.com/google/uuid"

	"karwan-auliya/internal/domains/review/model"
)

type Repository interface {
	// ListByBook returns reviews newest first, each with its reviewer profile.
	ListByBook(ctx context.Context, bookID uuid.UUID) ([]model.Review, error)
	// GetByUserAndBook returns nil, nil when the user has not reviewed the book.
	GetByUserAndBook(ctx context.Context, userID, bookID uuid.UUID) (*model.Review, error)
	// Upsert writes the review and recomputes the book's rating aggregate in
	// one transaction. inserted is false when an existing review was replaced.
	Upsert(ctx context.Context, r *model.Review) (saved *model.Review, inserted bool, err error)
	// Delete removes the review and recomputes the aggregate.
	Delete(ctx context.Context, userID, bookID uuid.UUID) (*model.Review, error)
}
