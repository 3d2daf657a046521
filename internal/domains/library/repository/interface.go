package repository

import (
	"context"

	"github.com/google/uuid"

	"karwan-auliya/internal/domains/library/model"
)

// Repository stores per-user library state. Every method is scoped to
// userID.
type Repository interface {
	ListLibrary(ctx context.Context, userID uuid.UUID) ([]model.UserBook, error)
	AddToLibrary(ctx context.Context, userID, bookID uuid.UUID) (*model.UserBook, error)
	RemoveFromLibrary(ctx context.Context, userID, bookID uuid.UUID) error
	InLibrary(ctx context.Context, userID, bookID uuid.UUID) (bool, error)
	TouchLibrary(ctx context.Context, userID, bookID uuid.UUID) (*model.UserBook, error)

	ListBookmarks(ctx context.Context, userID uuid.UUID) ([]model.Bookmark, error)
	AddBookmark(ctx context.Context, userID, bookID uuid.UUID) (*model.Bookmark, error)
	RemoveBookmark(ctx context.Context, userID, bookID uuid.UUID) error
	IsBookmarked(ctx context.Context, userID, bookID uuid.UUID) (bool, error)

	// GetProgress returns nil, nil when nothing was recorded yet.
	GetProgress(ctx context.Context, userID, bookID uuid.UUID) (*model.ReadingProgress, error)
	ListProgress(ctx context.Context, userID uuid.UUID) ([]model.ReadingProgress, error)
	// UpsertProgress keeps started_at and completed_at once they are set.
	UpsertProgress(ctx context.Context, p *model.ReadingProgress) (*model.ReadingProgress, error)

	CountLibrary(ctx context.Context, userID uuid.UUID) (int, error)
	CountBookmarks(ctx context.Context, userID uuid.UUID) (int, error)
	CountReading(ctx context.Context, userID uuid.UUID) (int, error)
}
