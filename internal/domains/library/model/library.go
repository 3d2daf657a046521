package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	bookModel "karwan-auliya/internal/domains/book/model"
)

// Query cache names owned by this domain.
const (
	EntityLibrary   = "user-library"
	EntityBookmarks = "bookmarks"
	EntityProgress  = "reading-progress"
	EntityStats     = "user-stats"
)

// UserBook is a library entry: a book the user has downloaded.
type UserBook struct {
	ID           uuid.UUID  `json:"id"`
	UserID       uuid.UUID  `json:"user_id"`
	BookID       uuid.UUID  `json:"book_id"`
	DownloadedAt time.Time  `json:"downloaded_at"`
	LastOpenedAt *time.Time `json:"last_opened_at"`

	Book *bookModel.Book `json:"book,omitempty"`
}

type Bookmark struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	BookID    uuid.UUID `json:"book_id"`
	CreatedAt time.Time `json:"created_at"`

	Book *bookModel.Book `json:"book,omitempty"`
}

type ReadingProgress struct {
	ID              uuid.UUID       `json:"id"`
	UserID          uuid.UUID       `json:"user_id"`
	BookID          uuid.UUID       `json:"book_id"`
	CurrentPage     int             `json:"current_page"`
	TotalPages      *int            `json:"total_pages"`
	ProgressPercent decimal.Decimal `json:"progress_percent"`
	Status          string          `json:"status"`
	StartedAt       *time.Time      `json:"started_at"`
	CompletedAt     *time.Time      `json:"completed_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

type Stats struct {
	Downloaded int `json:"downloaded"`
	Bookmarks  int `json:"bookmarks"`
	Reading    int `json:"reading"`
}

// UpdateProgressRequest reports the page the reader is on.
type UpdateProgressRequest struct {
	CurrentPage int  `json:"current_page"`
	TotalPages  *int `json:"total_pages"`
}

// Download is a freshly minted link to a book file.
type Download struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
	BookID    uuid.UUID `json:"book_id"`
}
