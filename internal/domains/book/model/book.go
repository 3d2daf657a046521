package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	categoryModel "karwan-auliya/internal/domains/category/model"
)

// Entity is the query cache name for book reads.
const Entity = "books"

const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

type Book struct {
	ID              uuid.UUID       `json:"id"`
	Title           string          `json:"title"`
	Author          string          `json:"author"`
	Description     *string         `json:"description"`
	CoverURL        *string         `json:"cover_url"`
	FileURL         *string         `json:"file_url"`
	CategoryID      *uuid.UUID      `json:"category_id"`
	ISBN            *string         `json:"isbn"`
	Publisher       *string         `json:"publisher"`
	PublicationYear *int            `json:"publication_year"`
	Pages           *int            `json:"pages"`
	Language        string          `json:"language"`
	Status          string          `json:"status"`
	DownloadCount   int             `json:"download_count"`
	AverageRating   decimal.Decimal `json:"average_rating"`
	ReviewCount     int             `json:"review_count"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`

	Category *categoryModel.Category `json:"category,omitempty"`
}

func (b *Book) IsPublished() bool {
	return b.Status == StatusPublished
}

// HasFile reports whether a downloadable file has been attached.
func (b *Book) HasFile() bool {
	return b.FileURL != nil && *b.FileURL != ""
}
