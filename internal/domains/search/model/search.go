package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Query cache names.
const (
	Entity            = "search"
	EntitySuggestions = "search-suggestions"
	EntityPopular     = "popular-searches"
)

const (
	MinQueryLength  = 2
	SuggestionLimit = 5
	PopularLimit    = 6

	SearchStaleTime      = 30 * time.Second
	SuggestionsStaleTime = 10 * time.Second
	PopularStaleTime     = 5 * time.Minute
)

const (
	SortRelevance = "relevance"
	SortRating    = "rating"
	SortNewest    = "newest"
	SortTitle     = "title"
	SortDownloads = "downloads"
)

// Result is one row of the full-text search, ordered by Rank.
type Result struct {
	ID              uuid.UUID       `json:"id"`
	Title           string          `json:"title"`
	Author          string          `json:"author"`
	Description     *string         `json:"description"`
	CoverURL        *string         `json:"cover_url"`
	CategoryID      *uuid.UUID      `json:"category_id"`
	AverageRating   decimal.Decimal `json:"average_rating"`
	ReviewCount     int             `json:"review_count"`
	DownloadCount   int             `json:"download_count"`
	PublicationYear *int            `json:"publication_year"`
	Pages           *int            `json:"pages"`
	Status          string          `json:"status"`
	Rank            float32         `json:"rank"`
}

// Filters narrow and reorder fetched results. Zero values mean "no filter".
type Filters struct {
	CategoryID string  `json:"category_id,omitempty" form:"category_id"`
	MinRating  float64 `json:"min_rating,omitempty" form:"min_rating"`
	YearFrom   int     `json:"year_from,omitempty" form:"year_from"`
	YearTo     int     `json:"year_to,omitempty" form:"year_to"`
	SortBy     string  `json:"sort_by,omitempty" form:"sort_by"`
}

func (f Filters) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.MinRating, validation.Min(0.0), validation.Max(5.0)),
		validation.Field(&f.YearFrom, validation.Min(0)),
		validation.Field(&f.YearTo, validation.Min(0)),
		validation.Field(&f.SortBy, validation.In(SortRelevance, SortRating, SortNewest, SortTitle, SortDownloads)),
	)
}

type Suggestion struct {
	ID     uuid.UUID `json:"id"`
	Title  string    `json:"title"`
	Author string    `json:"author"`
}
