package model

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

const (
	DefaultLimit      = 10
	MaxLimit          = 100
	QuickSearchLimit  = 20
	DefaultSortBy     = "created_at"
	DefaultSortOrder  = "desc"
	defaultLanguage   = "English"
	maxPublishingYear = 1 // years into the future still accepted
)

var sortColumns = []interface{}{"created_at", "title", "download_count", "average_rating"}

// Filter is the read configuration for book lists. Two filters with the
// same field values share one cache entry.
type Filter struct {
	CategoryID string `json:"category_id,omitempty" form:"category_id"`
	Search     string `json:"search,omitempty" form:"search"`
	Status     string `json:"status,omitempty" form:"status"`
	SortBy     string `json:"sort_by,omitempty" form:"sort_by"`
	SortOrder  string `json:"sort_order,omitempty" form:"sort_order"`
	Limit      int    `json:"limit,omitempty" form:"limit"`
	Offset     int    `json:"offset,omitempty" form:"offset"`
}

// Normalize fills defaults so equivalent filters compare equal.
func (f Filter) Normalize() Filter {
	f.CategoryID = strings.TrimSpace(f.CategoryID)
	f.Search = strings.TrimSpace(f.Search)
	if f.SortBy == "" {
		f.SortBy = DefaultSortBy
	}
	if f.SortOrder == "" {
		f.SortOrder = DefaultSortOrder
	}
	return f
}

func (f Filter) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.CategoryID, validation.By(optionalUUID)),
		validation.Field(&f.Status, validation.In(StatusDraft, StatusPublished)),
		validation.Field(&f.SortBy, validation.In(sortColumns...)),
		validation.Field(&f.SortOrder, validation.In("asc", "desc")),
		validation.Field(&f.Limit, validation.Min(0), validation.Max(MaxLimit)),
		validation.Field(&f.Offset, validation.Min(0)),
	)
}

// PageSize is the size of the offset window; the default applies when an
// offset is given without a limit.
func (f Filter) PageSize() int {
	if f.Limit > 0 {
		return f.Limit
	}
	return DefaultLimit
}

type CreateBookRequest struct {
	Title           string     `json:"title"`
	Author          string     `json:"author"`
	Description     *string    `json:"description"`
	CoverURL        *string    `json:"cover_url"`
	FileURL         *string    `json:"file_url"`
	CategoryID      *uuid.UUID `json:"category_id"`
	ISBN            *string    `json:"isbn"`
	Publisher       *string    `json:"publisher"`
	PublicationYear *int       `json:"publication_year"`
	Pages           *int       `json:"pages"`
	Language        string     `json:"language"`
	Status          string     `json:"status"`
}

func (r CreateBookRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 300)),
		validation.Field(&r.Author, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.ISBN, validation.NilOrNotEmpty, validation.Length(10, 17)),
		validation.Field(&r.PublicationYear, validation.Min(0), validation.Max(time.Now().Year()+maxPublishingYear)),
		validation.Field(&r.Pages, validation.Min(1)),
		validation.Field(&r.Status, validation.In(StatusDraft, StatusPublished)),
	)
}

// ToBook builds the row to insert, applying column defaults.
func (r CreateBookRequest) ToBook() *Book {
	b := &Book{
		ID:              uuid.New(),
		Title:           strings.TrimSpace(r.Title),
		Author:          strings.TrimSpace(r.Author),
		Description:     r.Description,
		CoverURL:        r.CoverURL,
		FileURL:         r.FileURL,
		CategoryID:      r.CategoryID,
		ISBN:            r.ISBN,
		Publisher:       r.Publisher,
		PublicationYear: r.PublicationYear,
		Pages:           r.Pages,
		Language:        r.Language,
		Status:          r.Status,
	}
	if b.Language == "" {
		b.Language = defaultLanguage
	}
	if b.Status == "" {
		b.Status = StatusDraft
	}
	return b
}

// UpdateBookRequest is a partial update; nil fields are left untouched.
type UpdateBookRequest struct {
	Title           *string    `json:"title"`
	Author          *string    `json:"author"`
	Description     *string    `json:"description"`
	CoverURL        *string    `json:"cover_url"`
	FileURL         *string    `json:"file_url"`
	CategoryID      *uuid.UUID `json:"category_id"`
	ISBN            *string    `json:"isbn"`
	Publisher       *string    `json:"publisher"`
	PublicationYear *int       `json:"publication_year"`
	Pages           *int       `json:"pages"`
	Language        *string    `json:"language"`
	Status          *string    `json:"status"`
}

func (r UpdateBookRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.NilOrNotEmpty, validation.Length(1, 300)),
		validation.Field(&r.Author, validation.NilOrNotEmpty, validation.Length(1, 200)),
		validation.Field(&r.PublicationYear, validation.Min(0), validation.Max(time.Now().Year()+maxPublishingYear)),
		validation.Field(&r.Pages, validation.Min(1)),
		validation.Field(&r.Status, validation.NilOrNotEmpty, validation.In(StatusDraft, StatusPublished)),
	)
}

func (r UpdateBookRequest) IsEmpty() bool {
	return r == UpdateBookRequest{}
}

func optionalUUID(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if _, err := uuid.Parse(s); err != nil {
		return validation.NewError("validation_is_uuid", "must be a valid UUID")
	}
	return nil
}
