package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// Entity is the query cache name for category reads.
const Entity = "categories"

// Category is a node of the two-level category tree: parent_id is nil for
// top-level categories and points at a top-level category otherwise.
type Category struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	Description *string    `json:"description"`
	ParentID    *uuid.UUID `json:"parent_id"`
	Icon        *string    `json:"icon"`
	BookCount   int        `json:"book_count"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (c *Category) IsTopLevel() bool {
	return c.ParentID == nil
}

type CreateCategoryRequest struct {
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	Description *string    `json:"description"`
	ParentID    *uuid.UUID `json:"parent_id"`
	Icon        *string    `json:"icon"`
}

func (r CreateCategoryRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(2, 100)),
		validation.Field(&r.Slug, validation.Length(0, 120)),
		validation.Field(&r.Description, validation.NilOrNotEmpty, validation.Length(0, 1000)),
		validation.Field(&r.Icon, validation.NilOrNotEmpty, validation.Length(0, 64)),
	)
}
