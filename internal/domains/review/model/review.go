package model

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// Reviewer is the public part of the author's profile shown next to a review.
type Reviewer struct {
	DisplayName *string `json:"display_name"`
	AvatarURL   *string `json:"avatar_url"`
}

type Review struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	BookID    uuid.UUID `json:"book_id"`
	Rating    int       `json:"rating"`
	Content   *string   `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Profile *Reviewer `json:"profile,omitempty"`
}

// SubmitRequest creates the caller's review of a book or replaces it.
type SubmitRequest struct {
	Rating  int     `json:"rating"`
	Content *string `json:"content"`
}

func (r SubmitRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Rating, validation.Required, validation.Min(MinRating), validation.Max(MaxRating)),
		validation.Field(&r.Content, validation.Length(0, MaxContentLength)),
	)
}

// Normalized trims the content and drops it when blank.
func (r SubmitRequest) Normalized() SubmitRequest {
	if r.Content != nil {
		c := strings.TrimSpace(*r.Content)
		if c == "" {
			r.Content = nil
		} else {
			r.Content = &c
		}
	}
	return r
}
