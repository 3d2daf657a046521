package model

import (
	"errors"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
)

// Entity is the query cache name for profile reads.
const Entity = "profiles"

var ErrNothingToUpdate = errors.New("no fields to update")

type Profile struct {
	ID          uuid.UUID `json:"id"`
	DisplayName *string   `json:"display_name"`
	AvatarURL   *string   `json:"avatar_url"`
	Bio         *string   `json:"bio"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UpdateRequest changes the given fields; nil fields keep their value.
type UpdateRequest struct {
	DisplayName *string `json:"display_name"`
	AvatarURL   *string `json:"avatar_url"`
	Bio         *string `json:"bio"`
}

func (r UpdateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.DisplayName, validation.Length(1, 100)),
		validation.Field(&r.AvatarURL, is.URL),
		validation.Field(&r.Bio, validation.Length(0, 500)),
	)
}

func (r UpdateRequest) IsEmpty() bool {
	return r.DisplayName == nil && r.AvatarURL == nil && r.Bio == nil
}

// Normalized trims every given field.
func (r UpdateRequest) Normalized() UpdateRequest {
	trim := func(s *string) *string {
		if s == nil {
			return nil
		}
		v := strings.TrimSpace(*s)
		return &v
	}
	return UpdateRequest{
		DisplayName: trim(r.DisplayName),
		AvatarURL:   trim(r.AvatarURL),
		Bio:         trim(r.Bio),
	}
}
