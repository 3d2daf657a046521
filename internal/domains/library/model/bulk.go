package model

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// BulkFailure is one id of a batch that could not be processed.
type BulkFailure struct {
	BookID  uuid.UUID `json:"book_id"`
	Message string    `json:"message"`
	err     error
}

func (f BulkFailure) Unwrap() error { return f.err }

func (f BulkFailure) Error() string {
	return fmt.Sprintf("%s: %s", f.BookID, f.Message)
}

func NewBulkFailure(bookID uuid.UUID, err error) BulkFailure {
	return BulkFailure{BookID: bookID, Message: err.Error(), err: err}
}

// BulkResult reports every id of a batch: it is only produced once all of
// them have settled.
type BulkResult struct {
	Succeeded []uuid.UUID   `json:"succeeded"`
	Failed    []BulkFailure `json:"failed"`
}

// Err joins the individual failures, nil when the whole batch succeeded.
func (r BulkResult) Err() error {
	if len(r.Failed) == 0 {
		return nil
	}
	errs := make([]error, len(r.Failed))
	for i, f := range r.Failed {
		errs[i] = f
	}
	return errors.Join(errs...)
}
