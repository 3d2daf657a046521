package handlers

import (
	"context"

	"github.com/hibiken/asynq"
)

// Recounter refreshes the denormalised book counts of categories.
type Recounter interface {
	RecountBooks(ctx context.Context) error
}

type RecountBooksHandler struct {
	categories Recounter
}

func NewRecountBooksHandler(categories Recounter) *RecountBooksHandler {
	return &RecountBooksHandler{categories: categories}
}

func (h *RecountBooksHandler) ProcessTask(ctx context.Context, _ *asynq.Task) error {
	return h.categories.RecountBooks(ctx)
}
