package main

import (
	"github.com/hibiken/asynq"

	"karwan-auliya/internal/infrastructure/push"
	"karwan-auliya/internal/infrastructure/queue"
	"karwan-auliya/internal/infrastructure/queue/handlers"
	"karwan-auliya/pkg/container"
)

// HandlerRegistry holds all job handlers
type HandlerRegistry struct {
	// Notification handlers
	bookPublished *handlers.BookPublishedHandler

	// Maintenance handlers
	recountBooks *handlers.RecountBooksHandler
}

func initializeHandlers(c *container.Container) *HandlerRegistry {
	pusher := push.NewMockPushService()

	return &HandlerRegistry{
		bookPublished: handlers.NewBookPublishedHandler(pusher, push.TopicNewBooks),
		recountBooks:  handlers.NewRecountBooksHandler(c.CategoryService),
	}
}

func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	mux.Handle(queue.TypeBookPublished, h.bookPublished)
	mux.Handle(queue.TypeRecountBooks, h.recountBooks)
}
