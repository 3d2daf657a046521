package handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"karwan-auliya/internal/infrastructure/queue"
	"karwan-auliya/internal/offline"
)

// PushSender delivers a notification to every device on a topic.
type PushSender interface {
	SendPush(ctx context.Context, topic string, n offline.Notification) (string, error)
}

type BookPublishedHandler struct {
	pusher PushSender
	topic  string
}

func NewBookPublishedHandler(pusher PushSender, topic string) *BookPublishedHandler {
	return &BookPublishedHandler{pusher: pusher, topic: topic}
}

func (h *BookPublishedHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var p queue.BookPublishedPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		// a malformed payload will never succeed
		return fmt.Errorf("unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}

	n := offline.NewNotification(offline.PushPayload{
		Title: "Buku baru: " + p.Title,
		Body:  p.Author,
		URL:   "/books/" + p.BookID.String(),
	})
	id, err := h.pusher.SendPush(ctx, h.topic, n)
	if err != nil {
		return fmt.Errorf("send push: %w", err)
	}

	log.Info().Str("message_id", id).Str("book_id", p.BookID.String()).Msg("book published push sent")
	return nil
}
