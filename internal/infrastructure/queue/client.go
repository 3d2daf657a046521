package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"
)

// TaskClient enqueues background work for the worker binary.
type TaskClient struct {
	client *asynq.Client
}

func NewTaskClient(opt asynq.RedisClientOpt) *TaskClient {
	return &TaskClient{client: asynq.NewClient(opt)}
}

// NotifyBookPublished schedules the push announcement of a newly published
// book. Re-publishing the same book within a minute is deduplicated.
func (c *TaskClient) NotifyBookPublished(ctx context.Context, bookID uuid.UUID, title, author string) error {
	payload, err := json.Marshal(BookPublishedPayload{BookID: bookID, Title: title, Author: author})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	info, err := c.client.EnqueueContext(ctx,
		asynq.NewTask(TypeBookPublished, payload),
		asynq.Queue(QueueNotification),
		asynq.MaxRetry(3),
		asynq.Timeout(30*time.Second),
		asynq.Unique(time.Minute),
	)
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", TypeBookPublished, err)
	}

	log.Info().
		Str("task_id", info.ID).
		Str("book_id", bookID.String()).
		Msg("[QUEUE] book published task enqueued")
	return nil
}

func (c *TaskClient) Close() error {
	return c.client.Close()
}
