package queue

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifyBookPublishedEnqueues(t *testing.T) {
	mr := miniredis.RunT(t)
	client := NewTaskClient(asynq.RedisClientOpt{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, client.NotifyBookPublished(context.Background(), uuid.New(), "Ihya", "Al-Ghazali"))

	pending, err := mr.List("asynq:{" + QueueNotification + "}:pending")
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}
