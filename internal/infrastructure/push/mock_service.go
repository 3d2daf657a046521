package push

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"karwan-auliya/internal/offline"
)

// TopicNewBooks is the topic every subscribed device listens on.
const TopicNewBooks = "new-books"

// Message is one delivered notification.
type Message struct {
	ID           string
	Topic        string
	Notification offline.Notification
}

// ================================================
// MOCK PUSH SERVICE (for development)
// ================================================

// MockPushService logs notifications instead of delivering them and keeps
// them for inspection.
type MockPushService struct {
	mu   sync.Mutex
	sent []Message
}

func NewMockPushService() *MockPushService {
	return &MockPushService{}
}

func (s *MockPushService) SendPush(ctx context.Context, topic string, n offline.Notification) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	id := fmt.Sprintf("mock-push-%d", time.Now().UnixNano())
	log.Info().
		Str("topic", topic).
		Str("title", n.Title).
		Str("body", n.Body).
		Str("url", n.Data.URL).
		Msg("[MOCK] Push notification sent successfully")

	s.mu.Lock()
	s.sent = append(s.sent, Message{ID: id, Topic: topic, Notification: n})
	s.mu.Unlock()
	return id, nil
}

// Sent returns every message delivered so far.
func (s *MockPushService) Sent() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.sent...)
}
