package offline

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// PromptWindow is how long a dismissed install prompt stays hidden.
const PromptWindow = 7 * 24 * time.Hour

const promptKeyPrefix = "pwa-install-dismissed:"

// PromptStore records when a device dismissed the install prompt.
type PromptStore interface {
	DismissedAt(ctx context.Context, device string) (time.Time, bool, error)
	RecordDismissal(ctx context.Context, device string, at time.Time) error
}

// PromptPolicy decides whether a device should see the install prompt.
type PromptPolicy struct {
	store  PromptStore
	window time.Duration
	now    func() time.Time
}

func NewPromptPolicy(store PromptStore) *PromptPolicy {
	return &PromptPolicy{store: store, window: PromptWindow, now: time.Now}
}

// ShouldPrompt is false while the last dismissal is within the window.
// A store failure shows the prompt.
func (p *PromptPolicy) ShouldPrompt(ctx context.Context, device string) (bool, error) {
	at, ok, err := p.store.DismissedAt(ctx, device)
	if err != nil {
		return true, err
	}
	if !ok {
		return true, nil
	}
	return p.now().Sub(at) >= p.window, nil
}

func (p *PromptPolicy) Dismiss(ctx context.Context, device string) error {
	return p.store.RecordDismissal(ctx, device, p.now())
}

// RedisPromptStore keeps dismissals as unix milliseconds that expire with
// the window.
type RedisPromptStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisPromptStore(rdb *redis.Client) *RedisPromptStore {
	return &RedisPromptStore{rdb: rdb, ttl: PromptWindow}
}

func (s *RedisPromptStore) DismissedAt(ctx context.Context, device string) (time.Time, bool, error) {
	raw, err := s.rdb.Get(ctx, promptKeyPrefix+device).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("read prompt dismissal: %w", err)
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse prompt dismissal: %w", err)
	}
	return time.UnixMilli(ms), true, nil
}

func (s *RedisPromptStore) RecordDismissal(ctx context.Context, device string, at time.Time) error {
	err := s.rdb.Set(ctx, promptKeyPrefix+device, strconv.FormatInt(at.UnixMilli(), 10), s.ttl).Err()
	if err != nil {
		return fmt.Errorf("record prompt dismissal: %w", err)
	}
	return nil
}

type MemoryPromptStore struct {
	mu         sync.Mutex
	dismissals map[string]time.Time
}

func NewMemoryPromptStore() *MemoryPromptStore {
	return &MemoryPromptStore{dismissals: make(map[string]time.Time)}
}

func (s *MemoryPromptStore) DismissedAt(_ context.Context, device string) (time.Time, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	at, ok := s.dismissals[device]
	return at, ok, nil
}

func (s *MemoryPromptStore) RecordDismissal(_ context.Context, device string, at time.Time) error {
	s.mu.Lock()
	s.dismissals[device] = at
	s.mu.Unlock()
	return nil
}
