package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

var ErrInvalidFilter = errors.New("invalid realtime filter")

// Invalidator drops cached reads of an entity. *query.Client satisfies it.
type Invalidator interface {
	Invalidate(ctx context.Context, entities ...string) error
}

// Options configure one subscription. Event defaults to EventAll and
// Filter, when set, has the form "column=eq.value".
type Options struct {
	Table    string
	Event    EventType
	Filter   string
	OnInsert func(Row)
	OnUpdate func(Row)
	OnDelete func(Row)
}

// Hub turns Redis change channels into callbacks plus cache invalidation.
type Hub struct {
	rdb   *redis.Client
	cache Invalidator
}

func NewHub(rdb *redis.Client, cache Invalidator) *Hub {
	return &Hub{rdb: rdb, cache: cache}
}

// Subscription is a live subscription returned by Hub.Subscribe.
type Subscription struct {
	pubsub *redis.PubSub
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

type rowFilter struct {
	column string
	value  string
}

func parseFilter(expr string) (*rowFilter, error) {
	if expr == "" {
		return nil, nil
	}
	column, rest, ok := strings.Cut(expr, "=")
	if !ok || column == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidFilter, expr)
	}
	value, ok := strings.CutPrefix(rest, "eq.")
	if !ok {
		return nil, fmt.Errorf("%w: only eq is supported, got %q", ErrInvalidFilter, expr)
	}
	return &rowFilter{column: column, value: value}, nil
}

func (f *rowFilter) match(c Change) bool {
	if f == nil {
		return true
	}
	row := c.New
	if c.EventType == EventDelete {
		row = c.Old
	}
	v, ok := row[f.column]
	return ok && v != nil && fmt.Sprint(v) == f.value
}

// Subscribe opens exactly one subscription for opts. It returns once Redis
// has confirmed it; deliveries then run on a dedicated goroutine until Close.
func (h *Hub) Subscribe(ctx context.Context, opts Options) (*Subscription, error) {
	if opts.Table == "" {
		return nil, errors.New("realtime: table is required")
	}
	if opts.Event == "" {
		opts.Event = EventAll
	}
	filter, err := parseFilter(opts.Filter)
	if err != nil {
		return nil, err
	}

	pubsub := h.rdb.Subscribe(ctx, Channel(opts.Table))
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", opts.Table, err)
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	sub := &Subscription{pubsub: pubsub, cancel: cancel, done: make(chan struct{})}

	log.Info().Str("table", opts.Table).Str("event", string(opts.Event)).Str("filter", opts.Filter).
		Msg("[REALTIME] Subscribed")

	go func() {
		defer close(sub.done)
		ch := pubsub.Channel()
		for {
			select {
			case <-loopCtx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				// Close may have raced the receive
				if loopCtx.Err() != nil {
					return
				}
				h.deliver(loopCtx, opts, filter, msg.Payload)
			}
		}
	}()

	return sub, nil
}

func (h *Hub) deliver(ctx context.Context, opts Options, filter *rowFilter, payload string) {
	var change Change
	if err := json.Unmarshal([]byte(payload), &change); err != nil {
		log.Warn().Err(err).Str("table", opts.Table).Msg("[REALTIME] Dropping malformed change")
		return
	}
	if opts.Event != EventAll && change.EventType != opts.Event {
		return
	}
	if !filter.match(change) {
		return
	}

	log.Debug().Str("table", opts.Table).Str("event", string(change.EventType)).Msg("[REALTIME] Change received")

	switch change.EventType {
	case EventInsert:
		if opts.OnInsert != nil {
			opts.OnInsert(change.New)
		}
	case EventUpdate:
		if opts.OnUpdate != nil {
			opts.OnUpdate(change.New)
		}
	case EventDelete:
		if opts.OnDelete != nil {
			opts.OnDelete(change.Old)
		}
	default:
		return
	}

	if h.cache != nil {
		if err := h.cache.Invalidate(ctx, EntityForTable(opts.Table)); err != nil {
			log.Warn().Err(err).Str("table", opts.Table).Msg("[REALTIME] Invalidation failed")
		}
	}
}

// Close tears the subscription down. It is safe to call more than once and
// no callback runs after it returns. Do not call it from inside a callback.
func (s *Subscription) Close() error {
	var err error
	s.once.Do(func() {
		s.cancel()
		err = s.pubsub.Close()
		<-s.done
	})
	return err
}
