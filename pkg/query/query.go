package query

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"karwan-auliya/pkg/cache"
)

const keyPrefix = "q"

// Status is the lifecycle of one cached query.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Key identifies a cached read. Two keys with the same entity and
// structurally equal params map to the same cache entry.
type Key struct {
	Entity string
	Params interface{}
}

func NewKey(entity string, params ...interface{}) Key {
	switch len(params) {
	case 0:
		return Key{Entity: entity}
	case 1:
		return Key{Entity: entity, Params: params[0]}
	default:
		return Key{Entity: entity, Params: params}
	}
}

// String renders q:<entity>:<md5 of the JSON params>. encoding/json writes
// struct fields in declaration order and sorts map keys, so equal values
// always hash the same.
func (k Key) String() string {
	if k.Params == nil {
		return fmt.Sprintf("%s:%s", keyPrefix, k.Entity)
	}
	raw, err := json.Marshal(k.Params)
	if err != nil {
		raw = []byte(fmt.Sprintf("%#v", k.Params))
	}
	return fmt.Sprintf("%s:%s:%x", keyPrefix, k.Entity, md5.Sum(raw))
}

// EntityPattern matches every parameterised key stored for entity.
func EntityPattern(entity string) string {
	return fmt.Sprintf("%s:%s:*", keyPrefix, entity)
}

// Query describes one read. Fetch is only called when Enabled is true and
// the cache has no fresh entry.
type Query[T any] struct {
	Key       Key
	Enabled   bool
	StaleTime time.Duration
	Fetch     func(ctx context.Context) (T, error)
}

// Result is what a caller renders: data plus the state it was produced in.
type Result[T any] struct {
	Data   T
	Status Status
	Err    error
}

func (r Result[T]) IsLoading() bool { return r.Status == StatusLoading }

// Unwrap returns data and error in the usual Go shape.
func (r Result[T]) Unwrap() (T, error) {
	return r.Data, r.Err
}

// Fail builds the result of a read that was rejected before fetching.
func Fail[T any](err error) Result[T] {
	var zero T
	return Result[T]{Data: zero, Status: StatusError, Err: err}
}

// fetchTimeout bounds a shared fetch once it no longer follows any caller.
const fetchTimeout = 30 * time.Second

// sweepEvery is how many state writes pass between scans for expired states.
const sweepEvery = 256

type keyState struct {
	status  Status
	expires time.Time // zero while the key is loading
}

// Client owns the shared read cache. It is injected into every service
// rather than living in a package variable.
type Client struct {
	store  cache.Cache
	ttl    time.Duration
	flight singleflight.Group
	now    func() time.Time

	mu     sync.RWMutex
	states map[string]keyState
	writes int
}

func NewClient(store cache.Cache, defaultTTL time.Duration) *Client {
	return &Client{
		store:  store,
		ttl:    defaultTTL,
		now:    time.Now,
		states: make(map[string]keyState),
	}
}

// Run executes q against the cache. Concurrent misses on the same key share
// one Fetch call. The shared fetch is detached from the caller that started
// it: a cancelled caller returns its own ctx error while the others still
// receive the data.
func Run[T any](ctx context.Context, c *Client, q Query[T]) Result[T] {
	var zero T
	key := q.Key.String()

	if !q.Enabled {
		return Result[T]{Data: zero, Status: StatusIdle}
	}

	ttl := q.StaleTime
	if ttl <= 0 {
		ttl = c.ttl
	}

	var cached T
	found, err := c.store.Get(ctx, key, &cached)
	if err != nil {
		// a broken cache entry must not fail the read
		log.Warn().Err(err).Str("key", key).Msg("query cache read failed")
	}
	if found {
		c.setState(key, StatusSuccess, ttl)
		return Result[T]{Data: cached, Status: StatusSuccess}
	}

	c.setState(key, StatusLoading, 0)
	ch := c.flight.DoChan(key, func() (interface{}, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fetchTimeout)
		defer cancel()

		// a flight that finished between our miss and DoChan already filled the entry
		var filled T
		if ok, _ := c.store.Get(fctx, key, &filled); ok {
			c.setState(key, StatusSuccess, ttl)
			return filled, nil
		}

		data, err := q.Fetch(fctx)
		if err != nil {
			c.setState(key, StatusError, c.ttl)
			return nil, err
		}
		if setErr := c.store.Set(fctx, key, data, ttl); setErr != nil {
			log.Warn().Err(setErr).Str("key", key).Msg("query cache write failed")
		}
		c.setState(key, StatusSuccess, ttl)
		return data, nil
	})

	select {
	case <-ctx.Done():
		return Result[T]{Data: zero, Status: StatusError, Err: ctx.Err()}
	case res := <-ch:
		if res.Err != nil {
			return Result[T]{Data: zero, Status: StatusError, Err: res.Err}
		}
		data, _ := res.Val.(T)
		return Result[T]{Data: data, Status: StatusSuccess}
	}
}

// Invalidate drops every cached read of the given entities. Repeating it is
// harmless.
func (c *Client) Invalidate(ctx context.Context, entities ...string) error {
	var firstErr error
	for _, entity := range entities {
		if err := c.store.Delete(ctx, NewKey(entity).String()); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("invalidate %s: %w", entity, err)
		}
		if err := c.store.DeletePattern(ctx, EntityPattern(entity)); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("invalidate %s: %w", entity, err)
		}
		c.resetStates(entity)
	}
	return firstErr
}

// InvalidateQuietly is Invalidate for callers whose write already
// succeeded: a cache failure is logged, not returned.
func (c *Client) InvalidateQuietly(ctx context.Context, entities ...string) {
	if err := c.Invalidate(ctx, entities...); err != nil {
		log.Warn().Err(err).Strs("entities", entities).Msg("query cache invalidation failed")
	}
}

// State reports the last known status of key. Settled states expire with
// the cache entry they describe.
func (c *Client) State(key Key) Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	st, ok := c.states[key.String()]
	if !ok || c.expired(st) {
		return StatusIdle
	}
	return st.status
}

func (c *Client) setState(key string, s Status, ttl time.Duration) {
	st := keyState{status: s}
	if ttl > 0 {
		st.expires = c.now().Add(ttl)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.states[key] = st
	c.writes++
	if c.writes%sweepEvery == 0 {
		for k, v := range c.states {
			if c.expired(v) {
				delete(c.states, k)
			}
		}
	}
}

func (c *Client) expired(st keyState) bool {
	return !st.expires.IsZero() && !c.now().Before(st.expires)
}

func (c *Client) resetStates(entity string) {
	prefix := fmt.Sprintf("%s:%s", keyPrefix, entity)
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.states {
		if k == prefix || strings.HasPrefix(k, prefix+":") {
			delete(c.states, k)
		}
	}
}

func (c *Client) tracked() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.states)
}
