package realtime

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingInvalidator struct {
	mu       sync.Mutex
	entities []string
}

func (r *recordingInvalidator) Invalidate(_ context.Context, entities ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entities = append(r.entities, entities...)
	return nil
}

func (r *recordingInvalidator) seen() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.entities...)
}

func setup(t *testing.T) (*Hub, *Publisher, *recordingInvalidator) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	inv := &recordingInvalidator{}
	return NewHub(rdb, inv), NewPublisher(rdb), inv
}

func publish(t *testing.T, p *Publisher, event EventType, table string, newRow, oldRow interface{}) {
	t.Helper()
	change, err := NewChange(event, table, newRow, oldRow)
	require.NoError(t, err)
	require.NoError(t, p.Publish(context.Background(), change))
}

func TestSubscribeDeliversAndInvalidates(t *testing.T) {
	hub, pub, inv := setup(t)
	inserted := make(chan Row, 1)

	sub, err := hub.Subscribe(context.Background(), Options{
		Table:    "books",
		OnInsert: func(r Row) { inserted <- r },
	})
	require.NoError(t, err)
	defer sub.Close()

	publish(t, pub, EventInsert, "books", map[string]string{"id": "b1", "title": "Ihya"}, nil)

	select {
	case row := <-inserted:
		assert.Equal(t, "Ihya", row["title"])
	case <-time.After(2 * time.Second):
		t.Fatal("insert callback not called")
	}

	assert.Eventually(t, func() bool {
		return len(inv.seen()) == 1 && inv.seen()[0] == "books"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSubscribeFilterAndEvent(t *testing.T) {
	hub, pub, inv := setup(t)
	updates := make(chan Row, 4)

	sub, err := hub.Subscribe(context.Background(), Options{
		Table:    "reviews",
		Event:    EventUpdate,
		Filter:   "book_id=eq.b1",
		OnUpdate: func(r Row) { updates <- r },
		OnInsert: func(r Row) { t.Error("insert must be filtered out") },
	})
	require.NoError(t, err)
	defer sub.Close()

	publish(t, pub, EventInsert, "reviews", Row{"book_id": "b1"}, nil)
	publish(t, pub, EventUpdate, "reviews", Row{"book_id": "b2", "rating": 1}, nil)
	publish(t, pub, EventUpdate, "reviews", Row{"book_id": "b1", "rating": 5}, nil)

	select {
	case row := <-updates:
		assert.Equal(t, "b1", row["book_id"])
		assert.EqualValues(t, 5, row["rating"])
	case <-time.After(2 * time.Second):
		t.Fatal("update callback not called")
	}

	assert.Eventually(t, func() bool { return len(inv.seen()) == 1 }, time.Second, 10*time.Millisecond)
	assert.Len(t, updates, 0)
}

func TestDeleteUsesOldRow(t *testing.T) {
	hub, pub, _ := setup(t)
	deleted := make(chan Row, 1)

	sub, err := hub.Subscribe(context.Background(), Options{
		Table:    "reviews",
		Filter:   "book_id=eq.b1",
		OnDelete: func(r Row) { deleted <- r },
	})
	require.NoError(t, err)
	defer sub.Close()

	publish(t, pub, EventDelete, "reviews", nil, Row{"id": "r1", "book_id": "b1"})

	select {
	case row := <-deleted:
		assert.Equal(t, "r1", row["id"])
	case <-time.After(2 * time.Second):
		t.Fatal("delete callback not called")
	}
}

func TestNoDeliveryAfterClose(t *testing.T) {
	hub, pub, inv := setup(t)
	var mu sync.Mutex
	calls := 0

	sub, err := hub.Subscribe(context.Background(), Options{
		Table: "categories",
		OnInsert: func(Row) {
			mu.Lock()
			calls++
			mu.Unlock()
		},
	})
	require.NoError(t, err)

	require.NoError(t, sub.Close())
	require.NoError(t, sub.Close())

	publish(t, pub, EventInsert, "categories", Row{"id": "c1"}, nil)
	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Zero(t, calls)
	assert.Empty(t, inv.seen())
}

func TestParseFilter(t *testing.T) {
	f, err := parseFilter("")
	require.NoError(t, err)
	assert.Nil(t, f)

	f, err = parseFilter("book_id=eq.42")
	require.NoError(t, err)
	assert.Equal(t, "book_id", f.column)
	assert.Equal(t, "42", f.value)

	for _, bad := range []string{"book_id", "=eq.1", "book_id=gt.3"} {
		_, err := parseFilter(bad)
		assert.ErrorIs(t, err, ErrInvalidFilter, bad)
	}
}

func TestEntityForTable(t *testing.T) {
	assert.Equal(t, "books", EntityForTable("books"))
	assert.Equal(t, "user-library", EntityForTable("user_books"))
	assert.Equal(t, "reading-progress", EntityForTable("reading_progress"))
}
