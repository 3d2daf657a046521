package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const schemaPublic = "public"

type EventType string

const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
	EventDelete EventType = "DELETE"
	EventAll    EventType = "*"
)

// Row is one record as it appears in a change payload.
type Row map[string]interface{}

// Change is the payload delivered on realtime:public:<table>.
type Change struct {
	EventType       EventType `json:"event_type"`
	Schema          string    `json:"schema"`
	Table           string    `json:"table"`
	New             Row       `json:"new,omitempty"`
	Old             Row       `json:"old,omitempty"`
	CommitTimestamp time.Time `json:"commit_timestamp"`
}

// Channel names the pub/sub channel carrying changes of table.
func Channel(table string) string {
	return fmt.Sprintf("realtime:%s:%s", schemaPublic, table)
}

// NewChange builds a change for table. newRow and oldRow are any JSON
// encodable values (usually model structs); nil leaves the side empty.
func NewChange(event EventType, table string, newRow, oldRow interface{}) (Change, error) {
	c := Change{
		EventType:       event,
		Schema:          schemaPublic,
		Table:           table,
		CommitTimestamp: time.Now().UTC(),
	}
	var err error
	if c.New, err = toRow(newRow); err != nil {
		return Change{}, err
	}
	if c.Old, err = toRow(oldRow); err != nil {
		return Change{}, err
	}
	return c, nil
}

func toRow(v interface{}) (Row, error) {
	if v == nil {
		return nil, nil
	}
	if r, ok := v.(Row); ok {
		return r, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode row: %w", err)
	}
	var row Row
	if err := json.Unmarshal(raw, &row); err != nil {
		return nil, fmt.Errorf("decode row: %w", err)
	}
	return row, nil
}

// Broadcaster is implemented by Publisher; services depend on this.
type Broadcaster interface {
	Publish(ctx context.Context, change Change) error
}

// Publisher fans changes out over Redis pub/sub.
type Publisher struct {
	rdb *redis.Client
}

func NewPublisher(rdb *redis.Client) *Publisher {
	return &Publisher{rdb: rdb}
}

func (p *Publisher) Publish(ctx context.Context, change Change) error {
	payload, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("encode change: %w", err)
	}
	if err := p.rdb.Publish(ctx, Channel(change.Table), payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", change.Table, err)
	}
	return nil
}

// Notify publishes a change after a successful write. Failures are logged;
// the write itself already happened.
func Notify(ctx context.Context, b Broadcaster, event EventType, table string, newRow, oldRow interface{}) {
	if b == nil {
		return
	}
	change, err := NewChange(event, table, newRow, oldRow)
	if err == nil {
		err = b.Publish(ctx, change)
	}
	if err != nil {
		log.Warn().Err(err).Str("table", table).Str("event", string(event)).Msg("[REALTIME] publish failed")
	}
}

// EntityForTable maps a table to the query cache entity holding its reads.
func EntityForTable(table string) string {
	switch table {
	case "user_books":
		return "user-library"
	case "reading_progress":
		return "reading-progress"
	default:
		return strings.ReplaceAll(table, "_", "-")
	}
}
