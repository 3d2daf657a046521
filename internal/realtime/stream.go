package realtime

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"karwan-auliya/internal/shared/response"
)

const (
	streamBuffer    = 32
	streamKeepAlive = 25 * time.Second
)

// publicTables are the tables whose changes any client may watch. Per-user
// tables are not streamed.
var publicTables = map[string]bool{
	"books":      true,
	"reviews":    true,
	"categories": true,
}

type streamEvent struct {
	event EventType
	row   Row
}

// StreamHandler relays hub deliveries to browsers as server-sent events.
type StreamHandler struct {
	hub       *Hub
	keepAlive time.Duration
}

func NewStreamHandler(hub *Hub) *StreamHandler {
	return &StreamHandler{hub: hub, keepAlive: streamKeepAlive}
}

// Stream - GET /api/v1/realtime/:table?book_id=
func (h *StreamHandler) Stream(c *gin.Context) {
	table := c.Param("table")
	if !publicTables[table] {
		response.NotFound(c, "unknown realtime table")
		return
	}

	var filter string
	if raw := c.Query("book_id"); raw != "" {
		if _, err := uuid.Parse(raw); err != nil {
			response.BadRequest(c, "invalid book_id")
			return
		}
		column := "book_id"
		if table == "books" {
			column = "id"
		}
		filter = column + "=eq." + raw
	}

	events := make(chan streamEvent, streamBuffer)
	push := func(event EventType) func(Row) {
		return func(r Row) {
			select {
			case events <- streamEvent{event: event, row: r}:
			default:
				log.Warn().Str("table", table).Msg("[REALTIME] slow stream, change dropped")
			}
		}
	}

	ctx := c.Request.Context()
	sub, err := h.hub.Subscribe(ctx, Options{
		Table:    table,
		Filter:   filter,
		OnInsert: push(EventInsert),
		OnUpdate: push(EventUpdate),
		OnDelete: push(EventDelete),
	})
	if err != nil {
		response.HandleError(c, err)
		return
	}
	defer sub.Close()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.SSEvent("ready", gin.H{"table": table, "filter": filter})
	c.Writer.Flush()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case ev := <-events:
			c.SSEvent(string(ev.event), ev.row)
			return true
		case <-ticker.C:
			c.SSEvent("ping", time.Now().Unix())
			return true
		}
	})
}
