package realtime

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func streamServer(t *testing.T) (*httptest.Server, *Publisher) {
	t.Helper()
	hub, pub, _ := setup(t)
	router := gin.New()
	router.GET("/realtime/:table", NewStreamHandler(hub).Stream)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, pub
}

// readEvent returns the next event name and its data line.
func readEvent(t *testing.T, sc *bufio.Scanner) (string, string) {
	t.Helper()
	var event string
	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimPrefix(line, "event:")
		case strings.HasPrefix(line, "data:"):
			return event, strings.TrimPrefix(line, "data:")
		}
	}
	require.NoError(t, sc.Err())
	t.Fatal("stream ended")
	return "", ""
}

func TestStreamRejectsPrivateTables(t *testing.T) {
	srv, _ := streamServer(t)

	resp, err := http.Get(srv.URL + "/realtime/bookmarks")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp2, err := http.Get(srv.URL + "/realtime/reviews?book_id=nope")
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp2.StatusCode)
}

func TestStreamRelaysFilteredChanges(t *testing.T) {
	srv, pub := streamServer(t)
	const book = "6f1c1a52-7a55-4a8e-9a57-7c3f0f6b9d10"
	const other = "0d2f4f0e-1b6b-4f0c-8b66-3b0b0a1b2c3d"

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/realtime/reviews?book_id="+book, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	sc := bufio.NewScanner(resp.Body)
	event, _ := readEvent(t, sc)
	require.Equal(t, "ready", event)

	publish(t, pub, EventInsert, "reviews", map[string]interface{}{"id": "r1", "book_id": other}, nil)
	publish(t, pub, EventInsert, "reviews", map[string]interface{}{"id": "r2", "book_id": book, "rating": 5}, nil)

	event, data := readEvent(t, sc)
	assert.Equal(t, string(EventInsert), event)
	assert.Contains(t, data, `"id":"r2"`)
	assert.NotContains(t, data, "r1")
}
