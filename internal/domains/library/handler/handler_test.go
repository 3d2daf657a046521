package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"karwan-auliya/internal/domains/library/model"
	"karwan-auliya/internal/domains/library/repository"
	"karwan-auliya/internal/domains/library/service"
	"karwan-auliya/internal/shared/auth"
	"karwan-auliya/pkg/cache"
	"karwan-auliya/pkg/query"
)

// bookmarkRepo only serves bookmark removal; ids in missing fail.
type bookmarkRepo struct {
	repository.Repository
	mu      sync.Mutex
	missing map[uuid.UUID]bool
	removed []uuid.UUID
}

func (r *bookmarkRepo) RemoveBookmark(_ context.Context, _, bookID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.missing[bookID] {
		return model.ErrBookmarkNotFound
	}
	r.removed = append(r.removed, bookID)
	return nil
}

type bulkResponse struct {
	Success bool             `json:"success"`
	Data    model.BulkResult `json:"data"`
	Error   *struct {
		Code string `json:"code"`
	} `json:"error"`
}

func setupBookmarks(missing ...uuid.UUID) (*gin.Engine, *bookmarkRepo) {
	gin.SetMode(gin.TestMode)

	repo := &bookmarkRepo{missing: map[uuid.UUID]bool{}}
	for _, id := range missing {
		repo.missing[id] = true
	}
	svc := service.NewService(repo, nil, nil, query.NewClient(cache.NewMemoryCache(), time.Minute), nil)
	h := NewLibraryHandler(svc)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		sess := &auth.Session{UserID: uuid.New(), Email: "reader@karwan.test", Role: "user"}
		c.Request = c.Request.WithContext(auth.WithSession(c.Request.Context(), sess))
		c.Next()
	})
	router.POST("/me/bookmarks/bulk-delete", h.RemoveBookmarks)
	return router, repo
}

func bulkDelete(t *testing.T, router *gin.Engine, ids ...uuid.UUID) (int, bulkResponse) {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{"book_ids": ids})
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, "/me/bookmarks/bulk-delete", bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp bulkResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w.Code, resp
}

func TestRemoveBookmarksAllSucceed(t *testing.T) {
	router, repo := setupBookmarks()
	a, b := uuid.New(), uuid.New()

	code, resp := bulkDelete(t, router, a, b)

	assert.Equal(t, http.StatusOK, code)
	assert.True(t, resp.Success)
	assert.ElementsMatch(t, []uuid.UUID{a, b}, resp.Data.Succeeded)
	assert.Empty(t, resp.Data.Failed)
	assert.Len(t, repo.removed, 2)
}

func TestRemoveBookmarksPartialFailureIsMultiStatus(t *testing.T) {
	gone := uuid.New()
	router, repo := setupBookmarks(gone)
	a, b := uuid.New(), uuid.New()

	code, resp := bulkDelete(t, router, a, gone, b)

	assert.Equal(t, http.StatusMultiStatus, code)
	assert.True(t, resp.Success)
	assert.ElementsMatch(t, []uuid.UUID{a, b}, resp.Data.Succeeded)
	require.Len(t, resp.Data.Failed, 1)
	assert.Equal(t, gone, resp.Data.Failed[0].BookID)
	assert.Equal(t, model.ErrBookmarkNotFound.Error(), resp.Data.Failed[0].Message)
	assert.ElementsMatch(t, []uuid.UUID{a, b}, repo.removed)
}

func TestRemoveBookmarksEmptyBatch(t *testing.T) {
	router, repo := setupBookmarks()

	code, resp := bulkDelete(t, router)

	assert.Equal(t, http.StatusBadRequest, code)
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "EMPTY_BATCH", resp.Error.Code)
	assert.Empty(t, repo.removed)
}
