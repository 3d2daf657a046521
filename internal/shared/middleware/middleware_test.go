package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"karwan-auliya/internal/shared/auth"
	"karwan-auliya/pkg/jwt"
)

func newRouter(tokens *jwt.Manager, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), Recovery(), OptionalAuth(tokens))
	handlers := append(extra, func(c *gin.Context) {
		s := auth.FromContext(c.Request.Context())
		if s == nil {
			c.String(http.StatusOK, "anonymous")
			return
		}
		c.String(http.StatusOK, s.UserID.String())
	})
	r.GET("/", handlers...)
	r.GET("/panic", func(c *gin.Context) { panic("boom") })
	return r
}

func TestOptionalAuth(t *testing.T) {
	tokens := jwt.NewManager("secret", "")
	r := newRouter(tokens)
	userID := uuid.New()

	token, err := tokens.Issue(userID.String(), "a@b.c", "user", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"no header", "", "anonymous"},
		{"malformed", "Token abc", "anonymous"},
		{"bad signature", "Bearer " + mustIssue(t, jwt.NewManager("other", ""), userID), "anonymous"},
		{"valid", "Bearer " + token, userID.String()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.want, w.Body.String())
			assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
		})
	}
}

func TestRequireAuthAndAdmin(t *testing.T) {
	tokens := jwt.NewManager("secret", "")
	r := newRouter(tokens, RequireAuth(), AdminMiddleware())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+mustIssue(t, tokens, uuid.New()))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	admin, err := tokens.Issue(uuid.NewString(), "", auth.RoleAdmin, time.Hour)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+admin)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRecovery(t *testing.T) {
	r := newRouter(jwt.NewManager("secret", ""))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_SERVER_ERROR")
}

func mustIssue(t *testing.T, m *jwt.Manager, id uuid.UUID) string {
	t.Helper()
	token, err := m.Issue(id.String(), "", "user", time.Hour)
	require.NoError(t, err)
	return token
}
