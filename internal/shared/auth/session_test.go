package auth

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireUser(t *testing.T) {
	_, err := RequireUser(context.Background())
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	_, err = RequireUser(WithSession(context.Background(), &Session{}))
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	id := uuid.New()
	s, err := RequireUser(WithSession(context.Background(), &Session{UserID: id}))
	require.NoError(t, err)
	assert.Equal(t, id, s.UserID)
}

func TestRequireAdmin(t *testing.T) {
	ctx := WithSession(context.Background(), &Session{UserID: uuid.New(), Role: "user"})
	_, err := RequireAdmin(ctx)
	assert.ErrorIs(t, err, ErrForbidden)

	ctx = WithSession(context.Background(), &Session{UserID: uuid.New(), Role: RoleAdmin})
	s, err := RequireAdmin(ctx)
	require.NoError(t, err)
	assert.True(t, s.IsAdmin())

	_, err = RequireAdmin(context.Background())
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}
