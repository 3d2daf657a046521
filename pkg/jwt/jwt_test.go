package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	m := NewManager("secret", "karwan-auliya")

	token, err := m.Issue("3b8f0c52-4a1e-4c59-9a67-1f0b6f2d8e11", "reader@example.com", "admin", time.Hour)
	require.NoError(t, err)

	claims, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "3b8f0c52-4a1e-4c59-9a67-1f0b6f2d8e11", claims.Subject)
	assert.Equal(t, "reader@example.com", claims.Email)
	assert.Equal(t, "admin", claims.Role)
}

func TestVerifyRejects(t *testing.T) {
	m := NewManager("secret", "karwan-auliya")

	expired, err := m.Issue("u1", "", "user", -time.Minute)
	require.NoError(t, err)
	_, err = m.Verify(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	foreign, err := NewManager("other", "karwan-auliya").Issue("u1", "", "user", time.Hour)
	require.NoError(t, err)
	_, err = m.Verify(foreign)
	assert.ErrorIs(t, err, ErrInvalidToken)

	wrongIssuer, err := NewManager("secret", "someone-else").Issue("u1", "", "user", time.Hour)
	require.NoError(t, err)
	_, err = m.Verify(wrongIssuer)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = m.Verify("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
