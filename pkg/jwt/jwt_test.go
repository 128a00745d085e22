package jwt

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	m := NewManager("test-secret", 1)
	id := uuid.New()

	token, err := m.GenerateToken(id, "clerk@example.com", "Clerk", "CLERK", []string{"product:view"}, "v1")
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, id, claims.UserID)
	assert.Equal(t, "CLERK", claims.RoleCode)
	assert.Equal(t, []string{"product:view"}, claims.Privileges)
	assert.Equal(t, "v1", claims.TokenVersion)
}

func TestValidate_WrongSecret(t *testing.T) {
	token, err := NewManager("a", 1).GenerateToken(uuid.New(), "e", "n", "ADMIN", nil, "v")
	require.NoError(t, err)

	_, err = NewManager("b", 1).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidate_Expired(t *testing.T) {
	m := NewManager("s", -1)
	token, err := m.GenerateToken(uuid.New(), "e", "n", "ADMIN", nil, "v")
	require.NoError(t, err)

	_, err = m.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidate_Missing(t *testing.T) {
	_, err := NewManager("s", 1).ValidateToken("")
	assert.ErrorIs(t, err, ErrMissingToken)
}
