package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	Init("test-secret")
	t.Cleanup(func() { Init("") })

	t.Run("round trip preserves claims", func(t *testing.T) {
		token, err := GenerateToken("user-1", "alice", "admin", time.Hour)
		require.NoError(t, err)

		claims, err := ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, "user-1", claims.UserID)
		assert.Equal(t, "alice", claims.Username)
		assert.Equal(t, "admin", claims.Role)
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		token, err := GenerateToken("user-1", "alice", "admin", -time.Minute)
		require.NoError(t, err)

		_, err = ValidateToken(token)
		assert.Error(t, err)
	})

	t.Run("token signed with a different secret is rejected", func(t *testing.T) {
		token, err := GenerateToken("user-1", "alice", "admin", time.Hour)
		require.NoError(t, err)

		Init("rotated-secret")
		defer Init("test-secret")

		_, err = ValidateToken(token)
		assert.Error(t, err)
	})

	t.Run("garbage token is rejected", func(t *testing.T) {
		_, err := ValidateToken("not.a.token")
		assert.Error(t, err)
	})
}

func TestDisabledWithoutSecret(t *testing.T) {
	Init("")
	assert.False(t, Enabled())

	_, err := GenerateToken("user-1", "alice", "admin", time.Hour)
	assert.Error(t, err)

	_, err = ValidateToken("anything")
	assert.Error(t, err)
}
