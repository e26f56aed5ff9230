package service

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-task-manager/internal/model"
)

const testSecret = "unit-test-signing-secret!"

func TestTokenCodecIssueAndParse(t *testing.T) {
	t.Parallel()
	codec := NewTokenCodec(testSecret)

	t.Run("round-trips access token claims", func(t *testing.T) {
		token, err := codec.Issue("alice", "admin", TokenTypeAccess, time.Minute)
		require.NoError(t, err)

		claims, err := codec.Parse(token, TokenTypeAccess)
		require.NoError(t, err)
		assert.Equal(t, "alice", claims.Username)
		assert.Equal(t, "admin", claims.Role)
		assert.Equal(t, TokenTypeAccess, claims.Type)
		assert.NotEmpty(t, claims.TokenID)
	})

	t.Run("refresh token cannot be used as access token", func(t *testing.T) {
		token, err := codec.Issue("alice", "admin", TokenTypeRefresh, time.Minute)
		require.NoError(t, err)

		_, err = codec.Parse(token, TokenTypeAccess)
		assert.True(t, errors.Is(err, model.ErrInvalidToken))
	})

	t.Run("access token cannot be used as refresh token", func(t *testing.T) {
		token, err := codec.Issue("alice", "admin", TokenTypeAccess, time.Minute)
		require.NoError(t, err)

		_, err = codec.Parse(token, TokenTypeRefresh)
		assert.True(t, errors.Is(err, model.ErrInvalidToken))
	})

	t.Run("expired token fails regardless of signature", func(t *testing.T) {
		token, err := codec.Issue("alice", "admin", TokenTypeAccess, -time.Minute)
		require.NoError(t, err)

		_, err = codec.Parse(token, TokenTypeAccess)
		assert.True(t, errors.Is(err, model.ErrInvalidToken))
	})

	t.Run("garbage input fails", func(t *testing.T) {
		_, err := codec.Parse("not-a-jwt", TokenTypeAccess)
		assert.True(t, errors.Is(err, model.ErrInvalidToken))
	})

	t.Run("tampered token fails", func(t *testing.T) {
		token, err := codec.Issue("alice", "admin", TokenTypeAccess, time.Minute)
		require.NoError(t, err)

		parts := strings.Split(token, ".")
		require.Len(t, parts, 3)
		tampered := parts[0] + "." + parts[1] + "." + "AAAA" + parts[2][4:]

		_, err = codec.Parse(tampered, TokenTypeAccess)
		assert.True(t, errors.Is(err, model.ErrInvalidToken))
	})

	t.Run("token signed with a different key fails", func(t *testing.T) {
		other := NewTokenCodec("a completely different secret")
		token, err := other.Issue("alice", "admin", TokenTypeAccess, time.Minute)
		require.NoError(t, err)

		_, err = codec.Parse(token, TokenTypeAccess)
		assert.True(t, errors.Is(err, model.ErrInvalidToken))
	})
}

func TestDecodeSecret(t *testing.T) {
	t.Parallel()

	t.Run("base64 secrets are decoded to raw key bytes", func(t *testing.T) {
		raw := "raw-hmac-key-material-0!"
		encoded := base64.StdEncoding.EncodeToString([]byte(raw))

		assert.Equal(t, []byte(raw), decodeSecret(encoded))
	})

	t.Run("non-base64 secrets are used verbatim", func(t *testing.T) {
		secret := "plain secret with spaces & symbols"
		assert.Equal(t, []byte(secret), decodeSecret(secret))
	})

	t.Run("codecs from encoded and raw forms interoperate", func(t *testing.T) {
		raw := "shared-signing-key-material!"
		encoded := base64.StdEncoding.EncodeToString([]byte(raw))

		issuer := NewTokenCodec(encoded)
		verifier := NewTokenCodec(string(decodeSecret(encoded)))

		token, err := issuer.Issue("bob", "user", TokenTypeAccess, time.Minute)
		require.NoError(t, err)

		claims, err := verifier.Parse(token, TokenTypeAccess)
		require.NoError(t, err)
		assert.Equal(t, "bob", claims.Username)
	})
}
