package service

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRefreshTokenStore(t *testing.T) {
	t.Parallel()

	t.Run("stored token is valid until replaced", func(t *testing.T) {
		store := NewRefreshTokenStore()

		store.Store("alice", "token-1")
		assert.True(t, store.IsValid("alice", "token-1"))

		store.Store("alice", "token-2")
		assert.False(t, store.IsValid("alice", "token-1"))
		assert.True(t, store.IsValid("alice", "token-2"))
	})

	t.Run("revoke removes the session", func(t *testing.T) {
		store := NewRefreshTokenStore()

		store.Store("alice", "token-1")
		store.Revoke("alice")
		assert.False(t, store.IsValid("alice", "token-1"))
	})

	t.Run("unknown user and empty inputs are invalid", func(t *testing.T) {
		store := NewRefreshTokenStore()

		assert.False(t, store.IsValid("nobody", "token"))
		assert.False(t, store.IsValid("", "token"))
		assert.False(t, store.IsValid("alice", ""))
	})

	t.Run("usernames are tracked independently", func(t *testing.T) {
		store := NewRefreshTokenStore()

		store.Store("alice", "token-a")
		store.Store("bob", "token-b")
		store.Revoke("alice")

		assert.False(t, store.IsValid("alice", "token-a"))
		assert.True(t, store.IsValid("bob", "token-b"))
	})
}

func TestRefreshTokenStoreConcurrentAccess(t *testing.T) {
	t.Parallel()
	store := NewRefreshTokenStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			username := fmt.Sprintf("user-%d", n%5)
			token := fmt.Sprintf("token-%d", n)

			store.Store(username, token)
			store.IsValid(username, token)
			if n%7 == 0 {
				store.Revoke(username)
			}
		}(i)
	}
	wg.Wait()

	// The store must end in a consistent state: whatever token is current
	// for a user validates, everything else does not.
	store.Store("user-0", "final")
	assert.True(t, store.IsValid("user-0", "final"))
	assert.False(t, store.IsValid("user-0", "token-0"))
}
