package service_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abdulkaium05/echo-backend/internal/domain"
)

func TestCreateOrGetChat(t *testing.T) {
	e := newEnv(t)
	e.seedUser(t, &domain.User{ID: "alice"})
	e.seedUser(t, &domain.User{ID: "bob"})
	ctx := context.Background()

	t.Run("creates once and is idempotent", func(t *testing.T) {
		first, err := e.directory.CreateOrGetChat(ctx, "alice", "bob")
		require.NoError(t, err)
		assert.Equal(t, []string{"alice", "bob"}, first.Participants)
		assert.NotEmpty(t, first.LastMessage)

		// reversed argument order resolves to the same chat
		second, err := e.directory.CreateOrGetChat(ctx, "bob", "alice")
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
	})

	t.Run("find returns the canonical chat", func(t *testing.T) {
		found, err := e.directory.FindChat(ctx, "bob", "alice")
		require.NoError(t, err)
		assert.Equal(t, domain.ChatPairKey("alice", "bob"), found.PairKey)
	})

	t.Run("rejects self and unknown users", func(t *testing.T) {
		_, err := e.directory.CreateOrGetChat(ctx, "alice", "alice")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)

		_, err = e.directory.CreateOrGetChat(ctx, "alice", "ghost")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestCreateOrGetChatConcurrent(t *testing.T) {
	e := newEnv(t)
	e.seedUser(t, &domain.User{ID: "alice"})
	e.seedUser(t, &domain.User{ID: "bob"})

	const n = 16
	ids := make([]string, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a, b := "alice", "bob"
			if i%2 == 1 {
				a, b = b, a
			}
			chat, err := e.directory.CreateOrGetChat(context.Background(), a, b)
			if err != nil {
				errs[i] = err
				return
			}
			ids[i] = chat.ID
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}

	for i := 1; i < n; i++ {
		assert.Equal(t, ids[0], ids[i], "all callers must converge on one chat")
	}
}
