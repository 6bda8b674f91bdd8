package txn_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abdulkaium05/echo-backend/internal/domain"
	"github.com/Abdulkaium05/echo-backend/internal/txn"
)

func fastPolicy(attempts int) txn.Policy {
	return txn.Policy{MaxAttempts: attempts, InitialInterval: time.Millisecond, MaxInterval: 2 * time.Millisecond}
}

func TestDoRetriesConflicts(t *testing.T) {
	calls := 0
	err := txn.Do(context.Background(), fastPolicy(5), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return domain.ErrConflict
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoTerminalErrorsPassThrough(t *testing.T) {
	calls := 0
	err := txn.Do(context.Background(), fastPolicy(5), func(ctx context.Context) error {
		calls++
		return domain.ErrNotFound
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NotErrorIs(t, err, domain.ErrContention)
	assert.Equal(t, 1, calls, "terminal errors burn no retries")
}

func TestDoExhaustionSurfacesContention(t *testing.T) {
	calls := 0
	err := txn.Do(context.Background(), fastPolicy(3), func(ctx context.Context) error {
		calls++
		return domain.ErrConflict
	})
	assert.ErrorIs(t, err, domain.ErrContention)
	assert.Equal(t, 3, calls)
}

func TestDoStorageErrorsRetry(t *testing.T) {
	calls := 0
	err := txn.Do(context.Background(), fastPolicy(5), func(ctx context.Context) error {
		calls++
		if calls == 1 {
			return domain.ErrStorageUnavailable
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestDoHonorsContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := txn.Do(ctx, txn.Policy{MaxAttempts: 10, InitialInterval: time.Hour, MaxInterval: time.Hour}, func(ctx context.Context) error {
		calls++
		cancel()
		return domain.ErrConflict
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls, "cancel must cut the backoff wait short")
}

func TestRetryable(t *testing.T) {
	assert.True(t, txn.Retryable(domain.ErrConflict))
	assert.True(t, txn.Retryable(domain.ErrStorageUnavailable))
	wrapped := errors.Join(errors.New("update user"), domain.ErrConflict)
	assert.True(t, txn.Retryable(wrapped))

	assert.False(t, txn.Retryable(domain.ErrNotFound))
	assert.False(t, txn.Retryable(domain.ErrPermissionDenied))
	assert.False(t, txn.Retryable(nil))
}
