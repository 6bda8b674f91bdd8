package presence_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abdulkaium05/echo-backend/internal/presence"
)

func TestTrackerStatus(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := now
	tr := presence.NewTracker(presence.NewMemoryStore()).WithClock(func() time.Time { return clock })

	t.Run("never seen", func(t *testing.T) {
		st, err := tr.Status(ctx, "ghost")
		require.NoError(t, err)
		assert.False(t, st.Online)
		assert.True(t, st.LastActive.IsZero())
		assert.Equal(t, "Offline", st.Label(now))
	})

	require.NoError(t, tr.Touch(ctx, "alice"))

	t.Run("fresh touch is online", func(t *testing.T) {
		st, err := tr.Status(ctx, "alice")
		require.NoError(t, err)
		assert.True(t, st.Online)
		assert.Equal(t, "Online", st.Label(clock))
	})

	t.Run("window edge", func(t *testing.T) {
		clock = now.Add(presence.OnlineWindow)
		st, err := tr.Status(ctx, "alice")
		require.NoError(t, err)
		assert.True(t, st.Online, "exactly at the window is still online")

		clock = now.Add(presence.OnlineWindow + time.Second)
		st, err = tr.Status(ctx, "alice")
		require.NoError(t, err)
		assert.False(t, st.Online)
	})

	t.Run("a new touch resets staleness", func(t *testing.T) {
		clock = now.Add(3 * time.Hour)
		require.NoError(t, tr.Touch(ctx, "alice"))
		st, err := tr.Status(ctx, "alice")
		require.NoError(t, err)
		assert.True(t, st.Online)
	})
}

func TestStatusLabelBuckets(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		ago  time.Duration
		want string
	}{
		{"minutes", 12 * time.Minute, "Active 12m ago"},
		{"just under an hour", 59 * time.Minute, "Active 59m ago"},
		{"hours", 5 * time.Hour, "Active 5h ago"},
		{"days", 49 * time.Hour, "Active 2d ago"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st := presence.Status{LastActive: now.Add(-tc.ago)}
			assert.Equal(t, tc.want, st.Label(now))
		})
	}
}
