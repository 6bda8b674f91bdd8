package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abdulkaium05/echo-backend/internal/domain"
	"github.com/Abdulkaium05/echo-backend/internal/service"
)

func TestChatVisible(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	viewer := &domain.User{ID: "viewer"}

	t.Run("bots always show", func(t *testing.T) {
		bot := &domain.User{ID: "helper", IsBot: true, IsVerified: true}
		assert.True(t, service.ChatVisible(viewer, bot, now))
	})

	t.Run("regular users always show", func(t *testing.T) {
		plain := &domain.User{ID: "plain"}
		assert.True(t, service.ChatVisible(viewer, plain, now))
	})

	t.Run("exclusive users hide from plain viewers", func(t *testing.T) {
		star := &domain.User{ID: "star", IsVerified: true}
		assert.False(t, service.ChatVisible(viewer, star, now))
	})

	t.Run("allow-list bypasses everything", func(t *testing.T) {
		star := &domain.User{ID: "star", IsCreator: true, AllowedNormalContacts: []string{"viewer"}}
		assert.True(t, service.ChatVisible(viewer, star, now))
	})

	t.Run("vip needs the pin too", func(t *testing.T) {
		star := &domain.User{ID: "star", IsVerified: true}
		vip := &domain.User{ID: "viewer", IsVIP: true, VIPExpiry: domain.Forever()}
		assert.False(t, service.ChatVisible(vip, star, now), "VIP without pin sees nothing")

		vip.SelectedVerifiedContacts = []string{"star"}
		assert.True(t, service.ChatVisible(vip, star, now))
	})

	t.Run("expired vip loses access", func(t *testing.T) {
		star := &domain.User{ID: "star", IsDevTeam: true}
		lapsed := &domain.User{
			ID: "viewer", IsVIP: true,
			VIPExpiry:                domain.Until(now.Add(-time.Hour)),
			SelectedVerifiedContacts: []string{"star"},
		}
		assert.False(t, service.ChatVisible(lapsed, star, now))
	})
}

// A plain member chats with an exclusive creator, loses sight of the chat,
// then earns it back by going VIP and pinning the creator. The chat itself
// never moves; only the projection changes.
func TestListVisibleChats(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	e.visibility.WithClock(func() time.Time { return now })

	e.seedUser(t, &domain.User{ID: "val"})
	e.seedUser(t, &domain.User{ID: "ember", IsVerified: true})
	e.seedUser(t, &domain.User{ID: "plain"})
	e.seedUser(t, &domain.User{ID: "helper", IsBot: true, IsVerified: true})

	exclusiveChat := e.seedChat(t, "val", "ember")
	plainChat := e.seedChat(t, "val", "plain")
	botChat := e.seedChat(t, "val", "helper")

	chatIDs := func(t *testing.T) []string {
		t.Helper()
		sums, err := e.visibility.ListVisibleChats(ctx, "val")
		require.NoError(t, err)
		ids := make([]string, len(sums))
		for i, s := range sums {
			ids[i] = s.ChatID
		}
		return ids
	}

	t.Run("exclusive chat hidden from plain viewer", func(t *testing.T) {
		got := chatIDs(t)
		assert.NotContains(t, got, exclusiveChat.ID)
		assert.Contains(t, got, plainChat.ID)
		assert.Contains(t, got, botChat.ID)
	})

	t.Run("vip plus pin restores the chat", func(t *testing.T) {
		vip := true
		exp := domain.Until(now.Add(30 * 24 * time.Hour))
		sel := []string{"ember"}
		_, err := e.profiles.UpdateProfile(ctx, "val", domain.ProfileUpdate{
			IsVIP: &vip, VIPExpiry: &exp, SelectedVerifiedContacts: &sel,
		})
		require.NoError(t, err)

		assert.Contains(t, chatIDs(t), exclusiveChat.ID)
	})

	t.Run("vip expiry hides it again", func(t *testing.T) {
		e.visibility.WithClock(func() time.Time { return now.Add(31 * 24 * time.Hour) })
		assert.NotContains(t, chatIDs(t), exclusiveChat.ID)
		e.visibility.WithClock(func() time.Time { return now })
	})

	t.Run("deactivated counterpart disappears", func(t *testing.T) {
		require.NoError(t, e.profiles.Deactivate(ctx, "plain"))
		assert.NotContains(t, chatIDs(t), plainChat.ID)
	})
}

func TestListVisibleChatsOrder(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	e.seedUser(t, &domain.User{ID: "val"})
	e.seedUser(t, &domain.User{ID: "ana"})
	e.seedUser(t, &domain.User{ID: "ben"})

	older := e.seedChat(t, "val", "ana")
	newer := e.seedChat(t, "val", "ben")

	_, err := e.messages.Send(ctx, service.SendMessageInput{ChatID: older.ID, SenderID: "ana", Text: "first"})
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	_, err = e.messages.Send(ctx, service.SendMessageInput{ChatID: newer.ID, SenderID: "ben", Text: "second"})
	require.NoError(t, err)

	sums, err := e.visibility.ListVisibleChats(ctx, "val")
	require.NoError(t, err)
	require.Len(t, sums, 2)
	assert.Equal(t, newer.ID, sums[0].ChatID, "latest activity sorts first")
	assert.Equal(t, "second", sums[0].LastMessage)
	assert.Equal(t, older.ID, sums[1].ChatID)
}

func TestSubscribeChatsReactsToEntitlementChange(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	e.seedUser(t, &domain.User{ID: "val"})
	e.seedUser(t, &domain.User{ID: "ember", IsVerified: true, AllowedNormalContacts: []string{}})
	chat := e.seedChat(t, "val", "ember")

	stream, err := e.visibility.SubscribeChats(ctx, "val")
	require.NoError(t, err)

	recv := func(t *testing.T) []domain.ChatSummary {
		t.Helper()
		select {
		case sums, ok := <-stream:
			require.True(t, ok)
			return sums
		case <-time.After(2 * time.Second):
			t.Fatal("no frame")
			return nil
		}
	}

	assert.Empty(t, recv(t), "exclusive chat starts hidden")

	// ember opens the door for val; the viewer's list must re-emit, since
	// redeeming/entitlement changes publish to both sides of the pair
	allowed := []string{"val"}
	_, err = e.profiles.UpdateProfile(context.Background(), "ember", domain.ProfileUpdate{
		AllowedNormalContacts: &allowed,
	})
	require.NoError(t, err)

	deadline := time.After(2 * time.Second)
	for {
		select {
		case sums := <-stream:
			if len(sums) == 1 && sums[0].ChatID == chat.ID {
				return
			}
		case <-deadline:
			t.Fatal("chat never became visible on the stream")
		}
	}
}
