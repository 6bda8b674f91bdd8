package domain_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Abdulkaium05/echo-backend/internal/domain"
)

func TestExpiry(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("zero value is expired", func(t *testing.T) {
		assert.True(t, domain.Expiry{}.Expired(now))
	})

	t.Run("forever never lapses", func(t *testing.T) {
		assert.False(t, domain.Forever().Expired(now.Add(100*365*24*time.Hour)))
	})

	t.Run("until is exclusive at the boundary", func(t *testing.T) {
		e := domain.Until(now)
		assert.True(t, e.Expired(now))
		assert.False(t, e.Expired(now.Add(-time.Second)))
	})

	t.Run("after days", func(t *testing.T) {
		e := domain.AfterDays(now, 7)
		assert.False(t, e.Expired(now.Add(6*24*time.Hour)))
		assert.True(t, e.Expired(now.Add(8*24*time.Hour)))

		assert.Equal(t, domain.Forever(), domain.AfterDays(now, 0))
		assert.Equal(t, domain.Forever(), domain.AfterDays(now, -1))
	})
}

func TestChatPairKey(t *testing.T) {
	assert.Equal(t, "alice:bob", domain.ChatPairKey("alice", "bob"))
	assert.Equal(t, "alice:bob", domain.ChatPairKey("bob", "alice"))
	assert.Equal(t, []string{"alice", "bob"}, domain.SortedPair("bob", "alice"))
}

func TestOtherParticipant(t *testing.T) {
	c := &domain.Chat{Participants: []string{"alice", "bob"}}
	assert.Equal(t, "bob", c.OtherParticipant("alice"))
	assert.Equal(t, "alice", c.OtherParticipant("bob"))
	assert.Equal(t, "alice", c.OtherParticipant("stranger"))
	assert.True(t, c.HasParticipant("alice"))
	assert.False(t, c.HasParticipant("stranger"))
}

func TestSnippet(t *testing.T) {
	cases := []struct {
		name string
		msg  domain.Message
		want string
	}{
		{"plain text", domain.Message{Text: "hello"}, "hello"},
		{"deleted wins", domain.Message{Text: "hello", IsDeleted: true}, "Message deleted"},
		{"photo", domain.Message{Attachment: &domain.Attachment{Type: domain.AttachmentImage}}, "📷 Photo"},
		{"video", domain.Message{Attachment: &domain.Attachment{Type: domain.AttachmentVideo}}, "🎬 Video"},
		{"voice", domain.Message{Attachment: &domain.Attachment{Type: domain.AttachmentAudio}}, "🎤 Voice message"},
		{"document", domain.Message{Attachment: &domain.Attachment{Type: domain.AttachmentDocument, Name: "plan.pdf"}}, "📄 plan.pdf"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.msg.Snippet())
		})
	}

	t.Run("long text truncates on runes", func(t *testing.T) {
		m := domain.Message{Text: strings.Repeat("é", 100)}
		got := m.Snippet()
		assert.Equal(t, strings.Repeat("é", 80)+"…", got)
	})
}

func TestHasVIPAccess(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("exclusive flags imply access", func(t *testing.T) {
		assert.True(t, (&domain.User{IsVerified: true}).HasVIPAccess(now))
		assert.True(t, (&domain.User{IsCreator: true}).HasVIPAccess(now))
		assert.True(t, (&domain.User{IsDevTeam: true}).HasVIPAccess(now))
	})

	t.Run("vip flag needs an unexpired grant", func(t *testing.T) {
		u := &domain.User{IsVIP: true, VIPExpiry: domain.Until(now.Add(time.Hour))}
		assert.True(t, u.HasVIPAccess(now))
		assert.False(t, u.HasVIPAccess(now.Add(2*time.Hour)))

		// flag without any grant reads as no access
		assert.False(t, (&domain.User{IsVIP: true}).HasVIPAccess(now))
	})

	t.Run("bots are not exclusive by themselves", func(t *testing.T) {
		assert.False(t, (&domain.User{IsBot: true}).IsExclusive())
	})
}

func TestPerUserCap(t *testing.T) {
	assert.Equal(t, 1, (&domain.PromoCode{Kind: domain.CodePoints, UsesPerUser: 5}).PerUserCap(), "points codes are always single-claim")
	assert.Equal(t, 1, (&domain.PromoCode{Kind: domain.CodeVIP}).PerUserCap())
	assert.Equal(t, 3, (&domain.PromoCode{Kind: domain.CodeBadge, UsesPerUser: 3}).PerUserCap())
}

func TestUserCloneIsDeep(t *testing.T) {
	u := &domain.User{
		ID:                       "alice",
		Badges:                   map[domain.BadgeType]domain.Expiry{domain.BadgeFounder: domain.Forever()},
		BadgeOrder:               []domain.BadgeType{domain.BadgeFounder},
		SelectedVerifiedContacts: []string{"star"},
	}
	cp := u.Clone()
	cp.Badges[domain.BadgeVIP] = domain.Forever()
	cp.BadgeOrder[0] = domain.BadgeVIP
	cp.SelectedVerifiedContacts[0] = "other"

	assert.NotContains(t, u.Badges, domain.BadgeVIP)
	assert.Equal(t, domain.BadgeFounder, u.BadgeOrder[0])
	assert.Equal(t, "star", u.SelectedVerifiedContacts[0])
}
