package service

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/Abdulkaium05/echo-backend/internal/domain"
	"github.com/Abdulkaium05/echo-backend/internal/hub"
)

// VisibilityService computes, per viewer, which chats are eligible for
// display. A pure read-side projection: entitlement flags change independently
// of chat data, so the rule is re-evaluated on every read.
type VisibilityService struct {
	store domain.Store
	hub   *hub.Hub
	log   *zap.SugaredLogger
	now   func() time.Time
}

func NewVisibilityService(store domain.Store, h *hub.Hub, log *zap.SugaredLogger) *VisibilityService {
	return &VisibilityService{store: store, hub: h, log: log, now: time.Now}
}

// WithClock overrides the clock; used by tests.
func (s *VisibilityService) WithClock(now func() time.Time) *VisibilityService {
	s.now = now
	return s
}

// ChatVisible is the entitlement rule, evaluated against the other
// participant's profile:
//
//  1. bots are always visible;
//  2. non-exclusive users are always visible;
//  3. an exclusive user is visible only if they allow-listed the viewer, or
//     the viewer holds VIP-equivalent access and has pinned them as a
//     selected contact.
func ChatVisible(viewer, other *domain.User, now time.Time) bool {
	if other.IsBot {
		return true
	}
	if !other.IsExclusive() {
		return true
	}
	if other.HasAllowed(viewer.ID) {
		return true
	}
	return viewer.HasVIPAccess(now) && viewer.HasSelected(other.ID)
}

// ListVisibleChats returns the viewer's eligible chats, most recent first.
func (s *VisibilityService) ListVisibleChats(ctx context.Context, viewerID string) ([]domain.ChatSummary, error) {
	viewer, err := s.store.Users().GetByID(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	chats, err := s.store.Chats().ListForUser(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	otherIDs := make([]string, 0, len(chats))
	for _, c := range chats {
		otherIDs = append(otherIDs, c.OtherParticipant(viewerID))
	}
	others, err := s.store.Users().GetMany(ctx, otherIDs)
	if err != nil {
		return nil, err
	}

	now := s.now()
	summaries := make([]domain.ChatSummary, 0, len(chats))
	for _, c := range chats {
		other, ok := others[c.OtherParticipant(viewerID)]
		if !ok || other.Deactivated {
			continue
		}
		if !ChatVisible(viewer, other, now) {
			continue
		}
		summaries = append(summaries, domain.ChatSummary{
			ChatID:        c.ID,
			OtherID:       other.ID,
			LastMessage:   c.LastMessage,
			LastMessageAt: c.LastMessageAt,
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		if !summaries[i].LastMessageAt.Equal(summaries[j].LastMessageAt) {
			return summaries[i].LastMessageAt.After(summaries[j].LastMessageAt)
		}
		return summaries[i].ChatID < summaries[j].ChatID
	})
	return summaries, nil
}

// SubscribeChats opens a live stream of the viewer's visible chat list. The
// stream re-emits on chat activity and on the viewer's own profile changes;
// cancelling ctx ends it and releases the hub slot.
func (s *VisibilityService) SubscribeChats(ctx context.Context, viewerID string) (<-chan []domain.ChatSummary, error) {
	if _, err := s.store.Users().GetByID(ctx, viewerID); err != nil {
		return nil, err
	}
	sub := s.hub.Subscribe(hub.UserChatsTopic(viewerID))
	out := make(chan []domain.ChatSummary, 1)
	go runStream(ctx, sub, out, func(ctx context.Context) ([]domain.ChatSummary, error) {
		return s.ListVisibleChats(ctx, viewerID)
	}, s.log)
	return out, nil
}
