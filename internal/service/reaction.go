package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Abdulkaium05/echo-backend/internal/domain"
	"github.com/Abdulkaium05/echo-backend/internal/events"
	"github.com/Abdulkaium05/echo-backend/internal/hub"
	"github.com/Abdulkaium05/echo-backend/internal/txn"
)

// ReactionService maintains the per-message reaction ledger. A user holds at
// most one active reaction per message; toggling the same emoji removes it,
// toggling a different one moves it.
type ReactionService struct {
	store  domain.Store
	hub    *hub.Hub
	pub    events.Publisher
	policy txn.Policy
	log    *zap.SugaredLogger
}

func NewReactionService(store domain.Store, h *hub.Hub, pub events.Publisher, log *zap.SugaredLogger) *ReactionService {
	return &ReactionService{
		store:  store,
		hub:    h,
		pub:    pub,
		policy: txn.DefaultPolicy(),
		log:    log,
	}
}

// Toggle flips the user's reaction on a message. The read-modify-write runs
// as one optimistic unit: a concurrent toggle on the same message forces a
// re-read rather than losing either update.
func (s *ReactionService) Toggle(ctx context.Context, chatID, messageID, emoji, userID string) error {
	if emoji == "" {
		return fmt.Errorf("emoji is required: %w", domain.ErrInvalidInput)
	}

	err := txn.Do(ctx, s.policy, func(ctx context.Context) error {
		m, err := s.store.Messages().GetByID(ctx, chatID, messageID)
		if err != nil {
			return err
		}
		if m.IsDeleted {
			return fmt.Errorf("message %s: %w", messageID, domain.ErrMessageDeleted)
		}

		reactions := domain.CloneReactions(m.Reactions)
		if reactions == nil {
			reactions = make(map[string]domain.Reaction)
		}

		current, reacted := m.ReactedEmoji(userID)
		if reacted {
			removeReaction(reactions, current, userID)
		}
		if !reacted || current != emoji {
			addReaction(reactions, emoji, userID)
		}

		return s.store.Messages().UpdateReactions(ctx, chatID, messageID, m.Version, reactions)
	})
	if err != nil {
		return err
	}

	s.hub.Publish(hub.ChatTopic(chatID))
	payload := map[string]string{"chat_id": chatID, "message_id": messageID, "emoji": emoji, "user_id": userID}
	if err := s.pub.Publish(ctx, events.TypeReactionToggled, payload); err != nil {
		s.log.Warnw("publish reaction.toggled", "message", messageID, "err", err)
	}
	return nil
}

func addReaction(reactions map[string]domain.Reaction, emoji, userID string) {
	r := reactions[emoji]
	r.UserIDs = append(r.UserIDs, userID)
	r.Count = len(r.UserIDs)
	reactions[emoji] = r
}

func removeReaction(reactions map[string]domain.Reaction, emoji, userID string) {
	r, ok := reactions[emoji]
	if !ok {
		return
	}
	ids := r.UserIDs[:0]
	for _, id := range r.UserIDs {
		if id != userID {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		delete(reactions, emoji)
		return
	}
	reactions[emoji] = domain.Reaction{Count: len(ids), UserIDs: ids}
}
