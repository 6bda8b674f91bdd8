package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/Abdulkaium05/echo-backend/internal/domain"
	"github.com/Abdulkaium05/echo-backend/internal/events"
	"github.com/Abdulkaium05/echo-backend/internal/hub"
	"github.com/Abdulkaium05/echo-backend/internal/txn"
)

// newChatPlaceholder seeds the denormalized summary of a freshly created chat.
const newChatPlaceholder = "Say hello 👋"

// DirectoryService resolves the single canonical chat between two users.
type DirectoryService struct {
	store  domain.Store
	hub    *hub.Hub
	pub    events.Publisher
	policy txn.Policy
	log    *zap.SugaredLogger
	now    func() time.Time
}

func NewDirectoryService(store domain.Store, h *hub.Hub, pub events.Publisher, log *zap.SugaredLogger) *DirectoryService {
	return &DirectoryService{
		store:  store,
		hub:    h,
		pub:    pub,
		policy: txn.DefaultPolicy(),
		log:    log,
		now:    time.Now,
	}
}

// FindChat returns the chat between a and b, or ErrNotFound.
func (s *DirectoryService) FindChat(ctx context.Context, a, b string) (*domain.Chat, error) {
	if a == "" || b == "" || a == b {
		return nil, fmt.Errorf("need two distinct participants: %w", domain.ErrInvalidInput)
	}
	return s.store.Chats().FindByPairKey(ctx, domain.ChatPairKey(a, b))
}

// GetChat returns a chat by id.
func (s *DirectoryService) GetChat(ctx context.Context, chatID string) (*domain.Chat, error) {
	return s.store.Chats().GetByID(ctx, chatID)
}

// CreateOrGetChat finds or lazily creates the canonical chat for the pair.
// Concurrent calls converge on one chat: the insert races on the unique pair
// key, and the loser's retry finds the winner's document.
func (s *DirectoryService) CreateOrGetChat(ctx context.Context, a, b string) (*domain.Chat, error) {
	if a == "" || b == "" || a == b {
		return nil, fmt.Errorf("need two distinct participants: %w", domain.ErrInvalidInput)
	}
	users, err := s.store.Users().GetMany(ctx, []string{a, b})
	if err != nil {
		return nil, err
	}
	for _, id := range []string{a, b} {
		if _, ok := users[id]; !ok {
			return nil, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
		}
	}

	pairKey := domain.ChatPairKey(a, b)
	var (
		chat    *domain.Chat
		created bool
	)
	err = txn.Do(ctx, s.policy, func(ctx context.Context) error {
		existing, err := s.store.Chats().FindByPairKey(ctx, pairKey)
		if err == nil {
			chat, created = existing, false
			return nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		now := s.now().UTC()
		c := &domain.Chat{
			ID:            primitive.NewObjectID().Hex(),
			PairKey:       pairKey,
			Participants:  domain.SortedPair(a, b),
			LastMessage:   newChatPlaceholder,
			LastMessageAt: now,
			CreatedAt:     now,
		}
		if err := s.store.Chats().Insert(ctx, c); err != nil {
			return err
		}
		chat, created = c, true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if created {
		s.hub.Publish(hub.UserChatsTopic(a), hub.UserChatsTopic(b))
		if err := s.pub.Publish(ctx, events.TypeChatCreated, chat); err != nil {
			s.log.Warnw("publish chat.created", "chat", chat.ID, "err", err)
		}
	}
	return chat, nil
}
