package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/Abdulkaium05/echo-backend/internal/domain"
)

type chatRepo struct{ s *Store }

func (r *chatRepo) Insert(ctx context.Context, c *domain.Chat) error {
	defer r.s.lock(ctx)()
	if _, ok := r.s.pairIndex[c.PairKey]; ok {
		return fmt.Errorf("chat pair %s: %w", c.PairKey, domain.ErrConflict)
	}
	cp := c.Clone()
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now().UTC()
	}
	r.s.chats[c.ID] = cp
	r.s.pairIndex[c.PairKey] = c.ID
	return nil
}

func (r *chatRepo) GetByID(ctx context.Context, id string) (*domain.Chat, error) {
	defer r.s.lock(ctx)()
	c, ok := r.s.chats[id]
	if !ok {
		return nil, fmt.Errorf("chat %s: %w", id, domain.ErrNotFound)
	}
	return c.Clone(), nil
}

func (r *chatRepo) FindByPairKey(ctx context.Context, pairKey string) (*domain.Chat, error) {
	defer r.s.lock(ctx)()
	id, ok := r.s.pairIndex[pairKey]
	if !ok {
		return nil, fmt.Errorf("chat pair %s: %w", pairKey, domain.ErrNotFound)
	}
	return r.s.chats[id].Clone(), nil
}

func (r *chatRepo) ListForUser(ctx context.Context, userID string) ([]*domain.Chat, error) {
	defer r.s.lock(ctx)()
	var out []*domain.Chat
	for _, c := range r.s.chats {
		if c.HasParticipant(userID) {
			out = append(out, c.Clone())
		}
	}
	return out, nil
}

func (r *chatRepo) NextSeq(ctx context.Context, chatID string) (int64, error) {
	defer r.s.lock(ctx)()
	c, ok := r.s.chats[chatID]
	if !ok {
		return 0, fmt.Errorf("chat %s: %w", chatID, domain.ErrNotFound)
	}
	c.MsgSeq++
	return c.MsgSeq, nil
}

func (r *chatRepo) SetLastMessage(ctx context.Context, chatID, snippet string, at time.Time) error {
	defer r.s.lock(ctx)()
	c, ok := r.s.chats[chatID]
	if !ok {
		return fmt.Errorf("chat %s: %w", chatID, domain.ErrNotFound)
	}
	c.LastMessage = snippet
	c.LastMessageAt = at
	return nil
}
