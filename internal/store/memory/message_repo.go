package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/Abdulkaium05/echo-backend/internal/domain"
)

type messageRepo struct{ s *Store }

func (r *messageRepo) Insert(ctx context.Context, m *domain.Message) error {
	defer r.s.lock(ctx)()
	msgs := r.s.messages[m.ChatID]
	cp := m.Clone()
	msgs = append(msgs, cp)
	// appends carry a fresh chat sequence, but concurrent transactions may
	// land out of order in the slice
	sort.Slice(msgs, func(i, j int) bool { return msgs[i].Seq < msgs[j].Seq })
	r.s.messages[m.ChatID] = msgs
	return nil
}

func (r *messageRepo) find(chatID, messageID string) (*domain.Message, error) {
	for _, m := range r.s.messages[chatID] {
		if m.ID == messageID {
			return m, nil
		}
	}
	return nil, fmt.Errorf("message %s in chat %s: %w", messageID, chatID, domain.ErrNotFound)
}

func (r *messageRepo) GetByID(ctx context.Context, chatID, messageID string) (*domain.Message, error) {
	defer r.s.lock(ctx)()
	m, err := r.find(chatID, messageID)
	if err != nil {
		return nil, err
	}
	return m.Clone(), nil
}

func (r *messageRepo) ListByChat(ctx context.Context, chatID string) ([]*domain.Message, error) {
	defer r.s.lock(ctx)()
	msgs := r.s.messages[chatID]
	out := make([]*domain.Message, len(msgs))
	for i, m := range msgs {
		out[i] = m.Clone()
	}
	return out, nil
}

func (r *messageRepo) UpdateReactions(ctx context.Context, chatID, messageID string, version int64, reactions map[string]domain.Reaction) error {
	defer r.s.lock(ctx)()
	m, err := r.find(chatID, messageID)
	if err != nil {
		return err
	}
	if m.Version != version {
		return fmt.Errorf("message %s version %d: %w", messageID, version, domain.ErrConflict)
	}
	m.Reactions = domain.CloneReactions(reactions)
	m.Version++
	return nil
}

func (r *messageRepo) Tombstone(ctx context.Context, chatID, messageID string) error {
	defer r.s.lock(ctx)()
	m, err := r.find(chatID, messageID)
	if err != nil {
		return err
	}
	m.Text = ""
	m.Attachment = nil
	m.Reactions = nil
	m.IsDeleted = true
	m.Version++
	return nil
}

func (r *messageRepo) MarkSeen(ctx context.Context, chatID, viewerID string) error {
	defer r.s.lock(ctx)()
	for _, m := range r.s.messages[chatID] {
		if !m.HasSeen(viewerID) {
			m.SeenBy = append(m.SeenBy, viewerID)
		}
	}
	return nil
}
