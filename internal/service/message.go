package service

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/Abdulkaium05/echo-backend/internal/domain"
	"github.com/Abdulkaium05/echo-backend/internal/events"
	"github.com/Abdulkaium05/echo-backend/internal/hub"
	"github.com/Abdulkaium05/echo-backend/internal/txn"
)

// MessageService owns the append-only per-chat message log.
type MessageService struct {
	store  domain.Store
	hub    *hub.Hub
	pub    events.Publisher
	policy txn.Policy
	log    *zap.SugaredLogger
	now    func() time.Time
}

func NewMessageService(store domain.Store, h *hub.Hub, pub events.Publisher, log *zap.SugaredLogger) *MessageService {
	return &MessageService{
		store:  store,
		hub:    h,
		pub:    pub,
		policy: txn.DefaultPolicy(),
		log:    log,
		now:    time.Now,
	}
}

// SendMessageInput carries one append request.
type SendMessageInput struct {
	ChatID     string
	SenderID   string
	Text       string
	Attachment *domain.Attachment
	ReplyToID  string
}

// Send appends a message to the chat log. The log position and the chat's
// denormalized summary commit in one transaction, so a listed chat never
// points at a message the log does not have.
func (s *MessageService) Send(ctx context.Context, in SendMessageInput) (*domain.Message, error) {
	if in.Text == "" && in.Attachment == nil {
		return nil, domain.ErrEmptyMessage
	}

	var msg *domain.Message
	var participants []string
	err := txn.Do(ctx, s.policy, func(ctx context.Context) error {
		return s.store.WithTransaction(ctx, func(ctx context.Context) error {
			chat, err := s.store.Chats().GetByID(ctx, in.ChatID)
			if err != nil {
				return err
			}
			if !chat.HasParticipant(in.SenderID) {
				return fmt.Errorf("sender %s is not in chat %s: %w", in.SenderID, in.ChatID, domain.ErrPermissionDenied)
			}
			participants = chat.Participants

			var reply *domain.ReplyRef
			if in.ReplyToID != "" {
				target, err := s.store.Messages().GetByID(ctx, in.ChatID, in.ReplyToID)
				if err != nil {
					return err
				}
				// snippet is frozen here; later edits to the target do
				// not propagate
				reply = &domain.ReplyRef{
					MessageID: target.ID,
					SenderID:  target.SenderID,
					Snippet:   target.Snippet(),
				}
			}

			seq, err := s.store.Chats().NextSeq(ctx, in.ChatID)
			if err != nil {
				return err
			}
			msg = &domain.Message{
				ID:         primitive.NewObjectID().Hex(),
				ChatID:     in.ChatID,
				SenderID:   in.SenderID,
				Text:       in.Text,
				Attachment: in.Attachment,
				ReplyTo:    reply,
				Seq:        seq,
				Timestamp:  s.now().UTC(),
			}
			if err := s.store.Messages().Insert(ctx, msg); err != nil {
				return err
			}
			return s.store.Chats().SetLastMessage(ctx, in.ChatID, msg.Snippet(), msg.Timestamp)
		})
	})
	if err != nil {
		return nil, err
	}

	topics := []string{hub.ChatTopic(in.ChatID)}
	for _, p := range participants {
		topics = append(topics, hub.UserChatsTopic(p))
	}
	s.hub.Publish(topics...)
	if err := s.pub.Publish(ctx, events.TypeMessageSent, msg); err != nil {
		s.log.Warnw("publish message.sent", "message", msg.ID, "err", err)
	}
	return msg, nil
}

// List returns the chat's full log in log order.
func (s *MessageService) List(ctx context.Context, chatID string) ([]*domain.Message, error) {
	if _, err := s.store.Chats().GetByID(ctx, chatID); err != nil {
		return nil, err
	}
	return s.store.Messages().ListByChat(ctx, chatID)
}

// Subscribe opens a live stream of the chat's ordered message list. The
// stream closes when ctx is cancelled; cancelling releases the hub slot
// without touching other subscribers.
func (s *MessageService) Subscribe(ctx context.Context, chatID string) (<-chan []*domain.Message, error) {
	if _, err := s.store.Chats().GetByID(ctx, chatID); err != nil {
		return nil, err
	}
	sub := s.hub.Subscribe(hub.ChatTopic(chatID))
	out := make(chan []*domain.Message, 1)
	go runStream(ctx, sub, out, func(ctx context.Context) ([]*domain.Message, error) {
		return s.store.Messages().ListByChat(ctx, chatID)
	}, s.log)
	return out, nil
}

// SoftDelete tombstones the requester's own message: content and reactions
// cleared, identity and log position kept. Idempotent.
func (s *MessageService) SoftDelete(ctx context.Context, chatID, messageID, requesterID string) error {
	m, err := s.store.Messages().GetByID(ctx, chatID, messageID)
	if err != nil {
		return err
	}
	if m.SenderID != requesterID {
		return fmt.Errorf("only the sender can delete a message: %w", domain.ErrPermissionDenied)
	}
	if m.IsDeleted {
		return nil
	}
	if err := s.store.Messages().Tombstone(ctx, chatID, messageID); err != nil {
		return err
	}
	s.hub.Publish(hub.ChatTopic(chatID))
	if err := s.pub.Publish(ctx, events.TypeMessageDeleted, map[string]string{"chat_id": chatID, "message_id": messageID}); err != nil {
		s.log.Warnw("publish message.deleted", "message", messageID, "err", err)
	}
	return nil
}

// MarkSeen adds the viewer to the seen-by set of every message in the chat.
// Idempotent; the set only grows.
func (s *MessageService) MarkSeen(ctx context.Context, chatID, viewerID string) error {
	chat, err := s.store.Chats().GetByID(ctx, chatID)
	if err != nil {
		return err
	}
	if !chat.HasParticipant(viewerID) {
		return fmt.Errorf("viewer %s is not in chat %s: %w", viewerID, chatID, domain.ErrPermissionDenied)
	}
	if err := s.store.Messages().MarkSeen(ctx, chatID, viewerID); err != nil {
		return err
	}
	s.hub.Publish(hub.ChatTopic(chatID))
	return nil
}
