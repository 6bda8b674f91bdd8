package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Abdulkaium05/echo-backend/internal/domain"
)

type chatRepo struct{ s *Store }

func (r *chatRepo) Insert(ctx context.Context, c *domain.Chat) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	// the unique pair_key index turns concurrent inserts for the same pair
	// into a duplicate-key conflict
	_, err := r.s.chats.InsertOne(ctx, c)
	return wrapErr("insert chat", err)
}

func (r *chatRepo) GetByID(ctx context.Context, id string) (*domain.Chat, error) {
	var c domain.Chat
	err := r.s.chats.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if err != nil {
		return nil, wrapErr("get chat "+id, err)
	}
	return &c, nil
}

func (r *chatRepo) FindByPairKey(ctx context.Context, pairKey string) (*domain.Chat, error) {
	var c domain.Chat
	err := r.s.chats.FindOne(ctx, bson.M{"pair_key": pairKey}).Decode(&c)
	if err != nil {
		return nil, wrapErr("find chat pair", err)
	}
	return &c, nil
}

func (r *chatRepo) ListForUser(ctx context.Context, userID string) ([]*domain.Chat, error) {
	cursor, err := r.s.chats.Find(ctx, bson.M{"participants": userID})
	if err != nil {
		return nil, wrapErr("list chats", err)
	}
	var chats []*domain.Chat
	if err := cursor.All(ctx, &chats); err != nil {
		return nil, wrapErr("decode chats", err)
	}
	return chats, nil
}

func (r *chatRepo) NextSeq(ctx context.Context, chatID string) (int64, error) {
	var c domain.Chat
	err := r.s.chats.FindOneAndUpdate(ctx,
		bson.M{"_id": chatID},
		bson.M{"$inc": bson.M{"msg_seq": 1}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&c)
	if err != nil {
		return 0, wrapErr("next seq "+chatID, err)
	}
	return c.MsgSeq, nil
}

func (r *chatRepo) SetLastMessage(ctx context.Context, chatID, snippet string, at time.Time) error {
	res, err := r.s.chats.UpdateOne(ctx,
		bson.M{"_id": chatID},
		bson.M{"$set": bson.M{"last_message": snippet, "last_message_at": at}},
	)
	if err != nil {
		return wrapErr("set last message "+chatID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("chat %s: %w", chatID, domain.ErrNotFound)
	}
	return nil
}
