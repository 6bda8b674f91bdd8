package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Abdulkaium05/echo-backend/internal/domain"
)

type messageRepo struct{ s *Store }

func (r *messageRepo) Insert(ctx context.Context, m *domain.Message) error {
	_, err := r.s.messages.InsertOne(ctx, m)
	return wrapErr("insert message", err)
}

func (r *messageRepo) GetByID(ctx context.Context, chatID, messageID string) (*domain.Message, error) {
	var m domain.Message
	err := r.s.messages.FindOne(ctx, bson.M{"_id": messageID, "chat_id": chatID}).Decode(&m)
	if err != nil {
		return nil, wrapErr("get message "+messageID, err)
	}
	return &m, nil
}

func (r *messageRepo) ListByChat(ctx context.Context, chatID string) ([]*domain.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "seq", Value: 1}})
	cursor, err := r.s.messages.Find(ctx, bson.M{"chat_id": chatID}, opts)
	if err != nil {
		return nil, wrapErr("list messages", err)
	}
	var msgs []*domain.Message
	if err := cursor.All(ctx, &msgs); err != nil {
		return nil, wrapErr("decode messages", err)
	}
	return msgs, nil
}

func (r *messageRepo) UpdateReactions(ctx context.Context, chatID, messageID string, version int64, reactions map[string]domain.Reaction) error {
	res, err := r.s.messages.UpdateOne(ctx,
		bson.M{"_id": messageID, "chat_id": chatID, "version": version},
		bson.M{"$set": bson.M{"reactions": reactions}, "$inc": bson.M{"version": 1}},
	)
	if err != nil {
		return wrapErr("update reactions "+messageID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("message %s version %d: %w", messageID, version, domain.ErrConflict)
	}
	return nil
}

func (r *messageRepo) Tombstone(ctx context.Context, chatID, messageID string) error {
	res, err := r.s.messages.UpdateOne(ctx,
		bson.M{"_id": messageID, "chat_id": chatID},
		bson.M{
			"$set":   bson.M{"is_deleted": true},
			"$unset": bson.M{"text": "", "attachment": "", "reactions": ""},
			"$inc":   bson.M{"version": 1},
		},
	)
	if err != nil {
		return wrapErr("tombstone "+messageID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("message %s: %w", messageID, domain.ErrNotFound)
	}
	return nil
}

func (r *messageRepo) MarkSeen(ctx context.Context, chatID, viewerID string) error {
	_, err := r.s.messages.UpdateMany(ctx,
		bson.M{"chat_id": chatID},
		bson.M{"$addToSet": bson.M{"seen_by": viewerID}},
	)
	return wrapErr("mark seen "+chatID, err)
}
