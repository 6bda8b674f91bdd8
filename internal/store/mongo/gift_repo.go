package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Abdulkaium05/echo-backend/internal/domain"
)

type giftRepo struct{ s *Store }

func (r *giftRepo) Append(ctx context.Context, g *domain.Gift) error {
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now().UTC()
	}
	_, err := r.s.gifts.InsertOne(ctx, g)
	return wrapErr("insert gift", err)
}

func (r *giftRepo) ListForUser(ctx context.Context, userID string) ([]*domain.Gift, error) {
	filter := bson.M{"$or": []bson.M{{"sender_id": userID}, {"receiver_id": userID}}}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.s.gifts.Find(ctx, filter, opts)
	if err != nil {
		return nil, wrapErr("list gifts", err)
	}
	var gifts []*domain.Gift
	if err := cursor.All(ctx, &gifts); err != nil {
		return nil, wrapErr("decode gifts", err)
	}
	return gifts, nil
}
