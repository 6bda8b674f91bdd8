package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/Abdulkaium05/echo-backend/internal/domain"
)

type promoRepo struct{ s *Store }

func (r *promoRepo) Create(ctx context.Context, p *domain.PromoCode) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	_, err := r.s.promos.InsertOne(ctx, p)
	return wrapErr("insert code", err)
}

func (r *promoRepo) GetByCode(ctx context.Context, code string) (*domain.PromoCode, error) {
	var p domain.PromoCode
	err := r.s.promos.FindOne(ctx, bson.M{"_id": code}).Decode(&p)
	if err != nil {
		return nil, wrapErr("get code", err)
	}
	return &p, nil
}

func (r *promoRepo) Claim(ctx context.Context, code string, version int64, userID string) error {
	res, err := r.s.promos.UpdateOne(ctx,
		bson.M{"_id": code, "version": version},
		bson.M{"$inc": bson.M{"claimed_by." + userID: 1, "version": 1}},
	)
	if err != nil {
		return wrapErr("claim code", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("code version %d: %w", version, domain.ErrConflict)
	}
	return nil
}
