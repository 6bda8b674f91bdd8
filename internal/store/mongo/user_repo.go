package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/Abdulkaium05/echo-backend/internal/domain"
)

type userRepo struct{ s *Store }

func (r *userRepo) Create(ctx context.Context, u *domain.User) error {
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	_, err := r.s.users.InsertOne(ctx, u)
	return wrapErr("insert user", err)
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	err := r.s.users.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if err != nil {
		return nil, wrapErr("get user "+id, err)
	}
	return &u, nil
}

func (r *userRepo) GetMany(ctx context.Context, ids []string) (map[string]*domain.User, error) {
	cursor, err := r.s.users.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, wrapErr("find users", err)
	}
	var users []*domain.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, wrapErr("decode users", err)
	}
	out := make(map[string]*domain.User, len(users))
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}

func (r *userRepo) Update(ctx context.Context, u *domain.User) error {
	cp := *u
	cp.Version = u.Version + 1
	cp.UpdatedAt = time.Now().UTC()
	res, err := r.s.users.ReplaceOne(ctx, bson.M{"_id": u.ID, "version": u.Version}, &cp)
	if err != nil {
		return wrapErr("update user "+u.ID, err)
	}
	// a zero match is either a lost version race or a missing user; the
	// retry loop re-reads and terminates on NotFound
	if res.MatchedCount == 0 {
		return fmt.Errorf("user %s version %d: %w", u.ID, u.Version, domain.ErrConflict)
	}
	return nil
}

func (r *userRepo) Deactivate(ctx context.Context, id string) error {
	res, err := r.s.users.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"deactivated": true, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return wrapErr("deactivate user "+id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
