package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/Abdulkaium05/echo-backend/internal/domain"
)

type userRepo struct{ s *Store }

func (r *userRepo) Create(ctx context.Context, u *domain.User) error {
	defer r.s.lock(ctx)()
	if _, ok := r.s.users[u.ID]; ok {
		return fmt.Errorf("user %s: %w", u.ID, domain.ErrConflict)
	}
	cp := u.Clone()
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now().UTC()
	}
	cp.UpdatedAt = cp.CreatedAt
	r.s.users[u.ID] = cp
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	defer r.s.lock(ctx)()
	u, ok := r.s.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	return u.Clone(), nil
}

func (r *userRepo) GetMany(ctx context.Context, ids []string) (map[string]*domain.User, error) {
	defer r.s.lock(ctx)()
	out := make(map[string]*domain.User, len(ids))
	for _, id := range ids {
		if u, ok := r.s.users[id]; ok {
			out[id] = u.Clone()
		}
	}
	return out, nil
}

func (r *userRepo) Update(ctx context.Context, u *domain.User) error {
	defer r.s.lock(ctx)()
	cur, ok := r.s.users[u.ID]
	if !ok {
		return fmt.Errorf("user %s: %w", u.ID, domain.ErrNotFound)
	}
	if cur.Version != u.Version {
		return fmt.Errorf("user %s version %d: %w", u.ID, u.Version, domain.ErrConflict)
	}
	cp := u.Clone()
	cp.Version++
	cp.UpdatedAt = time.Now().UTC()
	r.s.users[u.ID] = cp
	return nil
}

func (r *userRepo) Deactivate(ctx context.Context, id string) error {
	defer r.s.lock(ctx)()
	u, ok := r.s.users[id]
	if !ok {
		return fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	u.Deactivated = true
	u.UpdatedAt = time.Now().UTC()
	return nil
}
