package memory

import (
	"context"
	"time"

	"github.com/Abdulkaium05/echo-backend/internal/domain"
)

type giftRepo struct{ s *Store }

func (r *giftRepo) Append(ctx context.Context, g *domain.Gift) error {
	defer r.s.lock(ctx)()
	cp := *g
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now().UTC()
	}
	r.s.gifts = append(r.s.gifts, &cp)
	return nil
}

func (r *giftRepo) ListForUser(ctx context.Context, userID string) ([]*domain.Gift, error) {
	defer r.s.lock(ctx)()
	var out []*domain.Gift
	for _, g := range r.s.gifts {
		if g.SenderID == userID || g.ReceiverID == userID {
			cp := *g
			out = append(out, &cp)
		}
	}
	return out, nil
}
