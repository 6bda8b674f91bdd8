package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/Abdulkaium05/echo-backend/internal/domain"
)

type promoRepo struct{ s *Store }

func (r *promoRepo) Create(ctx context.Context, p *domain.PromoCode) error {
	defer r.s.lock(ctx)()
	if _, ok := r.s.promos[p.Code]; ok {
		return fmt.Errorf("code %s: %w", p.Code, domain.ErrConflict)
	}
	cp := p.Clone()
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now().UTC()
	}
	r.s.promos[p.Code] = cp
	return nil
}

func (r *promoRepo) GetByCode(ctx context.Context, code string) (*domain.PromoCode, error) {
	defer r.s.lock(ctx)()
	p, ok := r.s.promos[code]
	if !ok {
		return nil, fmt.Errorf("code %s: %w", code, domain.ErrNotFound)
	}
	return p.Clone(), nil
}

func (r *promoRepo) Claim(ctx context.Context, code string, version int64, userID string) error {
	defer r.s.lock(ctx)()
	p, ok := r.s.promos[code]
	if !ok {
		return fmt.Errorf("code %s: %w", code, domain.ErrNotFound)
	}
	if p.Version != version {
		return fmt.Errorf("code %s version %d: %w", code, version, domain.ErrConflict)
	}
	if p.ClaimedBy == nil {
		p.ClaimedBy = make(map[string]int)
	}
	p.ClaimedBy[userID]++
	p.Version++
	return nil
}
