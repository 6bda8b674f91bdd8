package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abdulkaium05/echo-backend/internal/domain"
)

func TestRedeemVIPCode(t *testing.T) {
	e := newEnv(t)
	e.seedUser(t, &domain.User{ID: "alice"})
	ctx := context.Background()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	e.redemption.WithClock(func() time.Time { return now })

	require.NoError(t, e.redemption.CreateCode(ctx, &domain.PromoCode{
		Code: "VIP30", Kind: domain.CodeVIP, DurationDays: 30, TotalUses: 5,
	}))

	res, err := e.redemption.Redeem(ctx, "alice", "VIP30")
	require.NoError(t, err)
	assert.True(t, res.VIPGranted)
	assert.Equal(t, domain.Until(now.Add(30*24*time.Hour)), res.VIPExpiry)

	u, err := e.profiles.GetProfile(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, u.IsVIP)
	assert.True(t, u.HasVIPAccess(now))
	assert.False(t, u.HasVIPAccess(now.Add(31*24*time.Hour)), "grant lapses after 30 days")
}

func TestRedeemPointsCode(t *testing.T) {
	e := newEnv(t)
	e.seedUser(t, &domain.User{ID: "alice", Points: 100})
	ctx := context.Background()

	require.NoError(t, e.redemption.CreateCode(ctx, &domain.PromoCode{
		Code: "P500", Kind: domain.CodePoints, Amount: 500, TotalUses: 10, UsesPerUser: 3,
	}))

	res, err := e.redemption.Redeem(ctx, "alice", "P500")
	require.NoError(t, err)
	assert.Equal(t, int64(500), res.PointsAdded)

	u, err := e.profiles.GetProfile(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(600), u.Points)

	// points codes are single-claim per user no matter what the code says
	_, err = e.redemption.Redeem(ctx, "alice", "P500")
	assert.ErrorIs(t, err, domain.ErrPerUserLimit)

	u, err = e.profiles.GetProfile(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(600), u.Points, "rejected claim must not move the balance")
}

func TestRedeemBadgeCode(t *testing.T) {
	e := newEnv(t)
	e.seedUser(t, &domain.User{ID: "alice"})
	ctx := context.Background()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	e.redemption.WithClock(func() time.Time { return now })

	require.NoError(t, e.redemption.CreateCode(ctx, &domain.PromoCode{
		Code: "FOUNDER", Kind: domain.CodeBadge, Badge: domain.BadgeFounder, TotalUses: 100,
	}))

	res, err := e.redemption.Redeem(ctx, "alice", "FOUNDER")
	require.NoError(t, err)
	assert.Equal(t, domain.BadgeFounder, res.BadgeGranted)
	assert.Equal(t, domain.Forever(), res.BadgeExpiry, "zero duration means lifetime")

	u, err := e.profiles.GetProfile(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, u.HasBadge(domain.BadgeFounder, now.Add(365*24*time.Hour)))
}

func TestRedeemErrors(t *testing.T) {
	e := newEnv(t)
	e.seedUser(t, &domain.User{ID: "alice"})
	e.seedUser(t, &domain.User{ID: "bob"})
	ctx := context.Background()

	t.Run("unknown code", func(t *testing.T) {
		_, err := e.redemption.Redeem(ctx, "alice", "NOPE")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("blank code", func(t *testing.T) {
		_, err := e.redemption.Redeem(ctx, "alice", "   ")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("exhausted code", func(t *testing.T) {
		require.NoError(t, e.redemption.CreateCode(ctx, &domain.PromoCode{
			Code: "ONE", Kind: domain.CodeVIP, TotalUses: 1,
		}))
		_, err := e.redemption.Redeem(ctx, "alice", "ONE")
		require.NoError(t, err)

		_, err = e.redemption.Redeem(ctx, "bob", "ONE")
		assert.ErrorIs(t, err, domain.ErrCodeExhausted)
	})

	t.Run("per-user cap before exhaustion", func(t *testing.T) {
		require.NoError(t, e.redemption.CreateCode(ctx, &domain.PromoCode{
			Code: "CAPPED", Kind: domain.CodeVIP, DurationDays: 7, TotalUses: 10, UsesPerUser: 2,
		}))
		_, err := e.redemption.Redeem(ctx, "alice", "CAPPED")
		require.NoError(t, err)
		_, err = e.redemption.Redeem(ctx, "alice", "CAPPED")
		require.NoError(t, err)
		_, err = e.redemption.Redeem(ctx, "alice", "CAPPED")
		assert.ErrorIs(t, err, domain.ErrPerUserLimit)
	})
}

func TestCreateCodeValidation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	cases := []struct {
		name string
		code domain.PromoCode
	}{
		{"blank code", domain.PromoCode{Kind: domain.CodeVIP, TotalUses: 1}},
		{"zero uses", domain.PromoCode{Code: "X", Kind: domain.CodeVIP}},
		{"points without amount", domain.PromoCode{Code: "X", Kind: domain.CodePoints, TotalUses: 1}},
		{"badge without badge", domain.PromoCode{Code: "X", Kind: domain.CodeBadge, TotalUses: 1}},
		{"unknown kind", domain.PromoCode{Code: "X", Kind: "mystery", TotalUses: 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := e.redemption.CreateCode(ctx, &tc.code)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}

	t.Run("duplicate code", func(t *testing.T) {
		pc := domain.PromoCode{Code: "DUP", Kind: domain.CodeVIP, TotalUses: 1}
		require.NoError(t, e.redemption.CreateCode(ctx, &pc))
		err := e.redemption.CreateCode(ctx, &pc)
		assert.Error(t, err)
	})
}

// Many users racing for a code with TotalUses=N: exactly N redemptions
// succeed, every success is reflected in a profile, and the claim map sums
// to N.
func TestRedeemConcurrentClaimBound(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	const users = 12
	const totalUses = 5
	ids := make([]string, users)
	for i := range ids {
		ids[i] = fmt.Sprintf("user-%d", i)
		e.seedUser(t, &domain.User{ID: ids[i]})
	}
	require.NoError(t, e.redemption.CreateCode(ctx, &domain.PromoCode{
		Code: "RACE", Kind: domain.CodePoints, Amount: 50, TotalUses: totalUses,
	}))

	var wg sync.WaitGroup
	won := make([]bool, users)
	fails := make([]error, users)
	for i, uid := range ids {
		wg.Add(1)
		go func(i int, uid string) {
			defer wg.Done()
			switch _, err := e.redemption.Redeem(ctx, uid, "RACE"); {
			case err == nil:
				won[i] = true
			case errors.Is(err, domain.ErrCodeExhausted), errors.Is(err, domain.ErrContention):
			default:
				fails[i] = err
			}
		}(i, uid)
	}
	wg.Wait()
	for _, err := range fails {
		require.NoError(t, err)
	}

	winners := 0
	for i, w := range won {
		u, err := e.profiles.GetProfile(ctx, ids[i])
		require.NoError(t, err)
		if w {
			winners++
			assert.Equal(t, int64(50), u.Points, "winner %s must hold the grant", ids[i])
		} else {
			assert.Zero(t, u.Points, "loser %s must hold nothing", ids[i])
		}
	}
	assert.LessOrEqual(t, winners, totalUses)

	pc, err := e.store.Promos().GetByCode(ctx, "RACE")
	require.NoError(t, err)
	assert.Equal(t, winners, pc.TotalClaims(), "claim map must match successful redemptions exactly")
	assert.LessOrEqual(t, pc.TotalClaims(), totalUses)
}
