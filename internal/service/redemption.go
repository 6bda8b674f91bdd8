package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Abdulkaium05/echo-backend/internal/domain"
	"github.com/Abdulkaium05/echo-backend/internal/events"
	"github.com/Abdulkaium05/echo-backend/internal/hub"
	"github.com/Abdulkaium05/echo-backend/internal/txn"
)

// RedemptionService applies claim-bounded promo codes to user profiles. The
// claim counter and the profile effect commit in one transaction; a counter
// bump without the grant (or the reverse) cannot be observed.
type RedemptionService struct {
	store    domain.Store
	profiles *ProfileService
	hub      *hub.Hub
	pub      events.Publisher
	policy   txn.Policy
	log      *zap.SugaredLogger
	now      func() time.Time
}

func NewRedemptionService(store domain.Store, profiles *ProfileService, h *hub.Hub, pub events.Publisher, log *zap.SugaredLogger) *RedemptionService {
	return &RedemptionService{
		store:    store,
		profiles: profiles,
		hub:      h,
		pub:      pub,
		policy:   txn.DefaultPolicy(),
		log:      log,
		now:      time.Now,
	}
}

// WithClock overrides the clock; used by tests.
func (s *RedemptionService) WithClock(now func() time.Time) *RedemptionService {
	s.now = now
	return s
}

// RedeemResult reports what a successful redemption granted.
type RedeemResult struct {
	Kind domain.CodeKind `json:"kind"`

	VIPGranted bool          `json:"vip_granted,omitempty"`
	VIPExpiry  domain.Expiry `json:"vip_expiry,omitempty"`

	PointsAdded int64 `json:"points_added,omitempty"`

	BadgeGranted domain.BadgeType `json:"badge_granted,omitempty"`
	BadgeExpiry  domain.Expiry    `json:"badge_expiry,omitempty"`
}

// Redeem claims the code for the user and applies its effect. Exhausted codes
// fail with ErrCodeExhausted, exceeded per-user caps with ErrPerUserLimit
// (points codes are single-claim per user), unknown codes with ErrNotFound.
func (s *RedemptionService) Redeem(ctx context.Context, userID, code string) (*RedeemResult, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("code is required: %w", domain.ErrInvalidInput)
	}

	var result *RedeemResult
	err := txn.Do(ctx, s.policy, func(ctx context.Context) error {
		return s.store.WithTransaction(ctx, func(ctx context.Context) error {
			pc, err := s.store.Promos().GetByCode(ctx, code)
			if err != nil {
				return err
			}
			if pc.TotalClaims() >= pc.TotalUses {
				return fmt.Errorf("code %s: %w", code, domain.ErrCodeExhausted)
			}
			if pc.ClaimsBy(userID) >= pc.PerUserCap() {
				return fmt.Errorf("code %s user %s: %w", code, userID, domain.ErrPerUserLimit)
			}
			if err := s.store.Promos().Claim(ctx, pc.Code, pc.Version, userID); err != nil {
				return err
			}
			upd, res := codeEffect(pc, s.now().UTC())
			if _, err := s.profiles.Apply(ctx, userID, upd); err != nil {
				return err
			}
			result = res
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	// VIP and badge grants can change which chats the user may see
	s.hub.Publish(hub.UserChatsTopic(userID))
	payload := map[string]any{"user_id": userID, "code": code, "kind": result.Kind}
	if err := s.pub.Publish(ctx, events.TypeCodeRedeemed, payload); err != nil {
		s.log.Warnw("publish code.redeemed", "code", code, "err", err)
	}
	return result, nil
}

func codeEffect(pc *domain.PromoCode, now time.Time) (domain.ProfileUpdate, *RedeemResult) {
	switch pc.Kind {
	case domain.CodeVIP:
		vip := true
		exp := domain.AfterDays(now, pc.DurationDays)
		return domain.ProfileUpdate{IsVIP: &vip, VIPExpiry: &exp},
			&RedeemResult{Kind: pc.Kind, VIPGranted: true, VIPExpiry: exp}
	case domain.CodePoints:
		return domain.ProfileUpdate{PointsDelta: pc.Amount},
			&RedeemResult{Kind: pc.Kind, PointsAdded: pc.Amount}
	default:
		exp := domain.AfterDays(now, pc.DurationDays)
		return domain.ProfileUpdate{GrantBadges: map[domain.BadgeType]domain.Expiry{pc.Badge: exp}},
			&RedeemResult{Kind: pc.Kind, BadgeGranted: pc.Badge, BadgeExpiry: exp}
	}
}

// CreateCode mints a new promo code. Operator surface; codes are immutable
// apart from their claim map once issued.
func (s *RedemptionService) CreateCode(ctx context.Context, pc *domain.PromoCode) error {
	pc.Code = strings.TrimSpace(pc.Code)
	if pc.Code == "" {
		return fmt.Errorf("code is required: %w", domain.ErrInvalidInput)
	}
	if pc.TotalUses <= 0 {
		return fmt.Errorf("total uses must be positive: %w", domain.ErrInvalidInput)
	}
	switch pc.Kind {
	case domain.CodeVIP:
	case domain.CodePoints:
		if pc.Amount <= 0 {
			return fmt.Errorf("points amount must be positive: %w", domain.ErrInvalidInput)
		}
	case domain.CodeBadge:
		if !domain.KnownBadge(pc.Badge) {
			return fmt.Errorf("unknown badge %q: %w", pc.Badge, domain.ErrInvalidInput)
		}
	default:
		return fmt.Errorf("unknown code kind %q: %w", pc.Kind, domain.ErrInvalidInput)
	}
	pc.ClaimedBy = nil
	pc.Version = 0
	return s.store.Promos().Create(ctx, pc)
}
