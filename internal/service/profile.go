// Package service implements the messaging and entitlement core: profile
// store, chat directory, message log, reaction ledger, visibility filter,
// redemption engine.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Abdulkaium05/echo-backend/internal/domain"
	"github.com/Abdulkaium05/echo-backend/internal/events"
	"github.com/Abdulkaium05/echo-backend/internal/hub"
	"github.com/Abdulkaium05/echo-backend/internal/txn"
)

// ProfileService owns the canonical user profile and every entitlement
// mutation. Gifting and code redemption funnel through Apply so the invariants
// (non-negative points, bounded contact sets, valid badge order) are enforced
// in one place.
type ProfileService struct {
	store  domain.Store
	hub    *hub.Hub
	pub    events.Publisher
	policy txn.Policy
	log    *zap.SugaredLogger
	now    func() time.Time
}

func NewProfileService(store domain.Store, h *hub.Hub, pub events.Publisher, log *zap.SugaredLogger) *ProfileService {
	return &ProfileService{
		store:  store,
		hub:    h,
		pub:    pub,
		policy: txn.DefaultPolicy(),
		log:    log,
		now:    time.Now,
	}
}

// WithClock overrides the clock; used by tests.
func (s *ProfileService) WithClock(now func() time.Time) *ProfileService {
	s.now = now
	return s
}

// CreateProfile registers a new user.
func (s *ProfileService) CreateProfile(ctx context.Context, u *domain.User) error {
	if u.ID == "" || u.DisplayName == "" {
		return fmt.Errorf("id and display name are required: %w", domain.ErrInvalidInput)
	}
	if u.Points < 0 {
		return fmt.Errorf("negative points balance: %w", domain.ErrInvalidInput)
	}
	return s.store.Users().Create(ctx, u)
}

// GetProfile returns the user's profile.
func (s *ProfileService) GetProfile(ctx context.Context, uid string) (*domain.User, error) {
	return s.store.Users().GetByID(ctx, uid)
}

// UpdateProfile applies a partial update with the full retry discipline and
// notifies live chat-list streams, since entitlement changes can alter what
// the user is allowed to see.
func (s *ProfileService) UpdateProfile(ctx context.Context, uid string, upd domain.ProfileUpdate) (*domain.User, error) {
	var updated *domain.User
	err := txn.Do(ctx, s.policy, func(ctx context.Context) error {
		u, err := s.Apply(ctx, uid, upd)
		updated = u
		return err
	})
	if err != nil {
		return nil, err
	}
	s.notifyChatLists(ctx, uid)
	if err := s.pub.Publish(ctx, events.TypeProfileUpdated, updated); err != nil {
		s.log.Warnw("publish profile.updated", "user", uid, "err", err)
	}
	return updated, nil
}

// notifyChatLists wakes the user's own chat-list stream and every
// counterpart's. An entitlement or allow-list change on one profile can
// hide or reveal a chat on the other side of the pair.
func (s *ProfileService) notifyChatLists(ctx context.Context, uid string) {
	s.hub.Publish(hub.UserChatsTopic(uid))
	chats, err := s.store.Chats().ListForUser(ctx, uid)
	if err != nil {
		s.log.Warnw("list chats for notify", "user", uid, "err", err)
		return
	}
	for _, c := range chats {
		s.hub.Publish(hub.UserChatsTopic(c.OtherParticipant(uid)))
	}
}

// Apply performs one optimistic update attempt: read, validate, conditionally
// commit. Transactional callers (redemption, gifting) use it directly inside
// their own transaction and retry loop.
func (s *ProfileService) Apply(ctx context.Context, uid string, upd domain.ProfileUpdate) (*domain.User, error) {
	u, err := s.store.Users().GetByID(ctx, uid)
	if err != nil {
		return nil, err
	}

	if upd.DisplayName != nil {
		if *upd.DisplayName == "" {
			return nil, fmt.Errorf("display name cannot be empty: %w", domain.ErrInvalidInput)
		}
		u.DisplayName = *upd.DisplayName
	}
	if upd.AvatarURL != nil {
		u.AvatarURL = *upd.AvatarURL
	}
	if upd.IsVIP != nil {
		u.IsVIP = *upd.IsVIP
	}
	if upd.VIPExpiry != nil {
		u.VIPExpiry = *upd.VIPExpiry
	}
	if upd.PointsDelta != 0 {
		next := u.Points + upd.PointsDelta
		if next < 0 {
			return nil, fmt.Errorf("points balance cannot go negative: %w", domain.ErrInvalidInput)
		}
		u.Points = next
	}
	if len(upd.GrantBadges) > 0 {
		if u.Badges == nil {
			u.Badges = make(map[domain.BadgeType]domain.Expiry, len(upd.GrantBadges))
		}
		for b, exp := range upd.GrantBadges {
			if !domain.KnownBadge(b) {
				return nil, fmt.Errorf("unknown badge %q: %w", b, domain.ErrInvalidInput)
			}
			u.Badges[b] = exp
		}
	}
	if upd.BadgeOrder != nil {
		order := *upd.BadgeOrder
		if len(order) > domain.MaxBadgeOrder {
			return nil, fmt.Errorf("badge order holds at most %d badges: %w", domain.MaxBadgeOrder, domain.ErrInvalidInput)
		}
		for _, b := range order {
			if _, ok := u.Badges[b]; !ok {
				return nil, fmt.Errorf("badge %q not earned: %w", b, domain.ErrInvalidInput)
			}
		}
		u.BadgeOrder = order
	}
	if upd.SelectedVerifiedContacts != nil {
		sel := *upd.SelectedVerifiedContacts
		if len(sel) > domain.MaxSelectedVerifiedContacts {
			return nil, fmt.Errorf("at most %d selected contacts: %w", domain.MaxSelectedVerifiedContacts, domain.ErrInvalidInput)
		}
		u.SelectedVerifiedContacts = sel
	}
	if upd.AllowedNormalContacts != nil {
		u.AllowedNormalContacts = *upd.AllowedNormalContacts
	}

	if err := s.store.Users().Update(ctx, u); err != nil {
		return nil, err
	}
	u.Version++
	return u, nil
}

// Deactivate retires the account. The profile record is kept forever.
func (s *ProfileService) Deactivate(ctx context.Context, uid string) error {
	if err := s.store.Users().Deactivate(ctx, uid); err != nil {
		return err
	}
	s.notifyChatLists(ctx, uid)
	return nil
}

// GiftPoints atomically moves amount points from sender to receiver and
// appends the audit record. Insufficient balance is a business-rule rejection,
// not a partial transfer.
func (s *ProfileService) GiftPoints(ctx context.Context, senderID, receiverID string, amount int64) (*domain.Gift, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("gift amount must be positive: %w", domain.ErrInvalidInput)
	}
	if senderID == receiverID {
		return nil, fmt.Errorf("cannot gift yourself: %w", domain.ErrInvalidInput)
	}

	var gift *domain.Gift
	err := txn.Do(ctx, s.policy, func(ctx context.Context) error {
		return s.store.WithTransaction(ctx, func(ctx context.Context) error {
			sender, err := s.store.Users().GetByID(ctx, senderID)
			if err != nil {
				return err
			}
			if sender.Points < amount {
				return fmt.Errorf("insufficient points: %w", domain.ErrPermissionDenied)
			}
			if _, err := s.Apply(ctx, senderID, domain.ProfileUpdate{PointsDelta: -amount}); err != nil {
				return err
			}
			if _, err := s.Apply(ctx, receiverID, domain.ProfileUpdate{PointsDelta: amount}); err != nil {
				return err
			}
			gift = &domain.Gift{
				ID:         uuid.NewString(),
				Kind:       domain.GiftPoints,
				SenderID:   senderID,
				ReceiverID: receiverID,
				Points:     amount,
				CreatedAt:  s.now().UTC(),
			}
			return s.store.Gifts().Append(ctx, gift)
		})
	})
	if err != nil {
		return nil, err
	}
	if err := s.pub.Publish(ctx, events.TypeGiftSent, gift); err != nil {
		s.log.Warnw("publish gift.sent", "gift", gift.ID, "err", err)
	}
	return gift, nil
}

// GiftBadge grants the receiver a badge on behalf of the sender. Only holders
// of VIP-equivalent access may gift badges.
func (s *ProfileService) GiftBadge(ctx context.Context, senderID, receiverID string, badge domain.BadgeType, durationDays int) (*domain.Gift, error) {
	if !domain.KnownBadge(badge) {
		return nil, fmt.Errorf("unknown badge %q: %w", badge, domain.ErrInvalidInput)
	}
	if senderID == receiverID {
		return nil, fmt.Errorf("cannot gift yourself: %w", domain.ErrInvalidInput)
	}

	now := s.now().UTC()
	var gift *domain.Gift
	err := txn.Do(ctx, s.policy, func(ctx context.Context) error {
		return s.store.WithTransaction(ctx, func(ctx context.Context) error {
			sender, err := s.store.Users().GetByID(ctx, senderID)
			if err != nil {
				return err
			}
			if !sender.HasVIPAccess(now) {
				return fmt.Errorf("badge gifting requires VIP access: %w", domain.ErrPermissionDenied)
			}
			upd := domain.ProfileUpdate{
				GrantBadges: map[domain.BadgeType]domain.Expiry{badge: domain.AfterDays(now, durationDays)},
			}
			if _, err := s.Apply(ctx, receiverID, upd); err != nil {
				return err
			}
			gift = &domain.Gift{
				ID:           uuid.NewString(),
				Kind:         domain.GiftBadge,
				SenderID:     senderID,
				ReceiverID:   receiverID,
				Badge:        badge,
				DurationDays: durationDays,
				CreatedAt:    now,
			}
			return s.store.Gifts().Append(ctx, gift)
		})
	})
	if err != nil {
		return nil, err
	}
	s.hub.Publish(hub.UserChatsTopic(receiverID))
	if err := s.pub.Publish(ctx, events.TypeGiftSent, gift); err != nil {
		s.log.Warnw("publish gift.sent", "gift", gift.ID, "err", err)
	}
	return gift, nil
}

// ListGifts returns the user's gift history, sent and received.
func (s *ProfileService) ListGifts(ctx context.Context, uid string) ([]*domain.Gift, error) {
	return s.store.Gifts().ListForUser(ctx, uid)
}
