package domain

import "time"

// CodeKind discriminates the promo code variants.
type CodeKind string

const (
	CodeVIP    CodeKind = "vip"    // grants VIP for DurationDays
	CodePoints CodeKind = "points" // grants Amount points, single claim per user
	CodeBadge  CodeKind = "badge"  // grants Badge for DurationDays
)

// PromoCode is a claim-bounded promotional code. The claim map and the profile
// effect always commit together; sum(ClaimedBy) never exceeds TotalUses.
type PromoCode struct {
	Code string   `bson:"_id" json:"code"`
	Kind CodeKind `bson:"kind" json:"kind"`

	// DurationDays bounds a VIP or badge grant; zero means lifetime.
	DurationDays int `bson:"duration_days,omitempty" json:"duration_days,omitempty"`

	// Amount is the points grant for CodePoints.
	Amount int64 `bson:"amount,omitempty" json:"amount,omitempty"`

	// Badge is the granted badge for CodeBadge.
	Badge BadgeType `bson:"badge,omitempty" json:"badge,omitempty"`

	TotalUses int `bson:"total_uses" json:"total_uses"`

	// UsesPerUser caps claims per user for VIP and badge codes; zero means
	// one. Points codes are always single-claim per user.
	UsesPerUser int `bson:"uses_per_user,omitempty" json:"uses_per_user,omitempty"`

	ClaimedBy map[string]int `bson:"claimed_by,omitempty" json:"claimed_by,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`

	// Version guards optimistic claim updates.
	Version int64 `bson:"version" json:"-"`
}

// TotalClaims returns the number of completed claims across all users.
func (p *PromoCode) TotalClaims() int {
	n := 0
	for _, c := range p.ClaimedBy {
		n += c
	}
	return n
}

// ClaimsBy returns how many times userID has claimed this code.
func (p *PromoCode) ClaimsBy(userID string) int { return p.ClaimedBy[userID] }

// PerUserCap returns the effective per-user claim limit.
func (p *PromoCode) PerUserCap() int {
	if p.Kind == CodePoints {
		return 1
	}
	if p.UsesPerUser <= 0 {
		return 1
	}
	return p.UsesPerUser
}

// Clone returns a deep copy.
func (p *PromoCode) Clone() *PromoCode {
	cp := *p
	if p.ClaimedBy != nil {
		cp.ClaimedBy = make(map[string]int, len(p.ClaimedBy))
		for k, v := range p.ClaimedBy {
			cp.ClaimedBy[k] = v
		}
	}
	return &cp
}
