package domain

import "time"

// BadgeType identifies one of the earned profile badges.
type BadgeType string

const (
	BadgeVIP       BadgeType = "vip"
	BadgeVerified  BadgeType = "verified"
	BadgeCreator   BadgeType = "creator"
	BadgeDev       BadgeType = "dev"
	BadgeSupporter BadgeType = "supporter"
	BadgeFounder   BadgeType = "founder"
)

// KnownBadge reports whether b is one of the badge types the product issues.
func KnownBadge(b BadgeType) bool {
	switch b {
	case BadgeVIP, BadgeVerified, BadgeCreator, BadgeDev, BadgeSupporter, BadgeFounder:
		return true
	}
	return false
}

const (
	// MaxSelectedVerifiedContacts caps how many exclusive users a member can
	// pin into their selected-contacts set.
	MaxSelectedVerifiedContacts = 10

	// MaxBadgeOrder caps how many badges a profile renders next to the name.
	MaxBadgeOrder = 2
)

// User is the canonical per-user profile and entitlement record. Users are
// never deleted, only deactivated.
type User struct {
	ID          string `bson:"_id" json:"id"`
	DisplayName string `bson:"display_name" json:"display_name"`
	AvatarURL   string `bson:"avatar_url,omitempty" json:"avatar_url,omitempty"`

	IsVIP      bool `bson:"is_vip" json:"is_vip"`
	IsVerified bool `bson:"is_verified" json:"is_verified"`
	IsCreator  bool `bson:"is_creator" json:"is_creator"`
	IsDevTeam  bool `bson:"is_dev_team" json:"is_dev_team"`
	IsBot      bool `bson:"is_bot" json:"is_bot"`

	VIPExpiry Expiry               `bson:"vip_expiry,omitempty" json:"vip_expiry,omitempty"`
	Badges    map[BadgeType]Expiry `bson:"badges,omitempty" json:"badges,omitempty"`

	// BadgeOrder is the ordered subset of earned badges the user chose to
	// render (at most MaxBadgeOrder entries).
	BadgeOrder []BadgeType `bson:"badge_order,omitempty" json:"badge_order,omitempty"`

	Points int64 `bson:"points" json:"points"`

	// SelectedVerifiedContacts are exclusive users this user pinned; part of
	// the viewer-side condition for seeing an exclusive user's chat.
	SelectedVerifiedContacts []string `bson:"selected_verified_contacts,omitempty" json:"selected_verified_contacts,omitempty"`

	// AllowedNormalContacts are users this user explicitly granted access to
	// their chats, bypassing the viewer's own VIP requirement.
	AllowedNormalContacts []string `bson:"allowed_normal_contacts,omitempty" json:"allowed_normal_contacts,omitempty"`

	Deactivated bool      `bson:"deactivated" json:"deactivated"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`

	// Version guards optimistic profile updates.
	Version int64 `bson:"version" json:"-"`
}

// IsExclusive reports whether the user's chats are visibility-gated for
// non-exempt viewers.
func (u *User) IsExclusive() bool {
	return u.IsVerified || u.IsCreator || u.IsDevTeam
}

// HasVIPAccess reports whether the user holds VIP-equivalent access at the
// given instant: an unexpired VIP grant, or any exclusive flag.
func (u *User) HasVIPAccess(now time.Time) bool {
	if u.IsExclusive() {
		return true
	}
	return u.IsVIP && !u.VIPExpiry.Expired(now)
}

// HasBadge reports whether the user holds an unexpired badge of the given type.
func (u *User) HasBadge(b BadgeType, now time.Time) bool {
	exp, ok := u.Badges[b]
	return ok && !exp.Expired(now)
}

// HasSelected reports whether id is in the user's selected verified contacts.
func (u *User) HasSelected(id string) bool { return contains(u.SelectedVerifiedContacts, id) }

// HasAllowed reports whether the user explicitly allow-listed id.
func (u *User) HasAllowed(id string) bool { return contains(u.AllowedNormalContacts, id) }

func contains(set []string, id string) bool {
	for _, v := range set {
		if v == id {
			return true
		}
	}
	return false
}

// Clone returns a deep copy.
func (u *User) Clone() *User {
	cp := *u
	if u.Badges != nil {
		cp.Badges = make(map[BadgeType]Expiry, len(u.Badges))
		for k, v := range u.Badges {
			cp.Badges[k] = v
		}
	}
	cp.BadgeOrder = append([]BadgeType(nil), u.BadgeOrder...)
	cp.SelectedVerifiedContacts = append([]string(nil), u.SelectedVerifiedContacts...)
	cp.AllowedNormalContacts = append([]string(nil), u.AllowedNormalContacts...)
	return &cp
}

// ProfileUpdate is a partial profile mutation. Nil fields are left untouched.
// Every entitlement mutation in the system (profile edits, gifting, code
// redemption) is expressed as a ProfileUpdate so invariants are enforced in
// one place.
type ProfileUpdate struct {
	DisplayName *string
	AvatarURL   *string

	IsVIP     *bool
	VIPExpiry *Expiry

	// PointsDelta is added to the balance; the result must stay non-negative.
	PointsDelta int64

	// GrantBadges merges badge grants into the badge set.
	GrantBadges map[BadgeType]Expiry

	BadgeOrder               *[]BadgeType
	SelectedVerifiedContacts *[]string
	AllowedNormalContacts    *[]string
}
