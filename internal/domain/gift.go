package domain

import "time"

// GiftKind discriminates gift audit records.
type GiftKind string

const (
	GiftBadge  GiftKind = "badge"
	GiftPoints GiftKind = "points"
)

// Gift is an immutable audit record of a completed badge or points transfer.
// Appended once, never mutated.
type Gift struct {
	ID         string   `bson:"_id" json:"id"`
	Kind       GiftKind `bson:"kind" json:"kind"`
	SenderID   string   `bson:"sender_id" json:"sender_id"`
	ReceiverID string   `bson:"receiver_id" json:"receiver_id"`

	Badge        BadgeType `bson:"badge,omitempty" json:"badge,omitempty"`
	DurationDays int       `bson:"duration_days,omitempty" json:"duration_days,omitempty"`
	Points       int64     `bson:"points,omitempty" json:"points,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
