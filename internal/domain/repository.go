package domain

import (
	"context"
	"time"
)

// UserRepository defines persistence operations for user profiles.
type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	// GetMany returns the found users keyed by id; absent ids are simply
	// missing from the map.
	GetMany(ctx context.Context, ids []string) (map[string]*User, error)
	// Update commits u conditionally on its Version and increments it.
	// Returns ErrConflict when another writer got there first.
	Update(ctx context.Context, u *User) error
	Deactivate(ctx context.Context, id string) error
}

// ChatRepository defines persistence operations for the chat directory.
type ChatRepository interface {
	// Insert fails with ErrConflict when a chat with the same pair key
	// already exists.
	Insert(ctx context.Context, c *Chat) error
	GetByID(ctx context.Context, id string) (*Chat, error)
	FindByPairKey(ctx context.Context, pairKey string) (*Chat, error)
	ListForUser(ctx context.Context, userID string) ([]*Chat, error)
	// NextSeq atomically increments and returns the chat's log sequence.
	NextSeq(ctx context.Context, chatID string) (int64, error)
	SetLastMessage(ctx context.Context, chatID, snippet string, at time.Time) error
}

// MessageRepository defines persistence operations for the message log.
type MessageRepository interface {
	Insert(ctx context.Context, m *Message) error
	GetByID(ctx context.Context, chatID, messageID string) (*Message, error)
	// ListByChat returns the full log in ascending Seq order.
	ListByChat(ctx context.Context, chatID string) ([]*Message, error)
	// UpdateReactions commits the reaction map conditionally on version.
	// Returns ErrConflict on a version miss.
	UpdateReactions(ctx context.Context, chatID, messageID string, version int64, reactions map[string]Reaction) error
	// Tombstone clears text, attachment and reactions and sets IsDeleted.
	// Idempotent.
	Tombstone(ctx context.Context, chatID, messageID string) error
	// MarkSeen adds viewerID to the seen-by set of every message in the chat.
	// Idempotent; never removes ids.
	MarkSeen(ctx context.Context, chatID, viewerID string) error
}

// PromoRepository defines persistence operations for promo codes.
type PromoRepository interface {
	Create(ctx context.Context, p *PromoCode) error
	GetByCode(ctx context.Context, code string) (*PromoCode, error)
	// Claim increments the user's claim counter conditionally on version.
	// Returns ErrConflict on a version miss.
	Claim(ctx context.Context, code string, version int64, userID string) error
}

// GiftRepository appends immutable gift audit records.
type GiftRepository interface {
	Append(ctx context.Context, g *Gift) error
	ListForUser(ctx context.Context, userID string) ([]*Gift, error)
}

// Store aggregates the repositories over one backing document store.
type Store interface {
	Users() UserRepository
	Chats() ChatRepository
	Messages() MessageRepository
	Promos() PromoRepository
	Gifts() GiftRepository

	// WithTransaction runs fn so that every repository call made with the
	// context it receives commits atomically: all of them or none.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
