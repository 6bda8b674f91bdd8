package domain

import "time"

// Chat is the single canonical conversation between two users. The sorted
// participant pair doubles as a uniqueness key so a pair maps to at most one
// chat. Chats are created lazily on first contact and never deleted.
type Chat struct {
	ID string `bson:"_id" json:"id"`

	// PairKey is the canonical "<minID>:<maxID>" form of the participant
	// pair; a unique index on it enforces one chat per pair.
	PairKey      string   `bson:"pair_key" json:"-"`
	Participants []string `bson:"participants" json:"participants"`

	// LastMessage / LastMessageAt are denormalized from the message log for
	// cheap listing; updated in the same transaction as each append.
	LastMessage   string    `bson:"last_message" json:"last_message"`
	LastMessageAt time.Time `bson:"last_message_at" json:"last_message_at"`

	// MsgSeq is the per-chat log sequence counter; the log order of messages.
	MsgSeq int64 `bson:"msg_seq" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// ChatPairKey returns the canonical key for an unordered user pair.
func ChatPairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + ":" + b
}

// SortedPair returns the pair in canonical order.
func SortedPair(a, b string) []string {
	if b < a {
		a, b = b, a
	}
	return []string{a, b}
}

// HasParticipant reports whether id takes part in the chat.
func (c *Chat) HasParticipant(id string) bool { return contains(c.Participants, id) }

// OtherParticipant returns the participant that is not viewer, or "" if the
// viewer is not a participant.
func (c *Chat) OtherParticipant(viewer string) string {
	for _, p := range c.Participants {
		if p != viewer {
			return p
		}
	}
	return ""
}

// Clone returns a deep copy.
func (c *Chat) Clone() *Chat {
	cp := *c
	cp.Participants = append([]string(nil), c.Participants...)
	return &cp
}

// ChatSummary is the per-viewer listing projection of a chat.
type ChatSummary struct {
	ChatID        string    `json:"chat_id"`
	OtherID       string    `json:"other_id"`
	LastMessage   string    `json:"last_message"`
	LastMessageAt time.Time `json:"last_message_at"`
}
