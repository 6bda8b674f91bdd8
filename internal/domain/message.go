package domain

import "time"

// AttachmentType classifies a message attachment.
type AttachmentType string

const (
	AttachmentImage    AttachmentType = "image"
	AttachmentVideo    AttachmentType = "video"
	AttachmentAudio    AttachmentType = "audio"
	AttachmentDocument AttachmentType = "document"
)

// Attachment describes a media attachment. The bytes themselves live in an
// external media service; only the descriptor is stored here.
type Attachment struct {
	Type        AttachmentType `bson:"type" json:"type"`
	Name        string         `bson:"name,omitempty" json:"name,omitempty"`
	DurationSec int            `bson:"duration_sec,omitempty" json:"duration_sec,omitempty"` // audio only
}

// ReplyRef points at the message being replied to. The snippet is captured at
// reply time and never updated, even if the target changes afterwards.
type ReplyRef struct {
	MessageID string `bson:"message_id" json:"message_id"`
	SenderID  string `bson:"sender_id" json:"sender_id"`
	Snippet   string `bson:"snippet" json:"snippet"`
}

// Reaction aggregates one emoji's reactions on a message. Count always equals
// len(UserIDs).
type Reaction struct {
	Count   int      `bson:"count" json:"count"`
	UserIDs []string `bson:"user_ids" json:"user_ids"`
}

// Message is one entry in a chat's append-only log. Deletion is a tombstone
// mutation: content is cleared and IsDeleted set, the entry keeps its identity
// and position.
type Message struct {
	ID       string `bson:"_id" json:"id"`
	ChatID   string `bson:"chat_id" json:"chat_id"`
	SenderID string `bson:"sender_id" json:"sender_id"`

	Text       string      `bson:"text,omitempty" json:"text,omitempty"`
	Attachment *Attachment `bson:"attachment,omitempty" json:"attachment,omitempty"`
	ReplyTo    *ReplyRef   `bson:"reply_to,omitempty" json:"reply_to,omitempty"`

	// Reactions maps emoji to its aggregate. A user id appears in at most one
	// emoji's set per message.
	Reactions map[string]Reaction `bson:"reactions,omitempty" json:"reactions,omitempty"`

	SeenBy    []string `bson:"seen_by,omitempty" json:"seen_by,omitempty"`
	IsDeleted bool     `bson:"is_deleted" json:"is_deleted"`

	// Seq is the log-assigned position, strictly increasing per chat and
	// never reassigned. Timestamp records when the log accepted the message.
	Seq       int64     `bson:"seq" json:"seq"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`

	// Version guards optimistic reaction updates.
	Version int64 `bson:"version" json:"-"`
}

const snippetLimit = 80

// Snippet returns the short text used for chat summaries and reply previews.
func (m *Message) Snippet() string {
	if m.IsDeleted {
		return "Message deleted"
	}
	if m.Text != "" {
		r := []rune(m.Text)
		if len(r) > snippetLimit {
			return string(r[:snippetLimit]) + "…"
		}
		return m.Text
	}
	if m.Attachment != nil {
		switch m.Attachment.Type {
		case AttachmentImage:
			return "📷 Photo"
		case AttachmentVideo:
			return "🎬 Video"
		case AttachmentAudio:
			return "🎤 Voice message"
		default:
			return "📄 " + m.Attachment.Name
		}
	}
	return ""
}

// ReactedEmoji returns the emoji the user currently reacted with, if any.
func (m *Message) ReactedEmoji(userID string) (string, bool) {
	for emoji, r := range m.Reactions {
		if contains(r.UserIDs, userID) {
			return emoji, true
		}
	}
	return "", false
}

// HasSeen reports whether the viewer is in the seen-by set.
func (m *Message) HasSeen(viewerID string) bool { return contains(m.SeenBy, viewerID) }

// Clone returns a deep copy.
func (m *Message) Clone() *Message {
	cp := *m
	if m.Attachment != nil {
		a := *m.Attachment
		cp.Attachment = &a
	}
	if m.ReplyTo != nil {
		r := *m.ReplyTo
		cp.ReplyTo = &r
	}
	cp.Reactions = CloneReactions(m.Reactions)
	cp.SeenBy = append([]string(nil), m.SeenBy...)
	return &cp
}

// CloneReactions deep-copies a reaction map.
func CloneReactions(in map[string]Reaction) map[string]Reaction {
	if in == nil {
		return nil
	}
	out := make(map[string]Reaction, len(in))
	for emoji, r := range in {
		out[emoji] = Reaction{Count: r.Count, UserIDs: append([]string(nil), r.UserIDs...)}
	}
	return out
}
