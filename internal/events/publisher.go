// Package events publishes domain events for downstream consumers
// (notification delivery, analytics). Publishing is best-effort: a failed
// publish is logged, never allowed to fail the command that produced it.
package events

import (
	"context"
	"encoding/json"
	"time"
)

// Event types emitted by the core.
const (
	TypeChatCreated     = "chat.created"
	TypeMessageSent     = "message.sent"
	TypeMessageDeleted  = "message.deleted"
	TypeReactionToggled = "reaction.toggled"
	TypeCodeRedeemed    = "code.redeemed"
	TypeGiftSent        = "gift.sent"
	TypeProfileUpdated  = "profile.updated"
)

// Envelope is the wire form of an event.
type Envelope struct {
	Type    string          `json:"type"`
	At      time.Time       `json:"at"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Publisher emits events to the event bus.
type Publisher interface {
	Publish(ctx context.Context, eventType string, payload any) error
	Close() error
}

// Nop discards events; used by tests and broker-less deployments.
type Nop struct{}

func (Nop) Publish(context.Context, string, any) error { return nil }
func (Nop) Close() error                               { return nil }
