// Package presence tracks last-activity timestamps and derives the online
// status shown next to a user. Last-write-wins; no stronger guarantee.
package presence

import (
	"context"
	"fmt"
	"time"
)

// OnlineWindow is how recently a user must have been active to count as
// online.
const OnlineWindow = 5 * time.Minute

// Store persists last-activity instants.
type Store interface {
	Touch(ctx context.Context, userID string, at time.Time) error
	// LastActive returns the zero time for a user never seen.
	LastActive(ctx context.Context, userID string) (time.Time, error)
}

// Status is a pure projection of elapsed time since the last touch.
type Status struct {
	Online     bool      `json:"online"`
	LastActive time.Time `json:"last_active,omitempty"`
}

// Label renders the status the way the chat list shows it.
func (s Status) Label(now time.Time) string {
	if s.Online {
		return "Online"
	}
	if s.LastActive.IsZero() {
		return "Offline"
	}
	d := now.Sub(s.LastActive)
	switch {
	case d < time.Hour:
		return fmt.Sprintf("Active %dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("Active %dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("Active %dd ago", int(d.Hours()/24))
	}
}

// Tracker computes statuses over a Store.
type Tracker struct {
	store Store
	now   func() time.Time
}

func NewTracker(store Store) *Tracker {
	return &Tracker{store: store, now: time.Now}
}

// WithClock overrides the clock; used by tests.
func (t *Tracker) WithClock(now func() time.Time) *Tracker {
	t.now = now
	return t
}

// Touch records activity for the user.
func (t *Tracker) Touch(ctx context.Context, userID string) error {
	return t.store.Touch(ctx, userID, t.now().UTC())
}

// Status derives the user's current status.
func (t *Tracker) Status(ctx context.Context, userID string) (Status, error) {
	last, err := t.store.LastActive(ctx, userID)
	if err != nil {
		return Status{}, err
	}
	if last.IsZero() {
		return Status{}, nil
	}
	return Status{
		Online:     t.now().Sub(last) <= OnlineWindow,
		LastActive: last,
	}, nil
}
