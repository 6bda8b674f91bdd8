package domain

import "time"

// Expiry is a tagged expiration for a grant (VIP access, a badge). A grant
// either never expires or expires at a concrete instant. The zero value is an
// already-expired grant, so an absent map entry and a zero Expiry both read as
// "not granted".
type Expiry struct {
	Never bool      `bson:"never,omitempty" json:"never,omitempty"`
	At    time.Time `bson:"at,omitempty" json:"at,omitempty"`
}

// Forever returns an expiry for a lifetime grant.
func Forever() Expiry { return Expiry{Never: true} }

// Until returns an expiry at the given instant.
func Until(t time.Time) Expiry { return Expiry{At: t.UTC()} }

// AfterDays returns an expiry durationDays from now, or a lifetime grant when
// durationDays is zero or negative.
func AfterDays(now time.Time, durationDays int) Expiry {
	if durationDays <= 0 {
		return Forever()
	}
	return Until(now.Add(time.Duration(durationDays) * 24 * time.Hour))
}

// Expired reports whether the grant has lapsed at the given instant.
func (e Expiry) Expired(now time.Time) bool {
	if e.Never {
		return false
	}
	return !e.At.After(now)
}
