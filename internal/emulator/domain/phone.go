package domain

import "time"

// PhoneSessionKind separates sessions opened by the federation API from those
// opened by the application backend, so neither can be redeemed at the other.
type PhoneSessionKind string

const (
	PhoneSessionFederation PhoneSessionKind = "federation"
	PhoneSessionBackend    PhoneSessionKind = "backend"
)

// PhoneSession is a pending SMS verification. Clients only ever see the
// opaque session token; the store keys the row by its fingerprint.
type PhoneSession struct {
	ID          string
	TokenHash   string
	Kind        PhoneSessionKind
	PhoneNumber string
	Secret      string // base32 TOTP secret the code is derived from
	Attempts    int
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

// Expired reports whether the session can no longer be confirmed.
func (s *PhoneSession) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
