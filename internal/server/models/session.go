package models

import "time"

// Session binds a browser to a user between requests. Flashes holds
// one-shot messages queued for the next read; draining them is
// destructive and preserves insertion order.
type Session struct {
	ID        string
	UserID    int64
	Flashes   []string
	ExpiresAt time.Time
	CreatedAt time.Time
}

func (s *Session) Expired(now time.Time) bool {
	return s.ExpiresAt.Before(now)
}
