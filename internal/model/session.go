package model

import "time"

// Session binds a browser cookie token to an authenticated user.
// Rows are only used by the database-backed session store; the Redis
// store keeps tokens out of the relational schema entirely.
type Session struct {
	Token     string `gorm:"primaryKey;size:64"`
	UserID    uint   `gorm:"index;not null"`
	ExpiresAt time.Time
}

// Expired reports whether the session is past its lifetime.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
