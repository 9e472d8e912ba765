package model

import "time"

// DateLayout is the wire format for entry dates: an ISO calendar date
// with no time component.
const DateLayout = "2006-01-02"

// Entry represents a single diary record owned by exactly one user.
// Only the owner may mutate or delete an entry; ownership is enforced in
// the service layer by comparing the authenticated identity to UserID,
// not by a database constraint.
type Entry struct {
	ID         uint      `gorm:"primaryKey"`
	Title      string    `gorm:"size:100;not null"`
	Content    string    `gorm:"type:text;not null"`
	Mood       string    `gorm:"size:50"`
	Date       time.Time `gorm:"type:date;not null"`
	UserID     uint      `gorm:"index;not null"`
	CategoryID *uint     `gorm:"index"`
	ImagePath  string    `gorm:"size:255"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// DateString renders the entry date in the form-field format.
func (e *Entry) DateString() string {
	return e.Date.Format(DateLayout)
}
