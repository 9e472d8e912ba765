package model

import "time"

// Category is a shared, non-exclusive label applicable to many entries.
// Categories are never updated or deleted; duplicates by name are permitted.
type Category struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"size:50;not null"`
	Description string `gorm:"type:text"`
	CreatedAt   time.Time
	Entries     []Entry `gorm:"foreignKey:CategoryID"`
}
