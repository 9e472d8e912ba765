// Package model defines domain entities for the application.
package model

import "time"

// User represents a registered diary owner.
// Users are created at registration and never updated or deleted in-app.
type User struct {
	ID           uint   `gorm:"primaryKey"`
	Username     string `gorm:"size:50;uniqueIndex;not null"`
	Email        string `gorm:"size:120;uniqueIndex;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	CreatedAt    time.Time
}
