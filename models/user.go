// user.go - Defines the User model for the database

package models

import "time"

type User struct { // User struct represents an account in the database
	ID           uint      `gorm:"primaryKey"`
	Username     string    `gorm:"size:20;uniqueIndex;not null"`  // Login name (must be unique)
	Email        string    `gorm:"size:100;uniqueIndex;not null"` // User's email (must be unique)
	PasswordHash string    `gorm:"not null"`                      // bcrypt hash, never serialized
	Nickname     string    `gorm:"size:50"`                       // Display name
	Avatar       string    `gorm:"size:500"`
	Intro        string    `gorm:"size:500"`
	IsAdmin      bool      `gorm:"not null;default:false"` // Privilege flag
	IsActive     bool      `gorm:"not null"`               // false = soft-disabled
	CreatedAt    time.Time `gorm:"index"`
	UpdatedAt    time.Time
}

// DisplayName falls back to the username when no nickname is set.
func (u *User) DisplayName() string {
	if u.Nickname != "" {
		return u.Nickname
	}
	return u.Username
}
