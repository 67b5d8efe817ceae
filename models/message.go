// message.go - Defines guestbook messages

package models

import "time"

type Message struct {
	ID        uint      `gorm:"primaryKey"`
	Content   string    `gorm:"type:text;not null"`
	Nickname  string    `gorm:"size:50"`
	Email     string    `gorm:"size:100"`
	Avatar    string    `gorm:"size:500"`
	IPAddress string    `gorm:"size:50"`
	UserID    *uint     `gorm:"index"` // Set when the author was logged in
	ParentID  *uint     `gorm:"index"`
	Status    string    `gorm:"size:20;not null;default:'approved';index"`
	CreatedAt time.Time `gorm:"index"`
}
