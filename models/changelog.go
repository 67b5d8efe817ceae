package models

import "time"

// Changelog is one entry of the site build log.
type Changelog struct {
	ID        uint      `gorm:"primaryKey"`
	Version   string    `gorm:"size:50"`
	Content   string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"index"`
}
