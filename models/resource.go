// resource.go - Defines uploaded file metadata

package models

import "time"

type Resource struct {
	ID        uint   `gorm:"primaryKey"`
	Filename  string `gorm:"size:255;not null"`             // Original file name
	Key       string `gorm:"size:255;uniqueIndex;not null"` // Object key in storage
	URL       string `gorm:"size:500;not null"`
	MediaType string `gorm:"size:50;not null;index"` // image / video / audio / other
	MimeType  string `gorm:"size:100"`
	Size      int64
	UserID    *uint     `gorm:"index"`
	CreatedAt time.Time `gorm:"index"`
}
