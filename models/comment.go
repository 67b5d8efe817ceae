// comment.go - Defines comments attached to articles, changelogs or the message board

package models

import "time"

// Content types a comment can be attached to.
const (
	ContentArticle      = "article"
	ContentChangelog    = "changelog"
	ContentMessageBoard = "message_board"
)

// Moderation states shared by comments and messages.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

type Comment struct {
	ID          uint      `gorm:"primaryKey"`
	Content     string    `gorm:"type:text;not null"`
	ContentType string    `gorm:"size:50;not null;default:'article';index:idx_comment_target"`
	ContentID   uint      `gorm:"not null;index:idx_comment_target"`
	UserID      uint      `gorm:"not null;index"`
	User        User      `gorm:"foreignKey:UserID"`
	ParentID    *uint     `gorm:"index"` // Nested reply
	ReplyToID   *uint     // User being replied to
	ReplyTo     *User     `gorm:"foreignKey:ReplyToID"`
	Status      string    `gorm:"size:20;not null;default:'approved';index"`
	LikeCount   int64     `gorm:"not null;default:0"`
	CreatedAt   time.Time `gorm:"index"`
	UpdatedAt   time.Time
}
