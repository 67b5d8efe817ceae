// article.go - Defines articles, categories, tags and likes

package models

import "time"

type Category struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"size:50;uniqueIndex;not null"`
	Description string `gorm:"size:255"`
	SortOrder   int    `gorm:"not null;default:0"`
	CreatedAt   time.Time
}

// DefaultTagColor is used when a tag is created without a color.
const DefaultTagColor = "#3b82f6"

type Tag struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:50;uniqueIndex;not null"`
	Color     string `gorm:"size:20;default:'#3b82f6'"`
	CreatedAt time.Time
}

type Article struct {
	ID         uint      `gorm:"primaryKey"`
	Title      string    `gorm:"size:200;not null"`
	Slug       string    `gorm:"size:220;uniqueIndex;not null"`
	Summary    string    `gorm:"size:500"`
	Content    string    `gorm:"type:text;not null"`
	Cover      string    `gorm:"size:500"`
	AuthorID   uint      `gorm:"not null;index"`
	Author     User      `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;"`
	CategoryID *uint     `gorm:"index"` // Optional category
	Category   *Category `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;"`
	Tags       []Tag     `gorm:"many2many:article_tags;constraint:OnDelete:CASCADE;"`

	ViewCount    int64 `gorm:"not null;default:0"`
	LikeCount    int64 `gorm:"not null;default:0"`
	CommentCount int64 `gorm:"not null;default:0"` // approved comments only

	IsPublished bool `gorm:"not null;index"`
	IsTop       bool `gorm:"not null;default:false"`
	IsRecommend bool `gorm:"not null;default:false"`
	IsHidden    bool `gorm:"not null;default:false"` // reachable by link, never listed

	IsProtected        bool   `gorm:"not null;default:false"` // content gated behind a question
	ProtectionQuestion string `gorm:"size:255"`
	ProtectionAnswer   string `gorm:"size:255"`

	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
}

// ArticleLike records one like per user, or per IP for anonymous visitors.
type ArticleLike struct {
	ID        uint   `gorm:"primaryKey"`
	ArticleID uint   `gorm:"not null;index"`
	UserID    *uint  `gorm:"index"`
	IPAddress string `gorm:"size:50"`
	CreatedAt time.Time
}

type CommentLike struct {
	ID        uint   `gorm:"primaryKey"`
	CommentID uint   `gorm:"not null;index"`
	UserID    *uint  `gorm:"index"`
	IPAddress string `gorm:"size:50"`
	CreatedAt time.Time
}
