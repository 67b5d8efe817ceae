// site.go - Defines the singleton site configuration row

package models

import "time"

// SiteInfoID is the primary key of the only SiteInfo row.
const SiteInfoID = 1

type SiteInfo struct {
	ID                  uint     `gorm:"primaryKey"`
	SiteName            string   `gorm:"size:100"`
	SiteDescription     string   `gorm:"size:255"`
	SiteAvatar          string   `gorm:"size:500"`
	SiteAuthor          string   `gorm:"size:50"`
	ContactEmail        string   `gorm:"size:100"`
	HeroTitle           string   `gorm:"size:100"`
	HeroBgImage         string   `gorm:"size:500"`
	HeroSentences       []string `gorm:"serializer:json"`
	ShowNotice          bool
	NoticeText          string   `gorm:"type:text"`
	AboutContent        string   `gorm:"type:text"`
	MessageBoardBanners []string `gorm:"serializer:json"`
	UpdatedAt           time.Time
}
