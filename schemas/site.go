// site.go - Request and response shapes for site settings, changelogs and resources

package schemas

import (
	"time"

	"go-blog-backend/models"
)

type SiteConfig struct {
	SiteName            string   `json:"site_name" binding:"required,max=100"`
	SiteDescription     string   `json:"site_description" binding:"omitempty,max=255"`
	SiteAvatar          string   `json:"site_avatar" binding:"omitempty,max=500"`
	SiteAuthor          string   `json:"site_author" binding:"omitempty,max=50"`
	ContactEmail        string   `json:"contact_email" binding:"omitempty,email,max=100"`
	HeroTitle           string   `json:"hero_title" binding:"omitempty,max=100"`
	HeroBgImage         string   `json:"hero_bg_image" binding:"omitempty,max=500"`
	HeroSentences       []string `json:"hero_sentences" binding:"omitempty,max=20,dive,max=200"`
	ShowNotice          bool     `json:"show_notice"`
	NoticeText          string   `json:"notice_text"`
	AboutContent        string   `json:"about_content"`
	MessageBoardBanners []string `json:"message_board_banners" binding:"omitempty,max=20,dive,max=500"`
}

// DefaultSiteConfig is served until an administrator saves settings.
func DefaultSiteConfig() SiteConfig {
	return SiteConfig{
		SiteName:            "My Blog",
		SiteDescription:     "Notes, code and everything in between",
		SiteAuthor:          "admin",
		HeroTitle:           "Welcome",
		HeroSentences:       []string{},
		MessageBoardBanners: []string{},
	}
}

func NewSiteConfig(s *models.SiteInfo) SiteConfig {
	cfg := SiteConfig{
		SiteName:            s.SiteName,
		SiteDescription:     s.SiteDescription,
		SiteAvatar:          s.SiteAvatar,
		SiteAuthor:          s.SiteAuthor,
		ContactEmail:        s.ContactEmail,
		HeroTitle:           s.HeroTitle,
		HeroBgImage:         s.HeroBgImage,
		HeroSentences:       s.HeroSentences,
		ShowNotice:          s.ShowNotice,
		NoticeText:          s.NoticeText,
		AboutContent:        s.AboutContent,
		MessageBoardBanners: s.MessageBoardBanners,
	}
	if cfg.HeroSentences == nil {
		cfg.HeroSentences = []string{}
	}
	if cfg.MessageBoardBanners == nil {
		cfg.MessageBoardBanners = []string{}
	}
	return cfg
}

// Model converts the request into the singleton row.
func (s SiteConfig) Model() *models.SiteInfo {
	return &models.SiteInfo{
		ID:                  models.SiteInfoID,
		SiteName:            s.SiteName,
		SiteDescription:     s.SiteDescription,
		SiteAvatar:          s.SiteAvatar,
		SiteAuthor:          s.SiteAuthor,
		ContactEmail:        s.ContactEmail,
		HeroTitle:           s.HeroTitle,
		HeroBgImage:         s.HeroBgImage,
		HeroSentences:       s.HeroSentences,
		ShowNotice:          s.ShowNotice,
		NoticeText:          s.NoticeText,
		AboutContent:        s.AboutContent,
		MessageBoardBanners: s.MessageBoardBanners,
	}
}

type SiteStats struct {
	ArticleCount  int64 `json:"article_count"`
	CategoryCount int64 `json:"category_count"`
	TagCount      int64 `json:"tag_count"`
	CommentCount  int64 `json:"comment_count"`
	ViewCount     int64 `json:"view_count"`
	RunDays       int   `json:"run_days"`
}

type ChangelogRequest struct {
	Version string `json:"version" binding:"omitempty,max=50"`
	Content string `json:"content" binding:"required"`
}

type ChangelogResponse struct {
	ID        uint      `json:"id"`
	Version   string    `json:"version"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func NewChangelogResponse(c *models.Changelog) ChangelogResponse {
	return ChangelogResponse{ID: c.ID, Version: c.Version, Content: c.Content, CreatedAt: c.CreatedAt}
}

type ResourceQuery struct {
	PageQuery
	Type string `form:"type" binding:"omitempty,oneof=image video audio other"`
}

type ResourceResponse struct {
	ID        uint      `json:"id"`
	Filename  string    `json:"filename"`
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	MediaType string    `json:"media_type"`
	MimeType  string    `json:"mime_type"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

func NewResourceResponse(r *models.Resource) ResourceResponse {
	return ResourceResponse{
		ID:        r.ID,
		Filename:  r.Filename,
		Key:       r.Key,
		URL:       r.URL,
		MediaType: r.MediaType,
		MimeType:  r.MimeType,
		Size:      r.Size,
		CreatedAt: r.CreatedAt,
	}
}
