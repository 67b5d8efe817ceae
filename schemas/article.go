// article.go - Request and response shapes for articles

package schemas

import (
	"time"

	"go-blog-backend/models"
)

type ArticleCreateRequest struct {
	Title              string `json:"title" binding:"required,max=200"`
	Slug               string `json:"slug" binding:"omitempty,max=220,slug"`
	Summary            string `json:"summary" binding:"omitempty,max=500"`
	Content            string `json:"content" binding:"required"`
	Cover              string `json:"cover" binding:"omitempty,max=500"`
	CategoryID         *uint  `json:"category_id" binding:"omitempty,min=1"`
	TagIDs             []uint `json:"tag_ids" binding:"omitempty,max=20,dive,min=1"`
	IsPublished        *bool  `json:"is_published"` // defaults to true
	IsTop              bool   `json:"is_top"`
	IsRecommend        bool   `json:"is_recommend"`
	IsHidden           bool   `json:"is_hidden"`
	IsProtected        bool   `json:"is_protected"`
	ProtectionQuestion string `json:"protection_question" binding:"required_if=IsProtected true,max=255"`
	ProtectionAnswer   string `json:"protection_answer" binding:"required_if=IsProtected true,max=255"`
}

// ArticleUpdateRequest only touches the fields that are present.
// A category_id of 0 detaches the article from its category.
type ArticleUpdateRequest struct {
	Title              *string `json:"title" binding:"omitempty,min=1,max=200"`
	Slug               *string `json:"slug" binding:"omitempty,max=220,slug"`
	Summary            *string `json:"summary" binding:"omitempty,max=500"`
	Content            *string `json:"content" binding:"omitempty,min=1"`
	Cover              *string `json:"cover" binding:"omitempty,max=500"`
	CategoryID         *uint   `json:"category_id"`
	TagIDs             *[]uint `json:"tag_ids" binding:"omitempty,max=20,dive,min=1"`
	IsPublished        *bool   `json:"is_published"`
	IsTop              *bool   `json:"is_top"`
	IsRecommend        *bool   `json:"is_recommend"`
	IsHidden           *bool   `json:"is_hidden"`
	IsProtected        *bool   `json:"is_protected"`
	ProtectionQuestion *string `json:"protection_question" binding:"omitempty,max=255"`
	ProtectionAnswer   *string `json:"protection_answer" binding:"omitempty,max=255"`
}

type ArticleQuery struct {
	PageQuery
	CategoryID uint   `form:"category_id"`
	TagID      uint   `form:"tag_id"`
	AuthorID   uint   `form:"author_id"`
	Keyword    string `form:"keyword" binding:"omitempty,max=100"`
	Sort       string `form:"sort" binding:"omitempty,oneof=new hot recommend"`
}

type ArticleAdminQuery struct {
	ArticleQuery
	Status string `form:"status" binding:"omitempty,oneof=published draft hidden"`
}

type UnlockRequest struct {
	Answer string `json:"answer" binding:"required,max=255"`
}

type ArticleListItem struct {
	ID           uint      `json:"id"`
	Title        string    `json:"title"`
	Slug         string    `json:"slug"`
	Summary      string    `json:"summary"`
	Cover        string    `json:"cover"`
	CategoryID   *uint     `json:"category_id"`
	CategoryName string    `json:"category_name"`
	Author       UserBrief `json:"author"`
	ViewCount    int64     `json:"view_count"`
	LikeCount    int64     `json:"like_count"`
	CommentCount int64     `json:"comment_count"`
	IsTop        bool      `json:"is_top"`
	IsRecommend  bool      `json:"is_recommend"`
	IsProtected  bool      `json:"is_protected"`
	CreatedAt    time.Time `json:"created_at"`
}

func NewArticleListItem(a *models.Article) ArticleListItem {
	item := ArticleListItem{
		ID:           a.ID,
		Title:        a.Title,
		Slug:         a.Slug,
		Summary:      a.Summary,
		Cover:        a.Cover,
		CategoryID:   a.CategoryID,
		Author:       NewUserBrief(&a.Author),
		ViewCount:    a.ViewCount,
		LikeCount:    a.LikeCount,
		CommentCount: a.CommentCount,
		IsTop:        a.IsTop,
		IsRecommend:  a.IsRecommend,
		IsProtected:  a.IsProtected,
		CreatedAt:    a.CreatedAt,
	}
	if a.Category != nil {
		item.CategoryName = a.Category.Name
	}
	return item
}

// ArticleAdminItem adds the states only the back office sees.
type ArticleAdminItem struct {
	ArticleListItem
	IsPublished bool      `json:"is_published"`
	IsHidden    bool      `json:"is_hidden"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func NewArticleAdminItem(a *models.Article) ArticleAdminItem {
	return ArticleAdminItem{
		ArticleListItem: NewArticleListItem(a),
		IsPublished:     a.IsPublished,
		IsHidden:        a.IsHidden,
		UpdatedAt:       a.UpdatedAt,
	}
}

// ArticleDetail is also the cached form of an article, so it carries the
// content even when the article is protected. Handlers call Locked before
// sending it to someone who has not unlocked it.
type ArticleDetail struct {
	ID                 uint          `json:"id"`
	Title              string        `json:"title"`
	Slug               string        `json:"slug"`
	Summary            string        `json:"summary"`
	Content            string        `json:"content"`
	Cover              string        `json:"cover"`
	CategoryID         *uint         `json:"category_id"`
	CategoryName       string        `json:"category_name"`
	Tags               []TagResponse `json:"tags"`
	Author             UserBrief     `json:"author"`
	ViewCount          int64         `json:"view_count"`
	LikeCount          int64         `json:"like_count"`
	CommentCount       int64         `json:"comment_count"`
	IsPublished        bool          `json:"is_published"`
	IsTop              bool          `json:"is_top"`
	IsRecommend        bool          `json:"is_recommend"`
	IsHidden           bool          `json:"is_hidden"`
	IsProtected        bool          `json:"is_protected"`
	ProtectionQuestion string        `json:"protection_question,omitempty"`
	IsLocked           bool          `json:"is_locked"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}

func NewArticleDetail(a *models.Article) ArticleDetail {
	d := ArticleDetail{
		ID:           a.ID,
		Title:        a.Title,
		Slug:         a.Slug,
		Summary:      a.Summary,
		Content:      a.Content,
		Cover:        a.Cover,
		CategoryID:   a.CategoryID,
		Tags:         make([]TagResponse, 0, len(a.Tags)),
		Author:       NewUserBrief(&a.Author),
		ViewCount:    a.ViewCount,
		LikeCount:    a.LikeCount,
		CommentCount: a.CommentCount,
		IsPublished:  a.IsPublished,
		IsTop:        a.IsTop,
		IsRecommend:  a.IsRecommend,
		IsHidden:     a.IsHidden,
		IsProtected:  a.IsProtected,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
	if a.Category != nil {
		d.CategoryName = a.Category.Name
	}
	for i := range a.Tags {
		d.Tags = append(d.Tags, NewTagResponse(&a.Tags[i]))
	}
	if a.IsProtected {
		d.ProtectionQuestion = a.ProtectionQuestion
	}
	return d
}

// Locked returns a copy with the content withheld.
func (d ArticleDetail) Locked() ArticleDetail {
	if !d.IsProtected {
		return d
	}
	d.Content = ""
	d.IsLocked = true
	return d
}

type LikeResponse struct {
	Liked     bool  `json:"liked"`
	LikeCount int64 `json:"like_count"`
}

// CategorySection is one block of the home page.
type CategorySection struct {
	ID       uint              `json:"id"`
	Name     string            `json:"name"`
	Articles []ArticleListItem `json:"articles"`
}
