// comment.go - Request and response shapes for comments

package schemas

import (
	"time"

	"go-blog-backend/models"
)

type CommentCreateRequest struct {
	ContentType string `json:"content_type" binding:"omitempty,oneof=article changelog message_board"`
	ContentID   uint   `json:"content_id"`
	Content     string `json:"content" binding:"required,max=2000"`
	ParentID    *uint  `json:"parent_id" binding:"omitempty,min=1"`
	ReplyToID   *uint  `json:"reply_to_id" binding:"omitempty,min=1"`
}

// CommentTarget is the path part of GET /comments/:contentType/:contentId.
type CommentTarget struct {
	ContentType string `uri:"contentType" binding:"required,oneof=article changelog message_board"`
	ContentID   uint   `uri:"contentId"`
}

type CommentAdminUpdateRequest struct {
	Content *string `json:"content" binding:"omitempty,min=1,max=2000"`
	Status  *string `json:"status" binding:"omitempty,oneof=pending approved rejected"`
}

type CommentAdminQuery struct {
	PageQuery
	Status      string `form:"status" binding:"omitempty,oneof=pending approved rejected"`
	ContentType string `form:"content_type" binding:"omitempty,oneof=article changelog message_board"`
	Keyword     string `form:"keyword" binding:"omitempty,max=100"`
}

type CommentReply struct {
	ID        uint       `json:"id"`
	Content   string     `json:"content"`
	User      UserBrief  `json:"user"`
	ReplyTo   *UserBrief `json:"reply_to,omitempty"`
	LikeCount int64      `json:"like_count"`
	CreatedAt time.Time  `json:"created_at"`
}

func NewCommentReply(c *models.Comment) CommentReply {
	r := CommentReply{
		ID:        c.ID,
		Content:   c.Content,
		User:      NewUserBrief(&c.User),
		LikeCount: c.LikeCount,
		CreatedAt: c.CreatedAt,
	}
	if c.ReplyTo != nil {
		to := NewUserBrief(c.ReplyTo)
		r.ReplyTo = &to
	}
	return r
}

type CommentResponse struct {
	ID          uint           `json:"id"`
	Content     string         `json:"content"`
	ContentType string         `json:"content_type"`
	ContentID   uint           `json:"content_id"`
	ParentID    *uint          `json:"parent_id"`
	User        UserBrief      `json:"user"`
	Status      string         `json:"status"`
	LikeCount   int64          `json:"like_count"`
	CreatedAt   time.Time      `json:"created_at"`
	Replies     []CommentReply `json:"replies"`
}

func NewCommentResponse(c *models.Comment, replies []models.Comment) CommentResponse {
	r := CommentResponse{
		ID:          c.ID,
		Content:     c.Content,
		ContentType: c.ContentType,
		ContentID:   c.ContentID,
		ParentID:    c.ParentID,
		User:        NewUserBrief(&c.User),
		Status:      c.Status,
		LikeCount:   c.LikeCount,
		CreatedAt:   c.CreatedAt,
		Replies:     make([]CommentReply, 0, len(replies)),
	}
	for i := range replies {
		r.Replies = append(r.Replies, NewCommentReply(&replies[i]))
	}
	return r
}

type CommentAdminItem struct {
	ID          uint      `json:"id"`
	Content     string    `json:"content"`
	ContentType string    `json:"content_type"`
	ContentID   uint      `json:"content_id"`
	ParentID    *uint     `json:"parent_id"`
	User        UserBrief `json:"user"`
	Status      string    `json:"status"`
	LikeCount   int64     `json:"like_count"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewCommentAdminItem(c *models.Comment) CommentAdminItem {
	return CommentAdminItem{
		ID:          c.ID,
		Content:     c.Content,
		ContentType: c.ContentType,
		ContentID:   c.ContentID,
		ParentID:    c.ParentID,
		User:        NewUserBrief(&c.User),
		Status:      c.Status,
		LikeCount:   c.LikeCount,
		CreatedAt:   c.CreatedAt,
	}
}
