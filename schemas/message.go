// message.go - Request and response shapes for guestbook messages

package schemas

import (
	"time"

	"go-blog-backend/models"
)

type MessageCreateRequest struct {
	Content  string `json:"content" binding:"required,max=1000"`
	Nickname string `json:"nickname" binding:"omitempty,max=50"`
	Email    string `json:"email" binding:"omitempty,email,max=100"`
	Avatar   string `json:"avatar" binding:"omitempty,url,max=500"`
	ParentID *uint  `json:"parent_id" binding:"omitempty,min=1"`
}

type MessageUpdateRequest struct {
	Content string `json:"content" binding:"required,max=1000"`
}

type MessageAdminQuery struct {
	PageQuery
	Status string `form:"status" binding:"omitempty,oneof=pending approved rejected"`
}

// MessageResponse is the public projection; email and IP stay private.
type MessageResponse struct {
	ID        uint      `json:"id"`
	Content   string    `json:"content"`
	Nickname  string    `json:"nickname"`
	Avatar    string    `json:"avatar"`
	ParentID  *uint     `json:"parent_id"`
	Status    string    `json:"status,omitempty"` // only echoed to the author on create
	CreatedAt time.Time `json:"created_at"`
}

func NewMessageResponse(m *models.Message) MessageResponse {
	return MessageResponse{
		ID:        m.ID,
		Content:   m.Content,
		Nickname:  m.Nickname,
		Avatar:    m.Avatar,
		ParentID:  m.ParentID,
		CreatedAt: m.CreatedAt,
	}
}

type MessageAdminItem struct {
	MessageResponse
	Email     string `json:"email"`
	IPAddress string `json:"ip_address"`
	UserID    *uint  `json:"user_id"`
	Status    string `json:"status"`
}

func NewMessageAdminItem(m *models.Message) MessageAdminItem {
	return MessageAdminItem{
		MessageResponse: NewMessageResponse(m),
		Email:           m.Email,
		IPAddress:       m.IPAddress,
		UserID:          m.UserID,
		Status:          m.Status,
	}
}
