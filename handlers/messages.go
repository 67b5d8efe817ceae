// messages.go - Guestbook endpoints

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"go-blog-backend/apperr"
	"go-blog-backend/middleware"
	"go-blog-backend/models"
	"go-blog-backend/repository"
	"go-blog-backend/schemas"
)

// EventMessageCreated is pushed to live clients when a message becomes visible.
const EventMessageCreated = "message.created"

// ListMessages returns approved messages, newest first.
func (h *Handler) ListMessages(c *gin.Context) {
	var q schemas.PageQuery
	if !bindQuery(c, &q) {
		return
	}
	messages, total, n, size, err := h.listMessages(c, models.StatusApproved, q)
	if err != nil {
		fail(c, err)
		return
	}
	records := make([]schemas.MessageResponse, 0, len(messages))
	for i := range messages {
		records = append(records, schemas.NewMessageResponse(&messages[i]))
	}
	c.JSON(http.StatusOK, schemas.NewPaged(records, total, n, size))
}

func (h *Handler) AdminListMessages(c *gin.Context) {
	var q schemas.MessageAdminQuery
	if !bindQuery(c, &q) {
		return
	}
	messages, total, n, size, err := h.listMessages(c, q.Status, q.PageQuery)
	if err != nil {
		fail(c, err)
		return
	}
	records := make([]schemas.MessageAdminItem, 0, len(messages))
	for i := range messages {
		records = append(records, schemas.NewMessageAdminItem(&messages[i]))
	}
	c.JSON(http.StatusOK, schemas.NewPaged(records, total, n, size))
}

func (h *Handler) listMessages(c *gin.Context, status string, q schemas.PageQuery) ([]models.Message, int64, int, int, error) {
	page, n, size := pageOf(q)
	var messages []models.Message
	var total int64
	err := h.tx(c, func(tx *gorm.DB) error {
		var err error
		messages, total, err = repository.Messages(tx).List(status, page)
		return err
	})
	return messages, total, n, size, err
}

// CreateMessage accepts messages from visitors and logged-in users. A
// logged-in author's profile fills in the nickname, email and avatar.
func (h *Handler) CreateMessage(c *gin.Context) {
	var input schemas.MessageCreateRequest
	if !bindJSON(c, &input) {
		return
	}

	msg := models.Message{
		Content:   schemas.SanitizePlain(input.Content),  // Plain text, markup stripped
		Nickname:  schemas.SanitizePlain(input.Nickname), // Required for anonymous visitors
		Email:     input.Email,
		Avatar:    input.Avatar,
		IPAddress: c.ClientIP(), // Kept for moderation
		ParentID:  input.ParentID,
		Status:    h.Config.MessageDefaultStatus,
	}
	if user, ok := middleware.CurrentUser(c); ok { // Logged-in author fills the gaps
		uid := user.ID
		msg.UserID = &uid
		if msg.Nickname == "" {
			msg.Nickname = user.DisplayName()
		}
		if msg.Email == "" {
			msg.Email = user.Email
		}
		if msg.Avatar == "" {
			msg.Avatar = user.Avatar
		}
	}

	fields := map[string]string{}
	if msg.Content == "" {
		fields["content"] = "is required"
	}
	if msg.Nickname == "" {
		fields["nickname"] = "is required"
	}
	if len(fields) > 0 {
		fail(c, apperr.Validation("request validation failed", fields))
		return
	}

	err := h.tx(c, func(tx *gorm.DB) error {
		messages := repository.Messages(tx)
		if msg.ParentID != nil {
			parent, err := messages.ByID(*msg.ParentID)
			if apperr.Is(err, apperr.KindNotFound) || (err == nil && parent.Status != models.StatusApproved) {
				return apperr.Validation("request validation failed", map[string]string{
					"parent_id": "message does not exist",
				})
			}
			if err != nil {
				return err
			}
		}
		return messages.Create(&msg)
	})
	if err != nil {
		fail(c, err)
		return
	}

	resp := schemas.NewMessageResponse(&msg)
	if msg.Status == models.StatusApproved {
		h.Hub.Publish(EventMessageCreated, resp)
	}
	resp.Status = msg.Status
	c.JSON(http.StatusCreated, resp)
}

// UpdateMessage lets an administrator edit the text of a message.
func (h *Handler) UpdateMessage(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var input schemas.MessageUpdateRequest
	if !bindJSON(c, &input) {
		return
	}
	content := schemas.SanitizePlain(input.Content)
	if content == "" {
		fail(c, apperr.Validation("request validation failed", map[string]string{"content": "is required"}))
		return
	}

	var msg *models.Message
	err := h.tx(c, func(tx *gorm.DB) error {
		messages := repository.Messages(tx)
		var err error
		if msg, err = messages.ByID(id); err != nil {
			return err
		}
		msg.Content = content
		return messages.Save(msg)
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, schemas.NewMessageAdminItem(msg))
}

// ModerateMessage sets the moderation state; approving a message pushes it
// to live clients.
func (h *Handler) ModerateMessage(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var input schemas.ModerationRequest
	if !bindJSON(c, &input) {
		return
	}

	var msg *models.Message
	var published bool
	err := h.tx(c, func(tx *gorm.DB) error {
		messages := repository.Messages(tx)
		var err error
		if msg, err = messages.ByID(id); err != nil {
			return err
		}
		published = msg.Status != models.StatusApproved && input.Status == models.StatusApproved
		msg.Status = input.Status
		return messages.Save(msg)
	})
	if err != nil {
		fail(c, err)
		return
	}
	if published {
		h.Hub.Publish(EventMessageCreated, schemas.NewMessageResponse(msg))
	}
	h.log(c).WithField("message_id", id).WithField("status", msg.Status).Info("message moderated")
	c.JSON(http.StatusOK, schemas.NewMessageAdminItem(msg))
}

func (h *Handler) DeleteMessage(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.tx(c, func(tx *gorm.DB) error { return repository.Messages(tx).Delete(id) }); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
