// users.go - Administrator management of accounts

package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"go-blog-backend/apperr"
	"go-blog-backend/models"
	"go-blog-backend/repository"
	"go-blog-backend/schemas"
	"go-blog-backend/security"
)

func (h *Handler) ListUsers(c *gin.Context) {
	var q schemas.UserQuery
	if !bindQuery(c, &q) {
		return
	}
	page, n, size := pageOf(q.PageQuery)

	var users []models.User
	var total int64
	err := h.tx(c, func(tx *gorm.DB) error {
		var err error
		users, total, err = repository.Users(tx).List(q.Keyword, page)
		return err
	})
	if err != nil {
		fail(c, err)
		return
	}
	records := make([]schemas.UserResponse, 0, len(users))
	for i := range users {
		records = append(records, schemas.NewUserResponse(&users[i]))
	}
	c.JSON(http.StatusOK, schemas.NewPaged(records, total, n, size))
}

func (h *Handler) CreateUser(c *gin.Context) {
	var input schemas.AdminUserCreateRequest
	if !bindJSON(c, &input) {
		return
	}
	hash, err := security.HashPassword(input.Password)
	if err != nil {
		fail(c, apperr.Internal(err))
		return
	}
	user := models.User{
		Username:     input.Username,
		Email:        strings.ToLower(input.Email), // Same normalization as register
		PasswordHash: hash,
		Nickname:     schemas.SanitizePlain(input.Nickname),
		IsAdmin:      input.IsAdmin,
		IsActive:     true,
	}
	if err := h.tx(c, func(tx *gorm.DB) error { return repository.Users(tx).Create(&user) }); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, schemas.NewUserResponse(&user))
}

func (h *Handler) UpdateUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var input schemas.AdminUserUpdateRequest
	if !bindJSON(c, &input) {
		return
	}
	self := mustUser(c).ID == id
	if self && ((input.IsAdmin != nil && !*input.IsAdmin) || (input.IsActive != nil && !*input.IsActive)) {
		fail(c, apperr.Validation("you cannot demote or disable your own account", nil))
		return
	}

	var hash string
	if input.Password != nil {
		var err error
		if hash, err = security.HashPassword(*input.Password); err != nil {
			fail(c, apperr.Internal(err))
			return
		}
	}

	var user *models.User
	err := h.tx(c, func(tx *gorm.DB) error {
		users := repository.Users(tx)
		var err error
		if user, err = users.ByID(id); err != nil {
			return err
		}
		if input.Nickname != nil {
			user.Nickname = schemas.SanitizePlain(*input.Nickname)
		}
		if input.Email != nil {
			user.Email = strings.ToLower(*input.Email)
		}
		if hash != "" {
			user.PasswordHash = hash
		}
		if input.IsAdmin != nil {
			user.IsAdmin = *input.IsAdmin
		}
		if input.IsActive != nil {
			user.IsActive = *input.IsActive
		}
		return users.Save(user)
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, schemas.NewUserResponse(user))
}

// DeleteUser removes an account, or disables it when content still
// references it.
func (h *Handler) DeleteUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if mustUser(c).ID == id {
		fail(c, apperr.Validation("you cannot delete your own account", nil))
		return
	}

	disabled := false
	err := h.tx(c, func(tx *gorm.DB) error {
		users := repository.Users(tx)
		user, err := users.ByID(id)
		if err != nil {
			return err
		}
		referenced, err := users.HasContent(id)
		if err != nil {
			return err
		}
		if !referenced {
			return users.Delete(id)
		}
		disabled = true
		user.IsActive = false
		return users.Save(user)
	})
	if err != nil {
		fail(c, err)
		return
	}
	if disabled {
		c.JSON(http.StatusOK, gin.H{"message": "user is referenced by content and was disabled", "disabled": true})
		return
	}
	c.Status(http.StatusNoContent)
}
