// auth.go - Handles registration, login and the caller's own account

package handlers

import (
	"net/http" // HTTP status codes
	"strings"

	"github.com/gin-gonic/gin" // Gin web framework
	"gorm.io/gorm"             // GORM ORM

	"go-blog-backend/apperr"
	"go-blog-backend/middleware"
	"go-blog-backend/models"
	"go-blog-backend/repository"
	"go-blog-backend/schemas"
	"go-blog-backend/security"
)

// Register creates a regular account.
func (h *Handler) Register(c *gin.Context) {
	var input schemas.RegisterRequest // Declare input variable
	if !bindJSON(c, &input) {         // Parse and validate JSON input
		return
	}
	hash, err := security.HashPassword(input.Password) // Hash password (bcrypt)
	if err != nil {
		fail(c, apperr.Internal(err))
		return
	}

	user := models.User{ // Create user struct
		Username:     input.Username,
		Email:        strings.ToLower(input.Email), // Emails compare case-insensitively
		PasswordHash: hash,
		Nickname:     schemas.SanitizePlain(input.Nickname),
		IsActive:     true,
	}
	err = h.tx(c, func(tx *gorm.DB) error { // Save user to DB
		return repository.Users(tx).Create(&user) // Duplicate username or email is a conflict
	})
	if err != nil {
		fail(c, err)
		return
	}
	h.log(c).WithField("user_id", user.ID).Info("user registered")
	c.JSON(http.StatusCreated, schemas.NewUserResponse(&user)) // Success response
}

// Login exchanges a username (or email) and password for a token.
func (h *Handler) Login(c *gin.Context) {
	var input schemas.LoginRequest // Declare input variable
	if !bindJSON(c, &input) {      // Parse JSON input
		return
	}

	var user *models.User // Declare user variable
	err := h.tx(c, func(tx *gorm.DB) error {
		var err error
		users := repository.Users(tx)
		if strings.Contains(input.Username, "@") { // Find user by email
			user, err = users.ByEmail(strings.ToLower(input.Username))
		} else {
			user, err = users.ByUsername(input.Username)
		}
		return err
	})
	if err != nil && !apperr.Is(err, apperr.KindNotFound) {
		fail(c, err)
		return
	}
	// same answer for unknown user and wrong password
	if user == nil || !security.VerifyPassword(input.Password, user.PasswordHash) {
		fail(c, apperr.Unauthorized("invalid username or password"))
		return
	}
	if !user.IsActive {
		fail(c, apperr.Forbidden("account is disabled"))
		return
	}

	token, expires, err := h.Tokens.Issue(user.ID, h.Tokens.TTL()) // Sign token
	if err != nil {
		fail(c, apperr.Internal(err))
		return
	}
	middleware.SetUser(c, user)
	c.JSON(http.StatusOK, schemas.TokenResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresAt: expires,
		User:      schemas.NewUserResponse(user),
	})
}

// Me returns the authenticated user.
func (h *Handler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, schemas.NewUserResponse(mustUser(c)))
}

// UpdateProfile changes the caller's own display data.
func (h *Handler) UpdateProfile(c *gin.Context) {
	var input schemas.ProfileUpdateRequest
	if !bindJSON(c, &input) {
		return
	}

	var user *models.User
	err := h.tx(c, func(tx *gorm.DB) error {
		users := repository.Users(tx)
		var err error
		if user, err = users.ByID(mustUser(c).ID); err != nil {
			return err
		}
		if input.Nickname != nil {
			user.Nickname = schemas.SanitizePlain(*input.Nickname)
		}
		if input.Email != nil {
			user.Email = strings.ToLower(*input.Email)
		}
		if input.Avatar != nil {
			user.Avatar = *input.Avatar
		}
		if input.Intro != nil {
			user.Intro = schemas.SanitizePlain(*input.Intro)
		}
		return users.Save(user)
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, schemas.NewUserResponse(user))
}

// ChangePassword requires the current password.
func (h *Handler) ChangePassword(c *gin.Context) {
	var input schemas.PasswordChangeRequest
	if !bindJSON(c, &input) {
		return
	}
	hash, err := security.HashPassword(input.NewPassword)
	if err != nil {
		fail(c, apperr.Internal(err))
		return
	}

	err = h.tx(c, func(tx *gorm.DB) error {
		users := repository.Users(tx)
		user, err := users.ByID(mustUser(c).ID)
		if err != nil {
			return err
		}
		if !security.VerifyPassword(input.OldPassword, user.PasswordHash) { // Check current password
			return apperr.Validation("request validation failed", map[string]string{
				"old_password": "is incorrect",
			})
		}
		user.PasswordHash = hash
		return users.Save(user)
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}
