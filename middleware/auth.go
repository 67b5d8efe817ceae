// auth.go - Bearer token authentication and admin access control
//
// Authentication Flow:
// 1. Extract the token from "Authorization: Bearer <token>"
// 2. Verify signature, algorithm and expiry
// 3. Load the user the token names
// 4. Reject disabled accounts
// 5. Store the user in the gin context for handlers
//
// Admin routes run the same flow, then check the privilege flag.

package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"go-blog-backend/apperr"
	"go-blog-backend/database"
	"go-blog-backend/models"
	"go-blog-backend/repository"
	"go-blog-backend/security"
)

const userKey = "user" // gin context key for the authenticated *models.User

// Authenticator resolves bearer tokens to users. It only reads.
type Authenticator struct {
	sessions *database.Sessions
	tokens   *security.Tokens
}

func NewAuthenticator(sessions *database.Sessions, tokens *security.Tokens) *Authenticator {
	return &Authenticator{sessions: sessions, tokens: tokens}
}

// RequireUser rejects requests without a valid token for an active user.
func (a *Authenticator) RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := a.authenticate(c); err != nil {
			WriteError(c, err)
			return
		}
		c.Next()
	}
}

// RequireAdmin is RequireUser plus the admin flag.
func (a *Authenticator) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := a.authenticate(c)
		if err != nil {
			WriteError(c, err)
			return
		}
		if !user.IsAdmin {
			WriteError(c, apperr.Forbidden("admin access required"))
			return
		}
		c.Next()
	}
}

// OptionalUser never rejects. It resolves the user when a usable token is
// present and otherwise lets the request through anonymously.
func (a *Authenticator) OptionalUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") != "" {
			_, _ = a.authenticate(c)
		}
		c.Next()
	}
}

func (a *Authenticator) authenticate(c *gin.Context) (*models.User, error) {
	// STEP 1: Extract the bearer token
	header := c.GetHeader("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return nil, apperr.Unauthorized("missing or invalid token")
	}

	// STEP 2: Verify the token and read the user id from its subject
	userID, err := a.tokens.Verify(strings.TrimSpace(token))
	if err != nil {
		return nil, apperr.Unauthorized("invalid or expired token")
	}

	// STEP 3: Load the user; the token alone does not carry privileges
	var user *models.User
	err = a.sessions.Do(c.Request.Context(), func(tx *gorm.DB) error {
		var err error
		user, err = repository.Users(tx).ByID(userID)
		return err
	})
	if apperr.Is(err, apperr.KindNotFound) {
		return nil, apperr.Unauthorized("user not found")
	}
	if err != nil {
		return nil, err
	}

	// STEP 4: Disabled accounts keep their data but lose access
	if !user.IsActive {
		return nil, apperr.Forbidden("account is disabled")
	}

	c.Set(userKey, user)
	return user, nil
}

// CurrentUser returns the user stored by the auth middleware, if any.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}

// CurrentUserID returns the id of the authenticated user, or nil.
func CurrentUserID(c *gin.Context) *uint {
	if user, ok := CurrentUser(c); ok {
		id := user.ID
		return &id
	}
	return nil
}

// SetUser stores a user the way the auth middleware does; used by login.
func SetUser(c *gin.Context, user *models.User) { c.Set(userKey, user) }
