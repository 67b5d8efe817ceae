// admin.go - Administrator bootstrap

package database

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"go-blog-backend/apperr"
	"go-blog-backend/config"
	"go-blog-backend/models"
	"go-blog-backend/repository"
	"go-blog-backend/security"
)

// AdminAccount is the input for creating an administrator.
type AdminAccount struct {
	Username string
	Email    string
	Password string
	Nickname string
}

// CreateAdmin creates a new administrator. A taken username or email is a
// conflict. With promote set, an existing account with that username is
// upgraded to administrator instead.
func CreateAdmin(ctx context.Context, sessions *Sessions, acct AdminAccount, promote bool) (*models.User, error) {
	acct.Email = strings.ToLower(strings.TrimSpace(acct.Email)) // stored the way register and login see it
	hash, err := security.HashPassword(acct.Password)           // Hash password
	if err != nil {
		return nil, apperr.Internal(err)
	}

	var user *models.User
	err = sessions.Do(ctx, func(tx *gorm.DB) error {
		users := repository.Users(tx)
		if promote { // Upgrade an existing account instead of creating one
			existing, err := users.ByUsername(acct.Username)
			if err == nil {
				existing.IsAdmin = true  // Grant admin rights
				existing.IsActive = true // Re-enable a disabled account
				user = existing
				return users.Save(existing)
			}
			if !apperr.Is(err, apperr.KindNotFound) {
				return err
			}
		}

		user = &models.User{
			Username:     acct.Username,
			Email:        acct.Email,
			PasswordHash: hash,
			Nickname:     acct.Nickname,
			IsAdmin:      true,
			IsActive:     true,
		}
		return users.Create(user)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// EnsureDefaultAdmin creates the administrator described by the
// configuration when CREATE_ADMIN is set and no administrator exists yet.
func EnsureDefaultAdmin(ctx context.Context, sessions *Sessions, cfg *config.Config, log *logrus.Logger) error {
	// Only create admin if explicitly configured
	if !cfg.CreateAdmin {
		return nil
	}

	var exists bool
	err := sessions.Do(ctx, func(tx *gorm.DB) error {
		var err error
		exists, err = repository.Users(tx).AnyAdmin()
		return err
	})
	if err != nil || exists { // An admin already exists, nothing to do
		return err
	}

	user, err := CreateAdmin(ctx, sessions, AdminAccount{
		Username: cfg.AdminUsername,
		Email:    cfg.AdminEmail,
		Password: cfg.AdminPassword,
	}, false)
	if err != nil {
		return err
	}
	log.WithField("username", user.Username).Info("default administrator created")
	return nil
}
