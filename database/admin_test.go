package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-blog-backend/apperr"
	"go-blog-backend/logger"
	"go-blog-backend/models"
	"go-blog-backend/security"
)

func TestCreateAdmin(t *testing.T) {
	db, _ := setupTestDB(t)
	sessions := NewSessions(db, 1, time.Second, nil)
	ctx := context.Background()

	user, err := CreateAdmin(ctx, sessions, AdminAccount{
		Username: "root", Email: "root@example.com", Password: "hunter22",
	}, false)
	require.NoError(t, err)
	assert.True(t, user.IsAdmin)
	assert.True(t, security.VerifyPassword("hunter22", user.PasswordHash))

	_, err = CreateAdmin(ctx, sessions, AdminAccount{
		Username: "root", Email: "other@example.com", Password: "hunter22",
	}, false)
	assert.True(t, apperr.Is(err, apperr.KindConflict))
}

func TestCreateAdminPromotesExistingUser(t *testing.T) {
	db, _ := setupTestDB(t)
	sessions := NewSessions(db, 1, time.Second, nil)
	require.NoError(t, db.Create(&models.User{
		Username: "bob", Email: "bob@example.com", PasswordHash: "x", IsActive: true,
	}).Error)

	user, err := CreateAdmin(context.Background(), sessions, AdminAccount{Username: "bob", Password: "whatever"}, true)
	require.NoError(t, err)
	assert.True(t, user.IsAdmin)

	var count int64
	db.Model(&models.User{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestEnsureDefaultAdmin(t *testing.T) {
	db, cfg := setupTestDB(t)
	sessions := NewSessions(db, 1, time.Second, nil)
	ctx := context.Background()

	// disabled: nothing happens
	require.NoError(t, EnsureDefaultAdmin(ctx, sessions, cfg, logger.Discard()))
	var count int64
	db.Model(&models.User{}).Count(&count)
	assert.Zero(t, count)

	cfg.CreateAdmin = true
	cfg.AdminEmail = "admin@example.com"
	cfg.AdminPassword = "change-me-now"
	require.NoError(t, EnsureDefaultAdmin(ctx, sessions, cfg, logger.Discard()))
	require.NoError(t, EnsureDefaultAdmin(ctx, sessions, cfg, logger.Discard()))

	db.Model(&models.User{}).Where("is_admin = ?", true).Count(&count)
	assert.Equal(t, int64(1), count)
}
