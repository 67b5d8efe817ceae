// users.go - Account storage

package repository

import (
	"gorm.io/gorm"

	"go-blog-backend/apperr"
	"go-blog-backend/models"
)

type UserRepository struct {
	db *gorm.DB
}

func Users(db *gorm.DB) *UserRepository { return &UserRepository{db: db} }

func (r *UserRepository) ByID(id uint) (*models.User, error) {
	var u models.User
	if err := r.db.First(&u, id).Error; err != nil {
		return nil, apperr.FromDB(err, "user not found")
	}
	return &u, nil
}

func (r *UserRepository) ByUsername(username string) (*models.User, error) {
	var u models.User
	if err := r.db.Where("username = ?", username).First(&u).Error; err != nil {
		return nil, apperr.FromDB(err, "user not found")
	}
	return &u, nil
}

// Create inserts a user after checking username and email are free.
func (r *UserRepository) Create(u *models.User) error {
	if err := r.checkUnique(u); err != nil {
		return err
	}
	return apperr.FromDB(r.db.Create(u).Error, "")
}

// Save writes every column of an existing user.
func (r *UserRepository) Save(u *models.User) error {
	if err := r.checkUnique(u); err != nil {
		return err
	}
	return apperr.FromDB(r.db.Save(u).Error, "user not found")
}

func (r *UserRepository) checkUnique(u *models.User) error {
	used, err := taken(r.db, &models.User{}, "username", u.Username, u.ID)
	if err != nil {
		return err
	}
	if used {
		return apperr.Conflict("username already exists")
	}
	if u.Email == "" {
		return nil
	}
	used, err = taken(r.db, &models.User{}, "email", u.Email, u.ID)
	if err != nil {
		return err
	}
	if used {
		return apperr.Conflict("email already registered")
	}
	return nil
}

// List returns users newest first, optionally filtered by username,
// nickname or email.
func (r *UserRepository) List(keyword string, page Page) ([]models.User, int64, error) {
	filter := func(db *gorm.DB) *gorm.DB {
		if keyword == "" {
			return db
		}
		p := likePattern(keyword)
		return db.Where("(username LIKE ? OR nickname LIKE ? OR email LIKE ?)", p, p, p)
	}

	var total int64
	if err := r.db.Model(&models.User{}).Scopes(filter).Count(&total).Error; err != nil {
		return nil, 0, apperr.FromDB(err, "")
	}
	var users []models.User
	err := r.db.Scopes(filter, page.scope).
		Order("created_at DESC").Order("id DESC").
		Find(&users).Error
	if err != nil {
		return nil, 0, apperr.FromDB(err, "")
	}
	return users, total, nil
}

// HasContent reports whether anything still references the user, in which
// case it may only be disabled.
func (r *UserRepository) HasContent(id uint) (bool, error) {
	checks := []struct {
		model  any
		column string
	}{
		{&models.Article{}, "author_id"},
		{&models.Comment{}, "user_id"},
		{&models.Comment{}, "reply_to_id"},
		{&models.Message{}, "user_id"},
		{&models.Resource{}, "user_id"},
		{&models.ArticleLike{}, "user_id"},
		{&models.CommentLike{}, "user_id"},
	}
	for _, c := range checks {
		var n int64
		if err := r.db.Model(c.model).Where(c.column+" = ?", id).Count(&n).Error; err != nil {
			return false, apperr.FromDB(err, "")
		}
		if n > 0 {
			return true, nil
		}
	}
	return false, nil
}

func (r *UserRepository) Delete(id uint) error {
	return deleteByID(r.db, &models.User{}, id, "user not found")
}

// AnyAdmin reports whether at least one active administrator exists.
func (r *UserRepository) AnyAdmin() (bool, error) {
	var n int64
	err := r.db.Model(&models.User{}).
		Where("is_admin = ? AND is_active = ?", true, true).
		Count(&n).Error
	if err != nil {
		return false, apperr.FromDB(err, "")
	}
	return n > 0, nil
}

func (r *UserRepository) ByEmail(email string) (*models.User, error) {
	var u models.User
	if err := r.db.Where("email = ?", email).First(&u).Error; err != nil {
		return nil, apperr.FromDB(err, "user not found")
	}
	return &u, nil
}
