// messages.go - Guestbook storage

package repository

import (
	"gorm.io/gorm"

	"go-blog-backend/apperr"
	"go-blog-backend/models"
)

type MessageRepository struct {
	db *gorm.DB
}

func Messages(db *gorm.DB) *MessageRepository { return &MessageRepository{db: db} }

// List returns messages newest first. An empty status lists every state.
func (r *MessageRepository) List(status string, page Page) ([]models.Message, int64, error) {
	filter := func(db *gorm.DB) *gorm.DB {
		if status != "" {
			return db.Where("status = ?", status)
		}
		return db
	}

	var total int64
	if err := r.db.Model(&models.Message{}).Scopes(filter).Count(&total).Error; err != nil {
		return nil, 0, apperr.FromDB(err, "")
	}
	var messages []models.Message
	err := r.db.Scopes(filter, page.scope).
		Order("created_at DESC").Order("id DESC").
		Find(&messages).Error
	if err != nil {
		return nil, 0, apperr.FromDB(err, "")
	}
	return messages, total, nil
}

func (r *MessageRepository) ByID(id uint) (*models.Message, error) {
	var m models.Message
	if err := r.db.First(&m, id).Error; err != nil {
		return nil, apperr.FromDB(err, "message not found")
	}
	return &m, nil
}

func (r *MessageRepository) Create(m *models.Message) error {
	return apperr.FromDB(r.db.Create(m).Error, "")
}

func (r *MessageRepository) Save(m *models.Message) error {
	return apperr.FromDB(r.db.Save(m).Error, "message not found")
}

// Delete removes a message and its direct replies.
func (r *MessageRepository) Delete(id uint) error {
	if err := r.db.Where("parent_id = ?", id).Delete(&models.Message{}).Error; err != nil {
		return apperr.FromDB(err, "")
	}
	return deleteByID(r.db, &models.Message{}, id, "message not found")
}
