// comments.go - Comment storage and moderation

package repository

import (
	"gorm.io/gorm"

	"go-blog-backend/apperr"
	"go-blog-backend/models"
)

// CommentFilter narrows the back-office comment list.
type CommentFilter struct {
	Status      string
	ContentType string
	Keyword     string
}

type CommentRepository struct {
	db *gorm.DB
}

func Comments(db *gorm.DB) *CommentRepository { return &CommentRepository{db: db} }

func (r *CommentRepository) ByID(id uint) (*models.Comment, error) {
	var c models.Comment
	if err := r.db.Preload("User").First(&c, id).Error; err != nil {
		return nil, apperr.FromDB(err, "comment not found")
	}
	return &c, nil
}

func (r *CommentRepository) Create(c *models.Comment) error {
	return apperr.FromDB(r.db.Omit("User", "ReplyTo").Create(c).Error, "")
}

func (r *CommentRepository) Save(c *models.Comment) error {
	return apperr.FromDB(r.db.Omit("User", "ReplyTo").Save(c).Error, "comment not found")
}

// Thread returns one page of approved top-level comments on a piece of
// content, and their approved replies keyed by parent id.
func (r *CommentRepository) Thread(contentType string, contentID uint, page Page) ([]models.Comment, map[uint][]models.Comment, int64, error) {
	target := func(db *gorm.DB) *gorm.DB {
		return db.Where("content_type = ? AND content_id = ? AND parent_id IS NULL AND status = ?",
			contentType, contentID, models.StatusApproved)
	}

	var total int64
	if err := r.db.Model(&models.Comment{}).Scopes(target).Count(&total).Error; err != nil {
		return nil, nil, 0, apperr.FromDB(err, "")
	}
	var top []models.Comment
	err := r.db.Scopes(target, page.scope).Preload("User").
		Order("created_at DESC").Order("id DESC").
		Find(&top).Error
	if err != nil {
		return nil, nil, 0, apperr.FromDB(err, "")
	}

	replies := make(map[uint][]models.Comment, len(top))
	if len(top) == 0 {
		return top, replies, total, nil
	}
	ids := make([]uint, len(top))
	for i, c := range top {
		ids[i] = c.ID
	}
	var rows []models.Comment
	err = r.db.Where("parent_id IN ? AND status = ?", ids, models.StatusApproved).
		Preload("User").Preload("ReplyTo").
		Order("created_at ASC").Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, nil, 0, apperr.FromDB(err, "")
	}
	for _, c := range rows {
		replies[*c.ParentID] = append(replies[*c.ParentID], c)
	}
	return top, replies, total, nil
}

func (r *CommentRepository) AdminList(f CommentFilter, page Page) ([]models.Comment, int64, error) {
	filter := func(db *gorm.DB) *gorm.DB {
		if f.Status != "" {
			db = db.Where("status = ?", f.Status)
		}
		if f.ContentType != "" {
			db = db.Where("content_type = ?", f.ContentType)
		}
		if f.Keyword != "" {
			db = db.Where("content LIKE ?", likePattern(f.Keyword))
		}
		return db
	}

	var total int64
	if err := r.db.Model(&models.Comment{}).Scopes(filter).Count(&total).Error; err != nil {
		return nil, 0, apperr.FromDB(err, "")
	}
	var comments []models.Comment
	err := r.db.Scopes(filter, page.scope).Preload("User").
		Order("created_at DESC").Order("id DESC").
		Find(&comments).Error
	if err != nil {
		return nil, 0, apperr.FromDB(err, "")
	}
	return comments, total, nil
}

// Delete removes a comment, its replies and all their likes. It returns how
// many of the removed comments were approved.
func (r *CommentRepository) Delete(c *models.Comment) (int64, error) {
	var removed []models.Comment
	err := r.db.Select("id", "status").
		Where("id = ? OR parent_id = ?", c.ID, c.ID).
		Find(&removed).Error
	if err != nil {
		return 0, apperr.FromDB(err, "")
	}

	ids := make([]uint, 0, len(removed))
	var approved int64
	for _, rc := range removed {
		ids = append(ids, rc.ID)
		if rc.Status == models.StatusApproved {
			approved++
		}
	}
	if err := r.db.Where("comment_id IN ?", ids).Delete(&models.CommentLike{}).Error; err != nil {
		return 0, apperr.FromDB(err, "")
	}
	if err := r.db.Where("id IN ?", ids).Delete(&models.Comment{}).Error; err != nil {
		return 0, apperr.FromDB(err, "")
	}
	return approved, nil
}

// Like records a like on a comment and returns the new count.
func (r *CommentRepository) Like(id uint, userID *uint, ip string) (int64, error) {
	var n int64
	err := r.db.Model(&models.CommentLike{}).Scopes(likeScope(userID, ip)).
		Where("comment_id = ?", id).Count(&n).Error
	if err != nil {
		return 0, apperr.FromDB(err, "")
	}
	if n > 0 {
		return 0, apperr.Conflict("comment already liked")
	}
	if err := r.db.Create(&models.CommentLike{CommentID: id, UserID: userID, IPAddress: ip}).Error; err != nil {
		return 0, apperr.FromDB(err, "")
	}
	err = r.db.Model(&models.Comment{}).Where("id = ?", id).
		UpdateColumn("like_count", counterExpr("like_count", 1)).Error
	if err != nil {
		return 0, apperr.FromDB(err, "")
	}
	var c models.Comment
	if err := r.db.Select("like_count").First(&c, id).Error; err != nil {
		return 0, apperr.FromDB(err, "comment not found")
	}
	return c.LikeCount, nil
}

func (r *CommentRepository) CountApproved() (int64, error) {
	var n int64
	err := r.db.Model(&models.Comment{}).Where("status = ?", models.StatusApproved).Count(&n).Error
	return n, apperr.FromDB(err, "")
}
