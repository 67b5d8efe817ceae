// site.go - Site settings, changelog and resource storage

package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"go-blog-backend/apperr"
	"go-blog-backend/models"
)

type SiteRepository struct {
	db *gorm.DB
}

func Site(db *gorm.DB) *SiteRepository { return &SiteRepository{db: db} }

// Get returns the settings row, or NotFound before it was first saved.
func (r *SiteRepository) Get() (*models.SiteInfo, error) {
	var s models.SiteInfo
	if err := r.db.First(&s, models.SiteInfoID).Error; err != nil {
		return nil, apperr.FromDB(err, "site settings not found")
	}
	return &s, nil
}

// Save upserts the singleton row.
func (r *SiteRepository) Save(s *models.SiteInfo) error {
	s.ID = models.SiteInfoID
	err := r.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(s).Error
	return apperr.FromDB(err, "")
}

type ChangelogRepository struct {
	db *gorm.DB
}

func Changelogs(db *gorm.DB) *ChangelogRepository { return &ChangelogRepository{db: db} }

func (r *ChangelogRepository) List(page Page) ([]models.Changelog, int64, error) {
	var total int64
	if err := r.db.Model(&models.Changelog{}).Count(&total).Error; err != nil {
		return nil, 0, apperr.FromDB(err, "")
	}
	var logs []models.Changelog
	err := r.db.Scopes(page.scope).Order("created_at DESC").Order("id DESC").Find(&logs).Error
	if err != nil {
		return nil, 0, apperr.FromDB(err, "")
	}
	return logs, total, nil
}

func (r *ChangelogRepository) ByID(id uint) (*models.Changelog, error) {
	var c models.Changelog
	if err := r.db.First(&c, id).Error; err != nil {
		return nil, apperr.FromDB(err, "changelog not found")
	}
	return &c, nil
}

func (r *ChangelogRepository) Create(c *models.Changelog) error {
	return apperr.FromDB(r.db.Create(c).Error, "")
}

func (r *ChangelogRepository) Save(c *models.Changelog) error {
	return apperr.FromDB(r.db.Save(c).Error, "changelog not found")
}

// Delete removes the entry and the comments left on it.
func (r *ChangelogRepository) Delete(id uint) error {
	comments := r.db.Model(&models.Comment{}).Select("id").
		Where("content_type = ? AND content_id = ?", models.ContentChangelog, id)
	if err := r.db.Where("comment_id IN (?)", comments).Delete(&models.CommentLike{}).Error; err != nil {
		return apperr.FromDB(err, "")
	}
	err := r.db.Where("content_type = ? AND content_id = ?", models.ContentChangelog, id).
		Delete(&models.Comment{}).Error
	if err != nil {
		return apperr.FromDB(err, "")
	}
	return deleteByID(r.db, &models.Changelog{}, id, "changelog not found")
}

func (r *ChangelogRepository) Exists(id uint) (bool, error) {
	var n int64
	if err := r.db.Model(&models.Changelog{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, apperr.FromDB(err, "")
	}
	return n > 0, nil
}

type ResourceRepository struct {
	db *gorm.DB
}

func Resources(db *gorm.DB) *ResourceRepository { return &ResourceRepository{db: db} }

func (r *ResourceRepository) List(mediaType string, page Page) ([]models.Resource, int64, error) {
	filter := func(db *gorm.DB) *gorm.DB {
		if mediaType != "" {
			return db.Where("media_type = ?", mediaType)
		}
		return db
	}

	var total int64
	if err := r.db.Model(&models.Resource{}).Scopes(filter).Count(&total).Error; err != nil {
		return nil, 0, apperr.FromDB(err, "")
	}
	var resources []models.Resource
	err := r.db.Scopes(filter, page.scope).Order("created_at DESC").Order("id DESC").Find(&resources).Error
	if err != nil {
		return nil, 0, apperr.FromDB(err, "")
	}
	return resources, total, nil
}

func (r *ResourceRepository) ByID(id uint) (*models.Resource, error) {
	var res models.Resource
	if err := r.db.First(&res, id).Error; err != nil {
		return nil, apperr.FromDB(err, "resource not found")
	}
	return &res, nil
}

func (r *ResourceRepository) Create(res *models.Resource) error {
	return apperr.FromDB(r.db.Create(res).Error, "")
}

func (r *ResourceRepository) Delete(id uint) error {
	return deleteByID(r.db, &models.Resource{}, id, "resource not found")
}
