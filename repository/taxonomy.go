// taxonomy.go - Category and tag storage

package repository

import (
	"fmt"

	"gorm.io/gorm"

	"go-blog-backend/apperr"
	"go-blog-backend/config"
	"go-blog-backend/models"
)

type CategoryRepository struct {
	db *gorm.DB
}

func Categories(db *gorm.DB) *CategoryRepository { return &CategoryRepository{db: db} }

func (r *CategoryRepository) List() ([]models.Category, error) {
	var categories []models.Category
	err := r.db.Order("sort_order ASC").Order("id ASC").Find(&categories).Error
	return categories, apperr.FromDB(err, "")
}

// ArticleCounts maps category id to its number of public articles.
func (r *CategoryRepository) ArticleCounts() (map[uint]int64, error) {
	var rows []struct {
		CategoryID uint
		N          int64
	}
	err := r.db.Model(&models.Article{}).
		Select("category_id, COUNT(*) AS n").
		Where("category_id IS NOT NULL").
		Scopes(ArticleFilter{Public: true}.scope).
		Group("category_id").
		Scan(&rows).Error
	if err != nil {
		return nil, apperr.FromDB(err, "")
	}
	counts := make(map[uint]int64, len(rows))
	for _, row := range rows {
		counts[row.CategoryID] = row.N
	}
	return counts, nil
}

func (r *CategoryRepository) ByID(id uint) (*models.Category, error) {
	var c models.Category
	if err := r.db.First(&c, id).Error; err != nil {
		return nil, apperr.FromDB(err, "category not found")
	}
	return &c, nil
}

func (r *CategoryRepository) Exists(id uint) (bool, error) {
	var n int64
	if err := r.db.Model(&models.Category{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, apperr.FromDB(err, "")
	}
	return n > 0, nil
}

func (r *CategoryRepository) Create(c *models.Category) error {
	if err := r.checkName(c); err != nil {
		return err
	}
	return apperr.FromDB(r.db.Create(c).Error, "")
}

func (r *CategoryRepository) Save(c *models.Category) error {
	if err := r.checkName(c); err != nil {
		return err
	}
	return apperr.FromDB(r.db.Save(c).Error, "category not found")
}

func (r *CategoryRepository) checkName(c *models.Category) error {
	used, err := taken(r.db, &models.Category{}, "name", c.Name, c.ID)
	if err != nil {
		return err
	}
	if used {
		return apperr.Conflict("category name already exists")
	}
	return nil
}

// Delete removes a category. Articles that still point at it either block
// the delete or are detached, depending on policy.
func (r *CategoryRepository) Delete(id uint, policy string) error {
	if ok, err := r.Exists(id); err != nil {
		return err
	} else if !ok {
		return apperr.NotFound("category not found")
	}

	var n int64
	if err := r.db.Model(&models.Article{}).Where("category_id = ?", id).Count(&n).Error; err != nil {
		return apperr.FromDB(err, "")
	}
	if n > 0 {
		if policy != config.CategoryDeleteNullify {
			return apperr.Conflict(fmt.Sprintf("category still has %d articles", n))
		}
		err := r.db.Model(&models.Article{}).Where("category_id = ?", id).
			UpdateColumn("category_id", nil).Error
		if err != nil {
			return apperr.FromDB(err, "")
		}
	}
	return deleteByID(r.db, &models.Category{}, id, "category not found")
}

type TagRepository struct {
	db *gorm.DB
}

func Tags(db *gorm.DB) *TagRepository { return &TagRepository{db: db} }

func (r *TagRepository) List() ([]models.Tag, error) {
	var tags []models.Tag
	err := r.db.Order("name ASC").Order("id ASC").Find(&tags).Error
	return tags, apperr.FromDB(err, "")
}

func (r *TagRepository) ByID(id uint) (*models.Tag, error) {
	var t models.Tag
	if err := r.db.First(&t, id).Error; err != nil {
		return nil, apperr.FromDB(err, "tag not found")
	}
	return &t, nil
}

// FindByIDs loads the given tags and fails if any id is unknown.
func (r *TagRepository) FindByIDs(ids []uint) ([]models.Tag, error) {
	if len(ids) == 0 {
		return []models.Tag{}, nil
	}
	unique := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		unique[id] = struct{}{}
	}
	var tags []models.Tag
	if err := r.db.Where("id IN ?", ids).Order("id").Find(&tags).Error; err != nil {
		return nil, apperr.FromDB(err, "")
	}
	if len(tags) != len(unique) {
		found := make(map[uint]bool, len(tags))
		for _, t := range tags {
			found[t.ID] = true
		}
		for _, id := range ids {
			if !found[id] {
				return nil, apperr.Validation("request validation failed", map[string]string{
					"tag_ids": fmt.Sprintf("tag %d does not exist", id),
				})
			}
		}
	}
	return tags, nil
}

func (r *TagRepository) Create(t *models.Tag) error {
	if err := r.checkName(t); err != nil {
		return err
	}
	return apperr.FromDB(r.db.Create(t).Error, "")
}

func (r *TagRepository) Save(t *models.Tag) error {
	if err := r.checkName(t); err != nil {
		return err
	}
	return apperr.FromDB(r.db.Save(t).Error, "tag not found")
}

func (r *TagRepository) checkName(t *models.Tag) error {
	used, err := taken(r.db, &models.Tag{}, "name", t.Name, t.ID)
	if err != nil {
		return err
	}
	if used {
		return apperr.Conflict("tag name already exists")
	}
	return nil
}

// Delete removes a tag. Under the block policy a tag still attached to
// articles is a conflict; under detach the links are dropped first.
func (r *TagRepository) Delete(id uint, policy string) error {
	if _, err := r.ByID(id); err != nil {
		return err
	}

	var n int64
	if err := r.db.Table("article_tags").Where("tag_id = ?", id).Count(&n).Error; err != nil {
		return apperr.FromDB(err, "")
	}
	if n > 0 {
		if policy == config.TagDeleteBlock {
			return apperr.Conflict(fmt.Sprintf("tag is still used by %d articles", n))
		}
		if err := r.db.Exec("DELETE FROM article_tags WHERE tag_id = ?", id).Error; err != nil {
			return apperr.FromDB(err, "")
		}
	}
	return deleteByID(r.db, &models.Tag{}, id, "tag not found")
}

func (r *TagRepository) Count() (int64, error) {
	var n int64
	err := r.db.Model(&models.Tag{}).Count(&n).Error
	return n, apperr.FromDB(err, "")
}

func (r *CategoryRepository) Count() (int64, error) {
	var n int64
	err := r.db.Model(&models.Category{}).Count(&n).Error
	return n, apperr.FromDB(err, "")
}
