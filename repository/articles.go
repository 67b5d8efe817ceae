// articles.go - Article storage, filtering, likes and counters

package repository

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"go-blog-backend/apperr"
	"go-blog-backend/models"
)

// Sort orders for article lists.
const (
	SortNew       = "new"
	SortHot       = "hot"
	SortRecommend = "recommend"
)

// Admin status filters.
const (
	StatusPublished = "published"
	StatusDraft     = "draft"
	StatusHidden    = "hidden"
)

// ArticleFilter narrows an article list. Public lists only see published
// articles that are not hidden.
type ArticleFilter struct {
	Public     bool
	Status     string
	CategoryID uint
	TagID      uint
	AuthorID   uint
	Keyword    string
	Sort       string
}

func (f ArticleFilter) scope(db *gorm.DB) *gorm.DB {
	if f.Public {
		db = db.Where("is_published = ? AND is_hidden = ?", true, false)
	}
	switch f.Status {
	case StatusPublished:
		db = db.Where("is_published = ?", true)
	case StatusDraft:
		db = db.Where("is_published = ?", false)
	case StatusHidden:
		db = db.Where("is_hidden = ?", true)
	}
	if f.CategoryID > 0 {
		db = db.Where("category_id = ?", f.CategoryID)
	}
	if f.AuthorID > 0 {
		db = db.Where("author_id = ?", f.AuthorID)
	}
	if f.TagID > 0 {
		db = db.Where("id IN (?)",
			db.Session(&gorm.Session{NewDB: true}).Table("article_tags").Select("article_id").Where("tag_id = ?", f.TagID))
	}
	if f.Keyword != "" {
		p := likePattern(f.Keyword)
		db = db.Where("(title LIKE ? OR summary LIKE ?)", p, p)
	}
	return db
}

func (f ArticleFilter) order(db *gorm.DB) *gorm.DB {
	switch f.Sort {
	case SortHot:
		db = db.Order("view_count DESC").Order("like_count DESC")
	case SortRecommend:
		db = db.Order("is_recommend DESC")
	default:
		db = db.Order("is_top DESC")
	}
	return db.Order("created_at DESC").Order("id DESC")
}

type ArticleRepository struct {
	db *gorm.DB
}

func Articles(db *gorm.DB) *ArticleRepository { return &ArticleRepository{db: db} }

func (r *ArticleRepository) List(f ArticleFilter, page Page) ([]models.Article, int64, error) {
	var total int64
	if err := r.db.Model(&models.Article{}).Scopes(f.scope).Count(&total).Error; err != nil {
		return nil, 0, apperr.FromDB(err, "")
	}
	var articles []models.Article
	err := r.db.Model(&models.Article{}).
		Scopes(f.scope, f.order, page.scope).
		Preload("Category").Preload("Author").
		Find(&articles).Error
	if err != nil {
		return nil, 0, apperr.FromDB(err, "")
	}
	return articles, total, nil
}

func (r *ArticleRepository) withRelations() *gorm.DB {
	return r.db.Preload("Category").Preload("Author").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.id") })
}

func (r *ArticleRepository) ByID(id uint) (*models.Article, error) {
	var a models.Article
	if err := r.withRelations().First(&a, id).Error; err != nil {
		return nil, apperr.FromDB(err, "article not found")
	}
	return &a, nil
}

func (r *ArticleRepository) BySlug(slug string) (*models.Article, error) {
	var a models.Article
	if err := r.withRelations().Where("slug = ?", slug).First(&a).Error; err != nil {
		return nil, apperr.FromDB(err, "article not found")
	}
	return &a, nil
}

// Exists reports whether the article exists and, when public is set,
// whether visitors may see it.
func (r *ArticleRepository) Exists(id uint, public bool) (bool, error) {
	q := r.db.Model(&models.Article{}).Where("id = ?", id)
	if public {
		q = q.Where("is_published = ?", true)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, apperr.FromDB(err, "")
	}
	return n > 0, nil
}

// Create stores a new article with its tags. The slug is derived from the
// title when empty.
func (r *ArticleRepository) Create(a *models.Article, tagIDs []uint) error {
	if err := r.checkCategory(a.CategoryID); err != nil {
		return err
	}
	tags, err := Tags(r.db).FindByIDs(tagIDs)
	if err != nil {
		return err
	}
	if err := r.assignSlug(a); err != nil {
		return err
	}
	a.Tags = tags
	return apperr.FromDB(r.db.Omit("Author", "Category", "Tags.*").Create(a).Error, "")
}

// Update writes every column of a and, when tagIDs is non-nil, replaces
// its tag set.
func (r *ArticleRepository) Update(a *models.Article, tagIDs *[]uint) error {
	if err := r.checkCategory(a.CategoryID); err != nil {
		return err
	}
	if err := r.assignSlug(a); err != nil {
		return err
	}
	a.Category = nil
	if err := r.db.Omit("Author", "Category", "Tags").Save(a).Error; err != nil {
		return apperr.FromDB(err, "article not found")
	}
	if tagIDs == nil {
		return nil
	}
	tags, err := Tags(r.db).FindByIDs(*tagIDs)
	if err != nil {
		return err
	}
	if err := r.db.Model(a).Association("Tags").Replace(tags); err != nil {
		return apperr.FromDB(err, "")
	}
	a.Tags = tags
	return nil
}

func (r *ArticleRepository) checkCategory(id *uint) error {
	if id == nil {
		return nil
	}
	ok, err := Categories(r.db).Exists(*id)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Validation("request validation failed", map[string]string{
			"category_id": fmt.Sprintf("category %d does not exist", *id),
		})
	}
	return nil
}

func (r *ArticleRepository) assignSlug(a *models.Article) error {
	if a.Slug != "" {
		used, err := taken(r.db, &models.Article{}, "slug", a.Slug, a.ID)
		if err != nil {
			return err
		}
		if used {
			return apperr.Conflict("slug already in use")
		}
		return nil
	}

	base := Slugify(a.Title)
	if base == "" {
		base = "post-" + uuid.NewString()[:8]
	}
	slug := base
	for n := 2; ; n++ {
		used, err := taken(r.db, &models.Article{}, "slug", slug, a.ID)
		if err != nil {
			return err
		}
		if !used {
			a.Slug = slug
			return nil
		}
		slug = fmt.Sprintf("%s-%d", base, n)
	}
}

// Slugify keeps ASCII letters and digits and joins the words with hyphens.
func Slugify(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(title) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if len(slug) > 200 {
		slug = strings.TrimSuffix(slug[:200], "-")
	}
	return slug
}

// Delete removes the article together with its likes, comments (and their
// likes) and tag links.
func (r *ArticleRepository) Delete(id uint) error {
	a := models.Article{ID: id}
	if ok, err := r.Exists(id, false); err != nil {
		return err
	} else if !ok {
		return apperr.NotFound("article not found")
	}

	comments := r.db.Model(&models.Comment{}).Select("id").
		Where("content_type = ? AND content_id = ?", models.ContentArticle, id)
	steps := []func() error{
		func() error { return r.db.Where("comment_id IN (?)", comments).Delete(&models.CommentLike{}).Error },
		func() error {
			return r.db.Where("content_type = ? AND content_id = ?", models.ContentArticle, id).Delete(&models.Comment{}).Error
		},
		func() error { return r.db.Where("article_id = ?", id).Delete(&models.ArticleLike{}).Error },
		func() error { return r.db.Model(&a).Association("Tags").Clear() },
		func() error { return r.db.Delete(&a).Error },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return apperr.FromDB(err, "article not found")
		}
	}
	return nil
}

// Latest returns the newest public articles of a category.
func (r *ArticleRepository) Latest(categoryID uint, limit int) ([]models.Article, error) {
	f := ArticleFilter{Public: true, CategoryID: categoryID}
	var articles []models.Article
	err := r.db.Model(&models.Article{}).
		Scopes(f.scope).
		Preload("Category").Preload("Author").
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&articles).Error
	return articles, apperr.FromDB(err, "")
}

// AddViews bumps the view counter without touching updated_at.
func (r *ArticleRepository) AddViews(id uint, delta int64) error {
	err := r.db.Model(&models.Article{}).Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", delta)).Error
	return apperr.FromDB(err, "")
}

// RaiseViews sets the view counter to n unless it is already higher.
func (r *ArticleRepository) RaiseViews(id uint, n int64) (bool, error) {
	res := r.db.Model(&models.Article{}).Where("id = ? AND view_count < ?", id, n).
		UpdateColumn("view_count", n)
	if res.Error != nil {
		return false, apperr.FromDB(res.Error, "")
	}
	return res.RowsAffected > 0, nil
}

// AddComments adjusts the approved comment counter.
func (r *ArticleRepository) AddComments(id uint, delta int64) error {
	if delta == 0 {
		return nil
	}
	err := r.db.Model(&models.Article{}).Where("id = ?", id).
		UpdateColumn("comment_count", counterExpr("comment_count", delta)).Error
	return apperr.FromDB(err, "")
}

// Like records a like and returns the new like count. Liking twice is a
// conflict.
func (r *ArticleRepository) Like(id uint, userID *uint, ip string) (int64, error) {
	liked, count, err := r.LikeStatus(id, userID, ip)
	if err != nil {
		return 0, err
	}
	if liked {
		return count, apperr.Conflict("article already liked")
	}
	if err := r.db.Create(&models.ArticleLike{ArticleID: id, UserID: userID, IPAddress: ip}).Error; err != nil {
		return 0, apperr.FromDB(err, "")
	}
	return r.bumpLikes(id, 1)
}

func (r *ArticleRepository) Unlike(id uint, userID *uint, ip string) (int64, error) {
	res := r.db.Scopes(likeScope(userID, ip)).Where("article_id = ?", id).Delete(&models.ArticleLike{})
	if res.Error != nil {
		return 0, apperr.FromDB(res.Error, "")
	}
	if res.RowsAffected == 0 {
		return 0, apperr.NotFound("like not found")
	}
	return r.bumpLikes(id, -1)
}

// LikeStatus reports whether the caller liked the article and its count.
func (r *ArticleRepository) LikeStatus(id uint, userID *uint, ip string) (bool, int64, error) {
	var a models.Article
	if err := r.db.Select("id", "like_count").First(&a, id).Error; err != nil {
		return false, 0, apperr.FromDB(err, "article not found")
	}
	var n int64
	err := r.db.Model(&models.ArticleLike{}).Scopes(likeScope(userID, ip)).
		Where("article_id = ?", id).Count(&n).Error
	if err != nil {
		return false, 0, apperr.FromDB(err, "")
	}
	return n > 0, a.LikeCount, nil
}

func (r *ArticleRepository) bumpLikes(id uint, delta int64) (int64, error) {
	err := r.db.Model(&models.Article{}).Where("id = ?", id).
		UpdateColumn("like_count", counterExpr("like_count", delta)).Error
	if err != nil {
		return 0, apperr.FromDB(err, "")
	}
	var a models.Article
	if err := r.db.Select("like_count").First(&a, id).Error; err != nil {
		return 0, apperr.FromDB(err, "article not found")
	}
	return a.LikeCount, nil
}

// PublicTotals returns the number of public articles and their summed views.
func (r *ArticleRepository) PublicTotals() (count, views int64, err error) {
	var row struct {
		Count int64
		Views int64
	}
	err = r.db.Model(&models.Article{}).
		Scopes(ArticleFilter{Public: true}.scope).
		Select("COUNT(*) AS count, COALESCE(SUM(view_count), 0) AS views").
		Scan(&row).Error
	if err != nil {
		return 0, 0, apperr.FromDB(err, "")
	}
	return row.Count, row.Views, nil
}
