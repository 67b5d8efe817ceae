// articles.go - Article listing, reading, editing and likes

package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"go-blog-backend/apperr"
	"go-blog-backend/cache"
	"go-blog-backend/middleware"
	"go-blog-backend/models"
	"go-blog-backend/repository"
	"go-blog-backend/schemas"
)

const homeArticlesPerCategory = 6

func (h *Handler) ListArticles(c *gin.Context) {
	var q schemas.ArticleQuery
	if !bindQuery(c, &q) {
		return
	}
	filter := repository.ArticleFilter{
		Public:     true,
		CategoryID: q.CategoryID,
		TagID:      q.TagID,
		AuthorID:   q.AuthorID,
		Keyword:    q.Keyword,
		Sort:       q.Sort,
	}
	articles, total, page, size, err := h.listArticles(c, filter, q.PageQuery)
	if err != nil {
		fail(c, err)
		return
	}
	records := make([]schemas.ArticleListItem, 0, len(articles))
	for i := range articles {
		records = append(records, schemas.NewArticleListItem(&articles[i]))
	}
	c.JSON(http.StatusOK, schemas.NewPaged(records, total, page, size))
}

// AdminListArticles includes drafts and hidden articles.
func (h *Handler) AdminListArticles(c *gin.Context) {
	var q schemas.ArticleAdminQuery
	if !bindQuery(c, &q) {
		return
	}
	filter := repository.ArticleFilter{
		Status:     q.Status,
		CategoryID: q.CategoryID,
		TagID:      q.TagID,
		AuthorID:   q.AuthorID,
		Keyword:    q.Keyword,
		Sort:       q.Sort,
	}
	articles, total, page, size, err := h.listArticles(c, filter, q.PageQuery)
	if err != nil {
		fail(c, err)
		return
	}
	records := make([]schemas.ArticleAdminItem, 0, len(articles))
	for i := range articles {
		records = append(records, schemas.NewArticleAdminItem(&articles[i]))
	}
	c.JSON(http.StatusOK, schemas.NewPaged(records, total, page, size))
}

func (h *Handler) listArticles(c *gin.Context, f repository.ArticleFilter, pq schemas.PageQuery) ([]models.Article, int64, int, int, error) {
	page, n, size := pageOf(pq)
	var articles []models.Article
	var total int64
	err := h.tx(c, func(tx *gorm.DB) error {
		var err error
		articles, total, err = repository.Articles(tx).List(f, page)
		return err
	})
	return articles, total, n, size, err
}

// HomeArticles returns the latest public articles of every category.
func (h *Handler) HomeArticles(c *gin.Context) {
	sections := []schemas.CategorySection{}
	err := h.tx(c, func(tx *gorm.DB) error {
		categories, err := repository.Categories(tx).List()
		if err != nil {
			return err
		}
		for _, cat := range categories {
			articles, err := repository.Articles(tx).Latest(cat.ID, homeArticlesPerCategory)
			if err != nil {
				return err
			}
			section := schemas.CategorySection{ID: cat.ID, Name: cat.Name, Articles: []schemas.ArticleListItem{}}
			for i := range articles {
				section.Articles = append(section.Articles, schemas.NewArticleListItem(&articles[i]))
			}
			sections = append(sections, section)
		}
		return nil
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sections)
}

// GetArticle serves one article by id or slug and counts the view.
// Protected content is withheld until unlocked; drafts are admin only.
func (h *Handler) GetArticle(c *gin.Context) {
	detail, err := h.loadDetail(c, c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	admin := isAdmin(c)
	if !detail.IsPublished && !admin {
		fail(c, apperr.NotFound("article not found"))
		return
	}

	detail.ViewCount = h.countView(c, detail.ID, detail.ViewCount)
	if !admin {
		*detail = detail.Locked()
	}
	c.JSON(http.StatusOK, detail)
}

// UnlockArticle returns the full article when the answer matches.
func (h *Handler) UnlockArticle(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var input schemas.UnlockRequest
	if !bindJSON(c, &input) {
		return
	}

	var article *models.Article
	err := h.tx(c, func(tx *gorm.DB) error {
		var err error
		article, err = repository.Articles(tx).ByID(id)
		return err
	})
	if err != nil {
		fail(c, err)
		return
	}
	if !article.IsPublished && !isAdmin(c) {
		fail(c, apperr.NotFound("article not found"))
		return
	}
	if article.IsProtected && !strings.EqualFold(strings.TrimSpace(input.Answer), strings.TrimSpace(article.ProtectionAnswer)) {
		fail(c, apperr.Forbidden("incorrect answer"))
		return
	}
	c.JSON(http.StatusOK, schemas.NewArticleDetail(article))
}

// loadDetail reads through the cache when addressed by id. A numeric ref
// that matches no id is retried as a slug.
func (h *Handler) loadDetail(c *gin.Context, ref string) (*schemas.ArticleDetail, error) {
	ctx := c.Request.Context()
	id, numErr := strconv.ParseUint(ref, 10, 32)
	byID := numErr == nil && id > 0

	if byID {
		var cached schemas.ArticleDetail
		ok, err := h.Cache.GetJSON(ctx, cache.ArticleKey(uint(id)), &cached)
		if err != nil {
			h.log(c).WithError(err).Warn("article cache read failed")
		}
		if ok {
			return &cached, nil
		}
	}

	var article *models.Article
	err := h.tx(c, func(tx *gorm.DB) error {
		var err error
		articles := repository.Articles(tx)
		if byID {
			article, err = articles.ByID(uint(id))
			if !apperr.Is(err, apperr.KindNotFound) {
				return err
			}
		}
		// numeric slugs such as "2024" land here after the id miss
		article, err = articles.BySlug(ref)
		return err
	})
	if err != nil {
		return nil, err
	}
	detail := schemas.NewArticleDetail(article)
	if err := h.Cache.SetJSON(ctx, cache.ArticleKey(article.ID), detail, h.Config.CacheTTL); err != nil {
		h.log(c).WithError(err).Warn("article cache write failed")
	}
	return &detail, nil
}

// countView bumps the view counter and returns the new value. With a cache
// the counter lives in Redis and is synced back by the view sync job;
// without one the database is updated directly.
func (h *Handler) countView(c *gin.Context, id uint, current int64) int64 {
	ctx := c.Request.Context()
	if h.Cache.Enabled() {
		key := cache.ArticleViewsKey(id)
		if _, err := h.Cache.SetNX(ctx, key, current); err == nil {
			if n, err := h.Cache.Incr(ctx, key); err == nil {
				return n
			}
		}
		h.log(c).WithField("article_id", id).Warn("view counter unavailable, writing to database")
	}

	err := h.tx(c, func(tx *gorm.DB) error {
		return repository.Articles(tx).AddViews(id, 1)
	})
	if err != nil {
		h.log(c).WithError(err).WithField("article_id", id).Warn("view count not recorded")
		return current
	}
	return current + 1
}

func (h *Handler) CreateArticle(c *gin.Context) {
	var input schemas.ArticleCreateRequest
	if !bindJSON(c, &input) {
		return
	}
	article := models.Article{
		Title:              strings.TrimSpace(input.Title),
		Slug:               input.Slug,
		Summary:            input.Summary,
		Content:            input.Content,
		Cover:              input.Cover,
		AuthorID:           mustUser(c).ID,
		CategoryID:         input.CategoryID,
		IsPublished:        input.IsPublished == nil || *input.IsPublished,
		IsTop:              input.IsTop,
		IsRecommend:        input.IsRecommend,
		IsHidden:           input.IsHidden,
		IsProtected:        input.IsProtected,
		ProtectionQuestion: input.ProtectionQuestion,
		ProtectionAnswer:   input.ProtectionAnswer,
	}

	var created *models.Article
	err := h.tx(c, func(tx *gorm.DB) error {
		articles := repository.Articles(tx)
		if err := articles.Create(&article, input.TagIDs); err != nil {
			return err
		}
		var err error
		created, err = articles.ByID(article.ID)
		return err
	})
	if err != nil {
		fail(c, err)
		return
	}
	h.log(c).WithField("article_id", created.ID).Info("article created")
	c.JSON(http.StatusCreated, schemas.NewArticleDetail(created))
}

func (h *Handler) UpdateArticle(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var input schemas.ArticleUpdateRequest
	if !bindJSON(c, &input) {
		return
	}

	var updated *models.Article
	err := h.tx(c, func(tx *gorm.DB) error {
		articles := repository.Articles(tx)
		a, err := articles.ByID(id)
		if err != nil {
			return err
		}
		if err := applyArticleUpdate(a, &input); err != nil {
			return err
		}
		if err := articles.Update(a, input.TagIDs); err != nil {
			return err
		}
		updated, err = articles.ByID(id)
		return err
	})
	if err != nil {
		fail(c, err)
		return
	}
	h.forget(c.Request.Context(), cache.ArticleKey(id))
	c.JSON(http.StatusOK, schemas.NewArticleDetail(updated))
}

func applyArticleUpdate(a *models.Article, in *schemas.ArticleUpdateRequest) error {
	setString := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	setBool := func(dst *bool, v *bool) {
		if v != nil {
			*dst = *v
		}
	}
	setString(&a.Title, in.Title)
	setString(&a.Slug, in.Slug)
	setString(&a.Summary, in.Summary)
	setString(&a.Content, in.Content)
	setString(&a.Cover, in.Cover)
	setString(&a.ProtectionQuestion, in.ProtectionQuestion)
	setString(&a.ProtectionAnswer, in.ProtectionAnswer)
	setBool(&a.IsPublished, in.IsPublished)
	setBool(&a.IsTop, in.IsTop)
	setBool(&a.IsRecommend, in.IsRecommend)
	setBool(&a.IsHidden, in.IsHidden)
	setBool(&a.IsProtected, in.IsProtected)
	if in.CategoryID != nil {
		if *in.CategoryID == 0 {
			a.CategoryID = nil
		} else {
			cid := *in.CategoryID
			a.CategoryID = &cid
		}
	}

	if a.IsProtected && (a.ProtectionQuestion == "" || a.ProtectionAnswer == "") {
		fields := map[string]string{}
		if a.ProtectionQuestion == "" {
			fields["protection_question"] = "is required"
		}
		if a.ProtectionAnswer == "" {
			fields["protection_answer"] = "is required"
		}
		return apperr.Validation("request validation failed", fields)
	}
	return nil
}

func (h *Handler) DeleteArticle(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.tx(c, func(tx *gorm.DB) error { return repository.Articles(tx).Delete(id) }); err != nil {
		fail(c, err)
		return
	}
	h.forget(c.Request.Context(), cache.ArticleKey(id), cache.ArticleViewsKey(id))
	h.log(c).WithField("article_id", id).Info("article deleted")
	c.Status(http.StatusNoContent)
}

// LikeArticle works for visitors too; anonymous likes are keyed by IP.
func (h *Handler) LikeArticle(c *gin.Context) {
	h.articleLike(c, func(r *repository.ArticleRepository, id uint, userID *uint, ip string) (bool, int64, error) {
		n, err := r.Like(id, userID, ip)
		return true, n, err
	})
}

func (h *Handler) UnlikeArticle(c *gin.Context) {
	h.articleLike(c, func(r *repository.ArticleRepository, id uint, userID *uint, ip string) (bool, int64, error) {
		n, err := r.Unlike(id, userID, ip)
		return false, n, err
	})
}

func (h *Handler) ArticleLikeStatus(c *gin.Context) {
	h.articleLike(c, func(r *repository.ArticleRepository, id uint, userID *uint, ip string) (bool, int64, error) {
		return r.LikeStatus(id, userID, ip)
	})
}

type likeOp func(r *repository.ArticleRepository, id uint, userID *uint, ip string) (bool, int64, error)

func (h *Handler) articleLike(c *gin.Context, op likeOp) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	userID := middleware.CurrentUserID(c)
	var resp schemas.LikeResponse
	err := h.tx(c, func(tx *gorm.DB) error {
		articles := repository.Articles(tx)
		visible, err := articles.Exists(id, true)
		if err != nil {
			return err
		}
		if !visible {
			return apperr.NotFound("article not found")
		}
		resp.Liked, resp.LikeCount, err = op(articles, id, userID, c.ClientIP())
		return err
	})
	if err != nil {
		fail(c, err)
		return
	}
	if c.Request.Method != http.MethodGet {
		h.forget(c.Request.Context(), cache.ArticleKey(id))
	}
	c.JSON(http.StatusOK, resp)
}
