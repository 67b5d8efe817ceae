// site.go - Site settings, statistics and changelog endpoints

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"go-blog-backend/apperr"
	"go-blog-backend/cache"
	"go-blog-backend/models"
	"go-blog-backend/repository"
	"go-blog-backend/schemas"
)

// GetSiteConfig serves the saved settings, or the defaults before an
// administrator has saved any.
func (h *Handler) GetSiteConfig(c *gin.Context) {
	ctx := c.Request.Context()
	var cfg schemas.SiteConfig
	if ok, err := h.Cache.GetJSON(ctx, cache.SiteConfigKey, &cfg); err != nil {
		h.log(c).WithError(err).Warn("site config cache read failed")
	} else if ok {
		c.JSON(http.StatusOK, cfg)
		return
	}

	err := h.tx(c, func(tx *gorm.DB) error {
		info, err := repository.Site(tx).Get()
		switch {
		case apperr.Is(err, apperr.KindNotFound):
			cfg = schemas.DefaultSiteConfig()
			return nil
		case err != nil:
			return err
		}
		cfg = schemas.NewSiteConfig(info)
		return nil
	})
	if err != nil {
		fail(c, err)
		return
	}
	if err := h.Cache.SetJSON(ctx, cache.SiteConfigKey, cfg, h.Config.CacheTTL); err != nil {
		h.log(c).WithError(err).Warn("site config cache write failed")
	}
	c.JSON(http.StatusOK, cfg)
}

func (h *Handler) UpdateSiteConfig(c *gin.Context) {
	var input schemas.SiteConfig
	if !bindJSON(c, &input) {
		return
	}
	info := input.Model()
	if err := h.tx(c, func(tx *gorm.DB) error { return repository.Site(tx).Save(info) }); err != nil {
		fail(c, err)
		return
	}
	h.forget(c.Request.Context(), cache.SiteConfigKey)
	h.log(c).Info("site config updated")
	c.JSON(http.StatusOK, schemas.NewSiteConfig(info))
}

// SiteStats counts public content. Views not yet synced from the cache
// are not included.
func (h *Handler) SiteStats(c *gin.Context) {
	var stats schemas.SiteStats
	err := h.tx(c, func(tx *gorm.DB) error {
		var err error
		if stats.ArticleCount, stats.ViewCount, err = repository.Articles(tx).PublicTotals(); err != nil {
			return err
		}
		if stats.CategoryCount, err = repository.Categories(tx).Count(); err != nil {
			return err
		}
		if stats.TagCount, err = repository.Tags(tx).Count(); err != nil {
			return err
		}
		stats.CommentCount, err = repository.Comments(tx).CountApproved()
		return err
	})
	if err != nil {
		fail(c, err)
		return
	}
	if days := int(h.now().Sub(h.Config.SiteStartDate).Hours() / 24); days > 0 {
		stats.RunDays = days
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) ListChangelogs(c *gin.Context) {
	var q schemas.PageQuery
	if !bindQuery(c, &q) {
		return
	}
	page, n, size := pageOf(q)
	var logs []models.Changelog
	var total int64
	err := h.tx(c, func(tx *gorm.DB) error {
		var err error
		logs, total, err = repository.Changelogs(tx).List(page)
		return err
	})
	if err != nil {
		fail(c, err)
		return
	}
	records := make([]schemas.ChangelogResponse, 0, len(logs))
	for i := range logs {
		records = append(records, schemas.NewChangelogResponse(&logs[i]))
	}
	c.JSON(http.StatusOK, schemas.NewPaged(records, total, n, size))
}

func (h *Handler) CreateChangelog(c *gin.Context) {
	var input schemas.ChangelogRequest
	if !bindJSON(c, &input) {
		return
	}
	entry := models.Changelog{Version: input.Version, Content: input.Content}
	if err := h.tx(c, func(tx *gorm.DB) error { return repository.Changelogs(tx).Create(&entry) }); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, schemas.NewChangelogResponse(&entry))
}

func (h *Handler) UpdateChangelog(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var input schemas.ChangelogRequest
	if !bindJSON(c, &input) {
		return
	}
	var entry *models.Changelog
	err := h.tx(c, func(tx *gorm.DB) error {
		logs := repository.Changelogs(tx)
		var err error
		if entry, err = logs.ByID(id); err != nil {
			return err
		}
		entry.Version = input.Version
		entry.Content = input.Content
		return logs.Save(entry)
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, schemas.NewChangelogResponse(entry))
}

// DeleteChangelog also removes the comments left on the entry.
func (h *Handler) DeleteChangelog(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.tx(c, func(tx *gorm.DB) error { return repository.Changelogs(tx).Delete(id) }); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
