// resources.go - Uploaded media library

package handlers

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"go-blog-backend/apperr"
	"go-blog-backend/cache"
	"go-blog-backend/models"
	"go-blog-backend/repository"
	"go-blog-backend/schemas"
	"go-blog-backend/storage"
)

// UploadResource stores the multipart field "file" and records it. The
// content type is sniffed from the bytes, not taken from the client.
func (h *Handler) UploadResource(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.Config.UploadMaxBytes+1<<20)
	header, err := c.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			fail(c, apperr.Validation("request validation failed", map[string]string{"file": "file is too large"}))
			return
		}
		fail(c, apperr.Validation("request validation failed", map[string]string{"file": "is required"}))
		return
	}
	if header.Size > h.Config.UploadMaxBytes {
		fail(c, apperr.Validation("request validation failed", map[string]string{"file": "file is too large"}))
		return
	}

	file, err := header.Open()
	if err != nil {
		fail(c, apperr.Internal(err))
		return
	}
	defer file.Close()

	mime, err := mimetype.DetectReader(file)
	if err != nil {
		fail(c, apperr.Internal(err))
		return
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		fail(c, apperr.Internal(err))
		return
	}

	ctx := c.Request.Context()
	key := storage.NewKey(header.Filename, h.now())
	url, err := h.Store.Put(ctx, key, file, header.Size, mime.String())
	if err != nil {
		h.log(c).WithError(err).WithField("key", key).Error("store upload")
		fail(c, apperr.Internal(err))
		return
	}

	uid := mustUser(c).ID
	res := models.Resource{
		Filename:  filepath.Base(header.Filename),
		Key:       key,
		URL:       url,
		MediaType: storage.MediaType(mime.String()),
		MimeType:  mime.String(),
		Size:      header.Size,
		UserID:    &uid,
	}
	if err := h.tx(c, func(tx *gorm.DB) error { return repository.Resources(tx).Create(&res) }); err != nil {
		if derr := h.Store.Delete(ctx, key); derr != nil {
			h.log(c).WithError(derr).WithField("key", key).Warn("orphaned upload left in storage")
		}
		fail(c, err)
		return
	}
	h.bumpResourceVersion(c)
	c.JSON(http.StatusCreated, schemas.NewResourceResponse(&res))
}

// ListResources pages through the media library. Pages are cached under a
// version number that every upload or delete bumps.
func (h *Handler) ListResources(c *gin.Context) {
	var q schemas.ResourceQuery
	if !bindQuery(c, &q) {
		return
	}
	page, n, size := pageOf(q.PageQuery)
	ctx := c.Request.Context()

	version, _, err := h.Cache.GetInt(ctx, cache.ResourceListVersion)
	if err != nil {
		h.log(c).WithError(err).Warn("resource list version unavailable")
	}
	key := cache.ResourceListKey(version, q.Type, n, size)
	var out schemas.Paged[schemas.ResourceResponse]
	if err == nil {
		if ok, err := h.Cache.GetJSON(ctx, key, &out); err == nil && ok {
			c.JSON(http.StatusOK, out)
			return
		}
	}

	var resources []models.Resource
	var total int64
	err = h.tx(c, func(tx *gorm.DB) error {
		var err error
		resources, total, err = repository.Resources(tx).List(q.Type, page)
		return err
	})
	if err != nil {
		fail(c, err)
		return
	}
	records := make([]schemas.ResourceResponse, 0, len(resources))
	for i := range resources {
		records = append(records, schemas.NewResourceResponse(&resources[i]))
	}
	out = schemas.NewPaged(records, total, n, size)
	if err := h.Cache.SetJSON(ctx, key, out, h.Config.CacheTTL); err != nil {
		h.log(c).WithError(err).Warn("resource list cache write failed")
	}
	c.JSON(http.StatusOK, out)
}

// DeleteResource drops the record first, then the stored object.
func (h *Handler) DeleteResource(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var res *models.Resource
	err := h.tx(c, func(tx *gorm.DB) error {
		resources := repository.Resources(tx)
		var err error
		if res, err = resources.ByID(id); err != nil {
			return err
		}
		return resources.Delete(id)
	})
	if err != nil {
		fail(c, err)
		return
	}
	if err := h.Store.Delete(c.Request.Context(), res.Key); err != nil {
		h.log(c).WithError(err).WithField("key", res.Key).Warn("stored object not removed")
	}
	h.bumpResourceVersion(c)
	c.Status(http.StatusNoContent)
}

func (h *Handler) bumpResourceVersion(c *gin.Context) {
	if !h.Cache.Enabled() {
		return
	}
	if _, err := h.Cache.Incr(c.Request.Context(), cache.ResourceListVersion); err != nil {
		h.log(c).WithError(err).Warn("resource list cache not invalidated")
	}
}
