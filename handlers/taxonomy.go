// taxonomy.go - Category and tag endpoints

package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"go-blog-backend/models"
	"go-blog-backend/repository"
	"go-blog-backend/schemas"
)

// ListCategories returns every category with its public article count.
func (h *Handler) ListCategories(c *gin.Context) {
	var out []schemas.CategoryResponse
	err := h.tx(c, func(tx *gorm.DB) error {
		repo := repository.Categories(tx)
		categories, err := repo.List()
		if err != nil {
			return err
		}
		counts, err := repo.ArticleCounts()
		if err != nil {
			return err
		}
		out = make([]schemas.CategoryResponse, 0, len(categories))
		for i := range categories {
			out = append(out, schemas.NewCategoryResponse(&categories[i], counts[categories[i].ID]))
		}
		return nil
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) GetCategory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var out schemas.CategoryResponse
	err := h.tx(c, func(tx *gorm.DB) error {
		repo := repository.Categories(tx)
		cat, err := repo.ByID(id)
		if err != nil {
			return err
		}
		counts, err := repo.ArticleCounts()
		if err != nil {
			return err
		}
		out = schemas.NewCategoryResponse(cat, counts[id])
		return nil
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) CreateCategory(c *gin.Context) {
	var input schemas.CategoryRequest
	if !bindJSON(c, &input) {
		return
	}
	cat := models.Category{
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		SortOrder:   input.SortOrder,
	}
	if err := h.tx(c, func(tx *gorm.DB) error { return repository.Categories(tx).Create(&cat) }); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, schemas.NewCategoryResponse(&cat, 0))
}

func (h *Handler) UpdateCategory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var input schemas.CategoryRequest
	if !bindJSON(c, &input) {
		return
	}
	var out schemas.CategoryResponse
	err := h.tx(c, func(tx *gorm.DB) error {
		repo := repository.Categories(tx)
		cat, err := repo.ByID(id)
		if err != nil {
			return err
		}
		cat.Name = strings.TrimSpace(input.Name)
		cat.Description = input.Description
		cat.SortOrder = input.SortOrder
		if err := repo.Save(cat); err != nil {
			return err
		}
		counts, err := repo.ArticleCounts()
		if err != nil {
			return err
		}
		out = schemas.NewCategoryResponse(cat, counts[id])
		return nil
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// DeleteCategory applies the configured policy to articles that still
// reference the category.
func (h *Handler) DeleteCategory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	policy := h.Config.CategoryDeletePolicy
	if err := h.tx(c, func(tx *gorm.DB) error { return repository.Categories(tx).Delete(id, policy) }); err != nil {
		fail(c, err)
		return
	}
	h.log(c).WithField("category_id", id).WithField("policy", policy).Info("category deleted")
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListTags(c *gin.Context) {
	var tags []models.Tag
	err := h.tx(c, func(tx *gorm.DB) error {
		var err error
		tags, err = repository.Tags(tx).List()
		return err
	})
	if err != nil {
		fail(c, err)
		return
	}
	out := make([]schemas.TagResponse, 0, len(tags))
	for i := range tags {
		out = append(out, schemas.NewTagResponse(&tags[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) GetTag(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var tag *models.Tag
	err := h.tx(c, func(tx *gorm.DB) error {
		var err error
		tag, err = repository.Tags(tx).ByID(id)
		return err
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, schemas.NewTagResponse(tag))
}

func (h *Handler) CreateTag(c *gin.Context) {
	var input schemas.TagRequest
	if !bindJSON(c, &input) {
		return
	}
	tag := models.Tag{Name: strings.TrimSpace(input.Name), Color: input.Color}
	if tag.Color == "" {
		tag.Color = models.DefaultTagColor
	}
	if err := h.tx(c, func(tx *gorm.DB) error { return repository.Tags(tx).Create(&tag) }); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, schemas.NewTagResponse(&tag))
}

func (h *Handler) UpdateTag(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var input schemas.TagRequest
	if !bindJSON(c, &input) {
		return
	}
	var tag *models.Tag
	err := h.tx(c, func(tx *gorm.DB) error {
		repo := repository.Tags(tx)
		var err error
		if tag, err = repo.ByID(id); err != nil {
			return err
		}
		tag.Name = strings.TrimSpace(input.Name)
		if input.Color != "" {
			tag.Color = input.Color
		}
		return repo.Save(tag)
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, schemas.NewTagResponse(tag))
}

func (h *Handler) DeleteTag(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	policy := h.Config.TagDeletePolicy
	if err := h.tx(c, func(tx *gorm.DB) error { return repository.Tags(tx).Delete(id, policy) }); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
