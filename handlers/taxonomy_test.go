// taxonomy_test.go - Category and tag endpoints, including delete policies

package handlers_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-blog-backend/config"
	"go-blog-backend/models"
)

func TestCategoryCRUD(t *testing.T) {
	s := setupServer(t)
	admin := s.admin(t, "editor")
	reader := s.signup(t, "reader")

	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodPost, "/categories", reader, gin.H{"name": "Go"}).Code)
	id := s.createCategory(t, admin, "Go")
	assert.Equal(t, http.StatusConflict, s.do(t, http.MethodPost, "/categories", admin, gin.H{"name": "Go"}).Code)

	s.createArticle(t, admin, gin.H{"title": "A", "content": "c", "category_id": id})
	s.createArticle(t, admin, gin.H{"title": "B", "content": "c", "category_id": id, "is_published": false})

	list := decode[[]map[string]any](t, s.do(t, http.MethodGet, "/categories", "", nil))
	require.Len(t, list, 1)
	assert.EqualValues(t, 1, list[0]["article_count"], "drafts are not counted")

	w := s.do(t, http.MethodPut, path("/categories/%d", id), admin, gin.H{"name": "Golang", "sort_order": 3})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Golang", decode[map[string]any](t, w)["name"])

	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/categories/404", "", nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/categories/abc", "", nil).Code)
}

func TestDeleteCategoryBlockPolicy(t *testing.T) {
	s := setupServer(t, func(c *config.Config) { c.CategoryDeletePolicy = config.CategoryDeleteBlock })
	admin := s.admin(t, "editor")
	id := s.createCategory(t, admin, "Busy")
	article := s.createArticle(t, admin, gin.H{"title": "A", "content": "c", "category_id": id})

	w := s.do(t, http.MethodDelete, path("/categories/%d", id), admin, nil)
	require.Equal(t, http.StatusConflict, w.Code)

	var a models.Article
	require.NoError(t, s.db.First(&a, article).Error)
	require.NotNil(t, a.CategoryID)
	assert.Equal(t, id, *a.CategoryID)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, path("/categories/%d", id), "", nil).Code)

	empty := s.createCategory(t, admin, "Empty")
	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, path("/categories/%d", empty), admin, nil).Code)
}

func TestDeleteCategoryNullifyPolicy(t *testing.T) {
	s := setupServer(t, func(c *config.Config) { c.CategoryDeletePolicy = config.CategoryDeleteNullify })
	admin := s.admin(t, "editor")
	id := s.createCategory(t, admin, "Doomed")
	article := s.createArticle(t, admin, gin.H{"title": "A", "content": "c", "category_id": id})

	require.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, path("/categories/%d", id), admin, nil).Code)

	var a models.Article
	require.NoError(t, s.db.First(&a, article).Error)
	assert.Nil(t, a.CategoryID)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, path("/categories/%d", id), "", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodDelete, path("/categories/%d", id), admin, nil).Code)
}

func TestTagDeletePolicies(t *testing.T) {
	for _, tc := range []struct {
		policy string
		status int
		links  int64
	}{
		{config.TagDeleteBlock, http.StatusConflict, 1},
		{config.TagDeleteDetach, http.StatusNoContent, 0},
	} {
		t.Run(tc.policy, func(t *testing.T) {
			s := setupServer(t, func(c *config.Config) { c.TagDeletePolicy = tc.policy })
			admin := s.admin(t, "editor")
			w := s.do(t, http.MethodPost, "/tags", admin, gin.H{"name": "go"})
			require.Equal(t, http.StatusCreated, w.Code)
			tag := decode[map[string]any](t, w)
			assert.Equal(t, "#3b82f6", tag["color"], "default color")
			s.createArticle(t, admin, gin.H{"title": "A", "content": "c", "tag_ids": []any{tag["id"]}})

			w = s.do(t, http.MethodDelete, path("/tags/%.0f", tag["id"]), admin, nil)
			assert.Equal(t, tc.status, w.Code, w.Body.String())

			var links int64
			require.NoError(t, s.db.Table("article_tags").Count(&links).Error)
			assert.Equal(t, tc.links, links)
		})
	}
}

func TestTagCRUD(t *testing.T) {
	s := setupServer(t)
	admin := s.admin(t, "editor")

	w := s.do(t, http.MethodPost, "/tags", admin, gin.H{"name": "db", "color": "blue"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode[map[string]any](t, w)["fields"], "color")

	w = s.do(t, http.MethodPost, "/tags", admin, gin.H{"name": "db", "color": "#123456"})
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode[map[string]any](t, w)["id"]

	w = s.do(t, http.MethodPut, path("/tags/%.0f", id), admin, gin.H{"name": "database"})
	require.Equal(t, http.StatusOK, w.Code)
	updated := decode[map[string]any](t, w)
	assert.Equal(t, "database", updated["name"])
	assert.Equal(t, "#123456", updated["color"])

	list := decode[[]map[string]any](t, s.do(t, http.MethodGet, "/tags", "", nil))
	assert.Len(t, list, 1)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, path("/tags/%.0f", id), "", nil).Code)
}
