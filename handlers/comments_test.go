// comments_test.go - Comment threads, moderation and counters

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

func commentCount(t *testing.T, s *testServer, articleID uint) int64 {
	t.Helper()
	var a models.Article
	require.NoError(t, s.db.First(&a, articleID).Error)
	return a.CommentCount
}

func TestCommentThread(t *testing.T) {
	s := setupServer(t)
	admin := s.admin(t, "editor")
	alice := s.signup(t, "alice")
	bob := s.signup(t, "bob")
	article := s.createArticle(t, admin, gin.H{"title": "Threaded", "content": "c"})

	w := s.do(t, http.MethodPost, "/comments", alice, gin.H{"content_id": article, "content": "<b>top</b><script>x()</script>"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	top := decode[map[string]any](t, w)
	assert.Equal(t, "<b>top</b>", top["content"], "scripts are stripped")

	w = s.do(t, http.MethodPost, "/comments", bob, gin.H{"content_id": article, "content": "reply", "parent_id": top["id"]})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	reply := decode[map[string]any](t, w)

	// a reply to a reply is filed under the top-level comment
	w = s.do(t, http.MethodPost, "/comments", alice, gin.H{"content_id": article, "content": "reply again", "parent_id": reply["id"]})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	nested := decode[map[string]any](t, w)
	assert.Equal(t, top["id"], nested["parent_id"])

	w = s.do(t, http.MethodGet, path("/comments/article/%d", article), "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	page := decode[map[string]any](t, w)
	assert.EqualValues(t, 1, page["total"])
	records := page["records"].([]any)
	require.Len(t, records, 1)
	replies := records[0].(map[string]any)["replies"].([]any)
	require.Len(t, replies, 2)
	second := replies[1].(map[string]any)
	assert.Equal(t, "bob", second["reply_to"].(map[string]any)["nickname"])

	assert.EqualValues(t, 3, commentCount(t, s, article))
}

func TestCommentTargets(t *testing.T) {
	s := setupServer(t)
	admin := s.admin(t, "editor")
	alice := s.signup(t, "alice")
	draft := s.createArticle(t, admin, gin.H{"title": "Draft", "content": "c", "is_published": false})

	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodPost, "/comments", "", gin.H{"content_id": 1, "content": "x"}).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodPost, "/comments", alice, gin.H{"content_id": 999, "content": "x"}).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodPost, "/comments", alice, gin.H{"content_id": draft, "content": "x"}).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/comments", alice, gin.H{"content_type": "video", "content_id": 1, "content": "x"}).Code)

	w := s.do(t, http.MethodPost, "/changelogs", admin, gin.H{"version": "1.0", "content": "launch"})
	require.Equal(t, http.StatusCreated, w.Code)
	logID := decode[map[string]any](t, w)["id"]
	w = s.do(t, http.MethodPost, "/comments", alice, gin.H{"content_type": "changelog", "content_id": logID, "content": "congrats"})
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, "/comments", alice, gin.H{"content_type": "message_board", "content": "hello board"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	page := decode[map[string]any](t, s.do(t, http.MethodGet, "/comments/message_board/0", "", nil))
	assert.EqualValues(t, 1, page["total"])

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/comments/video/1", "", nil).Code)
}

func TestCommentModeration(t *testing.T) {
	s := setupServer(t, func(c *config.Config) { c.CommentDefaultStatus = config.StatusPending })
	admin := s.admin(t, "editor")
	alice := s.signup(t, "alice")
	article := s.createArticle(t, admin, gin.H{"title": "Moderated", "content": "c"})

	w := s.do(t, http.MethodPost, "/comments", alice, gin.H{"content_id": article, "content": "awaiting"})
	require.Equal(t, http.StatusCreated, w.Code)
	comment := decode[map[string]any](t, w)
	assert.Equal(t, "pending", comment["status"])
	assert.Zero(t, commentCount(t, s, article))

	page := decode[map[string]any](t, s.do(t, http.MethodGet, path("/comments/article/%d", article), "", nil))
	assert.EqualValues(t, 0, page["total"], "pending comments are not public")

	pending := decode[map[string]any](t, s.do(t, http.MethodGet, "/comments/admin?status=pending", admin, nil))
	assert.EqualValues(t, 1, pending["total"])

	id := comment["id"]
	w = s.do(t, http.MethodPut, path("/comments/admin/%.0f", id), admin, gin.H{"status": "approved"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 1, commentCount(t, s, article))

	// approving twice does not count twice
	s.do(t, http.MethodPut, path("/comments/admin/%.0f", id), admin, gin.H{"status": "approved"})
	assert.EqualValues(t, 1, commentCount(t, s, article))

	s.do(t, http.MethodPut, path("/comments/admin/%.0f", id), admin, gin.H{"status": "rejected"})
	assert.Zero(t, commentCount(t, s, article))

	assert.Equal(t, http.StatusBadRequest,
		s.do(t, http.MethodPut, path("/comments/admin/%.0f", id), admin, gin.H{"status": "spam"}).Code)
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, "/comments/admin", alice, nil).Code)
}

func TestDeleteComment(t *testing.T) {
	s := setupServer(t)
	admin := s.admin(t, "editor")
	alice := s.signup(t, "alice")
	bob := s.signup(t, "bob")
	article := s.createArticle(t, admin, gin.H{"title": "Post", "content": "c"})

	w := s.do(t, http.MethodPost, "/comments", alice, gin.H{"content_id": article, "content": "mine"})
	require.Equal(t, http.StatusCreated, w.Code)
	top := decode[map[string]any](t, w)["id"]
	w = s.do(t, http.MethodPost, "/comments", bob, gin.H{"content_id": article, "content": "reply", "parent_id": top})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.EqualValues(t, 2, commentCount(t, s, article))

	w = s.do(t, http.MethodPost, path("/comments/%.0f/like", top), bob, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode[map[string]any](t, w)["like_count"])
	assert.Equal(t, http.StatusConflict, s.do(t, http.MethodPost, path("/comments/%.0f/like", top), bob, nil).Code)

	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodDelete, path("/comments/%.0f", top), bob, nil).Code)
	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, path("/comments/%.0f", top), alice, nil).Code)
	assert.Zero(t, commentCount(t, s, article), "replies go with their parent")

	var likes int64
	s.db.Model(&models.CommentLike{}).Count(&likes)
	assert.Zero(t, likes)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodDelete, path("/comments/%.0f", top), admin, nil).Code)
}
