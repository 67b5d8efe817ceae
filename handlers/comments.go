// comments.go - Comment threads, likes and moderation

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"go-blog-backend/apperr"
	"go-blog-backend/cache"
	"go-blog-backend/middleware"
	"go-blog-backend/models"
	"go-blog-backend/repository"
	"go-blog-backend/schemas"
)

// CreateComment attaches a comment to an article, a changelog or the
// message board. Replies are kept two levels deep: replying to a reply
// files the comment under the same top-level comment.
func (h *Handler) CreateComment(c *gin.Context) {
	var input schemas.CommentCreateRequest
	if !bindJSON(c, &input) {
		return
	}
	if input.ContentType == "" {
		input.ContentType = models.ContentArticle
	}
	if input.ContentType == models.ContentMessageBoard {
		input.ContentID = 0 // a single board
	}
	content := schemas.SanitizeUGC(input.Content)
	if content == "" {
		fail(c, apperr.Validation("request validation failed", map[string]string{"content": "is required"}))
		return
	}

	user := mustUser(c)
	comment := models.Comment{
		Content:     content,
		ContentType: input.ContentType,
		ContentID:   input.ContentID,
		UserID:      user.ID,
		ReplyToID:   input.ReplyToID,
		Status:      h.Config.CommentDefaultStatus,
	}

	var created *models.Comment
	err := h.tx(c, func(tx *gorm.DB) error {
		// STEP 1: the target must exist and accept comments
		if err := h.checkTarget(tx, comment.ContentType, comment.ContentID); err != nil {
			return err
		}
		// STEP 2: replies hang off an approved comment on the same target
		if input.ParentID != nil {
			if err := attachParent(tx, &comment, *input.ParentID); err != nil {
				return err
			}
		}
		if comment.ReplyToID != nil {
			if _, err := repository.Users(tx).ByID(*comment.ReplyToID); err != nil {
				return apperr.Validation("request validation failed", map[string]string{
					"reply_to_id": "user does not exist",
				})
			}
		}

		// STEP 3: save, and count it on the article when visible
		comments := repository.Comments(tx)
		if err := comments.Create(&comment); err != nil {
			return err
		}
		if comment.Status == models.StatusApproved && comment.ContentType == models.ContentArticle { // Only articles keep a counter
			if err := repository.Articles(tx).AddComments(comment.ContentID, 1); err != nil {
				return err
			}
		}
		var err error
		created, err = comments.ByID(comment.ID)
		return err
	})
	if err != nil {
		fail(c, err)
		return
	}
	if created.ContentType == models.ContentArticle {
		h.forget(c.Request.Context(), cache.ArticleKey(created.ContentID))
	}
	c.JSON(http.StatusCreated, schemas.NewCommentResponse(created, nil))
}

// checkTarget fails with NotFound when the commented content is not
// visible to visitors.
func (h *Handler) checkTarget(tx *gorm.DB, contentType string, contentID uint) error {
	switch contentType {
	case models.ContentArticle:
		ok, err := repository.Articles(tx).Exists(contentID, true)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.NotFound("article not found")
		}
	case models.ContentChangelog:
		ok, err := repository.Changelogs(tx).Exists(contentID)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.NotFound("changelog not found")
		}
	}
	return nil
}

// attachParent points comment at its top-level parent and, unless the
// caller named someone else, replies to the parent's author.
func attachParent(tx *gorm.DB, comment *models.Comment, parentID uint) error {
	parent, err := repository.Comments(tx).ByID(parentID)
	if apperr.Is(err, apperr.KindNotFound) {
		return apperr.Validation("request validation failed", map[string]string{
			"parent_id": "comment does not exist",
		})
	}
	if err != nil {
		return err
	}
	if parent.ContentType != comment.ContentType || parent.ContentID != comment.ContentID {
		return apperr.Validation("request validation failed", map[string]string{
			"parent_id": "comment belongs to other content",
		})
	}
	if parent.Status != models.StatusApproved {
		return apperr.Validation("request validation failed", map[string]string{
			"parent_id": "comment is not visible",
		})
	}

	top := parent.ID
	if parent.ParentID != nil {
		top = *parent.ParentID
	}
	comment.ParentID = &top
	if comment.ReplyToID == nil {
		replyTo := parent.UserID
		comment.ReplyToID = &replyTo
	}
	return nil
}

// ListComments returns approved top-level comments with their replies.
func (h *Handler) ListComments(c *gin.Context) {
	var target schemas.CommentTarget
	if err := c.ShouldBindUri(&target); err != nil {
		fail(c, schemas.BindError(err))
		return
	}
	var q schemas.PageQuery
	if !bindQuery(c, &q) {
		return
	}
	page, n, size := pageOf(q)

	var records []schemas.CommentResponse
	var total int64
	err := h.tx(c, func(tx *gorm.DB) error {
		if err := h.checkTarget(tx, target.ContentType, target.ContentID); err != nil {
			return err
		}
		top, replies, count, err := repository.Comments(tx).Thread(target.ContentType, target.ContentID, page)
		if err != nil {
			return err
		}
		total = count
		records = make([]schemas.CommentResponse, 0, len(top))
		for i := range top {
			records = append(records, schemas.NewCommentResponse(&top[i], replies[top[i].ID]))
		}
		return nil
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, schemas.NewPaged(records, total, n, size))
}

// DeleteComment is open to the comment's author and administrators.
func (h *Handler) DeleteComment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	user := mustUser(c)

	var target *models.Comment
	err := h.tx(c, func(tx *gorm.DB) error {
		comments := repository.Comments(tx)
		var err error
		if target, err = comments.ByID(id); err != nil {
			return err
		}
		if target.UserID != user.ID && !user.IsAdmin {
			return apperr.Forbidden("only the author or an administrator can delete this comment")
		}
		approved, err := comments.Delete(target)
		if err != nil {
			return err
		}
		if target.ContentType == models.ContentArticle {
			return repository.Articles(tx).AddComments(target.ContentID, -approved)
		}
		return nil
	})
	if err != nil {
		fail(c, err)
		return
	}
	if target.ContentType == models.ContentArticle {
		h.forget(c.Request.Context(), cache.ArticleKey(target.ContentID))
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) LikeComment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var resp schemas.LikeResponse
	err := h.tx(c, func(tx *gorm.DB) error {
		comments := repository.Comments(tx)
		comment, err := comments.ByID(id)
		if err != nil {
			return err
		}
		if comment.Status != models.StatusApproved {
			return apperr.NotFound("comment not found")
		}
		resp.LikeCount, err = comments.Like(id, middleware.CurrentUserID(c), c.ClientIP())
		resp.Liked = err == nil
		return err
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) AdminListComments(c *gin.Context) {
	var q schemas.CommentAdminQuery
	if !bindQuery(c, &q) {
		return
	}
	page, n, size := pageOf(q.PageQuery)
	filter := repository.CommentFilter{Status: q.Status, ContentType: q.ContentType, Keyword: q.Keyword}

	var comments []models.Comment
	var total int64
	err := h.tx(c, func(tx *gorm.DB) error {
		var err error
		comments, total, err = repository.Comments(tx).AdminList(filter, page)
		return err
	})
	if err != nil {
		fail(c, err)
		return
	}
	records := make([]schemas.CommentAdminItem, 0, len(comments))
	for i := range comments {
		records = append(records, schemas.NewCommentAdminItem(&comments[i]))
	}
	c.JSON(http.StatusOK, schemas.NewPaged(records, total, n, size))
}

// AdminUpdateComment edits or moderates a comment and keeps the article's
// approved comment counter in step with the status change.
func (h *Handler) AdminUpdateComment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var input schemas.CommentAdminUpdateRequest
	if !bindJSON(c, &input) {
		return
	}

	var comment *models.Comment
	err := h.tx(c, func(tx *gorm.DB) error {
		comments := repository.Comments(tx)
		var err error
		if comment, err = comments.ByID(id); err != nil {
			return err
		}
		wasApproved := comment.Status == models.StatusApproved
		if input.Content != nil {
			comment.Content = schemas.SanitizeUGC(*input.Content)
		}
		if input.Status != nil {
			comment.Status = *input.Status
		}
		if err := comments.Save(comment); err != nil {
			return err
		}

		var delta int64
		switch nowApproved := comment.Status == models.StatusApproved; {
		case nowApproved && !wasApproved:
			delta = 1
		case wasApproved && !nowApproved:
			delta = -1
		}
		if comment.ContentType == models.ContentArticle {
			return repository.Articles(tx).AddComments(comment.ContentID, delta)
		}
		return nil
	})
	if err != nil {
		fail(c, err)
		return
	}
	if comment.ContentType == models.ContentArticle {
		h.forget(c.Request.Context(), cache.ArticleKey(comment.ContentID))
	}
	c.JSON(http.StatusOK, schemas.NewCommentAdminItem(comment))
}
