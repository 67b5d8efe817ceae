// taxonomy.go - Request and response shapes for categories and tags

package schemas

import (
	"time"

	"go-blog-backend/models"
)

type CategoryRequest struct {
	Name        string `json:"name" binding:"required,max=50"`
	Description string `json:"description" binding:"omitempty,max=255"`
	SortOrder   int    `json:"sort_order"`
}

type CategoryResponse struct {
	ID           uint      `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	SortOrder    int       `json:"sort_order"`
	ArticleCount int64     `json:"article_count"`
	CreatedAt    time.Time `json:"created_at"`
}

func NewCategoryResponse(c *models.Category, articles int64) CategoryResponse {
	return CategoryResponse{
		ID:           c.ID,
		Name:         c.Name,
		Description:  c.Description,
		SortOrder:    c.SortOrder,
		ArticleCount: articles,
		CreatedAt:    c.CreatedAt,
	}
}

type TagRequest struct {
	Name  string `json:"name" binding:"required,max=50"`
	Color string `json:"color" binding:"omitempty,hexcolor"`
}

type TagResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
}

func NewTagResponse(t *models.Tag) TagResponse {
	return TagResponse{ID: t.ID, Name: t.Name, Color: t.Color, CreatedAt: t.CreatedAt}
}
