// repository.go - Shared helpers for the storage layer
//
// Every repository is built from the transaction handed out by
// database.Sessions.Do and never opens one of its own.

package repository

import (
	"strings"

	"gorm.io/gorm"

	"go-blog-backend/apperr"
)

// Page is a 1-based window over a sorted list.
type Page struct {
	Number int
	Size   int
}

func (p Page) scope(db *gorm.DB) *gorm.DB {
	number, size := p.Number, p.Size
	if number < 1 {
		number = 1
	}
	if size < 1 {
		size = 10
	}
	return db.Offset((number - 1) * size).Limit(size)
}

func likePattern(keyword string) string {
	return "%" + strings.TrimSpace(keyword) + "%"
}

// deleteByID removes one row and reports NotFound when nothing matched.
func deleteByID(db *gorm.DB, model any, id uint, notFound string) error {
	res := db.Delete(model, id)
	if res.Error != nil {
		return apperr.FromDB(res.Error, notFound)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound(notFound)
	}
	return nil
}

// taken reports whether another row already uses value in column.
func taken(db *gorm.DB, model any, column, value string, excludeID uint) (bool, error) {
	q := db.Model(model).Where(column+" = ?", value)
	if excludeID > 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, apperr.FromDB(err, "")
	}
	return n > 0, nil
}

// likeScope matches a like by user id, or by IP for anonymous visitors.
func likeScope(userID *uint, ip string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if userID != nil {
			return db.Where("user_id = ?", *userID)
		}
		return db.Where("user_id IS NULL AND ip_address = ?", ip)
	}
}

// counterExpr adds delta to a counter column without letting it go negative.
func counterExpr(column string, delta int64) any {
	return gorm.Expr("CASE WHEN "+column+" + ? < 0 THEN 0 ELSE "+column+" + ? END", delta, delta)
}
