package models

// All lists every persisted model, in dependency order.
func All() []any {
	return []any{
		&User{},
		&Category{},
		&Tag{},
		&Article{},
		&ArticleLike{},
		&Comment{},
		&CommentLike{},
		&Message{},
		&SiteInfo{},
		&Changelog{},
		&Resource{},
	}
}
