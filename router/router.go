// router.go - Builds the HTTP engine: middleware chain and every route

package router

import (
	"net/url"

	"github.com/gin-gonic/gin"

	"go-blog-backend/handlers"
	"go-blog-backend/middleware"
	"go-blog-backend/storage"
)

// New wires the handlers into a gin engine.
func New(deps handlers.Deps) *gin.Engine {
	h := handlers.New(deps)
	cfg := h.Config
	auth := middleware.NewAuthenticator(h.Sessions, h.Tokens)

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logger(h.Log),
		middleware.Recovery(h.Log),
		h.Metrics.Middleware(),
		middleware.CORS(cfg.CORSOrigins),
		middleware.Timeout(cfg.RequestTimeout),
	)

	// Ops endpoints live outside the API prefix
	r.GET("/health", h.Health)
	r.GET("/ready", h.Ready)
	if h.Metrics != nil {
		r.GET("/metrics", gin.WrapH(h.Metrics.Handler()))
	}
	if local, ok := h.Store.(*storage.Local); ok {
		r.Static(uploadPath(cfg.UploadBaseURL), local.Dir())
	}

	api := r.Group(cfg.APIPrefix)

	// Auth
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
		authGroup.GET("/me", auth.RequireUser(), h.Me)
		authGroup.PUT("/profile", auth.RequireUser(), h.UpdateProfile)
		authGroup.PUT("/password", auth.RequireUser(), h.ChangePassword)
	}

	users := api.Group("/users", auth.RequireAdmin())
	{
		users.GET("", h.ListUsers)
		users.POST("", h.CreateUser)
		users.PUT("/:id", h.UpdateUser)
		users.DELETE("/:id", h.DeleteUser)
	}

	// Articles. Detail accepts an id or a slug under the :id parameter.
	articles := api.Group("/articles")
	{
		articles.GET("", h.ListArticles)
		articles.GET("/home", h.HomeArticles)
		articles.GET("/admin", auth.RequireAdmin(), h.AdminListArticles)
		articles.GET("/:id", auth.OptionalUser(), h.GetArticle)
		articles.POST("/:id/unlock", auth.OptionalUser(), h.UnlockArticle)
		articles.POST("", auth.RequireAdmin(), h.CreateArticle)
		articles.PUT("/:id", auth.RequireAdmin(), h.UpdateArticle)
		articles.DELETE("/:id", auth.RequireAdmin(), h.DeleteArticle)
		articles.GET("/:id/like", auth.OptionalUser(), h.ArticleLikeStatus)
		articles.POST("/:id/like", auth.OptionalUser(), h.LikeArticle)
		articles.DELETE("/:id/like", auth.OptionalUser(), h.UnlikeArticle)
	}

	categories := api.Group("/categories")
	{
		categories.GET("", h.ListCategories)
		categories.GET("/:id", h.GetCategory)
		categories.POST("", auth.RequireAdmin(), h.CreateCategory)
		categories.PUT("/:id", auth.RequireAdmin(), h.UpdateCategory)
		categories.DELETE("/:id", auth.RequireAdmin(), h.DeleteCategory)
	}

	tags := api.Group("/tags")
	{
		tags.GET("", h.ListTags)
		tags.GET("/:id", h.GetTag)
		tags.POST("", auth.RequireAdmin(), h.CreateTag)
		tags.PUT("/:id", auth.RequireAdmin(), h.UpdateTag)
		tags.DELETE("/:id", auth.RequireAdmin(), h.DeleteTag)
	}

	comments := api.Group("/comments")
	{
		comments.POST("", auth.RequireUser(), h.CreateComment)
		comments.GET("/admin", auth.RequireAdmin(), h.AdminListComments)
		comments.PUT("/admin/:id", auth.RequireAdmin(), h.AdminUpdateComment)
		comments.GET("/:contentType/:contentId", h.ListComments)
		comments.DELETE("/:id", auth.RequireUser(), h.DeleteComment)
		comments.POST("/:id/like", auth.OptionalUser(), h.LikeComment)
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	messages := api.Group("/messages")
	{
		messages.GET("", h.ListMessages)
		messages.POST("", limiter.Middleware(), auth.OptionalUser(), h.CreateMessage)
		messages.GET("/live", h.LiveMessages)
		messages.GET("/admin", auth.RequireAdmin(), h.AdminListMessages)
		messages.PUT("/:id", auth.RequireAdmin(), h.UpdateMessage)
		messages.PUT("/:id/moderation", auth.RequireAdmin(), h.ModerateMessage)
		messages.DELETE("/:id", auth.RequireAdmin(), h.DeleteMessage)
	}

	site := api.Group("/site")
	{
		site.GET("", h.GetSiteConfig)
		site.PUT("", auth.RequireAdmin(), h.UpdateSiteConfig)
		site.GET("/stats", h.SiteStats)
	}

	changelogs := api.Group("/changelogs")
	{
		changelogs.GET("", h.ListChangelogs)
		changelogs.POST("", auth.RequireAdmin(), h.CreateChangelog)
		changelogs.PUT("/:id", auth.RequireAdmin(), h.UpdateChangelog)
		changelogs.DELETE("/:id", auth.RequireAdmin(), h.DeleteChangelog)
	}

	resources := api.Group("/resources", auth.RequireAdmin())
	{
		resources.POST("", h.UploadResource)
		resources.GET("", h.ListResources)
		resources.DELETE("/:id", h.DeleteResource)
	}

	return r
}

// uploadPath is the URL path local uploads are served under; the base URL
// may be a bare path or an absolute URL.
func uploadPath(base string) string {
	if u, err := url.Parse(base); err == nil && u.Path != "" {
		return u.Path
	}
	return "/uploads"
}
