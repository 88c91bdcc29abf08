package http

import (
	"github.com/gin-gonic/gin"

	"liber/internal/auth"
	"liber/internal/entities"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Security headers go on every response
	router.Use(auth.SecurityHeadersMiddleware())

	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies))
	}

	// Session runs after CSRF so session context isn't overwritten by
	// CSRF's request replacement
	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
	}

	// Resolve the session user into the request context
	if cfg.AuthMiddleware != nil {
		router.Use(cfg.AuthMiddleware.Handler())
	}

	// Controllers
	health := NewHealthController(cfg.Database, cfg.Version)
	books := NewBooksController(cfg.Catalog, cfg.Likes)
	authors := NewAuthorsController(cfg.Authors, cfg.FavoriteAuthors)
	comments := NewCommentsController(cfg.Catalog)
	favorites := NewFavoritesController(cfg.Favorites)
	covers := NewCoversController(cfg.Catalog, cfg.ImagesDir)
	admin := NewAdminController(cfg.AdminCatalog, cfg.AuditLog, cfg.Backups, cfg.TaskClient)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// Authentication endpoints
	if cfg.AuthController != nil {
		cfg.AuthController.RegisterRoutes(router)
	}

	// Public catalog endpoints
	router.GET("/api/books", books.ListBooks)
	router.GET("/api/books/:id", books.GetBook)
	router.GET("/api/books/:id/text", books.GetBookText)
	router.GET("/api/books/:id/comments", books.ListComments)
	router.GET("/api/books/:id/cover", covers.GetCover)
	router.GET("/api/authors", authors.ListAuthors)
	router.GET("/api/authors/:id", authors.GetAuthor)
	router.GET("/api/comments", comments.ListAllComments)

	// Reader endpoints require a session
	if cfg.AuthMiddleware != nil {
		reader := router.Group("/api")
		reader.Use(cfg.AuthMiddleware.RequireAuth())
		reader.POST("/books/:id/comments", books.AddComment)
		reader.POST("/books/:id/like", books.LikeBook)
		reader.POST("/authors/:id/favorite", authors.FavoriteAuthor)
		reader.GET("/favorites/books", favorites.ListFavoriteBooks)
		reader.GET("/favorites/authors", favorites.ListFavoriteAuthors)

		// Admin endpoints additionally require the admin role
		adminGroup := router.Group("/api/admin")
		adminGroup.Use(cfg.AuthMiddleware.RequireRole(entities.UserRoleAdmin))
		adminGroup.POST("/books", admin.AddBook)
		adminGroup.DELETE("/books/:id", admin.DeleteBook)
		adminGroup.POST("/authors", admin.AddAuthor)
		adminGroup.GET("/age-categories", admin.ListAgeCategories)
		adminGroup.POST("/backups", admin.CreateBackup)
		adminGroup.GET("/backups", admin.ListBackups)
		adminGroup.GET("/audit", admin.ListAuditEvents)
	}

	return router
}
