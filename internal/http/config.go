package http

import (
	"liber/internal/auth"
	"liber/internal/database"
	"liber/internal/tasks"
)

// RouterConfig contains all dependencies and configuration needed to create
// the HTTP router. This replaces a long parameter list in NewRouter.
type RouterConfig struct {
	// Core dependencies
	Database *database.Database
	Catalog  CatalogStore
	Authors  AuthorStore

	// Engagement
	Likes           LikeStore
	FavoriteAuthors FavoriteAuthorStore
	Favorites       FavoritesStore

	// Administration
	AdminCatalog AdminCatalogStore
	AuditLog     AuditLog
	Backups      BackupService

	// Authentication
	AuthController *auth.Controller
	AuthMiddleware *auth.Middleware
	SessionManager *auth.SessionManager
	CSRFSecret     []byte
	SecureCookies  bool

	// Assets
	ImagesDir string

	// Task queue client (optional)
	TaskClient *tasks.Client

	// Application info
	Version string
}
