package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"liber/internal/entities"
)

// FavoritesStore defines the reader's favorites listings.
type FavoritesStore interface {
	ListFavoriteBooks(userID uint) ([]entities.Book, error)
	ListFavoriteAuthors(userID uint) ([]entities.Author, error)
}

// FavoritesController serves the authenticated reader's liked books and
// favorite authors.
type FavoritesController struct {
	store FavoritesStore
}

func NewFavoritesController(store FavoritesStore) *FavoritesController {
	return &FavoritesController{store: store}
}

// ListFavoriteBooks returns the reader's liked books.
// GET /api/favorites/books
func (fc *FavoritesController) ListFavoriteBooks(c *gin.Context) {
	books, err := fc.store.ListFavoriteBooks(GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "list favorite books")
		return
	}

	c.JSON(http.StatusOK, gin.H{"books": books, "total": len(books)})
}

// ListFavoriteAuthors returns the distinct authors of the reader's liked
// books.
// GET /api/favorites/authors
func (fc *FavoritesController) ListFavoriteAuthors(c *gin.Context) {
	authors, err := fc.store.ListFavoriteAuthors(GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "list favorite authors")
		return
	}

	c.JSON(http.StatusOK, gin.H{"authors": authors, "total": len(authors)})
}
