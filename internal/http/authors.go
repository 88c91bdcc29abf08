package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"liber/internal/database/catalog"
	"liber/internal/database/engagement"
	"liber/internal/entities"
)

// AuthorStore defines the author catalog operations.
type AuthorStore interface {
	ListAuthors(searchTerm string) ([]entities.Author, error)
	GetAuthor(authorID uint) (*entities.Author, error)
}

// FavoriteAuthorStore defines the favorite-author operation.
type FavoriteAuthorStore interface {
	FavoriteAuthor(userID, authorID uint) (engagement.Outcome, error)
}

// AuthorsController serves the public author catalog.
type AuthorsController struct {
	authors   AuthorStore
	favorites FavoriteAuthorStore
}

func NewAuthorsController(authorStore AuthorStore, favoriteStore FavoriteAuthorStore) *AuthorsController {
	return &AuthorsController{authors: authorStore, favorites: favoriteStore}
}

// ListAuthors returns all authors, optionally filtered by name substring.
// GET /api/authors?search=...
func (ac *AuthorsController) ListAuthors(c *gin.Context) {
	search := strings.TrimSpace(c.Query("search"))

	authors, err := ac.authors.ListAuthors(search)
	if err != nil {
		respondInternalError(c, err, "list authors")
		return
	}

	c.JSON(http.StatusOK, gin.H{"authors": authors, "total": len(authors)})
}

// GetAuthor returns a single author with biography.
// GET /api/authors/:id
func (ac *AuthorsController) GetAuthor(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	author, err := ac.authors.GetAuthor(id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			respondNotFound(c, "author")
			return
		}
		respondInternalError(c, err, "get author")
		return
	}

	c.JSON(http.StatusOK, gin.H{"author": author})
}

// FavoriteAuthor likes every book by the author that the reader has not
// liked yet. Requires authentication.
// POST /api/authors/:id/favorite
func (ac *AuthorsController) FavoriteAuthor(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	outcome, err := ac.favorites.FavoriteAuthor(GetUserID(c), id)
	if err != nil {
		if errors.Is(err, engagement.ErrNotFound) {
			respondNotFound(c, "author")
			return
		}
		respondInternalError(c, err, "favorite author")
		return
	}

	if outcome == engagement.AlreadyFavorited {
		respondSuccess(c, "author already favorited")
		return
	}
	respondSuccess(c, "author favorited")
}
