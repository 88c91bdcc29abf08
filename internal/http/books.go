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

// CatalogStore defines the catalog operations used by the public controllers.
type CatalogStore interface {
	ListBooks(searchTerm string) ([]entities.BookWithCategory, error)
	GetBook(bookID uint) (*entities.Book, error)
	GetBookText(bookID uint) (string, error)
	ListComments(bookID uint) ([]entities.Comment, error)
	ListAllComments() ([]entities.GlobalComment, error)
	AddComment(bookID, userID uint, text string) (*entities.Comment, error)
}

// LikeStore defines the like operations used by the books controller.
type LikeStore interface {
	LikeBook(userID, bookID uint) (engagement.Outcome, error)
}

// BooksController serves the public book catalog.
type BooksController struct {
	catalog CatalogStore
	likes   LikeStore
}

func NewBooksController(catalogStore CatalogStore, likeStore LikeStore) *BooksController {
	return &BooksController{catalog: catalogStore, likes: likeStore}
}

// ListBooks returns the catalog, optionally filtered by title substring.
// GET /api/books?search=...
func (bc *BooksController) ListBooks(c *gin.Context) {
	search := strings.TrimSpace(c.Query("search"))

	books, err := bc.catalog.ListBooks(search)
	if err != nil {
		respondInternalError(c, err, "list books")
		return
	}

	c.JSON(http.StatusOK, gin.H{"books": books, "total": len(books)})
}

// GetBook returns a single book.
// GET /api/books/:id
func (bc *BooksController) GetBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := bc.catalog.GetBook(id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			respondNotFound(c, "book")
			return
		}
		respondInternalError(c, err, "get book")
		return
	}

	c.JSON(http.StatusOK, gin.H{"book": book})
}

// GetBookText returns the full text of a book for reading.
// GET /api/books/:id/text
func (bc *BooksController) GetBookText(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	text, err := bc.catalog.GetBookText(id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			respondNotFound(c, "book text")
			return
		}
		respondInternalError(c, err, "get book text")
		return
	}

	c.JSON(http.StatusOK, gin.H{"book_id": id, "text": text})
}

// ListComments returns a book's comments, newest first.
// GET /api/books/:id/comments
func (bc *BooksController) ListComments(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	comments, err := bc.catalog.ListComments(id)
	if err != nil {
		respondInternalError(c, err, "list comments")
		return
	}

	c.JSON(http.StatusOK, gin.H{"comments": comments, "total": len(comments)})
}

type addCommentRequest struct {
	Text string `json:"text" binding:"required"`
}

// AddComment appends a comment to a book. Requires authentication.
// POST /api/books/:id/comments
func (bc *BooksController) AddComment(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req addCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "comment text is required")
		return
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		respondBadRequest(c, "comment text is required")
		return
	}

	comment, err := bc.catalog.AddComment(id, GetUserID(c), text)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			respondNotFound(c, "book")
			return
		}
		respondInternalError(c, err, "add comment")
		return
	}

	respondCreated(c, gin.H{"comment": comment})
}

// LikeBook records a like for the book. Liking twice is a no-op.
// POST /api/books/:id/like
func (bc *BooksController) LikeBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	outcome, err := bc.likes.LikeBook(GetUserID(c), id)
	if err != nil {
		if errors.Is(err, engagement.ErrNotFound) {
			respondNotFound(c, "book")
			return
		}
		respondInternalError(c, err, "like book")
		return
	}

	if outcome == engagement.AlreadyLiked {
		respondSuccess(c, "book already liked")
		return
	}
	respondSuccess(c, "book liked")
}
