package http

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"liber/internal/database/catalog"
	"liber/internal/entities"
)

// CoverReader resolves a book to its stored cover filename.
type CoverReader interface {
	GetBook(bookID uint) (*entities.Book, error)
}

// CoversController serves book cover images from the assets directory.
type CoversController struct {
	books     CoverReader
	imagesDir string
}

func NewCoversController(books CoverReader, imagesDir string) *CoversController {
	return &CoversController{books: books, imagesDir: imagesDir}
}

// GetCover streams the book's cover image. A missing file is a plain 404,
// never an error: covers are best effort.
// GET /api/books/:id/cover
func (cc *CoversController) GetCover(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := cc.books.GetBook(id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			respondNotFound(c, "book")
			return
		}
		respondInternalError(c, err, "get cover")
		return
	}

	if book.BookCover == "" {
		respondNotFound(c, "cover")
		return
	}

	// The stored name must stay inside the images directory
	name := filepath.Base(book.BookCover)
	if name != book.BookCover || strings.HasPrefix(name, ".") {
		respondNotFound(c, "cover")
		return
	}

	path := filepath.Join(cc.imagesDir, name)
	if _, err := os.Stat(path); err != nil {
		respondNotFound(c, "cover")
		return
	}

	c.File(path)
}
