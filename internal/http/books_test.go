package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"liber/internal/auth"
	"liber/internal/database/catalog"
	"liber/internal/database/engagement"
	"liber/internal/entities"
)

func setupTestDB(t *testing.T) (*gorm.DB, func()) {
	dbPath := "./test_http_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&entities.User{},
		&entities.Author{},
		&entities.Book{},
		&entities.Comment{},
		&entities.LikedBook{},
		&entities.BookText{},
		&entities.AgeCategory{},
		&entities.BookAgeCategory{},
		&entities.AuditEvent{},
	)
	require.NoError(t, err)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return db, cleanup
}

// asUser injects an authenticated session user into the request context the
// same way the auth middleware does.
func asUser(userID uint, role entities.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID != 0 {
			c.Set(auth.ContextKeyUserID, userID)
			c.Set(auth.ContextKeyRole, role)
		}
		c.Next()
	}
}

func newBooksRouter(t *testing.T, db *gorm.DB, userID uint) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	books := NewBooksController(catalog.NewRepository(db), engagement.NewRepository(db))
	middleware := auth.NewMiddleware(nil, nil)

	router := gin.New()
	router.Use(asUser(userID, entities.UserRoleReader))
	router.GET("/api/books", books.ListBooks)
	router.GET("/api/books/:id", books.GetBook)
	router.GET("/api/books/:id/text", books.GetBookText)
	router.GET("/api/books/:id/comments", books.ListComments)

	protected := router.Group("/api")
	protected.Use(middleware.RequireAuth())
	protected.POST("/books/:id/comments", books.AddComment)
	protected.POST("/books/:id/like", books.LikeBook)

	return router
}

func createTestAuthor(t *testing.T, db *gorm.DB, fullname string) *entities.Author {
	author := &entities.Author{Fullname: fullname}
	require.NoError(t, db.Create(author).Error)
	return author
}

func createTestBook(t *testing.T, db *gorm.DB, title string, authorID uint) *entities.Book {
	book := &entities.Book{
		Title:    title,
		AuthorID: authorID,
		Date:     time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, db.Create(book).Error)
	return book
}

func TestBooksController_ListBooks(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	author := createTestAuthor(t, db, "Frank Herbert")
	createTestBook(t, db, "Dune", author.ID)
	createTestBook(t, db, "Dune Messiah", author.ID)

	router := newBooksRouter(t, db, 0)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/books", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Books []entities.BookWithCategory `json:"books"`
		Total int                         `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Total)
}

func TestBooksController_ListBooks_Search(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	author := createTestAuthor(t, db, "Frank Herbert")
	createTestBook(t, db, "Dune", author.ID)
	createTestBook(t, db, "Heretics", author.ID)

	router := newBooksRouter(t, db, 0)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/books?search=DUNE", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Total)
}

func TestBooksController_GetBook_NotFound(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	router := newBooksRouter(t, db, 0)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/books/999", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBooksController_GetBookText(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	author := createTestAuthor(t, db, "Frank Herbert")
	book := createTestBook(t, db, "Dune", author.ID)
	require.NoError(t, db.Create(&entities.BookText{BookID: book.ID, BookText: "Arrakis."}).Error)

	router := newBooksRouter(t, db, 0)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/books/1/text", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Arrakis.")
}

func TestBooksController_AddComment(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	author := createTestAuthor(t, db, "Frank Herbert")
	book := createTestBook(t, db, "Dune", author.ID)

	router := newBooksRouter(t, db, 7)
	body, _ := json.Marshal(map[string]string{"text": "A classic"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/books/1/comments", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var updated entities.Book
	require.NoError(t, db.First(&updated, book.ID).Error)
	assert.Equal(t, 1, updated.NumberOfComments)
}

func TestBooksController_AddComment_Anonymous(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	author := createTestAuthor(t, db, "Frank Herbert")
	createTestBook(t, db, "Dune", author.ID)

	router := newBooksRouter(t, db, 0)
	body, _ := json.Marshal(map[string]string{"text": "blocked"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/books/1/comments", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Rejected before any row was inserted
	var count int64
	db.Model(&entities.Comment{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestBooksController_AddComment_EmptyText(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	author := createTestAuthor(t, db, "Frank Herbert")
	createTestBook(t, db, "Dune", author.ID)

	router := newBooksRouter(t, db, 7)
	body, _ := json.Marshal(map[string]string{"text": "   "})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/books/1/comments", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBooksController_LikeBook(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	author := createTestAuthor(t, db, "Frank Herbert")
	book := createTestBook(t, db, "Dune", author.ID)

	router := newBooksRouter(t, db, 7)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/books/1/like", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "book liked")

	// Second like is a harmless no-op
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/books/1/like", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "already liked")

	var updated entities.Book
	require.NoError(t, db.First(&updated, book.ID).Error)
	assert.Equal(t, 1, updated.NumberOfLikes)
}

func TestBooksController_LikeBook_NotFound(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	router := newBooksRouter(t, db, 7)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/books/999/like", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}
