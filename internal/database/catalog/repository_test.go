package catalog

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"liber/internal/entities"
)

func setupTestDB(t *testing.T) (*gorm.DB, *Repository, func()) {
	dbPath := "./test_catalog_" + t.Name() + ".db"

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
	)
	require.NoError(t, err)

	repo := NewRepository(db)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return db, repo, cleanup
}

func createTestAuthor(t *testing.T, db *gorm.DB, fullname string) *entities.Author {
	author := &entities.Author{
		Fullname:  fullname,
		Biography: "Test biography",
	}
	err := db.Create(author).Error
	require.NoError(t, err)
	return author
}

func createTestBook(t *testing.T, db *gorm.DB, title string, authorID uint) *entities.Book {
	book := &entities.Book{
		Title:    title,
		AuthorID: authorID,
		Date:     time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	err := db.Create(book).Error
	require.NoError(t, err)
	return book
}

func TestRepository_ListBooks(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()

	author := createTestAuthor(t, db, "Frank Herbert")
	createTestBook(t, db, "Dune", author.ID)
	createTestBook(t, db, "Dune Messiah", author.ID)
	createTestBook(t, db, "Children of Dune", author.ID)

	books, err := repo.ListBooks("")

	require.NoError(t, err)
	assert.Len(t, books, 3)
}

func TestRepository_ListBooks_Search(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()

	author := createTestAuthor(t, db, "Frank Herbert")
	createTestBook(t, db, "Dune", author.ID)
	createTestBook(t, db, "Dune Messiah", author.ID)
	createTestBook(t, db, "Heretics", author.ID)

	books, err := repo.ListBooks("dUnE")

	require.NoError(t, err)
	assert.Len(t, books, 2)
}

func TestRepository_ListBooks_AgeCategory(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()

	author := createTestAuthor(t, db, "Frank Herbert")
	book := createTestBook(t, db, "Dune", author.ID)
	uncategorized := createTestBook(t, db, "Notes", author.ID)

	category := &entities.AgeCategory{CategoryCharacteristic: "12+"}
	require.NoError(t, db.Create(category).Error)
	require.NoError(t, db.Create(&entities.BookAgeCategory{BookID: book.ID, AgeID: category.ID}).Error)

	books, err := repo.ListBooks("")
	require.NoError(t, err)
	require.Len(t, books, 2)

	byID := map[uint]entities.BookWithCategory{}
	for _, b := range books {
		byID[b.ID] = b
	}

	require.NotNil(t, byID[book.ID].AgeCategory)
	assert.Equal(t, "12+", *byID[book.ID].AgeCategory)
	assert.Nil(t, byID[uncategorized.ID].AgeCategory)
}

func TestRepository_GetBook_NotFound(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.GetBook(999)

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepository_ListAuthors(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()

	createTestAuthor(t, db, "Frank Herbert")
	createTestAuthor(t, db, "Ursula K. Le Guin")

	authors, err := repo.ListAuthors("")
	require.NoError(t, err)
	assert.Len(t, authors, 2)

	authors, err = repo.ListAuthors("ursula")
	require.NoError(t, err)
	require.Len(t, authors, 1)
	assert.Equal(t, "Ursula K. Le Guin", authors[0].Fullname)
}

func TestRepository_AddComment(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()

	author := createTestAuthor(t, db, "Frank Herbert")
	book := createTestBook(t, db, "Dune", author.ID)

	comment, err := repo.AddComment(book.ID, 1, "A classic")
	require.NoError(t, err)
	assert.NotZero(t, comment.ID)
	assert.False(t, comment.Date.IsZero())

	var updated entities.Book
	require.NoError(t, db.First(&updated, book.ID).Error)
	assert.Equal(t, 1, updated.NumberOfComments)
}

func TestRepository_AddComment_BookMissing(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.AddComment(999, 1, "ghost")

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepository_ListComments_NewestFirst(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()

	author := createTestAuthor(t, db, "Frank Herbert")
	book := createTestBook(t, db, "Dune", author.ID)

	old := &entities.Comment{BookID: book.ID, UserID: 1, CommentText: "older", Date: time.Now().Add(-time.Hour)}
	recent := &entities.Comment{BookID: book.ID, UserID: 1, CommentText: "newer", Date: time.Now()}
	require.NoError(t, db.Create(old).Error)
	require.NoError(t, db.Create(recent).Error)

	comments, err := repo.ListComments(book.ID)

	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "newer", comments[0].CommentText)
	assert.Equal(t, "older", comments[1].CommentText)
}

func TestRepository_ListAllComments(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()

	author := createTestAuthor(t, db, "Frank Herbert")
	dune := createTestBook(t, db, "Dune", author.ID)
	messiah := createTestBook(t, db, "Dune Messiah", author.ID)

	_, err := repo.AddComment(dune.ID, 1, "first")
	require.NoError(t, err)
	_, err = repo.AddComment(messiah.ID, 2, "second")
	require.NoError(t, err)

	comments, err := repo.ListAllComments()

	require.NoError(t, err)
	require.Len(t, comments, 2)
	titles := []string{comments[0].BookTitle, comments[1].BookTitle}
	assert.Contains(t, titles, "Dune")
	assert.Contains(t, titles, "Dune Messiah")
}

func TestRepository_GetBookText(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()

	author := createTestAuthor(t, db, "Frank Herbert")
	book := createTestBook(t, db, "Dune", author.ID)
	require.NoError(t, db.Create(&entities.BookText{BookID: book.ID, BookText: "Arrakis."}).Error)

	text, err := repo.GetBookText(book.ID)
	require.NoError(t, err)
	assert.Equal(t, "Arrakis.", text)

	_, err = repo.GetBookText(999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepository_AddBook(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()

	author := createTestAuthor(t, db, "Frank Herbert")
	category := &entities.AgeCategory{CategoryCharacteristic: "16+"}
	require.NoError(t, db.Create(category).Error)

	book := &entities.Book{
		Title:    "Dune",
		AuthorID: author.ID,
		Date:     time.Date(1965, 8, 1, 0, 0, 0, 0, time.UTC),
	}
	err := repo.AddBook(book, "Arrakis.", category.ID)
	require.NoError(t, err)
	assert.NotZero(t, book.ID)

	text, err := repo.GetBookText(book.ID)
	require.NoError(t, err)
	assert.Equal(t, "Arrakis.", text)

	var link entities.BookAgeCategory
	require.NoError(t, db.First(&link, "book_id = ?", book.ID).Error)
	assert.Equal(t, category.ID, link.AgeID)
}

func TestRepository_AddBook_UnknownAuthor(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()

	book := &entities.Book{Title: "Orphan", AuthorID: 999}
	err := repo.AddBook(book, "", 0)

	assert.ErrorIs(t, err, ErrNotFound)

	var count int64
	db.Model(&entities.Book{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestRepository_AddBook_WithoutTextOrCategory(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()

	author := createTestAuthor(t, db, "Frank Herbert")
	book := &entities.Book{Title: "Dune", AuthorID: author.ID}
	require.NoError(t, repo.AddBook(book, "", 0))

	_, err := repo.GetBookText(book.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	var count int64
	db.Model(&entities.BookAgeCategory{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestRepository_CountBookLikes(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()

	author := createTestAuthor(t, db, "Frank Herbert")
	book := createTestBook(t, db, "Dune", author.ID)

	require.NoError(t, db.Create(&entities.LikedBook{UserID: 1, BookID: book.ID}).Error)
	require.NoError(t, db.Create(&entities.LikedBook{UserID: 2, BookID: book.ID}).Error)

	count, err := repo.CountBookLikes(book.ID)

	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestRepository_DeleteBook_Cascades(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()

	author := createTestAuthor(t, db, "Frank Herbert")
	book := createTestBook(t, db, "Dune", author.ID)
	kept := createTestBook(t, db, "Dune Messiah", author.ID)

	_, err := repo.AddComment(book.ID, 1, "doomed")
	require.NoError(t, err)
	require.NoError(t, db.Create(&entities.LikedBook{UserID: 1, BookID: book.ID}).Error)
	require.NoError(t, db.Create(&entities.BookText{BookID: book.ID, BookText: "Arrakis."}).Error)

	err = repo.DeleteBook(book.ID)
	require.NoError(t, err)

	var count int64
	db.Model(&entities.Book{}).Count(&count)
	assert.Equal(t, int64(1), count)
	db.Model(&entities.Comment{}).Where("book_id = ?", book.ID).Count(&count)
	assert.Equal(t, int64(0), count)
	db.Model(&entities.LikedBook{}).Where("book_id = ?", book.ID).Count(&count)
	assert.Equal(t, int64(0), count)
	db.Model(&entities.BookText{}).Where("book_id = ?", book.ID).Count(&count)
	assert.Equal(t, int64(0), count)

	// Sibling book is untouched
	var sibling entities.Book
	assert.NoError(t, db.First(&sibling, kept.ID).Error)
}

func TestRepository_DeleteBook_NotFound(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	err := repo.DeleteBook(999)

	assert.ErrorIs(t, err, ErrNotFound)
}
