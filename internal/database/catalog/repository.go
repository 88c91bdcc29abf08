// Package catalog provides database operations for books, authors, comments
// and book texts.
//
// # Usage
//
//	repo := catalog.NewRepository(db)
//	books, err := repo.ListBooks("dune")
package catalog

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"liber/internal/entities"
)

// ErrNotFound is returned when a requested book, author or text is absent.
var ErrNotFound = errors.New("not found")

// Repository handles all catalog database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new catalog repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListBooks returns all books joined with their optional age category.
// A non-empty searchTerm filters by case-insensitive substring match on title.
func (r *Repository) ListBooks(searchTerm string) ([]entities.BookWithCategory, error) {
	query := r.db.Model(&entities.Book{}).
		Select("books.*, age_category.category_characteristic AS age_category").
		Joins("LEFT JOIN age_categories_of_books ON age_categories_of_books.book_id = books.book_id").
		Joins("LEFT JOIN age_category ON age_category.age_id = age_categories_of_books.age_id")

	if searchTerm != "" {
		query = query.Where("LOWER(books.title) LIKE ?", "%"+strings.ToLower(searchTerm)+"%")
	}

	var books []entities.BookWithCategory
	err := query.Order("books.book_id").Scan(&books).Error
	return books, err
}

// GetBook retrieves a single book by ID.
func (r *Repository) GetBook(bookID uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.First(&book, bookID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &book, nil
}

// ListAuthors returns all authors, optionally filtered by a case-insensitive
// substring match on the full name.
func (r *Repository) ListAuthors(searchTerm string) ([]entities.Author, error) {
	query := r.db.Model(&entities.Author{})
	if searchTerm != "" {
		query = query.Where("LOWER(fullname) LIKE ?", "%"+strings.ToLower(searchTerm)+"%")
	}

	var authors []entities.Author
	err := query.Order("author_id").Find(&authors).Error
	return authors, err
}

// GetAuthor retrieves a single author by ID.
func (r *Repository) GetAuthor(authorID uint) (*entities.Author, error) {
	var author entities.Author
	err := r.db.First(&author, authorID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &author, nil
}

// ListComments returns all comments for a book, newest first.
func (r *Repository) ListComments(bookID uint) ([]entities.Comment, error) {
	var comments []entities.Comment
	err := r.db.Where("book_id = ?", bookID).Order("date DESC").Find(&comments).Error
	return comments, err
}

// ListAllComments returns the site-wide comment feed joined with book titles,
// newest first.
func (r *Repository) ListAllComments() ([]entities.GlobalComment, error) {
	var comments []entities.GlobalComment
	err := r.db.Model(&entities.Comment{}).
		Select("books.title AS book_title, comments.comment_text, comments.user_id, comments.date").
		Joins("JOIN books ON books.book_id = comments.book_id").
		Order("comments.date DESC").
		Scan(&comments).Error
	return comments, err
}

// AddComment appends a comment with a server-assigned timestamp and keeps the
// book's comment counter in step, all in one transaction.
func (r *Repository) AddComment(bookID, userID uint, text string) (*entities.Comment, error) {
	comment := &entities.Comment{
		BookID:      bookID,
		UserID:      userID,
		CommentText: text,
		Date:        time.Now(),
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&entities.Book{}).Where("book_id = ?", bookID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}

		if err := tx.Create(comment).Error; err != nil {
			return err
		}

		return tx.Model(&entities.Book{}).Where("book_id = ?", bookID).
			UpdateColumn("number_of_comments", gorm.Expr("number_of_comments + 1")).Error
	})
	if err != nil {
		return nil, err
	}
	return comment, nil
}

// GetBookText returns the full text of a book, or ErrNotFound if no text blob
// has been uploaded for it.
func (r *Repository) GetBookText(bookID uint) (string, error) {
	var text entities.BookText
	err := r.db.First(&text, "book_id = ?", bookID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	return text.BookText, nil
}

// ListAgeCategories returns all age categories for the admin add-book form.
func (r *Repository) ListAgeCategories() ([]entities.AgeCategory, error) {
	var categories []entities.AgeCategory
	err := r.db.Order("age_id").Find(&categories).Error
	return categories, err
}

// AddBook inserts a book together with its optional text blob and age
// category link in a single transaction.
func (r *Repository) AddBook(book *entities.Book, text string, ageID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&entities.Author{}).Where("author_id = ?", book.AuthorID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return fmt.Errorf("author %d: %w", book.AuthorID, ErrNotFound)
		}

		if err := tx.Create(book).Error; err != nil {
			return err
		}

		if text != "" {
			if err := tx.Create(&entities.BookText{BookID: book.ID, BookText: text}).Error; err != nil {
				return err
			}
		}

		if ageID != 0 {
			if err := tx.Create(&entities.BookAgeCategory{BookID: book.ID, AgeID: ageID}).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

// AddAuthor inserts a new author.
func (r *Repository) AddAuthor(author *entities.Author) error {
	return r.db.Create(author).Error
}

// CountBookLikes returns the number of like-edges pointing at a book. The
// admin delete flow uses it to warn before removing a book readers have liked.
func (r *Repository) CountBookLikes(bookID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entities.LikedBook{}).Where("book_id = ?", bookID).Count(&count).Error
	return count, err
}

// DeleteBook removes a book and every dependent row in one transaction:
// comments, like-edges, the text blob and the age category link all go before
// the book row itself.
func (r *Repository) DeleteBook(bookID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&entities.Book{}).Where("book_id = ?", bookID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}

		if err := tx.Where("book_id = ?", bookID).Delete(&entities.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("book_id = ?", bookID).Delete(&entities.LikedBook{}).Error; err != nil {
			return err
		}
		if err := tx.Where("book_id = ?", bookID).Delete(&entities.BookText{}).Error; err != nil {
			return err
		}
		if err := tx.Where("book_id = ?", bookID).Delete(&entities.BookAgeCategory{}).Error; err != nil {
			return err
		}

		return tx.Delete(&entities.Book{}, bookID).Error
	})
}
