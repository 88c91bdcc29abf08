// Package engagement provides database operations for reader engagement:
// liking books and favoriting authors.
package engagement

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"liber/internal/entities"
)

// ErrNotFound is returned when the target book or author does not exist.
var ErrNotFound = errors.New("not found")

// Outcome reports what a like or favorite operation actually did.
type Outcome int

const (
	// Added means at least one new like-edge was recorded.
	Added Outcome = iota
	// AlreadyLiked means the reader had liked the book before.
	AlreadyLiked
	// AlreadyFavorited means every book of the author was liked already.
	AlreadyFavorited
)

// Repository handles like-edges and the derived favorite-author view.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new engagement repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// LikeBook records that a reader likes a book. The insert is idempotent: the
// composite primary key on (user_id, book_id) plus ON CONFLICT DO NOTHING
// makes concurrent duplicate requests land exactly one row, and the book's
// like counter moves only when the row actually landed.
func (r *Repository) LikeBook(userID, bookID uint) (Outcome, error) {
	outcome := AlreadyLiked

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&entities.Book{}).Where("book_id = ?", bookID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return fmt.Errorf("book %d: %w", bookID, ErrNotFound)
		}

		result := tx.Exec(
			`INSERT INTO liked_books (user_id, book_id) VALUES (?, ?) ON CONFLICT (user_id, book_id) DO NOTHING`,
			userID, bookID,
		)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}

		outcome = Added
		return tx.Model(&entities.Book{}).Where("book_id = ?", bookID).
			UpdateColumn("number_of_likes", gorm.Expr("number_of_likes + 1")).Error
	})
	if err != nil {
		return 0, err
	}
	return outcome, nil
}

// FavoriteAuthor likes every book by the author the reader has not liked yet,
// bumping each affected book's counter in the same transaction. An author
// with no books favorites vacuously. Returns AlreadyFavorited when there was
// nothing left to like.
func (r *Repository) FavoriteAuthor(userID, authorID uint) (Outcome, error) {
	outcome := AlreadyFavorited

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&entities.Author{}).Where("author_id = ?", authorID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return fmt.Errorf("author %d: %w", authorID, ErrNotFound)
		}

		var bookIDs []uint
		err := tx.Model(&entities.Book{}).Where("author_id = ?", authorID).Pluck("book_id", &bookIDs).Error
		if err != nil {
			return err
		}
		if len(bookIDs) == 0 {
			outcome = Added
			return nil
		}

		for _, bookID := range bookIDs {
			result := tx.Exec(
				`INSERT INTO liked_books (user_id, book_id) VALUES (?, ?) ON CONFLICT (user_id, book_id) DO NOTHING`,
				userID, bookID,
			)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				continue
			}

			outcome = Added
			err = tx.Model(&entities.Book{}).Where("book_id = ?", bookID).
				UpdateColumn("number_of_likes", gorm.Expr("number_of_likes + 1")).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return outcome, nil
}

// ListFavoriteBooks returns the books a reader has liked, in like order.
func (r *Repository) ListFavoriteBooks(userID uint) ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Model(&entities.Book{}).
		Joins("JOIN liked_books ON liked_books.book_id = books.book_id").
		Where("liked_books.user_id = ?", userID).
		Order("books.book_id").
		Find(&books).Error
	return books, err
}

// ListFavoriteAuthors returns the distinct authors of the reader's liked
// books. An author appears once no matter how many of their books are liked.
func (r *Repository) ListFavoriteAuthors(userID uint) ([]entities.Author, error) {
	var authors []entities.Author
	err := r.db.Model(&entities.Author{}).
		Distinct("authors.*").
		Joins("JOIN books ON books.author_id = authors.author_id").
		Joins("JOIN liked_books ON liked_books.book_id = books.book_id").
		Where("liked_books.user_id = ?", userID).
		Order("authors.author_id").
		Find(&authors).Error
	return authors, err
}
