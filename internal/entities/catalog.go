package entities

import "time"

type Author struct {
	ID        uint   `gorm:"primaryKey;column:author_id" json:"author_id"`
	Fullname  string `gorm:"index;size:256" json:"fullname"`
	Biography string `gorm:"type:text" json:"biography,omitempty"`
}

type Book struct {
	ID               uint      `gorm:"primaryKey;column:book_id" json:"book_id"`
	Title            string    `gorm:"index;size:512" json:"title"`
	Date             time.Time `gorm:"column:date" json:"date"`
	AuthorID         uint      `gorm:"index" json:"author_id"`
	Description      string    `gorm:"type:text" json:"description,omitempty"`
	NumberOfLikes    int       `gorm:"default:0" json:"number_of_likes"`
	NumberOfComments int       `gorm:"default:0" json:"number_of_comments"`
	BookCover        string    `gorm:"size:512" json:"book_cover,omitempty"`

	Author Author `gorm:"foreignKey:AuthorID" json:"-"`
}

// BookWithCategory is a Book joined with its optional age category label.
// Books without a category classification carry a nil AgeCategory.
type BookWithCategory struct {
	Book
	AgeCategory *string `json:"age_category"`
}

type Comment struct {
	ID          uint      `gorm:"primaryKey;column:comment_id" json:"comment_id"`
	BookID      uint      `gorm:"index" json:"book_id"`
	UserID      uint      `gorm:"index" json:"user_id"`
	CommentText string    `gorm:"type:text" json:"comment_text"`
	Date        time.Time `gorm:"index;column:date" json:"date"`
}

// GlobalComment is a comment joined with the title of the book it belongs to,
// used for the site-wide comment feed.
type GlobalComment struct {
	BookTitle   string    `json:"book_title"`
	CommentText string    `json:"comment_text"`
	UserID      uint      `json:"user_id"`
	Date        time.Time `json:"date"`
}

// LikedBook is a like-edge: at most one per (user, book) pair.
// The composite primary key is the authoritative uniqueness guard.
type LikedBook struct {
	UserID uint `gorm:"primaryKey" json:"user_id"`
	BookID uint `gorm:"primaryKey" json:"book_id"`
}

// BookText holds the full text of a book, at most one blob per book.
type BookText struct {
	BookID   uint   `gorm:"primaryKey" json:"book_id"`
	BookText string `gorm:"type:text" json:"book_text"`
}

type AgeCategory struct {
	ID                     uint   `gorm:"primaryKey;column:age_id" json:"age_id"`
	CategoryCharacteristic string `gorm:"size:100" json:"category_characteristic"`
}

// BookAgeCategory links a book to its age category.
type BookAgeCategory struct {
	BookID uint `gorm:"primaryKey" json:"book_id"`
	AgeID  uint `gorm:"primaryKey" json:"age_id"`
}

func (Author) TableName() string {
	return "authors"
}

func (Book) TableName() string {
	return "books"
}

func (Comment) TableName() string {
	return "comments"
}

func (LikedBook) TableName() string {
	return "liked_books"
}

func (BookText) TableName() string {
	return "book_texts"
}

func (AgeCategory) TableName() string {
	return "age_category"
}

func (BookAgeCategory) TableName() string {
	return "age_categories_of_books"
}
