package http

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"liber/internal/backup"
	"liber/internal/database/catalog"
	"liber/internal/entities"
	"liber/internal/tasks"
)

// AdminCatalogStore defines the catalog mutations reserved for admins.
type AdminCatalogStore interface {
	AddBook(book *entities.Book, text string, ageID uint) error
	AddAuthor(author *entities.Author) error
	DeleteBook(bookID uint) error
	CountBookLikes(bookID uint) (int64, error)
	ListAgeCategories() ([]entities.AgeCategory, error)
}

// AuditLog records administrative actions.
type AuditLog interface {
	LogEvent(event *entities.AuditEvent) error
	GetEvents(userID uint, limit, offset int) ([]entities.AuditEvent, int64, error)
	GetEventsByType(eventType entities.AuditEventType, limit, offset int) ([]entities.AuditEvent, int64, error)
}

// BackupService creates and lists database dumps.
type BackupService interface {
	Create(ctx context.Context, name string) (string, error)
	List() ([]backup.Dump, error)
}

// AdminController handles catalog management and backups. A nil queue means
// the task queue is disabled and backups run synchronously.
type AdminController struct {
	catalog  AdminCatalogStore
	auditLog AuditLog
	backups  BackupService
	queue    *tasks.Client
}

func NewAdminController(catalogStore AdminCatalogStore, auditLog AuditLog, backups BackupService, queue *tasks.Client) *AdminController {
	return &AdminController{
		catalog:  catalogStore,
		auditLog: auditLog,
		backups:  backups,
		queue:    queue,
	}
}

type addBookRequest struct {
	Title       string `json:"title" binding:"required"`
	Date        string `json:"date"` // YYYY-MM-DD
	AuthorID    uint   `json:"author_id" binding:"required"`
	Description string `json:"description"`
	BookCover   string `json:"book_cover"`
	Text        string `json:"text"`
	AgeID       uint   `json:"age_id"`
}

// AddBook creates a book with optional text and age category.
// POST /api/admin/books
func (ac *AdminController) AddBook(c *gin.Context) {
	var req addBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "title and author_id are required")
		return
	}

	var date time.Time
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			respondBadRequest(c, "date must be formatted as YYYY-MM-DD")
			return
		}
		date = parsed
	}

	book := &entities.Book{
		Title:       req.Title,
		Date:        date,
		AuthorID:    req.AuthorID,
		Description: req.Description,
		BookCover:   req.BookCover,
	}

	err := ac.catalog.AddBook(book, req.Text, req.AgeID)
	ac.logCatalog(c, "book_add", fmt.Sprintf("Added book %q", req.Title), &book.ID, err)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			respondBadRequest(c, "author does not exist")
			return
		}
		respondInternalError(c, err, "add book")
		return
	}

	respondCreated(c, gin.H{"book": book})
}

type addAuthorRequest struct {
	Fullname  string `json:"fullname" binding:"required"`
	Biography string `json:"biography"`
}

// AddAuthor creates an author.
// POST /api/admin/authors
func (ac *AdminController) AddAuthor(c *gin.Context) {
	var req addAuthorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "fullname is required")
		return
	}

	author := &entities.Author{
		Fullname:  req.Fullname,
		Biography: req.Biography,
	}

	err := ac.catalog.AddAuthor(author)
	ac.logCatalog(c, "author_add", fmt.Sprintf("Added author %q", req.Fullname), &author.ID, err)
	if err != nil {
		respondInternalError(c, err, "add author")
		return
	}

	respondCreated(c, gin.H{"author": author})
}

// DeleteBook removes a book and everything attached to it. When the book has
// likes the request must carry confirm=true, otherwise it is rejected with
// 409 and the like count so the admin can decide.
// DELETE /api/admin/books/:id?confirm=true
func (ac *AdminController) DeleteBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	likes, err := ac.catalog.CountBookLikes(id)
	if err != nil {
		respondInternalError(c, err, "count book likes")
		return
	}

	if likes > 0 && c.Query("confirm") != "true" {
		respondConflict(c, "book has likes; repeat with confirm=true to delete", gin.H{"likes": likes})
		return
	}

	err = ac.catalog.DeleteBook(id)
	ac.logCatalog(c, "book_delete", fmt.Sprintf("Deleted book %d", id), &id, err)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			respondNotFound(c, "book")
			return
		}
		respondInternalError(c, err, "delete book")
		return
	}

	respondSuccess(c, "book deleted")
}

// ListAgeCategories returns the age categories for the add-book form.
// GET /api/admin/age-categories
func (ac *AdminController) ListAgeCategories(c *gin.Context) {
	categories, err := ac.catalog.ListAgeCategories()
	if err != nil {
		respondInternalError(c, err, "list age categories")
		return
	}

	c.JSON(http.StatusOK, gin.H{"age_categories": categories})
}

type createBackupRequest struct {
	Name string `json:"name"`
}

// CreateBackup dumps the database. With the task queue enabled the dump runs
// in the background and the request returns 202; otherwise it runs inline.
// POST /api/admin/backups
func (ac *AdminController) CreateBackup(c *gin.Context) {
	var req createBackupRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, "invalid request body")
			return
		}
	}

	if ac.queue != nil {
		task := tasks.BackupTask{Name: req.Name, RequestedBy: GetUserID(c)}
		if _, err := ac.queue.Add(task).Ctx(c.Request.Context()).Save(); err != nil {
			respondInternalError(c, err, "enqueue backup")
			return
		}
		respondAccepted(c, "backup queued", gin.H{"name": req.Name})
		return
	}

	filename, err := ac.backups.Create(c.Request.Context(), req.Name)
	ac.logBackup(c, filename, err)
	if err != nil {
		if errors.Is(err, backup.ErrInvalidName) || errors.Is(err, backup.ErrNameTaken) {
			respondBadRequest(c, err.Error())
			return
		}
		respondInternalError(c, err, "create backup")
		return
	}

	respondCreated(c, gin.H{"filename": filename})
}

// ListBackups returns the dumps on disk, newest first.
// GET /api/admin/backups
func (ac *AdminController) ListBackups(c *gin.Context) {
	dumps, err := ac.backups.List()
	if err != nil {
		respondInternalError(c, err, "list backups")
		return
	}

	c.JSON(http.StatusOK, gin.H{"backups": dumps, "total": len(dumps)})
}

// ListAuditEvents returns the audit trail, newest first.
// GET /api/admin/audit?type=...&limit=...&offset=...
func (ac *AdminController) ListAuditEvents(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	var (
		events []entities.AuditEvent
		total  int64
		err    error
	)
	if eventType := c.Query("type"); eventType != "" {
		events, total, err = ac.auditLog.GetEventsByType(entities.AuditEventType(eventType), limit, offset)
	} else {
		events, total, err = ac.auditLog.GetEvents(0, limit, offset)
	}
	if err != nil {
		respondInternalError(c, err, "list audit events")
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": events, "total": total})
}

func (ac *AdminController) logCatalog(c *gin.Context, action, description string, entityID *uint, runErr error) {
	event := &entities.AuditEvent{
		UserID:      GetUserID(c),
		EventType:   entities.AuditEventCatalog,
		Action:      action,
		Description: description,
		EntityID:    entityID,
		Status:      entities.AuditStatusSuccess,
	}
	if runErr != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = runErr.Error()
		event.EntityID = nil
	}
	if err := ac.auditLog.LogEvent(event); err != nil {
		log.Printf("Failed to record audit event (%s): %v", action, err)
	}
}

func (ac *AdminController) logBackup(c *gin.Context, filename string, runErr error) {
	event := &entities.AuditEvent{
		UserID:      GetUserID(c),
		EventType:   entities.AuditEventBackup,
		Action:      "backup_run",
		Description: "Database backup",
		Status:      entities.AuditStatusSuccess,
	}
	if filename != "" {
		event.Description = "Database backup: " + filename
	}
	if runErr != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = runErr.Error()
	}
	if err := ac.auditLog.LogEvent(event); err != nil {
		log.Printf("Failed to record audit event (backup_run): %v", err)
	}
}
