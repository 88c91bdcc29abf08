package entrypoint

import (
	"context"
	"database/sql"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/mattn/go-sqlite3"

	"liber/internal/auth"
	"liber/internal/backup"
	"liber/internal/config"
	"liber/internal/database"
	"liber/internal/database/audit"
	"liber/internal/database/catalog"
	"liber/internal/database/engagement"
	"liber/internal/database/users"
	"liber/internal/entities"
	http_controllers "liber/internal/http"
	"liber/internal/scheduler"
	"liber/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM. SIGKILL can't be caught so there
	// is no point registering it.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop background workers before the listener so in-flight requests can
	// still enqueue work while it drains
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Liber v%s", version)

	// Initialize the catalog database
	db, err := database.NewDatabase(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	// Repositories
	catalogRepo := catalog.NewRepository(db.DB)
	engagementRepo := engagement.NewRepository(db.DB)
	usersRepo := users.NewRepository(db.DB)
	auditRepo := audit.NewRepository(db.DB)

	// Authentication: sessions live on a dedicated sqlite store so the
	// Postgres catalog stays free of ephemeral rows
	authService := auth.NewService(usersRepo, cfg.Auth)

	sessionsDB, err := sql.Open("sqlite3", cfg.Auth.SessionsDBPath+"?_journal=WAL&_busy_timeout=5000")
	if err != nil {
		log.Fatalf("Failed to open sessions database: %v", err)
	}
	defer sessionsDB.Close()

	sessionManager, err := auth.NewSessionManager(sessionsDB, cfg.Auth)
	if err != nil {
		log.Fatalf("Failed to initialize session manager: %v", err)
	}

	authMiddleware := auth.NewMiddleware(authService, sessionManager)
	authController := auth.NewController(authService, sessionManager, cfg.Auth)

	csrfSecret := resolveCSRFSecret(cfg.Auth.SessionSecret)

	// Bootstrap the administrator account when configured
	if cfg.Admin.Email != "" && cfg.Admin.Password != "" {
		created, err := authService.EnsureAdmin(cfg.Admin.Email, cfg.Admin.Password)
		if err != nil {
			log.Fatalf("Failed to create administrator account: %v", err)
		}
		if created {
			log.Printf("Administrator account created: %s", cfg.Admin.Email)
		}
	} else {
		log.Printf("ADMIN_EMAIL/ADMIN_PASSWORD not set; run 'init-admin' to create an administrator")
	}

	// Backups
	backupService := backup.NewService(cfg.Database, cfg.Backup)
	backupRecorder := &backupAuditRecorder{auditLog: auditRepo}

	// Task queue on its own sqlite database so queued work survives restarts
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Tasks.DBPath, tasks.FromConfig(cfg.Tasks))
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(
			tasks.NewBackupQueue(backupService, backupRecorder),
			tasks.NewCleanupAuditEventsQueue(auditRepo),
		)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)
	}

	// Periodic jobs
	backupScheduler := scheduler.NewBackupScheduler(backupService, auditRepo, cfg.Backup.Schedule)
	if err := backupScheduler.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start backup scheduler: %v", err)
	}

	auditCleanup := scheduler.NewAuditCleanupScheduler(taskClient, cfg.Audit.RetentionDays)
	if err := auditCleanup.Start(); err != nil {
		log.Fatalf("Failed to start audit cleanup scheduler: %v", err)
	}

	routerCfg := http_controllers.RouterConfig{
		Database:        db,
		Catalog:         catalogRepo,
		Authors:         catalogRepo,
		Likes:           engagementRepo,
		FavoriteAuthors: engagementRepo,
		Favorites:       engagementRepo,
		AdminCatalog:    catalogRepo,
		AuditLog:        auditRepo,
		Backups:         backupService,
		AuthController:  authController,
		AuthMiddleware:  authMiddleware,
		SessionManager:  sessionManager,
		CSRFSecret:      csrfSecret,
		SecureCookies:   cfg.Auth.SecureCookies,
		ImagesDir:       cfg.Assets.ImagesDir,
		TaskClient:      taskClient,
		Version:         version,
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		auditCleanup.Stop()
		backupScheduler.Stop()
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
		authController.Stop()
	}

	Serve(router, cfg, onShutdown)
}

// resolveCSRFSecret decodes the configured session secret, falling back to a
// generated one so the server never runs without CSRF protection.
func resolveCSRFSecret(configured string) []byte {
	if configured != "" {
		if secret, err := hex.DecodeString(configured); err == nil {
			return secret
		}
		// Not hex, use as raw bytes
		return []byte(configured)
	}

	generated, err := auth.GenerateSessionSecret()
	if err != nil {
		log.Fatalf("Failed to generate CSRF secret: %v", err)
	}
	log.Printf("Generated session secret (set AUTH_SESSION_SECRET to persist)")
	secret, _ := hex.DecodeString(generated)
	return secret
}

// backupAuditRecorder writes an audit event for every queued backup run.
type backupAuditRecorder struct {
	auditLog *audit.Repository
}

func (r *backupAuditRecorder) RecordBackupResult(requestedBy uint, filename string, runErr error) {
	event := &entities.AuditEvent{
		UserID:      requestedBy,
		EventType:   entities.AuditEventBackup,
		Action:      "backup_run",
		Description: "Queued database backup",
		Status:      entities.AuditStatusSuccess,
	}
	if filename != "" {
		event.Description = "Queued database backup: " + filename
	}
	if runErr != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = runErr.Error()
	}

	if err := r.auditLog.LogEvent(event); err != nil {
		log.Printf("Failed to record backup audit event: %v", err)
	}
}
