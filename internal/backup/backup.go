// Package backup creates and lists database dumps via pg_dump.
package backup

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"liber/internal/config"
)

var (
	// ErrInvalidName rejects dump names that could escape the backup
	// directory or break the filename.
	ErrInvalidName = errors.New("backup name may only contain letters, digits, dot, dash and underscore")
	ErrNameTaken   = errors.New("a backup with this name already exists")
)

var namePattern = regexp.MustCompile(`^[a-zA-Z0-9._\-]{1,100}$`)

// Runner executes the dump command. Swapped out in tests.
type Runner interface {
	Run(ctx context.Context, name string, env []string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, env []string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = append(os.Environ(), env...)
	return cmd.CombinedOutput()
}

// Dump describes one file in the backup directory.
type Dump struct {
	Name      string    `json:"name"`
	SizeBytes int64     `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
}

// Service produces plain-SQL dumps of the Postgres store.
type Service struct {
	db     config.Database
	cfg    config.Backup
	runner Runner
}

// NewService creates a backup service using the real pg_dump binary.
func NewService(db config.Database, cfg config.Backup) *Service {
	return &Service{db: db, cfg: cfg, runner: execRunner{}}
}

// NewServiceWithRunner creates a backup service with a custom command runner.
func NewServiceWithRunner(db config.Database, cfg config.Backup, runner Runner) *Service {
	return &Service{db: db, cfg: cfg, runner: runner}
}

// Create runs pg_dump and writes <name>.sql into the backup directory.
// An empty name gets a timestamped default. Returns the dump filename.
func (s *Service) Create(ctx context.Context, name string) (string, error) {
	if name == "" {
		name = "backup_" + time.Now().Format("20060102_150405")
	}
	if !namePattern.MatchString(name) {
		return "", ErrInvalidName
	}

	if err := os.MkdirAll(s.cfg.Dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	filename := name
	if !strings.HasSuffix(filename, ".sql") {
		filename += ".sql"
	}
	path := filepath.Join(s.cfg.Dir, filename)

	if _, err := os.Stat(path); err == nil {
		return "", ErrNameTaken
	}

	args := []string{
		"-h", s.db.Host,
		"-p", s.db.Port,
		"-U", s.db.User,
		"-d", s.db.Name,
		"-f", path,
	}
	// The password travels via environment, never via argv
	env := []string{"PGPASSWORD=" + s.db.Password}

	output, err := s.runner.Run(ctx, s.pgDumpBinary(), env, args...)
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("pg_dump failed: %w: %s", err, strings.TrimSpace(string(output)))
	}

	log.Printf("Backup written to %s", path)
	return filename, nil
}

// List returns the dumps in the backup directory, newest first. A missing
// directory means no backups yet, not an error.
func (s *Service) List() ([]Dump, error) {
	entries, err := os.ReadDir(s.cfg.Dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []Dump{}, nil
		}
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	dumps := make([]Dump, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		dumps = append(dumps, Dump{
			Name:      entry.Name(),
			SizeBytes: info.Size(),
			CreatedAt: info.ModTime(),
		})
	}

	sort.Slice(dumps, func(i, j int) bool {
		return dumps[i].CreatedAt.After(dumps[j].CreatedAt)
	})
	return dumps, nil
}

func (s *Service) pgDumpBinary() string {
	if s.cfg.PgDump != "" {
		return s.cfg.PgDump
	}
	return "pg_dump"
}
