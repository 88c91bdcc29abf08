package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"liber/internal/backup"
	"liber/internal/config"
)

// BackupCommand runs a pg_dump backup of the catalog database.
type BackupCommand struct {
	Name    string
	List    bool
	Timeout time.Duration
}

func NewBackupCommand() *BackupCommand {
	return &BackupCommand{}
}

func (cmd *BackupCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("backup", flag.ExitOnError)

	fs.StringVar(&cmd.Name, "name", "", "Backup file name without extension (default: backup_<timestamp>)")
	fs.BoolVar(&cmd.List, "list", false, "List existing backups instead of creating one")
	fs.DurationVar(&cmd.Timeout, "timeout", 10*time.Minute, "Maximum time to wait for pg_dump")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s backup [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Create a pg_dump backup of the catalog database.\n\n")
		fmt.Fprintf(os.Stderr, "Backups are written to BACKUP_DIR as <name>.sql. Database connection\n")
		fmt.Fprintf(os.Stderr, "settings come from the usual DB_* environment variables.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  # Create a backup with a generated name:\n")
		fmt.Fprintf(os.Stderr, "  %s backup\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  # Create a named backup:\n")
		fmt.Fprintf(os.Stderr, "  %s backup -name before_migration\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  # List existing backups:\n")
		fmt.Fprintf(os.Stderr, "  %s backup -list\n", os.Args[0])
	}

	return fs.Parse(args)
}

func (cmd *BackupCommand) Run() error {
	cfg := config.NewConfig()
	service := backup.NewService(cfg.Database, cfg.Backup)

	if cmd.List {
		return cmd.listBackups(service, cfg.Backup.Dir)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cmd.Timeout)
	defer cancel()

	fmt.Printf("Backing up database %s to %s...\n", cfg.Database.Name, cfg.Backup.Dir)

	filename, err := service.Create(ctx, cmd.Name)
	if err != nil {
		return fmt.Errorf("backup failed: %w", err)
	}

	fmt.Printf("Backup written: %s\n", filename)
	return nil
}

func (cmd *BackupCommand) listBackups(service *backup.Service, dir string) error {
	dumps, err := service.List()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}

	if len(dumps) == 0 {
		fmt.Printf("No backups found in %s\n", dir)
		return nil
	}

	fmt.Printf("Backups in %s:\n", dir)
	for _, dump := range dumps {
		fmt.Printf("  %s  %8d bytes  %s\n",
			dump.CreatedAt.Format("2006-01-02 15:04:05"), dump.SizeBytes, dump.Name)
	}
	return nil
}
