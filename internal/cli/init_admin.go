package cli

import (
	"flag"
	"fmt"
	"os"

	"liber/internal/auth"
	"liber/internal/config"
	"liber/internal/database"
	"liber/internal/database/users"
)

// InitAdminCommand creates the administrator account if it does not exist yet.
type InitAdminCommand struct {
	Email    string
	Password string
}

func NewInitAdminCommand() *InitAdminCommand {
	return &InitAdminCommand{}
}

func (cmd *InitAdminCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("init-admin", flag.ExitOnError)

	fs.StringVar(&cmd.Email, "email", "", "Administrator email (falls back to ADMIN_EMAIL)")
	fs.StringVar(&cmd.Password, "password", "", "Administrator password (falls back to ADMIN_PASSWORD)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s init-admin [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Create the administrator account in the catalog database.\n")
		fmt.Fprintf(os.Stderr, "The command is idempotent: an existing account is left untouched.\n\n")
		fmt.Fprintf(os.Stderr, "Database connection settings come from the usual DB_* environment\n")
		fmt.Fprintf(os.Stderr, "variables (DB_HOST, DB_PORT, DB_USER, DB_PASSWORD, DB_DATABASE).\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s init-admin -email admin@example.com -password 's3cret-pass'\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  ADMIN_EMAIL=admin@example.com ADMIN_PASSWORD='s3cret-pass' %s init-admin\n", os.Args[0])
	}

	return fs.Parse(args)
}

func (cmd *InitAdminCommand) Run() error {
	cfg := config.NewConfig()

	if cmd.Email == "" {
		cmd.Email = cfg.Admin.Email
	}
	if cmd.Password == "" {
		cmd.Password = cfg.Admin.Password
	}
	if cmd.Email == "" || cmd.Password == "" {
		return fmt.Errorf("administrator email and password are required (flags or ADMIN_EMAIL/ADMIN_PASSWORD)")
	}

	db, err := database.NewDatabase(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	service := auth.NewService(users.NewRepository(db.DB), cfg.Auth)

	created, err := service.EnsureAdmin(cmd.Email, cmd.Password)
	if err != nil {
		return fmt.Errorf("failed to create administrator: %w", err)
	}

	if created {
		fmt.Printf("Administrator account created: %s\n", cmd.Email)
	} else {
		fmt.Printf("Administrator account already exists: %s\n", cmd.Email)
	}
	return nil
}
