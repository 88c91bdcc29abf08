// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup, migrations, category seeding
//	├── catalog/         # Books, authors, comments, book texts
//	├── engagement/      # Like-edges and favorite-author projections
//	├── users/           # User accounts
//	└── audit/           # Administrative audit events
//
// # Using Sub-packages
//
// Each sub-package provides a Repository type with domain-specific operations:
//
//	// Initialize database connection
//	db, err := database.NewDatabase(cfg.Database)
//
//	// Create domain-specific repositories
//	catalogRepo := catalog.NewRepository(db.DB)
//	engagementRepo := engagement.NewRepository(db.DB)
//
//	// Use repositories
//	books, err := catalogRepo.ListBooks("dune")
//	outcome, err := engagementRepo.LikeBook(userID, bookID)
//
// All repository SQL is portable between the Postgres production store and the
// sqlite databases used in tests: substring search is expressed as LOWER(...)
// LIKE and like-edge inserts as INSERT ... ON CONFLICT DO NOTHING, both of
// which behave identically on either dialect.
package database
