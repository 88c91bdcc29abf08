package database

import (
	"fmt"
	"log"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"liber/internal/config"
	"liber/internal/entities"
)

var defaultAgeCategories = []entities.AgeCategory{
	{CategoryCharacteristic: "0+"},
	{CategoryCharacteristic: "6+"},
	{CategoryCharacteristic: "12+"},
	{CategoryCharacteristic: "16+"},
	{CategoryCharacteristic: "18+"},
}

type Database struct {
	DB *gorm.DB
}

// NewDatabase connects to the Postgres store described by cfg and runs migrations.
func NewDatabase(cfg config.Database) (*Database, error) {
	db, err := gorm.Open(postgres.Open(BuildDSN(cfg)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	database, err := initDatabase(db)
	if err != nil {
		return nil, err
	}

	// Never log the password or the full DSN
	log.Printf("Database initialized (host=%s db=%s)", cfg.Host, cfg.Name)
	return database, nil
}

// NewSQLiteDatabase opens a file-backed sqlite database with the same schema.
// Used by the test suites; repository SQL is portable across both dialects.
func NewSQLiteDatabase(dbPath string) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	return initDatabase(db)
}

// BuildDSN assembles a key=value DSN from config. The password is included
// only when set so that empty-password local setups keep working.
func BuildDSN(cfg config.Database) string {
	parts := []string{
		"host=" + cfg.Host,
		"port=" + cfg.Port,
		"user=" + cfg.User,
		"dbname=" + cfg.Name,
		"sslmode=" + cfg.SSLMode,
	}
	if cfg.Password != "" {
		parts = append(parts, "password="+cfg.Password)
	}
	return strings.Join(parts, " ")
}

func initDatabase(db *gorm.DB) (*Database, error) {
	err := db.AutoMigrate(
		&entities.User{},
		&entities.Author{},
		&entities.Book{},
		&entities.Comment{},
		&entities.LikedBook{},
		&entities.BookText{},
		&entities.AgeCategory{},
		&entities.BookAgeCategory{},
		&entities.AuditEvent{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	database := &Database{DB: db}

	if err := database.seedAgeCategories(); err != nil {
		return nil, fmt.Errorf("failed to seed age categories: %w", err)
	}

	return database, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Healthy pings the underlying connection.
func (d *Database) Healthy() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func (d *Database) seedAgeCategories() error {
	for _, category := range defaultAgeCategories {
		var existing entities.AgeCategory
		result := d.DB.Where("category_characteristic = ?", category.CategoryCharacteristic).First(&existing)
		if result.Error == gorm.ErrRecordNotFound {
			if err := d.DB.Create(&category).Error; err != nil {
				return fmt.Errorf("failed to create age category %s: %w", category.CategoryCharacteristic, err)
			}
		}
	}
	return nil
}
