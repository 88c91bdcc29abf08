package users

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"liber/internal/entities"
)

func setupTestDB(t *testing.T) (*Repository, func()) {
	dbPath := "./test_users_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.User{})
	require.NoError(t, err)

	repo := NewRepository(db)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return repo, cleanup
}

func TestRepository_CreateAndGetUser(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	user := &entities.User{
		Email:        "reader@example.com",
		HashPassword: "$2a$12$fakehash",
		Role:         entities.UserRoleReader,
		Age:          30,
	}
	require.NoError(t, repo.CreateUser(user))
	assert.NotZero(t, user.ID)

	byEmail, err := repo.GetUserByEmail("reader@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)
	assert.Equal(t, 30, byEmail.Age)

	byID, err := repo.GetUserByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "reader@example.com", byID.Email)
}

func TestRepository_GetUser_NotFound(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.GetUserByEmail("missing@example.com")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.GetUserByID(999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepository_CreateUser_DuplicateEmail(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	first := &entities.User{Email: "reader@example.com", HashPassword: "x"}
	require.NoError(t, repo.CreateUser(first))

	second := &entities.User{Email: "reader@example.com", HashPassword: "y"}
	err := repo.CreateUser(second)

	assert.Error(t, err)
}

func TestRepository_EmailExists(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	require.NoError(t, repo.CreateUser(&entities.User{Email: "reader@example.com", HashPassword: "x"}))

	exists, err := repo.EmailExists("reader@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.EmailExists("other@example.com")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRepository_CountAdmins(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	count, err := repo.CountAdmins()
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	require.NoError(t, repo.CreateUser(&entities.User{Email: "a@example.com", HashPassword: "x", Role: entities.UserRoleAdmin}))
	require.NoError(t, repo.CreateUser(&entities.User{Email: "r@example.com", HashPassword: "x", Role: entities.UserRoleReader}))

	count, err = repo.CountAdmins()
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
