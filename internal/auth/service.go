package auth

import (
	"errors"
	"fmt"
	"regexp"

	"liber/internal/config"
	"liber/internal/database/users"
	"liber/internal/entities"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

var (
	// ErrInvalidCredentials covers both unknown email and wrong password so
	// login responses do not reveal which one it was.
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrEmailRequired      = errors.New("email is required")
	ErrEmailInvalid       = errors.New("invalid email format")
	ErrPasswordRequired   = errors.New("password is required")
	ErrInvalidAge         = errors.New("age must be between 0 and 150")
)

// Service handles registration and credential checks.
type Service struct {
	users  *users.Repository
	config config.Auth
}

// NewService creates a new authentication service.
func NewService(repo *users.Repository, cfg config.Auth) *Service {
	return &Service{
		users:  repo,
		config: cfg,
	}
}

// Register creates a new reader account.
func (s *Service) Register(email, password string, age int) (*entities.User, error) {
	user, err := s.createUser(email, password, age, entities.UserRoleReader)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate validates credentials and returns the user. Unknown email and
// wrong password both come back as ErrInvalidCredentials.
func (s *Service) Authenticate(email, password string) (*entities.User, error) {
	user, err := s.users.GetUserByEmail(email)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := CheckPassword(password, user.HashPassword); err != nil {
		return nil, err
	}

	return user, nil
}

// EnsureAdmin creates an administrator account with the given credentials
// unless one with that email already exists. Returns true when the account
// was created. Used at startup and by the init-admin command.
func (s *Service) EnsureAdmin(email, password string) (bool, error) {
	exists, err := s.users.EmailExists(email)
	if err != nil {
		return false, fmt.Errorf("failed to check existing admin: %w", err)
	}
	if exists {
		return false, nil
	}

	if _, err := s.createUser(email, password, 0, entities.UserRoleAdmin); err != nil {
		return false, err
	}
	return true, nil
}

// GetUserByID retrieves a user by their ID.
func (s *Service) GetUserByID(id uint) (*entities.User, error) {
	return s.users.GetUserByID(id)
}

func (s *Service) createUser(email, password string, age int, role entities.UserRole) (*entities.User, error) {
	if email == "" {
		return nil, ErrEmailRequired
	}
	if password == "" {
		return nil, ErrPasswordRequired
	}
	// RFC 5321 caps the address at 254 bytes
	if len(email) > 254 || !emailPattern.MatchString(email) {
		return nil, ErrEmailInvalid
	}
	if age < 0 || age > 150 {
		return nil, ErrInvalidAge
	}

	exists, err := s.users.EmailExists(email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if exists {
		return nil, ErrEmailTaken
	}

	hash, err := HashPassword(password, s.config.BcryptCost)
	if err != nil {
		return nil, err
	}

	user := &entities.User{
		Email:        email,
		HashPassword: hash,
		Role:         role,
		Age:          age,
	}
	if err := s.users.CreateUser(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}
