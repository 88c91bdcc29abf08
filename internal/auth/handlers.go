package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"liber/internal/config"
)

// Controller handles the authentication HTTP endpoints.
type Controller struct {
	service        *Service
	sessionManager *SessionManager
	rateLimiter    *RateLimiter
}

// NewController creates a new authentication controller.
func NewController(service *Service, sessionManager *SessionManager, cfg config.Auth) *Controller {
	rateLimiter := NewRateLimiter(RateLimitConfig{
		MaxAttempts:     cfg.MaxLoginAttempts,
		WindowDuration:  cfg.RateLimitWindow,
		LockoutDuration: cfg.LockoutDuration,
	})

	return &Controller{
		service:        service,
		sessionManager: sessionManager,
		rateLimiter:    rateLimiter,
	}
}

// RegisterRoutes registers authentication routes on the router.
func (ac *Controller) RegisterRoutes(router *gin.Engine) {
	group := router.Group("/api/auth")
	group.POST("/register", ac.Register)
	group.POST("/login", ac.Login)
	group.POST("/logout", ac.Logout)
	group.GET("/me", ac.Me)
}

// Stop cleans up the rate limiter's background goroutine.
func (ac *Controller) Stop() {
	if ac.rateLimiter != nil {
		ac.rateLimiter.Stop()
	}
}

type registerRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Age      int    `json:"age"`
}

// Register creates a reader account. The new account is not logged in;
// the client follows up with a login call.
func (ac *Controller) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	user, err := ac.service.Register(req.Email, req.Password, req.Age)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmailTaken):
			c.JSON(http.StatusConflict, gin.H{"error": ErrEmailTaken.Error()})
		case errors.Is(err, ErrEmailInvalid),
			errors.Is(err, ErrInvalidAge),
			errors.Is(err, ErrPasswordTooShort),
			errors.Is(err, ErrPasswordTooLong):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": user})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login validates credentials and starts a session.
func (ac *Controller) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	clientIP := c.ClientIP()

	allowed, retryAfter := ac.rateLimiter.Allow(clientIP, req.Email)
	if !allowed {
		c.Header("Retry-After", retryAfter.String())
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":       "too many login attempts",
			"retry_after": retryAfter.String(),
		})
		return
	}

	user, err := ac.service.Authenticate(req.Email, req.Password)
	if err != nil {
		ac.rateLimiter.RecordFailure(clientIP, req.Email)

		if errors.Is(err, ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": ErrInvalidCredentials.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to log in"})
		return
	}

	ac.rateLimiter.RecordSuccess(clientIP, req.Email)

	if err := ac.sessionManager.CreateSession(c.Request, user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// Logout destroys the session.
func (ac *Controller) Logout(c *gin.Context) {
	if err := ac.sessionManager.DestroySession(c.Request); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to log out"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// Me returns the authenticated user's account.
func (ac *Controller) Me(c *gin.Context) {
	userID := GetUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	user, err := ac.service.GetUserByID(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}
