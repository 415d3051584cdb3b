package api

import (
	"net/http" // HTTP status codes
	"regexp"   // Regular expressions
	"time"     // Token issue time

	"crowdfund_ledger/internal/domain" // Domain models
	"crowdfund_ledger/internal/ledger" // Ledger service
	"crowdfund_ledger/internal/utils"  // JWT helpers

	"github.com/gin-gonic/gin"   // Gin web framework
	"golang.org/x/crypto/bcrypt" // Password hashing
)

// RegisterRequest is the body of POST /user
type RegisterRequest struct {
	Username string `json:"username" binding:"required"` // Username must be provided
	Password string `json:"password" binding:"required"` // Password must be provided
}

// LoginRequest is the body of POST /user/login
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse carries an access token
type AuthResponse struct {
	Token     string    `json:"token"`      // JWT token
	ExpiresAt time.Time `json:"expires_at"` // Expiry of the token
}

var usernamePattern = regexp.MustCompile(`^[A-Za-z]{3,32}$`)

// isValidUsername checks the username is 3-32 alphabetic characters
func isValidUsername(username string) bool {
	return usernamePattern.MatchString(username)
}

// isValidPassword checks if the password length is between 8 and 64 characters
func isValidPassword(password string) bool {
	return len(password) >= 8 && len(password) <= 64 // bcrypt ignores bytes past 72
}

// RegisterHandler creates an account together with its empty wallet
func RegisterHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid request")
			return
		}
		if !isValidUsername(req.Username) {
			badRequest(c, "Username must be 3-32 alphabetic characters")
			return
		}
		if !isValidPassword(req.Password) {
			badRequest(c, "Password must be 8-64 characters")
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			respondError(c, err) // Hashing failures are internal
			return
		}
		user, err := svc.RegisterUser(c.Request.Context(), req.Username, string(hash), domain.RoleUser)
		if err != nil {
			respondError(c, err) // Duplicate usernames map to 409
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully", "user": user})
	}
}

// LoginHandler authenticates a user and returns a JWT token
func LoginHandler(svc *ledger.Service, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid request")
			return
		}
		user, err := svc.UserByUsername(c.Request.Context(), req.Username)
		if err != nil || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
			// Unknown user and wrong password look the same
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid credentials", Code: "unauthorized"})
			return
		}
		now := time.Now()
		token, err := utils.GenerateJWT(user.ID, user.Role, jwtSecret, now)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, AuthResponse{Token: token, ExpiresAt: now.Add(utils.TokenTTL)})
	}
}
