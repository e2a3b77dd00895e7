package api

import (
	"errors"   // Error inspection
	"net/http" // HTTP status codes
	"strings"  // String manipulation

	"ecommerce_backend/internal/domain"     // Importing domain models
	"ecommerce_backend/internal/middleware" // Authenticated user ID
	"ecommerce_backend/internal/utils"      // Utility functions

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Structured logging
	"golang.org/x/crypto/bcrypt" // Password hashing
	"gorm.io/gorm"               // GORM ORM library
)

// minPasswordLength applies to profile password changes
const minPasswordLength = 6

// dummyHash stands in for the stored hash when no account matches the email
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("no-such-account"), bcrypt.DefaultCost)

// matchSecret reports whether plain matches hash. When the account was not found
// it still runs a comparison so both branches take the same time.
func matchSecret(hash string, found bool, plain string) bool {
	if !found {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(plain))
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// RegisterRequest is the body of POST /auth/register
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`        // Display name
	Email    string `json:"email" binding:"required,email"` // Login email
	Password string `json:"password" binding:"required"`    // Plain password, hashed before storage
	Phone    string `json:"phone" binding:"required"`       // Contact phone
	Address  string `json:"address" binding:"required"`     // Shipping address
	Answer   string `json:"answer" binding:"required"`      // Security answer for password recovery
}

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`    // Login email
	Password string `json:"password" binding:"required"` // Plain password
}

// ForgotPasswordRequest is the body of POST /auth/forgot-password
type ForgotPasswordRequest struct {
	Email       string `json:"email" binding:"required"`       // Account email
	Answer      string `json:"answer" binding:"required"`      // Security answer
	NewPassword string `json:"newPassword" binding:"required"` // Replacement password
}

// ProfileRequest is the body of PUT /auth/profile; empty fields are left unchanged
type ProfileRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

// normalizeEmail lower-cases and trims an email so lookups are case-insensitive
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// normalizeAnswer makes the security answer comparison tolerant of case and spacing
func normalizeAnswer(answer string) string {
	return strings.ToLower(strings.TrimSpace(answer))
}

// RegisterHandler creates a user account
func RegisterHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			bindFailed(c, err) // Names the first missing or invalid field
			return
		}
		email := normalizeEmail(req.Email)
		// Refuse a second account for the same email
		var existing int64
		if err := db.WithContext(c.Request.Context()).Model(&domain.User{}).Where("email = ?", email).Count(&existing).Error; err != nil {
			respondError(c, err)
			return
		}
		if existing > 0 {
			fail(c, utils.CodeConflict, "Email is already registered, please login")
			return
		}
		// Hash the password and the security answer
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			respondError(c, err)
			return
		}
		answerHash, err := bcrypt.GenerateFromPassword([]byte(normalizeAnswer(req.Answer)), bcrypt.DefaultCost)
		if err != nil {
			respondError(c, err)
			return
		}
		user := domain.User{
			Name:     strings.TrimSpace(req.Name),
			Email:    email,
			Password: string(hash),
			Phone:    req.Phone,
			Address:  req.Address,
			Answer:   string(answerHash),
			Role:     domain.RoleUser,
		}
		// Attempt to create the user; a concurrent registration loses on the unique index
		if err := db.WithContext(c.Request.Context()).Create(&user).Error; err != nil {
			if isDuplicate(err) {
				fail(c, utils.CodeConflict, "Email is already registered, please login")
				return
			}
			respondError(c, err)
			return
		}
		logrus.WithFields(logrus.Fields{"user_id": user.ID}).Info("user registered")
		c.JSON(http.StatusCreated, gin.H{
			"success": true,
			"message": "User registered successfully",
			"user":    user.Profile(),
		})
	}
}

// LoginHandler authenticates a user and returns a JWT token
func LoginHandler(db *gorm.DB, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			bindFailed(c, err)
			return
		}
		var user domain.User // Fetch user from database
		err := db.WithContext(c.Request.Context()).Where("email = ?", normalizeEmail(req.Email)).First(&user).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, err)
			return
		}
		// Unknown email and wrong password get the same answer
		if !matchSecret(user.Password, err == nil, req.Password) {
			fail(c, utils.CodeUnauthorized, "Invalid email or password")
			return
		}
		// Generate JWT token
		token, err := utils.GenerateJWT(user.ID, jwtSecret)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Login successful",
			"user":    user.Profile(),
			"token":   token,
		})
	}
}

// ForgotPasswordHandler resets a password when email and security answer match
func ForgotPasswordHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ForgotPasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindFailed(c, err)
			return
		}
		var user domain.User
		err := db.WithContext(c.Request.Context()).Where("email = ?", normalizeEmail(req.Email)).First(&user).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, err)
			return
		}
		if !matchSecret(user.Answer, err == nil, normalizeAnswer(req.Answer)) {
			fail(c, utils.CodeUnauthorized, "Wrong email or answer")
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			respondError(c, err)
			return
		}
		if err := db.WithContext(c.Request.Context()).Model(&user).Update("password", string(hash)).Error; err != nil {
			respondError(c, err)
			return
		}
		logrus.WithFields(logrus.Fields{"user_id": user.ID}).Info("password reset")
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Password reset successfully"})
	}
}

// UpdateProfileHandler replaces the supplied profile fields of the signed-in user
func UpdateProfileHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c)
		if !ok {
			fail(c, utils.CodeUnauthorized, "Unauthorized")
			return
		}
		var req ProfileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindFailed(c, err)
			return
		}
		if req.Password != "" && len(req.Password) < minPasswordLength {
			fail(c, utils.CodeValidation, "password must be at least 6 characters")
			return
		}
		var user domain.User
		if err := db.WithContext(c.Request.Context()).First(&user, userID).Error; err != nil {
			respondError(c, err)
			return
		}
		updates := map[string]any{} // Only the supplied fields
		if req.Name != "" {
			updates["name"] = strings.TrimSpace(req.Name)
		}
		if req.Phone != "" {
			updates["phone"] = req.Phone
		}
		if req.Address != "" {
			updates["address"] = req.Address
		}
		if req.Password != "" {
			hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
			if err != nil {
				respondError(c, err)
				return
			}
			updates["password"] = string(hash)
		}
		if len(updates) > 0 {
			if err := db.WithContext(c.Request.Context()).Model(&user).Updates(updates).Error; err != nil {
				respondError(c, err)
				return
			}
		}
		// Reload so the response reflects what was stored
		if err := db.WithContext(c.Request.Context()).First(&user, userID).Error; err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Profile updated successfully",
			"user":    user.Profile(),
		})
	}
}

// AuthCheckHandler answers session probes once the guards in front of it have passed
func AuthCheckHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}
