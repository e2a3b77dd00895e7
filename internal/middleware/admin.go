package middleware

import (
	"errors" // Error inspection

	"ecommerce_backend/internal/domain" // Importing domain models
	"ecommerce_backend/internal/utils"  // Response helpers

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Structured logging
	"gorm.io/gorm"               // GORM ORM library
)

// RequireAdmin checks the user's role from the database on each request.
// Missing identity is a 401; unknown users and non-admins get a 403; a failed
// lookup is a 500.
func RequireAdmin(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := UserID(c) // Get userID from context
		if !ok {
			utils.AbortWithError(c, utils.CodeUnauthorized, "Unauthorized")
			return
		}
		var user domain.User // Fetch user from database
		err := db.WithContext(c.Request.Context()).Select("id", "role").First(&user, userID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logrus.WithFields(logrus.Fields{"user_id": userID}).Warn("admin check for unknown user")
			utils.AbortWithError(c, utils.CodeForbidden, "Admin access required")
			return
		}
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id": userID,
				"error":   err,
			}).Error("admin check failed")
			utils.AbortWithError(c, utils.CodeInternal, "Internal server error")
			return
		}
		// Check if user role is admin
		if !user.IsAdmin() {
			utils.AbortWithError(c, utils.CodeForbidden, "Admin access required")
			return
		}
		c.Next()
	}
}
