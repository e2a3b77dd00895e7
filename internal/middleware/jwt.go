package middleware

import (
	"strings" // String manipulation

	"ecommerce_backend/internal/utils" // JWT and response helpers

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Structured logging
)

// ContextUserID is the gin context key holding the authenticated user ID
const ContextUserID = "userID"

// RequireSignIn validates the identity token and stores the user ID in the context.
// Accepts "Authorization: Bearer <token>" or the raw token. Any failure is a 401.
func RequireSignIn(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := strings.TrimSpace(c.GetHeader("Authorization")) // Get Authorization header
		if len(tokenStr) > 7 && strings.EqualFold(tokenStr[:7], "bearer ") {
			tokenStr = strings.TrimSpace(tokenStr[7:]) // Strip the scheme
		}
		if tokenStr == "" {
			utils.AbortWithError(c, utils.CodeUnauthorized, "Missing authorization token")
			return
		}
		claims, err := utils.ParseJWT(tokenStr, secret) // Parse the JWT token
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"path":  c.FullPath(),
				"error": err,
			}).Debug("rejected identity token")
			utils.AbortWithError(c, utils.CodeUnauthorized, "Invalid or expired token")
			return
		}
		c.Set(ContextUserID, claims.UserID) // Store userID in context
		c.Next()                            // Proceed to the next handler
	}
}

// UserID returns the authenticated user ID set by RequireSignIn
func UserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok && id != 0
}
