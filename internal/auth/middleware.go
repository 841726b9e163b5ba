package auth

import (
	"net/http"
	"strings"

	"github.com/fekuna/omnipos-storefront/internal/session"
	"github.com/gin-gonic/gin"
)

// SessionIdentity copies the logged-in user id from the session into the
// request context. Requires session.Middleware.
func SessionIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := session.FromContext(c)
		userID, ok, err := sess.Get(c.Request.Context(), session.KeyUserID)
		if err == nil && ok && userID != "" {
			c.Request = c.Request.WithContext(WithUserID(c.Request.Context(), userID))
		}
		c.Next()
	}
}

// RequireLogin rejects anonymous requests.
func RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsAuthenticated(c.Request.Context()) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Login required"})
			return
		}
		c.Next()
	}
}

// RequireStaff accepts only bearer tokens issued to staff users.
func RequireStaff(tm *TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		tokenString, found := strings.CutPrefix(header, "Bearer ")
		if !found || tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Missing bearer token"})
			return
		}

		claims, err := tm.Parse(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid token"})
			return
		}
		if claims.Role != RoleStaff {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Admin access required"})
			return
		}

		c.Request = c.Request.WithContext(WithClaims(c.Request.Context(), claims))
		c.Next()
	}
}
