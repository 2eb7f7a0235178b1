package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const bearerPrefix = "Bearer "

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, bearerPrefix) {
		return ""
	}
	return strings.TrimPrefix(header, bearerPrefix)
}

// RequireUser authenticates the request from its bearer token and rejects it
// when the token resolves to no user.
func RequireUser(service *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := service.UserForToken(bearerToken(c))
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not signed in"})
			return
		}
		c.Set("user", user)
		c.Next()
	}
}

// RequireAdmin authenticates the request from its bearer token and rejects it
// unless that user has the admin role. Authorization is per request; the
// process-wide session plays no part here.
func RequireAdmin(service *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := service.UserForToken(bearerToken(c))
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not signed in"})
			return
		}
		if !user.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin role required"})
			return
		}
		c.Set("user", user)
		c.Next()
	}
}
