package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cosmic-sparc/backend/internal/auth"
	"github.com/cosmic-sparc/backend/pkg/response"
)

// JWT returns a middleware that validates JWT and sets user claims in context.
func JWT(jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Unauthorized(c, "not authorized")
			c.Abort()
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, "not authorized")
			c.Abort()
			return
		}
		claims, err := jwtService.Validate(parts[1])
		if err != nil {
			response.Unauthorized(c, "not authorized")
			c.Abort()
			return
		}
		c.Set(auth.ContextUserID, claims.UserID)
		c.Set(auth.ContextUserRole, claims.Role)
		c.Set(auth.ContextUserEmail, claims.Email)
		c.Next()
	}
}

// OptionalJWT sets user claims when a valid bearer token is present and
// otherwise continues anonymously. Used on the public registration endpoint
// where an authenticated identity enables the duplicate guard.
func OptionalJWT(jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			if claims, err := jwtService.Validate(parts[1]); err == nil {
				c.Set(auth.ContextUserID, claims.UserID)
				c.Set(auth.ContextUserRole, claims.Role)
				c.Set(auth.ContextUserEmail, claims.Email)
			}
		}
		c.Next()
	}
}
