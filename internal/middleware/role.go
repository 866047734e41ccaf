package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/cosmic-sparc/backend/internal/auth"
	"github.com/cosmic-sparc/backend/pkg/response"
)

// RequireRole returns a middleware that allows only the given roles. The
// denial response does not say whether the identity, the role, or the scope
// was wrong.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{})
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		roleVal, ok := c.Get(auth.ContextUserRole)
		if !ok {
			response.Unauthorized(c, "not authorized")
			c.Abort()
			return
		}
		role, _ := roleVal.(string)
		if _, ok := allowed[role]; !ok {
			response.Forbidden(c, "not authorized")
			c.Abort()
			return
		}
		c.Next()
	}
}
