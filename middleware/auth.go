package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Roles the identity proxy may assert for a caller.
const (
	RoleAdmin  = "admin"
	RoleClerk  = "clerk"
	RolePublic = "public"
)

// ResolveRole reads the role asserted by the upstream identity proxy and
// stashes it on the request context. Unknown or missing roles fall back to
// public. Callers with the admin or clerk role are privileged: their items
// publish directly as pending instead of waiting in under_review.
func ResolveRole() gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetHeader("X-Clerk-Role")
		switch role {
		case RoleAdmin, RoleClerk:
		default:
			role = RolePublic
		}
		c.Set("role", role)
		c.Set("privileged", role == RoleAdmin || role == RoleClerk)
		c.Next()
	}
}

// RequireAdmin aborts requests from callers the identity proxy did not mark
// as admin.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("role") != RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "caller lacks required role \"admin\""})
			c.Abort()
			return
		}
		c.Next()
	}
}

// IsPrivileged reports whether the current caller may publish items directly.
func IsPrivileged(c *gin.Context) bool {
	return c.GetBool("privileged")
}
