package middleware

import (
	"net/http"

	"gaha-portal/internal/authz"
	"gaha-portal/internal/shared/response"

	"github.com/gin-gonic/gin"
)

// RequireCapability gates a route on a single server-side capability
// check against the role carried in the validated token.
func RequireCapability(service authz.Service, cap authz.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")
		if role == "" {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Missing auth context", nil)
			c.Abort()
			return
		}

		allowed, err := service.Authorize(authz.Role(role), cap)
		if err != nil {
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Authorization check failed", nil)
			c.Abort()
			return
		}

		if !allowed {
			response.Error(c, http.StatusForbidden, "FORBIDDEN",
				"You do not have permission to access this resource",
				gin.H{"required": string(cap)},
			)
			c.Abort()
			return
		}

		c.Next()
	}
}
