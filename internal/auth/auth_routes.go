package auth

import (
	"time"

	"gaha-portal/internal/middleware"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RegisterRoutes mounts the session endpoints. /signin is rate limited by
// IP because it runs before any identity exists.
func RegisterRoutes(r *gin.RouterGroup, h *Handler, authed gin.HandlerFunc) {
	signinLimiter := middleware.RateLimitByIP(rate.Every(time.Minute/5), 5)

	r.POST("/signin", signinLimiter, h.SignIn)
	r.POST("/refresh", h.Refresh)
	r.GET("/me", authed, h.Me)
	r.POST("/signout", authed, h.SignOut)
}
