package employee

import (
	"time"

	"gaha-portal/internal/authz"
	"gaha-portal/internal/middleware"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RegisterRoutes keeps the path shapes the web client already calls:
// /home for the directory, /read, /edit and /delete keyed by username.
// Writes carry a per-user limiter on top of the capability check.
func RegisterRoutes(r *gin.RouterGroup, h *Handler, authed gin.HandlerFunc, authzService authz.Service) {
	read := middleware.RequireCapability(authzService, authz.CapEmployeesRead)
	write := middleware.RequireCapability(authzService, authz.CapEmployeesWrite)
	writeLimiter := middleware.RateLimitByUser(rate.Every(time.Second), 5)

	r.GET("/home", authed, read, h.GetAll)
	r.GET("/read/:username", authed, read, h.GetByUsername)
	r.GET("/search", authed, read, h.Search)
	r.POST("/employees", authed, writeLimiter, write, h.Create)
	r.PUT("/edit/:username", authed, writeLimiter, write, h.Update)
	r.DELETE("/delete/:username", authed, writeLimiter, write, h.Delete)
}
