package timeclock

import (
	"time"

	"gaha-portal/internal/authz"
	"gaha-portal/internal/middleware"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RegisterRoutes keeps the punch paths the web client already calls.
// Punches sit behind the idempotency middleware because the UI buttons
// are prone to double submission, and behind a per-user limiter because
// the client retry loop has no backoff.
func RegisterRoutes(
	r *gin.RouterGroup,
	h *Handler,
	authed gin.HandlerFunc,
	idempotent gin.HandlerFunc,
	authzService authz.Service,
) {
	punch := middleware.RequireCapability(authzService, authz.CapTimeclockPunch)
	punchLimiter := middleware.RateLimitByUser(rate.Every(time.Second), 10)

	r.GET("/currentstatus", authed, punch, h.CurrentStatus)
	r.POST("/clockin", authed, punchLimiter, punch, idempotent, h.ClockIn)
	r.POST("/lunchstart", authed, punchLimiter, punch, idempotent, h.StartLunch)
	r.POST("/lunchend", authed, punchLimiter, punch, idempotent, h.EndLunch)
	r.POST("/clockout", authed, punchLimiter, punch, idempotent, h.ClockOut)
	r.GET("/clockhistory/:username", authed, h.History)
}
