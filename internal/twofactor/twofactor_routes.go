package twofactor

import "github.com/gin-gonic/gin"

func RegisterRoutes(r *gin.RouterGroup, h *Handler, authed gin.HandlerFunc) {
	totp := r.Group("/totp", authed)
	{
		totp.POST("/register", h.Register)
		totp.POST("/verify", h.Verify)
	}
}
