package twofactor

import (
	"net/http"

	"gaha-portal/internal/shared/apperror"
	"gaha-portal/internal/shared/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Register(c *gin.Context) {
	username := c.GetString("username")

	resp, err := h.service.Register(c.Request.Context(), username)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message":      "Scan the QR code with your authenticator app, then verify a code",
		"registration": resp,
	}, nil)
}

func (h *Handler) Verify(c *gin.Context) {
	username := c.GetString("username")

	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpErr := apperror.ToHTTP(apperror.MapValidationError(err))
		response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, nil)
		return
	}

	if err := h.service.Verify(c.Request.Context(), username, req.Code); err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message": "Two-factor authentication enabled",
	}, nil)
}

func writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}
