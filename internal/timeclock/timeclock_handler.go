package timeclock

import (
	"net/http"
	"strconv"

	"gaha-portal/internal/authz"
	"gaha-portal/internal/middleware"
	"gaha-portal/internal/shared/apperror"
	"gaha-portal/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type Handler struct {
	service Service
	authz   authz.Service
	rdb     *redis.Client
}

func NewHandler(service Service, authzService authz.Service) *Handler {
	return &Handler{service: service, authz: authzService}
}

func NewHandlerWithRedis(service Service, authzService authz.Service, rdb *redis.Client) *Handler {
	return &Handler{service: service, authz: authzService, rdb: rdb}
}

func writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

// releaseIdempotencyLock drops the in-flight lock the idempotency
// middleware took, once the punch has resolved either way.
func (h *Handler) releaseIdempotencyLock(c *gin.Context) {
	if h.rdb == nil {
		return
	}
	if lk := c.GetString("idempotency_lock_key"); lk != "" {
		h.rdb.Del(c.Request.Context(), lk)
	}
}

// cacheIdempotentResponse stores the successful punch result so a replay
// with the same Idempotency-Key returns the same status and envelope
// instead of punching again.
func (h *Handler) cacheIdempotentResponse(c *gin.Context, status int, payload any) {
	middleware.CacheIdempotentResponse(c, h.rdb, status, payload)
}

// All mutating punches act on the token subject; a client-supplied
// username is never accepted here.

func (h *Handler) CurrentStatus(c *gin.Context) {
	username := c.GetString("username")

	resp, err := h.service.CurrentStatus(c.Request.Context(), username)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if resp == nil {
		response.Success(c, http.StatusOK, nil, nil)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) ClockIn(c *gin.Context) {
	defer h.releaseIdempotencyLock(c)
	username := c.GetString("username")

	entry, err := h.service.ClockIn(c.Request.Context(), username)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	body := gin.H{
		"message": "Clocked in successfully",
		"entry":   entry,
	}
	h.cacheIdempotentResponse(c, http.StatusCreated, body)
	response.Success(c, http.StatusCreated, body, nil)
}

func (h *Handler) StartLunch(c *gin.Context) {
	defer h.releaseIdempotencyLock(c)
	username := c.GetString("username")

	entry, err := h.service.StartLunch(c.Request.Context(), username)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	body := gin.H{
		"message": "Lunch started successfully",
		"entry":   entry,
	}
	h.cacheIdempotentResponse(c, http.StatusOK, body)
	response.Success(c, http.StatusOK, body, nil)
}

func (h *Handler) EndLunch(c *gin.Context) {
	defer h.releaseIdempotencyLock(c)
	username := c.GetString("username")

	entry, err := h.service.EndLunch(c.Request.Context(), username)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	body := gin.H{
		"message": "Lunch ended successfully",
		"entry":   entry,
	}
	h.cacheIdempotentResponse(c, http.StatusOK, body)
	response.Success(c, http.StatusOK, body, nil)
}

func (h *Handler) ClockOut(c *gin.Context) {
	defer h.releaseIdempotencyLock(c)
	username := c.GetString("username")

	entry, err := h.service.ClockOut(c.Request.Context(), username)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	body := gin.H{
		"message": "Clocked out successfully",
		"entry":   entry,
	}
	h.cacheIdempotentResponse(c, http.StatusOK, body)
	response.Success(c, http.StatusOK, body, nil)
}

// History allows self-reads; reading anyone else's punches needs the
// read-all capability.
func (h *Handler) History(c *gin.Context) {
	principal := c.GetString("username")
	target := c.Param("username")

	if target != principal {
		allowed, err := h.authz.Authorize(authz.Role(c.GetString("role")), authz.CapTimeclockReadAll)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		if !allowed {
			response.Error(c, http.StatusForbidden, "FORBIDDEN",
				"You may only view your own punch history", nil)
			return
		}
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	rows, total, err := h.service.History(c.Request.Context(), target, limit, offset)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	meta := response.NewPaginationMeta(total, limit, offset)
	response.Success(c, http.StatusOK, rows, &meta)
}
