package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gaha-portal/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

// newThrottledRouter mounts the limiter behind a stand-in for the auth
// middleware that reads the principal from a test header.
func newThrottledRouter(limiter gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/clockin", func(c *gin.Context) {
		if u := c.GetHeader("X-Test-User"); u != "" {
			c.Set("username", u)
		}
	}, limiter, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func punchAs(r *gin.Engine, username string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/clockin", nil)
	if username != "" {
		req.Header.Set("X-Test-User", username)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimitByUser_ThrottlesPerUser(t *testing.T) {
	r := newThrottledRouter(middleware.RateLimitByUser(rate.Every(time.Hour), 2))

	assert.Equal(t, http.StatusOK, punchAs(r, "jdoe").Code)
	assert.Equal(t, http.StatusOK, punchAs(r, "jdoe").Code)

	third := punchAs(r, "jdoe")
	assert.Equal(t, http.StatusTooManyRequests, third.Code)
	assert.Contains(t, third.Body.String(), "Too many requests from this user")

	// another user has their own bucket
	assert.Equal(t, http.StatusOK, punchAs(r, "asmith").Code)
}

func TestRateLimitByUser_SkipsAnonymousRequests(t *testing.T) {
	r := newThrottledRouter(middleware.RateLimitByUser(rate.Every(time.Hour), 1))

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, punchAs(r, "").Code)
	}
}

func TestRateLimitByIP_ThrottlesByAddress(t *testing.T) {
	r := newThrottledRouter(middleware.RateLimitByIP(rate.Every(time.Hour), 1))

	assert.Equal(t, http.StatusOK, punchAs(r, "").Code)

	second := punchAs(r, "")
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Contains(t, second.Body.String(), "Too many requests from this IP")
}
