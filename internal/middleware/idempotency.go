package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"gaha-portal/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const idempotencyCacheTTL = 24 * time.Hour

// CachedResponse is what a completed idempotent request leaves behind:
// the exact status and rendered envelope, so a replay is byte-for-byte
// what the first call returned.
type CachedResponse struct {
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`
}

// Idempotency dedupes POSTs carrying an Idempotency-Key header. The punch
// endpoints get this because the clock-in/out buttons are known to be
// double-clicked; a duplicate while the first request is in flight gets a
// 409 instead of a second state transition.
func Idempotency(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		idempKey := c.GetHeader("Idempotency-Key")
		username := c.GetString("username")

		if idempKey == "" || c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		cacheKey := fmt.Sprintf("idemp:%s:%s:%s", c.FullPath(), username, idempKey)
		lockKey := cacheKey + ":lock"

		val, err := rdb.Get(c.Request.Context(), cacheKey).Result()
		if err == nil {
			var cached CachedResponse
			if jsonErr := json.Unmarshal([]byte(val), &cached); jsonErr == nil && cached.Status != 0 {
				c.Data(cached.Status, "application/json; charset=utf-8", cached.Body)
				c.Abort()
				return
			}
		}

		// SetNX is the lock: short expiry so a crashed request cannot wedge
		// the key forever.
		isNew, _ := rdb.SetNX(c.Request.Context(), lockKey, "locked", 30*time.Second).Result()
		if !isNew {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{
				"code":    "PROCESSING",
				"message": "Your request is still being processed, please wait",
			})
			return
		}

		c.Set("idempotency_cache_key", cacheKey)
		c.Set("idempotency_lock_key", lockKey)

		c.Next()
	}
}

// CacheIdempotentResponse stores the success envelope under the request's
// idempotency cache key. Handlers call it with the same status and data
// they are about to send.
func CacheIdempotentResponse(c *gin.Context, rdb *redis.Client, status int, data any) {
	if rdb == nil {
		return
	}
	cacheKey := c.GetString("idempotency_cache_key")
	if cacheKey == "" {
		return
	}

	body, err := json.Marshal(response.ApiEnvelope{Ok: true, Data: data})
	if err != nil {
		return
	}
	raw, err := json.Marshal(CachedResponse{Status: status, Body: body})
	if err != nil {
		return
	}
	_ = rdb.Set(c.Request.Context(), cacheKey, raw, idempotencyCacheTTL).Err()
}
