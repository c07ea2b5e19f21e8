package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gaha-portal/internal/middleware"
	"gaha-portal/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

// newIdempotentRouter mimics a punch route: principal already resolved,
// handler caches its envelope before responding.
func newIdempotentRouter(rdb *redis.Client) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/clockin", func(c *gin.Context) {
		c.Set("username", "jdoe")
	}, middleware.Idempotency(rdb), func(c *gin.Context) {
		body := gin.H{"message": "Clocked in successfully"}
		middleware.CacheIdempotentResponse(c, rdb, http.StatusCreated, body)
		response.Success(c, http.StatusCreated, body, nil)
	})
	return r
}

func clockInWithKey(r *gin.Engine, key string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/clockin", nil)
	if key != "" {
		req.Header.Set("Idempotency-Key", key)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestIdempotency_FirstCallStoresStatusAndEnvelope(t *testing.T) {
	rdb, rmock := redismock.NewClientMock()

	envelope, err := json.Marshal(response.ApiEnvelope{Ok: true, Data: gin.H{"message": "Clocked in successfully"}})
	assert.NoError(t, err)
	record, err := json.Marshal(middleware.CachedResponse{Status: http.StatusCreated, Body: envelope})
	assert.NoError(t, err)

	rmock.ExpectGet("idemp:/clockin:jdoe:abc").RedisNil()
	rmock.ExpectSetNX("idemp:/clockin:jdoe:abc:lock", "locked", 30*time.Second).SetVal(true)
	rmock.ExpectSet("idemp:/clockin:jdoe:abc", record, 24*time.Hour).SetVal("OK")

	w := clockInWithKey(newIdempotentRouter(rdb), "abc")

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.NoError(t, rmock.ExpectationsWereMet())
}

func TestIdempotency_ReplayKeepsOriginalStatusAndEnvelope(t *testing.T) {
	rdb, rmock := redismock.NewClientMock()

	stored, err := json.Marshal(middleware.CachedResponse{
		Status: http.StatusCreated,
		Body:   json.RawMessage(`{"ok":true,"data":{"message":"Clocked in successfully"}}`),
	})
	assert.NoError(t, err)
	rmock.ExpectGet("idemp:/clockin:jdoe:abc").SetVal(string(stored))

	w := clockInWithKey(newIdempotentRouter(rdb), "abc")

	// a replayed 201 stays a 201, wrapped in the same envelope
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"ok":true,"data":{"message":"Clocked in successfully"}}`, w.Body.String())
	assert.NoError(t, rmock.ExpectationsWereMet())
}

func TestIdempotency_InFlightDuplicateConflicts(t *testing.T) {
	rdb, rmock := redismock.NewClientMock()

	rmock.ExpectGet("idemp:/clockin:jdoe:abc").RedisNil()
	rmock.ExpectSetNX("idemp:/clockin:jdoe:abc:lock", "locked", 30*time.Second).SetVal(false)

	w := clockInWithKey(newIdempotentRouter(rdb), "abc")

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "PROCESSING")
	assert.NoError(t, rmock.ExpectationsWereMet())
}

func TestIdempotency_NoKeyBypassesRedis(t *testing.T) {
	rdb, rmock := redismock.NewClientMock()

	w := clockInWithKey(newIdempotentRouter(rdb), "")

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.NoError(t, rmock.ExpectationsWereMet())
}
