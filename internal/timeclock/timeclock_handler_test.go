package timeclock_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gaha-portal/internal/authz"
	"gaha-portal/internal/middleware"
	"gaha-portal/internal/shared/response"
	"gaha-portal/internal/timeclock"
	timeclockerrors "gaha-portal/internal/timeclock/errors"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type fakeService struct {
	currentStatusFn func(ctx context.Context, username string) (*timeclock.TimeEntryResponse, error)
	clockInFn       func(ctx context.Context, username string) (timeclock.TimeEntryResponse, error)
	startLunchFn    func(ctx context.Context, username string) (timeclock.TimeEntryResponse, error)
	endLunchFn      func(ctx context.Context, username string) (timeclock.TimeEntryResponse, error)
	clockOutFn      func(ctx context.Context, username string) (timeclock.TimeEntryResponse, error)
	historyFn       func(ctx context.Context, username string, limit, offset int) ([]timeclock.TimeEntryResponse, int64, error)
}

func (f *fakeService) CurrentStatus(ctx context.Context, username string) (*timeclock.TimeEntryResponse, error) {
	return f.currentStatusFn(ctx, username)
}
func (f *fakeService) ClockIn(ctx context.Context, username string) (timeclock.TimeEntryResponse, error) {
	return f.clockInFn(ctx, username)
}
func (f *fakeService) StartLunch(ctx context.Context, username string) (timeclock.TimeEntryResponse, error) {
	return f.startLunchFn(ctx, username)
}
func (f *fakeService) EndLunch(ctx context.Context, username string) (timeclock.TimeEntryResponse, error) {
	return f.endLunchFn(ctx, username)
}
func (f *fakeService) ClockOut(ctx context.Context, username string) (timeclock.TimeEntryResponse, error) {
	return f.clockOutFn(ctx, username)
}
func (f *fakeService) History(ctx context.Context, username string, limit, offset int) ([]timeclock.TimeEntryResponse, int64, error) {
	return f.historyFn(ctx, username, limit, offset)
}

func newAuthz(t *testing.T) authz.Service {
	t.Helper()
	svc, err := authz.NewService()
	assert.NoError(t, err)
	return svc
}

func TestHandler_ClockIn_UsesPrincipal(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc := &fakeService{
		clockInFn: func(ctx context.Context, username string) (timeclock.TimeEntryResponse, error) {
			assert.Equal(t, "jdoe", username)
			return timeclock.TimeEntryResponse{ID: uuid.New().String(), Username: username, State: timeclock.StateWorking}, nil
		},
	}
	h := timeclock.NewHandler(svc, newAuthz(t))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("username", "jdoe")
	c.Request = httptest.NewRequest(http.MethodPost, "/clockin", nil)

	h.ClockIn(c)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "Clocked in successfully")
}

func TestHandler_ClockIn_StateError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc := &fakeService{
		clockInFn: func(ctx context.Context, username string) (timeclock.TimeEntryResponse, error) {
			return timeclock.TimeEntryResponse{}, timeclockerrors.ErrAlreadyClockedIn
		},
	}
	h := timeclock.NewHandler(svc, newAuthz(t))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("username", "jdoe")
	c.Request = httptest.NewRequest(http.MethodPost, "/clockin", nil)

	h.ClockIn(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "ALREADY_CLOCKED_IN")
}

func TestHandler_ClockIn_CachesStatusForReplay(t *testing.T) {
	gin.SetMode(gin.TestMode)

	entry := timeclock.TimeEntryResponse{ID: uuid.New().String(), Username: "jdoe", State: timeclock.StateWorking}
	svc := &fakeService{
		clockInFn: func(ctx context.Context, username string) (timeclock.TimeEntryResponse, error) {
			return entry, nil
		},
	}

	// the cached record must carry the 201 so a replay does not degrade
	// to a 200 with a different envelope
	envelope, err := json.Marshal(response.ApiEnvelope{Ok: true, Data: gin.H{
		"entry":   entry,
		"message": "Clocked in successfully",
	}})
	assert.NoError(t, err)
	record, err := json.Marshal(middleware.CachedResponse{Status: http.StatusCreated, Body: envelope})
	assert.NoError(t, err)

	rdb, rmock := redismock.NewClientMock()
	rmock.ExpectSet("idemp:/clockin:jdoe:abc", record, 24*time.Hour).SetVal("OK")
	rmock.ExpectDel("idemp:/clockin:jdoe:abc:lock").SetVal(1)

	h := timeclock.NewHandlerWithRedis(svc, newAuthz(t), rdb)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("username", "jdoe")
	c.Set("idempotency_cache_key", "idemp:/clockin:jdoe:abc")
	c.Set("idempotency_lock_key", "idemp:/clockin:jdoe:abc:lock")
	c.Request = httptest.NewRequest(http.MethodPost, "/clockin", nil)

	h.ClockIn(c)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.NoError(t, rmock.ExpectationsWereMet())
}

func TestHandler_CurrentStatus_NoEntryReturnsNullData(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc := &fakeService{
		currentStatusFn: func(ctx context.Context, username string) (*timeclock.TimeEntryResponse, error) {
			return nil, nil
		},
	}
	h := timeclock.NewHandler(svc, newAuthz(t))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("username", "jdoe")
	c.Request = httptest.NewRequest(http.MethodGet, "/currentstatus", nil)

	h.CurrentStatus(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"data":null`)
}

func TestHandler_History_SelfRead(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc := &fakeService{
		historyFn: func(ctx context.Context, username string, limit, offset int) ([]timeclock.TimeEntryResponse, int64, error) {
			assert.Equal(t, "jdoe", username)
			assert.Equal(t, 5, limit)
			assert.Equal(t, 10, offset)
			return []timeclock.TimeEntryResponse{{Username: username}}, 21, nil
		},
	}
	h := timeclock.NewHandler(svc, newAuthz(t))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("username", "jdoe")
	c.Set("role", "CAREGIVER")
	c.Params = gin.Params{{Key: "username", Value: "jdoe"}}
	c.Request = httptest.NewRequest(http.MethodGet, "/clockhistory/jdoe?limit=5&offset=10", nil)

	h.History(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":21`)
	assert.Contains(t, w.Body.String(), `"totalPages":5`)
}

func TestRoutes_PunchesAreRateLimitedPerUser(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc := &fakeService{
		clockInFn: func(ctx context.Context, username string) (timeclock.TimeEntryResponse, error) {
			return timeclock.TimeEntryResponse{Username: username, State: timeclock.StateWorking}, nil
		},
	}
	h := timeclock.NewHandler(svc, newAuthz(t))

	r := gin.New()
	authed := func(c *gin.Context) {
		c.Set("username", "jdoe")
		c.Set("role", "CAREGIVER")
	}
	passthrough := func(c *gin.Context) { c.Next() }
	timeclock.RegisterRoutes(r.Group(""), h, authed, passthrough, newAuthz(t))

	clockIn := func() int {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/clockin", nil))
		return w.Code
	}

	for i := 0; i < 10; i++ {
		assert.Equal(t, http.StatusCreated, clockIn())
	}
	assert.Equal(t, http.StatusTooManyRequests, clockIn())
}

func TestHandler_History_OtherUserNeedsReadAll(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc := &fakeService{
		historyFn: func(ctx context.Context, username string, limit, offset int) ([]timeclock.TimeEntryResponse, int64, error) {
			return []timeclock.TimeEntryResponse{{Username: username}}, 1, nil
		},
	}
	h := timeclock.NewHandler(svc, newAuthz(t))

	// caregiver reading someone else: forbidden
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("username", "jdoe")
	c.Set("role", "CAREGIVER")
	c.Params = gin.Params{{Key: "username", Value: "asmith"}}
	c.Request = httptest.NewRequest(http.MethodGet, "/clockhistory/asmith", nil)

	h.History(c)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// scheduler reading someone else: allowed
	w2 := httptest.NewRecorder()
	c2, _ := gin.CreateTestContext(w2)
	c2.Set("username", "jdoe")
	c2.Set("role", "SCHEDULER")
	c2.Params = gin.Params{{Key: "username", Value: "asmith"}}
	c2.Request = httptest.NewRequest(http.MethodGet, "/clockhistory/asmith", nil)

	h.History(c2)
	assert.Equal(t, http.StatusOK, w2.Code)
}
