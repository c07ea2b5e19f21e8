package auth

import (
	"context"
	"testing"
	"time"

	autherrors "gaha-portal/internal/auth/errors"
	"gaha-portal/internal/employee"
	"gaha-portal/internal/securitylog"

	"github.com/go-redis/redismock/v9"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type fakeEmployees struct {
	byUsername map[string]*employee.Employee
}

func (f *fakeEmployees) WithTx(tx *gorm.DB) employee.Repository              { return f }
func (f *fakeEmployees) Create(ctx context.Context, e *employee.Employee) error { return nil }
func (f *fakeEmployees) FindAll(ctx context.Context) ([]employee.Employee, error) {
	return nil, nil
}
func (f *fakeEmployees) FindByUsername(ctx context.Context, username string) (*employee.Employee, error) {
	if e, ok := f.byUsername[username]; ok {
		return e, nil
	}
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeEmployees) Search(ctx context.Context, term string) ([]employee.Employee, error) {
	return nil, nil
}
func (f *fakeEmployees) Update(ctx context.Context, e *employee.Employee) error { return nil }
func (f *fakeEmployees) Delete(ctx context.Context, username string) error      { return nil }
func (f *fakeEmployees) SetTOTPSecret(ctx context.Context, username, secret string) error {
	return nil
}

type fakeSecLog struct {
	events     []securitylog.Event
	suspicious bool
}

func (f *fakeSecLog) Record(ctx context.Context, event securitylog.Event) {
	f.events = append(f.events, event)
}
func (f *fakeSecLog) IsSuspicious(ctx context.Context, ip string) (bool, error) {
	return f.suspicious, nil
}
func (f *fakeSecLog) Purge(ctx context.Context, retention time.Duration) (int64, error) {
	return 0, nil
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	assert.NoError(t, err)
	return string(h)
}

func TestSignIn_Success(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	rdb, rmock := redismock.NewClientMock()
	rmock.ExpectGet("login_blocked:jdoe").RedisNil()
	rmock.ExpectDel("login_attempts:jdoe", "login_blocked:jdoe").SetVal(1)

	repo := &fakeEmployees{byUsername: map[string]*employee.Employee{
		"jdoe": {
			ID:       uuid.New(),
			Username: "jdoe",
			Password: hashOf(t, "correct horse battery"),
			Role:     "SCHEDULER",
		},
	}}
	seclog := &fakeSecLog{}
	svc := NewService(repo, NewLockout(rdb), NewBlacklist(rdb), seclog)

	pair, user, err := svc.SignIn(context.Background(), SignInRequest{
		Username: "jdoe",
		Password: "correct horse battery",
	}, RequestMeta{IP: "10.0.0.1"})

	assert.NoError(t, err)
	assert.Equal(t, "jdoe", user.Username)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Empty(t, seclog.events)

	// the token subject and role come from the employee record
	token, err := jwt.Parse(pair.AccessToken, func(token *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	assert.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, "jdoe", claims["sub"])
	assert.Equal(t, "SCHEDULER", claims["role"])
	assert.NotEmpty(t, claims["jti"])

	assert.NoError(t, rmock.ExpectationsWereMet())
}

func TestSignIn_WrongPassword(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	rdb, rmock := redismock.NewClientMock()
	rmock.ExpectGet("login_blocked:jdoe").RedisNil()
	rmock.ExpectIncr("login_attempts:jdoe").SetVal(1)
	rmock.ExpectExpire("login_attempts:jdoe", 15*time.Minute).SetVal(true)

	repo := &fakeEmployees{byUsername: map[string]*employee.Employee{
		"jdoe": {Username: "jdoe", Password: hashOf(t, "right")},
	}}
	seclog := &fakeSecLog{}
	svc := NewService(repo, NewLockout(rdb), NewBlacklist(rdb), seclog)

	_, _, err := svc.SignIn(context.Background(), SignInRequest{
		Username: "jdoe",
		Password: "wrong",
	}, RequestMeta{IP: "10.0.0.1"})

	assert.ErrorIs(t, err, autherrors.ErrInvalidCredentials)
	assert.Len(t, seclog.events, 1)
	assert.Equal(t, securitylog.EventSigninFailed, seclog.events[0].Type)
	assert.NoError(t, rmock.ExpectationsWereMet())
}

func TestSignIn_SuspiciousIPRecordsExtraEvent(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	rdb, rmock := redismock.NewClientMock()
	rmock.ExpectGet("login_blocked:jdoe").RedisNil()
	rmock.ExpectIncr("login_attempts:jdoe").SetVal(1)
	rmock.ExpectExpire("login_attempts:jdoe", 15*time.Minute).SetVal(true)

	repo := &fakeEmployees{byUsername: map[string]*employee.Employee{
		"jdoe": {Username: "jdoe", Password: hashOf(t, "right")},
	}}
	seclog := &fakeSecLog{suspicious: true}
	svc := NewService(repo, NewLockout(rdb), NewBlacklist(rdb), seclog)

	_, _, err := svc.SignIn(context.Background(), SignInRequest{
		Username: "jdoe",
		Password: "wrong",
	}, RequestMeta{IP: "10.0.0.1"})

	// same outcome for the caller, extra event in the log
	assert.ErrorIs(t, err, autherrors.ErrInvalidCredentials)
	assert.Len(t, seclog.events, 2)
	assert.Equal(t, securitylog.EventSigninFailed, seclog.events[0].Type)
	assert.Equal(t, securitylog.EventSuspiciousActivity, seclog.events[1].Type)
	assert.Equal(t, "10.0.0.1", seclog.events[1].IP)
	assert.NoError(t, rmock.ExpectationsWereMet())
}

func TestSignIn_UnknownUserGetsSameError(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	rdb, rmock := redismock.NewClientMock()
	rmock.ExpectGet("login_blocked:ghost").RedisNil()
	rmock.ExpectIncr("login_attempts:ghost").SetVal(1)
	rmock.ExpectExpire("login_attempts:ghost", 15*time.Minute).SetVal(true)

	svc := NewService(&fakeEmployees{}, NewLockout(rdb), NewBlacklist(rdb), &fakeSecLog{})

	_, _, err := svc.SignIn(context.Background(), SignInRequest{
		Username: "ghost",
		Password: "anything",
	}, RequestMeta{})

	assert.ErrorIs(t, err, autherrors.ErrInvalidCredentials)
}

func TestSignIn_LocksAfterThreshold(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	rdb, rmock := redismock.NewClientMock()
	rmock.ExpectGet("login_blocked:jdoe").RedisNil()
	rmock.ExpectIncr("login_attempts:jdoe").SetVal(5)
	rmock.ExpectExpire("login_attempts:jdoe", 15*time.Minute).SetVal(true)
	rmock.ExpectSet("login_blocked:jdoe", "1", 15*time.Minute).SetVal("OK")

	seclog := &fakeSecLog{}
	svc := NewService(&fakeEmployees{}, NewLockout(rdb), NewBlacklist(rdb), seclog)

	_, _, err := svc.SignIn(context.Background(), SignInRequest{
		Username: "jdoe",
		Password: "wrong",
	}, RequestMeta{IP: "10.0.0.1"})

	assert.ErrorIs(t, err, autherrors.ErrInvalidCredentials)
	assert.Len(t, seclog.events, 2)
	assert.Equal(t, securitylog.EventAccountLocked, seclog.events[1].Type)
	assert.NoError(t, rmock.ExpectationsWereMet())
}

func TestSignIn_BlockedAccount(t *testing.T) {
	rdb, rmock := redismock.NewClientMock()
	rmock.ExpectGet("login_blocked:jdoe").SetVal("1")

	svc := NewService(&fakeEmployees{}, NewLockout(rdb), NewBlacklist(rdb), &fakeSecLog{})

	_, _, err := svc.SignIn(context.Background(), SignInRequest{
		Username: "jdoe",
		Password: "whatever",
	}, RequestMeta{})

	assert.ErrorIs(t, err, autherrors.ErrAccountLocked)
}

func TestSignIn_TOTP(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	secret := "JBSWY3DPEHPK3PXP"

	repo := &fakeEmployees{byUsername: map[string]*employee.Employee{
		"jdoe": {
			Username:    "jdoe",
			Password:    hashOf(t, "correct horse battery"),
			Role:        "CAREGIVER",
			TOTPSecret:  &secret,
			TOTPEnabled: true,
		},
	}}

	// missing code: the client is told to supply one
	rdb, rmock := redismock.NewClientMock()
	rmock.ExpectGet("login_blocked:jdoe").RedisNil()
	svc := NewService(repo, NewLockout(rdb), NewBlacklist(rdb), &fakeSecLog{})

	_, _, err := svc.SignIn(context.Background(), SignInRequest{
		Username: "jdoe",
		Password: "correct horse battery",
	}, RequestMeta{})
	assert.ErrorIs(t, err, autherrors.ErrTOTPRequired)

	// valid code: sign-in completes
	rdb2, rmock2 := redismock.NewClientMock()
	rmock2.ExpectGet("login_blocked:jdoe").RedisNil()
	rmock2.ExpectDel("login_attempts:jdoe", "login_blocked:jdoe").SetVal(1)
	svc2 := NewService(repo, NewLockout(rdb2), NewBlacklist(rdb2), &fakeSecLog{})

	code, err := totp.GenerateCode(secret, time.Now())
	assert.NoError(t, err)

	pair, _, err := svc2.SignIn(context.Background(), SignInRequest{
		Username: "jdoe",
		Password: "correct horse battery",
		TOTPCode: code,
	}, RequestMeta{})
	assert.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
}

func TestRefresh_InvalidToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	svc := NewService(&fakeEmployees{}, nil, nil, nil)

	_, err := svc.Refresh(context.Background(), "not-a-jwt")
	assert.ErrorIs(t, err, autherrors.ErrInvalidRefreshToken)
}

func TestRefresh_PicksUpRoleChange(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	repo := &fakeEmployees{byUsername: map[string]*employee.Employee{
		"jdoe": {Username: "jdoe", Password: hashOf(t, "pw"), Role: "CAREGIVER"},
	}}
	svc := NewService(repo, nil, nil, nil).(*service)

	pair, err := svc.issueTokens("jdoe", "CAREGIVER")
	assert.NoError(t, err)

	// promotion lands between issue and refresh
	repo.byUsername["jdoe"].Role = "ADMIN"

	refreshed, err := svc.Refresh(context.Background(), pair.RefreshToken)
	assert.NoError(t, err)

	token, _ := jwt.Parse(refreshed.AccessToken, func(token *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, "ADMIN", claims["role"])
}

func TestSignOut_RecordsRevocation(t *testing.T) {
	jti := uuid.New().String()

	// an already-expired token needs no redis write
	rdb, _ := redismock.NewClientMock()
	seclog := &fakeSecLog{}
	svc := NewService(&fakeEmployees{}, nil, NewBlacklist(rdb), seclog)

	err := svc.SignOut(context.Background(), jti, time.Now().Add(-time.Minute), RequestMeta{IP: "10.0.0.1"})
	assert.NoError(t, err)
	assert.Len(t, seclog.events, 1)
	assert.Equal(t, securitylog.EventTokenRevoked, seclog.events[0].Type)
}

func TestBlacklist_RevokeAndCheck(t *testing.T) {
	jti := uuid.New().String()
	key := "token_blacklist:" + jti

	rdb, rmock := redismock.NewClientMock()
	rmock.ExpectSet(key, "1", time.Hour).SetVal("OK")
	rmock.ExpectGet(key).SetVal("1")
	rmock.ExpectGet(key).RedisNil()

	b := NewBlacklist(rdb)
	ctx := context.Background()

	assert.NoError(t, b.Revoke(ctx, jti, time.Hour))

	revoked, err := b.IsRevoked(ctx, jti)
	assert.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = b.IsRevoked(ctx, jti)
	assert.NoError(t, err)
	assert.False(t, revoked)
	assert.NoError(t, rmock.ExpectationsWereMet())
}
