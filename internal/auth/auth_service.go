package auth

import (
	"context"
	"os"
	"time"

	autherrors "gaha-portal/internal/auth/errors"
	"gaha-portal/internal/employee"
	"gaha-portal/internal/securitylog"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pquerna/otp/totp"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	accessTokenTTL  = time.Hour
	refreshTokenTTL = 7 * 24 * time.Hour
)

//go:generate mockgen -source=auth_service.go -destination=mock/auth_service_mock.go -package=mock
type Service interface {
	SignIn(ctx context.Context, req SignInRequest, meta RequestMeta) (TokenPair, AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (TokenPair, error)
	Me(ctx context.Context, username string) (*AuthResponse, error)
	SignOut(ctx context.Context, jti string, expiresAt time.Time, meta RequestMeta) error
}

type service struct {
	employees employee.Repository
	lockout   *Lockout
	blacklist *Blacklist
	seclog    securitylog.Service
	logger    *zap.Logger
}

func NewService(
	employees employee.Repository,
	lockout *Lockout,
	blacklist *Blacklist,
	seclog securitylog.Service,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("auth.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("auth.service")
	}
	return &service{
		employees: employees,
		lockout:   lockout,
		blacklist: blacklist,
		seclog:    seclog,
		logger:    l,
	}
}

func (s *service) SignIn(ctx context.Context, req SignInRequest, meta RequestMeta) (TokenPair, AuthResponse, error) {
	if s.lockout != nil {
		blocked, err := s.lockout.IsBlocked(ctx, req.Username)
		if err != nil {
			return TokenPair{}, AuthResponse{}, err
		}
		if blocked {
			return TokenPair{}, AuthResponse{}, autherrors.ErrAccountLocked
		}
	}

	empl, err := s.employees.FindByUsername(ctx, req.Username)
	if err != nil {
		// Same error for unknown user and wrong password.
		return TokenPair{}, AuthResponse{}, s.failSignIn(ctx, req.Username, meta)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(empl.Password), []byte(req.Password)); err != nil {
		return TokenPair{}, AuthResponse{}, s.failSignIn(ctx, req.Username, meta)
	}

	if empl.TOTPEnabled {
		if req.TOTPCode == "" {
			return TokenPair{}, AuthResponse{}, autherrors.ErrTOTPRequired
		}
		if empl.TOTPSecret == nil || !totp.Validate(req.TOTPCode, *empl.TOTPSecret) {
			return TokenPair{}, AuthResponse{}, s.failSignIn(ctx, req.Username, meta)
		}
	}

	if s.lockout != nil {
		if err := s.lockout.Clear(ctx, req.Username); err != nil {
			s.logger.Warn("clear lockout failed", zap.String("username", req.Username), zap.Error(err))
		}
	}

	pair, err := s.issueTokens(empl.Username, empl.Role)
	if err != nil {
		return TokenPair{}, AuthResponse{}, autherrors.ErrTokenGenerationFailed
	}

	s.logger.Info("sign-in succeeded", zap.String("username", empl.Username))
	return pair, mapToAuthResponse(empl), nil
}

// failSignIn bumps the attempt counter, writes the security event and
// always hands back the same invalid-credentials error.
func (s *service) failSignIn(ctx context.Context, username string, meta RequestMeta) error {
	if s.seclog != nil {
		s.seclog.Record(ctx, securitylog.Event{
			Type:      securitylog.EventSigninFailed,
			IP:        meta.IP,
			Username:  username,
			UserAgent: meta.UserAgent,
		})

		// An IP burning through many failures in an hour gets flagged; the
		// request outcome stays the same either way.
		if suspicious, err := s.seclog.IsSuspicious(ctx, meta.IP); err == nil && suspicious {
			s.logger.Warn("suspicious sign-in activity from one address",
				zap.String("username", username))
			s.seclog.Record(ctx, securitylog.Event{
				Type:      securitylog.EventSuspiciousActivity,
				IP:        meta.IP,
				Username:  username,
				UserAgent: meta.UserAgent,
			})
		}
	}

	if s.lockout != nil {
		lockedNow, err := s.lockout.RecordFailure(ctx, username)
		if err != nil {
			s.logger.Warn("record sign-in failure failed", zap.Error(err))
		}
		if lockedNow {
			s.logger.Warn("account locked after repeated failures", zap.String("username", username))
			if s.seclog != nil {
				s.seclog.Record(ctx, securitylog.Event{
					Type:      securitylog.EventAccountLocked,
					IP:        meta.IP,
					Username:  username,
					UserAgent: meta.UserAgent,
				})
			}
		}
	}

	return autherrors.ErrInvalidCredentials
}

func (s *service) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	token, err := jwt.Parse(refreshToken, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, autherrors.ErrInvalidToken
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil || !token.Valid {
		return TokenPair{}, autherrors.ErrInvalidRefreshToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return TokenPair{}, autherrors.ErrInvalidToken
	}

	username, ok := claims["sub"].(string)
	if !ok || username == "" {
		return TokenPair{}, autherrors.ErrInvalidToken
	}

	if s.blacklist != nil {
		if jti, _ := claims["jti"].(string); jti != "" {
			revoked, err := s.blacklist.IsRevoked(ctx, jti)
			if err == nil && revoked {
				return TokenPair{}, autherrors.ErrTokenRevoked
			}
		}
	}

	// Re-resolve the role so a role change takes effect on refresh.
	empl, err := s.employees.FindByUsername(ctx, username)
	if err != nil {
		return TokenPair{}, autherrors.ErrInvalidRefreshToken
	}

	pair, err := s.issueTokens(empl.Username, empl.Role)
	if err != nil {
		return TokenPair{}, autherrors.ErrTokenGenerationFailed
	}
	return pair, nil
}

func (s *service) Me(ctx context.Context, username string) (*AuthResponse, error) {
	empl, err := s.employees.FindByUsername(ctx, username)
	if err != nil {
		return nil, autherrors.ErrInvalidCredentials
	}
	resp := mapToAuthResponse(empl)
	return &resp, nil
}

func (s *service) SignOut(ctx context.Context, jti string, expiresAt time.Time, meta RequestMeta) error {
	if s.blacklist == nil || jti == "" {
		return nil
	}
	if err := s.blacklist.Revoke(ctx, jti, time.Until(expiresAt)); err != nil {
		return err
	}
	if s.seclog != nil {
		s.seclog.Record(ctx, securitylog.Event{
			Type:      securitylog.EventTokenRevoked,
			IP:        meta.IP,
			UserAgent: meta.UserAgent,
			Details:   map[string]any{"jti": jti},
		})
	}
	return nil
}

func (s *service) issueTokens(username, role string) (TokenPair, error) {
	access, err := generateToken(username, role, accessTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := generateToken(username, role, refreshTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// generateToken signs an HS256 JWT whose subject is the username; the jti
// makes individual tokens revocable via the blacklist.
func generateToken(username, role string, expiry time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":  username,
		"role": role,
		"jti":  uuid.New().String(),
		"exp":  time.Now().Add(expiry).Unix(),
		"iat":  time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}

func mapToAuthResponse(e *employee.Employee) AuthResponse {
	return AuthResponse{
		Username:    e.Username,
		Email:       e.Email,
		FirstName:   e.FirstName,
		LastName:    e.LastName,
		Position:    e.Position,
		Role:        e.Role,
		TOTPEnabled: e.TOTPEnabled,
	}
}
