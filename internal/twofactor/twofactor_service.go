package twofactor

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"os"
	"time"

	"gaha-portal/internal/employee"
	employeeerrors "gaha-portal/internal/employee/errors"
	"gaha-portal/internal/shared/apperror"
	twofactorerrors "gaha-portal/internal/twofactor/errors"

	"github.com/pquerna/otp/totp"
	"github.com/redis/go-redis/v9"
	qrcode "github.com/skip2/go-qrcode"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	pendingSecretPrefix = "totp_pending:"
	pendingSecretTTL    = 10 * time.Minute
	defaultIssuer       = "Guardian Angel Home Healthcare"
	qrImageSize         = 256
)

//go:generate mockgen -source=twofactor_service.go -destination=mock/twofactor_service_mock.go -package=mock
type Service interface {
	Register(ctx context.Context, username string) (*RegisterResponse, error)
	Verify(ctx context.Context, username, code string) error
}

type service struct {
	employees employee.Repository
	rdb       *redis.Client
	logger    *zap.Logger
}

func NewService(employees employee.Repository, rdb *redis.Client) Service {
	return &service{
		employees: employees,
		rdb:       rdb,
		logger:    zap.L().Named("twofactor_service"),
	}
}

// Register generates a fresh TOTP secret for the acting principal. The
// secret stays in redis until Verify proves the authenticator was set up,
// so an abandoned registration never locks anyone out.
func (s *service) Register(ctx context.Context, username string) (*RegisterResponse, error) {
	emp, err := s.employees.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, employeeerrors.ErrEmployeeNotFound
		}
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "Failed to load employee", http.StatusInternalServerError)
	}
	if emp.TOTPEnabled {
		return nil, twofactorerrors.ErrAlreadyEnabled
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer(),
		AccountName: username,
	})
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "Failed to generate authenticator secret", http.StatusInternalServerError)
	}

	if err := s.rdb.Set(ctx, pendingSecretPrefix+username, key.Secret(), pendingSecretTTL).Err(); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeServiceUnavailable, "Failed to stash pending secret", http.StatusServiceUnavailable)
	}

	qrURL, err := qrDataURL(key.URL())
	if err != nil {
		s.logger.Warn("qr code generation failed", zap.String("username", username), zap.Error(err))
		qrURL = ""
	}

	return &RegisterResponse{
		Secret:     key.Secret(),
		OTPAuthURL: key.URL(),
		QRCodeURL:  qrURL,
	}, nil
}

// Verify validates a code against the pending secret and, on success,
// persists the secret and enables two-factor sign-in for the employee.
func (s *service) Verify(ctx context.Context, username, code string) error {
	secret, err := s.rdb.Get(ctx, pendingSecretPrefix+username).Result()
	if errors.Is(err, redis.Nil) {
		return twofactorerrors.ErrNoPendingSecret
	}
	if err != nil {
		return apperror.Wrap(err, apperror.CodeServiceUnavailable, "Failed to load pending secret", http.StatusServiceUnavailable)
	}

	if !totp.Validate(code, secret) {
		return twofactorerrors.ErrInvalidCode
	}

	if err := s.employees.SetTOTPSecret(ctx, username, secret); err != nil {
		return apperror.Wrap(err, apperror.CodeInternalError, "Failed to enable two-factor authentication", http.StatusInternalServerError)
	}

	if err := s.rdb.Del(ctx, pendingSecretPrefix+username).Err(); err != nil {
		s.logger.Warn("failed to clear pending secret", zap.String("username", username), zap.Error(err))
	}

	s.logger.Info("two-factor authentication enabled", zap.String("username", username))
	return nil
}

func qrDataURL(otpauthURL string) (string, error) {
	png, err := qrcode.Encode(otpauthURL, qrcode.Medium, qrImageSize)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	buf.WriteString("data:image/png;base64,")
	buf.WriteString(base64.StdEncoding.EncodeToString(png))
	return buf.String(), nil
}

func issuer() string {
	if v := os.Getenv("TOTP_ISSUER"); v != "" {
		return v
	}
	return defaultIssuer
}
