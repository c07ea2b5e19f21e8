package securitylog

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const suspiciousEventsPerHour = 100

type Event struct {
	Type      string
	IP        string
	Username  string
	UserAgent string
	Details   map[string]any
}

//go:generate mockgen -source=securitylog_service.go -destination=mock/securitylog_service_mock.go -package=mock
type Service interface {
	Record(ctx context.Context, event Event)
	IsSuspicious(ctx context.Context, ip string) (bool, error)
	Purge(ctx context.Context, retention time.Duration) (int64, error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("securitylog.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("securitylog.service")
	}
	return &service{repo: repo, logger: l}
}

// Record persists a security event. It never fails the caller's request:
// a sign-in must not 500 because the audit insert hiccuped.
func (s *service) Record(ctx context.Context, event Event) {
	details, err := json.Marshal(event.Details)
	if err != nil {
		details = []byte("{}")
	}

	row := &SecurityEvent{
		ID:           uuid.New(),
		EventType:    event.Type,
		IPHash:       hashForLogging(event.IP),
		UsernameHash: hashForLogging(event.Username),
		UserAgent:    event.UserAgent,
		Details:      details,
	}

	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.Error("record security event failed",
			zap.String("event_type", event.Type),
			zap.Error(err),
		)
	}
}

func (s *service) IsSuspicious(ctx context.Context, ip string) (bool, error) {
	count, err := s.repo.CountByIPSince(ctx, hashForLogging(ip), time.Now().Add(-time.Hour))
	if err != nil {
		return false, err
	}
	return count > suspiciousEventsPerHour, nil
}

func (s *service) Purge(ctx context.Context, retention time.Duration) (int64, error) {
	deleted, err := s.repo.DeleteOlderThan(ctx, time.Now().Add(-retention))
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		s.logger.Info("purged security events", zap.Int64("deleted", deleted))
	}
	return deleted, nil
}

func hashForLogging(v string) string {
	if v == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(v))
	return hex.EncodeToString(sum[:])
}
