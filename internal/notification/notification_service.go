package notification

import (
	"context"
	"fmt"

	"gaha-portal/internal/events"

	"go.uber.org/zap"
)

//go:generate mockgen -source=notification_service.go -destination=mock/notification_service_mock.go -package=mock
type Service interface {
	SendEmployeeWelcome(ctx context.Context, event events.EmployeeCreatedEvent) error
}

type service struct {
	logger *zap.Logger
}

func NewService() Service {
	return &service{logger: zap.L().Named("notification_service")}
}

// SendEmployeeWelcome delivers the onboarding notice for a new employee.
// Delivery is currently log-based; the mail transport plugs in here.
func (s *service) SendEmployeeWelcome(ctx context.Context, event events.EmployeeCreatedEvent) error {
	if event.Email == "" {
		return fmt.Errorf("employee %s has no email address", event.Username)
	}

	s.logger.Info("welcome notification sent",
		zap.String("username", event.Username),
		zap.String("email", event.Email),
		zap.String("position", event.Position),
	)
	return nil
}
