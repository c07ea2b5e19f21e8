package consumer

import (
	"context"
	"encoding/json"

	"gaha-portal/internal/events"
	"gaha-portal/internal/notification"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

func ConsumeEmployeeOnboarding(
	ctx context.Context,
	reader *kafkago.Reader,
	notificationService notification.Service,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.employee_onboarding")
	log.Info("employee onboarding consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("employee onboarding consumer stopped")
				return
			}
			log.Error("fetch employee onboarding message failed", zap.Error(err))
			continue
		}

		var event events.EmployeeCreatedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode employee_created event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		if err := notificationService.SendEmployeeWelcome(ctx, event); err != nil {
			log.Error("send welcome notification failed",
				zap.String("username", event.Username),
				zap.Error(err),
			)
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit employee onboarding message failed", zap.Error(err))
			continue
		}

		log.Info("welcome notification handled",
			zap.String("username", event.Username),
		)
	}
}
