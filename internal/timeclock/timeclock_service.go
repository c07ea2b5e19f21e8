package timeclock

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"gaha-portal/internal/events"
	"gaha-portal/internal/messaging/kafka"
	"gaha-portal/internal/shared/contextutil"
	timeclockerrors "gaha-portal/internal/timeclock/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultHistoryLimit = 10
	maxHistoryLimit     = 100
)

//go:generate mockgen -source=timeclock_service.go -destination=mock/timeclock_service_mock.go -package=mock
type Service interface {
	CurrentStatus(ctx context.Context, username string) (*TimeEntryResponse, error)
	ClockIn(ctx context.Context, username string) (TimeEntryResponse, error)
	StartLunch(ctx context.Context, username string) (TimeEntryResponse, error)
	EndLunch(ctx context.Context, username string) (TimeEntryResponse, error)
	ClockOut(ctx context.Context, username string) (TimeEntryResponse, error)
	History(ctx context.Context, username string, limit, offset int) ([]TimeEntryResponse, int64, error)
}

type service struct {
	db     *gorm.DB
	repo   Repository
	outbox kafka.OutboxRepository
	logger *zap.Logger
}

func NewService(db *gorm.DB, repo Repository, logger ...*zap.Logger) Service {
	return NewServiceWithOutbox(db, repo, nil, logger...)
}

func NewServiceWithOutbox(db *gorm.DB, repo Repository, outboxRepo kafka.OutboxRepository, logger ...*zap.Logger) Service {
	l := zap.L().Named("timeclock.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("timeclock.service")
	}
	return &service{db: db, repo: repo, outbox: outboxRepo, logger: l}
}

// workDate truncates a moment to the server-local calendar day; punches
// always attach to today's entry.
func workDate(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

func (s *service) CurrentStatus(ctx context.Context, username string) (*TimeEntryResponse, error) {
	now := time.Now()
	e, err := s.repo.FindLatestForDate(ctx, username, workDate(now))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	resp := mapToResponse(*e)
	return &resp, nil
}

// ClockIn opens a new entry for today. The read-check-write runs in a
// serializable transaction, and the partial unique index on open entries
// backstops the invariant if two calls race anyway.
func (s *service) ClockIn(ctx context.Context, username string) (TimeEntryResponse, error) {
	now := time.Now()

	tx := s.db.WithContext(ctx).Begin(&sql.TxOptions{Isolation: sql.LevelSerializable})
	if tx.Error != nil {
		return TimeEntryResponse{}, tx.Error
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	open, err := qtx.FindOpenForDate(ctx, username, workDate(now))
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return TimeEntryResponse{}, err
	}
	if err == nil {
		if guardErr := clockInError(open); guardErr != nil {
			return TimeEntryResponse{}, guardErr
		}
	}

	entry := &TimeEntry{
		ID:       uuid.New(),
		Username: username,
		WorkDate: workDate(now),
		ClockIn:  now,
	}
	if err := qtx.Create(ctx, entry); err != nil {
		return TimeEntryResponse{}, mapOpenEntryConflict(err)
	}
	if err := tx.Commit().Error; err != nil {
		return TimeEntryResponse{}, mapOpenEntryConflict(err)
	}

	s.logger.Info("clocked in",
		zap.String("request_id", contextutil.GetRequestID(ctx)),
		zap.String("username", username),
	)
	return mapToResponse(*entry), nil
}

func (s *service) StartLunch(ctx context.Context, username string) (TimeEntryResponse, error) {
	return s.transition(ctx, username, startLunchError, func(tx *gorm.DB, qtx Repository, e *TimeEntry, now time.Time) (int64, error) {
		n, err := qtx.SetLunchStart(ctx, e.ID, now)
		if err == nil && n > 0 {
			e.LunchStart = &now
		}
		return n, err
	})
}

func (s *service) EndLunch(ctx context.Context, username string) (TimeEntryResponse, error) {
	return s.transition(ctx, username, endLunchError, func(tx *gorm.DB, qtx Repository, e *TimeEntry, now time.Time) (int64, error) {
		n, err := qtx.SetLunchEnd(ctx, e.ID, now)
		if err == nil && n > 0 {
			e.LunchEnd = &now
		}
		return n, err
	})
}

func (s *service) ClockOut(ctx context.Context, username string) (TimeEntryResponse, error) {
	resp, err := s.transition(ctx, username, clockOutError, func(tx *gorm.DB, qtx Repository, e *TimeEntry, now time.Time) (int64, error) {
		n, err := qtx.SetClockOut(ctx, e.ID, now)
		if err != nil || n == 0 {
			return n, err
		}
		e.ClockOut = &now
		return n, s.enqueueShiftClosed(ctx, tx, e)
	})
	if err != nil {
		return TimeEntryResponse{}, err
	}

	s.logger.Info("clocked out",
		zap.String("request_id", contextutil.GetRequestID(ctx)),
		zap.String("username", username),
	)
	return resp, nil
}

// transition runs one punch operation: load today's open entry, apply the
// state-machine guard, then perform the conditional write inside a
// serializable transaction. A write that affects zero rows lost a race;
// the entry is reloaded so the guard reports the error a serial caller
// would have gotten.
func (s *service) transition(
	ctx context.Context,
	username string,
	guard func(*TimeEntry) error,
	apply func(tx *gorm.DB, qtx Repository, e *TimeEntry, now time.Time) (int64, error),
) (TimeEntryResponse, error) {
	now := time.Now()

	tx := s.db.WithContext(ctx).Begin(&sql.TxOptions{Isolation: sql.LevelSerializable})
	if tx.Error != nil {
		return TimeEntryResponse{}, tx.Error
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	open, err := qtx.FindOpenForDate(ctx, username, workDate(now))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return TimeEntryResponse{}, timeclockerrors.ErrNotClockedIn
		}
		return TimeEntryResponse{}, err
	}
	if guardErr := guard(open); guardErr != nil {
		return TimeEntryResponse{}, guardErr
	}

	rows, err := apply(tx, qtx, open, now)
	if err != nil {
		return TimeEntryResponse{}, err
	}
	if rows == 0 {
		if current, findErr := qtx.FindOpenForDate(ctx, username, workDate(now)); findErr == nil {
			if guardErr := guard(current); guardErr != nil {
				return TimeEntryResponse{}, guardErr
			}
		}
		return TimeEntryResponse{}, timeclockerrors.ErrNotClockedIn
	}

	if err := tx.Commit().Error; err != nil {
		return TimeEntryResponse{}, err
	}
	return mapToResponse(*open), nil
}

func (s *service) enqueueShiftClosed(ctx context.Context, tx *gorm.DB, e *TimeEntry) error {
	if s.outbox == nil {
		return nil
	}

	payload, err := json.Marshal(events.ShiftClosedEvent{
		Username:      e.Username,
		WorkDate:      e.WorkDate.Format("2006-01-02"),
		ClockIn:       e.ClockIn.Format(time.RFC3339),
		ClockOut:      e.ClockOut.Format(time.RFC3339),
		LunchMinutes:  int64(e.LunchDuration().Minutes()),
		WorkedMinutes: int64(e.WorkedDuration().Minutes()),
	})
	if err != nil {
		return err
	}

	return s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.New().String(),
		RequestID:     contextutil.GetRequestID(ctx),
		AggregateType: "time_entry",
		AggregateID:   e.ID.String(),
		EventType:     events.ShiftClosedType,
		Topic:         events.ShiftClosedTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
}

func (s *service) History(ctx context.Context, username string, limit, offset int) ([]TimeEntryResponse, int64, error) {
	if limit < 1 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	if offset < 0 {
		offset = 0
	}

	total, err := s.repo.Count(ctx, username)
	if err != nil {
		return nil, 0, err
	}

	rows, err := s.repo.FindPage(ctx, username, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	res := make([]TimeEntryResponse, len(rows))
	for i, r := range rows {
		res[i] = mapToResponse(r)
	}
	return res, total, nil
}

// mapOpenEntryConflict translates a unique violation on the open-entry
// index into the same error the precondition check raises.
func mapOpenEntryConflict(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" && pgErr.ConstraintName == "uq_open_time_entry" {
			return timeclockerrors.ErrAlreadyClockedIn
		}
	}
	return err
}
