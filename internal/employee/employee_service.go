package employee

import (
	"context"
	"encoding/json"
	"time"

	"gaha-portal/internal/events"
	"gaha-portal/internal/messaging/kafka"
	"gaha-portal/internal/shared/contextutil"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const (
	DirectoryCacheKey = "employees:directory"
	directoryCacheTTL = 5 * time.Minute
)

//go:generate mockgen -source=employee_service.go -destination=mock/employee_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error)
	GetAll(ctx context.Context) ([]EmployeeResponse, error)
	GetByUsername(ctx context.Context, username string) (EmployeeResponse, error)
	Update(ctx context.Context, username string, req UpdateEmployeeRequest) (EmployeeResponse, error)
	Delete(ctx context.Context, username string) error
	Search(ctx context.Context, term string) ([]EmployeeResponse, error)
}

type service struct {
	db     *gorm.DB
	repo   Repository
	outbox kafka.OutboxRepository
	rdb    *redis.Client
	sf     *singleflight.Group
	logger *zap.Logger
}

func NewService(db *gorm.DB, repo Repository, rdb *redis.Client, logger ...*zap.Logger) Service {
	return NewServiceWithOutbox(db, repo, nil, rdb, logger...)
}

func NewServiceWithOutbox(
	db *gorm.DB,
	repo Repository,
	outboxRepo kafka.OutboxRepository,
	rdb *redis.Client,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("employee.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employee.service")
	}
	return &service{
		db:     db,
		repo:   repo,
		outbox: outboxRepo,
		rdb:    rdb,
		sf:     &singleflight.Group{},
		logger: l,
	}
}

func (s *service) Create(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("create employee requested",
		zap.String("request_id", rid),
		zap.String("username", req.Username),
		zap.String("position", req.Position),
	)

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("create employee hash password failed", zap.String("request_id", rid), zap.Error(err))
		return EmployeeResponse{}, err
	}

	role := req.Role
	if role == "" {
		role = "CAREGIVER"
	}

	empl := &Employee{
		ID:        uuid.New(),
		Username:  req.Username,
		Email:     req.Email,
		Password:  string(hashed),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Position:  req.Position,
		Role:      role,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, empl); err != nil {
			return mapRepositoryError(err)
		}
		return s.enqueueCreatedEvent(ctx, tx, empl, rid)
	})
	if err != nil {
		s.logger.Error("create employee persist failed", zap.String("request_id", rid), zap.Error(err))
		return EmployeeResponse{}, err
	}

	s.invalidateDirectory(ctx)

	s.logger.Info("employee created",
		zap.String("request_id", rid),
		zap.String("username", empl.Username),
	)
	return mapToResponse(*empl), nil
}

// enqueueCreatedEvent writes the employee.created outbox row in the same
// transaction as the insert, so the event exists iff the employee does.
func (s *service) enqueueCreatedEvent(ctx context.Context, tx *gorm.DB, empl *Employee, rid string) error {
	if s.outbox == nil {
		return nil
	}

	payload, err := json.Marshal(events.EmployeeCreatedEvent{
		Username:  empl.Username,
		Email:     empl.Email,
		FirstName: empl.FirstName,
		LastName:  empl.LastName,
		Position:  empl.Position,
	})
	if err != nil {
		return err
	}

	return s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.New().String(),
		RequestID:     rid,
		AggregateType: "employee",
		AggregateID:   empl.Username,
		EventType:     events.EmployeeCreatedType,
		Topic:         events.EmployeeCreatedTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
}

func (s *service) GetAll(ctx context.Context) ([]EmployeeResponse, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, DirectoryCacheKey).Result(); err == nil {
			var res []EmployeeResponse
			if err := json.Unmarshal([]byte(cached), &res); err == nil {
				return res, nil
			}
		}
	}

	// singleflight collapses concurrent cache refills into one query.
	v, err, _ := s.sf.Do(DirectoryCacheKey, func() (any, error) {
		rows, err := s.repo.FindAll(ctx)
		if err != nil {
			return nil, err
		}

		res := make([]EmployeeResponse, len(rows))
		for i, r := range rows {
			res[i] = mapToResponse(r)
		}

		if s.rdb != nil {
			if raw, err := json.Marshal(res); err == nil {
				s.rdb.Set(ctx, DirectoryCacheKey, raw, directoryCacheTTL)
			}
		}
		return res, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]EmployeeResponse), nil
}

func (s *service) GetByUsername(ctx context.Context, username string) (EmployeeResponse, error) {
	e, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return EmployeeResponse{}, mapRepositoryError(err)
	}
	return mapToResponse(*e), nil
}

func (s *service) Update(ctx context.Context, username string, req UpdateEmployeeRequest) (EmployeeResponse, error) {
	rid := contextutil.GetRequestID(ctx)

	e, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	e.Username = req.Username
	e.Email = req.Email
	e.FirstName = req.FirstName
	e.LastName = req.LastName
	e.Position = req.Position
	if req.Role != "" {
		e.Role = req.Role
	}

	// A blank password keeps the existing hash.
	if req.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return EmployeeResponse{}, err
		}
		e.Password = string(hashed)
	}

	if err := s.repo.Update(ctx, e); err != nil {
		s.logger.Error("update employee persist failed",
			zap.String("request_id", rid),
			zap.String("username", username),
			zap.Error(err),
		)
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	s.invalidateDirectory(ctx)

	s.logger.Info("employee updated",
		zap.String("request_id", rid),
		zap.String("username", e.Username),
	)
	return mapToResponse(*e), nil
}

func (s *service) Delete(ctx context.Context, username string) error {
	if _, err := s.repo.FindByUsername(ctx, username); err != nil {
		return mapRepositoryError(err)
	}

	if err := s.repo.Delete(ctx, username); err != nil {
		return mapRepositoryError(err)
	}

	s.invalidateDirectory(ctx)

	s.logger.Info("employee deleted",
		zap.String("request_id", contextutil.GetRequestID(ctx)),
		zap.String("username", username),
	)
	return nil
}

func (s *service) Search(ctx context.Context, term string) ([]EmployeeResponse, error) {
	rows, err := s.repo.Search(ctx, term)
	if err != nil {
		return nil, err
	}

	res := make([]EmployeeResponse, len(rows))
	for i, r := range rows {
		res[i] = mapToResponse(r)
	}
	return res, nil
}

func (s *service) invalidateDirectory(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, DirectoryCacheKey).Err(); err != nil {
		s.logger.Warn("invalidate directory cache failed", zap.Error(err))
	}
}

func mapToResponse(e Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:          e.ID.String(),
		Username:    e.Username,
		Email:       e.Email,
		FirstName:   e.FirstName,
		LastName:    e.LastName,
		Position:    e.Position,
		Role:        e.Role,
		TOTPEnabled: e.TOTPEnabled,
	}
}
