package timeclock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

//go:generate mockgen -source=timeclock_repo.go -destination=mock/timeclock_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, e *TimeEntry) error
	FindOpenForDate(ctx context.Context, username string, date time.Time) (*TimeEntry, error)
	FindLatestForDate(ctx context.Context, username string, date time.Time) (*TimeEntry, error)
	SetLunchStart(ctx context.Context, id uuid.UUID, at time.Time) (int64, error)
	SetLunchEnd(ctx context.Context, id uuid.UUID, at time.Time) (int64, error)
	SetClockOut(ctx context.Context, id uuid.UUID, at time.Time) (int64, error)
	FindPage(ctx context.Context, username string, limit, offset int) ([]TimeEntry, error)
	Count(ctx context.Context, username string) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, e *TimeEntry) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *repository) FindOpenForDate(ctx context.Context, username string, date time.Time) (*TimeEntry, error) {
	var e TimeEntry
	err := r.db.WithContext(ctx).
		Where("username = ?", username).
		Where("work_date = ?", date.Format("2006-01-02")).
		Where("clock_out IS NULL").
		First(&e).Error
	return &e, err
}

func (r *repository) FindLatestForDate(ctx context.Context, username string, date time.Time) (*TimeEntry, error) {
	var e TimeEntry
	err := r.db.WithContext(ctx).
		Where("username = ?", username).
		Where("work_date = ?", date.Format("2006-01-02")).
		Order("clock_in DESC").
		First(&e).Error
	return &e, err
}

// The Set* writes repeat their state-machine precondition in the WHERE
// clause. Zero rows affected means a concurrent transition got there
// first; the caller maps that back to the matching transition error.

func (r *repository) SetLunchStart(ctx context.Context, id uuid.UUID, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&TimeEntry{}).
		Where("id = ?", id).
		Where("clock_out IS NULL").
		Where("lunch_start IS NULL").
		Update("lunch_start", at)
	return res.RowsAffected, res.Error
}

func (r *repository) SetLunchEnd(ctx context.Context, id uuid.UUID, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&TimeEntry{}).
		Where("id = ?", id).
		Where("clock_out IS NULL").
		Where("lunch_start IS NOT NULL").
		Where("lunch_end IS NULL").
		Update("lunch_end", at)
	return res.RowsAffected, res.Error
}

func (r *repository) SetClockOut(ctx context.Context, id uuid.UUID, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&TimeEntry{}).
		Where("id = ?", id).
		Where("clock_out IS NULL").
		Where("lunch_start IS NULL OR lunch_end IS NOT NULL").
		Update("clock_out", at)
	return res.RowsAffected, res.Error
}

func (r *repository) FindPage(ctx context.Context, username string, limit, offset int) ([]TimeEntry, error) {
	var rows []TimeEntry
	err := r.db.WithContext(ctx).
		Where("username = ?", username).
		Order("work_date DESC, clock_in DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	return rows, err
}

func (r *repository) Count(ctx context.Context, username string) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&TimeEntry{}).
		Where("username = ?", username).
		Count(&total).Error
	return total, err
}
