package securitylog

import (
	"context"
	"time"

	"gorm.io/gorm"
)

//go:generate mockgen -source=securitylog_repo.go -destination=mock/securitylog_repo_mock.go -package=mock
type Repository interface {
	Create(ctx context.Context, e *SecurityEvent) error
	CountByIPSince(ctx context.Context, ipHash string, since time.Time) (int64, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, e *SecurityEvent) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *repository) CountByIPSince(ctx context.Context, ipHash string, since time.Time) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&SecurityEvent{}).
		Where("ip_hash = ?", ipHash).
		Where("created_at > ?", since).
		Count(&total).Error
	return total, err
}

func (r *repository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&SecurityEvent{})
	return res.RowsAffected, res.Error
}
