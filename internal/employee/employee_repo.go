package employee

import (
	"context"

	"gorm.io/gorm"
)

//go:generate mockgen -source=employee_repo.go -destination=mock/employee_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, e *Employee) error
	FindAll(ctx context.Context) ([]Employee, error)
	FindByUsername(ctx context.Context, username string) (*Employee, error)
	Search(ctx context.Context, term string) ([]Employee, error)
	Update(ctx context.Context, e *Employee) error
	Delete(ctx context.Context, username string) error
	SetTOTPSecret(ctx context.Context, username, secret string) error
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

func (r *repository) Create(ctx context.Context, e *Employee) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *repository) FindAll(ctx context.Context) ([]Employee, error) {
	var rows []Employee
	err := r.db.WithContext(ctx).
		Order("lastname ASC, firstname ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindByUsername(ctx context.Context, username string) (*Employee, error) {
	var e Employee
	err := r.db.WithContext(ctx).
		First(&e, "username = ?", username).Error
	return &e, err
}

func (r *repository) Search(ctx context.Context, term string) ([]Employee, error) {
	var rows []Employee
	pattern := "%" + term + "%"
	err := r.db.WithContext(ctx).
		Where(
			"username ILIKE ? OR firstname ILIKE ? OR lastname ILIKE ? OR position ILIKE ?",
			pattern, pattern, pattern, pattern,
		).
		Order("lastname ASC, firstname ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) Update(ctx context.Context, e *Employee) error {
	return r.db.WithContext(ctx).Save(e).Error
}

func (r *repository) Delete(ctx context.Context, username string) error {
	return r.db.WithContext(ctx).
		Delete(&Employee{}, "username = ?", username).Error
}

func (r *repository) SetTOTPSecret(ctx context.Context, username, secret string) error {
	return r.db.WithContext(ctx).
		Model(&Employee{}).
		Where("username = ?", username).
		Updates(map[string]any{
			"totp_secret":  secret,
			"totp_enabled": true,
		}).Error
}
