package employee

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Employee struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	Username    string    `gorm:"column:username;type:varchar(50);not null;uniqueIndex:uq_employee_username"`
	Email       string    `gorm:"column:email;type:varchar(255);not null;uniqueIndex:uq_employee_email"`
	Password    string    `gorm:"column:password;type:varchar(255);not null"` // bcrypt hash, never serialized
	FirstName   string    `gorm:"column:firstname;type:varchar(100);not null"`
	LastName    string    `gorm:"column:lastname;type:varchar(100);not null"`
	Position    string    `gorm:"column:position;type:varchar(100)"`
	Role        string    `gorm:"column:role;type:varchar(20);not null;default:'CAREGIVER'"`
	TOTPSecret  *string   `gorm:"column:totp_secret;type:varchar(64)"`
	TOTPEnabled bool      `gorm:"column:totp_enabled;not null;default:false"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

func (Employee) TableName() string {
	return "employees"
}
