package securitylog

import (
	"time"

	"github.com/google/uuid"
)

// Event types recorded by the auth surface.
const (
	EventSigninFailed       = "SIGNIN_FAILED"
	EventAccountLocked      = "ACCOUNT_LOCKED"
	EventTokenRevoked       = "TOKEN_REVOKED"
	EventSuspiciousActivity = "SUSPICIOUS_ACTIVITY"
)

// SecurityEvent stores IP and username only as sha256 digests; the log is
// for correlation and rate analysis, not for identifying people.
type SecurityEvent struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	EventType    string    `gorm:"column:event_type;type:varchar(50);not null;index"`
	IPHash       string    `gorm:"column:ip_hash;type:char(64);not null;index:idx_security_events_ip_time,priority:1"`
	UsernameHash string    `gorm:"column:username_hash;type:char(64)"`
	UserAgent    string    `gorm:"column:user_agent;type:varchar(500)"`
	Details      []byte    `gorm:"column:details;type:jsonb"`
	CreatedAt    time.Time `gorm:"column:created_at;index:idx_security_events_ip_time,priority:2"`
}

func (SecurityEvent) TableName() string {
	return "security_events"
}
