package timeclock

import (
	"time"

	"github.com/google/uuid"
)

// Shift states derived from a TimeEntry's nullable columns.
const (
	StateNotClockedIn = "NOT_CLOCKED_IN"
	StateWorking      = "WORKING"
	StateOnLunch      = "ON_LUNCH"
	StateClockedOut   = "CLOCKED_OUT"
)

// TimeEntry is one punch cycle for one employee on one calendar day.
// The partial unique index keeps at most one open entry (clock_out NULL)
// per employee per day even under concurrent clock-in calls; closed
// entries are append-only history, so split shifts on the same day are
// allowed.
type TimeEntry struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	Username   string     `gorm:"column:username;type:varchar(50);not null;index:idx_time_entries_history,priority:1;uniqueIndex:uq_open_time_entry,priority:1,where:clock_out IS NULL"`
	WorkDate   time.Time  `gorm:"column:work_date;type:date;not null;index:idx_time_entries_history,priority:2,sort:desc;uniqueIndex:uq_open_time_entry,priority:2"`
	ClockIn    time.Time  `gorm:"column:clock_in;type:timestamptz;not null"`
	LunchStart *time.Time `gorm:"column:lunch_start;type:timestamptz"`
	LunchEnd   *time.Time `gorm:"column:lunch_end;type:timestamptz"`
	ClockOut   *time.Time `gorm:"column:clock_out;type:timestamptz"`
	CreatedAt  time.Time  `gorm:"column:created_at"`
	UpdatedAt  time.Time  `gorm:"column:updated_at"`
}

func (TimeEntry) TableName() string {
	return "time_entries"
}

// State reports where the entry sits in the punch cycle.
func (e *TimeEntry) State() string {
	switch {
	case e == nil:
		return StateNotClockedIn
	case e.ClockOut != nil:
		return StateClockedOut
	case e.LunchStart != nil && e.LunchEnd == nil:
		return StateOnLunch
	default:
		return StateWorking
	}
}

// LunchDuration is zero until both lunch punches exist.
func (e *TimeEntry) LunchDuration() time.Duration {
	if e.LunchStart == nil || e.LunchEnd == nil {
		return 0
	}
	return e.LunchEnd.Sub(*e.LunchStart)
}

// WorkedDuration is the clock-in to clock-out span minus lunch. It is
// derived, never stored, and only meaningful on a closed entry.
func (e *TimeEntry) WorkedDuration() time.Duration {
	if e.ClockOut == nil {
		return 0
	}
	return e.ClockOut.Sub(e.ClockIn) - e.LunchDuration()
}
