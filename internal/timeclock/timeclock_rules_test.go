package timeclock

import (
	"testing"
	"time"

	timeclockerrors "gaha-portal/internal/timeclock/errors"

	"github.com/stretchr/testify/assert"
)

func TestPunchGuards(t *testing.T) {
	now := time.Now()
	open := &TimeEntry{ClockIn: now}
	onLunch := &TimeEntry{ClockIn: now, LunchStart: &now}
	afterLunch := &TimeEntry{ClockIn: now, LunchStart: &now, LunchEnd: &now}
	closed := &TimeEntry{ClockIn: now, ClockOut: &now}

	tests := []struct {
		name  string
		guard func(*TimeEntry) error
		entry *TimeEntry
		want  error
	}{
		{"clock in fresh", clockInError, nil, nil},
		{"clock in over open shift", clockInError, open, timeclockerrors.ErrAlreadyClockedIn},
		{"clock in over lunch", clockInError, onLunch, timeclockerrors.ErrAlreadyClockedIn},

		{"lunch start while working", startLunchError, open, nil},
		{"lunch start without shift", startLunchError, nil, timeclockerrors.ErrNotClockedIn},
		{"lunch start while on lunch", startLunchError, onLunch, timeclockerrors.ErrLunchAlreadyActive},
		{"lunch start after lunch", startLunchError, afterLunch, timeclockerrors.ErrLunchAlreadyTaken},
		{"lunch start after clock out", startLunchError, closed, timeclockerrors.ErrNotClockedIn},

		{"lunch end while on lunch", endLunchError, onLunch, nil},
		{"lunch end without shift", endLunchError, nil, timeclockerrors.ErrNotClockedIn},
		{"lunch end before lunch", endLunchError, open, timeclockerrors.ErrLunchNotStarted},
		{"lunch end twice", endLunchError, afterLunch, timeclockerrors.ErrLunchAlreadyEnded},

		{"clock out while working", clockOutError, open, nil},
		{"clock out after lunch", clockOutError, afterLunch, nil},
		{"clock out without shift", clockOutError, nil, timeclockerrors.ErrNotClockedIn},
		{"clock out during lunch", clockOutError, onLunch, timeclockerrors.ErrLunchInProgress},
		{"clock out twice", clockOutError, closed, timeclockerrors.ErrNotClockedIn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.guard(tt.entry)
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}
