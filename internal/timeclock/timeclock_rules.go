package timeclock

import (
	timeclockerrors "gaha-portal/internal/timeclock/errors"
)

// Transition guards for the punch state machine. Each returns nil when
// the transition is legal for the given open entry (nil means no open
// entry exists for today). The service applies these before writing and
// again after a conditional write touches zero rows, so a concurrent
// transition surfaces as the same error a serial caller would have seen.

func clockInError(open *TimeEntry) error {
	if open != nil && open.ClockOut == nil {
		return timeclockerrors.ErrAlreadyClockedIn
	}
	return nil
}

func startLunchError(open *TimeEntry) error {
	switch {
	case open == nil || open.ClockOut != nil:
		return timeclockerrors.ErrNotClockedIn
	case open.LunchStart != nil && open.LunchEnd == nil:
		return timeclockerrors.ErrLunchAlreadyActive
	case open.LunchStart != nil:
		return timeclockerrors.ErrLunchAlreadyTaken
	default:
		return nil
	}
}

func endLunchError(open *TimeEntry) error {
	switch {
	case open == nil || open.ClockOut != nil:
		return timeclockerrors.ErrNotClockedIn
	case open.LunchStart == nil:
		return timeclockerrors.ErrLunchNotStarted
	case open.LunchEnd != nil:
		return timeclockerrors.ErrLunchAlreadyEnded
	default:
		return nil
	}
}

func clockOutError(open *TimeEntry) error {
	switch {
	case open == nil || open.ClockOut != nil:
		return timeclockerrors.ErrNotClockedIn
	case open.LunchStart != nil && open.LunchEnd == nil:
		return timeclockerrors.ErrLunchInProgress
	default:
		return nil
	}
}
