package timeclockerrors

import (
	"net/http"

	"gaha-portal/internal/shared/apperror"
)

// Every invalid transition gets its own machine-readable code so clients
// can branch without parsing message text.
var (
	ErrAlreadyClockedIn = apperror.New(
		"ALREADY_CLOCKED_IN",
		"Already clocked in",
		http.StatusBadRequest,
	)
	ErrNotClockedIn = apperror.New(
		"NOT_CLOCKED_IN",
		"Not clocked in",
		http.StatusBadRequest,
	)
	ErrLunchAlreadyActive = apperror.New(
		"LUNCH_ALREADY_ACTIVE",
		"Already on lunch break",
		http.StatusBadRequest,
	)
	ErrLunchAlreadyTaken = apperror.New(
		"LUNCH_ALREADY_TAKEN",
		"Lunch break already taken for this clock-in event",
		http.StatusBadRequest,
	)
	ErrLunchNotStarted = apperror.New(
		"LUNCH_NOT_STARTED",
		"Lunch break not started",
		http.StatusBadRequest,
	)
	ErrLunchAlreadyEnded = apperror.New(
		"LUNCH_ALREADY_ENDED",
		"Lunch break already ended",
		http.StatusBadRequest,
	)
	ErrLunchInProgress = apperror.New(
		"LUNCH_IN_PROGRESS",
		"Cannot clock out while on lunch break",
		http.StatusBadRequest,
	)
)
