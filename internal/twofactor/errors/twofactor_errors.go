package twofactorerrors

import (
	"net/http"

	"gaha-portal/internal/shared/apperror"
)

var (
	ErrNoPendingSecret = apperror.New("TOTP_NOT_REGISTERED", "No pending authenticator registration found", http.StatusBadRequest)
	ErrInvalidCode     = apperror.New("TOTP_INVALID_CODE", "Invalid authenticator code", http.StatusBadRequest)
	ErrAlreadyEnabled  = apperror.New("TOTP_ALREADY_ENABLED", "Two-factor authentication is already enabled", http.StatusConflict)
)
