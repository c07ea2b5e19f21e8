package employeeerrors

import (
	"net/http"

	"gaha-portal/internal/shared/apperror"
)

var (
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"Employee not found",
		http.StatusNotFound,
	)
	ErrUsernameAlreadyExists = apperror.New(
		apperror.CodeConflict,
		"An employee with this username already exists",
		http.StatusConflict,
	)
	ErrEmailAlreadyExists = apperror.New(
		apperror.CodeConflict,
		"An employee with this email already exists",
		http.StatusConflict,
	)
	ErrInvalidUsername = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid username",
		http.StatusBadRequest,
	)
)
