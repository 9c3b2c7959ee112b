package employeeerrors

import (
	"net/http"

	"github.com/Algoraver22/employee-hr-platform/internal/shared/apperror"
)

var (
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"Employee not found",
		http.StatusNotFound,
	)
	ErrEmployeeAlreadyExists = apperror.New(
		apperror.CodeConflict,
		"Employee with the same email already exists",
		http.StatusConflict,
	)
	ErrInvalidSalary = apperror.New(
		apperror.CodeInvalidInput,
		"Salary must be a non-negative number",
		http.StatusBadRequest,
	)
	ErrStoreUnavailable = apperror.New(
		apperror.CodeServiceUnavailable,
		"Employee store is unavailable",
		http.StatusServiceUnavailable,
	)
	ErrNoProfileImage = apperror.New(
		apperror.CodeNotFound,
		"Employee has no profile image",
		http.StatusNotFound,
	)
)
