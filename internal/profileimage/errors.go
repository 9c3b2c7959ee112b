package profileimage

import (
	"net/http"

	"github.com/Algoraver22/employee-hr-platform/internal/shared/apperror"
)

var (
	ErrImageNotFound = apperror.New(
		apperror.CodeNotFound,
		"Profile image not found",
		http.StatusNotFound,
	)
	ErrEmptyImage = apperror.New(
		apperror.CodeInvalidInput,
		"Profile image is empty",
		http.StatusBadRequest,
	)
	ErrImageTooLarge = apperror.New(
		apperror.CodeInvalidInput,
		"Profile image must be at most 5 MiB",
		http.StatusBadRequest,
	)
	ErrUnsupportedType = apperror.New(
		apperror.CodeInvalidInput,
		"Profile image must be an image file",
		http.StatusBadRequest,
	)
	ErrInvalidRef = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid profile image reference",
		http.StatusBadRequest,
	)
)
