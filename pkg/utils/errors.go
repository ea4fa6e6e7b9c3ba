package utils

import (
	"net/http"

	apperrors "lending-system/pkg/errors"
)

// ErrorList сопоставляет сквозные ошибки с HTTP-кодами.
var ErrorList = map[error]int{
	apperrors.ErrNotFound:               http.StatusNotFound,
	apperrors.ErrBadRequest:             http.StatusBadRequest,
	apperrors.ErrConflict:               http.StatusConflict,
	apperrors.ErrDuplicateSerial:        http.StatusConflict,
	apperrors.ErrForbidden:              http.StatusForbidden,
	apperrors.ErrUnauthorized:           http.StatusUnauthorized,
	apperrors.ErrActorNotFoundInContext: http.StatusUnauthorized,
	apperrors.ErrEmptyAuthHeader:        http.StatusUnauthorized,
	apperrors.ErrInvalidAuthHeader:      http.StatusUnauthorized,
	apperrors.ErrInvalidCredentials:     http.StatusUnauthorized,
	apperrors.ErrInvalidToken:           http.StatusUnauthorized,
	apperrors.ErrTokenExpired:           http.StatusUnauthorized,
	apperrors.ErrTokenNotYetValid:       http.StatusUnauthorized,
	apperrors.ErrTokenIsNotAccess:       http.StatusUnauthorized,
	apperrors.ErrInvalidSigningMethod:   http.StatusUnauthorized,
}
