package dto

import (
	"net/http"

	"github.com/corebank/backend/internal/domain/shared"
)

// Transport level error codes. Domain failures keep the code of their
// DomainError and take their status from its kind.
const (
	ErrCodeInternal        = "ERR_INTERNAL"
	ErrCodeValidation      = "ERR_VALIDATION"
	ErrCodeBadRequest      = "ERR_BAD_REQUEST"
	ErrCodeInvalidJSON     = "ERR_INVALID_JSON"
	ErrCodeUnauthorized    = "ERR_UNAUTHORIZED"
	ErrCodeTokenExpired    = "ERR_TOKEN_EXPIRED"
	ErrCodeForbidden       = "ERR_FORBIDDEN"
	ErrCodeNotFound        = "ERR_NOT_FOUND"
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
)

// KindHTTPStatus maps domain error kinds to HTTP status codes
var KindHTTPStatus = map[shared.ErrorKind]int{
	shared.KindNotFound:   http.StatusNotFound,
	shared.KindConflict:   http.StatusConflict,
	shared.KindForbidden:  http.StatusForbidden,
	shared.KindBadRequest: http.StatusBadRequest,
	shared.KindInternal:   http.StatusInternalServerError,
}

// StatusForKind returns the HTTP status for a kind, 500 when unknown
func StatusForKind(kind shared.ErrorKind) int {
	if status, ok := KindHTTPStatus[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}
