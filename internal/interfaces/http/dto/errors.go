package dto

import (
	"net/http"

	"github.com/MarxCha/poa-dashboard/internal/domain/shared"
)

// Codes raised by the presentation layer itself
const (
	ErrCodeBadRequest = "BAD_REQUEST"
	ErrCodeInternal   = "INTERNAL_ERROR"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeBadRequest: http.StatusBadRequest,
	ErrCodeInternal:   http.StatusInternalServerError,

	shared.CodeInvalidInput: http.StatusBadRequest,
	shared.CodeNotFound:     http.StatusNotFound,

	// auth errors leave the session unchanged
	shared.CodeInvalidCredentials:    http.StatusUnauthorized,
	shared.CodeDuplicateRegistration: http.StatusConflict,
	shared.CodeNetworkError:          http.StatusBadGateway,

	shared.CodeInvalidState:  http.StatusUnprocessableEntity,
	shared.CodeEmptyDataset:  http.StatusConflict,
	shared.CodeEmptyScenario: http.StatusNotFound,

	shared.CodeNetworkUnavailable: http.StatusServiceUnavailable,
	shared.CodeLoadError:          http.StatusBadGateway,

	shared.CodeVoiceUnsupported: http.StatusNotImplemented,
	shared.CodeVoiceError:       http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
