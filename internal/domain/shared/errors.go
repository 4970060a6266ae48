package shared

import "errors"

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is matches domain errors by code so wrapped copies compare equal
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Error codes
const (
	CodeNetworkUnavailable    = "NETWORK_UNAVAILABLE"
	CodeInvalidCredentials    = "INVALID_CREDENTIALS"
	CodeDuplicateRegistration = "DUPLICATE_REGISTRATION"
	CodeNetworkError          = "NETWORK_ERROR"
	CodeLoadError             = "LOAD_ERROR"
	CodeEmptyDataset          = "EMPTY_DATASET"
	CodeEmptyScenario         = "EMPTY_SCENARIO"
	CodeVoiceUnsupported      = "VOICE_UNSUPPORTED"
	CodeVoiceError            = "VOICE_ERROR"
	CodeInvalidState          = "INVALID_STATE"
	CodeInvalidInput          = "INVALID_INPUT"
	CodeNotFound              = "NOT_FOUND"
)

// Common domain errors
var (
	ErrNetworkUnavailable    = NewDomainError(CodeNetworkUnavailable, "Backend unavailable")
	ErrInvalidCredentials    = NewDomainError(CodeInvalidCredentials, "Invalid email or password")
	ErrDuplicateRegistration = NewDomainError(CodeDuplicateRegistration, "Email is already registered")
	ErrNetworkError          = NewDomainError(CodeNetworkError, "Network error")
	ErrLoadError             = NewDomainError(CodeLoadError, "Failed to load data")
	ErrEmptyDataset          = NewDomainError(CodeEmptyDataset, "No companies exist, seed demo data first")
	ErrEmptyScenario         = NewDomainError(CodeEmptyScenario, "No company matches the requested scenario")
	ErrVoiceUnsupported      = NewDomainError(CodeVoiceUnsupported, "Speech recognition is not available")
	ErrVoiceError            = NewDomainError(CodeVoiceError, "Speech recognition failed")
	ErrInvalidState          = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
	ErrInvalidInput          = NewDomainError(CodeInvalidInput, "Invalid input provided")
	ErrNotFound              = NewDomainError(CodeNotFound, "Resource not found")
)

// CodeOf returns the domain error code carried by err, or "" if err is not a domain error
func CodeOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// Wrap returns a domain error with the given code whose message carries detail
func Wrap(base *DomainError, detail string) *DomainError {
	if detail == "" {
		return NewDomainError(base.Code, base.Message)
	}
	return NewDomainError(base.Code, base.Message+": "+detail)
}
