package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrTransport wraps failures where no response was received
	ErrTransport = errors.New("api transport error")
	// ErrDecode wraps responses whose body did not match the expected shape
	ErrDecode = errors.New("api decode error")
)

// APIError is a non-2xx answer from the backend
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("api error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("api error: status %d: %s", e.StatusCode, e.Detail)
}

// StatusOf returns the HTTP status carried by err, or 0
func StatusOf(err error) int {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.StatusCode
	}
	return 0
}

// DetailOf returns the backend's detail message carried by err, or ""
func DetailOf(err error) string {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.Detail
	}
	return ""
}

// newAPIError reads the {"detail": ...} body. Validation failures carry a
// list of {msg} objects instead of a string.
func newAPIError(status int, body []byte) *APIError {
	e := &APIError{StatusCode: status}

	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		e.Detail = http.StatusText(status)
		return e
	}

	var s string
	if err := json.Unmarshal(payload.Detail, &s); err == nil {
		e.Detail = s
		return e
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(payload.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		e.Detail = strings.Join(msgs, "; ")
		return e
	}

	e.Detail = string(payload.Detail)
	return e
}
