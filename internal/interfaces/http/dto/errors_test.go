package dto

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MarxCha/poa-dashboard/internal/domain/shared"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{shared.CodeInvalidCredentials, http.StatusUnauthorized},
		{shared.CodeDuplicateRegistration, http.StatusConflict},
		{shared.CodeInvalidState, http.StatusUnprocessableEntity},
		{shared.CodeInvalidInput, http.StatusBadRequest},
		{shared.CodeNetworkUnavailable, http.StatusServiceUnavailable},
		{shared.CodeVoiceUnsupported, http.StatusNotImplemented},
		{ErrCodeBadRequest, http.StatusBadRequest},
		{"SOMETHING_ELSE", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestNewErrorResponse(t *testing.T) {
	r := NewErrorResponseWithRequestID(shared.CodeNotFound, "no existe", "req-1")
	assert.False(t, r.Success)
	assert.Nil(t, r.Data)
	assert.Equal(t, "req-1", r.Error.RequestID)

	ok := NewSuccessResponse(map[string]int{"n": 1})
	assert.True(t, ok.Success)
	assert.Nil(t, ok.Error)
}
