package dto

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code   string
		status int
	}{
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeUnauthorized, http.StatusUnauthorized},
		{ErrCodeForbidden, http.StatusForbidden},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeAlreadyExists, http.StatusConflict},
		{ErrCodeUpstreamFailed, http.StatusBadGateway},
		{ErrCodeNotConfigured, http.StatusUnprocessableEntity},
		{ErrCodeBodyTooLarge, http.StatusRequestEntityTooLarge},
		{"ERR_SOMETHING_NEW", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.status, GetHTTPStatus(tt.code))
		})
	}
}

func TestNormalizeErrorCode(t *testing.T) {
	assert.Equal(t, ErrCodeNotFound, NormalizeErrorCode("NOT_FOUND"))
	assert.Equal(t, ErrCodeUpstreamFailed, NormalizeErrorCode("UPSTREAM_FAILED"))
	assert.Equal(t, ErrCodeNotConfigured, NormalizeErrorCode("NOT_CONFIGURED"))
	assert.Equal(t, ErrCodeForbidden, NormalizeErrorCode(ErrCodeForbidden))
	assert.Equal(t, "CUSTOM", NormalizeErrorCode("CUSTOM"))
}

func TestResponses(t *testing.T) {
	ok := NewSuccessResponse(map[string]int{"n": 1})
	assert.True(t, ok.Success)
	assert.Equal(t, MessageSuccess, ok.Message)
	assert.Nil(t, ok.Error)

	fail := NewErrorResponse(ErrCodeNotFound, "missing")
	assert.False(t, fail.Success)
	assert.Equal(t, MessageFailure, fail.Message)
	assert.Equal(t, ErrCodeNotFound, fail.Error.Code)

	v := NewValidationErrorResponse("invalid", map[string]string{"password": "too short"})
	assert.Equal(t, ErrCodeValidation, v.Error.Code)
	assert.Equal(t, "too short", v.Error.Fields["password"])
}
