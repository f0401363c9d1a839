// Copyright (c) 2026 Narratives. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package apperr_test

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/narratives/internal/platform/apperr"
)

type codedError struct {
	code    string
	message string
}

func (e *codedError) Error() string     { return e.message }
func (e *codedError) ErrorCode() string { return e.code }

/*
TestMessage verifies the normalization of heterogeneous failures into display text.
*/
func TestMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"backend_message_passes_through", errors.New("permission denied for table literature"), "permission denied for table literature"},
		{"failed_to_fetch", errors.New("Failed to fetch"), apperr.NetworkHint},
		{"load_failed_any_case", errors.New("TypeError: Load Failed"), apperr.NetworkHint},
		{"wrapped_failed_to_fetch", fmt.Errorf("literature: list: %w", errors.New("failed to fetch")), apperr.NetworkHint},
		{"dns_error", &net.DNSError{Err: "no such host", Name: "db"}, apperr.NetworkHint},
		{"op_error", &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}, apperr.NetworkHint},
		{"app_error_uses_message", apperr.NotFound("Work"), "Work not found"},
		{"empty_message", errors.New(""), apperr.FallbackMessage},
		{"blank_message", errors.New("   "), apperr.FallbackMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, apperr.Message(tt.err))
		})
	}
}

/*
TestMessageFromText covers failures that only exist as strings.
*/
func TestMessageFromText(t *testing.T) {
	assert.Equal(t, apperr.FallbackMessage, apperr.MessageFromText(""))
	assert.Equal(t, apperr.NetworkHint, apperr.MessageFromText("Failed to fetch"))
	assert.Equal(t, "boom", apperr.MessageFromText("boom"))
}

/*
TestFromBackend verifies backend codes map to the right HTTP status.
*/
func TestFromBackend(t *testing.T) {
	tests := []struct {
		name       string
		code       string
		message    string
		wantStatus int
		wantMsg    string
	}{
		{"no_rows", apperr.CodeNoRows, "JSON object requested, multiple (or no) rows returned", http.StatusNotFound, "JSON object requested, multiple (or no) rows returned"},
		{"network", apperr.CodeNetwork, "Failed to fetch", http.StatusServiceUnavailable, apperr.NetworkHint},
		{"permission", apperr.CodePermissionDenied, "permission denied for table literature", http.StatusForbidden, "permission denied for table literature"},
		{"not_null", "23502", "null value in column \"title\"", http.StatusBadRequest, "null value in column \"title\""},
		{"unknown", "XX000", "internal", http.StatusInternalServerError, "An unexpected error occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("literature: list: %w", &codedError{code: tt.code, message: tt.message})
			appError := apperr.FromBackend(wrapped)
			require.NotNil(t, appError)
			assert.Equal(t, tt.wantStatus, appError.HTTPStatus)
			assert.Equal(t, tt.wantMsg, appError.Message, "caller wrapping stays out of the client message")
			assert.ErrorIs(t, appError, wrapped)
		})
	}

	assert.Nil(t, apperr.FromBackend(errors.New("plain")))
}

/*
TestAs checks extraction of AppError from a wrapped chain.
*/
func TestAs(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", apperr.Unauthorized("Authentication required"))

	assert.True(t, apperr.IsAppError(wrapped))
	require.NotNil(t, apperr.As(wrapped))
	assert.Equal(t, "UNAUTHORIZED", apperr.As(wrapped).Code)
	assert.Nil(t, apperr.As(errors.New("plain")))
}
