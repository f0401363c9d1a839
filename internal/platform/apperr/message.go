// Copyright (c) 2026 Narratives. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package apperr

import (
	"errors"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	// NetworkHint replaces any connectivity failure shown to a reader.
	NetworkHint = "A network error occurred. Please check your internet connection. Ad-blockers can sometimes interfere as well."

	// FallbackMessage is shown when a failure carries no text of its own.
	FallbackMessage = "An unexpected error occurred. Please check the console for more details."
)

// networkPatterns are lowercase fragments that identify transport failures
// reported as plain text.
var networkPatterns = []string{"load failed", "failed to fetch"}

// Message converts any failure into the single string shown to users.
//
// Backend messages pass through unchanged. Connectivity failures, whether
// recognized by type or by text, become [NetworkHint]. A nil error yields "".
func Message(err error) string {
	if err == nil {
		return ""
	}

	if isNetworkError(err) {
		return NetworkHint
	}

	text := err.Error()
	var appError *AppError
	if errors.As(err, &appError) {
		text = appError.Message
	}

	lower := strings.ToLower(text)
	for _, pattern := range networkPatterns {
		if strings.Contains(lower, pattern) {
			return NetworkHint
		}
	}

	if strings.TrimSpace(text) == "" {
		return FallbackMessage
	}
	return text
}

// MessageFromText normalizes a failure that only exists as a string.
func MessageFromText(text string) string {
	if text == "" {
		return FallbackMessage
	}
	return Message(errors.New(text))
}

func isNetworkError(err error) bool {
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}
