package gateway

import (
	"context"
	"errors"
	"net"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taibuivan/narratives/internal/platform/apperr"
)

// Error is the structured failure returned by every gateway call.
//
// Message carries the backend's own text so callers can show it unchanged.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
	Hint    string `json:"hint,omitempty"`

	cause error
}

// Error returns the backend message.
func (e *Error) Error() string { return e.Message }

// ErrorCode exposes the backend code to [apperr.FromBackend].
func (e *Error) ErrorCode() string { return e.Code }

// Unwrap returns the driver error, if any.
func (e *Error) Unwrap() error { return e.cause }

// Messages the gateway reports for its own failure classes.
const (
	MessageNetwork = "Failed to fetch"
	MessageNoRows  = "JSON object requested, multiple (or no) rows returned"
)

// ErrMissingFilter guards against unscoped UPDATE and DELETE statements.
var ErrMissingFilter = &Error{Code: "21000", Message: "UPDATE and DELETE require a filter"}

// IsNotFound reports whether err is a single-row lookup that matched nothing.
func IsNotFound(err error) bool {
	var gatewayErr *Error
	return errors.As(err, &gatewayErr) && gatewayErr.Code == apperr.CodeNoRows
}

// wrap classifies a driver error into a [*Error].
func wrap(err error) error {
	if err == nil {
		return nil
	}

	var gatewayErr *Error
	if errors.As(err, &gatewayErr) {
		return gatewayErr
	}

	// 1. Errors raised by PostgreSQL itself keep their message and SQLSTATE
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return &Error{
			Code:    pgErr.Code,
			Message: pgErr.Message,
			Details: pgErr.Detail,
			Hint:    pgErr.Hint,
			cause:   err,
		}
	}

	// 2. Empty single-row lookups
	if errors.Is(err, pgx.ErrNoRows) {
		return &Error{Code: apperr.CodeNoRows, Message: MessageNoRows, Details: "The result contains 0 rows", cause: err}
	}

	// 3. Anything that never reached the database
	if isTransportError(err) {
		return &Error{Code: apperr.CodeNetwork, Message: MessageNetwork, Details: err.Error(), cause: err}
	}

	return &Error{Message: err.Error(), cause: err}
}

func isTransportError(err error) bool {
	if pgconn.Timeout(err) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	// pgxpool reports a closed pool with a plain error
	return err.Error() == "closed pool"
}
