// Copyright (c) 2026 Narratives. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ctxutil_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/narratives/internal/platform/ctxutil"
	"github.com/taibuivan/narratives/internal/platform/sec"
)

/*
TestContext_RequestID verifies that Request IDs can be injected and retrieved.
*/
func TestContext_RequestID(t *testing.T) {
	ctx := context.Background()
	requestID := "test-request-id"

	// 1. Initially should be empty
	assert.Empty(t, ctxutil.GetRequestID(ctx))

	// 2. Inject and retrieve
	ctx = ctxutil.WithRequestID(ctx, requestID)
	assert.Equal(t, requestID, ctxutil.GetRequestID(ctx))
}

/*
TestContext_Logger verifies that a custom logger can be stored in context.
*/
func TestContext_Logger(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// 1. Initially should return the default logger
	assert.Equal(t, slog.Default(), ctxutil.GetLogger(ctx))

	// 2. Inject and retrieve
	ctx = ctxutil.WithLogger(ctx, logger)
	assert.Equal(t, logger, ctxutil.GetLogger(ctx))
}

/*
TestContext_SessionClaims verifies that session claims can be stored in context.
*/
func TestContext_SessionClaims(t *testing.T) {
	ctx := context.Background()
	claims := &sec.AuthClaims{
		SessionID: "session-1",
		UserID:    "user-123",
		Email:     "writer@example.com",
	}

	// 1. Initially should be nil
	assert.Nil(t, ctxutil.GetSessionClaims(ctx))

	// 2. Inject and retrieve
	ctx = ctxutil.WithSessionClaims(ctx, claims)
	retrieved := ctxutil.GetSessionClaims(ctx)

	assert.NotNil(t, retrieved)
	assert.Equal(t, "user-123", retrieved.UserID)
	assert.Equal(t, "session-1", retrieved.SessionID)
}

/*
TestContext_AccessToken verifies the raw token round trip.
*/
func TestContext_AccessToken(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, ctxutil.GetAccessToken(ctx))

	ctx = ctxutil.WithAccessToken(ctx, "token")
	assert.Equal(t, "token", ctxutil.GetAccessToken(ctx))
}
