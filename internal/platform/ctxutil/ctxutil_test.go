// Copyright (c) 2026 Shopdesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ctxutil_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/shopdesk/internal/platform/ctxutil"
	"github.com/taibuivan/shopdesk/internal/platform/sec"
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
TestContext_AuthUser verifies that AuthClaims can be stored in context.
*/
func TestContext_AuthUser(t *testing.T) {
	ctx := context.Background()
	claims := &sec.AuthClaims{
		UserID: "operator-123",
		Role:   "admin",
	}

	// 1. Initially should be nil
	assert.Nil(t, ctxutil.GetAuthUser(ctx))

	// 2. Inject and retrieve
	ctx = ctxutil.WithAuthUser(ctx, claims)
	retrieved := ctxutil.GetAuthUser(ctx)

	assert.NotNil(t, retrieved)
	assert.Equal(t, "operator-123", retrieved.UserID)
	assert.Equal(t, "admin", retrieved.Role)
}

/*
TestContext_AccessToken verifies that the raw bearer token travels with the context.
*/
func TestContext_AccessToken(t *testing.T) {
	ctx := context.Background()

	// 1. Anonymous requests carry no token
	assert.Empty(t, ctxutil.GetAccessToken(ctx))

	// 2. Inject and retrieve
	ctx = ctxutil.WithAccessToken(ctx, "eyJhbGciOiJSUzI1NiJ9.payload.sig")
	assert.Equal(t, "eyJhbGciOiJSUzI1NiJ9.payload.sig", ctxutil.GetAccessToken(ctx))
}

/*
TestContext_Operator verifies that claims and token are attached together.
*/
func TestContext_Operator(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, ctxutil.OperatorID(ctx))

	ctx = ctxutil.WithOperator(ctx, &sec.AuthClaims{UserID: "alice", Role: "editor"}, "tok-1")

	assert.Equal(t, "alice", ctxutil.OperatorID(ctx))
	assert.Equal(t, "tok-1", ctxutil.GetAccessToken(ctx))

	detached := context.WithoutCancel(ctx)
	assert.Equal(t, "alice", ctxutil.OperatorID(detached), "values survive detaching")
}

/*
TestContext_NilLogger verifies that a nil logger falls back to the default.
*/
func TestContext_NilLogger(t *testing.T) {
	ctx := ctxutil.WithLogger(context.Background(), nil)
	assert.Equal(t, slog.Default(), ctxutil.GetLogger(ctx))
}
