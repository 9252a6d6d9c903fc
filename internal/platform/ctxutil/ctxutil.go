// Copyright (c) 2026 Shopdesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package ctxutil reads and writes the request-scoped values the HTTP layer
// places in a [context.Context]: request ID, logger and operator identity.
//
// Values survive [context.WithoutCancel], so background persistence started
// from a request still logs under that request's ID and calls the catalog
// with the operator's token.
package ctxutil

import (
	"context"
	"log/slog"

	"github.com/taibuivan/shopdesk/internal/platform/ctxkey"
	"github.com/taibuivan/shopdesk/internal/platform/sec"
)

// # Tracing

// WithRequestID attaches the correlation ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxkey.KeyRequestID, id)
}

// GetRequestID returns the correlation ID, or "" outside a request.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxkey.KeyRequestID).(string)
	return id
}

// WithLogger attaches the request-scoped logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxkey.KeyLogger, logger)
}

// GetLogger returns the request-scoped logger, falling back to [slog.Default].
func GetLogger(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(ctxkey.KeyLogger).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return slog.Default()
}

// # Operator

// WithOperator attaches verified claims together with the bearer token they came from.
func WithOperator(ctx context.Context, claims *sec.AuthClaims, token string) context.Context {
	return WithAccessToken(WithAuthUser(ctx, claims), token)
}

// WithAuthUser attaches verified claims.
func WithAuthUser(ctx context.Context, user *sec.AuthClaims) context.Context {
	return context.WithValue(ctx, ctxkey.KeyUser, user)
}

// GetAuthUser returns the verified claims, or nil for anonymous requests.
func GetAuthUser(ctx context.Context) *sec.AuthClaims {
	claims, _ := ctx.Value(ctxkey.KeyUser).(*sec.AuthClaims)
	return claims
}

// OperatorID returns the authenticated operator's ID, or "".
func OperatorID(ctx context.Context) string {
	if claims := GetAuthUser(ctx); claims != nil {
		return claims.UserID
	}
	return ""
}

// WithAccessToken attaches the raw bearer token forwarded to the catalog.
func WithAccessToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, ctxkey.KeyAccessToken, token)
}

// GetAccessToken returns the raw bearer token, or "" for anonymous calls.
func GetAccessToken(ctx context.Context) string {
	token, _ := ctx.Value(ctxkey.KeyAccessToken).(string)
	return token
}
