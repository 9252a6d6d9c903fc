// Copyright (c) 2026 Shopdesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/shopdesk/internal/platform/apperr"
)

/*
TestFromResponse verifies that upstream envelopes keep their status and code.
*/
func TestFromResponse(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		code        string
		message     string
		wantCode    string
		wantMessage string
	}{
		{"full_envelope", http.StatusNotFound, "NOT_FOUND", "Category not found", "NOT_FOUND", "Category not found"},
		{"missing_code", http.StatusBadRequest, "", "bad sort", "BAD_REQUEST", "bad sort"},
		{"missing_everything", http.StatusServiceUnavailable, "", "", "SERVICE_UNAVAILABLE", "Service Unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ae := apperr.FromResponse(tt.status, tt.code, tt.message, nil)
			assert.Equal(t, tt.status, ae.HTTPStatus)
			assert.Equal(t, tt.wantCode, ae.Code)
			assert.Equal(t, tt.wantMessage, ae.Message)
		})
	}
}

/*
TestAs_WrappedChain verifies extraction through fmt.Errorf wrapping.
*/
func TestAs_WrappedChain(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	wrapped := fmt.Errorf("update category 7: %w", apperr.BadGateway(cause))

	ae := apperr.As(wrapped)
	require.NotNil(t, ae)
	assert.Equal(t, http.StatusBadGateway, ae.HTTPStatus)
	assert.ErrorIs(t, wrapped, cause)
	assert.True(t, apperr.IsAppError(wrapped))

	assert.Nil(t, apperr.As(cause))
}

/*
TestHasCode verifies code matching through wrapping.
*/
func TestHasCode(t *testing.T) {
	inFlight := apperr.New(http.StatusConflict, "REORDER_IN_FLIGHT", "busy")
	wrapped := fmt.Errorf("reorder: %w", inFlight)

	assert.True(t, apperr.HasCode(wrapped, "REORDER_IN_FLIGHT"))
	assert.False(t, apperr.HasCode(wrapped, apperr.CodeConflict))
	assert.False(t, apperr.HasCode(errors.New("plain"), apperr.CodeInternal))
	assert.Equal(t, apperr.CodeValidation, apperr.ValidationError("bad").Code)
}
