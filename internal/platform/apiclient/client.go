// Copyright (c) 2026 Shopdesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package apiclient is the admin server's HTTP client for the catalog REST API.

It speaks the same JSON envelopes that [respond] writes: successful payloads
arrive under "data" (plus "meta" for paged lists) and failures arrive as
{error, code, details}. Every failure is returned as an [*apperr.AppError]:

  - Remote errors keep the remote HTTP status and code.
  - Transport, throttling, and decoding failures become 502 UPSTREAM_UNAVAILABLE.

The operator's bearer token and request ID are read from the context and
forwarded on every call. Outbound traffic is throttled by a token bucket so a
large reorder batch cannot flood the catalog. There is no retry.
*/
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/taibuivan/shopdesk/internal/platform/apperr"
	"github.com/taibuivan/shopdesk/internal/platform/constants"
	"github.com/taibuivan/shopdesk/internal/platform/ctxutil"
	"github.com/taibuivan/shopdesk/internal/platform/metrics"
	"github.com/taibuivan/shopdesk/internal/platform/respond"
	"github.com/taibuivan/shopdesk/pkg/pagination"
)

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 4 << 20

// Config holds the connection settings for the catalog API.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	RateRPS   float64
	RateBurst int
}

// Client issues JSON requests against the catalog API.
//
// It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	collector  *metrics.Collector
}

// New creates a [Client]. A nil collector disables upstream metrics.
func New(cfg Config, collector *metrics.Collector) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RateRPS), cfg.RateBurst),
		collector:  collector,
	}
}

// envelope mirrors [respond.PaginatedEnvelope] on the decoding side.
type envelope struct {
	Data json.RawMessage  `json:"data"`
	Meta *pagination.Meta `json:"meta"`
}

// # Verbs

// Get fetches path and decodes the "data" member into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	_, err := c.do(ctx, http.MethodGet, path, query, nil, out)
	return err
}

// GetPage is [Client.Get] for paged listings; it also returns the "meta" block.
func (c *Client) GetPage(ctx context.Context, path string, query url.Values, out any) (pagination.Meta, error) {
	meta, err := c.do(ctx, http.MethodGet, path, query, nil, out)
	if err != nil {
		return pagination.Meta{}, err
	}
	if meta == nil {
		return pagination.Meta{}, apperr.BadGateway(fmt.Errorf("apiclient: GET %s: response has no meta block", path))
	}
	return *meta, nil
}

// Post sends body as JSON and decodes the "data" member into out.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	_, err := c.do(ctx, http.MethodPost, path, nil, body, out)
	return err
}

// Patch sends a partial update and decodes the "data" member into out.
func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	_, err := c.do(ctx, http.MethodPatch, path, nil, body, out)
	return err
}

// Delete removes the resource at path.
func (c *Client) Delete(ctx context.Context, path string) error {
	_, err := c.do(ctx, http.MethodDelete, path, nil, nil, nil)
	return err
}

// # Transport

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) (*pagination.Meta, error) {
	logger := ctxutil.GetLogger(ctx)
	startTime := time.Now()

	// ── 1. Throttle ───────────────────────────────────────────────────────
	if err := c.limiter.Wait(ctx); err != nil {
		c.observe(method, "throttled")
		return nil, apperr.BadGateway(fmt.Errorf("apiclient: %s %s: rate limiter: %w", method, path, err))
	}

	// ── 2. Build Request ──────────────────────────────────────────────────
	request, err := c.newRequest(ctx, method, path, query, body)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	// ── 3. Execute ────────────────────────────────────────────────────────
	response, err := c.httpClient.Do(request)
	if err != nil {
		c.observe(method, "error")
		logger.WarnContext(ctx, "catalog_api_unreachable",
			slog.String("method", method),
			slog.String("path", path),
			slog.Any("error", err),
		)
		return nil, apperr.BadGateway(fmt.Errorf("apiclient: %s %s: %w", method, path, err))
	}
	defer response.Body.Close()

	c.observe(method, statusClass(response.StatusCode))

	payload, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBytes))
	if err != nil {
		return nil, apperr.BadGateway(fmt.Errorf("apiclient: %s %s: read body: %w", method, path, err))
	}

	logger.DebugContext(ctx, "catalog_api_call",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", response.StatusCode),
		slog.Duration("duration", time.Since(startTime)),
	)

	// ── 4. Decode ─────────────────────────────────────────────────────────
	if response.StatusCode >= http.StatusBadRequest {
		return nil, decodeError(response.StatusCode, payload)
	}

	if out == nil || response.StatusCode == http.StatusNoContent || len(payload) == 0 {
		return nil, nil
	}

	var decoded envelope
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return nil, apperr.BadGateway(fmt.Errorf("apiclient: %s %s: decode envelope: %w", method, path, err))
	}
	if err := json.Unmarshal(decoded.Data, out); err != nil {
		return nil, apperr.BadGateway(fmt.Errorf("apiclient: %s %s: decode data: %w", method, path, err))
	}

	return decoded.Meta, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body any) (*http.Request, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("apiclient: marshal %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("apiclient: build %s %s: %w", method, path, err)
	}

	request.Header.Set("Accept", "application/json")
	if body != nil {
		request.Header.Set(constants.HeaderContentType, constants.ContentTypeJSON)
	}
	if token := ctxutil.GetAccessToken(ctx); token != "" {
		request.Header.Set(constants.HeaderAuthorization, constants.BearerPrefix+token)
	}
	if requestID := ctxutil.GetRequestID(ctx); requestID != "" {
		request.Header.Set(constants.HeaderXRequestID, requestID)
	}

	return request, nil
}

// decodeError rebuilds the remote error. Bodies that are not an error
// envelope still yield an error carrying the remote status.
func decodeError(status int, payload []byte) *apperr.AppError {
	var remote respond.ErrorEnvelope
	_ = json.Unmarshal(payload, &remote)
	return apperr.FromResponse(status, remote.Code, remote.Error, remote.Details)
}

func (c *Client) observe(method, status string) {
	if c.collector == nil {
		return
	}
	c.collector.UpstreamCalls.WithLabelValues(method, status).Inc()
}

func statusClass(code int) string {
	return fmt.Sprintf("%dxx", code/100)
}
