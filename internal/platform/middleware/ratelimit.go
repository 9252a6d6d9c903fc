// Copyright (c) 2026 Shopdesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/taibuivan/shopdesk/internal/platform/constants"
)

// # Rate Limiting

// retryAfterSeconds is the wait hint on 429; a token refills well within it.
const retryAfterSeconds = "1"

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// visitorTable is a token bucket per client IP. It is safe for concurrent use.
type visitorTable struct {
	mu       sync.Mutex
	visitors map[string]*visitor
}

func (table *visitorTable) allow(ip string, now time.Time) bool {
	table.mu.Lock()
	defer table.mu.Unlock()

	entry, found := table.visitors[ip]
	if !found {
		entry = &visitor{limiter: rate.NewLimiter(rate.Limit(constants.DefaultRateLimitRPS), constants.DefaultRateLimitBurst)}
		table.visitors[ip] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}

func (table *visitorTable) evictIdle(now time.Time) {
	table.mu.Lock()
	defer table.mu.Unlock()

	for ip, entry := range table.visitors {
		if now.Sub(entry.lastSeen) > constants.RateLimitClientTTL {
			delete(table.visitors, ip)
		}
	}
}

// RateLimit limits requests per client IP with a token bucket.
//
// Each call owns its own table; the janitor goroutine stops when context is done.
// Rejected requests get 429 with a Retry-After hint.
func RateLimit(context context.Context) func(http.Handler) http.Handler {
	table := &visitorTable{visitors: make(map[string]*visitor)}
	go sweepVisitors(context, table)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if !table.allow(RealIP(request), time.Now()) {
				writer.Header().Set(constants.HeaderRetryAfter, retryAfterSeconds)
				writeError(writer, http.StatusTooManyRequests, "TOO_MANY_REQUESTS", "Rate limit exceeded")
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

func sweepVisitors(context context.Context, table *visitorTable) {
	ticker := time.NewTicker(constants.RateLimitCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			table.evictIdle(now)
		case <-context.Done():
			return
		}
	}
}
