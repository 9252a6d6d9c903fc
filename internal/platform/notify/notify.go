// Copyright (c) 2026 Shopdesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package notify carries operator-facing notifications (success and error toasts).

The admin SPA polls its feed and renders each entry as a toast; presentation
is not this package's concern. Each operator owns one bounded [Feed]; when it
overflows, the oldest entry is dropped.
*/
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/taibuivan/shopdesk/internal/platform/ctxutil"
	"github.com/taibuivan/shopdesk/pkg/uuid"
)

// Level classifies a notification for presentation.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notification is a single toast-ready message.
type Notification struct {
	ID        string    `json:"id"`
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Notifier is the sink the category workflow reports outcomes to.
type Notifier interface {
	Success(ctx context.Context, message string)
	Error(ctx context.Context, message string)
}

// # Feed

// Feed is a bounded FIFO of undelivered notifications. It is safe for concurrent use.
type Feed struct {
	mu       sync.Mutex
	capacity int
	items    []Notification
}

// NewFeed creates a feed holding at most capacity notifications.
func NewFeed(capacity int) *Feed {
	if capacity < 1 {
		capacity = 1
	}
	return &Feed{capacity: capacity}
}

// Success enqueues a success notification.
func (f *Feed) Success(ctx context.Context, message string) {
	f.push(ctx, LevelSuccess, message)
}

// Error enqueues an error notification.
func (f *Feed) Error(ctx context.Context, message string) {
	f.push(ctx, LevelError, message)
}

// Drain returns every pending notification, oldest first, and empties the feed.
func (f *Feed) Drain() []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()

	drained := f.items
	f.items = nil
	if drained == nil {
		return []Notification{}
	}
	return drained
}

// Len reports the number of pending notifications.
func (f *Feed) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}

func (f *Feed) push(ctx context.Context, level Level, message string) {
	entry := Notification{
		ID:        uuid.New(),
		Level:     level,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}

	f.mu.Lock()
	if len(f.items) == f.capacity {
		f.items = f.items[1:]
	}
	f.items = append(f.items, entry)
	f.mu.Unlock()

	ctxutil.GetLogger(ctx).InfoContext(ctx, "operator_notified",
		slog.String("level", string(level)),
		slog.String("message", message),
	)
}

// # Hub

// Hub owns one [Feed] per operator.
type Hub struct {
	mu       sync.Mutex
	capacity int
	feeds    map[string]*Feed
}

// NewHub creates a hub whose feeds hold at most capacity entries each.
func NewHub(capacity int) *Hub {
	return &Hub{capacity: capacity, feeds: make(map[string]*Feed)}
}

// For returns the operator's feed, creating it on first use.
func (h *Hub) For(operatorID string) *Feed {
	h.mu.Lock()
	defer h.mu.Unlock()

	feed, ok := h.feeds[operatorID]
	if !ok {
		feed = NewFeed(h.capacity)
		h.feeds[operatorID] = feed
	}
	return feed
}
