// Copyright (c) 2026 Shopdesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package category

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/taibuivan/shopdesk/internal/platform/ctxutil"
	"github.com/taibuivan/shopdesk/internal/platform/metrics"
	"github.com/taibuivan/shopdesk/internal/platform/notify"
	"github.com/taibuivan/shopdesk/pkg/slice"
)

// # Outcomes

// Outcome is how a reorder settled.
type Outcome string

const (
	// OutcomeConfirmed means every write succeeded; the optimistic tree stands.
	OutcomeConfirmed Outcome = metrics.OutcomeConfirmed

	// OutcomeReconciled means a write failed and the tree was replaced by a fresh fetch.
	OutcomeReconciled Outcome = metrics.OutcomeReconciled

	// OutcomeStale means a write failed and so did the fresh fetch. The tree
	// refuses reorders until a refresh succeeds.
	OutcomeStale Outcome = metrics.OutcomeStale

	// OutcomeNoop means the gesture changed nothing and nothing was sent.
	OutcomeNoop Outcome = metrics.OutcomeNoop
)

// Settlement is what [Coordinator.Persist] reports back.
type Settlement struct {
	Outcome Outcome

	// Page is the authoritative page when Outcome is OutcomeReconciled.
	Page *Page

	// Failed lists the nodes whose write failed.
	Failed []Node

	// Err joins the individual write errors, and the reconciliation error if any.
	Err error
}

// # Coordinator

// Coordinator persists a reorder as one position update per changed node.
//
// The catalog has no batch endpoint, so writes are dispatched concurrently and
// settle independently. There is no retry and no partial rollback: any
// failure hands authority back to the server through a full page re-fetch.
type Coordinator struct {
	repo      Repository
	notifier  notify.Notifier
	collector *metrics.Collector
}

// NewCoordinator constructs a [Coordinator]. A nil collector disables metrics.
func NewCoordinator(repo Repository, notifier notify.Notifier, collector *metrics.Collector) *Coordinator {
	return &Coordinator{
		repo:      repo,
		notifier:  notifier,
		collector: collector,
	}
}

/*
Persist writes the new position of every changed node and settles the batch.

Description: All writes are in flight before any is awaited. They run on a
context detached from the caller's cancellation, so a disconnecting client
cannot abandon half a batch. Failures never escape as errors; they select the
outcome instead.

Parameters:
  - ctx: context.Context (Values only; cancellation is ignored)
  - key: PageKey (The page to re-fetch on failure)
  - changed: []Node (Nodes carrying their new Position)

Returns:
  - Settlement: Confirmed, Reconciled with the fresh page, or Stale
*/
func (coordinator *Coordinator) Persist(ctx context.Context, key PageKey, changed []Node) Settlement {
	ctx = context.WithoutCancel(ctx)
	logger := ctxutil.GetLogger(ctx)
	startTime := time.Now()

	if len(changed) == 0 {
		coordinator.observe(OutcomeNoop, time.Time{})
		return Settlement{Outcome: OutcomeNoop}
	}

	// ── 1. Fan Out ────────────────────────────────────────────────────────
	var group errgroup.Group
	writeErrors := make([]error, len(changed))
	for index, node := range changed {
		group.Go(func() error {
			_, err := coordinator.repo.UpdateNode(ctx, node.ID, PositionPatch(node.Position))
			if err != nil {
				writeErrors[index] = fmt.Errorf("category %d (%s): %w", node.ID, node.Name, err)
			}
			coordinator.observeWrite(err)
			return err
		})
	}

	// ── 2. Fan In ─────────────────────────────────────────────────────────
	if group.Wait() == nil {
		logger.InfoContext(ctx, "category_reorder_confirmed",
			slog.Int("writes", len(changed)),
			slog.Duration("duration", time.Since(startTime)),
		)
		coordinator.notifier.Success(ctx, "Category order saved")
		coordinator.observe(OutcomeConfirmed, startTime)
		return Settlement{Outcome: OutcomeConfirmed}
	}

	var failed []Node
	for index, err := range writeErrors {
		if err != nil {
			failed = append(failed, changed[index])
		}
	}
	writeErr := errors.Join(writeErrors...)

	logger.WarnContext(ctx, "category_reorder_failed",
		slog.Int("writes", len(changed)),
		slog.Int("failed", len(failed)),
		slog.Any("error", writeErr),
	)
	coordinator.notifier.Error(ctx, "Could not save the new order for "+nodeNames(failed)+". Reloading categories.")

	// ── 3. Reconcile ──────────────────────────────────────────────────────
	page, err := coordinator.repo.FetchRootPage(ctx, key.Page, key.Limit)
	if err != nil {
		logger.ErrorContext(ctx, "category_reconcile_failed",
			slog.Int("page", key.Page),
			slog.Any("error", err),
		)
		coordinator.notifier.Error(ctx, "Could not reload categories. Refresh the tree before reordering again.")
		coordinator.observe(OutcomeStale, startTime)
		return Settlement{Outcome: OutcomeStale, Failed: failed, Err: errors.Join(writeErr, err)}
	}

	logger.InfoContext(ctx, "category_reorder_reconciled",
		slog.Int("page", key.Page),
		slog.Int("roots", len(page.Roots)),
	)
	coordinator.observe(OutcomeReconciled, startTime)
	return Settlement{Outcome: OutcomeReconciled, Page: &page, Failed: failed, Err: writeErr}
}

func (coordinator *Coordinator) observe(outcome Outcome, started time.Time) {
	if coordinator.collector != nil {
		coordinator.collector.ObserveReorder(string(outcome), started)
	}
}

func (coordinator *Coordinator) observeWrite(err error) {
	if coordinator.collector == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "failed"
	}
	coordinator.collector.ReorderWrites.WithLabelValues(result).Inc()
}

// nodeNames renders "Bags, Hats" for notifications.
func nodeNames(nodes []Node) string {
	return strings.Join(slice.Map(nodes, func(node Node) string { return node.Name }), ", ")
}
