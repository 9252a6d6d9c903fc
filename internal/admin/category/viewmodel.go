// Copyright (c) 2026 Shopdesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package category

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/taibuivan/shopdesk/internal/platform/apperr"
	"github.com/taibuivan/shopdesk/internal/platform/ctxutil"
	"github.com/taibuivan/shopdesk/internal/platform/metrics"
	"github.com/taibuivan/shopdesk/pkg/pagination"
	"github.com/taibuivan/shopdesk/pkg/slice"
)

// # Errors

var (
	// ErrReorderInFlight rejects a reorder while the previous one is still persisting.
	ErrReorderInFlight = apperr.New(http.StatusConflict, "REORDER_IN_FLIGHT", "The previous reorder is still being saved")

	// ErrTreeLoading rejects reorders and refreshes while a fetch is running.
	ErrTreeLoading = apperr.New(http.StatusConflict, "TREE_LOADING", "The category tree is loading")

	// ErrTreeStale rejects reorders until the tree has been fetched successfully.
	ErrTreeStale = apperr.New(http.StatusConflict, "TREE_STALE", "The category tree is out of date; refresh it before reordering")
)

// # Snapshot

// Snapshot is a copy of the tree state for presentation.
type Snapshot struct {
	Roots []Node          `json:"roots"`
	Busy  bool            `json:"busy"`
	Stale bool            `json:"stale"`
	Meta  pagination.Meta `json:"meta"`
}

// # Pending

// Pending is a reorder whose persistence has not necessarily settled yet.
type Pending struct {
	done       chan struct{}
	settlement Settlement
}

func newPending() *Pending {
	return &Pending{done: make(chan struct{})}
}

func settledPending(outcome Outcome) *Pending {
	pending := newPending()
	pending.resolve(Settlement{Outcome: outcome})
	return pending
}

func (pending *Pending) resolve(settlement Settlement) {
	pending.settlement = settlement
	close(pending.done)
}

// Done is closed once the reorder has settled and the tree reflects it.
func (pending *Pending) Done() <-chan struct{} {
	return pending.done
}

// Wait blocks until the reorder settles or ctx is done. Cancelling ctx stops
// the wait only; the writes keep running.
func (pending *Pending) Wait(ctx context.Context) (Settlement, error) {
	select {
	case <-pending.done:
		return pending.settlement, nil
	case <-ctx.Done():
		return Settlement{}, ctx.Err()
	}
}

// # View Model

/*
TreeViewModel owns the category tree of one page for one operator.

# State Machine

	Idle → Reordering → Persisting → Idle (confirmed)
	                             └→ Reconciling → Idle (reconciled | stale)

The mutex plays the part of a single UI thread: every tree mutation happens
under it and no network call does. reorderInFlight serializes reorders
tree-wide; a second gesture while it is set is rejected, never queued.
*/
type TreeViewModel struct {
	mu sync.Mutex

	repo        Repository
	coordinator *Coordinator
	collector   *metrics.Collector
	key         PageKey

	roots           []Node
	meta            pagination.Meta
	loaded          bool
	loading         bool
	stale           bool
	reorderInFlight bool
	lastUsed        time.Time
}

// NewTreeViewModel constructs an unloaded tree for one page. A nil collector disables metrics.
func NewTreeViewModel(repo Repository, coordinator *Coordinator, collector *metrics.Collector, key PageKey) *TreeViewModel {
	return &TreeViewModel{
		repo:        repo,
		coordinator: coordinator,
		collector:   collector,
		key:         key,
		lastUsed:    time.Now(),
	}
}

// Key returns the page this tree shows.
func (vm *TreeViewModel) Key() PageKey {
	return vm.key
}

// # Loading

// Load fetches the page unless it is already loaded and current. A stale
// tree with a reorder in flight is served as is until the reorder settles.
func (vm *TreeViewModel) Load(ctx context.Context) error {
	vm.mu.Lock()
	current := vm.loaded && (!vm.stale || vm.reorderInFlight)
	vm.mu.Unlock()

	if current {
		return nil
	}
	return vm.Refresh(ctx)
}

// Refresh replaces the tree with an authoritative fetch. A successful refresh
// clears the stale flag.
func (vm *TreeViewModel) Refresh(ctx context.Context) error {
	vm.mu.Lock()
	switch {
	case vm.reorderInFlight:
		vm.mu.Unlock()
		return ErrReorderInFlight
	case vm.loading:
		vm.mu.Unlock()
		return ErrTreeLoading
	}
	vm.loading = true
	vm.touch()
	vm.mu.Unlock()

	page, err := vm.repo.FetchRootPage(ctx, vm.key.Page, vm.key.Limit)

	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.loading = false

	if err != nil {
		return err
	}
	vm.apply(page)
	return nil
}

// # Reordering

/*
DragEnd handles the end of a drag gesture.

Description: The new order is applied to the tree before any network call,
then persisted in the background. A gesture that changes nothing, or names a
scope the tree does not contain, settles immediately as a no-op.

Returns:
  - *Pending: Resolves once the tree reflects the settled outcome
  - error: ErrReorderInFlight, ErrTreeLoading, or ErrTreeStale
*/
func (vm *TreeViewModel) DragEnd(ctx context.Context, instruction MoveInstruction) (*Pending, error) {
	vm.mu.Lock()
	vm.touch()

	switch {
	case vm.reorderInFlight:
		vm.mu.Unlock()
		vm.observe(metrics.OutcomeRejected)
		return nil, ErrReorderInFlight
	case vm.loading:
		vm.mu.Unlock()
		vm.observe(metrics.OutcomeRejected)
		return nil, ErrTreeLoading
	case vm.stale || !vm.loaded:
		vm.mu.Unlock()
		vm.observe(metrics.OutcomeRejected)
		return nil, ErrTreeStale
	}

	siblings, ok := vm.siblings(instruction.Scope)
	if !ok {
		vm.mu.Unlock()
		vm.observe(metrics.OutcomeNoop)
		return settledPending(OutcomeNoop), nil
	}

	// Roots are paged, so positions on page n continue after page n-1.
	instruction.Offset = 0
	if instruction.Scope.IsRoot() {
		instruction.Offset = vm.key.Offset()
	}

	result := Move(siblings, instruction)
	if result.NoOp() {
		vm.mu.Unlock()
		vm.observe(metrics.OutcomeNoop)
		return settledPending(OutcomeNoop), nil
	}

	vm.replaceScope(instruction.Scope, result.Nodes)
	vm.reorderInFlight = true
	key := vm.key
	vm.mu.Unlock()

	ctxutil.GetLogger(ctx).InfoContext(ctx, "category_reorder_started",
		slog.String("scope", instruction.Scope.String()),
		slog.Int("source", instruction.Source),
		slog.Int("destination", *instruction.Destination),
		slog.Int("changed", len(result.Changed)),
	)

	pending := newPending()
	go func() {
		settlement := vm.coordinator.Persist(ctx, key, result.Changed)
		vm.settle(settlement)
		pending.resolve(settlement)
	}()

	return pending, nil
}

// settle applies a settlement and reopens the tree for reorders.
func (vm *TreeViewModel) settle(settlement Settlement) {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	switch settlement.Outcome {
	case OutcomeReconciled:
		vm.apply(*settlement.Page)
	case OutcomeStale:
		vm.stale = true
	}
	vm.reorderInFlight = false
}

// MarkStale makes the next [TreeViewModel.Load] refetch. Reorders are refused
// until then; the service loads before every reorder, so callers never see it.
func (vm *TreeViewModel) MarkStale() {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.loaded {
		vm.stale = true
	}
}

// # Queries

// Snapshot returns a deep copy of the tree state.
func (vm *TreeViewModel) Snapshot() Snapshot {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	return Snapshot{
		Roots: cloneNodes(vm.roots),
		Busy:  vm.reorderInFlight,
		Stale: vm.stale,
		Meta:  vm.meta,
	}
}

// Busy reports whether a reorder is persisting.
func (vm *TreeViewModel) Busy() bool {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.reorderInFlight
}

// ChildScopes lists the scopes of every root that has children, in display order.
func (vm *TreeViewModel) ChildScopes() []Scope {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	parents := slice.Filter(vm.roots, func(root Node) bool { return len(root.Children) > 0 })
	return slice.Map(parents, func(root Node) Scope { return ChildScope(root.ID) })
}

// IdleSince reports when the tree was last used.
func (vm *TreeViewModel) IdleSince() time.Time {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.lastUsed
}

// # Internals (callers hold vm.mu)

func (vm *TreeViewModel) apply(page Page) {
	vm.roots = cloneNodes(page.Roots)
	vm.meta = page.Meta
	vm.loaded = true
	vm.stale = false
}

func (vm *TreeViewModel) touch() {
	vm.lastUsed = time.Now()
}

// siblings returns the list of a scope. A child scope exists only if its
// parent is a root on this page.
func (vm *TreeViewModel) siblings(scope Scope) ([]Node, bool) {
	if scope.IsRoot() {
		return vm.roots, true
	}
	for _, root := range vm.roots {
		if root.ID == scope.ParentID {
			return root.Children, true
		}
	}
	return nil, false
}

// replaceScope swaps one scope's list, leaving every other scope untouched.
func (vm *TreeViewModel) replaceScope(scope Scope, nodes []Node) {
	if scope.IsRoot() {
		vm.roots = nodes
		return
	}

	roots := make([]Node, len(vm.roots))
	copy(roots, vm.roots)
	for index := range roots {
		if roots[index].ID == scope.ParentID {
			roots[index].Children = nodes
		}
	}
	vm.roots = roots
}

func (vm *TreeViewModel) observe(outcome string) {
	if vm.collector != nil {
		vm.collector.ObserveReorder(outcome, time.Time{})
	}
}

func cloneNodes(nodes []Node) []Node {
	if nodes == nil {
		return []Node{}
	}
	cloned := make([]Node, len(nodes))
	for index, node := range nodes {
		cloned[index] = node
		if node.Children != nil {
			cloned[index].Children = cloneNodes(node.Children)
		}
	}
	return cloned
}
