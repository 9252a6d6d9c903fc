// Copyright (c) 2026 Shopdesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package category

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/taibuivan/shopdesk/internal/platform/constants"
	"github.com/taibuivan/shopdesk/internal/platform/metrics"
	"github.com/taibuivan/shopdesk/internal/platform/notify"
)

type treeKey struct {
	operatorID string
	page       PageKey
}

// TreeRegistry owns one [TreeViewModel] per operator and page.
//
// Trees never share state, so two operators (or two pages) cannot block each
// other's reorders. Idle trees are evicted by [TreeRegistry.Run].
type TreeRegistry struct {
	mu    sync.Mutex
	trees map[treeKey]*TreeViewModel

	repo      Repository
	hub       *notify.Hub
	collector *metrics.Collector
	idleTTL   time.Duration
	logger    *slog.Logger
}

// NewTreeRegistry constructs an empty registry.
func NewTreeRegistry(repo Repository, hub *notify.Hub, collector *metrics.Collector, idleTTL time.Duration, logger *slog.Logger) *TreeRegistry {
	return &TreeRegistry{
		trees:     make(map[treeKey]*TreeViewModel),
		repo:      repo,
		hub:       hub,
		collector: collector,
		idleTTL:   idleTTL,
		logger:    logger,
	}
}

// Get returns the operator's tree for a page, creating an unloaded one on first use.
func (registry *TreeRegistry) Get(operatorID string, page PageKey) *TreeViewModel {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	key := treeKey{operatorID: operatorID, page: page}
	tree, ok := registry.trees[key]
	if !ok {
		coordinator := NewCoordinator(registry.repo, registry.hub.For(operatorID), registry.collector)
		tree = NewTreeViewModel(registry.repo, coordinator, registry.collector, page)
		registry.trees[key] = tree
	}
	return tree
}

// ForOperator returns every tree the operator currently holds.
func (registry *TreeRegistry) ForOperator(operatorID string) []*TreeViewModel {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	var trees []*TreeViewModel
	for key, tree := range registry.trees {
		if key.operatorID == operatorID {
			trees = append(trees, tree)
		}
	}
	return trees
}

// MarkStaleExcept marks every tree not held by operatorID stale and returns
// how many it marked.
func (registry *TreeRegistry) MarkStaleExcept(operatorID string) int {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	marked := 0
	for key, tree := range registry.trees {
		if key.operatorID != operatorID {
			tree.MarkStale()
			marked++
		}
	}
	return marked
}

// Len reports how many trees are held.
func (registry *TreeRegistry) Len() int {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	return len(registry.trees)
}

// Sweep evicts trees idle since before now minus the idle TTL. Busy trees
// are kept so their settlement is not lost.
func (registry *TreeRegistry) Sweep(now time.Time) int {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	evicted := 0
	for key, tree := range registry.trees {
		if now.Sub(tree.IdleSince()) > registry.idleTTL && !tree.Busy() {
			delete(registry.trees, key)
			evicted++
		}
	}
	return evicted
}

// Run sweeps idle trees until ctx is done.
func (registry *TreeRegistry) Run(ctx context.Context) {
	ticker := time.NewTicker(constants.TreeSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			if evicted := registry.Sweep(now); evicted > 0 {
				registry.logger.Debug("category_trees_evicted", slog.Int("count", evicted))
			}
		case <-ctx.Done():
			return
		}
	}
}
