// Copyright (c) 2026 Shopdesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package category

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/taibuivan/shopdesk/internal/platform/apperr"
	"github.com/taibuivan/shopdesk/internal/platform/notify"
	"github.com/taibuivan/shopdesk/pkg/pagination"
)

var errUpstream = apperr.BadGateway(errors.New("connection reset"))

type updateCall struct {
	ID    int64
	Patch Patch
}

// fakeRepository is an in-memory catalog. Writes land in its authoritative
// state, so a fetch after a partial failure shows exactly what persisted.
type fakeRepository struct {
	mu    sync.Mutex
	nodes map[int64]Node
	next  int64

	failUpdates map[int64]error
	fetchErr    error
	gate        chan struct{}

	updates []updateCall
	fetches int
	parents int
}

func newFakeRepository(seed ...Node) *fakeRepository {
	repo := &fakeRepository{nodes: make(map[int64]Node), failUpdates: make(map[int64]error)}
	for _, node := range seed {
		repo.nodes[node.ID] = node
		repo.next = max(repo.next, node.ID)
	}
	return repo
}

func (repo *fakeRepository) FetchRootPage(_ context.Context, page, limit int) (Page, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	repo.fetches++
	if repo.fetchErr != nil {
		return Page{}, repo.fetchErr
	}
	return repo.pageLocked(page, limit), nil
}

func (repo *fakeRepository) pageLocked(page, limit int) Page {
	roots := repo.sortedLocked(RootScope)
	total := len(roots)
	if limit > 0 {
		start := min((page-1)*limit, total)
		roots = roots[start:min(start+limit, total)]
	}
	for index := range roots {
		roots[index].Children = repo.sortedLocked(ChildScope(roots[index].ID))
	}
	return Page{Roots: roots, Meta: pagination.NewMeta(page, limit, total)}
}

func (repo *fakeRepository) FetchAssignableParents(context.Context) ([]Node, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	repo.parents++
	if repo.fetchErr != nil {
		return nil, repo.fetchErr
	}
	return repo.sortedLocked(RootScope), nil
}

func (repo *fakeRepository) UpdateNode(_ context.Context, id int64, patch Patch) (Node, error) {
	repo.mu.Lock()
	repo.updates = append(repo.updates, updateCall{ID: id, Patch: patch})
	gate := repo.gate
	repo.mu.Unlock()

	if gate != nil {
		<-gate
	}

	repo.mu.Lock()
	defer repo.mu.Unlock()

	if err := repo.failUpdates[id]; err != nil {
		return Node{}, err
	}
	node, ok := repo.nodes[id]
	if !ok {
		return Node{}, apperr.NotFound("Category")
	}
	if patch.Name != nil {
		node.Name = *patch.Name
	}
	if patch.Slug != nil {
		node.Slug = *patch.Slug
	}
	if patch.Position != nil {
		node.Position = *patch.Position
	}
	if patch.ClearParent {
		node.ParentID = nil
	} else if patch.ParentID != nil {
		node.ParentID = patch.ParentID
	}
	repo.nodes[id] = node
	return node, nil
}

func (repo *fakeRepository) CreateNode(_ context.Context, draft Draft) (Node, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	repo.next++
	node := Node{ID: repo.next, ParentID: draft.ParentID, Name: draft.Name, Slug: draft.Slug, Position: draft.Position, Image: draft.Image}
	repo.nodes[node.ID] = node
	return node, nil
}

func (repo *fakeRepository) DeleteNode(_ context.Context, id int64) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if _, ok := repo.nodes[id]; !ok {
		return apperr.NotFound("Category")
	}
	for childID, node := range repo.nodes {
		if node.ParentID != nil && *node.ParentID == id {
			delete(repo.nodes, childID)
		}
	}
	delete(repo.nodes, id)
	return nil
}

func (repo *fakeRepository) sortedLocked(scope Scope) []Node {
	nodes := []Node{}
	for _, node := range repo.nodes {
		if ScopeOf(node) == scope {
			nodes = append(nodes, node)
		}
	}
	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].Position != nodes[j].Position {
			return nodes[i].Position < nodes[j].Position
		}
		return nodes[i].ID < nodes[j].ID
	})
	return nodes
}

func (repo *fakeRepository) failUpdate(id int64) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	repo.failUpdates[id] = errUpstream
}

func (repo *fakeRepository) failFetch(err error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	repo.fetchErr = err
}

// holdUpdates makes every UpdateNode block until the returned func is called.
func (repo *fakeRepository) holdUpdates() (release func()) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	gate := make(chan struct{})
	repo.gate = gate
	var once sync.Once
	return func() { once.Do(func() { close(gate) }) }
}

func (repo *fakeRepository) updateCalls() []updateCall {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	return append([]updateCall(nil), repo.updates...)
}

func (repo *fakeRepository) fetchCount() int {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	return repo.fetches
}

// authoritative is what a fetch would return now, without counting as one.
func (repo *fakeRepository) authoritative(page, limit int) Page {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	return repo.pageLocked(page, limit)
}

// memoryParentCache is a [ParentCache] kept in process.
type memoryParentCache struct {
	mu          sync.Mutex
	parents     []Node
	ok          bool
	invalidated int
}

func (cache *memoryParentCache) Get(context.Context) ([]Node, bool) {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	return cache.parents, cache.ok
}

func (cache *memoryParentCache) Set(_ context.Context, parents []Node) {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	cache.parents, cache.ok = parents, true
}

func (cache *memoryParentCache) Invalidate(context.Context) {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	cache.parents, cache.ok = nil, false
	cache.invalidated++
}

func int64Ptr(value int64) *int64 { return &value }

func intPtr(value int) *int { return &value }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// storefront seeds the tree used throughout: Shoes, Bags, and Hats at the
// root, with Sneakers and Boots under Shoes.
func storefront() []Node {
	return []Node{
		{ID: 1, Name: "Shoes", Slug: "shoes", Position: 1},
		{ID: 2, Name: "Bags", Slug: "bags", Position: 2},
		{ID: 3, Name: "Hats", Slug: "hats", Position: 3},
		{ID: 4, Name: "Sneakers", Slug: "sneakers", Position: 1, ParentID: int64Ptr(1)},
		{ID: 5, Name: "Boots", Slug: "boots", Position: 2, ParentID: int64Ptr(1)},
	}
}

func newLoadedTree(repo *fakeRepository, feed *notify.Feed) (*TreeViewModel, error) {
	key := PageKey{Page: 1, Limit: 20}
	tree := NewTreeViewModel(repo, NewCoordinator(repo, feed, nil), nil, key)
	return tree, tree.Load(context.Background())
}

func names(nodes []Node) []string {
	result := make([]string, len(nodes))
	for index, node := range nodes {
		result[index] = node.Name
	}
	return result
}

func positions(nodes []Node) []int {
	result := make([]int, len(nodes))
	for index, node := range nodes {
		result[index] = node.Position
	}
	return result
}
