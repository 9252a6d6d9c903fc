// Copyright (c) 2026 Shopdesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package category

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/shopdesk/internal/platform/notify"
)

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

func settle(t *testing.T, pending *Pending) Settlement {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), waitFor)
	defer cancel()

	settlement, err := pending.Wait(ctx)
	require.NoError(t, err)
	return settlement
}

func rootByName(t *testing.T, roots []Node, name string) Node {
	t.Helper()
	for _, root := range roots {
		if root.Name == name {
			return root
		}
	}
	t.Fatalf("root %q not found", name)
	return Node{}
}

func TestDragEnd_MovesHatsToFront(t *testing.T) {
	repo := newFakeRepository(storefront()...)
	feed := notify.NewFeed(10)
	tree, err := newLoadedTree(repo, feed)
	require.NoError(t, err)

	pending, err := tree.DragEnd(context.Background(), MoveInstruction{Scope: RootScope, Source: 2, Destination: intPtr(0)})
	require.NoError(t, err)

	settlement := settle(t, pending)
	assert.Equal(t, OutcomeConfirmed, settlement.Outcome)

	roots := tree.Snapshot().Roots
	assert.Equal(t, []string{"Hats", "Shoes", "Bags"}, names(roots))
	assert.Equal(t, []int{1, 2, 3}, positions(roots))

	calls := repo.updateCalls()
	require.Len(t, calls, 3)
	written := make(map[int64]int, len(calls))
	for _, call := range calls {
		written[call.ID] = *call.Patch.Position
	}
	assert.Equal(t, map[int64]int{3: 1, 1: 2, 2: 3}, written)
}

func TestDragEnd_AppliesBeforePersisting(t *testing.T) {
	repo := newFakeRepository(storefront()...)
	tree, err := newLoadedTree(repo, notify.NewFeed(10))
	require.NoError(t, err)
	release := repo.holdUpdates()
	defer release()

	pending, err := tree.DragEnd(context.Background(), MoveInstruction{Source: 0, Destination: intPtr(2)})
	require.NoError(t, err)

	snapshot := tree.Snapshot()
	assert.True(t, snapshot.Busy)
	assert.Equal(t, []string{"Bags", "Hats", "Shoes"}, names(snapshot.Roots))

	select {
	case <-pending.Done():
		t.Fatal("settled while writes were held")
	default:
	}

	release()
	assert.Equal(t, OutcomeConfirmed, settle(t, pending).Outcome)
	assert.False(t, tree.Busy())
}

func TestDragEnd_RejectsWhileInFlight(t *testing.T) {
	repo := newFakeRepository(storefront()...)
	tree, err := newLoadedTree(repo, notify.NewFeed(10))
	require.NoError(t, err)
	release := repo.holdUpdates()
	defer release()

	pending, err := tree.DragEnd(context.Background(), MoveInstruction{Source: 2, Destination: intPtr(0)})
	require.NoError(t, err)
	require.Eventually(t, func() bool { return len(repo.updateCalls()) == 3 }, waitFor, tick)

	// Same scope and another scope are both refused.
	_, err = tree.DragEnd(context.Background(), MoveInstruction{Source: 0, Destination: intPtr(1)})
	assert.ErrorIs(t, err, ErrReorderInFlight)
	_, err = tree.DragEnd(context.Background(), MoveInstruction{Scope: ChildScope(1), Source: 0, Destination: intPtr(1)})
	assert.ErrorIs(t, err, ErrReorderInFlight)
	assert.ErrorIs(t, tree.Refresh(context.Background()), ErrReorderInFlight)

	// The rejected gestures neither queued writes nor touched the tree.
	assert.Len(t, repo.updateCalls(), 3)
	assert.Equal(t, []string{"Hats", "Shoes", "Bags"}, names(tree.Snapshot().Roots))

	release()
	settle(t, pending)
	assert.Len(t, repo.updateCalls(), 3)

	next, err := tree.DragEnd(context.Background(), MoveInstruction{Source: 0, Destination: intPtr(1)})
	require.NoError(t, err)
	settle(t, next)
	assert.Equal(t, []string{"Shoes", "Hats", "Bags"}, names(tree.Snapshot().Roots))
}

func TestDragEnd_ChildScopeIsolation(t *testing.T) {
	repo := newFakeRepository(append(storefront(),
		Node{ID: 6, Name: "Totes", Slug: "totes", Position: 1, ParentID: int64Ptr(2)},
		Node{ID: 7, Name: "Clutches", Slug: "clutches", Position: 2, ParentID: int64Ptr(2)},
	)...)
	tree, err := newLoadedTree(repo, notify.NewFeed(10))
	require.NoError(t, err)
	before := tree.Snapshot().Roots

	pending, err := tree.DragEnd(context.Background(), MoveInstruction{Scope: ChildScope(1), Source: 1, Destination: intPtr(0)})
	require.NoError(t, err)
	settle(t, pending)

	after := tree.Snapshot().Roots
	assert.Equal(t, positions(before), positions(after))
	assert.Equal(t, rootByName(t, before, "Bags").Children, rootByName(t, after, "Bags").Children)

	shoes := rootByName(t, after, "Shoes")
	assert.Equal(t, []string{"Boots", "Sneakers"}, names(shoes.Children))
	assert.Equal(t, []int{1, 2}, positions(shoes.Children))

	for _, call := range repo.updateCalls() {
		assert.Contains(t, []int64{4, 5}, call.ID)
	}
}

func TestDragEnd_NoOpSettlesImmediately(t *testing.T) {
	repo := newFakeRepository(storefront()...)
	tree, err := newLoadedTree(repo, notify.NewFeed(10))
	require.NoError(t, err)

	tests := []struct {
		name        string
		instruction MoveInstruction
	}{
		{name: "dropped outside", instruction: MoveInstruction{Source: 1}},
		{name: "same index", instruction: MoveInstruction{Source: 1, Destination: intPtr(1)}},
		{name: "unknown scope", instruction: MoveInstruction{Scope: ChildScope(99), Source: 0, Destination: intPtr(1)}},
		{name: "childless scope", instruction: MoveInstruction{Scope: ChildScope(3), Source: 0, Destination: intPtr(1)}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pending, err := tree.DragEnd(context.Background(), tc.instruction)
			require.NoError(t, err)

			select {
			case <-pending.Done():
			default:
				t.Fatal("no-op did not settle immediately")
			}
			assert.Equal(t, OutcomeNoop, settle(t, pending).Outcome)
			assert.False(t, tree.Busy())
		})
	}
	assert.Empty(t, repo.updateCalls())
}

func TestDragEnd_PartialFailureShowsServerState(t *testing.T) {
	repo := newFakeRepository(
		Node{ID: 1, Name: "A", Position: 1},
		Node{ID: 2, Name: "B", Position: 2},
		Node{ID: 3, Name: "C", Position: 3},
		Node{ID: 4, Name: "D", Position: 4},
	)
	repo.failUpdate(1)
	repo.failUpdate(3)
	feed := notify.NewFeed(10)
	tree, err := newLoadedTree(repo, feed)
	require.NoError(t, err)

	pending, err := tree.DragEnd(context.Background(), MoveInstruction{Source: 3, Destination: intPtr(0)})
	require.NoError(t, err)
	settlement := settle(t, pending)

	require.Equal(t, OutcomeReconciled, settlement.Outcome)
	assert.Equal(t, repo.authoritative(1, 20).Roots, tree.Snapshot().Roots)
	assert.NotEqual(t, []string{"D", "A", "B", "C"}, names(tree.Snapshot().Roots))
	assert.False(t, tree.Snapshot().Stale)
	assert.Equal(t, 2, repo.fetchCount())

	notifications := feed.Drain()
	require.NotEmpty(t, notifications)
	assert.Equal(t, notify.LevelError, notifications[0].Level)
}

func TestDragEnd_StaleTreeRejectsUntilRefreshed(t *testing.T) {
	repo := newFakeRepository(storefront()...)
	repo.failUpdate(2)
	tree, err := newLoadedTree(repo, notify.NewFeed(10))
	require.NoError(t, err)
	repo.failFetch(errors.New("catalog down"))

	pending, err := tree.DragEnd(context.Background(), MoveInstruction{Source: 2, Destination: intPtr(0)})
	require.NoError(t, err)
	assert.Equal(t, OutcomeStale, settle(t, pending).Outcome)
	assert.True(t, tree.Snapshot().Stale)

	_, err = tree.DragEnd(context.Background(), MoveInstruction{Source: 0, Destination: intPtr(1)})
	assert.ErrorIs(t, err, ErrTreeStale)

	repo.failFetch(nil)
	require.NoError(t, tree.Load(context.Background()))
	assert.False(t, tree.Snapshot().Stale)
	assert.Equal(t, repo.authoritative(1, 20).Roots, tree.Snapshot().Roots)

	_, err = tree.DragEnd(context.Background(), MoveInstruction{Source: 0, Destination: intPtr(1)})
	assert.NoError(t, err)
}

func TestDragEnd_RequiresLoadedTree(t *testing.T) {
	repo := newFakeRepository(storefront()...)
	tree := NewTreeViewModel(repo, NewCoordinator(repo, notify.NewFeed(10), nil), nil, PageKey{Page: 1, Limit: 20})

	_, err := tree.DragEnd(context.Background(), MoveInstruction{Source: 0, Destination: intPtr(1)})

	assert.ErrorIs(t, err, ErrTreeStale)
}

func TestLoad_FetchesOnce(t *testing.T) {
	repo := newFakeRepository(storefront()...)
	tree, err := newLoadedTree(repo, notify.NewFeed(10))
	require.NoError(t, err)

	require.NoError(t, tree.Load(context.Background()))
	assert.Equal(t, 1, repo.fetchCount())

	require.NoError(t, tree.Refresh(context.Background()))
	assert.Equal(t, 2, repo.fetchCount())
}

func TestLoad_FailureLeavesTreeUnloaded(t *testing.T) {
	repo := newFakeRepository(storefront()...)
	repo.failFetch(errUpstream)

	_, err := newLoadedTree(repo, notify.NewFeed(10))

	assert.ErrorIs(t, err, errUpstream)
}

func TestSnapshot_IsACopy(t *testing.T) {
	repo := newFakeRepository(storefront()...)
	tree, err := newLoadedTree(repo, notify.NewFeed(10))
	require.NoError(t, err)

	snapshot := tree.Snapshot()
	snapshot.Roots[0].Name = "Mutated"
	snapshot.Roots[0].Children[0].Position = 99

	fresh := tree.Snapshot()
	assert.Equal(t, "Shoes", fresh.Roots[0].Name)
	assert.Equal(t, 1, fresh.Roots[0].Children[0].Position)
	assert.Equal(t, []Scope{ChildScope(1)}, tree.ChildScopes())
}

func TestPending_WaitHonoursContext(t *testing.T) {
	pending := newPending()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := pending.Wait(ctx)

	assert.ErrorIs(t, err, context.Canceled)
}

func newPagedTree(t *testing.T, repo *fakeRepository, page, limit int) *TreeViewModel {
	t.Helper()
	tree := NewTreeViewModel(repo, NewCoordinator(repo, notify.NewFeed(10), nil), nil, PageKey{Page: page, Limit: limit})
	require.NoError(t, tree.Load(context.Background()))
	return tree
}

// assertDense checks every scope of the catalog, across all pages.
func assertDense(t *testing.T, repo *fakeRepository) {
	t.Helper()
	all := repo.authoritative(1, 0)
	assert.Equal(t, sequence(len(all.Roots)), positions(all.Roots), "roots")
	for _, root := range all.Roots {
		assert.Equal(t, sequence(len(root.Children)), positions(root.Children), "children of %s", root.Name)
	}
}

func sequence(n int) []int {
	result := make([]int, n)
	for index := range result {
		result[index] = index + 1
	}
	return result
}

func TestDragEnd_LaterPageContinuesPositions(t *testing.T) {
	repo := newFakeRepository(fourRoots()...)
	tree := newPagedTree(t, repo, 2, 2)

	pending, err := tree.DragEnd(context.Background(), MoveInstruction{Scope: RootScope, Source: 1, Destination: intPtr(0)})
	require.NoError(t, err)
	assert.Equal(t, OutcomeConfirmed, settle(t, pending).Outcome)

	assert.Equal(t, []int{3, 4}, positions(tree.Snapshot().Roots))

	all := repo.authoritative(1, 0)
	assert.Equal(t, []string{"A", "B", "D", "C"}, names(all.Roots))
	assert.Equal(t, []int{1, 2, 3, 4}, positions(all.Roots))
}

func TestDragEnd_SequenceKeepsEveryScopeDense(t *testing.T) {
	repo := newFakeRepository(
		Node{ID: 1, Name: "Shoes", Position: 1},
		Node{ID: 2, Name: "Bags", Position: 2},
		Node{ID: 3, Name: "Hats", Position: 3},
		Node{ID: 4, Name: "Belts", Position: 4},
		Node{ID: 5, Name: "Socks", Position: 5},
		Node{ID: 6, Name: "Sneakers", Position: 1, ParentID: int64Ptr(1)},
		Node{ID: 7, Name: "Boots", Position: 2, ParentID: int64Ptr(1)},
		Node{ID: 8, Name: "Sandals", Position: 3, ParentID: int64Ptr(1)},
	)
	first := newPagedTree(t, repo, 1, 2)
	second := newPagedTree(t, repo, 2, 2)
	third := newPagedTree(t, repo, 3, 2)

	steps := []struct {
		name        string
		tree        *TreeViewModel
		instruction MoveInstruction
		outcome     Outcome
		wantRoots   []string
	}{
		{"swap on page 2", second, MoveInstruction{Source: 1, Destination: intPtr(0)}, OutcomeConfirmed,
			[]string{"Shoes", "Bags", "Belts", "Hats", "Socks"}},
		{"swap on page 1", first, MoveInstruction{Source: 0, Destination: intPtr(1)}, OutcomeConfirmed,
			[]string{"Bags", "Shoes", "Belts", "Hats", "Socks"}},
		{"single root on page 3", third, MoveInstruction{Source: 0, Destination: intPtr(1)}, OutcomeNoop,
			[]string{"Bags", "Shoes", "Belts", "Hats", "Socks"}},
		{"children of Shoes", first, MoveInstruction{Scope: ChildScope(1), Source: 2, Destination: intPtr(0)}, OutcomeConfirmed,
			[]string{"Bags", "Shoes", "Belts", "Hats", "Socks"}},
		{"swap back on page 2", second, MoveInstruction{Source: 0, Destination: intPtr(1)}, OutcomeConfirmed,
			[]string{"Bags", "Shoes", "Hats", "Belts", "Socks"}},
	}

	for _, step := range steps {
		pending, err := step.tree.DragEnd(context.Background(), step.instruction)
		require.NoError(t, err, step.name)
		assert.Equal(t, step.outcome, settle(t, pending).Outcome, step.name)

		assertDense(t, repo)
		assert.Equal(t, step.wantRoots, names(repo.authoritative(1, 0).Roots), step.name)
	}

	shoes := rootByName(t, repo.authoritative(1, 0).Roots, "Shoes")
	assert.Equal(t, []string{"Sandals", "Sneakers", "Boots"}, names(shoes.Children))
}
