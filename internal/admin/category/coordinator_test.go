// Copyright (c) 2026 Shopdesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package category

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/shopdesk/internal/platform/metrics"
	"github.com/taibuivan/shopdesk/internal/platform/notify"
)

var testKey = PageKey{Page: 1, Limit: 20}

func fourRoots() []Node {
	return []Node{
		{ID: 1, Name: "A", Position: 1},
		{ID: 2, Name: "B", Position: 2},
		{ID: 3, Name: "C", Position: 3},
		{ID: 4, Name: "D", Position: 4},
	}
}

func TestPersist_AllWritesSucceed(t *testing.T) {
	repo := newFakeRepository(fourRoots()...)
	feed := notify.NewFeed(10)
	collector := metrics.NewCollector("test")
	coordinator := NewCoordinator(repo, feed, collector)

	result := Move(fourRoots(), MoveInstruction{Source: 3, Destination: intPtr(0)})
	settlement := coordinator.Persist(context.Background(), testKey, result.Changed)

	assert.Equal(t, OutcomeConfirmed, settlement.Outcome)
	assert.NoError(t, settlement.Err)
	assert.Nil(t, settlement.Page)
	assert.Len(t, repo.updateCalls(), 4)
	assert.Zero(t, repo.fetchCount())

	notifications := feed.Drain()
	require.Len(t, notifications, 1)
	assert.Equal(t, notify.LevelSuccess, notifications[0].Level)

	assert.Equal(t, 4.0, testutil.ToFloat64(collector.ReorderWrites.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.Reorders.WithLabelValues(metrics.OutcomeConfirmed)))
}

func TestPersist_SendsOnlyPositions(t *testing.T) {
	repo := newFakeRepository(fourRoots()...)
	coordinator := NewCoordinator(repo, notify.NewFeed(10), nil)

	result := Move(fourRoots(), MoveInstruction{Source: 0, Destination: intPtr(1)})
	coordinator.Persist(context.Background(), testKey, result.Changed)

	calls := repo.updateCalls()
	require.Len(t, calls, 2)
	for _, call := range calls {
		require.NotNil(t, call.Patch.Position)
		assert.Equal(t, PositionPatch(*call.Patch.Position), call.Patch)
	}
}

func TestPersist_PartialFailureReconcilesFromServer(t *testing.T) {
	repo := newFakeRepository(fourRoots()...)
	repo.failUpdate(2)
	repo.failUpdate(4)
	feed := notify.NewFeed(10)
	collector := metrics.NewCollector("test")
	coordinator := NewCoordinator(repo, feed, collector)

	// D to the front changes all four positions.
	result := Move(fourRoots(), MoveInstruction{Source: 3, Destination: intPtr(0)})
	require.Len(t, result.Changed, 4)

	settlement := coordinator.Persist(context.Background(), testKey, result.Changed)

	require.Equal(t, OutcomeReconciled, settlement.Outcome)
	require.NotNil(t, settlement.Page)
	assert.Equal(t, repo.authoritative(1, 20), *settlement.Page)
	assert.ElementsMatch(t, []string{"B", "D"}, names(settlement.Failed))
	assert.ErrorIs(t, settlement.Err, errUpstream)
	assert.Equal(t, 1, repo.fetchCount())

	// A and C persisted, B and D kept their old positions.
	assert.Equal(t, []string{"A", "B", "C", "D"}, names(settlement.Page.Roots))
	assert.Equal(t, []int{2, 2, 4, 4}, positions(settlement.Page.Roots))

	notifications := feed.Drain()
	require.Len(t, notifications, 1)
	assert.Equal(t, notify.LevelError, notifications[0].Level)
	assert.Contains(t, notifications[0].Message, "B")
	assert.Contains(t, notifications[0].Message, "D")

	assert.Equal(t, 2.0, testutil.ToFloat64(collector.ReorderWrites.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.Reorders.WithLabelValues(metrics.OutcomeReconciled)))
}

func TestPersist_FailedReconciliationIsStale(t *testing.T) {
	repo := newFakeRepository(fourRoots()...)
	repo.failUpdate(1)
	fetchErr := errors.New("catalog down")
	repo.failFetch(fetchErr)
	feed := notify.NewFeed(10)
	coordinator := NewCoordinator(repo, feed, nil)

	result := Move(fourRoots(), MoveInstruction{Source: 0, Destination: intPtr(3)})
	settlement := coordinator.Persist(context.Background(), testKey, result.Changed)

	assert.Equal(t, OutcomeStale, settlement.Outcome)
	assert.Nil(t, settlement.Page)
	assert.ErrorIs(t, settlement.Err, errUpstream)
	assert.ErrorIs(t, settlement.Err, fetchErr)
	assert.Len(t, feed.Drain(), 2)
}

func TestPersist_EmptyBatchIsNoop(t *testing.T) {
	repo := newFakeRepository()
	feed := notify.NewFeed(10)
	coordinator := NewCoordinator(repo, feed, nil)

	settlement := coordinator.Persist(context.Background(), testKey, nil)

	assert.Equal(t, OutcomeNoop, settlement.Outcome)
	assert.Empty(t, repo.updateCalls())
	assert.Zero(t, feed.Len())
}

func TestPersist_IgnoresCallerCancellation(t *testing.T) {
	repo := newFakeRepository(fourRoots()...)
	coordinator := NewCoordinator(repo, notify.NewFeed(10), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := Move(fourRoots(), MoveInstruction{Source: 1, Destination: intPtr(0)})
	settlement := coordinator.Persist(ctx, testKey, result.Changed)

	assert.Equal(t, OutcomeConfirmed, settlement.Outcome)
	assert.Equal(t, []string{"B", "A", "C", "D"}, names(repo.authoritative(1, 20).Roots))
}

func TestPersist_DispatchesConcurrently(t *testing.T) {
	repo := newFakeRepository(fourRoots()...)
	release := repo.holdUpdates()
	coordinator := NewCoordinator(repo, notify.NewFeed(10), nil)

	result := Move(fourRoots(), MoveInstruction{Source: 3, Destination: intPtr(0)})
	done := make(chan Settlement, 1)
	go func() { done <- coordinator.Persist(context.Background(), testKey, result.Changed) }()

	// Every write is issued while none has completed.
	assert.Eventually(t, func() bool { return len(repo.updateCalls()) == 4 }, waitFor, tick)
	release()

	assert.Equal(t, OutcomeConfirmed, (<-done).Outcome)
}
