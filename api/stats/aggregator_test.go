/* aggregator_test.go
 * Contains unit tests for aggregator.go using the in-memory mock store
 * Authors: Zachary Bower
 */

package stats

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"typerace-api/api/store"
)

func TestFoldAttempt_CreatesStatsLazily(t *testing.T) {
	ms := store.NewMockStore()
	agg := NewAggregator(ms)

	err := agg.FoldAttempt("user1", store.TypingAttempt{UserID: "user1", Wpm: 50, Accuracy: 90})
	require.NoError(t, err)

	stats, err := ms.GetUserStats("user1")
	require.NoError(t, err)
	assert.Equal(t, 50, stats.BestWpm)
	assert.Equal(t, 50, stats.AverageWpm)
	assert.Equal(t, 1, stats.TotalSessions)
	assert.InDelta(t, 45.0, stats.CompositeScore, 1e-9)
	assert.False(t, stats.LastUpdated.IsZero())
}

func TestFoldAttempt_AccumulatesAcrossAttempts(t *testing.T) {
	ms := store.NewMockStore()
	agg := NewAggregator(ms)

	require.NoError(t, agg.FoldAttempt("user1", store.TypingAttempt{UserID: "user1", Wpm: 50, Accuracy: 90}))
	require.NoError(t, agg.FoldAttempt("user1", store.TypingAttempt{UserID: "user1", Wpm: 70, Accuracy: 80}))

	stats, err := ms.GetUserStats("user1")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalSessions)
	assert.Equal(t, 70, stats.BestWpm)
	assert.Equal(t, 60, stats.AverageWpm)
	assert.InDelta(t, 90, stats.BestAccuracy, 1e-9)
	assert.InDelta(t, 85, stats.AverageAccuracy, 1e-9)
	assert.Equal(t, 120, stats.TotalWordsTyped)
	// Composite uses the best metrics, not the latest attempt's
	assert.InDelta(t, 63.0, stats.CompositeScore, 1e-9)
}

func TestFoldAttempt_ConcurrentFoldsForOneUserAllCounted(t *testing.T) {
	ms := store.NewMockStore()
	agg := NewAggregator(ms)

	const n = 25
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			assert.NoError(t, agg.FoldAttempt("user1", store.TypingAttempt{UserID: "user1", Wpm: 60, Accuracy: 90}))
		}()
	}
	wg.Wait()

	stats, err := ms.GetUserStats("user1")
	require.NoError(t, err)
	// Serialized folds lose no samples
	assert.Equal(t, n, stats.TotalSessions)
	assert.Equal(t, n*60, stats.TotalWordsTyped)
}

func TestRepairFromHistory_MatchesIncrementalResult(t *testing.T) {
	ms := store.NewMockStore()
	agg := NewAggregator(ms)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	attempts := []store.TypingAttempt{
		{UserID: "user1", Wpm: 50, Accuracy: 90, CompletedAt: base},
		{UserID: "user1", Wpm: 63, Accuracy: 97, CompletedAt: base.Add(time.Minute)},
		{UserID: "user1", Wpm: 47, Accuracy: 88, CompletedAt: base.Add(2 * time.Minute)},
	}
	for _, a := range attempts {
		_, err := ms.InsertTypingAttempt(a)
		require.NoError(t, err)
		require.NoError(t, agg.FoldAttempt("user1", a))
	}

	folded, err := ms.GetUserStats("user1")
	require.NoError(t, err)

	require.NoError(t, agg.RepairFromHistory("user1"))

	repaired, err := ms.GetUserStats("user1")
	require.NoError(t, err)

	assert.Equal(t, folded.TotalSessions, repaired.TotalSessions)
	assert.Equal(t, folded.BestWpm, repaired.BestWpm)
	assert.Equal(t, folded.AverageWpm, repaired.AverageWpm)
	assert.InDelta(t, folded.BestAccuracy, repaired.BestAccuracy, 1e-9)
	assert.InDelta(t, folded.AverageAccuracy, repaired.AverageAccuracy, 1e-9)
	assert.Equal(t, folded.TotalWordsTyped, repaired.TotalWordsTyped)
	assert.InDelta(t, folded.CompositeScore, repaired.CompositeScore, 1e-9)
}

func TestRepairFromHistory_OverwritesDriftedAggregate(t *testing.T) {
	ms := store.NewMockStore()
	agg := NewAggregator(ms)

	_, err := ms.InsertTypingAttempt(store.TypingAttempt{UserID: "user1", Wpm: 40, Accuracy: 85, CompletedAt: time.Now().UTC()})
	require.NoError(t, err)

	// A drifted aggregate claiming sessions that never happened
	require.NoError(t, ms.UpsertUserStats(store.UserStats{UserID: "user1", TotalSessions: 99, BestWpm: 250, AverageWpm: 200}))

	require.NoError(t, agg.RepairFromHistory("user1"))

	stats, err := ms.GetUserStats("user1")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalSessions)
	assert.Equal(t, 40, stats.BestWpm)
	assert.Equal(t, 40, stats.AverageWpm)
}
