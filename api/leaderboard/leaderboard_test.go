/* leaderboard_test.go
 * Contains unit tests for the ranking queries using the in-memory mock store
 * Authors: Zachary Bower
 */

package leaderboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"typerace-api/api/shared"
	"typerace-api/api/store"
)

// seedPopulation loads four users with fixed aggregates.
// Composite order: ada (76.8) > grace (72) > alan (58.5) > anon (28.5)
func seedPopulation(ms *store.MockStore) {
	ms.AddUser(store.UserRecord{UserID: "u1", DisplayName: "Ada", Email: "ada@example.com", AvatarURL: "http://img/ada.png"})
	ms.AddUser(store.UserRecord{UserID: "u2", DisplayName: "Grace", Email: "grace@example.com"})
	ms.AddUser(store.UserRecord{UserID: "u3", Email: "alan.turing@example.com"})
	// u4 has no profile at all

	_ = ms.UpsertUserStats(store.UserStats{UserID: "u1", BestWpm: 80, AverageWpm: 70, BestAccuracy: 96, AverageAccuracy: 92, TotalSessions: 12, CompositeScore: 76.8})
	_ = ms.UpsertUserStats(store.UserStats{UserID: "u2", BestWpm: 72, AverageWpm: 66, BestAccuracy: 100, AverageAccuracy: 97, TotalSessions: 30, CompositeScore: 72})
	_ = ms.UpsertUserStats(store.UserStats{UserID: "u3", BestWpm: 65, AverageWpm: 50, BestAccuracy: 90, AverageAccuracy: 85, TotalSessions: 5, CompositeScore: 58.5})
	_ = ms.UpsertUserStats(store.UserStats{UserID: "u4", BestWpm: 30, AverageWpm: 28, BestAccuracy: 95, AverageAccuracy: 90, TotalSessions: 2, CompositeScore: 28.5})
}

func newTestService() (*Service, *store.MockStore) {
	ms := store.NewMockStore()
	seedPopulation(ms)
	return NewService(ms), ms
}

// region RankedList tests

func TestRankedList_CompositeOrder(t *testing.T) {
	svc, _ := newTestService()

	entries, err := svc.RankedList(SortComposite, 0)
	require.NoError(t, err)
	require.Len(t, entries, 4)

	assert.Equal(t, []string{"u1", "u2", "u3", "u4"}, ids(entries))
	for i, e := range entries {
		assert.Equal(t, i+1, e.Rank)
	}
}

func TestRankedList_NameFallbackChain(t *testing.T) {
	svc, _ := newTestService()

	entries, err := svc.RankedList(SortComposite, 0)
	require.NoError(t, err)

	assert.Equal(t, "Ada", entries[0].DisplayName)
	assert.Equal(t, "alan.turing", entries[2].DisplayName) // email local-part
	assert.Equal(t, "Anonymous", entries[3].DisplayName)   // no profile at all
}

func TestRankedList_WpmTiesBreakOnAccuracy(t *testing.T) {
	svc, ms := newTestService()
	ms.AddUser(store.UserRecord{UserID: "u5", DisplayName: "Edsger"})
	require.NoError(t, ms.UpsertUserStats(store.UserStats{UserID: "u5", BestWpm: 80, BestAccuracy: 99, AverageWpm: 75, AverageAccuracy: 95, TotalSessions: 4, CompositeScore: 79.2}))

	entries, err := svc.RankedList(SortWpm, 0)
	require.NoError(t, err)

	// u1 and u5 tie at 80 wpm; u5's 99 accuracy ranks first
	assert.Equal(t, "u5", entries[0].UserID)
	assert.Equal(t, "u1", entries[1].UserID)
}

func TestRankedList_AccuracyTiesBreakOnWpm(t *testing.T) {
	svc, ms := newTestService()
	ms.AddUser(store.UserRecord{UserID: "u5", DisplayName: "Edsger"})
	require.NoError(t, ms.UpsertUserStats(store.UserStats{UserID: "u5", BestWpm: 90, BestAccuracy: 96, AverageWpm: 80, AverageAccuracy: 94, TotalSessions: 4, CompositeScore: 86.4}))

	entries, err := svc.RankedList(SortAccuracy, 0)
	require.NoError(t, err)

	// u2 leads outright at 100; u5 and u1 tie at 96 and u5's 90 wpm wins the tie
	assert.Equal(t, "u2", entries[0].UserID)
	assert.Equal(t, "u5", entries[1].UserID)
	assert.Equal(t, "u1", entries[2].UserID)
}

func TestRankedList_Truncation(t *testing.T) {
	svc, _ := newTestService()

	entries, err := svc.RankedList(SortComposite, 2)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestRankedList_Deterministic(t *testing.T) {
	svc, _ := newTestService()

	first, err := svc.RankedList(SortWpm, 0)
	require.NoError(t, err)
	second, err := svc.RankedList(SortWpm, 0)
	require.NoError(t, err)

	// Re-running with no data change yields the same order
	assert.Equal(t, ids(first), ids(second))
}

func TestRankedList_UnknownSortKey(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.RankedList("sessions", 0)
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestRankedList_CompositeFallbackUsesSharedFormula(t *testing.T) {
	svc, ms := newTestService()
	// A document written before composite scores were persisted
	ms.AddUser(store.UserRecord{UserID: "u6", DisplayName: "Old Timer"})
	require.NoError(t, ms.UpsertUserStats(store.UserStats{UserID: "u6", BestWpm: 100, BestAccuracy: 90, AverageWpm: 90, AverageAccuracy: 88, TotalSessions: 8}))

	entries, err := svc.RankedList(SortComposite, 0)
	require.NoError(t, err)

	// 100 * 0.90 = 90 puts the legacy document on top
	assert.Equal(t, "u6", entries[0].UserID)
	assert.InDelta(t, 90.0, entries[0].CompositeScore, 1e-9)
}

// endregion

// region UserRank and NearbyRanks tests

func TestUserRank(t *testing.T) {
	svc, _ := newTestService()

	summary, err := svc.UserRank("u2")
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Rank)
	assert.Equal(t, 4, summary.Population)
	assert.Equal(t, 50, summary.Percentile) // round((1 - 2/4) * 100)
}

func TestUserRank_TopOfBoard(t *testing.T) {
	svc, _ := newTestService()

	summary, err := svc.UserRank("u1")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Rank)
	assert.Equal(t, 75, summary.Percentile)
}

func TestUserRank_NoStats(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.UserRank("nobody")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestNearbyRanks_WindowAroundCaller(t *testing.T) {
	svc, _ := newTestService()

	window, err := svc.NearbyRanks("u2", 1)
	require.NoError(t, err)
	require.Len(t, window, 3)
	assert.Equal(t, []string{"u1", "u2", "u3"}, ids(window))
	assert.False(t, window[0].IsCaller)
	assert.True(t, window[1].IsCaller)
}

func TestNearbyRanks_ClampedToPopulation(t *testing.T) {
	svc, _ := newTestService()

	window, err := svc.NearbyRanks("u1", 10)
	require.NoError(t, err)
	assert.Len(t, window, 4)
	assert.Equal(t, 1, window[0].Rank)
	assert.True(t, window[0].IsCaller)
}

func TestNearbyRanks_NegativeRadius(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.NearbyRanks("u1", -1)
	assert.ErrorIs(t, err, shared.ErrValidation)
}

// endregion

// region TopPerformers and GlobalStats tests

func TestTopPerformers(t *testing.T) {
	svc, _ := newTestService()

	top, err := svc.TopPerformers()
	require.NoError(t, err)

	require.Len(t, top.FastestWpm, 3)
	assert.Equal(t, "u1", top.FastestWpm[0].UserID)
	require.Len(t, top.MostAccurate, 3)
	assert.Equal(t, "u2", top.MostAccurate[0].UserID)
	require.Len(t, top.HighestComposite, 3)
	assert.Equal(t, "u1", top.HighestComposite[0].UserID)
	require.Len(t, top.MostSessions, 3)
	assert.Equal(t, "u2", top.MostSessions[0].UserID)
}

func TestGlobalStats(t *testing.T) {
	svc, _ := newTestService()

	g, err := svc.GlobalStats()
	require.NoError(t, err)

	assert.Equal(t, 4, g.Population)
	assert.Equal(t, 49, g.TotalSessions)
	// Mean of per-user averages, not weighted by session count
	assert.InDelta(t, (70+66+50+28)/4.0, g.AverageWpm, 1e-9)
	assert.InDelta(t, (92+97+85+90)/4.0, g.AverageAccuracy, 1e-9)
	assert.Equal(t, 80, g.MaxBestWpm)
	assert.InDelta(t, 100, g.MaxBestAccuracy, 1e-9)
}

func TestGlobalStats_EmptyPopulation(t *testing.T) {
	svc := NewService(store.NewMockStore())

	g, err := svc.GlobalStats()
	require.NoError(t, err)
	assert.Zero(t, g.Population)
	assert.Zero(t, g.AverageWpm)
}

// endregion

// region FindUserRank tests

func TestFindUserRank_FuzzyMatch(t *testing.T) {
	svc, _ := newTestService()

	entry, err := svc.FindUserRank("grce")
	require.NoError(t, err)
	assert.Equal(t, "u2", entry.UserID)
	assert.Equal(t, 2, entry.Rank)
}

func TestFindUserRank_ExactMatchPreferred(t *testing.T) {
	svc, ms := newTestService()
	ms.AddUser(store.UserRecord{UserID: "u7", DisplayName: "Adaline"})
	require.NoError(t, ms.UpsertUserStats(store.UserStats{UserID: "u7", BestWpm: 40, BestAccuracy: 90, AverageWpm: 35, AverageAccuracy: 88, TotalSessions: 3, CompositeScore: 36}))

	entry, err := svc.FindUserRank("Ada")
	require.NoError(t, err)
	assert.Equal(t, "u1", entry.UserID)
}

func TestFindUserRank_NoMatch(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.FindUserRank("xqzzyk")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestFindUserRank_EmptyQuery(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.FindUserRank("   ")
	assert.ErrorIs(t, err, shared.ErrValidation)
}

// endregion

func ids(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.UserID
	}
	return out
}
