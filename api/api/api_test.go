/* api_test.go
 * Contains unit tests for the API facade using the in-memory mock store
 * Authors: Zachary Bower
 */

package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"typerace-api/api/leaderboard"
	"typerace-api/api/shared"
	"typerace-api/api/store"
)

const apiTestPassage = "the quick brown fox jumps over the lazy dog"

func newTestAPI() (*API, *store.MockStore) {
	ms := store.NewMockStore()
	ms.AddUser(store.UserRecord{UserID: "host", DisplayName: "Hosting Hannah"})
	ms.AddUser(store.UserRecord{UserID: "opponent", DisplayName: "Opposing Olive"})
	return NewAPIWithStore(ms), ms
}

// region Caller and input validation tests

func TestNewAPI_RequiresDbName(t *testing.T) {
	_, err := NewAPI("", "mongodb://localhost:27017")
	assert.Error(t, err)
}

func TestFacade_RejectsEmptyCaller(t *testing.T) {
	a, _ := newTestAPI()

	_, err := a.CreateMatch("", apiTestPassage, "classics")
	assert.ErrorIs(t, err, shared.ErrUnauthenticated)

	_, err = a.JoinMatch("", "AB12CD")
	assert.ErrorIs(t, err, shared.ErrUnauthenticated)

	_, err = a.SubmitMatchResult("", "some-id", 60, 95, 2)
	assert.ErrorIs(t, err, shared.ErrUnauthenticated)

	err = a.RecordSoloAttempt("", 60, 95, 2, "classics")
	assert.ErrorIs(t, err, shared.ErrUnauthenticated)

	_, err = a.GetUserRank("")
	assert.ErrorIs(t, err, shared.ErrUnauthenticated)
}

func TestFacade_RejectsOutOfRangeMetrics(t *testing.T) {
	a, _ := newTestAPI()

	created, err := a.CreateMatch("host", apiTestPassage, "classics")
	require.NoError(t, err)

	tests := []struct {
		name     string
		wpm      int
		accuracy float64
		errors   int
	}{
		{"negative wpm", -1, 95, 0},
		{"accuracy below zero", 60, -0.5, 0},
		{"accuracy above hundred", 60, 100.5, 0},
		{"negative errors", 60, 95, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.SubmitMatchResult("host", created.MatchID, tt.wpm, tt.accuracy, tt.errors)
			assert.ErrorIs(t, err, shared.ErrValidation)

			err = a.RecordSoloAttempt("host", tt.wpm, tt.accuracy, tt.errors, "classics")
			assert.ErrorIs(t, err, shared.ErrValidation)
		})
	}
}

// endregion

// region End to end facade tests

func TestFacade_FullMatchFlow(t *testing.T) {
	a, _ := newTestAPI()

	created, err := a.CreateMatch("host", apiTestPassage, "classics")
	require.NoError(t, err)
	require.NotEmpty(t, created.InviteCode)

	view, err := a.JoinMatch("opponent", created.InviteCode)
	require.NoError(t, err)
	assert.Equal(t, store.StatusInProgress, view.Status)

	view, err = a.SubmitMatchResult("host", created.MatchID, 80, 95, 2)
	require.NoError(t, err)
	assert.Equal(t, store.StatusInProgress, view.Status)

	view, err = a.SubmitMatchResult("opponent", created.MatchID, 60, 99, 1)
	require.NoError(t, err)
	assert.Equal(t, store.StatusCompleted, view.Status)
	assert.Equal(t, "host", view.WinnerID)

	// Both submissions were folded into aggregates, so both racers are ranked
	entries, err := a.GetLeaderboard(leaderboard.SortComposite, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "host", entries[0].UserID)

	summary, err := a.GetUserRank("opponent")
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Rank)
	assert.Equal(t, 2, summary.Population)
}

func TestFacade_SoloAttemptFeedsLeaderboard(t *testing.T) {
	a, ms := newTestAPI()

	require.NoError(t, a.RecordSoloAttempt("host", 72, 96, 3, "practice"))

	stats, err := ms.GetUserStats("host")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalSessions)
	assert.Equal(t, 72, stats.BestWpm)

	attempts, err := ms.GetAttemptsByUser("host")
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	assert.Empty(t, attempts[0].MatchID)
	assert.Equal(t, "practice", attempts[0].PassageSource)
}

func TestFacade_CancelMatch(t *testing.T) {
	a, _ := newTestAPI()

	created, err := a.CreateMatch("host", apiTestPassage, "classics")
	require.NoError(t, err)

	require.NoError(t, a.CancelMatch("host", created.MatchID))

	view, err := a.GetMatch("host", created.MatchID)
	require.NoError(t, err)
	assert.Equal(t, store.StatusCancelled, view.Status)
}

// endregion

// region Rate limiting tests

func TestCreateMatch_RateLimited(t *testing.T) {
	a, _ := newTestAPI()

	// The burst allows a few quick creates, then the limiter kicks in
	for i := 0; i < createBurst; i++ {
		_, err := a.CreateMatch("host", apiTestPassage, "classics")
		require.NoError(t, err)
	}

	_, err := a.CreateMatch("host", apiTestPassage, "classics")
	assert.ErrorIs(t, err, shared.ErrRateLimited)
}

func TestCreateMatch_RateLimitIsPerCaller(t *testing.T) {
	a, _ := newTestAPI()

	for i := 0; i < createBurst; i++ {
		_, err := a.CreateMatch("host", apiTestPassage, "classics")
		require.NoError(t, err)
	}

	// A different caller still has a full burst available
	_, err := a.CreateMatch("opponent", apiTestPassage, "classics")
	assert.NoError(t, err)
}

// endregion
