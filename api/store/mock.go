/* mock.go
 * Contains an in-memory MockStore implementing Interface for testing the service
 * packages without a MongoDB deployment. Each method takes the internal lock for its
 * whole body, matching the real store's single-document atomicity; sequences across
 * calls race exactly like they would against Mongo
 * Authors: Zachary Bower
 */

package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// MockStore implements the Store interface for testing
type MockStore struct {
	mu sync.Mutex

	// Storage for mock data
	Users        map[string]UserRecord
	Matches      map[string]Match
	MatchResults map[string]MatchResult
	Attempts     map[string]TypingAttempt
	UserStats    map[string]UserStats

	// Error injection for testing error paths
	GetUserError                error
	GetUsersByIDsError          error
	InsertMatchError            error
	GetMatchError               error
	FindWaitingMatchByCodeError error
	SetMatchOpponentError       error
	SetMatchCompletedError      error
	SetMatchCancelledError      error
	GetMatchesByUserError       error
	InsertMatchResultError      error
	GetMatchResultError         error
	GetMatchResultsError        error
	FinishMatchResultError      error
	ZeroMatchResultError        error
	InsertTypingAttemptError    error
	GetAttemptsByUserError      error
	FindAttemptsOverWpmError    error
	DeleteTypingAttemptError    error
	GetUserStatsError           error
	UpsertUserStatsError        error
	GetAllUserStatsError        error

	DatabaseName string
}

// mockDatabase implements the minimal Database interface needed for tests
type mockDatabase struct {
	name string
}

func (m *mockDatabase) Name() string {
	return m.name
}

// mockClient implements the minimal client interface
type mockClient struct{}

func (mc *mockClient) Disconnect(ctx context.Context) error {
	return nil
}

// Ensure MockStore implements Interface
var _ Interface = (*MockStore)(nil)

// NewMockStore creates a new MockStore with empty collections
func NewMockStore() *MockStore {
	return &MockStore{
		Users:        make(map[string]UserRecord),
		Matches:      make(map[string]Match),
		MatchResults: make(map[string]MatchResult),
		Attempts:     make(map[string]TypingAttempt),
		UserStats:    make(map[string]UserStats),
		DatabaseName: "test_db",
	}
}

// AddUser seeds a profile, standing in for the identity provider
func (m *MockStore) AddUser(u UserRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Users[u.UserID] = u
}

// GetUser mock implementation
func (m *MockStore) GetUser(userID string) (UserRecord, error) {
	if m.GetUserError != nil {
		return UserRecord{}, m.GetUserError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.Users[userID]
	if !ok {
		return UserRecord{}, mongo.ErrNoDocuments
	}
	return u, nil
}

// GetUsersByIDs mock implementation
func (m *MockStore) GetUsersByIDs(userIDs []string) (map[string]UserRecord, error) {
	if m.GetUsersByIDsError != nil {
		return nil, m.GetUsersByIDsError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	users := make(map[string]UserRecord)
	for _, id := range userIDs {
		if u, ok := m.Users[id]; ok {
			users[id] = u
		}
	}
	return users, nil
}

// InsertMatch mock implementation
func (m *MockStore) InsertMatch(match Match) (string, error) {
	if m.InsertMatchError != nil {
		return "", m.InsertMatchError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	match.ID = primitive.NewObjectID()
	m.Matches[match.ID.Hex()] = match
	return match.ID.Hex(), nil
}

// GetMatch mock implementation
func (m *MockStore) GetMatch(matchID string) (Match, error) {
	if m.GetMatchError != nil {
		return Match{}, m.GetMatchError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	match, ok := m.Matches[matchID]
	if !ok {
		return Match{}, mongo.ErrNoDocuments
	}
	return match, nil
}

// FindWaitingMatchByCode mock implementation
func (m *MockStore) FindWaitingMatchByCode(code string) (Match, error) {
	if m.FindWaitingMatchByCodeError != nil {
		return Match{}, m.FindWaitingMatchByCodeError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, match := range m.Matches {
		if match.InviteCode == code && match.Status == StatusWaiting {
			return match, nil
		}
	}
	return Match{}, mongo.ErrNoDocuments
}

// SetMatchOpponent mock implementation. Conditional on waiting with no opponent,
// like the real store's filter
func (m *MockStore) SetMatchOpponent(matchID string, opponentID string, startedAt time.Time) error {
	if m.SetMatchOpponentError != nil {
		return m.SetMatchOpponentError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	match, ok := m.Matches[matchID]
	if !ok || match.Status != StatusWaiting || match.OpponentID != "" {
		return mongo.ErrNoDocuments
	}
	match.OpponentID = opponentID
	match.Status = StatusInProgress
	match.StartedAt = startedAt
	m.Matches[matchID] = match
	return nil
}

// SetMatchCompleted mock implementation. Conditional on in_progress
func (m *MockStore) SetMatchCompleted(matchID string, winnerID string, completedAt time.Time) error {
	if m.SetMatchCompletedError != nil {
		return m.SetMatchCompletedError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	match, ok := m.Matches[matchID]
	if !ok || match.Status != StatusInProgress {
		return mongo.ErrNoDocuments
	}
	match.Status = StatusCompleted
	match.WinnerID = winnerID
	match.CompletedAt = completedAt
	m.Matches[matchID] = match
	return nil
}

// SetMatchCancelled mock implementation. Conditional on waiting
func (m *MockStore) SetMatchCancelled(matchID string) error {
	if m.SetMatchCancelledError != nil {
		return m.SetMatchCancelledError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	match, ok := m.Matches[matchID]
	if !ok || match.Status != StatusWaiting {
		return mongo.ErrNoDocuments
	}
	match.Status = StatusCancelled
	m.Matches[matchID] = match
	return nil
}

// GetMatchesByUser mock implementation
func (m *MockStore) GetMatchesByUser(userID string, statuses []string, limit int64) ([]Match, error) {
	if m.GetMatchesByUserError != nil {
		return nil, m.GetMatchesByUserError
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	wanted := make(map[string]bool)
	for _, st := range statuses {
		wanted[st] = true
	}

	var results []Match
	for _, match := range m.Matches {
		if match.HostID != userID && match.OpponentID != userID {
			continue
		}
		if len(wanted) > 0 && !wanted[match.Status] {
			continue
		}
		results = append(results, match)
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].CreatedAt.After(results[j].CreatedAt)
	})
	if limit > 0 && int64(len(results)) > limit {
		results = results[:limit]
	}
	return results, nil
}

// InsertMatchResult mock implementation
func (m *MockStore) InsertMatchResult(result MatchResult) (string, error) {
	if m.InsertMatchResultError != nil {
		return "", m.InsertMatchResultError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	result.ID = primitive.NewObjectID()
	m.MatchResults[result.ID.Hex()] = result
	return result.ID.Hex(), nil
}

// GetMatchResult mock implementation
func (m *MockStore) GetMatchResult(matchID string, userID string) (MatchResult, error) {
	if m.GetMatchResultError != nil {
		return MatchResult{}, m.GetMatchResultError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.MatchResults {
		if r.MatchID == matchID && r.UserID == userID {
			return r, nil
		}
	}
	return MatchResult{}, mongo.ErrNoDocuments
}

// GetMatchResultsByMatch mock implementation. Rows are returned in insertion order
func (m *MockStore) GetMatchResultsByMatch(matchID string) ([]MatchResult, error) {
	if m.GetMatchResultsError != nil {
		return nil, m.GetMatchResultsError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var results []MatchResult
	for _, r := range m.MatchResults {
		if r.MatchID == matchID {
			results = append(results, r)
		}
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].ID.Hex() < results[j].ID.Hex()
	})
	return results, nil
}

// FinishMatchResult mock implementation. Conditional on is_finished=false
func (m *MockStore) FinishMatchResult(matchID string, userID string, wpm int, accuracy float64, errorCount int, completedAt time.Time) error {
	if m.FinishMatchResultError != nil {
		return m.FinishMatchResultError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, r := range m.MatchResults {
		if r.MatchID == matchID && r.UserID == userID && !r.IsFinished {
			r.Wpm = wpm
			r.Accuracy = accuracy
			r.Errors = errorCount
			r.IsFinished = true
			r.CompletedAt = completedAt
			m.MatchResults[id] = r
			return nil
		}
	}
	return mongo.ErrNoDocuments
}

// ZeroMatchResult mock implementation
func (m *MockStore) ZeroMatchResult(matchID string, userID string) error {
	if m.ZeroMatchResultError != nil {
		return m.ZeroMatchResultError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, r := range m.MatchResults {
		if r.MatchID == matchID && r.UserID == userID {
			r.Wpm = 0
			r.Accuracy = 0
			r.Errors = 0
			m.MatchResults[id] = r
			return nil
		}
	}
	return mongo.ErrNoDocuments
}

// InsertTypingAttempt mock implementation
func (m *MockStore) InsertTypingAttempt(attempt TypingAttempt) (string, error) {
	if m.InsertTypingAttemptError != nil {
		return "", m.InsertTypingAttemptError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	attempt.ID = primitive.NewObjectID()
	m.Attempts[attempt.ID.Hex()] = attempt
	return attempt.ID.Hex(), nil
}

// GetAttemptsByUser mock implementation, ordered by completion time ascending
func (m *MockStore) GetAttemptsByUser(userID string) ([]TypingAttempt, error) {
	if m.GetAttemptsByUserError != nil {
		return nil, m.GetAttemptsByUserError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var results []TypingAttempt
	for _, a := range m.Attempts {
		if a.UserID == userID {
			results = append(results, a)
		}
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].CompletedAt.Equal(results[j].CompletedAt) {
			return results[i].ID.Hex() < results[j].ID.Hex()
		}
		return results[i].CompletedAt.Before(results[j].CompletedAt)
	})
	return results, nil
}

// FindAttemptsOverWpm mock implementation
func (m *MockStore) FindAttemptsOverWpm(threshold int) ([]TypingAttempt, error) {
	if m.FindAttemptsOverWpmError != nil {
		return nil, m.FindAttemptsOverWpmError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var results []TypingAttempt
	for _, a := range m.Attempts {
		if a.Wpm > threshold {
			results = append(results, a)
		}
	}
	return results, nil
}

// DeleteTypingAttempt mock implementation
func (m *MockStore) DeleteTypingAttempt(attemptID string) error {
	if m.DeleteTypingAttemptError != nil {
		return m.DeleteTypingAttemptError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Attempts[attemptID]; !ok {
		return mongo.ErrNoDocuments
	}
	delete(m.Attempts, attemptID)
	return nil
}

// GetUserStats mock implementation
func (m *MockStore) GetUserStats(userID string) (UserStats, error) {
	if m.GetUserStatsError != nil {
		return UserStats{}, m.GetUserStatsError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stats, ok := m.UserStats[userID]
	if !ok {
		return UserStats{}, mongo.ErrNoDocuments
	}
	return stats, nil
}

// UpsertUserStats mock implementation
func (m *MockStore) UpsertUserStats(stats UserStats) error {
	if m.UpsertUserStatsError != nil {
		return m.UpsertUserStatsError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UserStats[stats.UserID] = stats
	return nil
}

// GetAllUserStats mock implementation
func (m *MockStore) GetAllUserStats() ([]UserStats, error) {
	if m.GetAllUserStatsError != nil {
		return nil, m.GetAllUserStatsError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var results []UserStats
	for _, s := range m.UserStats {
		results = append(results, s)
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].UserID < results[j].UserID
	})
	return results, nil
}

// GetDatabase returns the mock database instance
func (m *MockStore) GetDatabase() interface{ Name() string } {
	return &mockDatabase{name: m.DatabaseName}
}

// GetClient returns a no-op client
func (m *MockStore) GetClient() interface{ Disconnect(context.Context) error } {
	return &mockClient{}
}
