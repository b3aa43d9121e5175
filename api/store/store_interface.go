/* store_interface.go
 * Contains the Store interface for dependency injection and testing
 * Authors: Zachary Bower
 */

package store

import (
	"context"
	"time"
)

// Interface defines the methods that Store implements.
// This allows for mocking in tests.
type Interface interface {
	// Users
	GetUser(userID string) (UserRecord, error)
	GetUsersByIDs(userIDs []string) (map[string]UserRecord, error)

	// Matches
	InsertMatch(match Match) (string, error)
	GetMatch(matchID string) (Match, error)
	FindWaitingMatchByCode(code string) (Match, error)
	SetMatchOpponent(matchID string, opponentID string, startedAt time.Time) error
	SetMatchCompleted(matchID string, winnerID string, completedAt time.Time) error
	SetMatchCancelled(matchID string) error
	GetMatchesByUser(userID string, statuses []string, limit int64) ([]Match, error)

	// Match results
	InsertMatchResult(result MatchResult) (string, error)
	GetMatchResult(matchID string, userID string) (MatchResult, error)
	GetMatchResultsByMatch(matchID string) ([]MatchResult, error)
	FinishMatchResult(matchID string, userID string, wpm int, accuracy float64, errorCount int, completedAt time.Time) error
	ZeroMatchResult(matchID string, userID string) error

	// Typing attempts
	InsertTypingAttempt(attempt TypingAttempt) (string, error)
	GetAttemptsByUser(userID string) ([]TypingAttempt, error)
	FindAttemptsOverWpm(threshold int) ([]TypingAttempt, error)
	DeleteTypingAttempt(attemptID string) error

	// User stats
	GetUserStats(userID string) (UserStats, error)
	UpsertUserStats(stats UserStats) error
	GetAllUserStats() ([]UserStats, error)

	// Getter methods for accessing fields
	GetDatabase() interface{ Name() string }
	GetClient() interface{ Disconnect(context.Context) error }
}

// Ensure Store implements Interface
var _ Interface = (*Store)(nil)

// GetDatabase returns the database instance
func (s *Store) GetDatabase() interface{ Name() string } {
	return s.Database
}

// GetClient returns the MongoDB client
func (s *Store) GetClient() interface{ Disconnect(context.Context) error } {
	return s.Client
}
