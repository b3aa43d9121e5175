/* api.go
 * This file contains the public methods for interacting with this package. The
 * transport layer should only call through here: the facade authenticates the caller,
 * validates numeric input and delegates to the match engine, stats aggregator and
 * leaderboard service
 * Authors: Zachary Bower
 */

package api

import (
	"fmt"
	"time"

	"typerace-api/api/leaderboard"
	"typerace-api/api/match"
	"typerace-api/api/shared"
	"typerace-api/api/stats"
	"typerace-api/api/store"
)

// API provides the request/response surface for the typing race data layer
type API struct {
	Store       store.Interface
	Matches     *match.Engine
	Stats       *stats.Aggregator
	Leaderboard *leaderboard.Service

	creates *createLimiter
}

// NewAPI creates a new API instance backed by MongoDB
func NewAPI(dbName string, mongoURI string) (*API, error) {
	if dbName == "" {
		return nil, fmt.Errorf("dbName is required")
	}

	s, err := store.NewStore(dbName, mongoURI)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}
	return NewAPIWithStore(s), nil
}

// NewAPIWithStore wires the services over an existing store. Used by NewAPI and by
// tests running against the mock store
func NewAPIWithStore(s store.Interface) *API {
	aggregator := stats.NewAggregator(s)
	return &API{
		Store:       s,
		Matches:     match.NewEngine(s, aggregator),
		Stats:       aggregator,
		Leaderboard: leaderboard.NewService(s),
		creates:     newCreateLimiter(),
	}
}

// requireCaller rejects operations with no authenticated identity
func requireCaller(callerID string) error {
	if callerID == "" {
		return shared.ErrUnauthenticated
	}
	return nil
}

// validateMetrics rejects out-of-range attempt numbers before they reach storage
func validateMetrics(wpm int, accuracy float64, errorCount int) error {
	if wpm < 0 {
		return fmt.Errorf("%w: wpm must not be negative", shared.ErrValidation)
	}
	if accuracy < 0 || accuracy > 100 {
		return fmt.Errorf("%w: accuracy must be between 0 and 100", shared.ErrValidation)
	}
	if errorCount < 0 {
		return fmt.Errorf("%w: error count must not be negative", shared.ErrValidation)
	}
	return nil
}

// CreateMatch creates a waiting match hosted by the caller and returns its id and
// invite code. Rate limited per caller
func (a *API) CreateMatch(callerID string, passageText string, passageSource string) (match.CreatedMatch, error) {
	if err := requireCaller(callerID); err != nil {
		return match.CreatedMatch{}, err
	}
	if !a.creates.allow(callerID) {
		return match.CreatedMatch{}, fmt.Errorf("%w: too many matches created, slow down", shared.ErrRateLimited)
	}
	return a.Matches.CreateMatch(callerID, passageText, passageSource)
}

// JoinMatch seats the caller in the waiting match holding the invite code
func (a *API) JoinMatch(callerID string, inviteCode string) (match.View, error) {
	if err := requireCaller(callerID); err != nil {
		return match.View{}, err
	}
	return a.Matches.JoinMatch(callerID, inviteCode)
}

// SubmitMatchResult records the caller's final metrics and returns the match view
// after any completion transition
func (a *API) SubmitMatchResult(callerID string, matchID string, wpm int, accuracy float64, errorCount int) (match.View, error) {
	if err := requireCaller(callerID); err != nil {
		return match.View{}, err
	}
	if err := validateMetrics(wpm, accuracy, errorCount); err != nil {
		return match.View{}, err
	}
	if err := a.Matches.SubmitResult(callerID, matchID, wpm, accuracy, errorCount); err != nil {
		return match.View{}, err
	}
	return a.Matches.GetMatch(matchID)
}

// CancelMatch cancels the caller's waiting match
func (a *API) CancelMatch(callerID string, matchID string) error {
	if err := requireCaller(callerID); err != nil {
		return err
	}
	return a.Matches.CancelMatch(callerID, matchID)
}

// GetMatch fetches one match as a joined view
func (a *API) GetMatch(callerID string, matchID string) (match.View, error) {
	if err := requireCaller(callerID); err != nil {
		return match.View{}, err
	}
	return a.Matches.GetMatch(matchID)
}

// GetMyMatches fetches the caller's open matches
func (a *API) GetMyMatches(callerID string) ([]match.View, error) {
	if err := requireCaller(callerID); err != nil {
		return nil, err
	}
	return a.Matches.GetMyMatches(callerID)
}

// GetMatchHistory fetches the caller's finished matches
func (a *API) GetMatchHistory(callerID string) ([]match.View, error) {
	if err := requireCaller(callerID); err != nil {
		return nil, err
	}
	return a.Matches.GetMatchHistory(callerID)
}

// RecordSoloAttempt stores a solo practice attempt and folds it into the caller's
// aggregates. The solo counterpart of a match result submission
func (a *API) RecordSoloAttempt(callerID string, wpm int, accuracy float64, errorCount int, passageSource string) error {
	if err := requireCaller(callerID); err != nil {
		return err
	}
	if err := validateMetrics(wpm, accuracy, errorCount); err != nil {
		return err
	}

	attempt := store.TypingAttempt{
		UserID:        callerID,
		PassageSource: passageSource,
		Wpm:           wpm,
		Accuracy:      accuracy,
		Errors:        errorCount,
		CompletedAt:   time.Now().UTC(),
	}
	if _, err := a.Store.InsertTypingAttempt(attempt); err != nil {
		return err
	}
	return a.Stats.FoldAttempt(callerID, attempt)
}

// GetLeaderboard returns the global ranking for a sort key, truncated to limit
func (a *API) GetLeaderboard(sortBy string, limit int) ([]leaderboard.Entry, error) {
	return a.Leaderboard.RankedList(sortBy, limit)
}

// GetUserRank returns the caller's composite rank, population and percentile
func (a *API) GetUserRank(callerID string) (leaderboard.RankSummary, error) {
	if err := requireCaller(callerID); err != nil {
		return leaderboard.RankSummary{}, err
	}
	return a.Leaderboard.UserRank(callerID)
}

// GetNearbyRanks returns the window of ranks around the caller
func (a *API) GetNearbyRanks(callerID string, radius int) ([]leaderboard.Entry, error) {
	if err := requireCaller(callerID); err != nil {
		return nil, err
	}
	return a.Leaderboard.NearbyRanks(callerID, radius)
}

// GetTopPerformers returns the four top-3 lists
func (a *API) GetTopPerformers() (leaderboard.TopPerformers, error) {
	return a.Leaderboard.TopPerformers()
}

// GetGlobalStats returns the population-wide summary
func (a *API) GetGlobalStats() (leaderboard.GlobalStats, error) {
	return a.Leaderboard.GlobalStats()
}

// FindUserRank resolves a fuzzy display-name query to the matched user's rank entry
func (a *API) FindUserRank(query string) (leaderboard.Entry, error) {
	return a.Leaderboard.FindUserRank(query)
}

// RunCleanup runs the administrative cleanup job once
func (a *API) RunCleanup() (stats.CleanupReport, error) {
	return a.Stats.CleanupCorruptAttempts()
}
