/* engine.go
 * Contains the match engine: the only writer of match and match result state. The record
 * store is atomic per document but offers no cross-document transaction, so every
 * mutating operation on a match holds that match's lock across its read-check-write
 * sequence. The completion check in SubmitResult depends on this: two racing
 * submissions must not both observe "not all finished"
 * Authors: Zachary Bower
 */

package match

import (
	"errors"
	"fmt"
	"time"

	"typerace-api/api/logic"
	"typerace-api/api/shared"
	"typerace-api/api/store"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// minPassageWords rejects degenerate passages that would make WPM meaningless
const minPassageWords = 3

// AttemptSink receives the finishing attempt of each submitted result. Satisfied by the
// stats aggregator; a nil sink drops attempts on the floor (used in some tests)
type AttemptSink interface {
	FoldAttempt(userID string, attempt store.TypingAttempt) error
}

// Engine owns the match lifecycle
type Engine struct {
	Store store.Interface
	Sink  AttemptSink

	locks *shared.KeyedMutex
}

// NewEngine creates a match engine over the given store. sink may be nil
func NewEngine(s store.Interface, sink AttemptSink) *Engine {
	return &Engine{
		Store: s,
		Sink:  sink,
		locks: shared.NewKeyedMutex(),
	}
}

// CreatedMatch is the response to CreateMatch
type CreatedMatch struct {
	MatchID    string
	InviteCode string
}

// validMatchID rejects malformed match ids before any lock is taken. Lock entries live
// for the process lifetime keyed by id, so garbage ids must not reach the lock map
func validMatchID(matchID string) error {
	if _, err := primitive.ObjectIDFromHex(matchID); err != nil {
		return fmt.Errorf("%w: match %s", shared.ErrNotFound, matchID)
	}
	return nil
}

// CreateMatch creates a waiting match hosted by the caller plus the host's zeroed
// result row, and returns the match id and invite code
// Preconditions: Receives caller id, passage text and a passage source label
// Postconditions: Returns the CreatedMatch, or a taxonomy error if it occurs
func (e *Engine) CreateMatch(callerID string, passageText string, passageSource string) (CreatedMatch, error) {
	if logic.PassageWordCount(passageText) < minPassageWords {
		return CreatedMatch{}, fmt.Errorf("%w: passage must contain at least %d words", shared.ErrValidation, minPassageWords)
	}

	code, err := e.newInviteCode()
	if err != nil {
		return CreatedMatch{}, err
	}

	matchID, err := e.Store.InsertMatch(store.Match{
		HostID:        callerID,
		PassageText:   passageText,
		PassageSource: passageSource,
		Status:        store.StatusWaiting,
		InviteCode:    code,
		CreatedAt:     time.Now().UTC(),
	})
	if err != nil {
		return CreatedMatch{}, err
	}

	_, err = e.Store.InsertMatchResult(store.MatchResult{
		MatchID: matchID,
		UserID:  callerID,
	})
	if err != nil {
		return CreatedMatch{}, err
	}

	return CreatedMatch{MatchID: matchID, InviteCode: code}, nil
}

// JoinMatch seats the caller as opponent in the waiting match holding the invite code
// and starts the race
// Preconditions: Receives caller id and a 6 character invite code
// Postconditions: Returns the joined match view, or a taxonomy error if it occurs
func (e *Engine) JoinMatch(callerID string, inviteCode string) (View, error) {
	m, err := e.Store.FindWaitingMatchByCode(inviteCode)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return View{}, fmt.Errorf("%w: no open match for invite code %s", shared.ErrNotFound, inviteCode)
		}
		return View{}, err
	}

	matchID := m.ID.Hex()
	e.locks.Lock(matchID)
	defer e.locks.Unlock(matchID)

	// Re-read under the lock; the code lookup raced with other joins and cancels
	m, err = e.Store.GetMatch(matchID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return View{}, fmt.Errorf("%w: match %s", shared.ErrNotFound, matchID)
		}
		return View{}, err
	}
	if m.Status != store.StatusWaiting {
		return View{}, fmt.Errorf("%w: match is %s", shared.ErrInvalidState, m.Status)
	}
	if m.HostID == callerID {
		return View{}, shared.ErrSelfJoin
	}
	if m.OpponentID != "" {
		return View{}, shared.ErrAlreadyFull
	}

	if err := e.Store.SetMatchOpponent(matchID, callerID, time.Now().UTC()); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return View{}, fmt.Errorf("%w: match is no longer joinable", shared.ErrInvalidState)
		}
		return View{}, err
	}

	_, err = e.Store.InsertMatchResult(store.MatchResult{
		MatchID: matchID,
		UserID:  callerID,
	})
	if err != nil {
		return View{}, err
	}

	return e.GetMatch(matchID)
}

// SubmitResult records the caller's final metrics for an in-progress match, logs the
// typing attempt, folds it into the caller's aggregates, and completes the match if
// both participants have now finished. Winner is the row with the highest WPM, ties
// broken by higher accuracy.
// A step failing after the result row was written leaves the row finished but the
// transition undone; every path through here, duplicate submissions included, re-runs
// the completion check so a retry heals the match instead of wedging it in progress
// Preconditions: Receives caller id, match hex id and the final metrics
// Postconditions: Returns nil, or a taxonomy error if it occurs
func (e *Engine) SubmitResult(callerID string, matchID string, wpm int, accuracy float64, errorCount int) error {
	if err := validMatchID(matchID); err != nil {
		return err
	}

	e.locks.Lock(matchID)
	defer e.locks.Unlock(matchID)

	m, err := e.Store.GetMatch(matchID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return fmt.Errorf("%w: match %s", shared.ErrNotFound, matchID)
		}
		return err
	}
	if m.Status != store.StatusInProgress {
		return fmt.Errorf("%w: match is %s", shared.ErrInvalidState, m.Status)
	}
	if callerID != m.HostID && callerID != m.OpponentID {
		return shared.ErrNotParticipant
	}

	res, err := e.Store.GetMatchResult(matchID, callerID)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return err
		}
		// A participant with no row means JoinMatch seated them but lost the row
		// insert; recreate it so the submission can proceed
		if _, err := e.Store.InsertMatchResult(store.MatchResult{
			MatchID: matchID,
			UserID:  callerID,
		}); err != nil {
			return err
		}
	}
	if res.IsFinished {
		// Recorded by an earlier call that may have failed before completing the
		// match; re-attempt the transition before reporting the duplicate
		if err := e.completeIfAllFinished(matchID, time.Now().UTC()); err != nil {
			return err
		}
		return shared.ErrAlreadySubmitted
	}

	now := time.Now().UTC()
	if err := e.Store.FinishMatchResult(matchID, callerID, wpm, accuracy, errorCount, now); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			if err := e.completeIfAllFinished(matchID, now); err != nil {
				return err
			}
			return shared.ErrAlreadySubmitted
		}
		return err
	}

	attempt := store.TypingAttempt{
		UserID:        callerID,
		MatchID:       matchID,
		PassageSource: m.PassageSource,
		Wpm:           wpm,
		Accuracy:      accuracy,
		Errors:        errorCount,
		CompletedAt:   now,
	}
	if _, err := e.Store.InsertTypingAttempt(attempt); err != nil {
		return err
	}
	if e.Sink != nil {
		if err := e.Sink.FoldAttempt(callerID, attempt); err != nil {
			return err
		}
	}

	return e.completeIfAllFinished(matchID, now)
}

// completeIfAllFinished moves the match to completed if both result rows are finished.
// Both rows are read under the match lock the caller holds, so only one submission can
// observe all-finished first; the conditional update makes the transition idempotent,
// losing harmlessly when the match is already completed
func (e *Engine) completeIfAllFinished(matchID string, completedAt time.Time) error {
	results, err := e.Store.GetMatchResultsByMatch(matchID)
	if err != nil {
		return err
	}
	if len(results) < 2 {
		return nil
	}
	for _, r := range results {
		if !r.IsFinished {
			return nil
		}
	}

	winner, ok := logic.DetermineWinner(results)
	if !ok {
		return nil
	}
	if err := e.Store.SetMatchCompleted(matchID, winner.UserID, completedAt); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil
		}
		return err
	}
	return nil
}

// CancelMatch moves a waiting match to cancelled. Host only; no result or aggregate
// side effects, and the match document is retained
// Preconditions: Receives caller id and match hex id
// Postconditions: Returns nil, or a taxonomy error if it occurs
func (e *Engine) CancelMatch(callerID string, matchID string) error {
	if err := validMatchID(matchID); err != nil {
		return err
	}

	e.locks.Lock(matchID)
	defer e.locks.Unlock(matchID)

	m, err := e.Store.GetMatch(matchID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return fmt.Errorf("%w: match %s", shared.ErrNotFound, matchID)
		}
		return err
	}
	if m.HostID != callerID {
		return fmt.Errorf("%w: only the host can cancel a match", shared.ErrForbidden)
	}
	if m.Status != store.StatusWaiting {
		return fmt.Errorf("%w: match is %s", shared.ErrInvalidState, m.Status)
	}

	if err := e.Store.SetMatchCancelled(matchID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return fmt.Errorf("%w: match is no longer waiting", shared.ErrInvalidState)
		}
		return err
	}
	return nil
}
