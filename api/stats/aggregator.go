/* aggregator.go
 * Contains the stats aggregator: folds finished attempts into per-user running
 * aggregates and rebuilds them from raw history. Folds for the same user are serialized
 * behind a per-user lock because the incremental average reads then writes the same
 * document; folds for different users run freely in parallel
 * Authors: Zachary Bower
 */

package stats

import (
	"errors"
	"fmt"
	"time"

	"typerace-api/api/logic"
	"typerace-api/api/shared"
	"typerace-api/api/store"

	"go.mongodb.org/mongo-driver/mongo"
)

// Aggregator is the only writer of user_stats documents
type Aggregator struct {
	Store store.Interface

	locks *shared.KeyedMutex
}

// NewAggregator creates an aggregator over the given store
func NewAggregator(s store.Interface) *Aggregator {
	return &Aggregator{
		Store: s,
		locks: shared.NewKeyedMutex(),
	}
}

// FoldAttempt incorporates one finished attempt into the user's aggregate, creating the
// aggregate document lazily on the first fold. No attempt is ever re-folded; the
// typing_attempts collection is the append-only ledger this aggregate caches
// Preconditions: Receives user id and the attempt, which has already been persisted
// Postconditions: Returns nil, or an error if it occurs
func (a *Aggregator) FoldAttempt(userID string, attempt store.TypingAttempt) error {
	a.locks.Lock(userID)
	defer a.locks.Unlock(userID)

	current, err := a.Store.GetUserStats(userID)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return err
		}
		current = store.UserStats{UserID: userID}
	}

	next := logic.Fold(current, attempt.Wpm, attempt.Accuracy)
	next.UserID = userID
	next.LastUpdated = time.Now().UTC()

	if err := a.Store.UpsertUserStats(next); err != nil {
		return fmt.Errorf("failed to fold attempt for user %s: %w", userID, err)
	}
	return nil
}

// RepairFromHistory recomputes the user's aggregate from their full attempt history and
// replaces the stored document wholesale. The recovery path for drifted aggregates;
// replays history in completion order with the same fold arithmetic, so a healthy
// aggregate is reproduced exactly
// Preconditions: Receives user id
// Postconditions: Returns nil, or an error if it occurs
func (a *Aggregator) RepairFromHistory(userID string) error {
	a.locks.Lock(userID)
	defer a.locks.Unlock(userID)

	attempts, err := a.Store.GetAttemptsByUser(userID)
	if err != nil {
		return fmt.Errorf("failed to load attempt history for user %s: %w", userID, err)
	}

	stats := logic.Recompute(userID, attempts)
	stats.LastUpdated = time.Now().UTC()

	if err := a.Store.UpsertUserStats(stats); err != nil {
		return fmt.Errorf("failed to repair stats for user %s: %w", userID, err)
	}
	return nil
}
