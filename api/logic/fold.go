/* fold.go
 * Contains the incremental aggregate arithmetic shared by the live fold path and the
 * repair path. Both must use the identical formula: the incremental mean with rounding
 * is order dependent, so a repair that replays history in completion order reproduces
 * the live-folded aggregate exactly
 * Authors: Zachary Bower
 */

package logic

import (
	"math"

	"typerace-api/api/store"
)

// Fold incorporates one attempt into a running aggregate and returns the new aggregate.
// The caller is responsible for reading and writing the stored document; a missing
// document folds from the zero value.
// TotalWordsTyped accumulates the attempt's WPM as a per-attempt word estimate. That is
// not an actual word count; it is the proxy this system has always stored, kept so
// historical aggregates stay comparable
func Fold(current store.UserStats, wpm int, accuracy float64) store.UserStats {
	n := current.TotalSessions
	next := current

	next.TotalSessions = n + 1
	next.AverageWpm = int(math.Round((float64(current.AverageWpm)*float64(n) + float64(wpm)) / float64(n+1)))
	next.AverageAccuracy = math.Round((current.AverageAccuracy*float64(n) + accuracy) / float64(n+1))
	if wpm > next.BestWpm {
		next.BestWpm = wpm
	}
	if accuracy > next.BestAccuracy {
		next.BestAccuracy = accuracy
	}
	next.TotalWordsTyped = current.TotalWordsTyped + wpm
	next.CompositeScore = CompositeScore(next.BestWpm, next.BestAccuracy)

	return next
}

// Recompute rebuilds a user's aggregate from their full attempt history by folding each
// attempt in order. Attempts must arrive in completion-time order (the store guarantees
// this) so the result matches what incremental folding produced
func Recompute(userID string, attempts []store.TypingAttempt) store.UserStats {
	stats := store.UserStats{UserID: userID}
	for _, a := range attempts {
		stats = Fold(stats, a.Wpm, a.Accuracy)
	}
	return stats
}
