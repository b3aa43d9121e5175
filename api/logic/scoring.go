/* scoring.go
 * Contains the scoring formula and winner determination. CompositeScore is the single
 * source of truth for the ranking metric; every consumer calls it rather than inlining
 * the formula
 * Authors: Zachary Bower
 */

package logic

import "typerace-api/api/store"

// CompositeScore maps (words-per-minute, accuracy-percent) to the composite ranking
// metric. Pure, no rounding; consumers round for display only
func CompositeScore(wpm int, accuracy float64) float64 {
	return float64(wpm) * (accuracy / 100)
}

// DetermineWinner picks the winning result row: highest WPM, ties broken by higher
// accuracy. Further ties keep the first row encountered, which follows the store's
// iteration order and is implementation defined, not user visible
// Preconditions: Receives the finished result rows of a match
// Postconditions: Returns the winning row and true, or false if no rows were given
func DetermineWinner(results []store.MatchResult) (store.MatchResult, bool) {
	if len(results) == 0 {
		return store.MatchResult{}, false
	}
	best := results[0]
	for _, r := range results[1:] {
		if r.Wpm > best.Wpm || (r.Wpm == best.Wpm && r.Accuracy > best.Accuracy) {
			best = r
		}
	}
	return best, true
}
