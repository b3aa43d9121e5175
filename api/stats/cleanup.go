/* cleanup.go
 * Contains the administrative cleanup job: deletes typing attempts failing the WPM
 * sanity rule, zeroes the matching match result rows for in-match attempts, then
 * repairs each affected user's aggregate from what remains. Best-effort by design: a
 * malformed row is logged and skipped, because the job exists to correct prior
 * inconsistency, not to halt on it
 * Authors: Zachary Bower
 */

package stats

import (
	"fmt"
	"log"
)

// SaneWpmLimit is the fixed sanity rule: a recorded WPM above this is treated as
// impossible, the signal of a client-side clock or input bug
const SaneWpmLimit = 300

// CleanupReport summarises one cleanup run
type CleanupReport struct {
	AttemptsDeleted int
	ResultsZeroed   int
	UsersRepaired   int
	RowsSkipped     int
}

// CleanupCorruptAttempts runs the cleanup job. Affected users are collected fully
// before any repair is issued, so no aggregate is recomputed from a partially cleaned
// history, and each affected user is repaired exactly once
// Preconditions: none
// Postconditions: Returns the CleanupReport, or an error only if the initial scan fails
func (a *Aggregator) CleanupCorruptAttempts() (CleanupReport, error) {
	var report CleanupReport

	bad, err := a.Store.FindAttemptsOverWpm(SaneWpmLimit)
	if err != nil {
		return report, fmt.Errorf("cleanup scan failed: %w", err)
	}
	if len(bad) == 0 {
		return report, nil
	}
	log.Printf("cleanup: found %d attempts over %d wpm", len(bad), SaneWpmLimit)

	affected := make(map[string]bool)
	for _, attempt := range bad {
		if attempt.UserID == "" {
			log.Printf("cleanup: skipping attempt %s with no user id", attempt.ID.Hex())
			report.RowsSkipped++
			continue
		}

		// In-match attempts also have a result row feeding winner determination; that
		// row must keep existing, so it is zeroed in place rather than deleted
		if attempt.MatchID != "" {
			if err := a.Store.ZeroMatchResult(attempt.MatchID, attempt.UserID); err != nil {
				log.Printf("cleanup: could not zero result for match %s user %s: %v", attempt.MatchID, attempt.UserID, err)
				report.RowsSkipped++
				continue
			}
			report.ResultsZeroed++
		}

		if err := a.Store.DeleteTypingAttempt(attempt.ID.Hex()); err != nil {
			log.Printf("cleanup: could not delete attempt %s: %v", attempt.ID.Hex(), err)
			report.RowsSkipped++
			continue
		}
		report.AttemptsDeleted++
		affected[attempt.UserID] = true
	}

	// All deletions are done; now recompute each affected user once
	for userID := range affected {
		if err := a.RepairFromHistory(userID); err != nil {
			log.Printf("cleanup: repair failed for user %s: %v", userID, err)
			continue
		}
		report.UsersRepaired++
	}

	log.Printf("cleanup: deleted %d attempts, zeroed %d results, repaired %d users, skipped %d rows",
		report.AttemptsDeleted, report.ResultsZeroed, report.UsersRepaired, report.RowsSkipped)
	return report, nil
}
