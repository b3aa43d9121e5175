/* search.go
 * Contains fuzzy display-name rank lookup, so a racer can find a friend's standing
 * without knowing their exact name. Same matching approach as elsewhere in the
 * codebase: rank all fuzzy hits, prefer an exact match, otherwise take the best ranked
 * Authors: Zachary Bower
 */

package leaderboard

import (
	"fmt"
	"strings"

	"typerace-api/api/shared"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// FindUserRank resolves a display-name query to the best-matching user's composite
// leaderboard entry
// Preconditions: Receives a non-empty name query
// Postconditions: Returns the matched Entry with its rank populated, or a taxonomy error if nothing matches
func (s *Service) FindUserRank(query string) (Entry, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Entry{}, fmt.Errorf("%w: search query cannot be empty", shared.ErrValidation)
	}

	entries, err := s.rankedByComposite()
	if err != nil {
		return Entry{}, err
	}

	// Match on lowercase; map back to the entry by position in the lowered list
	lowerQuery := strings.ToLower(query)
	names := make([]string, len(entries))
	byName := make(map[string]int, len(entries))
	for i, e := range entries {
		lower := strings.ToLower(e.DisplayName)
		names[i] = lower
		if _, seen := byName[lower]; !seen {
			byName[lower] = i
		}
	}

	matches := fuzzy.RankFind(lowerQuery, names)
	if len(matches) == 0 {
		return Entry{}, fmt.Errorf("%w: no user matching %q", shared.ErrNotFound, query)
	}

	best := matches[0]
	for _, m := range matches {
		if m.Target == lowerQuery {
			best = m
			break
		}
		if m.Distance < best.Distance {
			best = m
		}
	}
	return entries[byName[best.Target]], nil
}
