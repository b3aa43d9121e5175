/* leaderboard.go
 * Contains the read-only ranking queries over user_stats joined with user profiles.
 * Every query that needs a full ordering re-sorts the whole population on each call;
 * there is no persisted rank column. That is O(n log n) per read and fine while
 * user_stats stays small next to match and attempt volume, but it is the first place
 * to revisit if the population grows
 * Authors: Zachary Bower
 */

package leaderboard

import (
	"fmt"
	"math"
	"sort"

	"typerace-api/api/logic"
	"typerace-api/api/shared"
	"typerace-api/api/store"
)

// Sort keys accepted by RankedList
const (
	SortComposite = "composite"
	SortWpm       = "wpm"
	SortAccuracy  = "accuracy"
)

// Service answers ranking queries. Read-only; it never writes any collection
type Service struct {
	Store store.Interface
}

// NewService creates a leaderboard service over the given store
func NewService(s store.Interface) *Service {
	return &Service{Store: s}
}

// Entry is one ranked row joined with the user's profile summary
type Entry struct {
	Rank            int
	UserID          string
	DisplayName     string
	AvatarURL       string
	BestWpm         int
	AverageWpm      int
	BestAccuracy    float64
	AverageAccuracy float64
	TotalSessions   int
	CompositeScore  float64
	IsCaller        bool
}

// RankSummary is the caller's standing within the whole population
type RankSummary struct {
	Rank       int
	Population int
	Percentile int
}

// TopPerformers holds the four independent top-3 lists
type TopPerformers struct {
	FastestWpm       []Entry
	MostAccurate     []Entry
	HighestComposite []Entry
	MostSessions     []Entry
}

// GlobalStats is the population-wide summary. AverageWpm and AverageAccuracy are means
// of the per-user averages, not re-weighted by session count; a known approximation
// kept as-is
type GlobalStats struct {
	Population      int
	TotalSessions   int
	AverageWpm      float64
	AverageAccuracy float64
	MaxBestWpm      int
	MaxBestAccuracy float64
}

// compositeOf returns the stored composite score, falling back to the shared scoring
// function for documents written before the score was persisted. The same function the
// aggregator uses, so the two can never diverge
func compositeOf(st store.UserStats) float64 {
	if st.CompositeScore > 0 {
		return st.CompositeScore
	}
	return logic.CompositeScore(st.BestWpm, st.BestAccuracy)
}

// loadEntries fetches the whole population joined with profiles, unranked and unsorted
func (s *Service) loadEntries() ([]Entry, error) {
	allStats, err := s.Store.GetAllUserStats()
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(allStats))
	for _, st := range allStats {
		ids = append(ids, st.UserID)
	}
	users, err := s.Store.GetUsersByIDs(ids)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(allStats))
	for _, st := range allStats {
		u := users[st.UserID]
		entries = append(entries, Entry{
			UserID:          st.UserID,
			DisplayName:     shared.DisplayName(u.DisplayName, u.Email),
			AvatarURL:       u.AvatarURL,
			BestWpm:         st.BestWpm,
			AverageWpm:      st.AverageWpm,
			BestAccuracy:    st.BestAccuracy,
			AverageAccuracy: st.AverageAccuracy,
			TotalSessions:   st.TotalSessions,
			CompositeScore:  compositeOf(st),
		})
	}
	return entries, nil
}

// sortEntries orders entries descending by the sort key with its fixed secondary
// tie-break, then assigns 1-based ranks. Equal secondary keys keep slice order, which
// is implementation defined and deliberately not part of the contract
func sortEntries(entries []Entry, sortBy string) error {
	var less func(a, b Entry) bool
	switch sortBy {
	case SortComposite:
		less = func(a, b Entry) bool {
			if a.CompositeScore != b.CompositeScore {
				return a.CompositeScore > b.CompositeScore
			}
			return a.TotalSessions > b.TotalSessions
		}
	case SortWpm:
		less = func(a, b Entry) bool {
			if a.BestWpm != b.BestWpm {
				return a.BestWpm > b.BestWpm
			}
			return a.BestAccuracy > b.BestAccuracy
		}
	case SortAccuracy:
		less = func(a, b Entry) bool {
			if a.BestAccuracy != b.BestAccuracy {
				return a.BestAccuracy > b.BestAccuracy
			}
			return a.BestWpm > b.BestWpm
		}
	default:
		return fmt.Errorf("%w: unknown sort key %q", shared.ErrValidation, sortBy)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return less(entries[i], entries[j])
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return nil
}

// RankedList returns the global ranking by the given sort key, truncated to limit
// Preconditions: Receives a sort key (composite, wpm or accuracy) and a limit; limit <= 0 means no truncation
// Postconditions: Returns the ranked entries, or an error if it occurs
func (s *Service) RankedList(sortBy string, limit int) ([]Entry, error) {
	entries, err := s.loadEntries()
	if err != nil {
		return nil, err
	}
	if err := sortEntries(entries, sortBy); err != nil {
		return nil, err
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// rankedByComposite is the full composite ordering shared by UserRank, NearbyRanks and
// FindUserRank
func (s *Service) rankedByComposite() ([]Entry, error) {
	entries, err := s.loadEntries()
	if err != nil {
		return nil, err
	}
	if err := sortEntries(entries, SortComposite); err != nil {
		return nil, err
	}
	return entries, nil
}

// UserRank returns the caller's 1-based composite rank, the population size and the
// percentile round((1 - rank/population) * 100)
// Preconditions: Receives user id
// Postconditions: Returns the RankSummary, or a taxonomy error if the user has no stats
func (s *Service) UserRank(userID string) (RankSummary, error) {
	entries, err := s.rankedByComposite()
	if err != nil {
		return RankSummary{}, err
	}

	for _, e := range entries {
		if e.UserID == userID {
			return RankSummary{
				Rank:       e.Rank,
				Population: len(entries),
				Percentile: int(math.Round((1 - float64(e.Rank)/float64(len(entries))) * 100)),
			}, nil
		}
	}
	return RankSummary{}, fmt.Errorf("%w: no stats for user %s", shared.ErrNotFound, userID)
}

// NearbyRanks returns the contiguous window of composite ranks around the caller,
// clamped to the population bounds, with the caller's own entry flagged
// Preconditions: Receives user id and a radius >= 0
// Postconditions: Returns the window entries, or a taxonomy error if the user has no stats
func (s *Service) NearbyRanks(userID string, radius int) ([]Entry, error) {
	if radius < 0 {
		return nil, fmt.Errorf("%w: radius must not be negative", shared.ErrValidation)
	}

	entries, err := s.rankedByComposite()
	if err != nil {
		return nil, err
	}

	pos := -1
	for i, e := range entries {
		if e.UserID == userID {
			pos = i
			break
		}
	}
	if pos < 0 {
		return nil, fmt.Errorf("%w: no stats for user %s", shared.ErrNotFound, userID)
	}

	lo := pos - radius
	if lo < 0 {
		lo = 0
	}
	hi := pos + radius + 1
	if hi > len(entries) {
		hi = len(entries)
	}

	window := make([]Entry, hi-lo)
	copy(window, entries[lo:hi])
	for i := range window {
		window[i].IsCaller = window[i].UserID == userID
	}
	return window, nil
}

// TopPerformers returns four independent top-3 lists of the same population: best WPM,
// best accuracy, composite score and session count
// Preconditions: none
// Postconditions: Returns the TopPerformers, or an error if it occurs
func (s *Service) TopPerformers() (TopPerformers, error) {
	const topN = 3

	top := func(sortBy string) ([]Entry, error) {
		return s.RankedList(sortBy, topN)
	}

	fastest, err := top(SortWpm)
	if err != nil {
		return TopPerformers{}, err
	}
	accurate, err := top(SortAccuracy)
	if err != nil {
		return TopPerformers{}, err
	}
	composite, err := top(SortComposite)
	if err != nil {
		return TopPerformers{}, err
	}

	// Session count is not a RankedList sort key; order it directly
	entries, err := s.loadEntries()
	if err != nil {
		return TopPerformers{}, err
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].TotalSessions != entries[j].TotalSessions {
			return entries[i].TotalSessions > entries[j].TotalSessions
		}
		return entries[i].CompositeScore > entries[j].CompositeScore
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	if len(entries) > topN {
		entries = entries[:topN]
	}

	return TopPerformers{
		FastestWpm:       fastest,
		MostAccurate:     accurate,
		HighestComposite: composite,
		MostSessions:     entries,
	}, nil
}

// GlobalStats returns the population-wide summary
// Preconditions: none
// Postconditions: Returns the GlobalStats; an empty population yields all zeros
func (s *Service) GlobalStats() (GlobalStats, error) {
	allStats, err := s.Store.GetAllUserStats()
	if err != nil {
		return GlobalStats{}, err
	}
	if len(allStats) == 0 {
		return GlobalStats{}, nil
	}

	var g GlobalStats
	g.Population = len(allStats)
	var sumWpm, sumAcc float64
	for _, st := range allStats {
		g.TotalSessions += st.TotalSessions
		sumWpm += float64(st.AverageWpm)
		sumAcc += st.AverageAccuracy
		if st.BestWpm > g.MaxBestWpm {
			g.MaxBestWpm = st.BestWpm
		}
		if st.BestAccuracy > g.MaxBestAccuracy {
			g.MaxBestAccuracy = st.BestAccuracy
		}
	}
	g.AverageWpm = sumWpm / float64(len(allStats))
	g.AverageAccuracy = sumAcc / float64(len(allStats))
	return g, nil
}
