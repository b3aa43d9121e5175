/* views.go
 * Contains the read-only match projections: a match joined with participant profile
 * summaries and result rows. Pure reads, consistent at read time only
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

	"go.mongodb.org/mongo-driver/mongo"
)

// historyLimit caps GetMatchHistory reads
const historyLimit = 50

// Participant is one racer's slice of a match view
type Participant struct {
	UserID      string
	DisplayName string
	AvatarURL   string
	IsHost      bool
	Wpm         int
	Accuracy    float64
	Errors      int
	IsFinished  bool
}

// View is a match joined with its participants for the presentation layer
type View struct {
	MatchID       string
	Status        string
	PassageText   string
	PassageSource string
	WordCount     int
	InviteCode    string
	HostID        string
	OpponentID    string
	WinnerID      string
	CreatedAt     time.Time
	StartedAt     time.Time
	CompletedAt   time.Time
	Participants  []Participant
}

// GetMatch fetches one match as a joined view
// Preconditions: Receives match hex id
// Postconditions: Returns the View, or a taxonomy error if it occurs
func (e *Engine) GetMatch(matchID string) (View, error) {
	m, err := e.Store.GetMatch(matchID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return View{}, fmt.Errorf("%w: match %s", shared.ErrNotFound, matchID)
		}
		return View{}, err
	}
	return e.buildView(m)
}

// GetMyMatches fetches the caller's open matches (waiting or in progress), newest first
// Preconditions: Receives caller id
// Postconditions: Returns a slice of View, or an error if it occurs
func (e *Engine) GetMyMatches(callerID string) ([]View, error) {
	matches, err := e.Store.GetMatchesByUser(callerID, []string{store.StatusWaiting, store.StatusInProgress}, 0)
	if err != nil {
		return nil, err
	}
	return e.buildViews(matches)
}

// GetMatchHistory fetches the caller's finished matches (completed or cancelled),
// newest first, capped at historyLimit
// Preconditions: Receives caller id
// Postconditions: Returns a slice of View, or an error if it occurs
func (e *Engine) GetMatchHistory(callerID string) ([]View, error) {
	matches, err := e.Store.GetMatchesByUser(callerID, []string{store.StatusCompleted, store.StatusCancelled}, historyLimit)
	if err != nil {
		return nil, err
	}
	return e.buildViews(matches)
}

func (e *Engine) buildViews(matches []store.Match) ([]View, error) {
	views := make([]View, 0, len(matches))
	for _, m := range matches {
		v, err := e.buildView(m)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}

// buildView joins one match with its result rows and participant profiles. The invite
// code is only exposed while the match is waiting; once joined it has no further use
func (e *Engine) buildView(m store.Match) (View, error) {
	matchID := m.ID.Hex()

	results, err := e.Store.GetMatchResultsByMatch(matchID)
	if err != nil {
		return View{}, err
	}

	ids := []string{m.HostID}
	if m.OpponentID != "" {
		ids = append(ids, m.OpponentID)
	}
	users, err := e.Store.GetUsersByIDs(ids)
	if err != nil {
		return View{}, err
	}

	v := View{
		MatchID:       matchID,
		Status:        m.Status,
		PassageText:   m.PassageText,
		PassageSource: m.PassageSource,
		WordCount:     logic.PassageWordCount(m.PassageText),
		HostID:        m.HostID,
		OpponentID:    m.OpponentID,
		WinnerID:      m.WinnerID,
		CreatedAt:     m.CreatedAt,
		StartedAt:     m.StartedAt,
		CompletedAt:   m.CompletedAt,
	}
	if m.Status == store.StatusWaiting {
		v.InviteCode = m.InviteCode
	}

	// Host first, then opponent, regardless of result row order
	for _, id := range ids {
		for _, r := range results {
			if r.UserID != id {
				continue
			}
			u := users[id]
			v.Participants = append(v.Participants, Participant{
				UserID:      id,
				DisplayName: shared.DisplayName(u.DisplayName, u.Email),
				AvatarURL:   u.AvatarURL,
				IsHost:      id == m.HostID,
				Wpm:         r.Wpm,
				Accuracy:    r.Accuracy,
				Errors:      r.Errors,
				IsFinished:  r.IsFinished,
			})
		}
	}
	return v, nil
}
