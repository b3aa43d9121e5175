/* models.go
 * This file contains the structs that map to DB documents. One struct per collection,
 * mutated only through the methods in the matching file
 * Authors: Zachary Bower
 */

package store

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Match lifecycle states. Transitions are one directional:
// waiting -> in_progress -> completed, with waiting -> cancelled as the only
// other legal edge
const (
	StatusWaiting    = "waiting"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// UserRecord is a profile created by the identity provider. Read-only to this
// service; we join it into leaderboard entries and match views
type UserRecord struct {
	UserID      string    `bson:"_id"`
	DisplayName string    `bson:"display_name,omitempty"`
	Email       string    `bson:"email,omitempty"`
	AvatarURL   string    `bson:"avatar_url,omitempty"`
	CreatedAt   time.Time `bson:"created_at,omitempty"`
}

// Match is one two-player race. Never deleted; cancelled matches are retained
// with status "cancelled"
type Match struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	HostID        string             `bson:"host_id"`
	OpponentID    string             `bson:"opponent_id,omitempty"`
	PassageText   string             `bson:"passage_text"`
	PassageSource string             `bson:"passage_source,omitempty"`
	Status        string             `bson:"status"`
	InviteCode    string             `bson:"invite_code"`
	WinnerID      string             `bson:"winner_id,omitempty"`
	CreatedAt     time.Time          `bson:"created_at"`
	StartedAt     time.Time          `bson:"started_at,omitempty"`
	CompletedAt   time.Time          `bson:"completed_at,omitempty"`
}

// MatchResult is one participant's result row. Created zeroed with
// IsFinished=false the moment the user becomes a participant, written exactly
// once at submission time. At most two rows exist per match
type MatchResult struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	MatchID     string             `bson:"match_id"`
	UserID      string             `bson:"user_id"`
	Wpm         int                `bson:"wpm"`
	Accuracy    float64            `bson:"accuracy"`
	Errors      int                `bson:"errors"`
	IsFinished  bool               `bson:"is_finished"`
	CompletedAt time.Time          `bson:"completed_at,omitempty"`
}

// TypingAttempt is one completed timed typing exercise, solo or in a match.
// Immutable once created; the append-only ledger that UserStats is a cache of.
// MatchID is empty for solo practice attempts
type TypingAttempt struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	UserID        string             `bson:"user_id"`
	MatchID       string             `bson:"match_id,omitempty"`
	PassageSource string             `bson:"passage_source,omitempty"`
	Wpm           int                `bson:"wpm"`
	Accuracy      float64            `bson:"accuracy"`
	Errors        int                `bson:"errors"`
	CompletedAt   time.Time          `bson:"completed_at"`
}

// UserStats is the running aggregate per user, created lazily on the first
// folded attempt and from then on written only by the stats aggregator.
// TotalWordsTyped accumulates the attempt WPM as a per-attempt word estimate;
// that is the historical proxy this system has always used, kept as-is so old
// and new rows stay comparable
type UserStats struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	UserID          string             `bson:"user_id"`
	BestWpm         int                `bson:"best_wpm"`
	AverageWpm      int                `bson:"average_wpm"`
	BestAccuracy    float64            `bson:"best_accuracy"`
	AverageAccuracy float64            `bson:"average_accuracy"`
	TotalSessions   int                `bson:"total_sessions"`
	TotalWordsTyped int                `bson:"total_words_typed"`
	CompositeScore  float64            `bson:"composite_score"`
	LastUpdated     time.Time          `bson:"last_updated"`
}
