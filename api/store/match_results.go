/* match_results.go
 * Contains the methods for interacting with the match_results collection. One row per
 * (match, participant); the row is created zeroed when the user becomes a participant
 * and written exactly once at submission time
 * Authors: Zachary Bower
 */

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// InsertMatchResult stores a new result row, normally zeroed with IsFinished=false
// Preconditions: Receives a MatchResult with match id and user id populated
// Postconditions: Returns the hex id of the inserted row, or an error if it occurs
func (s *Store) InsertMatchResult(result MatchResult) (string, error) {
	res, err := s.Collections.MatchResults.InsertOne(context.TODO(), result)
	if err != nil {
		return "", fmt.Errorf("failed to insert match result: %w", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	return oid.Hex(), nil
}

// GetMatchResult does a DB lookup for one participant's result row in a match
// Preconditions: Receives match hex id and user id
// Postconditions: Returns the MatchResult, mongo.ErrNoDocuments if the caller has no row, or an error if it occurs
func (s *Store) GetMatchResult(matchID string, userID string) (MatchResult, error) {
	var result MatchResult
	err := s.Collections.MatchResults.FindOne(context.TODO(), bson.M{"match_id": matchID, "user_id": userID}).Decode(&result)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return MatchResult{}, err
		}
		return MatchResult{}, fmt.Errorf("error fetching match result from db: %w", err)
	}
	return result, nil
}

// GetMatchResultsByMatch fetches every result row for a match. Completion checks and
// winner determination run off this read while the caller holds the match lock
// Preconditions: Receives match hex id
// Postconditions: Returns a slice of MatchResult (at most two rows), or an error if it occurs
func (s *Store) GetMatchResultsByMatch(matchID string) ([]MatchResult, error) {
	cursor, err := s.Collections.MatchResults.Find(context.TODO(), bson.M{"match_id": matchID})
	if err != nil {
		return nil, fmt.Errorf("error fetching match results from db: %w", err)
	}

	var results []MatchResult
	if err = cursor.All(context.TODO(), &results); err != nil {
		return nil, fmt.Errorf("error unpacking cursor into slice of match results: %w", err)
	}
	return results, nil
}

// FinishMatchResult writes the final metrics and flips IsFinished in one atomic update.
// Conditional on is_finished=false so a row is never re-submitted
// Preconditions: Receives match hex id, user id, the final metrics and the completion time
// Postconditions: Returns nil on success, mongo.ErrNoDocuments if no unfinished row matched, or an error if it occurs
func (s *Store) FinishMatchResult(matchID string, userID string, wpm int, accuracy float64, errorCount int, completedAt time.Time) error {
	filter := bson.M{"match_id": matchID, "user_id": userID, "is_finished": false}
	update := bson.M{"$set": bson.M{
		"wpm":          wpm,
		"accuracy":     accuracy,
		"errors":       errorCount,
		"is_finished":  true,
		"completed_at": completedAt,
	}}

	res, err := s.Collections.MatchResults.UpdateOne(context.TODO(), filter, update)
	if err != nil {
		return fmt.Errorf("failed to finish match result: %w", err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// ZeroMatchResult clears the metrics on a result row in place. Used by the cleanup job
// for corrupted in-match attempts: the row must keep existing because match completion
// depends on it, so it is zeroed rather than deleted
// Preconditions: Receives match hex id and user id
// Postconditions: Returns nil on success, mongo.ErrNoDocuments if no row matched, or an error if it occurs
func (s *Store) ZeroMatchResult(matchID string, userID string) error {
	filter := bson.M{"match_id": matchID, "user_id": userID}
	update := bson.M{"$set": bson.M{
		"wpm":      0,
		"accuracy": 0.0,
		"errors":   0,
	}}

	res, err := s.Collections.MatchResults.UpdateOne(context.TODO(), filter, update)
	if err != nil {
		return fmt.Errorf("failed to zero match result: %w", err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
