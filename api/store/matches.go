/* matches.go
 * Contains the methods for interacting with the matches collection. Status changes are
 * expressed as conditional single-document updates: the filter carries the expected
 * current status, so an update that lost a race matches zero documents instead of
 * clobbering a later state
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
	"go.mongodb.org/mongo-driver/mongo/options"
)

// InsertMatch stores a new match document
// Preconditions: Receives a Match with status, host and invite code populated
// Postconditions: Returns the hex id of the inserted match, or an error if it occurs
func (s *Store) InsertMatch(match Match) (string, error) {
	res, err := s.Collections.Matches.InsertOne(context.TODO(), match)
	if err != nil {
		return "", fmt.Errorf("failed to insert match: %w", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	return oid.Hex(), nil
}

// GetMatch does a DB lookup for a single match
// Preconditions: Receives a string containing the match hex id
// Postconditions: Returns the Match, mongo.ErrNoDocuments if absent, or an error if it occurs
func (s *Store) GetMatch(matchID string) (Match, error) {
	oid, err := oidFromHex(matchID)
	if err != nil {
		return Match{}, err
	}

	var result Match
	err = s.Collections.Matches.FindOne(context.TODO(), bson.M{"_id": oid}).Decode(&result)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Match{}, err
		}
		return Match{}, fmt.Errorf("error fetching match from db: %w", err)
	}
	return result, nil
}

// FindWaitingMatchByCode looks up the unique waiting match holding an invite code.
// Codes are only unique among waiting matches, so the status is part of the filter
// Preconditions: Receives a string containing a 6 character invite code
// Postconditions: Returns the Match, mongo.ErrNoDocuments if no waiting match holds the code, or an error if it occurs
func (s *Store) FindWaitingMatchByCode(code string) (Match, error) {
	var result Match
	err := s.Collections.Matches.FindOne(context.TODO(), bson.M{"invite_code": code, "status": StatusWaiting}).Decode(&result)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Match{}, err
		}
		return Match{}, fmt.Errorf("error fetching match by invite code: %w", err)
	}
	return result, nil
}

// SetMatchOpponent fills the opponent seat and moves the match to in_progress in one
// atomic update. The filter requires status waiting and no opponent, so a second
// concurrent join matches nothing
// Preconditions: Receives match hex id, opponent user id and the race start time
// Postconditions: Returns nil on success, mongo.ErrNoDocuments if the match was not joinable, or an error if it occurs
func (s *Store) SetMatchOpponent(matchID string, opponentID string, startedAt time.Time) error {
	oid, err := oidFromHex(matchID)
	if err != nil {
		return err
	}

	filter := bson.M{"_id": oid, "status": StatusWaiting, "opponent_id": bson.M{"$exists": false}}
	update := bson.M{"$set": bson.M{
		"opponent_id": opponentID,
		"status":      StatusInProgress,
		"started_at":  startedAt,
	}}

	res, err := s.Collections.Matches.UpdateOne(context.TODO(), filter, update)
	if err != nil {
		return fmt.Errorf("failed to set match opponent: %w", err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// SetMatchCompleted records the winner and moves the match to completed. Conditional on
// status in_progress so the completion transition can only happen once
// Preconditions: Receives match hex id, winner user id and the completion time
// Postconditions: Returns nil on success, mongo.ErrNoDocuments if the match was not in progress, or an error if it occurs
func (s *Store) SetMatchCompleted(matchID string, winnerID string, completedAt time.Time) error {
	oid, err := oidFromHex(matchID)
	if err != nil {
		return err
	}

	filter := bson.M{"_id": oid, "status": StatusInProgress}
	update := bson.M{"$set": bson.M{
		"status":       StatusCompleted,
		"winner_id":    winnerID,
		"completed_at": completedAt,
	}}

	res, err := s.Collections.Matches.UpdateOne(context.TODO(), filter, update)
	if err != nil {
		return fmt.Errorf("failed to complete match: %w", err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// SetMatchCancelled moves a waiting match to cancelled. The document is retained
// Preconditions: Receives match hex id
// Postconditions: Returns nil on success, mongo.ErrNoDocuments if the match was not waiting, or an error if it occurs
func (s *Store) SetMatchCancelled(matchID string) error {
	oid, err := oidFromHex(matchID)
	if err != nil {
		return err
	}

	filter := bson.M{"_id": oid, "status": StatusWaiting}
	update := bson.M{"$set": bson.M{"status": StatusCancelled}}

	res, err := s.Collections.Matches.UpdateOne(context.TODO(), filter, update)
	if err != nil {
		return fmt.Errorf("failed to cancel match: %w", err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// GetMatchesByUser fetches matches the user participates in as host or opponent,
// optionally filtered by status, most recent first
// Preconditions: Receives user id, optional status filter (nil means any) and a result limit (0 means no limit)
// Postconditions: Returns a slice of Match ordered by created_at descending, or an error if it occurs
func (s *Store) GetMatchesByUser(userID string, statuses []string, limit int64) ([]Match, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"host_id": userID},
		bson.M{"opponent_id": userID},
	}}
	if len(statuses) > 0 {
		filter["status"] = bson.M{"$in": statuses}
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts = opts.SetLimit(limit)
	}

	cursor, err := s.Collections.Matches.Find(context.TODO(), filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error fetching matches from db: %w", err)
	}

	var results []Match
	if err = cursor.All(context.TODO(), &results); err != nil {
		return nil, fmt.Errorf("error unpacking cursor into slice of matches: %w", err)
	}
	return results, nil
}
