/* attempts.go
 * Contains the methods for interacting with the typing_attempts collection. Attempts are
 * append-only; the one exception is the cleanup job, which deletes rows failing the
 * sanity rule before recomputing aggregates
 * Authors: Zachary Bower
 */

package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// InsertTypingAttempt stores one completed attempt
// Preconditions: Receives a TypingAttempt with user id, metrics and completion time populated
// Postconditions: Returns the hex id of the inserted attempt, or an error if it occurs
func (s *Store) InsertTypingAttempt(attempt TypingAttempt) (string, error) {
	res, err := s.Collections.Attempts.InsertOne(context.TODO(), attempt)
	if err != nil {
		return "", fmt.Errorf("failed to insert typing attempt: %w", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	return oid.Hex(), nil
}

// GetAttemptsByUser fetches a user's full attempt history in completion-time order.
// The repair path folds these in order, so the sort matters: the incremental average
// is order dependent and must replay the same sequence the live folds saw
// Preconditions: Receives user id
// Postconditions: Returns a slice of TypingAttempt ordered by completed_at ascending, or an error if it occurs
func (s *Store) GetAttemptsByUser(userID string) ([]TypingAttempt, error) {
	opts := options.Find().SetSort(bson.D{{Key: "completed_at", Value: 1}})
	cursor, err := s.Collections.Attempts.Find(context.TODO(), bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("error fetching attempts from db: %w", err)
	}

	var results []TypingAttempt
	if err = cursor.All(context.TODO(), &results); err != nil {
		return nil, fmt.Errorf("error unpacking cursor into slice of attempts: %w", err)
	}
	return results, nil
}

// FindAttemptsOverWpm scans for attempts above a WPM threshold across all users.
// Used by the cleanup job to locate rows produced by client clock or input bugs
// Preconditions: Receives the threshold; rows strictly above it are returned
// Postconditions: Returns the matching attempts, or an error if it occurs
func (s *Store) FindAttemptsOverWpm(threshold int) ([]TypingAttempt, error) {
	cursor, err := s.Collections.Attempts.Find(context.TODO(), bson.M{"wpm": bson.M{"$gt": threshold}})
	if err != nil {
		return nil, fmt.Errorf("error scanning attempts: %w", err)
	}

	var results []TypingAttempt
	if err = cursor.All(context.TODO(), &results); err != nil {
		return nil, fmt.Errorf("error unpacking cursor into slice of attempts: %w", err)
	}
	return results, nil
}

// DeleteTypingAttempt removes one attempt row. Only the cleanup job calls this
// Preconditions: Receives the attempt hex id
// Postconditions: Returns nil on success, mongo.ErrNoDocuments if the row was already gone, or an error if it occurs
func (s *Store) DeleteTypingAttempt(attemptID string) error {
	oid, err := oidFromHex(attemptID)
	if err != nil {
		return err
	}

	res, err := s.Collections.Attempts.DeleteOne(context.TODO(), bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete typing attempt: %w", err)
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
