/* user_stats.go
 * Contains the methods for interacting with the user_stats collection. One document per
 * user, written only by the stats aggregator
 * Authors: Zachary Bower
 */

package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GetUserStats does a DB lookup for a user's aggregate document
// Preconditions: Receives user id
// Postconditions: Returns the UserStats, mongo.ErrNoDocuments if the user has no folded attempts yet, or an error if it occurs
func (s *Store) GetUserStats(userID string) (UserStats, error) {
	var result UserStats
	err := s.Collections.UserStats.FindOne(context.TODO(), bson.M{"user_id": userID}).Decode(&result)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return UserStats{}, err
		}
		return UserStats{}, fmt.Errorf("error fetching user stats from db: %w", err)
	}
	return result, nil
}

// UpsertUserStats replaces the user's aggregate document in a single atomic write,
// creating it on the first fold. A replace rather than field patches so a repair can
// overwrite a drifted document wholesale
// Preconditions: Receives a UserStats with UserID populated
// Postconditions: Returns nil, or an error if it occurs
func (s *Store) UpsertUserStats(stats UserStats) error {
	if stats.UserID == "" {
		return fmt.Errorf("user stats missing user id")
	}

	filter := bson.M{"user_id": stats.UserID}
	// Replacement documents must not carry an _id; the zero ObjectID is dropped by omitempty
	stats.ID = primitive.NilObjectID
	opts := options.Replace().SetUpsert(true)

	_, err := s.Collections.UserStats.ReplaceOne(context.TODO(), filter, stats, opts)
	if err != nil {
		return fmt.Errorf("user stats upsert failed: %w", err)
	}
	return nil
}

// GetAllUserStats fetches every aggregate document. The leaderboard re-sorts this full
// population on each read; acceptable while user_stats stays small relative to match
// and attempt volume, but O(n log n) per leaderboard call
// Preconditions: none
// Postconditions: Returns a slice of UserStats, or an error if it occurs
func (s *Store) GetAllUserStats() ([]UserStats, error) {
	cursor, err := s.Collections.UserStats.Find(context.TODO(), bson.M{})
	if err != nil {
		return nil, fmt.Errorf("error fetching user stats from db: %w", err)
	}

	var results []UserStats
	if err = cursor.All(context.TODO(), &results); err != nil {
		return nil, fmt.Errorf("error unpacking cursor into slice of user stats: %w", err)
	}
	return results, nil
}
