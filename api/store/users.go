/* users.go
 * Contains the methods for reading the users collection. Profiles are created by the
 * identity provider; this service never writes them
 * Authors: Zachary Bower
 */

package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// GetUser does a DB lookup for a single user profile
// Preconditions: Receives a string containing the user id
// Postconditions: Returns the UserRecord, mongo.ErrNoDocuments if absent, or an error if it occurs
func (s *Store) GetUser(userID string) (UserRecord, error) {
	var result UserRecord
	err := s.Collections.Users.FindOne(context.TODO(), bson.M{"_id": userID}).Decode(&result)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return UserRecord{}, err
		}
		return UserRecord{}, fmt.Errorf("error fetching user from db: %w", err)
	}
	return result, nil
}

// GetUsersByIDs fetches a batch of user profiles in one query. Used when joining
// profile summaries into match views and leaderboard entries
// Preconditions: Receives a slice of user ids, duplicates allowed
// Postconditions: Returns a map keyed by user id; ids with no profile are simply absent
func (s *Store) GetUsersByIDs(userIDs []string) (map[string]UserRecord, error) {
	users := make(map[string]UserRecord)
	if len(userIDs) == 0 {
		return users, nil
	}

	cursor, err := s.Collections.Users.Find(context.TODO(), bson.M{"_id": bson.M{"$in": userIDs}})
	if err != nil {
		return nil, fmt.Errorf("error fetching users from db: %w", err)
	}

	var results []UserRecord
	if err = cursor.All(context.TODO(), &results); err != nil {
		return nil, fmt.Errorf("error unpacking cursor into slice of users: %w", err)
	}

	for _, u := range results {
		users[u.UserID] = u
	}
	return users, nil
}
