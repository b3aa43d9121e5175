/* store.go
 * Contains the store struct and NewStore function. The methods for this package were split into five files:
 * users, matches, match_results, attempts and user_stats. Each of these files contain methods for interacting
 * with that part of the database
 * Authors: Zachary Bower
 */

package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	Client      *mongo.Client
	Database    *mongo.Database
	Collections struct {
		Users        *mongo.Collection
		Matches      *mongo.Collection
		MatchResults *mongo.Collection
		Attempts     *mongo.Collection
		UserStats    *mongo.Collection
	}
}

// Function for initialising Store. Connects to Mongo and binds the collection handles
// Preconditions: Receives strings containing dbName and mongoURI
// Postconditions: Returns pointer to the Store object, or error if it occurs
func NewStore(dbName string, mongoURI string) (*Store, error) {
	if dbName == "" {
		return nil, fmt.Errorf("dbName cannot be empty")
	}

	client, err := mongo.Connect(context.TODO(), options.Client().ApplyURI(mongoURI))
	if err != nil {
		return nil, err
	}
	db := client.Database(dbName)

	s := &Store{
		Client:   client,
		Database: db,
	}
	s.Collections.Users = db.Collection("users")
	s.Collections.Matches = db.Collection("matches")
	s.Collections.MatchResults = db.Collection("match_results")
	s.Collections.Attempts = db.Collection("typing_attempts")
	s.Collections.UserStats = db.Collection("user_stats")
	return s, nil
}

// oidFromHex converts a hex id from the service layer into an ObjectID filter value
// Preconditions: Receives a string containing a 24 character hex id
// Postconditions: Returns the ObjectID, or mongo.ErrNoDocuments for a malformed id so
// callers treat it the same as a missing record
func oidFromHex(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, mongo.ErrNoDocuments
	}
	return oid, nil
}
