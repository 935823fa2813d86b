/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The Taxinomia Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package optionset

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/google/eventpivot/logger"
)

// Collection is the MongoDB collection holding option sets.
const Collection = "optionSets"

// MongoStore reads option sets from MongoDB documents of the form
// {_id, version, options: [{code, name}]}.
type MongoStore struct {
	coll *mongo.Collection
}

// NewMongoStore creates a store on coll.
func NewMongoStore(coll *mongo.Collection) *MongoStore {
	return &MongoStore{coll: coll}
}

// Connect connects to uri and returns a store on the option set collection
// of database. Close the client when done.
func Connect(ctx context.Context, uri, database string) (*MongoStore, *mongo.Client, error) {
	if uri == "" {
		return nil, nil, errors.New("database connection URL is empty")
	}
	clientOptions := options.Client().ApplyURI(uri).
		SetMaxPoolSize(20).
		SetConnectTimeout(5 * time.Second).
		SetSocketTimeout(10 * time.Second)

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	logger.GetLogger("optionset").WithField("database", database).Info("connected to MongoDB")
	return NewMongoStore(client.Database(database).Collection(Collection)), client, nil
}

// Get implements Store.
func (s *MongoStore) Get(ctx context.Context, id string) (*OptionSet, error) {
	var set OptionSet
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&set)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read option set %s: %w", id, err)
	}
	return &set, nil
}

// Version implements Store.
func (s *MongoStore) Version(ctx context.Context, id string) (int, error) {
	var doc struct {
		Version int `bson:"version"`
	}
	opts := options.FindOne().SetProjection(bson.M{"version": 1})
	err := s.coll.FindOne(ctx, bson.M{"_id": id}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read option set version %s: %w", id, err)
	}
	return doc.Version, nil
}

// Put upserts an option set.
func (s *MongoStore) Put(ctx context.Context, set *OptionSet) error {
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": set.ID}, set, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to write option set %s: %w", set.ID, err)
	}
	return nil
}
