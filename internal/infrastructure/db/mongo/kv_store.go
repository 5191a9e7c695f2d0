package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultCollection holds one document per local-store key.
const DefaultCollection = "local_store"

type kvDocument struct {
	Key       string `bson:"_id"`
	Value     []byte `bson:"value"`
	UpdatedAt int64  `bson:"updated_at"`
}

// KVStore keeps local-store documents in a single collection keyed by _id.
type KVStore struct {
	coll    *mongo.Collection
	timeout time.Duration
}

func NewKVStore(db *mongo.Database, collection string, timeout time.Duration) *KVStore {
	if collection == "" {
		collection = DefaultCollection
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &KVStore{coll: db.Collection(collection), timeout: timeout}
}

func (s *KVStore) Get(key string) ([]byte, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	var doc kvDocument
	err := s.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("find %s: %w", key, err)
	}
	return doc.Value, true, nil
}

func (s *KVStore) Set(key string, value []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	doc := kvDocument{Key: key, Value: value, UpdatedAt: time.Now().Unix()}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": key}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}

func (s *KVStore) Delete(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}
