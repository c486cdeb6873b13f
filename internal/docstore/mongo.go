// Vidshare - Video Sharing Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidshare

package docstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/tomtom215/vidshare/internal/logging"
)

// uniqueCollection holds one document per claimed unique key.
const uniqueCollection = "_unique"

// MongoStore implements Store on MongoDB. Each collection stores envelopes
// of the form {_id, doc}; doc is the JSON document converted to BSON.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

type mongoEnvelope struct {
	ID  string   `bson:"_id"`
	Doc bson.Raw `bson:"doc"`
}

type mongoUnique struct {
	ID  string `bson:"_id"`
	Ref string `bson:"ref"`
}

// OpenMongo connects to uri and verifies the connection with a ping.
func OpenMongo(ctx context.Context, uri, database string, timeout time.Duration) (*MongoStore, error) {
	if uri == "" {
		return nil, errors.New("mongo uri cannot be empty")
	}
	opts := options.Client().ApplyURI(uri)
	if timeout > 0 {
		opts.SetTimeout(timeout)
	}
	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	s := &MongoStore{client: client, db: client.Database(database)}
	if err := s.Ping(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	logging.Info().Str("database", database).Msg("Document store connected to MongoDB")
	return s, nil
}

func toBSON(doc interface{}) (bson.D, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var d bson.D
	if err := bson.UnmarshalExtJSON(data, false, &d); err != nil {
		return nil, fmt.Errorf("convert to bson: %w", err)
	}
	return d, nil
}

func fromBSON(raw bson.Raw) ([]byte, error) {
	return bson.MarshalExtJSON(raw, false, false)
}

func uniqueID(coll, key string) string {
	return coll + "/" + key
}

func byID(id string) bson.D {
	return bson.D{{Key: "_id", Value: id}}
}

// Get decodes a document into out.
func (s *MongoStore) Get(ctx context.Context, coll, id string, out interface{}) error {
	var env mongoEnvelope
	err := s.db.Collection(coll).FindOne(ctx, byID(id)).Decode(&env)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get %s/%s: %w", coll, id, err)
	}
	data, err := fromBSON(env.Doc)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

// claim inserts unique key documents, undoing earlier claims on failure.
func (s *MongoStore) claim(ctx context.Context, coll, id string, keys []string) ([]string, error) {
	uniq := s.db.Collection(uniqueCollection)
	claimed := make([]string, 0, len(keys))
	for _, k := range keys {
		_, err := uniq.InsertOne(ctx, mongoUnique{ID: uniqueID(coll, k), Ref: id})
		if err == nil {
			claimed = append(claimed, k)
			continue
		}
		if mongo.IsDuplicateKeyError(err) {
			owner, lerr := s.Lookup(ctx, coll, k)
			if lerr == nil && owner == id {
				continue
			}
			s.release(ctx, coll, id, claimed)
			return nil, fmt.Errorf("%w: %s/%s", ErrConflict, coll, k)
		}
		s.release(ctx, coll, id, claimed)
		return nil, fmt.Errorf("claim unique key: %w", err)
	}
	return claimed, nil
}

func (s *MongoStore) release(ctx context.Context, coll, id string, keys []string) {
	uniq := s.db.Collection(uniqueCollection)
	for _, k := range keys {
		filter := bson.D{{Key: "_id", Value: uniqueID(coll, k)}, {Key: "ref", Value: id}}
		if _, err := uniq.DeleteOne(ctx, filter); err != nil {
			logging.Warn().Err(err).Str("collection", coll).Str("key", k).Msg("Failed to release unique key")
		}
	}
}

// Insert claims the unique keys, then inserts the document.
func (s *MongoStore) Insert(ctx context.Context, coll, id string, doc interface{}, keys ...string) error {
	d, err := toBSON(doc)
	if err != nil {
		return err
	}
	claimed, err := s.claim(ctx, coll, id, keys)
	if err != nil {
		return err
	}
	_, err = s.db.Collection(coll).InsertOne(ctx, bson.D{{Key: "_id", Value: id}, {Key: "doc", Value: d}})
	if err != nil {
		s.release(ctx, coll, id, claimed)
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s/%s exists", ErrConflict, coll, id)
		}
		return fmt.Errorf("insert %s: %w", coll, err)
	}
	return nil
}

// Replace overwrites an existing document.
func (s *MongoStore) Replace(ctx context.Context, coll, id string, doc interface{}) error {
	return s.Update(ctx, coll, id, doc, nil, nil)
}

// Update overwrites an existing document and moves its unique keys. New keys
// are claimed before the write so a conflict leaves the document untouched.
func (s *MongoStore) Update(ctx context.Context, coll, id string, doc interface{}, add, drop []string) error {
	d, err := toBSON(doc)
	if err != nil {
		return err
	}
	claimed, err := s.claim(ctx, coll, id, add)
	if err != nil {
		return err
	}
	res, err := s.db.Collection(coll).ReplaceOne(ctx, byID(id), bson.D{{Key: "_id", Value: id}, {Key: "doc", Value: d}})
	if err != nil {
		s.release(ctx, coll, id, claimed)
		return fmt.Errorf("replace %s/%s: %w", coll, id, err)
	}
	if res.MatchedCount == 0 {
		s.release(ctx, coll, id, claimed)
		return ErrNotFound
	}
	s.release(ctx, coll, id, drop)
	return nil
}

// Mutate performs a compare-and-swap on the whole stored document.
func (s *MongoStore) Mutate(ctx context.Context, coll, id string, doc interface{}, fn func() error, keys KeyFunc) error {
	c := s.db.Collection(coll)
	for attempt := 0; attempt < maxMutateAttempts; attempt++ {
		var env mongoEnvelope
		err := c.FindOne(ctx, byID(id)).Decode(&env)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get %s/%s: %w", coll, id, err)
		}
		data, err := fromBSON(env.Doc)
		if err != nil {
			return err
		}
		resetDoc(doc)
		if err := json.Unmarshal(data, doc); err != nil {
			return err
		}
		var before []string
		if keys != nil {
			before = keys()
		}
		if err := fn(); err != nil {
			return err
		}
		var add, drop []string
		if keys != nil {
			add, drop = diffKeys(before, keys())
		}
		d, err := toBSON(doc)
		if err != nil {
			return err
		}
		claimed, err := s.claim(ctx, coll, id, add)
		if err != nil {
			return err
		}
		filter := bson.D{{Key: "_id", Value: id}, {Key: "doc", Value: env.Doc}}
		res, err := c.ReplaceOne(ctx, filter, bson.D{{Key: "_id", Value: id}, {Key: "doc", Value: d}})
		if err != nil {
			s.release(ctx, coll, id, claimed)
			return fmt.Errorf("replace %s/%s: %w", coll, id, err)
		}
		if res.MatchedCount == 1 {
			s.release(ctx, coll, id, drop)
			return nil
		}
		s.release(ctx, coll, id, claimed)
	}
	return fmt.Errorf("%w: %s/%s changed concurrently", ErrConflict, coll, id)
}

// Delete removes a document and releases its unique keys.
func (s *MongoStore) Delete(ctx context.Context, coll, id string, keys ...string) error {
	if _, err := s.db.Collection(coll).DeleteOne(ctx, byID(id)); err != nil {
		return fmt.Errorf("delete %s/%s: %w", coll, id, err)
	}
	s.release(ctx, coll, id, keys)
	return nil
}

// Lookup resolves a unique key to a document id.
func (s *MongoStore) Lookup(ctx context.Context, coll, key string) (string, error) {
	var u mongoUnique
	err := s.db.Collection(uniqueCollection).FindOne(ctx, byID(uniqueID(coll, key))).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("lookup %s/%s: %w", coll, key, err)
	}
	return u.Ref, nil
}

// Scan iterates all documents of a collection ordered by id.
func (s *MongoStore) Scan(ctx context.Context, coll string, fn func(id string, raw []byte) error) error {
	cur, err := s.db.Collection(coll).Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return fmt.Errorf("scan %s: %w", coll, err)
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var env mongoEnvelope
		if err := cur.Decode(&env); err != nil {
			return err
		}
		data, err := fromBSON(env.Doc)
		if err != nil {
			return err
		}
		if err := fn(env.ID, data); err != nil {
			return err
		}
	}
	return cur.Err()
}

// Ping checks the primary is reachable.
func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
