package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const sessionCollection = "client_sessions"

// collection is the subset of *mongo.Collection the store uses.
type collection interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error)
}

type sessionDoc struct {
	ID        string    `bson:"_id"`
	Namespace string    `bson:"namespace"`
	Key       string    `bson:"key"`
	Value     string    `bson:"value"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// SessionStore keeps session entries as one document per key, scoped by
// namespace, in the client_sessions collection.
type SessionStore struct {
	coll      collection
	namespace string
	ping      func(ctx context.Context) error
	now       func() time.Time
}

func NewSessionStore(db *mongo.Database, namespace string) *SessionStore {
	s := newSessionStore(db.Collection(sessionCollection), namespace)
	s.ping = func(ctx context.Context) error {
		return db.Client().Ping(ctx, readpref.Primary())
	}
	return s
}

func newSessionStore(coll collection, namespace string) *SessionStore {
	if namespace == "" {
		namespace = "default"
	}
	return &SessionStore{
		coll:      coll,
		namespace: namespace,
		ping:      func(context.Context) error { return nil },
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *SessionStore) Get(ctx context.Context, key string) (string, bool, error) {
	var doc sessionDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": s.id(key)}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("find session entry %s: %w", key, err)
	}
	return doc.Value, true, nil
}

func (s *SessionStore) Set(ctx context.Context, key, value string) error {
	update := bson.M{"$set": bson.M{
		"namespace":  s.namespace,
		"key":        key,
		"value":      value,
		"updated_at": s.now(),
	}}
	_, err := s.coll.UpdateOne(ctx, bson.M{"_id": s.id(key)}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert session entry %s: %w", key, err)
	}
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, key string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": s.id(key)}); err != nil {
		return fmt.Errorf("delete session entry %s: %w", key, err)
	}
	return nil
}

func (s *SessionStore) Ping(ctx context.Context) error {
	return s.ping(ctx)
}

func (s *SessionStore) id(key string) string {
	return s.namespace + ":" + key
}
