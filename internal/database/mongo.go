package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gdg-garage/crawl-registration-api/internal/models"
	"github.com/gdg-garage/crawl-registration-api/internal/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const mongoConnectTimeout = 10 * time.Second

// MongoStore is the production backend.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

func OpenMongo(ctx context.Context, uri, database string) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w: %w", store.ErrUnavailable, err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w: %w", store.ErrUnavailable, err)
	}
	return &MongoStore{client: client, db: client.Database(database)}, nil
}

func (s *MongoStore) Find(ctx context.Context, collection string, filter store.Filter, out any) error {
	cur, err := s.db.Collection(collection).Find(ctx, mongoFilter(filter))
	if err != nil {
		return wrapMongo("find "+collection, err)
	}
	defer cur.Close(ctx)
	if err := cur.All(ctx, out); err != nil {
		return wrapMongo("decode "+collection, err)
	}
	return nil
}

func (s *MongoStore) FindOne(ctx context.Context, collection string, filter store.Filter, out any) error {
	err := s.db.Collection(collection).FindOne(ctx, mongoFilter(filter)).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return store.ErrNotFound
	}
	if err != nil {
		return wrapMongo("find one "+collection, err)
	}
	return nil
}

func (s *MongoStore) InsertOne(ctx context.Context, collection string, doc any) (models.ID, error) {
	res, err := s.db.Collection(collection).InsertOne(ctx, doc)
	if err != nil {
		return "", wrapMongo("insert "+collection, err)
	}
	return models.IDOf(res.InsertedID), nil
}

func (s *MongoStore) InsertMany(ctx context.Context, collection string, docs []any) ([]models.ID, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	res, err := s.db.Collection(collection).InsertMany(ctx, docs)
	if err != nil {
		return nil, wrapMongo("insert many "+collection, err)
	}
	ids := make([]models.ID, 0, len(res.InsertedIDs))
	for _, id := range res.InsertedIDs {
		ids = append(ids, models.IDOf(id))
	}
	return ids, nil
}

func (s *MongoStore) UpdateOne(ctx context.Context, collection string, filter store.Filter, set map[string]any) (int64, error) {
	res, err := s.db.Collection(collection).UpdateOne(ctx, mongoFilter(filter), bson.M{"$set": set})
	if err != nil {
		return 0, wrapMongo("update "+collection, err)
	}
	return res.MatchedCount, nil
}

func (s *MongoStore) DeleteMany(ctx context.Context, collection string, filter store.Filter) (int64, error) {
	res, err := s.db.Collection(collection).DeleteMany(ctx, mongoFilter(filter))
	if err != nil {
		return 0, wrapMongo("delete "+collection, err)
	}
	return res.DeletedCount, nil
}

func (s *MongoStore) CountDocuments(ctx context.Context, collection string, filter store.Filter) (int64, error) {
	n, err := s.db.Collection(collection).CountDocuments(ctx, mongoFilter(filter))
	if err != nil {
		return 0, wrapMongo("count "+collection, err)
	}
	return n, nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// mongoFilter translates a store.Filter. Id values are matched both as given
// and, when they look like one, as an ObjectID, so string ids handed out by the
// API find documents whose keys were generated by the server.
func mongoFilter(f store.Filter) bson.M {
	m := bson.M{}
	for k, v := range f {
		if k == store.IDField {
			m[k] = bson.M{"$in": idCandidates(v)}
			continue
		}
		if in, ok := v.(store.In); ok {
			m[k] = bson.M{"$in": []any(in)}
			continue
		}
		m[k] = v
	}
	return m
}

func idCandidates(v any) []any {
	var raw []any
	if in, ok := v.(store.In); ok {
		raw = in
	} else {
		raw = []any{v}
	}
	out := make([]any, 0, len(raw)*2)
	for _, r := range raw {
		id := models.IDOf(r).String()
		out = append(out, id)
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			out = append(out, oid)
		}
	}
	return out
}

func wrapMongo(op string, err error) error {
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) ||
		errors.Is(err, mongo.ErrClientDisconnected) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w: %w", op, store.ErrUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
