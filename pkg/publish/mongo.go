package publish

import (
	"context"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/statgrapher/pkg/cache"
	"github.com/matzehuels/statgrapher/pkg/errors"
)

// Default MongoDB names.
const (
	DefaultMongoDatabase   = "statgrapher"
	DefaultMongoCollection = "posts"
)

// MongoConfig configures a [MongoSink].
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

// MongoSink archives posts in a MongoDB collection, one document per post.
type MongoSink struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoSink connects to MongoDB and verifies the connection.
func NewMongoSink(ctx context.Context, cfg MongoConfig) (*MongoSink, error) {
	if cfg.URI == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "mongo uri is required")
	}
	if cfg.Database == "" {
		cfg.Database = DefaultMongoDatabase
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultMongoCollection
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI).SetConnectTimeout(10*time.Second))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect to mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "ping mongo")
	}
	return &MongoSink{
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

// Name implements Sink.
func (s *MongoSink) Name() string { return "mongo" }

// Publish implements Sink.
func (s *MongoSink) Publish(ctx context.Context, p *Post) error {
	_, err := s.coll.InsertOne(ctx, postDocument(p))
	if err == nil {
		return nil
	}
	if mongo.IsDuplicateKeyError(err) {
		return nil // already archived
	}
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return cache.Retryable(err)
	}
	return err
}

// Close implements Sink.
func (s *MongoSink) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// postDocument maps p to its stored form. The seed is kept as a decimal
// string: BSON has no unsigned 64-bit integer and half of all random seeds
// exceed the int64 range.
func postDocument(p *Post) bson.M {
	return bson.M{
		"_id":        p.ID,
		"seed":       strconv.FormatUint(p.Seed, 10),
		"caption":    p.Caption,
		"png":        p.PNG,
		"width":      p.Width,
		"height":     p.Height,
		"created_at": p.CreatedAt,
	}
}
