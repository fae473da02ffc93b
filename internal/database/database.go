package database

import (
	"context"
	"fmt"
	"time"

	"github.com/Dias221467/cf_social/internal/config"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConnectDB opens a MongoDB client and verifies the connection.
func ConnectDB(cfg *config.Config) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := verifyConnection(ctx, client); err != nil {
		return nil, err
	}

	logrus.WithField("database", cfg.MongoDB).Info("Connected to MongoDB")
	return client.Database(cfg.MongoDB), nil
}

// verifyConnection pings the server and releases the client's pool when it
// cannot be reached.
func verifyConnection(ctx context.Context, client *mongo.Client) error {
	if err := client.Ping(ctx, nil); err != nil {
		if derr := client.Disconnect(context.Background()); derr != nil {
			logrus.WithError(derr).Warn("Failed to disconnect MongoDB client")
		}
		return fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return nil
}

// EnsureIndexes creates the indexes the repositories rely on for uniqueness
// and point lookups. Creating an existing index is a no-op.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		"users": {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: usernameFoldIndex()},
		},
		"follow_edges": {
			{Keys: bson.D{{Key: "from", Value: 1}, {Key: "to", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "to", Value: 1}, {Key: "state", Value: 1}}},
		},
		"recommended_problems": {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "problemId", Value: 1}}},
			{Keys: bson.D{{Key: "lastUpdated", Value: 1}}},
		},
		"activities": {
			{Keys: bson.D{{Key: "username", Value: 1}, {Key: "timestamp", Value: -1}}},
		},
	}

	for name, models := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", name, err)
		}
	}
	return nil
}

// usernameFoldIndex makes usernames unique regardless of case. Strength 2
// compares base letters and accents but not case.
func usernameFoldIndex() *options.IndexOptions {
	return options.Index().
		SetName("username_fold_unique").
		SetUnique(true).
		SetCollation(&options.Collation{Locale: "en", Strength: 2})
}
