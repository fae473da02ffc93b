package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Dias221467/cf_social/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ActivityRepository stores the per-user feed of social-graph events in the
// activities collection. Entries are append-only.
type ActivityRepository struct {
	collection *mongo.Collection
}

// NewActivityRepository returns a repository backed by db's activities
// collection. The (username, timestamp) index comes from EnsureIndexes.
func NewActivityRepository(db *mongo.Database) *ActivityRepository {
	return &ActivityRepository{collection: db.Collection("activities")}
}

// CreateActivity appends an event to the user's feed. The id, and the
// timestamp when unset, are filled in on the passed activity.
func (r *ActivityRepository) CreateActivity(ctx context.Context, activity *models.Activity) error {
	if activity.Timestamp.IsZero() {
		activity.Timestamp = time.Now()
	}
	activity.ID = primitive.NewObjectID()

	if _, err := r.collection.InsertOne(ctx, activity); err != nil {
		logrus.WithFields(logrus.Fields{
			"username": activity.Username,
			"type":     activity.Type,
		}).WithError(err).Error("Failed to record activity")
		return fmt.Errorf("failed to insert activity: %w", err)
	}
	return nil
}

// GetUserActivities returns up to limit of the user's events, newest first.
// A non-positive limit yields an empty feed.
func (r *ActivityRepository) GetUserActivities(ctx context.Context, username string, limit int) ([]models.Activity, error) {
	activities := []models.Activity{}
	if limit <= 0 {
		return activities, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{"username": username}, feedOptions(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch activities: %w", err)
	}
	defer cursor.Close(ctx)

	if err := cursor.All(ctx, &activities); err != nil {
		return nil, fmt.Errorf("failed to decode activities: %w", err)
	}
	return activities, nil
}

func feedOptions(limit int) *options.FindOptions {
	return options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit))
}
