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
)

type RecommendationRepository struct {
	collection *mongo.Collection
}

func NewRecommendationRepository(db *mongo.Database) *RecommendationRepository {
	return &RecommendationRepository{
		collection: db.Collection("recommended_problems"),
	}
}

func (r *RecommendationRepository) GetRecommendations(ctx context.Context, userID primitive.ObjectID) ([]models.RecommendedProblem, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recommendations: %w", err)
	}
	defer cursor.Close(ctx)

	problems := []models.RecommendedProblem{}
	if err := cursor.All(ctx, &problems); err != nil {
		return nil, fmt.Errorf("failed to decode recommendations: %w", err)
	}
	return problems, nil
}

// DeleteRecommendations drops the given problems from the user's cache.
func (r *RecommendationRepository) DeleteRecommendations(ctx context.Context, userID primitive.ObjectID, problemIDs []string) (int64, error) {
	if len(problemIDs) == 0 {
		return 0, nil
	}
	result, err := r.collection.DeleteMany(ctx, bson.M{"userId": userID, "problemId": bson.M{"$in": problemIDs}})
	if err != nil {
		return 0, fmt.Errorf("failed to delete recommendations: %w", err)
	}
	return result.DeletedCount, nil
}

// ReplaceRecommendations swaps the user's cached set for problems. The new
// rows are written before the old ones are removed, so a failed insert
// leaves the previous set in place.
func (r *RecommendationRepository) ReplaceRecommendations(ctx context.Context, userID primitive.ObjectID, problems []models.RecommendedProblem) error {
	docs, stale := replacementBatch(userID, problems)
	if len(docs) > 0 {
		if _, err := r.collection.InsertMany(ctx, docs); err != nil {
			logrus.WithError(err).Error("Failed to insert recommendations")
			return fmt.Errorf("failed to insert recommendations: %w", err)
		}
	}
	if _, err := r.collection.DeleteMany(ctx, stale); err != nil {
		return fmt.Errorf("failed to clear recommendations: %w", err)
	}
	return nil
}

// replacementBatch stamps problems with fresh ids and returns them with the
// filter matching every other row of the user.
func replacementBatch(userID primitive.ObjectID, problems []models.RecommendedProblem) ([]interface{}, bson.M) {
	docs := make([]interface{}, 0, len(problems))
	ids := make([]primitive.ObjectID, 0, len(problems))
	for i := range problems {
		problems[i].UserID = userID
		problems[i].ID = primitive.NewObjectID()
		docs = append(docs, problems[i])
		ids = append(ids, problems[i].ID)
	}
	return docs, bson.M{"userId": userID, "_id": bson.M{"$nin": ids}}
}

// DeleteStaleRecommendations removes cache rows last refreshed before cutoff.
func (r *RecommendationRepository) DeleteStaleRecommendations(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"lastUpdated": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale recommendations: %w", err)
	}
	return result.DeletedCount, nil
}
