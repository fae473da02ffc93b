package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dias221467/cf_social/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EdgeRepository stores one document per directed relation. The unique
// (from, to) index makes every transition a single-document write.
type EdgeRepository struct {
	collection *mongo.Collection
}

func NewEdgeRepository(db *mongo.Database) *EdgeRepository {
	return &EdgeRepository{
		collection: db.Collection("follow_edges"),
	}
}

func (r *EdgeRepository) CreateEdge(ctx context.Context, edge *models.FollowEdge) error {
	now := time.Now()
	edge.CreatedAt = now
	edge.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, edge); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrEdgeExists
		}
		logrus.WithError(err).Error("Failed to insert follow edge")
		return fmt.Errorf("failed to create follow edge: %w", err)
	}
	return nil
}

func (r *EdgeRepository) GetEdge(ctx context.Context, from, to string) (*models.FollowEdge, error) {
	var edge models.FollowEdge
	err := r.collection.FindOne(ctx, bson.M{"from": from, "to": to}).Decode(&edge)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrEdgeNotFound
		}
		return nil, fmt.Errorf("failed to find follow edge: %w", err)
	}
	return &edge, nil
}

// TransitionEdge moves the (from, to) edge from one state to another.
// ErrEdgeNotFound means no edge was in the expected state.
func (r *EdgeRepository) TransitionEdge(ctx context.Context, from, to string, fromState, toState models.EdgeState) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"from": from, "to": to, "state": fromState},
		bson.M{"$set": bson.M{"state": toState, "updatedAt": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to update follow edge: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrEdgeNotFound
	}
	return nil
}

// DeleteEdge removes the (from, to) edge if it is in the given state and
// reports whether anything was removed.
func (r *EdgeRepository) DeleteEdge(ctx context.Context, from, to string, state models.EdgeState) (bool, error) {
	result, err := r.collection.DeleteOne(ctx, bson.M{"from": from, "to": to, "state": state})
	if err != nil {
		return false, fmt.Errorf("failed to delete follow edge: %w", err)
	}
	return result.DeletedCount > 0, nil
}

func (r *EdgeRepository) ListOutgoing(ctx context.Context, from string, state models.EdgeState) ([]models.FollowEdge, error) {
	return r.find(ctx, bson.M{"from": from, "state": state})
}

func (r *EdgeRepository) ListIncoming(ctx context.Context, to string, state models.EdgeState) ([]models.FollowEdge, error) {
	return r.find(ctx, bson.M{"to": to, "state": state})
}

// OutgoingTo returns the edges from one user toward any of the given users.
func (r *EdgeRepository) OutgoingTo(ctx context.Context, from string, to []string) ([]models.FollowEdge, error) {
	if len(to) == 0 {
		return []models.FollowEdge{}, nil
	}
	return r.find(ctx, bson.M{"from": from, "to": bson.M{"$in": to}})
}

// PromoteIncoming turns every pending request toward the user into a follow edge.
func (r *EdgeRepository) PromoteIncoming(ctx context.Context, to string) (int64, error) {
	result, err := r.collection.UpdateMany(ctx,
		bson.M{"to": to, "state": models.EdgeRequested},
		bson.M{"$set": bson.M{"state": models.EdgeFollowing, "updatedAt": time.Now()}},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to promote pending requests: %w", err)
	}
	return result.ModifiedCount, nil
}

func (r *EdgeRepository) find(ctx context.Context, filter bson.M) ([]models.FollowEdge, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find follow edges: %w", err)
	}
	defer cursor.Close(ctx)

	edges := []models.FollowEdge{}
	if err := cursor.All(ctx, &edges); err != nil {
		return nil, fmt.Errorf("failed to decode follow edges: %w", err)
	}
	return edges, nil
}
