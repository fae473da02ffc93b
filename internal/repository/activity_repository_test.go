package repository

import (
	"context"
	"testing"

	"github.com/Dias221467/cf_social/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestFeedOptions(t *testing.T) {
	opts := feedOptions(20)

	require.NotNil(t, opts.Limit)
	assert.Equal(t, int64(20), *opts.Limit)
	assert.Equal(t, bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}}, opts.Sort)
}

func TestGetUserActivitiesNonPositiveLimit(t *testing.T) {
	// No collection is needed: the query is skipped.
	repo := &ActivityRepository{}

	activities, err := repo.GetUserActivities(context.Background(), "alice", 0)
	require.NoError(t, err)
	assert.Empty(t, activities)

	store := NewMemoryStore()
	require.NoError(t, store.CreateActivity(context.Background(), &models.Activity{Username: "alice", Type: models.ActivityFollowed}))
	activities, err = store.GetUserActivities(context.Background(), "alice", -1)
	require.NoError(t, err)
	assert.Empty(t, activities)
}
