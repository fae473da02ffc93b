package repository

import (
	"context"
	"testing"
	"time"

	"github.com/Dias221467/cf_social/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMemoryStoreUsers(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	created, err := store.CreateUser(ctx, &models.User{Username: "Tourist", IsPrivate: true})
	require.NoError(t, err)
	assert.False(t, created.ID.IsZero())
	assert.Equal(t, []string{}, created.Links)

	_, err = store.CreateUser(ctx, &models.User{Username: "Tourist"})
	assert.ErrorIs(t, err, ErrDuplicateUser)
	_, err = store.CreateUser(ctx, &models.User{Username: "tOURIST"})
	assert.ErrorIs(t, err, ErrDuplicateUser)

	_, err = store.GetUserByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)

	updated, err := store.UpdateUser(ctx, "Tourist", map[string]interface{}{"isPrivate": false, "links": []string{"https://a"}})
	require.NoError(t, err)
	assert.False(t, updated.IsPrivate)

	// Returned records are copies.
	updated.Links[0] = "mutated"
	got, err := store.GetUserByUsername(ctx, "Tourist")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a"}, got.Links)

	_, err = store.UpdateUser(ctx, "nobody", map[string]interface{}{"isPrivate": true})
	assert.ErrorIs(t, err, ErrUserNotFound)

	found, err := store.SearchUsers(ctx, "OUR", 10)
	require.NoError(t, err)
	require.Len(t, found, 1)

	users, err := store.GetUsersByUsernames(ctx, []string{"Tourist", "ghost"})
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestMemoryStoreEdges(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.CreateEdge(ctx, &models.FollowEdge{From: "a", To: "b", State: models.EdgeRequested}))
	require.NoError(t, store.CreateEdge(ctx, &models.FollowEdge{From: "c", To: "b", State: models.EdgeRequested}))
	require.NoError(t, store.CreateEdge(ctx, &models.FollowEdge{From: "a", To: "c", State: models.EdgeFollowing}))

	err := store.CreateEdge(ctx, &models.FollowEdge{From: "a", To: "b", State: models.EdgeFollowing})
	assert.ErrorIs(t, err, ErrEdgeExists)

	err = store.TransitionEdge(ctx, "a", "c", models.EdgeRequested, models.EdgeFollowing)
	assert.ErrorIs(t, err, ErrEdgeNotFound)

	removed, err := store.DeleteEdge(ctx, "a", "b", models.EdgeFollowing)
	require.NoError(t, err)
	assert.False(t, removed)

	out, err := store.OutgoingTo(ctx, "a", []string{"b", "c", "z"})
	require.NoError(t, err)
	assert.Len(t, out, 2)

	n, err := store.PromoteIncoming(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	incoming, err := store.ListIncoming(ctx, "b", models.EdgeFollowing)
	require.NoError(t, err)
	require.Len(t, incoming, 2)
	assert.Equal(t, "a", incoming[0].From)
	assert.Equal(t, "c", incoming[1].From)

	removed, err = store.DeleteEdge(ctx, "a", "b", models.EdgeFollowing)
	require.NoError(t, err)
	assert.True(t, removed)

	_, err = store.GetEdge(ctx, "a", "b")
	assert.ErrorIs(t, err, ErrEdgeNotFound)
}

func TestMemoryStoreRecommendations(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	userID := primitive.NewObjectID()
	now := time.Now()

	require.NoError(t, store.ReplaceRecommendations(ctx, userID, []models.RecommendedProblem{
		{ProblemID: "1A", LastUpdated: now},
		{ProblemID: "2B", LastUpdated: now.Add(-30 * 24 * time.Hour)},
		{ProblemID: "3C", LastUpdated: now},
	}))

	n, err := store.DeleteRecommendations(ctx, userID, []string{"3C", "9Z"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = store.DeleteStaleRecommendations(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	rows, err := store.GetRecommendations(ctx, userID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "1A", rows[0].ProblemID)
	assert.Equal(t, userID, rows[0].UserID)
}
