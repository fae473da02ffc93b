package services

import (
	"context"
	"testing"
	"time"

	"github.com/Dias221467/cf_social/internal/codeforces"
	"github.com/Dias221467/cf_social/internal/models"
	"github.com/Dias221467/cf_social/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newRecommendationFixture(t *testing.T, count int) (*RecommendationService, *repository.MemoryStore, *mockProvider, *models.User) {
	t.Helper()
	store := repository.NewMemoryStore()
	provider := new(mockProvider)
	svc := NewRecommendationService(store, store, provider, provider, count, 48*time.Hour)
	svc.now = func() time.Time { return fixedNow }

	user, err := store.CreateUser(context.Background(), &models.User{Username: "alice", IsPrivate: true})
	require.NoError(t, err)
	return svc, store, provider, user
}

func rated(handle string, rating int) []codeforces.UserInfo {
	return []codeforces.UserInfo{{Handle: handle, Rated: true, Rating: rating}}
}

func ladderProblem(contest int, index string, frequency int, points float64) codeforces.LadderProblem {
	return codeforces.LadderProblem{ContestID: contest, Index: index, Name: "P" + index, Rating: 1500, Tags: []string{}, Frequency: frequency, Points: points}
}

func TestRatingBand(t *testing.T) {
	cases := []struct {
		rating     int
		start, end int
	}{
		{1450, 1500, 1700},
		{1449, 1400, 1600},
		{800, 800, 1000},
		{1234, 1200, 1400},
		{3851, 3900, 4100},
	}
	for _, c := range cases {
		start, end := RatingBand(c.rating)
		assert.Equal(t, c.start, start, "rating %d", c.rating)
		assert.Equal(t, c.end, end, "rating %d", c.rating)
	}
}

func TestGetRecommendationsRefreshesEmptyCache(t *testing.T) {
	ctx := context.Background()
	svc, store, provider, user := newRecommendationFixture(t, 3)

	provider.On("GetUserInfo", mock.Anything, []string{"alice"}).Return(rated("alice", 1450), nil)
	provider.On("GetSolvedProblems", mock.Anything, "alice").Return([]string{"100A"}, nil)
	provider.On("GetLadder", mock.Anything, 1500, 1700).Return([]codeforces.LadderProblem{
		ladderProblem(100, "A", 9000, 500),
		ladderProblem(200, "B", 10, 1000),
		ladderProblem(300, "C", 500, 750),
		ladderProblem(150, "D", 500, 750),
		ladderProblem(400, "E", 500, 1000),
		ladderProblem(300, "C", 500, 750),
	}, nil)

	recs, err := svc.GetRecommendations(ctx, "alice")
	require.NoError(t, err)

	assert.True(t, recs.Refreshed)
	assert.False(t, recs.Degraded)
	assert.Equal(t, 1450, recs.Rating)

	ids := make([]string, 0, len(recs.Problems))
	for _, p := range recs.Problems {
		ids = append(ids, p.ProblemID)
		assert.Equal(t, fixedNow, p.LastUpdated)
	}
	assert.Equal(t, []string{"400E", "150D", "300C"}, ids)
	assert.Equal(t, "https://codeforces.com/problemset/problem/400/E", recs.Problems[0].Link)

	cached, err := store.GetRecommendations(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, cached, 3)
	provider.AssertExpectations(t)
}

func TestGetRecommendationsServesFreshCache(t *testing.T) {
	ctx := context.Background()
	svc, store, provider, user := newRecommendationFixture(t, 25)

	require.NoError(t, store.ReplaceRecommendations(ctx, user.ID, []models.RecommendedProblem{
		{ProblemID: "1A", LastUpdated: fixedNow.Add(-time.Hour)},
		{ProblemID: "2B", LastUpdated: fixedNow.Add(-time.Hour)},
	}))

	provider.On("GetUserInfo", mock.Anything, []string{"alice"}).Return(rated("alice", 1200), nil)
	provider.On("GetSolvedProblems", mock.Anything, "alice").Return([]string{"2B"}, nil)

	recs, err := svc.GetRecommendations(ctx, "alice")
	require.NoError(t, err)

	assert.False(t, recs.Refreshed)
	require.Len(t, recs.Problems, 1)
	assert.Equal(t, "1A", recs.Problems[0].ProblemID)

	cached, err := store.GetRecommendations(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, cached, 1)
	assert.Equal(t, "1A", cached[0].ProblemID)

	provider.AssertNotCalled(t, "GetLadder", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetRecommendationsRefreshesStaleCache(t *testing.T) {
	ctx := context.Background()
	svc, store, provider, user := newRecommendationFixture(t, 25)

	require.NoError(t, store.ReplaceRecommendations(ctx, user.ID, []models.RecommendedProblem{
		{ProblemID: "1A", LastUpdated: fixedNow.Add(-time.Hour)},
		{ProblemID: "2B", LastUpdated: fixedNow.Add(-72 * time.Hour)},
	}))

	provider.On("GetUserInfo", mock.Anything, []string{"alice"}).Return(rated("alice", 1200), nil)
	provider.On("GetSolvedProblems", mock.Anything, "alice").Return([]string{}, nil)
	provider.On("GetLadder", mock.Anything, 1200, 1400).Return([]codeforces.LadderProblem{
		ladderProblem(7, "C", 1, 1),
	}, nil)

	recs, err := svc.GetRecommendations(ctx, "alice")
	require.NoError(t, err)

	assert.True(t, recs.Refreshed)
	require.Len(t, recs.Problems, 1)
	assert.Equal(t, "7C", recs.Problems[0].ProblemID)
	provider.AssertExpectations(t)
}

func TestGetRecommendationsDefaultsWhenProfileFails(t *testing.T) {
	ctx := context.Background()
	svc, _, provider, _ := newRecommendationFixture(t, 25)

	provider.On("GetUserInfo", mock.Anything, []string{"alice"}).Return(nil, codeforces.ErrUnavailable)
	provider.On("GetSolvedProblems", mock.Anything, "alice").Return(nil, codeforces.ErrUnavailable)
	provider.On("GetLadder", mock.Anything, 800, 1000).Return([]codeforces.LadderProblem{
		ladderProblem(4, "A", 100, 500),
	}, nil)

	recs, err := svc.GetRecommendations(ctx, "alice")
	require.NoError(t, err)

	assert.Equal(t, codeforces.DefaultRating, recs.Rating)
	assert.True(t, recs.Degraded)
	assert.True(t, recs.Refreshed)
	require.Len(t, recs.Problems, 1)
	provider.AssertExpectations(t)
}

func TestGetRecommendationsKeepsStaleCacheWhenProfileFails(t *testing.T) {
	ctx := context.Background()
	svc, store, provider, user := newRecommendationFixture(t, 25)

	require.NoError(t, store.ReplaceRecommendations(ctx, user.ID, []models.RecommendedProblem{
		{ProblemID: "1850C", Rating: 1900, LastUpdated: fixedNow.Add(-72 * time.Hour)},
	}))

	provider.On("GetUserInfo", mock.Anything, []string{"alice"}).Return(nil, codeforces.ErrUnavailable)
	provider.On("GetSolvedProblems", mock.Anything, "alice").Return([]string{}, nil)

	recs, err := svc.GetRecommendations(ctx, "alice")
	require.NoError(t, err)

	assert.True(t, recs.Degraded)
	assert.False(t, recs.Refreshed)
	require.Len(t, recs.Problems, 1)
	assert.Equal(t, "1850C", recs.Problems[0].ProblemID)
	provider.AssertNotCalled(t, "GetLadder", mock.Anything, mock.Anything, mock.Anything)

	rows, err := store.GetRecommendations(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 1900, rows[0].Rating)
}

func TestGetRecommendationsUnratedUsesDefaultBand(t *testing.T) {
	ctx := context.Background()
	svc, _, provider, _ := newRecommendationFixture(t, 25)

	provider.On("GetUserInfo", mock.Anything, []string{"alice"}).Return([]codeforces.UserInfo{{Handle: "alice"}}, nil)
	provider.On("GetSolvedProblems", mock.Anything, "alice").Return([]string{}, nil)
	provider.On("GetLadder", mock.Anything, 800, 1000).Return([]codeforces.LadderProblem{}, nil)

	recs, err := svc.GetRecommendations(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, recs.Problems)
	assert.Equal(t, 800, recs.Rating)
	provider.AssertExpectations(t)
}

func TestGetRecommendationsLadderFailure(t *testing.T) {
	ctx := context.Background()

	t.Run("no cache", func(t *testing.T) {
		svc, _, provider, _ := newRecommendationFixture(t, 25)
		provider.On("GetUserInfo", mock.Anything, []string{"alice"}).Return(rated("alice", 1500), nil)
		provider.On("GetSolvedProblems", mock.Anything, "alice").Return([]string{}, nil)
		provider.On("GetLadder", mock.Anything, 1500, 1700).Return(nil, codeforces.ErrUnavailable)

		_, err := svc.GetRecommendations(ctx, "alice")
		assert.ErrorIs(t, err, ErrProviderUnavailable)
	})

	t.Run("stale cache", func(t *testing.T) {
		svc, store, provider, user := newRecommendationFixture(t, 25)
		require.NoError(t, store.ReplaceRecommendations(ctx, user.ID, []models.RecommendedProblem{
			{ProblemID: "9Z", LastUpdated: fixedNow.Add(-100 * time.Hour)},
		}))
		provider.On("GetUserInfo", mock.Anything, []string{"alice"}).Return(rated("alice", 1500), nil)
		provider.On("GetSolvedProblems", mock.Anything, "alice").Return([]string{}, nil)
		provider.On("GetLadder", mock.Anything, 1500, 1700).Return(nil, codeforces.ErrUnavailable)

		recs, err := svc.GetRecommendations(ctx, "alice")
		require.NoError(t, err)
		assert.True(t, recs.Degraded)
		assert.False(t, recs.Refreshed)
		require.Len(t, recs.Problems, 1)
		assert.Equal(t, "9Z", recs.Problems[0].ProblemID)
	})
}

func TestGetRecommendationsUnknownUser(t *testing.T) {
	svc, _, _, _ := newRecommendationFixture(t, 25)
	_, err := svc.GetRecommendations(context.Background(), "bob")
	assert.ErrorIs(t, err, ErrTargetNotFound)
}

func TestPurgeStale(t *testing.T) {
	ctx := context.Background()
	svc, store, _, user := newRecommendationFixture(t, 25)

	require.NoError(t, store.ReplaceRecommendations(ctx, user.ID, []models.RecommendedProblem{
		{ProblemID: "1A", LastUpdated: fixedNow.Add(-time.Hour)},
		{ProblemID: "2B", LastUpdated: fixedNow.Add(-10 * 24 * time.Hour)},
	}))

	n, err := svc.PurgeStale(ctx, 7*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	cached, err := store.GetRecommendations(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, cached, 1)
	assert.Equal(t, "1A", cached[0].ProblemID)
}
