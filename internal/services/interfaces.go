package services

import (
	"context"
	"time"

	"github.com/Dias221467/cf_social/internal/codeforces"
	"github.com/Dias221467/cf_social/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserStore persists user records keyed by username.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUsersByUsernames(ctx context.Context, usernames []string) ([]models.User, error)
	SearchUsers(ctx context.Context, query string, limit int64) ([]models.User, error)
	UpdateUser(ctx context.Context, username string, update map[string]interface{}) (*models.User, error)
	TouchLastActive(ctx context.Context, username string, at time.Time) error
}

// EdgeStore persists follow edges, at most one per ordered pair.
type EdgeStore interface {
	CreateEdge(ctx context.Context, edge *models.FollowEdge) error
	GetEdge(ctx context.Context, from, to string) (*models.FollowEdge, error)
	TransitionEdge(ctx context.Context, from, to string, fromState, toState models.EdgeState) error
	DeleteEdge(ctx context.Context, from, to string, state models.EdgeState) (bool, error)
	ListOutgoing(ctx context.Context, from string, state models.EdgeState) ([]models.FollowEdge, error)
	ListIncoming(ctx context.Context, to string, state models.EdgeState) ([]models.FollowEdge, error)
	OutgoingTo(ctx context.Context, from string, to []string) ([]models.FollowEdge, error)
	PromoteIncoming(ctx context.Context, to string) (int64, error)
}

// RecommendationStore persists the per-user recommendation cache.
type RecommendationStore interface {
	GetRecommendations(ctx context.Context, userID primitive.ObjectID) ([]models.RecommendedProblem, error)
	DeleteRecommendations(ctx context.Context, userID primitive.ObjectID, problemIDs []string) (int64, error)
	ReplaceRecommendations(ctx context.Context, userID primitive.ObjectID, problems []models.RecommendedProblem) error
	DeleteStaleRecommendations(ctx context.Context, cutoff time.Time) (int64, error)
}

// ActivityStore persists the social activity log.
type ActivityStore interface {
	CreateActivity(ctx context.Context, activity *models.Activity) error
	GetUserActivities(ctx context.Context, username string, limit int) ([]models.Activity, error)
}

// RatingProvider is the read-only Codeforces profile API.
type RatingProvider interface {
	GetUserInfo(ctx context.Context, handles ...string) ([]codeforces.UserInfo, error)
	GetSolvedProblems(ctx context.Context, handle string) ([]string, error)
}

// LadderProvider serves candidate problems for a rating band.
type LadderProvider interface {
	GetLadder(ctx context.Context, start, end int) ([]codeforces.LadderProblem, error)
}
