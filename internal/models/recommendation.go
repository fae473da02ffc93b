package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RecommendedProblem is a cached recommendation row. The cache can be dropped
// and rebuilt from the upstream providers at any time.
type RecommendedProblem struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	UserID      primitive.ObjectID `bson:"userId" json:"userId"`
	ProblemID   string             `bson:"problemId" json:"problemId"`
	Name        string             `bson:"name" json:"name"`
	Rating      int                `bson:"rating" json:"rating"`
	Tags        []string           `bson:"tags" json:"tags"`
	SolvedCount int                `bson:"solvedCount" json:"solvedCount"`
	Link        string             `bson:"link" json:"link"`
	LastUpdated time.Time          `bson:"lastUpdated" json:"lastUpdated"`
}
