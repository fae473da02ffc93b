package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Activity types recorded for social-graph transitions.
const (
	ActivityFollowRequested  = "follow_requested"
	ActivityFollowed         = "followed"
	ActivityRequestAccepted  = "request_accepted"
	ActivityRequestRejected  = "request_rejected"
	ActivityRequestCancelled = "request_cancelled"
	ActivityUnfollowed       = "unfollowed"
	ActivityFollowerRemoved  = "follower_removed"
	ActivityRequestsPromoted = "requests_promoted"
)

type Activity struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username  string             `bson:"username" json:"username"`
	Type      string             `bson:"type" json:"type"`             // e.g. "followed", "request_accepted"
	Target    string             `bson:"target,omitempty" json:"target"` // the other user, if any
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
	Message   string             `bson:"message" json:"message"`
}
