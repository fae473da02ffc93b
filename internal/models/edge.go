package models

import "time"

// EdgeState is the state of a directed relation between two users.
type EdgeState string

const (
	EdgeRequested EdgeState = "requested"
	EdgeFollowing EdgeState = "following"
)

// FollowEdge is the single source of truth for one directed relation.
// At most one edge exists per (From, To) pair.
type FollowEdge struct {
	From      string    `bson:"from" json:"from"`
	To        string    `bson:"to" json:"to"`
	State     EdgeState `bson:"state" json:"state"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// RelationshipStatus describes a viewer's outbound relation toward another user.
type RelationshipStatus string

const (
	StatusNone      RelationshipStatus = "none"
	StatusRequested RelationshipStatus = "requested"
	StatusFollowing RelationshipStatus = "following"
)

// StatusOf maps an edge (or its absence) to a relationship status.
func StatusOf(edge *FollowEdge) RelationshipStatus {
	if edge == nil {
		return StatusNone
	}
	switch edge.State {
	case EdgeFollowing:
		return StatusFollowing
	case EdgeRequested:
		return StatusRequested
	}
	return StatusNone
}
