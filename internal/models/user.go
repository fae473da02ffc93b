package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents a registered account. Username doubles as the Codeforces handle.
//
// The four relationship lists are not stored on the document; they are
// projections of the follow_edges collection filled in by the services layer.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username     string             `bson:"username" json:"username"`
	PasswordHash string             `bson:"passwordHash" json:"-"`
	IsPrivate    bool               `bson:"isPrivate" json:"isPrivate"`
	AboutText    string             `bson:"aboutText" json:"aboutText"`
	Links        []string           `bson:"links" json:"links"`

	Following       []string `bson:"-" json:"following"`
	Follower        []string `bson:"-" json:"follower"`
	RequestSent     []string `bson:"-" json:"requestSent"`
	RequestReceived []string `bson:"-" json:"requestReceived"`

	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`
	LastActiveAt time.Time `bson:"lastActiveAt,omitempty" json:"lastActiveAt,omitempty"`
}

// PublicUser is a directory entry; it never carries credential material.
type PublicUser struct {
	Username           string             `json:"username"`
	IsPrivate          bool               `json:"isPrivate"`
	RelationshipStatus RelationshipStatus `json:"relationshipStatus"`
}
