package services

import (
	"context"

	"github.com/Dias221467/cf_social/internal/codeforces"
	"github.com/Dias221467/cf_social/internal/models"
	"github.com/sirupsen/logrus"
)

// ProfileView is what a viewer gets back for a profile. Restricted views
// only carry the identity fields and the viewer's relationship status.
type ProfileView struct {
	Username           string                    `json:"username"`
	IsPrivate          bool                      `json:"isPrivate"`
	Restricted         bool                      `json:"restricted"`
	RelationshipStatus models.RelationshipStatus `json:"relationshipStatus"`

	AboutText       string               `json:"aboutText,omitempty"`
	Links           []string             `json:"links,omitempty"`
	Following       []string             `json:"following,omitempty"`
	Follower        []string             `json:"follower,omitempty"`
	RequestSent     []string             `json:"requestSent,omitempty"`
	RequestReceived []string             `json:"requestReceived,omitempty"`
	Codeforces      *codeforces.UserInfo `json:"codeforces,omitempty"`
	Degraded        bool                 `json:"degraded,omitempty"`
}

// ProfileService serves privacy-gated profiles.
type ProfileService struct {
	follows  *FollowService
	provider RatingProvider
}

func NewProfileService(follows *FollowService, provider RatingProvider) *ProfileService {
	return &ProfileService{follows: follows, provider: provider}
}

// GetProfile returns username's profile as seen by viewer ("" for anonymous).
func (s *ProfileService) GetProfile(ctx context.Context, viewer, username string) (*ProfileView, error) {
	username, err := normalizeTarget(username)
	if err != nil {
		return nil, err
	}

	subject, err := s.follows.GetUserWithRelationships(ctx, username)
	if err != nil {
		return nil, err
	}

	status, err := s.follows.RelationshipStatus(ctx, viewer, username)
	if err != nil {
		return nil, err
	}

	view := &ProfileView{
		Username:           subject.Username,
		IsPrivate:          subject.IsPrivate,
		RelationshipStatus: status,
	}

	if !CanView(viewer, subject) {
		view.Restricted = true
		return view, nil
	}

	view.AboutText = subject.AboutText
	view.Links = subject.Links
	view.Following = subject.Following
	view.Follower = subject.Follower
	if viewer == subject.Username {
		view.RequestSent = subject.RequestSent
		view.RequestReceived = subject.RequestReceived
	}

	info := codeforces.DefaultUserInfo(subject.Username)
	if s.provider != nil {
		infos, err := s.provider.GetUserInfo(ctx, subject.Username)
		switch {
		case err != nil:
			logrus.WithError(err).WithField("username", subject.Username).Warn("Rating provider failed, using defaults")
			view.Degraded = true
		case len(infos) > 0:
			info = infos[0]
		}
	}
	view.Codeforces = &info
	return view, nil
}
