package services

import (
	"context"
	"errors"
	"strings"

	"github.com/Dias221467/cf_social/internal/models"
	"github.com/Dias221467/cf_social/internal/repository"
	"github.com/sirupsen/logrus"
)

// RelationshipResult describes the outcome of a relationship operation.
// Changed is false when an idempotent operation found nothing to do.
type RelationshipResult struct {
	Target  string                    `json:"target"`
	Status  models.RelationshipStatus `json:"status"`
	Changed bool                      `json:"changed"`
	Message string                    `json:"message"`
}

// RelationshipList names one of the four projections of a user's edges.
type RelationshipList string

const (
	ListFollowing RelationshipList = "following"
	ListFollowers RelationshipList = "followers"
	ListSent      RelationshipList = "sent"
	ListReceived  RelationshipList = "received"
)

// FollowService owns the follow / follow-request state machine. Every
// transition is a single write against one edge record, so the two sides of
// a relation can never disagree.
type FollowService struct {
	users       UserStore
	edges       EdgeStore
	activity    *ActivityService
	searchLimit int64
}

// NewFollowService creates a new FollowService.
func NewFollowService(users UserStore, edges EdgeStore, activity *ActivityService, searchLimit int64) *FollowService {
	if searchLimit <= 0 {
		searchLimit = 10
	}
	return &FollowService{
		users:       users,
		edges:       edges,
		activity:    activity,
		searchLimit: searchLimit,
	}
}

func requireActor(actor string) error {
	if actor == "" {
		return ErrNotAuthenticated
	}
	return nil
}

func normalizeTarget(target string) (string, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return "", invalidInput("username is required")
	}
	return target, nil
}

func alreadyError(edge *models.FollowEdge) error {
	if edge.State == models.EdgeFollowing {
		return ErrAlreadyFollowing
	}
	return ErrAlreadyRequested
}

// RequestFollow asks to follow target. Public targets are followed
// immediately; private targets get a pending request. An existing relation
// is reported as AlreadyFollowing or AlreadyRequested and left untouched.
func (s *FollowService) RequestFollow(ctx context.Context, actor, target string) (*RelationshipResult, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	target, err := normalizeTarget(target)
	if err != nil {
		return nil, err
	}
	if actor == target {
		return nil, ErrCannotFollowSelf
	}

	if _, err := s.users.GetUserByUsername(ctx, actor); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrNotAuthenticated
		}
		return nil, storeError(err, "failed to load actor")
	}
	targetUser, err := s.users.GetUserByUsername(ctx, target)
	if err != nil {
		return nil, storeError(err, "failed to load target")
	}

	existing, err := s.edges.GetEdge(ctx, actor, target)
	switch {
	case err == nil:
		return nil, alreadyError(existing)
	case !errors.Is(err, repository.ErrEdgeNotFound):
		return nil, storeError(err, "failed to load relationship")
	}

	edge := &models.FollowEdge{From: actor, To: target, State: models.EdgeRequested}
	if !targetUser.IsPrivate {
		edge.State = models.EdgeFollowing
	}

	if err := s.edges.CreateEdge(ctx, edge); err != nil {
		if errors.Is(err, repository.ErrEdgeExists) {
			// Lost a race with a concurrent request for the same pair.
			if existing, gerr := s.edges.GetEdge(ctx, actor, target); gerr == nil {
				return nil, alreadyError(existing)
			}
		}
		return nil, storeError(err, "failed to create relationship")
	}

	logrus.WithFields(logrus.Fields{
		"actor":  actor,
		"target": target,
		"state":  edge.State,
	}).Info("Follow edge created")

	if edge.State == models.EdgeFollowing {
		s.activity.LogActivity(ctx, actor, models.ActivityFollowed, target, "Started following "+target)
		return &RelationshipResult{Target: target, Status: models.StatusFollowing, Changed: true, Message: "Following this user"}, nil
	}
	s.activity.LogActivity(ctx, actor, models.ActivityFollowRequested, target, "Requested to follow "+target)
	return &RelationshipResult{Target: target, Status: models.StatusRequested, Changed: true, Message: "Request sent"}, nil
}

// AcceptRequest turns sender's pending request toward actor into a follow edge.
func (s *FollowService) AcceptRequest(ctx context.Context, actor, sender string) (*RelationshipResult, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	sender, err := normalizeTarget(sender)
	if err != nil {
		return nil, err
	}

	err = s.edges.TransitionEdge(ctx, sender, actor, models.EdgeRequested, models.EdgeFollowing)
	if err != nil {
		if errors.Is(err, repository.ErrEdgeNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, storeError(err, "failed to accept request")
	}

	logrus.WithFields(logrus.Fields{"actor": actor, "sender": sender}).Info("Follow request accepted")
	s.activity.LogActivity(ctx, actor, models.ActivityRequestAccepted, sender, "Accepted follow request from "+sender)
	return &RelationshipResult{Target: sender, Status: models.StatusFollowing, Changed: true, Message: "Request accepted"}, nil
}

// RejectRequest drops sender's pending request toward actor. Rejecting a
// request that does not exist is a no-op.
func (s *FollowService) RejectRequest(ctx context.Context, actor, sender string) (*RelationshipResult, error) {
	return s.removeEdge(ctx, actor, sender, false, models.EdgeRequested,
		models.ActivityRequestRejected, "Request rejected", "No pending request")
}

// CancelRequest withdraws actor's pending request toward target. No-op if absent.
func (s *FollowService) CancelRequest(ctx context.Context, actor, target string) (*RelationshipResult, error) {
	return s.removeEdge(ctx, actor, target, true, models.EdgeRequested,
		models.ActivityRequestCancelled, "Request canceled", "No pending request")
}

// Unfollow removes actor's follow edge toward target. No-op if absent.
func (s *FollowService) Unfollow(ctx context.Context, actor, target string) (*RelationshipResult, error) {
	return s.removeEdge(ctx, actor, target, true, models.EdgeFollowing,
		models.ActivityUnfollowed, "Unfollowed successfully", "Not following this user")
}

// RemoveFollower removes follower's follow edge toward actor. No-op if absent.
func (s *FollowService) RemoveFollower(ctx context.Context, actor, follower string) (*RelationshipResult, error) {
	return s.removeEdge(ctx, actor, follower, false, models.EdgeFollowing,
		models.ActivityFollowerRemoved, "Follower removed", "Not a follower")
}

// removeEdge deletes one edge between actor and other. outbound selects the
// direction: actor->other when true, other->actor otherwise.
func (s *FollowService) removeEdge(ctx context.Context, actor, other string, outbound bool, state models.EdgeState, activityType, doneMsg, noopMsg string) (*RelationshipResult, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	other, err := normalizeTarget(other)
	if err != nil {
		return nil, err
	}

	from, to := other, actor
	if outbound {
		from, to = actor, other
	}

	removed, err := s.edges.DeleteEdge(ctx, from, to, state)
	if err != nil {
		return nil, storeError(err, "failed to update relationship")
	}
	if !removed {
		return &RelationshipResult{Target: other, Status: models.StatusNone, Message: noopMsg}, nil
	}

	logrus.WithFields(logrus.Fields{
		"from":  from,
		"to":    to,
		"state": state,
	}).Info("Follow edge removed")
	s.activity.LogActivity(ctx, actor, activityType, other, doneMsg+": "+other)
	return &RelationshipResult{Target: other, Status: models.StatusNone, Changed: true, Message: doneMsg}, nil
}

// ListRelationships returns the usernames in one of the user's lists.
func (s *FollowService) ListRelationships(ctx context.Context, username string, list RelationshipList) ([]string, error) {
	var (
		edges []models.FollowEdge
		err   error
		pick  = func(e models.FollowEdge) string { return e.To }
	)
	switch list {
	case ListFollowing:
		edges, err = s.edges.ListOutgoing(ctx, username, models.EdgeFollowing)
	case ListSent:
		edges, err = s.edges.ListOutgoing(ctx, username, models.EdgeRequested)
	case ListFollowers:
		edges, err = s.edges.ListIncoming(ctx, username, models.EdgeFollowing)
		pick = func(e models.FollowEdge) string { return e.From }
	case ListReceived:
		edges, err = s.edges.ListIncoming(ctx, username, models.EdgeRequested)
		pick = func(e models.FollowEdge) string { return e.From }
	default:
		return nil, invalidInput("unknown relationship list %q", list)
	}
	if err != nil {
		return nil, storeError(err, "failed to list relationships")
	}

	names := make([]string, 0, len(edges))
	for _, e := range edges {
		names = append(names, pick(e))
	}
	return names, nil
}

// LoadRelationships fills the four relationship lists of user.
func (s *FollowService) LoadRelationships(ctx context.Context, user *models.User) error {
	lists := []struct {
		list RelationshipList
		dst  *[]string
	}{
		{ListFollowing, &user.Following},
		{ListFollowers, &user.Follower},
		{ListSent, &user.RequestSent},
		{ListReceived, &user.RequestReceived},
	}
	for _, l := range lists {
		names, err := s.ListRelationships(ctx, user.Username, l.list)
		if err != nil {
			return err
		}
		*l.dst = names
	}
	return nil
}

// GetUserWithRelationships loads a user record with its lists populated.
func (s *FollowService) GetUserWithRelationships(ctx context.Context, username string) (*models.User, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, storeError(err, "failed to load user")
	}
	if err := s.LoadRelationships(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// RelationshipStatus returns viewer's outbound status toward target.
func (s *FollowService) RelationshipStatus(ctx context.Context, viewer, target string) (models.RelationshipStatus, error) {
	if viewer == "" || viewer == target {
		return models.StatusNone, nil
	}
	edge, err := s.edges.GetEdge(ctx, viewer, target)
	if err != nil {
		if errors.Is(err, repository.ErrEdgeNotFound) {
			return models.StatusNone, nil
		}
		return models.StatusNone, storeError(err, "failed to load relationship")
	}
	return models.StatusOf(edge), nil
}

// SearchUsers finds users whose username contains query (case-insensitive),
// annotated with the viewer's relationship status. Results follow store
// order and are capped at the configured page size.
func (s *FollowService) SearchUsers(ctx context.Context, query, viewer string) ([]models.PublicUser, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, invalidInput("search query is required")
	}

	users, err := s.users.SearchUsers(ctx, query, s.searchLimit)
	if err != nil {
		return nil, storeError(err, "failed to search users")
	}

	status := map[string]models.RelationshipStatus{}
	if viewer != "" && len(users) > 0 {
		names := make([]string, 0, len(users))
		for _, u := range users {
			names = append(names, u.Username)
		}
		edges, err := s.edges.OutgoingTo(ctx, viewer, names)
		if err != nil {
			return nil, storeError(err, "failed to load relationships")
		}
		for i := range edges {
			status[edges[i].To] = models.StatusOf(&edges[i])
		}
	}

	results := make([]models.PublicUser, 0, len(users))
	for _, u := range users {
		st, ok := status[u.Username]
		if !ok {
			st = models.StatusNone
		}
		results = append(results, models.PublicUser{
			Username:           u.Username,
			IsPrivate:          u.IsPrivate,
			RelationshipStatus: st,
		})
	}
	return results, nil
}

// SetPrivacy updates the user's privacy flag. Going public promotes every
// pending inbound request to a follow edge; calling it again after a
// partial failure finishes the promotion.
func (s *FollowService) SetPrivacy(ctx context.Context, username string, isPrivate bool) (*models.User, error) {
	if err := requireActor(username); err != nil {
		return nil, err
	}

	user, err := s.users.UpdateUser(ctx, username, map[string]interface{}{"isPrivate": isPrivate})
	if err != nil {
		return nil, storeError(err, "failed to update privacy")
	}

	if !isPrivate {
		promoted, err := s.edges.PromoteIncoming(ctx, username)
		if err != nil {
			return nil, storeError(err, "privacy updated but pending requests were not promoted, retry")
		}
		if promoted > 0 {
			logrus.WithFields(logrus.Fields{
				"username": username,
				"promoted": promoted,
			}).Info("Pending requests promoted after going public")
			s.activity.LogActivity(ctx, username, models.ActivityRequestsPromoted, "", "Accepted all pending requests after going public")
		}
	}
	return user, nil
}
