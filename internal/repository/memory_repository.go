package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Dias221467/cf_social/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type edgeKey struct {
	from, to string
}

// MemoryStore keeps users, follow edges, recommendations and activities in
// process memory. It mirrors the semantics of the Mongo repositories,
// including duplicate detection, and backs STORE_DRIVER=memory and tests.
type MemoryStore struct {
	mu sync.RWMutex

	users      map[string]*models.User
	folded     map[string]string // lowercased username to stored username
	order      []string          // usernames in insertion order
	edges      map[edgeKey]*models.FollowEdge
	edgeOrder  []edgeKey
	recs       map[primitive.ObjectID][]models.RecommendedProblem
	activities []models.Activity
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:  make(map[string]*models.User),
		folded: make(map[string]string),
		edges:  make(map[edgeKey]*models.FollowEdge),
		recs:   make(map[primitive.ObjectID][]models.RecommendedProblem),
	}
}

func copyUser(u *models.User) *models.User {
	c := *u
	c.Links = append([]string{}, u.Links...)
	return &c
}

func (s *MemoryStore) CreateUser(_ context.Context, user *models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Usernames are unique regardless of case, like Codeforces handles.
	key := strings.ToLower(user.Username)
	if _, ok := s.folded[key]; ok {
		return nil, ErrDuplicateUser
	}
	now := time.Now()
	user.ID = primitive.NewObjectID()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Links == nil {
		user.Links = []string{}
	}
	s.users[user.Username] = copyUser(user)
	s.folded[key] = user.Username
	s.order = append(s.order, user.Username)
	return user, nil
}

func (s *MemoryStore) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[username]
	if !ok {
		return nil, ErrUserNotFound
	}
	return copyUser(u), nil
}

func (s *MemoryStore) GetUsersByUsernames(_ context.Context, usernames []string) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := []models.User{}
	for _, name := range usernames {
		if u, ok := s.users[name]; ok {
			users = append(users, *copyUser(u))
		}
	}
	return users, nil
}

func (s *MemoryStore) SearchUsers(_ context.Context, query string, limit int64) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q := strings.ToLower(query)
	users := []models.User{}
	for _, name := range s.order {
		if int64(len(users)) >= limit {
			break
		}
		if strings.Contains(strings.ToLower(name), q) {
			users = append(users, *copyUser(s.users[name]))
		}
	}
	return users, nil
}

func (s *MemoryStore) UpdateUser(_ context.Context, username string, update map[string]interface{}) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[username]
	if !ok {
		return nil, ErrUserNotFound
	}
	for field, value := range update {
		switch field {
		case "isPrivate":
			u.IsPrivate = value.(bool)
		case "aboutText":
			u.AboutText = value.(string)
		case "links":
			u.Links = append([]string{}, value.([]string)...)
		case "passwordHash":
			u.PasswordHash = value.(string)
		}
	}
	u.UpdatedAt = time.Now()
	return copyUser(u), nil
}

func (s *MemoryStore) TouchLastActive(_ context.Context, username string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u, ok := s.users[username]; ok {
		u.LastActiveAt = at
	}
	return nil
}

func (s *MemoryStore) CreateEdge(_ context.Context, edge *models.FollowEdge) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := edgeKey{edge.From, edge.To}
	if _, ok := s.edges[key]; ok {
		return ErrEdgeExists
	}
	now := time.Now()
	edge.CreatedAt = now
	edge.UpdatedAt = now
	c := *edge
	s.edges[key] = &c
	s.edgeOrder = append(s.edgeOrder, key)
	return nil
}

func (s *MemoryStore) GetEdge(_ context.Context, from, to string) (*models.FollowEdge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.edges[edgeKey{from, to}]
	if !ok {
		return nil, ErrEdgeNotFound
	}
	c := *e
	return &c, nil
}

func (s *MemoryStore) TransitionEdge(_ context.Context, from, to string, fromState, toState models.EdgeState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.edges[edgeKey{from, to}]
	if !ok || e.State != fromState {
		return ErrEdgeNotFound
	}
	e.State = toState
	e.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryStore) DeleteEdge(_ context.Context, from, to string, state models.EdgeState) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := edgeKey{from, to}
	e, ok := s.edges[key]
	if !ok || e.State != state {
		return false, nil
	}
	delete(s.edges, key)
	for i, k := range s.edgeOrder {
		if k == key {
			s.edgeOrder = append(s.edgeOrder[:i], s.edgeOrder[i+1:]...)
			break
		}
	}
	return true, nil
}

func (s *MemoryStore) ListOutgoing(_ context.Context, from string, state models.EdgeState) ([]models.FollowEdge, error) {
	return s.filterEdges(func(e *models.FollowEdge) bool { return e.From == from && e.State == state }), nil
}

func (s *MemoryStore) ListIncoming(_ context.Context, to string, state models.EdgeState) ([]models.FollowEdge, error) {
	return s.filterEdges(func(e *models.FollowEdge) bool { return e.To == to && e.State == state }), nil
}

func (s *MemoryStore) OutgoingTo(_ context.Context, from string, to []string) ([]models.FollowEdge, error) {
	targets := make(map[string]struct{}, len(to))
	for _, t := range to {
		targets[t] = struct{}{}
	}
	return s.filterEdges(func(e *models.FollowEdge) bool {
		_, ok := targets[e.To]
		return e.From == from && ok
	}), nil
}

func (s *MemoryStore) PromoteIncoming(_ context.Context, to string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	now := time.Now()
	for _, e := range s.edges {
		if e.To == to && e.State == models.EdgeRequested {
			e.State = models.EdgeFollowing
			e.UpdatedAt = now
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) filterEdges(keep func(*models.FollowEdge) bool) []models.FollowEdge {
	s.mu.RLock()
	defer s.mu.RUnlock()

	edges := []models.FollowEdge{}
	for _, key := range s.edgeOrder {
		if e := s.edges[key]; keep(e) {
			edges = append(edges, *e)
		}
	}
	return edges
}

func (s *MemoryStore) GetRecommendations(_ context.Context, userID primitive.ObjectID) ([]models.RecommendedProblem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]models.RecommendedProblem{}, s.recs[userID]...), nil
}

func (s *MemoryStore) DeleteRecommendations(_ context.Context, userID primitive.ObjectID, problemIDs []string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	drop := make(map[string]struct{}, len(problemIDs))
	for _, id := range problemIDs {
		drop[id] = struct{}{}
	}
	var kept []models.RecommendedProblem
	var n int64
	for _, p := range s.recs[userID] {
		if _, ok := drop[p.ProblemID]; ok {
			n++
			continue
		}
		kept = append(kept, p)
	}
	s.recs[userID] = kept
	return n, nil
}

func (s *MemoryStore) ReplaceRecommendations(_ context.Context, userID primitive.ObjectID, problems []models.RecommendedProblem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := make([]models.RecommendedProblem, len(problems))
	for i, p := range problems {
		p.UserID = userID
		p.ID = primitive.NewObjectID()
		rows[i] = p
	}
	s.recs[userID] = rows
	return nil
}

func (s *MemoryStore) DeleteStaleRecommendations(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for userID, rows := range s.recs {
		var kept []models.RecommendedProblem
		for _, p := range rows {
			if p.LastUpdated.Before(cutoff) {
				n++
				continue
			}
			kept = append(kept, p)
		}
		s.recs[userID] = kept
	}
	return n, nil
}

func (s *MemoryStore) CreateActivity(_ context.Context, activity *models.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	activity.ID = primitive.NewObjectID()
	s.activities = append(s.activities, *activity)
	return nil
}

func (s *MemoryStore) GetUserActivities(_ context.Context, username string, limit int) ([]models.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	activities := []models.Activity{}
	if limit <= 0 {
		return activities, nil
	}
	for _, a := range s.activities {
		if a.Username == username {
			activities = append(activities, a)
		}
	}
	sort.SliceStable(activities, func(i, j int) bool {
		return activities[i].Timestamp.After(activities[j].Timestamp)
	})
	if len(activities) > limit {
		activities = activities[:limit]
	}
	return activities, nil
}
