package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Dias221467/cf_social/internal/codeforces"
	"github.com/Dias221467/cf_social/internal/config"
	"github.com/Dias221467/cf_social/internal/repository"
	"github.com/Dias221467/cf_social/internal/services"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) GetUserInfo(ctx context.Context, handles ...string) ([]codeforces.UserInfo, error) {
	args := m.Called(handles)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]codeforces.UserInfo), args.Error(1)
}

func (m *MockProvider) GetSolvedProblems(ctx context.Context, handle string) ([]string, error) {
	args := m.Called(handle)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockProvider) GetLadder(ctx context.Context, start, end int) ([]codeforces.LadderProblem, error) {
	args := m.Called(start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]codeforces.LadderProblem), args.Error(1)
}

type testServer struct {
	router   *mux.Router
	provider *MockProvider
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg := &config.Config{JWTSecret: "test-secret", TokenExpiry: time.Hour}
	store := repository.NewMemoryStore()
	provider := new(MockProvider)

	activity := services.NewActivityService(store)
	users := services.NewUserService(store, provider, false)
	follows := services.NewFollowService(store, store, activity, 10)
	profiles := services.NewProfileService(follows, provider)
	recs := services.NewRecommendationService(store, store, provider, provider, 25, 48*time.Hour)
	board := services.NewLeaderboardService(follows, provider)

	router := NewRouter(Router{
		Users:           NewUserHandler(users, follows, profiles, activity, cfg),
		Friends:         NewFriendHandler(follows),
		Recommendations: NewRecommendationHandler(recs, board),
		LastActive:      users,
		JWTSecret:       cfg.JWTSecret,
	})
	return &testServer{router: router, provider: provider}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return rec.Code, out
}

// signup registers username and returns a bearer token.
func (s *testServer) signup(t *testing.T, username string) string {
	t.Helper()
	code, _ := s.do(t, http.MethodPost, "/users/register", "", map[string]string{"username": username, "password": "secret123"})
	require.Equal(t, http.StatusCreated, code)

	code, body := s.do(t, http.MethodPost, "/users/login", "", map[string]string{"username": username, "password": "secret123"})
	require.Equal(t, http.StatusOK, code)
	token, ok := body["token"].(string)
	require.True(t, ok)
	return token
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	code, body := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
}

func TestRegisterAndLogin(t *testing.T) {
	s := newTestServer(t)
	s.signup(t, "tourist")

	code, body := s.do(t, http.MethodPost, "/users/register", "", map[string]string{"username": "tourist", "password": "secret123"})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "UserExists", body["error"])
	assert.Equal(t, false, body["success"])

	code, body = s.do(t, http.MethodPost, "/users/login", "", map[string]string{"username": "tourist", "password": "nope-nope"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "InvalidCredentials", body["error"])
}

func TestFollowRequestFlow(t *testing.T) {
	s := newTestServer(t)
	alice := s.signup(t, "alice")
	bob := s.signup(t, "bob")

	code, body := s.do(t, http.MethodPost, "/friends/requests", alice, map[string]string{"target": "bob"})
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "Request sent", body["message"])

	code, body = s.do(t, http.MethodPost, "/friends/requests", alice, map[string]string{"target": "bob"})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "AlreadyRequested", body["error"])

	code, body = s.do(t, http.MethodGet, "/users/bob/profile", alice, nil)
	require.Equal(t, http.StatusOK, code)
	profile := body["profile"].(map[string]interface{})
	assert.Equal(t, true, profile["restricted"])
	assert.Equal(t, "requested", profile["relationshipStatus"])

	code, body = s.do(t, http.MethodGet, "/friends/received", bob, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []interface{}{"alice"}, body["users"])

	code, _ = s.do(t, http.MethodPost, "/friends/requests/alice/accept", bob, nil)
	require.Equal(t, http.StatusOK, code)

	code, body = s.do(t, http.MethodGet, "/friends/following", alice, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []interface{}{"bob"}, body["users"])

	code, body = s.do(t, http.MethodDelete, "/friends/following/bob", alice, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Unfollowed successfully", body["message"])

	code, body = s.do(t, http.MethodDelete, "/friends/following/bob", alice, nil)
	require.Equal(t, http.StatusOK, code)
	result := body["result"].(map[string]interface{})
	assert.Equal(t, false, result["changed"])
}

func TestRelationshipErrors(t *testing.T) {
	s := newTestServer(t)
	alice := s.signup(t, "alice")

	code, body := s.do(t, http.MethodPost, "/friends/requests", alice, map[string]string{"target": "ghost"})
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "TargetNotFound", body["error"])

	code, body = s.do(t, http.MethodPost, "/friends/requests", alice, map[string]string{"target": "alice"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "CannotFollowSelf", body["error"])

	code, body = s.do(t, http.MethodPost, "/friends/requests/ghost/accept", alice, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "RequestNotFound", body["error"])

	code, body = s.do(t, http.MethodDelete, "/friends/requests/sent/ghost", alice, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "No pending request", body["message"])

	code, body = s.do(t, http.MethodPost, "/friends/requests", "", map[string]string{"target": "alice"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "NotAuthenticated", body["error"])
}

func TestGoingPublicPromotesRequests(t *testing.T) {
	s := newTestServer(t)
	alice := s.signup(t, "alice")
	bob := s.signup(t, "bob")

	code, _ := s.do(t, http.MethodPost, "/friends/requests", alice, map[string]string{"target": "bob"})
	require.Equal(t, http.StatusCreated, code)

	code, body := s.do(t, http.MethodPatch, "/account", bob, map[string]bool{"isPrivate": false})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, body["isPrivate"])

	code, body = s.do(t, http.MethodGet, "/friends/followers", bob, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []interface{}{"alice"}, body["users"])

	code, body = s.do(t, http.MethodPatch, "/account", bob, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "InvalidInput", body["error"])
}

func TestSearchAnonymousAndAuthenticated(t *testing.T) {
	s := newTestServer(t)
	alice := s.signup(t, "alice")
	s.signup(t, "alicia")

	code, _ := s.do(t, http.MethodPost, "/friends/requests", alice, map[string]string{"target": "alicia"})
	require.Equal(t, http.StatusCreated, code)

	code, body := s.do(t, http.MethodGet, "/users/search?query=ALIC", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["users"], 2)

	code, body = s.do(t, http.MethodGet, "/users/search?query=icia", alice, nil)
	require.Equal(t, http.StatusOK, code)
	users := body["users"].([]interface{})
	require.Len(t, users, 1)
	entry := users[0].(map[string]interface{})
	assert.Equal(t, "alicia", entry["username"])
	assert.Equal(t, "requested", entry["relationshipStatus"])
	assert.NotContains(t, entry, "passwordHash")

	code, body = s.do(t, http.MethodGet, "/users/search?query=", "", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestAccountAboutAndLinks(t *testing.T) {
	s := newTestServer(t)
	alice := s.signup(t, "alice")

	s.provider.On("GetUserInfo", []string{"alice"}).Return(nil, codeforces.ErrUnavailable)

	code, body := s.do(t, http.MethodGet, "/account", alice, nil)
	require.Equal(t, http.StatusOK, code)
	account := body["account"].(map[string]interface{})
	assert.Equal(t, true, account["isPrivate"])
	assert.Equal(t, "", account["avatar"])

	code, body = s.do(t, http.MethodPatch, "/users/me/about", alice, map[string]string{"aboutText": "hello"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "hello", body["aboutText"])

	code, body = s.do(t, http.MethodPut, "/users/me/links", alice, map[string][]string{"links": {"ftp://x"}})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "InvalidInput", body["error"])

	code, body = s.do(t, http.MethodGet, "/users/me/activity", alice, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, body["activities"])
}

func TestRecommendationsProviderDown(t *testing.T) {
	s := newTestServer(t)
	alice := s.signup(t, "alice")

	s.provider.On("GetUserInfo", []string{"alice"}).Return(nil, codeforces.ErrUnavailable)
	s.provider.On("GetSolvedProblems", "alice").Return(nil, codeforces.ErrUnavailable)
	s.provider.On("GetLadder", 800, 1000).Return(nil, codeforces.ErrUnavailable)

	code, body := s.do(t, http.MethodGet, "/recommendations", alice, nil)
	assert.Equal(t, http.StatusBadGateway, code)
	assert.Equal(t, "ProviderUnavailable", body["error"])
}

func TestLeaderboard(t *testing.T) {
	s := newTestServer(t)
	alice := s.signup(t, "alice")

	s.provider.On("GetUserInfo", []string{"alice"}).
		Return([]codeforces.UserInfo{{Handle: "alice", Rated: true, Rating: 1600, Rank: "expert"}}, nil)

	code, body := s.do(t, http.MethodGet, "/leaderboard", alice, nil)
	require.Equal(t, http.StatusOK, code)
	entries := body["entries"].([]interface{})
	require.Len(t, entries, 1)
	assert.Equal(t, float64(1600), entries[0].(map[string]interface{})["rating"])
}

func TestStatusForKind(t *testing.T) {
	assert.Equal(t, http.StatusServiceUnavailable, StatusForKind(services.KindStoreUnavailable))
	assert.Equal(t, http.StatusBadGateway, StatusForKind(services.KindProviderUnavailable))
	assert.Equal(t, http.StatusInternalServerError, StatusForKind(services.KindInternal))
}
