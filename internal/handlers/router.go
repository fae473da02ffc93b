package handlers

import (
	"net/http"

	"github.com/Dias221467/cf_social/pkg/middleware"
	"github.com/gorilla/mux"
)

// Router groups the handlers mounted by NewRouter.
type Router struct {
	Users           *UserHandler
	Friends         *FriendHandler
	Recommendations *RecommendationHandler
	LastActive      middleware.LastActiveUpdater
	JWTSecret       string
}

// NewRouter registers every route of the API.
func NewRouter(rt Router) *mux.Router {
	router := mux.NewRouter()
	router.Use(middleware.LoggingMiddleware)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, "", map[string]interface{}{"status": "ok"})
	}).Methods("GET")

	// Public user routes
	router.HandleFunc("/users/register", rt.Users.RegisterUserHandler).Methods("POST")
	router.HandleFunc("/users/login", rt.Users.LoginUserHandler).Methods("POST")

	// Authenticated user routes. Registered before the optional-auth
	// subrouter so /users/me/... is not captured by /users/{username}.
	meRoutes := router.PathPrefix("/users/me").Subrouter()
	meRoutes.Use(middleware.AuthMiddleware(rt.JWTSecret))
	meRoutes.Use(middleware.UpdateLastActiveMiddleware(rt.LastActive))
	meRoutes.HandleFunc("/about", rt.Users.UpdateAboutHandler).Methods("PATCH")
	meRoutes.HandleFunc("/links", rt.Users.UpdateLinksHandler).Methods("PUT")
	meRoutes.HandleFunc("/activity", rt.Users.GetActivityHandler).Methods("GET")

	// Directory and profiles, anonymous allowed
	openUserRoutes := router.PathPrefix("/users").Subrouter()
	openUserRoutes.Use(middleware.OptionalAuthMiddleware(rt.JWTSecret))
	openUserRoutes.HandleFunc("/search", rt.Users.SearchUsersHandler).Methods("GET")
	openUserRoutes.HandleFunc("/{username}/profile", rt.Users.GetProfileHandler).Methods("GET")

	accountRoutes := router.PathPrefix("/account").Subrouter()
	accountRoutes.Use(middleware.AuthMiddleware(rt.JWTSecret))
	accountRoutes.Use(middleware.UpdateLastActiveMiddleware(rt.LastActive))
	accountRoutes.HandleFunc("", rt.Users.GetAccountHandler).Methods("GET")
	accountRoutes.HandleFunc("", rt.Users.UpdateAccountHandler).Methods("PATCH")

	// Friend routes
	friendRoutes := router.PathPrefix("/friends").Subrouter()
	friendRoutes.Use(middleware.AuthMiddleware(rt.JWTSecret))
	friendRoutes.Use(middleware.UpdateLastActiveMiddleware(rt.LastActive))
	friendRoutes.HandleFunc("/requests", rt.Friends.SendRequestHandler).Methods("POST")
	friendRoutes.HandleFunc("/requests/{sender}/accept", rt.Friends.AcceptRequestHandler).Methods("POST")
	friendRoutes.HandleFunc("/requests/sent/{target}", rt.Friends.CancelRequestHandler).Methods("DELETE")
	friendRoutes.HandleFunc("/requests/{sender}", rt.Friends.RejectRequestHandler).Methods("DELETE")
	friendRoutes.HandleFunc("/following/{target}", rt.Friends.UnfollowHandler).Methods("DELETE")
	friendRoutes.HandleFunc("/followers/{follower}", rt.Friends.RemoveFollowerHandler).Methods("DELETE")
	friendRoutes.HandleFunc("/{kind}", rt.Friends.ListHandler).Methods("GET")

	// Recommendation and leaderboard routes
	practiceRoutes := router.NewRoute().Subrouter()
	practiceRoutes.Use(middleware.AuthMiddleware(rt.JWTSecret))
	practiceRoutes.Use(middleware.UpdateLastActiveMiddleware(rt.LastActive))
	practiceRoutes.HandleFunc("/recommendations", rt.Recommendations.GetRecommendationsHandler).Methods("GET")
	practiceRoutes.HandleFunc("/leaderboard", rt.Recommendations.GetLeaderboardHandler).Methods("GET")

	return router
}
