package handlers

import (
	"net/http"
	"strconv"

	"github.com/Dias221467/cf_social/internal/config"
	"github.com/Dias221467/cf_social/internal/services"
	jwtutil "github.com/Dias221467/cf_social/pkg/jwt"
	"github.com/Dias221467/cf_social/pkg/middleware"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

// UserHandler handles HTTP requests related to accounts and profiles.
type UserHandler struct {
	Service  *services.UserService
	Follows  *services.FollowService
	Profiles *services.ProfileService
	Activity *services.ActivityService
	Config   *config.Config
}

// NewUserHandler creates a new instance of UserHandler.
func NewUserHandler(service *services.UserService, follows *services.FollowService, profiles *services.ProfileService, activity *services.ActivityService, cfg *config.Config) *UserHandler {
	return &UserHandler{
		Service:  service,
		Follows:  follows,
		Profiles: profiles,
		Activity: activity,
		Config:   cfg,
	}
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterUserHandler handles user registration.
func (h *UserHandler) RegisterUserHandler(w http.ResponseWriter, r *http.Request) {
	var body credentials
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.Service.RegisterUser(r.Context(), body.Username, body.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	log.WithField("username", user.Username).Info("User registered successfully")
	writeJSON(w, http.StatusCreated, "Signup successful", map[string]interface{}{"user": user})
}

// LoginUserHandler authenticates the user and issues a JWT.
func (h *UserHandler) LoginUserHandler(w http.ResponseWriter, r *http.Request) {
	var body credentials
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.Service.AuthenticateUser(r.Context(), body.Username, body.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	token, err := jwtutil.GenerateToken(user.Username, h.Config.JWTSecret, h.Config.TokenExpiry)
	if err != nil {
		log.WithError(err).Error("Failed to generate JWT token")
		writeError(w, err)
		return
	}

	log.WithField("username", user.Username).Info("User logged in successfully")
	writeJSON(w, http.StatusOK, "Login successful", map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

// GetAccountHandler returns the caller's privacy flag and avatar.
func (h *UserHandler) GetAccountHandler(w http.ResponseWriter, r *http.Request) {
	account, err := h.Service.GetAccount(r.Context(), middleware.Username(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "", map[string]interface{}{"account": account})
}

// UpdateAccountHandler changes the caller's privacy setting.
func (h *UserHandler) UpdateAccountHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		IsPrivate *bool `json:"isPrivate"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}
	if body.IsPrivate == nil {
		writeError(w, &services.Error{Kind: services.KindInvalidInput, Message: "isPrivate is required"})
		return
	}

	username := middleware.Username(r.Context())
	user, err := h.Follows.SetPrivacy(r.Context(), username, *body.IsPrivate)
	if err != nil {
		writeError(w, err)
		return
	}

	log.WithFields(log.Fields{"username": username, "isPrivate": user.IsPrivate}).Info("Privacy updated")
	writeJSON(w, http.StatusOK, "Account updated", map[string]interface{}{"isPrivate": user.IsPrivate})
}

// UpdateAboutHandler replaces the caller's bio.
func (h *UserHandler) UpdateAboutHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		AboutText string `json:"aboutText"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.Service.UpdateAbout(r.Context(), middleware.Username(r.Context()), body.AboutText)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "About updated", map[string]interface{}{"aboutText": user.AboutText})
}

// UpdateLinksHandler replaces the caller's external links.
func (h *UserHandler) UpdateLinksHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Links []string `json:"links"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.Service.UpdateLinks(r.Context(), middleware.Username(r.Context()), body.Links)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "Links updated", map[string]interface{}{"links": user.Links})
}

// GetActivityHandler returns the caller's recent relationship activity.
func (h *UserHandler) GetActivityHandler(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	activities, err := h.Activity.GetRecentActivities(r.Context(), middleware.Username(r.Context()), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "", map[string]interface{}{"activities": activities})
}

// SearchUsersHandler lists users whose username contains the query.
func (h *UserHandler) SearchUsersHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")

	users, err := h.Follows.SearchUsers(r.Context(), query, middleware.Username(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "", map[string]interface{}{"users": users})
}

// GetProfileHandler returns a profile gated by the caller's relationship.
func (h *UserHandler) GetProfileHandler(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]

	view, err := h.Profiles.GetProfile(r.Context(), middleware.Username(r.Context()), username)
	if err != nil {
		writeError(w, err)
		return
	}

	message := ""
	if view.Restricted {
		message = "This account is private"
	}
	writeJSON(w, http.StatusOK, message, map[string]interface{}{"profile": view})
}
