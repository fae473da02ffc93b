package handlers

import (
	"net/http"

	"github.com/Dias221467/cf_social/internal/services"
	"github.com/Dias221467/cf_social/pkg/middleware"
	"github.com/gorilla/mux"
)

// FriendHandler manages HTTP endpoints of the follow graph.
type FriendHandler struct {
	Service *services.FollowService
}

// NewFriendHandler initializes a new FriendHandler.
func NewFriendHandler(service *services.FollowService) *FriendHandler {
	return &FriendHandler{Service: service}
}

type relationshipOp func(s *services.FollowService, r *http.Request, actor, other string) (*services.RelationshipResult, error)

// respond runs op for the authenticated caller against the user named by the
// {param} route variable.
func (h *FriendHandler) respond(param string, op relationshipOp) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := middleware.Username(r.Context())
		result, err := op(h.Service, r, actor, mux.Vars(r)[param])
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result.Message, map[string]interface{}{"result": result})
	}
}

// SendRequestHandler follows or requests to follow the target in the body.
func (h *FriendHandler) SendRequestHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Target string `json:"target"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.Service.RequestFollow(r.Context(), middleware.Username(r.Context()), body.Target)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result.Message, map[string]interface{}{"result": result})
}

// AcceptRequestHandler accepts the pending request from {sender}.
func (h *FriendHandler) AcceptRequestHandler(w http.ResponseWriter, r *http.Request) {
	h.respond("sender", func(s *services.FollowService, r *http.Request, actor, other string) (*services.RelationshipResult, error) {
		return s.AcceptRequest(r.Context(), actor, other)
	})(w, r)
}

// RejectRequestHandler rejects the pending request from {sender}.
func (h *FriendHandler) RejectRequestHandler(w http.ResponseWriter, r *http.Request) {
	h.respond("sender", func(s *services.FollowService, r *http.Request, actor, other string) (*services.RelationshipResult, error) {
		return s.RejectRequest(r.Context(), actor, other)
	})(w, r)
}

// CancelRequestHandler withdraws the caller's request to {target}.
func (h *FriendHandler) CancelRequestHandler(w http.ResponseWriter, r *http.Request) {
	h.respond("target", func(s *services.FollowService, r *http.Request, actor, other string) (*services.RelationshipResult, error) {
		return s.CancelRequest(r.Context(), actor, other)
	})(w, r)
}

// UnfollowHandler stops following {target}.
func (h *FriendHandler) UnfollowHandler(w http.ResponseWriter, r *http.Request) {
	h.respond("target", func(s *services.FollowService, r *http.Request, actor, other string) (*services.RelationshipResult, error) {
		return s.Unfollow(r.Context(), actor, other)
	})(w, r)
}

// RemoveFollowerHandler removes {follower} from the caller's followers.
func (h *FriendHandler) RemoveFollowerHandler(w http.ResponseWriter, r *http.Request) {
	h.respond("follower", func(s *services.FollowService, r *http.Request, actor, other string) (*services.RelationshipResult, error) {
		return s.RemoveFollower(r.Context(), actor, other)
	})(w, r)
}

// ListHandler returns one of the caller's four relationship lists.
func (h *FriendHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	list := services.RelationshipList(mux.Vars(r)["kind"])

	names, err := h.Service.ListRelationships(r.Context(), middleware.Username(r.Context()), list)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "", map[string]interface{}{
		"list":  list,
		"users": names,
	})
}
