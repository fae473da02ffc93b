package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Dias221467/cf_social/internal/services"
	log "github.com/sirupsen/logrus"
)

var statusByKind = map[services.ErrorKind]int{
	services.KindNotAuthenticated:    http.StatusUnauthorized,
	services.KindTargetNotFound:      http.StatusNotFound,
	services.KindAlreadyFollowing:    http.StatusConflict,
	services.KindAlreadyRequested:    http.StatusConflict,
	services.KindRequestNotFound:     http.StatusNotFound,
	services.KindProviderUnavailable: http.StatusBadGateway,
	services.KindStoreUnavailable:    http.StatusServiceUnavailable,
	services.KindCannotFollowSelf:    http.StatusBadRequest,
	services.KindInvalidInput:        http.StatusBadRequest,
	services.KindUserExists:          http.StatusConflict,
	services.KindInvalidCredentials:  http.StatusUnauthorized,
	services.KindHandleNotFound:      http.StatusBadRequest,
}

// StatusForKind maps an error kind to its HTTP status.
func StatusForKind(kind services.ErrorKind) int {
	if status, ok := statusByKind[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// writeJSON writes payload merged into a {success: true} envelope.
func writeJSON(w http.ResponseWriter, status int, message string, payload map[string]interface{}) {
	body := map[string]interface{}{"success": true}
	if message != "" {
		body["message"] = message
	}
	for k, v := range payload {
		body[k] = v
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.WithError(err).Warn("Failed to encode response")
	}
}

// writeError renders err as {success: false, error: kind, message}. Internal
// details of unexpected errors are logged, not returned.
func writeError(w http.ResponseWriter, err error) {
	kind := services.KindOf(err)
	status := StatusForKind(kind)

	message := "internal server error"
	var e *services.Error
	if errors.As(err, &e) && kind != services.KindInternal {
		message = e.Message
	}

	entry := log.WithError(err).WithField("kind", kind)
	if status >= http.StatusInternalServerError {
		entry.Error("Request failed")
	} else {
		entry.Warn("Request rejected")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"error":   kind,
		"message": message,
	})
}

func decodeJSON(r *http.Request, dst interface{}) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return &services.Error{Kind: services.KindInvalidInput, Message: "invalid request payload", Err: err}
	}
	return nil
}
