package middleware

import (
	"context"
	"net/http"

	"github.com/Dias221467/cf_social/pkg/logger"
)

// LastActiveUpdater records when a user was last seen.
type LastActiveUpdater interface {
	UpdateLastActive(ctx context.Context, username string) error
}

// UpdateLastActiveMiddleware stamps the authenticated user's last activity
// time. It must run after AuthMiddleware; failures never block the request.
func UpdateLastActiveMiddleware(users LastActiveUpdater) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if username := Username(r.Context()); username != "" {
				if err := users.UpdateLastActive(r.Context(), username); err != nil {
					logger.Log.WithError(err).WithField("username", username).Debug("Failed to update last active time")
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
